package csvimport

import (
	"errors"
	"fmt"
	"testing"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestRowError_Error(t *testing.T) {
	assert.Equal(t, `row 4, column "price": not a number`, Reject(4, "price", CodeType, "not a number").Error())
	assert.Equal(t, "row 9: bare quote", Reject(9, "", CodeMalformed, "bare quote").Error())
}

func TestRowError_MatchesRecordError(t *testing.T) {
	var err error = Reject(2, "stars", CodeType, "not a number").WithValue("n/a")
	assert.True(t, errors.Is(err, shared.ErrRecord))
	assert.True(t, errors.Is(fmt.Errorf("import: %w", err), shared.ErrRecord))
	assert.False(t, errors.Is(err, shared.ErrValidation))
}

func TestErrorLog(t *testing.T) {
	log := NewErrorLog(2)
	assert.Equal(t, "no errors", log.String())

	log.Add(
		Reject(2, "price", CodeType, "not a number"),
		Reject(3, "stars", CodeRange, "above 5"),
		Reject(4, "price", CodeType, "not a number"),
	)

	assert.True(t, log.Truncated())
	assert.Equal(t, 3, log.Total())
	assert.Len(t, log.Kept(), 2)
	assert.Equal(t, map[Code]int{CodeType: 1, CodeRange: 1}, log.ByCode())
	assert.Contains(t, log.String(), "3 row error(s), first 2 shown")
}

func TestNewErrorLog_DefaultLimit(t *testing.T) {
	log := NewErrorLog(0)
	for i := 0; i < 150; i++ {
		log.Add(Reject(i, "", CodeMalformed, "x"))
	}
	assert.Len(t, log.Kept(), 100)
	assert.Equal(t, 150, log.Total())
}
