package persistence

import (
	"context"
	"sync"
	"testing"

	"github.com/storefront/backend/internal/domain/partner"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormCustomerRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the email lower-cased and finds it ignoring case", func(t *testing.T) {
		db := newTestDatabase(t)
		repo := NewGormCustomerRepository(db.DB)
		c := seedCustomer(t, db, "Grace.Hopper@Example.com")

		found, err := repo.FindByEmail(ctx, "GRACE.HOPPER@example.COM")
		require.NoError(t, err)
		assert.Equal(t, c.ID, found.ID)
		assert.Equal(t, "grace.hopper@example.com", found.Email)
		assert.Equal(t, partner.DefaultCountry, found.Country)
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		db := newTestDatabase(t)
		seedCustomer(t, db, "ada@example.com")

		dup, err := partner.NewCustomer(partner.CustomerRecord{FirstName: "Ada", LastName: "King", Email: "ADA@example.com"})
		require.NoError(t, err)
		err = NewGormCustomerRepository(db.DB).Create(ctx, dup)

		assert.ErrorIs(t, err, shared.ErrDuplicateEmail)
	})

	t.Run("exactly one of many concurrent creates wins", func(t *testing.T) {
		db := newTestDatabase(t)
		repo := NewGormCustomerRepository(db.DB)

		const workers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
			dupes     int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c, err := partner.NewCustomer(partner.CustomerRecord{FirstName: "Race", LastName: "Condition", Email: "race@example.com"})
				if err != nil {
					return
				}
				err = repo.Create(ctx, c)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					succeeded++
				case shared.CodeOf(err) == shared.CodeDuplicateEmail:
					dupes++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, succeeded)
		assert.Equal(t, workers-1, dupes)
	})
}

func TestGormCustomerRepository_FindAll(t *testing.T) {
	db := newTestDatabase(t)
	seedCustomer(t, db, "a@example.com")
	seedCustomer(t, db, "b@example.com")
	seedCustomer(t, db, "c@example.com")

	customers, total, err := NewGormCustomerRepository(db.DB).FindAll(context.Background(), shared.Filter{
		Page: 2, PageSize: 2, OrderBy: "email", OrderDir: "asc",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, customers, 1)
	assert.Equal(t, "c@example.com", customers[0].Email)
}

func TestGormCustomerRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades to the customer's orders", func(t *testing.T) {
		db := newTestDatabase(t)
		p := seedProduct(t, db, "B000000001", "Pen", "1.50", nil)
		keep := seedCustomer(t, db, "keep@example.com")
		gone := seedCustomer(t, db, "gone@example.com")
		seedOrder(t, db, "ORD-1", gone.ID, p.ID)
		seedOrder(t, db, "ORD-2", gone.ID, p.ID)
		kept := seedOrder(t, db, "ORD-3", keep.ID, p.ID)

		require.NoError(t, NewGormCustomerRepository(db.DB).Delete(ctx, gone.ID))

		orders := NewGormOrderRepository(db.DB)
		remaining, err := orders.FindByCustomer(ctx, gone.ID)
		require.NoError(t, err)
		assert.Empty(t, remaining)
		_, err = orders.FindByID(ctx, kept.ID)
		assert.NoError(t, err)
	})

	t.Run("returns not found for unknown customer", func(t *testing.T) {
		db := newTestDatabase(t)
		err := NewGormCustomerRepository(db.DB).Delete(ctx, 9)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
