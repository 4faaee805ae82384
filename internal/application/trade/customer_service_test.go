package trade

import (
	"context"
	"testing"

	"github.com/storefront/backend/internal/domain/partner"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func newCustomerServiceForTest() (*CustomerService, *mockTxScope, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	scope := &mockTxScope{
		products:  new(MockProductRepository),
		customers: new(MockCustomerRepository),
		orders:    new(MockOrderRepository),
	}
	return NewCustomerService(scope.customers, scope, zap.New(core)), scope, logs
}

func TestCustomerService_CreateCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes and stores the customer", func(t *testing.T) {
		svc, scope, logs := newCustomerServiceForTest()
		scope.customers.On("Create", ctx, mock.AnythingOfType("*partner.Customer")).
			Run(func(args mock.Arguments) { args.Get(1).(*partner.Customer).ID = 3 }).
			Return(nil)

		resp, err := svc.CreateCustomer(ctx, CreateCustomerRequest{
			FirstName: " Ada ", LastName: "Lovelace", Email: "Ada@Example.COM",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.ID)
		assert.Equal(t, "ada@example.com", resp.Email)
		assert.Equal(t, "Ada Lovelace", resp.FullName)
		assert.Equal(t, partner.DefaultCountry, resp.Country)
		assert.Equal(t, 1, logs.FilterMessage("customer created").Len())
	})

	t.Run("invalid email never reaches the repository", func(t *testing.T) {
		svc, scope, _ := newCustomerServiceForTest()

		_, err := svc.CreateCustomer(ctx, CreateCustomerRequest{FirstName: "A", LastName: "B", Email: "not-an-email"})

		assert.ErrorIs(t, err, shared.ErrValidation)
		scope.customers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email is passed through", func(t *testing.T) {
		svc, scope, _ := newCustomerServiceForTest()
		scope.customers.On("Create", ctx, mock.Anything).
			Return(shared.NewDomainError(shared.CodeDuplicateEmail, "taken"))

		_, err := svc.CreateCustomer(ctx, CreateCustomerRequest{FirstName: "A", LastName: "B", Email: "a@b.com"})

		assert.ErrorIs(t, err, shared.ErrDuplicateEmail)
	})
}

func TestCustomerService_FindOrCreateCustomer(t *testing.T) {
	ctx := context.Background()
	req := CreateCustomerRequest{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}

	t.Run("returns the existing customer", func(t *testing.T) {
		svc, scope, _ := newCustomerServiceForTest()
		scope.customers.On("FindByEmail", ctx, "ada@example.com").Return(existingCustomer(4), nil)

		c, created, err := svc.FindOrCreateCustomer(ctx, req)

		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, int64(4), c.ID)
	})

	t.Run("resolves a lost registration race to the winner", func(t *testing.T) {
		svc, scope, _ := newCustomerServiceForTest()
		scope.customers.On("FindByEmail", ctx, "ada@example.com").Return(nil, shared.ErrNotFound).Once()
		scope.customers.On("Create", ctx, mock.Anything).Return(shared.NewDomainError(shared.CodeDuplicateEmail, "taken"))
		scope.customers.On("FindByEmail", ctx, "ada@example.com").Return(existingCustomer(8), nil).Once()

		c, created, err := svc.FindOrCreateCustomer(ctx, req)

		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, int64(8), c.ID)
	})
}

func TestCustomerService_DeleteCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("removes orders then the customer in one transaction", func(t *testing.T) {
		svc, scope, logs := newCustomerServiceForTest()
		scope.customers.On("FindByID", ctx, int64(5)).Return(existingCustomer(5), nil)
		scope.orders.On("DeleteByCustomer", ctx, int64(5)).Return(int64(3), nil)
		scope.customers.On("Delete", ctx, int64(5)).Return(nil)

		resp, err := svc.DeleteCustomer(ctx, 5)

		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.OrdersRemoved)
		assert.Equal(t, 1, scope.calls)
		entries := logs.FilterMessage("customer deleted").All()
		require.Len(t, entries, 1)
		assert.Equal(t, int64(3), entries[0].ContextMap()["orders_removed"])
	})

	t.Run("unknown customer deletes nothing", func(t *testing.T) {
		svc, scope, _ := newCustomerServiceForTest()
		scope.customers.On("FindByID", ctx, int64(5)).Return(nil, shared.ErrNotFound)

		_, err := svc.DeleteCustomer(ctx, 5)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		scope.orders.AssertNotCalled(t, "DeleteByCustomer", mock.Anything, mock.Anything)
	})
}
