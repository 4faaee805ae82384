package trade

import (
	"context"
	"errors"

	"github.com/storefront/backend/internal/domain/partner"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CustomerService handles customer registration, lookup and removal
type CustomerService struct {
	customerRepo partner.CustomerRepository
	txScope      TransactionScope
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, txScope TransactionScope, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customerRepo: customerRepo,
		txScope:      txScope,
		logger:       logger,
	}
}

// CreateCustomer registers a customer. Fails with DuplicateEmail if the email is taken.
func (s *CustomerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(req.ToRecord())
	if err != nil {
		return nil, err
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.logger.Info("customer created", zap.Int64("customer_id", customer.ID))
	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetCustomerByEmail retrieves a customer by email, ignoring case
func (s *CustomerService) GetCustomerByEmail(ctx context.Context, email string) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// ListCustomers returns a page of customers
func (s *CustomerService) ListCustomers(ctx context.Context, filter shared.Filter) (shared.Paginated[CustomerResponse], error) {
	filter = filter.WithDefaults()
	customers, total, err := s.customerRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[CustomerResponse]{}, err
	}
	items := make([]CustomerResponse, len(customers))
	for i := range customers {
		items[i] = ToCustomerResponse(&customers[i])
	}
	return shared.NewPaginated(items, total, filter), nil
}

// FindOrCreateCustomer returns the customer registered under the request's email, creating it if absent.
// Losing a concurrent registration race resolves to the winner's record.
func (s *CustomerService) FindOrCreateCustomer(ctx context.Context, req CreateCustomerRequest) (*partner.Customer, bool, error) {
	existing, err := s.customerRepo.FindByEmail(ctx, req.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, err
	}

	customer, err := partner.NewCustomer(req.ToRecord())
	if err != nil {
		return nil, false, err
	}
	err = s.customerRepo.Create(ctx, customer)
	switch {
	case err == nil:
		s.logger.Info("customer created", zap.Int64("customer_id", customer.ID))
		return customer, true, nil
	case errors.Is(err, shared.ErrDuplicateEmail):
		existing, err := s.customerRepo.FindByEmail(ctx, req.Email)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	default:
		return nil, false, err
	}
}

// DeleteCustomer removes a customer together with all of their orders in one transaction
func (s *CustomerService) DeleteCustomer(ctx context.Context, id int64) (*DeleteCustomerResponse, error) {
	var removed int64
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Customers().FindByID(ctx, id); err != nil {
			return err
		}
		n, err := repos.Orders().DeleteByCustomer(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return repos.Customers().Delete(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("customer deleted",
		zap.Int64("customer_id", id),
		zap.Int64("orders_removed", removed),
	)
	return &DeleteCustomerResponse{CustomerID: id, OrdersRemoved: removed}, nil
}
