package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"go.uber.org/zap"
)

const idempotencyKeyPrefix = "create_order:"

// OrderServiceConfig tunes order placement
type OrderServiceConfig struct {
	NumberPrefix   string
	NumberRetries  int
	IdempotencyTTL time.Duration
}

// OrderService places orders and drives them through their status lifecycle
type OrderService struct {
	txScope          TransactionScope
	orderRepo        trade.OrderRepository
	productRepo      catalog.ProductRepository
	customers        *CustomerService
	idempotencyStore shared.IdempotencyStore
	eventPublisher   shared.EventPublisher
	cfg              OrderServiceConfig
	logger           *zap.Logger
	now              func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(
	txScope TransactionScope,
	orderRepo trade.OrderRepository,
	productRepo catalog.ProductRepository,
	customers *CustomerService,
	cfg OrderServiceConfig,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.NumberRetries < 0 {
		cfg.NumberRetries = 0
	}
	return &OrderService{
		txScope:     txScope,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		customers:   customers,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for order notifications
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables Idempotency-Key handling for CreateOrder
func (s *OrderService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotencyStore = store
}

// PlaceOrder places an order for an existing customer and product.
// The product's current price is copied into the order inside the same transaction that inserts it.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderResponse, error) {
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 1 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Quantity must be at least 1")
	}

	var (
		order *trade.Order
		err   error
	)
	for attempt := 0; ; attempt++ {
		order, err = s.placeOnce(ctx, req, quantity)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrConflict) || attempt >= s.cfg.NumberRetries {
			return nil, err
		}
		s.logger.Warn("order number collision, retrying", zap.Int("attempt", attempt+1))
	}

	s.logger.Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("customer_id", order.CustomerID),
		zap.Int64("product_id", order.ProductID),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)),
	)
	s.publish(ctx, trade.NewOrderPlacedEvent(order))

	response := ToOrderResponse(order)
	return &response, nil
}

func (s *OrderService) placeOnce(ctx context.Context, req PlaceOrderRequest, quantity int) (*trade.Order, error) {
	var order *trade.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Customers().FindByIDForShare(ctx, req.CustomerID); err != nil {
			return asReferential(err, fmt.Sprintf("Customer %d does not exist", req.CustomerID))
		}
		product, err := repos.Products().FindByIDForShare(ctx, req.ProductID)
		if err != nil {
			return asReferential(err, fmt.Sprintf("Product %d does not exist", req.ProductID))
		}
		unitPrice, err := product.UnitPrice()
		if err != nil {
			return err
		}

		order, err = trade.NewOrder(trade.PlaceOrderInput{
			OrderNumber:     trade.NewOrderNumber(s.cfg.NumberPrefix, s.now()),
			CustomerID:      req.CustomerID,
			ProductID:       product.ID,
			Quantity:        quantity,
			UnitPrice:       unitPrice,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
		})
		if err != nil {
			return err
		}
		return repos.Orders().Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CreateOrder serves the conversational create_order call. The customer is found by email or
// registered, the product is resolved by ID or ASIN, and the order is placed.
// A non-empty idempotencyKey makes retries of the same call return the original order;
// replayed reports whether that happened.
func (s *OrderService) CreateOrder(ctx context.Context, idempotencyKey string, req CreateOrderRequest) (response *OrderResponse, replayed bool, err error) {
	if idempotencyKey != "" && s.idempotencyStore != nil {
		key := idempotencyKeyPrefix + idempotencyKey
		reserved, rerr := s.idempotencyStore.Reserve(ctx, key, s.cfg.IdempotencyTTL)
		if rerr != nil {
			return nil, false, rerr
		}
		if !reserved {
			existing, err := s.replay(ctx, key)
			return existing, existing != nil, err
		}
		defer func() {
			// the key outlives a failed request only if it completed
			if err != nil {
				if relErr := s.idempotencyStore.Release(context.WithoutCancel(ctx), key); relErr != nil {
					s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(relErr))
				}
				return
			}
			if cErr := s.idempotencyStore.Complete(context.WithoutCancel(ctx), key, response.OrderNumber, s.cfg.IdempotencyTTL); cErr != nil {
				s.logger.Warn("failed to record idempotency key", zap.String("key", key), zap.Error(cErr))
			}
		}()
	}

	productID, err := s.resolveProductID(ctx, req)
	if err != nil {
		return nil, false, err
	}
	customer, _, err := s.customers.FindOrCreateCustomer(ctx, req.Customer)
	if err != nil {
		return nil, false, err
	}

	response, err = s.PlaceOrder(ctx, PlaceOrderRequest{
		CustomerID:      customer.ID,
		ProductID:       productID,
		Quantity:        req.Quantity,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		return nil, false, err
	}
	return response, false, nil
}

func (s *OrderService) replay(ctx context.Context, key string) (*OrderResponse, error) {
	orderNumber, found, err := s.idempotencyStore.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found || orderNumber == "" {
		return nil, shared.NewDomainError(shared.CodeConflict,
			"A request with this idempotency key is still being processed")
	}
	return s.GetOrderByNumber(ctx, orderNumber)
}

func (s *OrderService) resolveProductID(ctx context.Context, req CreateOrderRequest) (int64, error) {
	switch {
	case req.ProductID > 0:
		return req.ProductID, nil
	case req.ASIN != "":
		product, err := s.productRepo.FindByASIN(ctx, req.ASIN)
		if err != nil {
			return 0, asReferential(err, fmt.Sprintf("Product %s does not exist", req.ASIN))
		}
		return product.ID, nil
	}
	return 0, shared.NewDomainError(shared.CodeValidation, "Either product_id or asin is required")
}

// UpdateStatus moves an order to status following the transition table.
// The order row stays locked from read to write.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, status string) (*OrderResponse, error) {
	target, err := trade.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	var order *trade.Order
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := o.TransitionTo(target); err != nil {
			return err
		}
		if err := repos.Orders().UpdateStatus(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status changed",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("status", string(order.Status)),
	)
	s.publish(ctx, order.PullEvents()...)

	response := ToOrderResponse(order)
	return &response, nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// GetOrderByNumber retrieves an order by its order number
func (s *OrderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// GetOrderStatus answers get_order_status
func (s *OrderService) GetOrderStatus(ctx context.Context, orderNumber string) (*OrderStatusResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	return &OrderStatusResponse{
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		Terminal:    order.Status.IsTerminal(),
		UpdatedAt:   order.UpdatedAt,
	}, nil
}

// ListCustomerOrders returns a customer's orders, newest first
func (s *OrderService) ListCustomerOrders(ctx context.Context, customerID int64) ([]OrderResponse, error) {
	if _, err := s.customers.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

func (s *OrderService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish order events", zap.Error(err))
	}
}

// asReferential turns a missing referenced row into a ReferentialError
func asReferential(err error, msg string) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError(shared.CodeReferential, msg)
	}
	return err
}
