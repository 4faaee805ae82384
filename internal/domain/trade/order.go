package trade

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// orderTransitions is the complete transition table; anything absent is illegal
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// AllOrderStatuses lists every status in lifecycle order
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// ParseOrderStatus converts s to an OrderStatus, ignoring case
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Unknown order status %q", s))
	}
	return status, nil
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no transition leaves s
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

const (
	maxShippingAddressLength = 500
	maxPaymentMethodLength   = 50
)

// MaxQuantity is the largest quantity the orders table stores
const MaxQuantity = math.MaxInt32

// Order is a single-product purchase by a customer.
// UnitPrice and TotalAmount are snapshots taken when the order is placed.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string
	CustomerID      int64
	ProductID       int64
	Quantity        int
	UnitPrice       decimal.Decimal
	TotalAmount     decimal.Decimal
	OrderDate       time.Time
	Status          OrderStatus
	ShippingAddress string
	PaymentMethod   string
}

// PlaceOrderInput describes a new order
type PlaceOrderInput struct {
	OrderNumber     string
	CustomerID      int64
	ProductID       int64
	Quantity        int
	UnitPrice       valueobject.Money
	ShippingAddress string
	PaymentMethod   string
}

// NewOrder creates a pending order, copying the unit price and computing the total
// rounded half-up to cents.
func NewOrder(in PlaceOrderInput) (*Order, error) {
	if in.OrderNumber == "" {
		return nil, validationError("Order number cannot be empty")
	}
	if in.CustomerID <= 0 {
		return nil, validationError("Customer ID is required")
	}
	if in.ProductID <= 0 {
		return nil, validationError("Product ID is required")
	}
	if in.Quantity < 1 {
		return nil, validationError("Quantity must be at least 1")
	}
	if in.Quantity > MaxQuantity {
		return nil, validationError(fmt.Sprintf("Quantity cannot exceed %d", MaxQuantity))
	}
	if in.UnitPrice.IsNegative() {
		return nil, validationError("Unit price cannot be negative")
	}
	if in.UnitPrice.Decimal().GreaterThan(valueobject.MaxPrice) {
		return nil, validationError(fmt.Sprintf("Unit price cannot exceed %s", valueobject.MaxPrice.StringFixed(valueobject.Scale)))
	}
	in.ShippingAddress = strings.TrimSpace(in.ShippingAddress)
	if utf8.RuneCountInString(in.ShippingAddress) > maxShippingAddressLength {
		return nil, validationError(fmt.Sprintf("Shipping address cannot exceed %d characters", maxShippingAddressLength))
	}
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	if utf8.RuneCountInString(in.PaymentMethod) > maxPaymentMethodLength {
		return nil, validationError(fmt.Sprintf("Payment method cannot exceed %d characters", maxPaymentMethodLength))
	}

	unit := in.UnitPrice.ToCents()
	total := unit.Times(int64(in.Quantity)).ToCents()
	if total.Decimal().GreaterThan(valueobject.MaxTotal) {
		return nil, validationError(fmt.Sprintf("Order total cannot exceed %s", valueobject.MaxTotal.StringFixed(valueobject.Scale)))
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       in.OrderNumber,
		CustomerID:        in.CustomerID,
		ProductID:         in.ProductID,
		Quantity:          in.Quantity,
		UnitPrice:         unit.Decimal(),
		TotalAmount:       total.Decimal(),
		Status:            OrderStatusPending,
		ShippingAddress:   in.ShippingAddress,
		PaymentMethod:     in.PaymentMethod,
	}
	order.OrderDate = order.CreatedAt

	return order, nil
}

// TransitionTo moves the order to target following the transition table
func (o *Order) TransitionTo(target OrderStatus) error {
	if !target.IsValid() {
		return validationError(fmt.Sprintf("Unknown order status %q", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot move order %s from %s to %s", o.OrderNumber, o.Status, target))
	}

	from := o.Status
	o.Status = target
	o.Touch()

	o.RecordEvent(NewOrderStatusChangedEvent(o, from))
	return nil
}

// Cancel moves the order to cancelled
func (o *Order) Cancel() error {
	return o.TransitionTo(OrderStatusCancelled)
}

// NewOrderNumber builds a human-readable order number such as ORD-20261017-3F9A1C2B.
// The suffix comes from a random UUID; the unique index on order numbers catches the rare collision.
func NewOrderNumber(prefix string, at time.Time) string {
	if prefix == "" {
		prefix = "ORD"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", prefix, at.UTC().Format("20060102"), suffix)
}

func validationError(msg string) error {
	return shared.NewDomainError(shared.CodeValidation, msg)
}
