package trade

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/partner"
	"github.com/storefront/backend/internal/domain/trade"
)

// ==================== Customer DTOs ====================

// CreateCustomerRequest represents a request to register a customer
type CreateCustomerRequest struct {
	FirstName  string `json:"first_name" binding:"required,max=100"`
	LastName   string `json:"last_name" binding:"required,max=100"`
	Email      string `json:"email" binding:"required,email,max=255"`
	Phone      string `json:"phone" binding:"max=30"`
	Address    string `json:"address" binding:"max=500"`
	City       string `json:"city" binding:"max=100"`
	State      string `json:"state" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Country    string `json:"country" binding:"max=100"`
}

// ToRecord converts the request to a domain record
func (r CreateCustomerRequest) ToRecord() partner.CustomerRecord {
	return partner.CustomerRecord{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
	}
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Address    string    `json:"address,omitempty"`
	City       string    `json:"city,omitempty"`
	State      string    `json:"state,omitempty"`
	PostalCode string    `json:"postal_code,omitempty"`
	Country    string    `json:"country"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToCustomerResponse converts a domain Customer to a response
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:         c.ID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		FullName:   c.FullName(),
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		City:       c.City,
		State:      c.State,
		PostalCode: c.PostalCode,
		Country:    c.Country,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// DeleteCustomerResponse reports what a customer deletion removed
type DeleteCustomerResponse struct {
	CustomerID    int64 `json:"customer_id"`
	OrdersRemoved int64 `json:"orders_removed"`
}

// ==================== Order DTOs ====================

// PlaceOrderRequest places an order for an existing customer
type PlaceOrderRequest struct {
	CustomerID      int64  `json:"customer_id" binding:"required,min=1"`
	ProductID       int64  `json:"product_id" binding:"required,min=1"`
	Quantity        *int   `json:"quantity"`
	ShippingAddress string `json:"shipping_address" binding:"max=500"`
	PaymentMethod   string `json:"payment_method" binding:"max=50"`
}

// CreateOrderRequest is the conversational create_order call: customer fields instead of an ID,
// and the product by ID or ASIN.
type CreateOrderRequest struct {
	Customer        CreateCustomerRequest `json:"customer" binding:"required"`
	ProductID       int64                 `json:"product_id" binding:"omitempty,min=1"`
	ASIN            string                `json:"asin" binding:"omitempty,asin"`
	Quantity        *int                  `json:"quantity"`
	ShippingAddress string                `json:"shipping_address" binding:"max=500"`
	PaymentMethod   string                `json:"payment_method" binding:"max=50"`
}

// UpdateOrderStatusRequest moves an order to a new status
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"order_number"`
	CustomerID      int64           `json:"customer_id"`
	ProductID       int64           `json:"product_id"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	OrderDate       time.Time       `json:"order_date"`
	Status          string          `json:"status"`
	ShippingAddress string          `json:"shipping_address,omitempty"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToOrderResponse converts a domain Order to a response
func ToOrderResponse(o *trade.Order) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		ProductID:       o.ProductID,
		Quantity:        o.Quantity,
		UnitPrice:       o.UnitPrice,
		TotalAmount:     o.TotalAmount,
		OrderDate:       o.OrderDate,
		Status:          string(o.Status),
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// ToOrderResponses converts a slice of domain orders to responses
func ToOrderResponses(orders []trade.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses
}

// OrderStatusResponse answers get_order_status
type OrderStatusResponse struct {
	OrderNumber string    `json:"order_number"`
	Status      string    `json:"status"`
	Terminal    bool      `json:"terminal"`
	UpdatedAt   time.Time `json:"updated_at"`
}
