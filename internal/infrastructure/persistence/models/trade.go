package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	Row
	OrderNumber     string            `gorm:"type:varchar(50);not null;uniqueIndex:uq_orders_order_number"`
	CustomerID      int64             `gorm:"not null;index:idx_orders_customer"`
	Customer        *CustomerModel    `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	ProductID       int64             `gorm:"not null;index:idx_orders_product"`
	Product         *ProductModel     `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
	Quantity        int               `gorm:"not null"`
	UnitPrice       decimal.Decimal   `gorm:"type:decimal(10,2);not null"`
	TotalAmount     decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	OrderDate       time.Time         `gorm:"not null;index:idx_orders_order_date"`
	Status          trade.OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_orders_status"`
	ShippingAddress string            `gorm:"type:varchar(500)"`
	PaymentMethod   string            `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order aggregate.
func (m *OrderModel) ToDomain() *trade.Order {
	return &trade.Order{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.Row.entity(),
		},
		OrderNumber:     m.OrderNumber,
		CustomerID:      m.CustomerID,
		ProductID:       m.ProductID,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		TotalAmount:     m.TotalAmount,
		OrderDate:       m.OrderDate,
		Status:          m.Status,
		ShippingAddress: m.ShippingAddress,
		PaymentMethod:   m.PaymentMethod,
	}
}

// FromDomain populates the persistence model from a domain Order aggregate.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.Row = rowOf(o.BaseEntity)
	m.OrderNumber = o.OrderNumber
	m.CustomerID = o.CustomerID
	m.ProductID = o.ProductID
	m.Quantity = o.Quantity
	m.UnitPrice = o.UnitPrice
	m.TotalAmount = o.TotalAmount
	m.OrderDate = o.OrderDate
	m.Status = o.Status
	m.ShippingAddress = o.ShippingAddress
	m.PaymentMethod = o.PaymentMethod
}

// OrderModelFromDomain creates a new persistence model from a domain Order aggregate.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}
