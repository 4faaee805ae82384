// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
//   - base.go: Row and the model list used for auto-migration
//   - catalog.go: categories and products
//   - partner.go: customers
//   - trade.go: orders
//
// Foreign keys declared through the association fields match the SQL migrations:
// products.category_id is SET NULL, orders.customer_id is CASCADE and
// orders.product_id is RESTRICT.
package models
