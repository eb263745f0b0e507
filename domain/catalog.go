package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID           int64  `db:"id" json:"id"`
	TenantID     int64  `db:"tenant_id" json:"tenantId"`
	Name         string `db:"name" json:"name"`
	DisplayOrder int64  `db:"display_order" json:"displayOrder"`
	IsActive     bool   `db:"is_active" json:"isActive"`
	CreatedAt    string `db:"created_at" json:"createdAt"`
	UpdatedAt    string `db:"updated_at" json:"updatedAt"`
}

type Item struct {
	ID          int64           `db:"id" json:"id"`
	TenantID    int64           `db:"tenant_id" json:"tenantId"`
	CategoryID  int64           `db:"category_id" json:"categoryId"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	ImageURL    string          `db:"image_url" json:"imageUrl"`
	IsActive    bool            `db:"is_active" json:"isActive"`
	IsAvailable bool            `db:"is_available" json:"isAvailable"`
	StockQty    int64           `db:"stock_qty" json:"stockQuantity"`
	CreatedAt   string          `db:"created_at" json:"createdAt"`
	UpdatedAt   string          `db:"updated_at" json:"updatedAt"`
}
