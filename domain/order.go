package domain

import "github.com/shopspring/decimal"

type Order struct {
	ID                 int64            `db:"id" json:"id"`
	OrderNo            string           `db:"order_no" json:"orderNo"`
	BranchID           int64            `db:"branch_id" json:"branchId"`
	OrderTypeID        int64            `db:"order_type_id" json:"orderTypeId"`
	PaymentModeID      *int64           `db:"payment_mode_id" json:"paymentModeId,omitempty"`
	StaffID            *int64           `db:"staff_id" json:"staffId,omitempty"`
	CustomerID         *int64           `db:"customer_id" json:"customerId,omitempty"`
	TableID            *int64           `db:"table_id" json:"tableId,omitempty"`
	KitchenID          *int64           `db:"kitchen_id" json:"kitchenId,omitempty"`
	StatusCode         int              `db:"status_code" json:"statusCode"`
	Subtotal           decimal.Decimal  `db:"subtotal" json:"subtotal"`
	TaxAmount          decimal.Decimal  `db:"tax_amount" json:"taxAmount"`
	TaxPercentage      *decimal.Decimal `db:"tax_percentage" json:"taxPercentage,omitempty"`
	DiscountAmount     decimal.Decimal  `db:"discount_amount" json:"discountAmount"`
	DiscountPercentage *decimal.Decimal `db:"discount_percentage" json:"discountPercentage,omitempty"`
	EffectiveTax       decimal.Decimal  `db:"effective_tax" json:"effectiveTax"`
	EffectiveDiscount  decimal.Decimal  `db:"effective_discount" json:"effectiveDiscount"`
	GrandTotal         decimal.Decimal  `db:"grand_total" json:"grandTotal"`
	Notes              string           `db:"notes" json:"notes"`
	IdempotencyKey     *string          `db:"idempotency_key" json:"-"`
	CreatedAt          string           `db:"created_at" json:"createdAt"`
	UpdatedAt          string           `db:"updated_at" json:"updatedAt"`
	Items              []OrderItem      `db:"-" json:"items,omitempty"`
}

type OrderItem struct {
	ID        int64           `db:"id" json:"id"`
	OrderID   int64           `db:"order_id" json:"orderId"`
	ItemID    int64           `db:"item_id" json:"itemId"`
	ItemName  string          `db:"item_name" json:"itemName"`
	Quantity  int64           `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unitPrice"`
	LineTotal decimal.Decimal `db:"line_total" json:"lineTotal"`
	Notes     string          `db:"notes" json:"notes"`
}

// OrderSubmission is the wire shape of a POS draft submit. The same struct is
// decoded by the server and produced by the client, so the two sides cannot
// drift. Unit prices are the snapshots the draft captured at add time.
type OrderSubmission struct {
	BranchID           int64            `json:"branchId" validate:"required,gt=0"`
	OrderTypeID        int64            `json:"orderTypeId" validate:"required,gt=0"`
	PaymentModeID      *int64           `json:"paymentModeId,omitempty"`
	StaffID            *int64           `json:"staffId,omitempty"`
	CustomerID         *int64           `json:"customerId,omitempty"`
	TableID            *int64           `json:"tableId,omitempty"`
	KitchenID          *int64           `json:"kitchenId,omitempty"`
	Items              []LineSubmission `json:"items" validate:"required,min=1,dive"`
	TaxAmount          *decimal.Decimal `json:"taxAmount,omitempty"`
	TaxPercentage      *decimal.Decimal `json:"taxPercentage,omitempty"`
	DiscountAmount     *decimal.Decimal `json:"discountAmount,omitempty"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage,omitempty"`
	Notes              string           `json:"notes,omitempty"`
}

type LineSubmission struct {
	ItemID    int64           `json:"itemId" validate:"required,gt=0"`
	Quantity  int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Notes     string          `json:"notes,omitempty"`
}
