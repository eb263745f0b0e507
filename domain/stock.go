package domain

// Stock movement type codes, stored as integers on stock_movements rows.
const (
	MovementIn     = 1
	MovementOut    = 2
	MovementAdjust = 3
)

var movementNames = map[int]string{
	MovementIn:     "in",
	MovementOut:    "out",
	MovementAdjust: "adjust",
}

func MovementName(code int) string {
	return movementNames[code]
}

func ValidMovement(code int) bool {
	_, ok := movementNames[code]
	return ok
}

type StockMovement struct {
	ID           int64  `db:"id" json:"id"`
	ItemID       int64  `db:"item_id" json:"itemId"`
	MovementType int    `db:"movement_type" json:"movementType"`
	Quantity     int64  `db:"quantity" json:"quantity"`
	ResultingQty int64  `db:"resulting_qty" json:"resultingQuantity"`
	Note         string `db:"note" json:"note"`
	CreatedBy    *int64 `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt    string `db:"created_at" json:"createdAt"`
}
