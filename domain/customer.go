package domain

type Customer struct {
	ID        int64  `db:"id" json:"id"`
	TenantID  int64  `db:"tenant_id" json:"tenantId"`
	Name      string `db:"name" json:"name"`
	Phone     string `db:"phone" json:"phone"`
	Email     string `db:"email" json:"email"`
	IsActive  bool   `db:"is_active" json:"isActive"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

type DiningTable struct {
	ID          int64  `db:"id" json:"id"`
	BranchID    int64  `db:"branch_id" json:"branchId"`
	TableNumber int64  `db:"table_number" json:"tableNumber"`
	Seats       int64  `db:"seats" json:"seats"`
	IsActive    bool   `db:"is_active" json:"isActive"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
}

type Kitchen struct {
	ID        int64  `db:"id" json:"id"`
	BranchID  int64  `db:"branch_id" json:"branchId"`
	Name      string `db:"name" json:"name"`
	IsActive  bool   `db:"is_active" json:"isActive"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

type OrderType struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	IsActive bool   `db:"is_active" json:"isActive"`
}

type PaymentMode struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	IsActive bool   `db:"is_active" json:"isActive"`
}
