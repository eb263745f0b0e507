package domain

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

type Staff struct {
	ID        int64  `db:"id" json:"id"`
	BranchID  *int64 `db:"branch_id" json:"branchId,omitempty"`
	Name      string `db:"name" json:"name"`
	Email     string `db:"email" json:"email"`
	Password  string `db:"password" json:"-"`
	Role      string `db:"role" json:"role"`
	Phone     string `db:"phone" json:"phone"`
	IsActive  bool   `db:"is_active" json:"isActive"`
	CreatedAt string `db:"created_at" json:"createdAt"`
	UpdatedAt string `db:"updated_at" json:"updatedAt"`
}
