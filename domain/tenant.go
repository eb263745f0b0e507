package domain

type Tenant struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Code      string `db:"code" json:"code"`
	Address   string `db:"address" json:"address"`
	Phone     string `db:"phone" json:"phone"`
	IsActive  bool   `db:"is_active" json:"isActive"`
	CreatedAt string `db:"created_at" json:"createdAt"`
	UpdatedAt string `db:"updated_at" json:"updatedAt"`
}

type Branch struct {
	ID        int64  `db:"id" json:"id"`
	TenantID  int64  `db:"tenant_id" json:"tenantId"`
	Name      string `db:"name" json:"name"`
	Code      string `db:"code" json:"code"`
	Address   string `db:"address" json:"address"`
	Phone     string `db:"phone" json:"phone"`
	IsActive  bool   `db:"is_active" json:"isActive"`
	CreatedAt string `db:"created_at" json:"createdAt"`
	UpdatedAt string `db:"updated_at" json:"updatedAt"`
}
