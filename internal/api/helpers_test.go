package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"restopos/internal/migrations"
	"restopos/internal/seed"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// newTestServer boots the full router against a fresh in-memory database
// and returns an admin token for authenticated calls.
func newTestServer(t *testing.T) (*httptest.Server, *sqlx.DB, string) {
	t.Helper()

	db, err := sqlx.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	migrations.Run(db)
	seed.EnsureLookups(db)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(db, "test_secret", logger)
	server := httptest.NewServer(h.Router([]string{"*"}))
	t.Cleanup(server.Close)

	token := registerStaff(t, server.URL, "Test Admin", "admin@example.com", "admin", nil)
	return server, db, token
}

func registerStaff(t *testing.T, baseURL, name, email, role string, branchID *int64) string {
	t.Helper()
	body := map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": "secret123",
		"role":     role,
	}
	if branchID != nil {
		body["branchId"] = *branchID
	}
	var resp struct {
		Token string `json:"token"`
	}
	status := request(t, http.MethodPost, baseURL+"/auth/register", "", body, &resp)
	if status != http.StatusCreated {
		t.Fatalf("register %s: status = %d, want 201", email, status)
	}
	if resp.Token == "" {
		t.Fatal("register returned empty token")
	}
	return resp.Token
}

// request performs an HTTP call and decodes the response into out when it
// is non-nil. Returns the status code.
func request(t *testing.T, method, url, token string, body, out interface{}) int {
	t.Helper()
	return requestWithHeaders(t, method, url, token, nil, body, out)
}

func requestWithHeaders(t *testing.T, method, url, token string, headers map[string]string, body, out interface{}) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode response %q: %v", raw, err)
		}
	}
	return resp.StatusCode
}

type errorBody struct {
	Message string `json:"message"`
	Field   string `json:"field"`
}

// fixtures is the standard data set order and stock tests run against.
type fixtures struct {
	TenantID   int64
	BranchID   int64
	CategoryID int64
	SoupID     int64 // 10.00, stock 20
	BreadID    int64 // 6.00, stock 5
}

func seedFixtures(t *testing.T, db *sqlx.DB) fixtures {
	t.Helper()
	var f fixtures

	if err := db.QueryRowx(`INSERT INTO tenants (name, code) VALUES ('Fixture Tenant', 'FIX') RETURNING id`).Scan(&f.TenantID); err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	if err := db.QueryRowx(`INSERT INTO branches (tenant_id, name, code) VALUES (?, 'Main', 'MAIN') RETURNING id`, f.TenantID).Scan(&f.BranchID); err != nil {
		t.Fatalf("seed branch: %v", err)
	}
	if err := db.QueryRowx(`INSERT INTO categories (tenant_id, name) VALUES (?, 'Mains') RETURNING id`, f.TenantID).Scan(&f.CategoryID); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	if err := db.QueryRowx(
		`INSERT INTO items (tenant_id, category_id, name, price, stock_qty) VALUES (?, ?, 'Tomato Soup', '10.00', 20) RETURNING id`,
		f.TenantID, f.CategoryID).Scan(&f.SoupID); err != nil {
		t.Fatalf("seed soup: %v", err)
	}
	if err := db.QueryRowx(
		`INSERT INTO items (tenant_id, category_id, name, price, stock_qty) VALUES (?, ?, 'Flatbread', '6.00', 5) RETURNING id`,
		f.TenantID, f.CategoryID).Scan(&f.BreadID); err != nil {
		t.Fatalf("seed bread: %v", err)
	}
	return f
}

func stockOf(t *testing.T, db *sqlx.DB, itemID int64) int64 {
	t.Helper()
	var qty int64
	if err := db.Get(&qty, "SELECT stock_qty FROM items WHERE id = ?", itemID); err != nil {
		t.Fatalf("read stock: %v", err)
	}
	return qty
}

func orderCount(t *testing.T, db *sqlx.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Get(&count, "SELECT COUNT(1) FROM orders"); err != nil {
		t.Fatalf("count orders: %v", err)
	}
	return count
}

func apiURL(server *httptest.Server, format string, args ...interface{}) string {
	return server.URL + fmt.Sprintf(format, args...)
}
