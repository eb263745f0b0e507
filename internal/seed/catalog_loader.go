package seed

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// EnsureLookups inserts the fixed order type and payment mode rows the POS
// screens select from. Safe to run on every boot.
func EnsureLookups(db *sqlx.DB) {
	lookups := []struct {
		table string
		names []string
	}{
		{"order_types", []string{"Dine-In", "Takeaway", "Delivery"}},
		{"payment_modes", []string{"Cash", "Card", "Mobile"}},
	}
	for _, lookup := range lookups {
		for _, name := range lookup.names {
			if _, err := db.Exec(`INSERT OR IGNORE INTO `+lookup.table+` (name) VALUES (?)`, name); err != nil {
				log.Printf("unable to seed %s %q: %v", lookup.table, name, err)
			}
		}
	}
}

// LoadCatalog ingests the demo menu CSV (category, name, description, price,
// image_url) under a demo tenant and branch. Skipped once any item exists.
func LoadCatalog(db *sqlx.DB, csvPath string) {
	var itemCount int64
	if err := db.Get(&itemCount, `SELECT COUNT(*) FROM items`); err != nil {
		log.Printf("unable to check item catalog: %v", err)
		return
	}
	if itemCount > 0 {
		return
	}

	file, err := os.Open(csvPath)
	if err != nil {
		log.Printf("unable to load menu catalog %s: %v", csvPath, err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Printf("unable to read catalog header: %v", err)
		return
	}

	tx, err := db.Beginx()
	if err != nil {
		log.Printf("unable to start catalog transaction: %v", err)
		return
	}

	var tenantID int64
	if err := tx.QueryRowx(`INSERT INTO tenants (name, code) VALUES (?, ?) RETURNING id`, "Demo Restaurant", "DEMO").Scan(&tenantID); err != nil {
		log.Printf("unable to seed demo tenant: %v", err)
		_ = tx.Rollback()
		return
	}
	if _, err := tx.Exec(`INSERT INTO branches (tenant_id, name, code) VALUES (?, ?, ?)`, tenantID, "Main", "MAIN"); err != nil {
		log.Printf("unable to seed demo branch: %v", err)
		_ = tx.Rollback()
		return
	}

	categories := make(map[string]int64)
	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("unable to read catalog row: %v", err)
			continue
		}
		if len(record) < 4 {
			continue
		}
		category := strings.TrimSpace(record[0])
		name := strings.TrimSpace(record[1])
		description := strings.TrimSpace(record[2])
		price, err := decimal.NewFromString(strings.TrimSpace(record[3]))
		if err != nil || name == "" || category == "" {
			continue
		}
		imageURL := ""
		if len(record) > 4 {
			imageURL = strings.TrimSpace(record[4])
		}

		categoryID, ok := categories[category]
		if !ok {
			if err := tx.QueryRowx(`INSERT INTO categories (tenant_id, name, display_order) VALUES (?, ?, ?) RETURNING id`,
				tenantID, category, len(categories)).Scan(&categoryID); err != nil {
				log.Printf("unable to seed category %s: %v", category, err)
				continue
			}
			categories[category] = categoryID
		}

		if _, err := tx.Exec(`INSERT INTO items (tenant_id, category_id, name, description, price, image_url, stock_qty) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			tenantID, categoryID, name, description, price, imageURL, 100); err != nil {
			log.Printf("unable to insert item %s: %v", name, err)
		} else {
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("unable to commit catalog seed: %v", err)
	} else {
		log.Printf("seeded menu catalog with %d items", rows)
	}
}
