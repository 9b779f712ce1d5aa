package products

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const productsSchema = `
CREATE TABLE products (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    year_launched INTEGER NOT NULL,
    primary_image_url TEXT NOT NULL,
    secondary_image_url TEXT,
    category TEXT,
    display_order INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);`

// openTestDB gives each test its own named in-memory database so parallel
// tests never share state.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.Exec(productsSchema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return conn
}
