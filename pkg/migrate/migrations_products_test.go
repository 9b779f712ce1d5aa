package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mfigueroa/showroom-backend/pkg/migrate"
)

func TestProductsMigrationContainsSchema(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_products.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no products migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"gen_random_uuid()",
		"primary_image_url TEXT NOT NULL",
		"secondary_image_url TEXT",
		"display_order INTEGER NOT NULL DEFAULT 0",
		"ON products (display_order DESC, created_at DESC)",
		"DROP TABLE IF EXISTS products",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateMigrationsDir(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir failed validation: %v", err)
	}
}
