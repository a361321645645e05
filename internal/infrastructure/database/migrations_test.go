package database

import (
	"context"
	"embed"
	"testing"
)

//go:embed testdata/migrations
var testMigrationsFS embed.FS

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		wantVersion string
		wantOK      bool
	}{
		{
			name:        "valid migration",
			filename:    "20260815_120000_decision_history.up.sql",
			wantVersion: "20260815_120000",
			wantOK:      true,
		},
		{
			name:        "multi word description",
			filename:    "20260101_000000_create_samples.up.sql",
			wantVersion: "20260101_000000",
			wantOK:      true,
		},
		{
			name:     "down migration ignored",
			filename: "20260815_120000_decision_history.down.sql",
			wantOK:   false,
		},
		{
			name:     "not a sql file",
			filename: "README.md",
			wantOK:   false,
		},
		{
			name:     "missing timestamp parts",
			filename: "20260815.up.sql",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("parseMigrationFilename(%q) ok = %v, want %v", tt.filename, ok, tt.wantOK)
			}
			if ok && version != tt.wantVersion {
				t.Errorf("parseMigrationFilename(%q) version = %q, want %q", tt.filename, version, tt.wantVersion)
			}
		})
	}
}

func TestExtractMigrationName(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"20260815_120000_decision_history.up.sql", "decision_history"},
		{"20260101_000000_create_samples.up.sql", "create_samples"},
		{"plain.up.sql", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := extractMigrationName(tt.filename); got != tt.want {
				t.Errorf("extractMigrationName(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestMigrate_AppliesAllMigrations(t *testing.T) {
	restoreMigrationsFS(t)
	MigrationsFS = testMigrationsFS
	MigrationsDir = "testdata/migrations"

	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// Both fixture migrations should be recorded
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("querying schema_migrations: %v", err)
	}
	if count != 2 {
		t.Errorf("applied migrations = %d, want 2", count)
	}

	// The migrated schema should be usable
	if _, err := db.ExecContext(ctx,
		"INSERT INTO samples (recorded_at, value) VALUES (?, ?)", "2026-08-15T12:00:00Z", 1.5,
	); err != nil {
		t.Errorf("inserting into migrated table: %v", err)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	restoreMigrationsFS(t)
	MigrationsFS = testMigrationsFS
	MigrationsDir = "testdata/migrations"

	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("first Migrate() error = %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("querying schema_migrations: %v", err)
	}
	if count != 2 {
		t.Errorf("applied migrations after re-run = %d, want 2", count)
	}
}

func TestMigrate_NoEmbeddedMigrations(t *testing.T) {
	restoreMigrationsFS(t)
	MigrationsFS = embed.FS{}

	db := openTestDB(t)

	if err := db.Migrate(context.Background()); err != nil {
		t.Errorf("Migrate() with no embedded migrations error = %v", err)
	}
}

// restoreMigrationsFS saves the package-level migration registry and
// restores it when the test completes.
func restoreMigrationsFS(t *testing.T) {
	t.Helper()

	savedFS := MigrationsFS
	savedDir := MigrationsDir
	t.Cleanup(func() {
		MigrationsFS = savedFS
		MigrationsDir = savedDir
	})
}
