package database

import (
	"path/filepath"
	"testing"
)

// openTestDB opens a temp SQLite database with the real migrations applied
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	return db
}

func TestMigrationsApplyAndAreIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database integration test in short mode")
	}

	db := openTestDB(t)

	// Schema exists
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM game_scores").Scan(&count); err != nil {
		t.Fatalf("game_scores table missing: %v", err)
	}
	if count != 0 {
		t.Fatalf("fresh table has %d rows", count)
	}

	// A second run must skip everything already recorded
	if err := db.RunMigrations(filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("second RunMigrations: %v", err)
	}

	var applied int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&applied); err != nil {
		t.Fatalf("migrations table: %v", err)
	}
	if applied != 1 {
		t.Fatalf("recorded %d migrations, want 1", applied)
	}
}

func TestExecReturningIDAndTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database integration test in short mode")
	}

	db := openTestDB(t)

	insert := `
		INSERT INTO game_scores (game_type, score, time_played, created_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	`

	id1, err := db.ExecReturningID(insert, "number", 5, 60)
	if err != nil {
		t.Fatalf("ExecReturningID: %v", err)
	}
	id2, err := db.ExecReturningID(insert, "number", 7, 90)
	if err != nil {
		t.Fatalf("ExecReturningID: %v", err)
	}
	if id2 <= id1 {
		t.Fatalf("ids not increasing: %d then %d", id1, id2)
	}

	// Rolled-back work must not be visible
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := tx.ExecReturningID(insert, "word", 3, 30); err != nil {
		t.Fatalf("tx insert: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM game_scores WHERE game_type = ?", "word").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("rolled-back row is visible, count=%d", count)
	}
}

func TestSchemaRejectsUnknownGameType(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database integration test in short mode")
	}

	db := openTestDB(t)

	_, err := db.Exec(`
		INSERT INTO game_scores (game_type, score, time_played, created_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	`, "puzzle", 1, 10)
	if err == nil {
		t.Fatal("CHECK constraint must reject unknown game types")
	}
}
