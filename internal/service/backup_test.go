package service

import (
	"os"
	"path/filepath"
	"testing"

	"shiritori/internal/database"
	"shiritori/internal/models"
	"shiritori/internal/repository"
)

func newTestBackup(t *testing.T) (*BackupService, *repository.ScoreRepository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping backup integration test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	return NewBackupService(db), repository.NewScoreRepository(db)
}

func TestBackupRoundTrip(t *testing.T) {
	svc, repo := newTestBackup(t)

	if _, err := repo.Save(models.NewNumberScore(5, 60, 5, 1, 9, 3)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := repo.Save(models.NewWordScore(7, 300, "animals", 7, 15)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path := filepath.Join(t.TempDir(), "backup.json")
	if err := svc.Export(path); err != nil {
		t.Fatalf("Export: %v", err)
	}

	if err := svc.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if remaining, err := repo.All(); err != nil || len(remaining) != 0 {
		t.Fatalf("after clear: %d rows, err=%v", len(remaining), err)
	}

	n, err := svc.Import(path)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d rows, want 2", n)
	}

	restored, err := repo.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(restored) != 2 {
		t.Fatalf("restored %d rows, want 2", len(restored))
	}

	var sawWord bool
	for _, score := range restored {
		if score.GameType == models.GameTypeWord {
			sawWord = true
			if score.Topic == nil || *score.Topic != "animals" {
				t.Fatalf("word score topic = %v", score.Topic)
			}
		}
	}
	if !sawWord {
		t.Fatal("word score lost in round trip")
	}
}

func TestImportRejectsCorruptFile(t *testing.T) {
	svc, _ := newTestBackup(t)

	path := filepath.Join(t.TempDir(), "corrupt.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := svc.Import(path); err == nil {
		t.Fatal("corrupt file imported without error")
	}
}
