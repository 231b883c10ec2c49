package service

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"shiritori/internal/database"
	"shiritori/internal/models"
	"shiritori/internal/repository"
)

// BackupService exports and imports the score table as a JSON file
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// backupFile is the on-disk format
type backupFile struct {
	ExportedAt time.Time          `json:"exportedAt"`
	Scores     []models.GameScore `json:"scores"`
}

// Export writes every score row to outputPath
func (s *BackupService) Export(outputPath string) error {
	repo := repository.NewScoreRepository(s.db)
	scores, err := repo.All()
	if err != nil {
		return fmt.Errorf("failed to read scores: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(backupFile{
		ExportedAt: time.Now().UTC(),
		Scores:     scores,
	}); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	return nil
}

// Import inserts every score from inputPath in one transaction. Rows get
// fresh IDs and are re-stamped with the import time; the original
// CreatedAt is not preserved.
func (s *BackupService) Import(inputPath string) (int, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read backup file: %w", err)
	}

	var backup backupFile
	if err := json.Unmarshal(data, &backup); err != nil {
		return 0, fmt.Errorf("failed to parse backup file: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	repo := repository.NewScoreRepository(tx)
	for i := range backup.Scores {
		score := backup.Scores[i]
		score.ID = 0
		if _, err := repo.Save(&score); err != nil {
			return 0, fmt.Errorf("failed to import score %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}

	return len(backup.Scores), nil
}

// ClearAll deletes every score row of both game types
func (s *BackupService) ClearAll() error {
	repo := repository.NewScoreRepository(s.db)
	for _, gt := range []models.GameType{models.GameTypeNumber, models.GameTypeWord} {
		if _, err := repo.Clear(gt); err != nil {
			return err
		}
	}
	return nil
}
