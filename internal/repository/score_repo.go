package repository

import (
	"database/sql"
	"fmt"
	"time"

	"shiritori/internal/database"
	"shiritori/internal/models"
)

// ScoreRepository handles game score database operations
type ScoreRepository struct {
	db database.DBTX
}

// NewScoreRepository creates a new score repository
func NewScoreRepository(db database.DBTX) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Save inserts one score row and returns its ID. CreatedAt is set here,
// at write time, and is never updated afterwards.
func (r *ScoreRepository) Save(score *models.GameScore) (int64, error) {
	if err := score.Validate(); err != nil {
		return 0, err
	}

	score.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO game_scores
			(game_type, score, time_played, created_at,
			 level, min_range, max_range, memory_time,
			 topic, words_count, chain_length)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(query,
		string(score.GameType),
		score.Score,
		score.TimePlayed,
		score.CreatedAt,
		nullInt(score.Level),
		nullInt(score.MinRange),
		nullInt(score.MaxRange),
		nullInt(score.MemoryTime),
		nullString(score.Topic),
		nullInt(score.WordsCount),
		nullInt(score.ChainLength),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save score: %w", err)
	}

	score.ID = id
	return id, nil
}

// TopScores returns at most limit records of the given type, best score
// first, ties broken by earliest created_at.
func (r *ScoreRepository) TopScores(gameType models.GameType, limit int) ([]models.GameScore, error) {
	query := `
		SELECT id, game_type, score, time_played, created_at,
		       level, min_range, max_range, memory_time,
		       topic, words_count, chain_length
		FROM game_scores
		WHERE game_type = ?
		ORDER BY score DESC, created_at ASC
		LIMIT ?
	`

	rows, err := r.db.Query(query, string(gameType), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	var scores []models.GameScore
	for rows.Next() {
		score, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, *score)
	}

	return scores, rows.Err()
}

// Clear deletes every record of the given type and returns the number of
// rows removed. Clearing an empty partition returns 0, not an error.
func (r *ScoreRepository) Clear(gameType models.GameType) (int64, error) {
	result, err := r.db.Exec("DELETE FROM game_scores WHERE game_type = ?", string(gameType))
	if err != nil {
		return 0, fmt.Errorf("failed to clear scores: %w", err)
	}
	return result.RowsAffected()
}

// All returns every score row, oldest first. Used by the backup tool.
func (r *ScoreRepository) All() ([]models.GameScore, error) {
	query := `
		SELECT id, game_type, score, time_played, created_at,
		       level, min_range, max_range, memory_time,
		       topic, words_count, chain_length
		FROM game_scores
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	var scores []models.GameScore
	for rows.Next() {
		score, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, *score)
	}

	return scores, rows.Err()
}

func scanScore(rows *sql.Rows) (*models.GameScore, error) {
	score := &models.GameScore{}
	var gameType string
	var level, minRange, maxRange, memoryTime, wordsCount, chainLength sql.NullInt64
	var topic sql.NullString

	err := rows.Scan(
		&score.ID,
		&gameType,
		&score.Score,
		&score.TimePlayed,
		&score.CreatedAt,
		&level,
		&minRange,
		&maxRange,
		&memoryTime,
		&topic,
		&wordsCount,
		&chainLength,
	)
	if err != nil {
		return nil, err
	}

	score.GameType = models.GameType(gameType)
	score.Level = intPtr(level)
	score.MinRange = intPtr(minRange)
	score.MaxRange = intPtr(maxRange)
	score.MemoryTime = intPtr(memoryTime)
	score.WordsCount = intPtr(wordsCount)
	score.ChainLength = intPtr(chainLength)
	if topic.Valid {
		t := topic.String
		score.Topic = &t
	}

	return score, nil
}

func nullInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
