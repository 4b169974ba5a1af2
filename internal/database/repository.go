package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tractionmeter/tractionmeter/internal/types"
)

// Snapshot is one persisted composite-score record.
type Snapshot struct {
	ID        int64                `json:"id"`
	Entity    string               `json:"entity"`
	Category  types.Category       `json:"category"`
	Score     types.CompositeScore `json:"score"`
	CreatedAt time.Time            `json:"created_at"`
}

// Repository persists and queries score snapshots.
type Repository struct {
	db *DB
}

// NewRepository creates a repository over db.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// SaveSnapshot persists one scoring result for an entity.
func (r *Repository) SaveSnapshot(entity string, category types.Category, score types.CompositeScore) error {
	breakdown, err := json.Marshal(score.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to encode breakdown: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO score_snapshots
			(entity, category, overall, growth, social, team_health, policy,
			 growth_weight, social_weight, breakdown, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entity, string(category), score.Overall, score.Growth, score.Social,
		score.TeamHealth, score.Policy, score.Weights.Growth, score.Weights.Social,
		string(breakdown), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// History returns the most recent snapshots for an entity, newest first.
func (r *Repository) History(entity string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.db.Query(`
		SELECT id, entity, category, overall, growth, social, team_health,
		       policy, growth_weight, social_weight, breakdown, created_at
		FROM score_snapshots
		WHERE entity = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, entity, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// Latest returns the most recent snapshot for an entity, or sql.ErrNoRows.
func (r *Repository) Latest(entity string) (Snapshot, error) {
	row := r.db.QueryRow(`
		SELECT id, entity, category, overall, growth, social, team_health,
		       policy, growth_weight, social_weight, breakdown, created_at
		FROM score_snapshots
		WHERE entity = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, entity)
	return scanSnapshot(row)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(row rowScanner) (Snapshot, error) {
	var (
		s         Snapshot
		category  string
		breakdown string
	)
	err := row.Scan(&s.ID, &s.Entity, &category, &s.Score.Overall, &s.Score.Growth,
		&s.Score.Social, &s.Score.TeamHealth, &s.Score.Policy,
		&s.Score.Weights.Growth, &s.Score.Weights.Social, &breakdown, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return Snapshot{}, err
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to scan snapshot: %w", err)
	}
	s.Category = types.Category(category)
	if err := json.Unmarshal([]byte(breakdown), &s.Score.Breakdown); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode breakdown: %w", err)
	}
	return s, nil
}
