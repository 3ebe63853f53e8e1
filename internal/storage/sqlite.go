package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"meal-lens/internal/models"
)

// SQLiteStorage keeps the append-only analysis history. Analysis results
// themselves are per-request values; only a derived summary row is stored.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS analyses (
        id TEXT PRIMARY KEY,
        food_description TEXT NOT NULL,
        meal_count INTEGER NOT NULL,
        energy REAL NOT NULL,
        protein REAL NOT NULL,
        carbohydrate REAL NOT NULL,
        fat REAL NOT NULL,
        created_at DATETIME NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// RecordAnalysis appends one history row for a completed analysis and
// returns the stored record.
func (s *SQLiteStorage) RecordAnalysis(foodDescription string, result *models.AnalysisResult) (*models.AnalysisRecord, error) {
	record := &models.AnalysisRecord{
		ID:              uuid.NewString(),
		FoodDescription: foodDescription,
		MealCount:       len(result.LoggedMeals),
		DailyTotals:     result.DailyTotals,
		CreatedAt:       time.Now().UTC(),
	}

	query := `
        INSERT INTO analyses (id, food_description, meal_count, energy, protein, carbohydrate, fat, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := s.db.Exec(query,
		record.ID, record.FoodDescription, record.MealCount,
		record.DailyTotals.Energy, record.DailyTotals.Protein,
		record.DailyTotals.Carbohydrate, record.DailyTotals.Fat,
		record.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to insert analysis: %w", err)
	}

	return record, nil
}

// RecentAnalyses returns the newest history rows, most recent first.
func (s *SQLiteStorage) RecentAnalyses(limit int) ([]*models.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
        SELECT id, food_description, meal_count, energy, protein, carbohydrate, fat, created_at
        FROM analyses
        ORDER BY created_at DESC, id
        LIMIT ?
    `

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var records []*models.AnalysisRecord
	for rows.Next() {
		record := &models.AnalysisRecord{}
		var createdAtStr string

		err := rows.Scan(
			&record.ID, &record.FoodDescription, &record.MealCount,
			&record.DailyTotals.Energy, &record.DailyTotals.Protein,
			&record.DailyTotals.Carbohydrate, &record.DailyTotals.Fat,
			&createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}

		if record.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		records = append(records, record)
	}

	return records, rows.Err()
}
