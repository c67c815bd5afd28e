package database

import (
	"database/sql"
	"time"

	"github.com/salonibalkondekar/analytics/internal/models"
)

// ModelRepo handles generated model metadata operations
type ModelRepo struct{}

// NewModelRepo creates a new model repository
func NewModelRepo() *ModelRepo {
	return &ModelRepo{}
}

// Insert stores a generated model record with a server-assigned
// timestamp.
func (r *ModelRepo) Insert(m *models.GeneratedModel) error {
	m.Timestamp = time.Now().UTC()

	_, err := DB.Exec(`
		INSERT INTO generated_models (id, user_id, session_id, timestamp, prompt, generated_code, stl_file_path, stl_file_size, generation_time_ms, ai_generation_time_ms, execution_time_ms, success, error_message, download_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
	`, m.ID, m.UserID, m.SessionID, m.Timestamp, m.Prompt, m.GeneratedCode,
		m.STLFilePath, m.STLFileSize, m.GenerationTimeMs,
		m.AIGenerationTimeMs, m.ExecutionTimeMs,
		m.Success, nullableString(m.ErrorMessage))
	return err
}

// GetByID retrieves a generated model by ID
func (r *ModelRepo) GetByID(id string) (*models.GeneratedModel, error) {
	row := DB.QueryRow(`
		SELECT id, user_id, session_id, timestamp, prompt, generated_code, stl_file_path, stl_file_size, generation_time_ms, ai_generation_time_ms, execution_time_ms, success, error_message, download_count
		FROM generated_models WHERE id = ?
	`, id)
	return scanModel(row)
}

// List retrieves the most recent models, newest first.
func (r *ModelRepo) List(limit int) ([]*models.GeneratedModel, error) {
	rows, err := DB.Query(`
		SELECT id, user_id, session_id, timestamp, prompt, generated_code, stl_file_path, stl_file_size, generation_time_ms, ai_generation_time_ms, execution_time_ms, success, error_message, download_count
		FROM generated_models ORDER BY timestamp DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.GeneratedModel
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}

	return list, rows.Err()
}

// IncrementDownloadCount bumps the model's download counter. The one
// permitted post-insert mutation on this table.
func (r *ModelRepo) IncrementDownloadCount(id string) error {
	result, err := DB.Exec(
		"UPDATE generated_models SET download_count = download_count + 1 WHERE id = ?", id,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanModel(row rowScanner) (*models.GeneratedModel, error) {
	m := &models.GeneratedModel{}
	var aiTime, execTime sql.NullInt64
	var errMsg sql.NullString

	err := row.Scan(
		&m.ID, &m.UserID, &m.SessionID, &m.Timestamp, &m.Prompt,
		&m.GeneratedCode, &m.STLFilePath, &m.STLFileSize,
		&m.GenerationTimeMs, &aiTime, &execTime,
		&m.Success, &errMsg, &m.DownloadCount,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if aiTime.Valid {
		m.AIGenerationTimeMs = &aiTime.Int64
	}
	if execTime.Valid {
		m.ExecutionTimeMs = &execTime.Int64
	}
	if errMsg.Valid {
		m.ErrorMessage = errMsg.String
	}

	return m, nil
}
