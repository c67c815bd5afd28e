package models

import "time"

// GeneratedModel stores metadata for one generated CAD model. Rows are
// never updated after insert except for DownloadCount.
type GeneratedModel struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	SessionID          string    `json:"session_id"`
	Timestamp          time.Time `json:"timestamp"`
	Prompt             string    `json:"prompt"`
	GeneratedCode      string    `json:"generated_code"`
	STLFilePath        string    `json:"stl_file_path"`
	STLFileSize        int64     `json:"stl_file_size"`
	GenerationTimeMs   int64     `json:"generation_time_ms"`
	AIGenerationTimeMs *int64    `json:"ai_generation_time_ms,omitempty"`
	ExecutionTimeMs    *int64    `json:"execution_time_ms,omitempty"`
	Success            bool      `json:"success"`
	ErrorMessage       string    `json:"error_message,omitempty"`
	DownloadCount      int       `json:"download_count"`
}

// StoreModelRequest is the body for POST /models/store.
type StoreModelRequest struct {
	ModelID            string `json:"model_id"`
	Prompt             string `json:"prompt"`
	GeneratedCode      string `json:"generated_code"`
	STLFilePath        string `json:"stl_file_path"`
	STLFileSize        int64  `json:"stl_file_size"`
	GenerationTimeMs   int64  `json:"generation_time_ms"`
	AIGenerationTimeMs *int64 `json:"ai_generation_time_ms"`
	ExecutionTimeMs    *int64 `json:"execution_time_ms"`
	Success            *bool  `json:"success"`
	ErrorMessage       string `json:"error_message"`
}
