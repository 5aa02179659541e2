package model

import "time"

// ResultExport is the top-level JSON structure for exam result export.
type ResultExport struct {
	ExportedAt time.Time       `json:"exported_at"`
	Grade      float64         `json:"grade,omitempty"`
	NumResults int             `json:"num_results"`
	Results    []StudentResult `json:"results"`
}

// StudentResult holds one student's finalized exam results for export.
type StudentResult struct {
	Username    string       `json:"username"`
	DisplayName string       `json:"display_name"`
	Experience  int          `json:"experience"`
	Exams       []ExamResult `json:"exams"`
	Games       []GameResult `json:"games,omitempty"`
}
