package entities

import "time"

// ImportSession is the persisted record the performance tracker keeps per
// import run. It is a pure sink: nothing in the pipeline reads it back.
type ImportSession struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	RunID    string `gorm:"uniqueIndex;size:36" json:"run_id"`
	TreeID   uint   `gorm:"index" json:"tree_id"`
	Strategy string `gorm:"size:16" json:"strategy"`

	FileSizeBytes int64 `json:"file_size_bytes"`
	TotalRecords  int   `json:"total_records"`

	Individuals int `json:"individuals"`
	Families    int `json:"families"`
	Sources     int `json:"sources"`
	Notes       int `json:"notes"`
	Media       int `json:"media"`
	Documents   int `json:"documents"`
	GraphNodes  int `json:"graph_nodes"`
	GraphEdges  int `json:"graph_edges"`

	DurationMs      int64  `json:"duration_ms"`
	MemoryPeakBytes uint64 `json:"memory_peak_bytes"`

	Success      bool   `json:"success"`
	ErrorMessage string `gorm:"size:1024" json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
