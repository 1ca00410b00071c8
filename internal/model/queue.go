package model

// AnalysisMessage is the payload published to the analysis queue.
type AnalysisMessage struct {
	JobID       string        `json:"job_id"`
	Input       AnalysisInput `json:"input"`
	MaxAttempts int           `json:"max_attempts"`
	WantReport  bool          `json:"want_report"`
	WantEmail   bool          `json:"want_email"`
	Recipient   string        `json:"recipient,omitempty"`
}

// DatasetMessage is the payload published to the dataset queue.
type DatasetMessage struct {
	LoadID     string      `json:"load_id"`
	ResourceID string      `json:"resource_id"`
	Parameters []Parameter `json:"parameters,omitempty"`
}

// ReportMessage is the payload published to the report queue. Kinds lists
// which artifacts were requested; it is always a subset of
// {"xlsx","pdf","email"}.
type ReportMessage struct {
	JobID     string   `json:"job_id"`
	Kinds     []string `json:"kinds"`
	Recipient string   `json:"recipient,omitempty"`
}

const (
	ArtifactXLSX  = "xlsx"
	ArtifactPDF   = "pdf"
	ArtifactEmail = "email"
)
