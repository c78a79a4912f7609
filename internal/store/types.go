package store

// Batch and selection statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRunning   = "running"
)

// Applicant is a campaign participant, keyed by email.
type Applicant struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	NaverBlogURL string `json:"naverBlogUrl"`
	InstagramURL string `json:"instagramUrl"`
	ThreadsURL   string `json:"threadsUrl"`
	// RowIndex is the 1-based spreadsheet row this applicant came from.
	// 0 means unknown (applicant not sourced from a sheet).
	RowIndex  int   `json:"rowIndex"`
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// VerificationRecord is a persisted influence verification. Profile and
// criteria payloads stay as JSON; the verify package owns their shape.
type VerificationRecord struct {
	ID             string  `json:"id"`
	ApplicantEmail string  `json:"applicantEmail"`
	ProfilesJSON   string  `json:"profilesJson"`
	MeetsJSON      string  `json:"meetsJson"`
	MeetsAll       bool    `json:"meetsAll"`
	Score          float64 `json:"score"`
	VerifiedAt     int64   `json:"verifiedAt"`
}

// SelectionRecord is a persisted selection decision. It is updated in
// place as downstream side effects (sheet sync, email) complete.
type SelectionRecord struct {
	ID             string `json:"id"`
	ApplicantEmail string `json:"applicantEmail"`
	Selected       bool   `json:"selected"`
	Reason         string `json:"reason"`
	MeetsJSON      string `json:"meetsJson"`
	QualifyingJSON string `json:"qualifyingJson"`
	SnapshotJSON   string `json:"snapshotJson"`
	Status         string `json:"status"`
	SheetSynced    bool   `json:"sheetSynced"`
	EmailSent      bool   `json:"emailSent"`
	CreatedAt      int64  `json:"createdAt"`
	UpdatedAt      int64  `json:"updatedAt"`
}

// BatchProcess tracks one batch selection run. Terminal once Status
// leaves "running".
type BatchProcess struct {
	ID         string `json:"id"`
	Total      int    `json:"total"`
	Processed  int    `json:"processed"`
	Selected   int    `json:"selected"`
	Rejected   int    `json:"rejected"`
	Status     string `json:"status"`
	ErrorsJSON string `json:"errorsJson"`
	StartedAt  int64  `json:"startedAt"`
	FinishedAt *int64 `json:"finishedAt,omitempty"`
}
