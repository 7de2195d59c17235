package api

// Record describes a stored reading.
type Record struct {
	SourceID string `json:"sourceId"`
	Date     string `json:"date"`
	Time     string `json:"time,omitempty"`
	Mileage  int64  `json:"mileage"`
	Class    string `json:"class"`
	Identity string `json:"identity"`
	Notes    string `json:"notes,omitempty"`
}

// RecordListResponse wraps a record listing.
type RecordListResponse struct {
	Records []Record `json:"records"`
	Count   int      `json:"count"`
}

// AppendRecordRequest is the body of POST /api/v1/records.
type AppendRecordRequest struct {
	SourceID string `json:"sourceId" validate:"max=1024"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Time     string `json:"time" validate:"omitempty,datetime=15:04:05"`
	Mileage  *int64 `json:"mileage" validate:"required,gte=0"`
	Class    string `json:"class"`
	Identity string `json:"identity"`
	Notes    string `json:"notes" validate:"max=4096"`
}

// AppendRecordResponse reports what happened to a submitted reading.
type AppendRecordResponse struct {
	Outcome string `json:"outcome"`
	Record  Record `json:"record"`
}

// TrendPoint is one reading with its fitted value.
type TrendPoint struct {
	Date     string  `json:"date"`
	Mileage  int64   `json:"mileage"`
	Identity string  `json:"identity"`
	Fitted   float64 `json:"fitted"`
	Residual float64 `json:"residual"`
}

// TrendResponse is the fitted trend of a selection.
type TrendResponse struct {
	Selection string       `json:"selection"`
	Degree    int          `json:"degree"`
	Points    []TrendPoint `json:"points"`
}

// Sample is one point of a projection.
type Sample struct {
	Date      string  `json:"date"`
	Mileage   float64 `json:"mileage"`
	Projected bool    `json:"projected"`
}

// ExtrapolationResponse is a sampled projection.
type ExtrapolationResponse struct {
	Selection string   `json:"selection"`
	Extended  bool     `json:"extended"`
	Degree    int      `json:"degree"`
	Earliest  string   `json:"earliest"`
	Latest    string   `json:"latest"`
	Target    string   `json:"target"`
	Samples   []Sample `json:"samples"`
}

// Neighbor is one training reading that took part in a vote.
type Neighbor struct {
	Date     string  `json:"date"`
	Mileage  int64   `json:"mileage"`
	Identity string  `json:"identity"`
	Distance float64 `json:"distance"`
}

// PredictionResponse is the outcome of an identity prediction.
type PredictionResponse struct {
	Identity  string         `json:"identity"`
	K         int            `json:"k"`
	Votes     map[string]int `json:"votes,omitempty"`
	Neighbors []Neighbor     `json:"neighbors,omitempty"`
}

// ClassReport mirrors the per-class outcome of a rebuild.
type ClassReport struct {
	Class     string         `json:"class"`
	Method    string         `json:"method"`
	Records   int            `json:"records"`
	Changed   int            `json:"changed"`
	Assigned  map[string]int `json:"assigned,omitempty"`
	LowerMean float64        `json:"lowerMean,omitempty"`
	UpperMean float64        `json:"upperMean,omitempty"`
	Reason    string         `json:"reason,omitempty"`
}

// RebuildResponse summarizes a rebuild run.
type RebuildResponse struct {
	RunID      string        `json:"runId"`
	DryRun     bool          `json:"dryRun"`
	Records    int           `json:"records"`
	Changed    int           `json:"changed"`
	DurationMs int64         `json:"durationMs"`
	Classes    []ClassReport `json:"classes"`
}

// IngestItem is the outcome for one ingested source.
type IngestItem struct {
	Source        string  `json:"source"`
	Status        string  `json:"status"`
	Candidates    []int64 `json:"candidates,omitempty"`
	Date          string  `json:"date,omitempty"`
	Time          string  `json:"time,omitempty"`
	Mileage       int64   `json:"mileage,omitempty"`
	Class         string  `json:"class,omitempty"`
	Outcome       string  `json:"outcome,omitempty"`
	Suggested     string  `json:"suggested,omitempty"`
	TimeSynthetic bool    `json:"timeSynthetic,omitempty"`
	CopiedTo      string  `json:"copiedTo,omitempty"`
	Error         string  `json:"error,omitempty"`
}

// IngestResponse summarizes an ingest run.
type IngestResponse struct {
	Items    []IngestItem   `json:"items"`
	Inserted int            `json:"inserted"`
	Merged   int            `json:"merged"`
	ByStatus map[string]int `json:"byStatus"`
}

// HealthResponse reports server readiness.
type HealthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Store   string `json:"store"`
	Records int    `json:"records"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
