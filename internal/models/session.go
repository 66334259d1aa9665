package models

import "time"

// SessionState enumerates the lifecycle of a manual processing session.
type SessionState string

const (
	StateIdle      SessionState = "idle"
	StateRunning   SessionState = "running"
	StatePaused    SessionState = "paused"
	StateCompleted SessionState = "completed"
)

// TrendData carries per-topic side-channel data resolved ahead of
// processing (reference URL, category, video keywords). All fields are
// optional; the pipeline fills gaps itself.
type TrendData struct {
	URL           string   `json:"url,omitempty"`
	Category      string   `json:"category,omitempty"`
	VideoKeywords []string `json:"video_keywords,omitempty"`
}

// Session is the sole mutable state of the manual pipeline. It is rewritten
// wholesale to durable storage after every mutation.
type Session struct {
	Topics     []string             `json:"manual_trends"`
	TrendData  map[string]TrendData `json:"trend_data"`
	Cursor     int                  `json:"current_index"`
	Processed  []string             `json:"processed_trends"`
	Failed     []string             `json:"failed_trends"`
	State      SessionState         `json:"status"`
	CreatedAt  *time.Time           `json:"created_at"`
	UpdatedAt  *time.Time           `json:"updated_at"`
	Total      int                  `json:"total_trends"`
	Successful int                  `json:"successful"`
	FailedN    int                  `json:"failed"`
}

// NewSession returns an empty idle session.
func NewSession() *Session {
	return &Session{
		Topics:    []string{},
		TrendData: map[string]TrendData{},
		Processed: []string{},
		Failed:    []string{},
		State:     StateIdle,
	}
}

// SessionStatus is the read-only projection served to the operator.
type SessionStatus struct {
	State              SessionState `json:"status"`
	TotalTrends        int          `json:"total_trends"`
	CurrentIndex       int          `json:"current_index"`
	Successful         int          `json:"successful"`
	Failed             int          `json:"failed"`
	ProgressPercentage float64      `json:"progress_percentage"`
	CreatedAt          *time.Time   `json:"created_at"`
	UpdatedAt          *time.Time   `json:"updated_at"`
}

// Status projects the session into its operator-facing summary.
func (s *Session) Status() SessionStatus {
	var progress float64
	if s.Total > 0 {
		progress = float64(s.Cursor) / float64(s.Total) * 100
	}
	return SessionStatus{
		State:              s.State,
		TotalTrends:        s.Total,
		CurrentIndex:       s.Cursor,
		Successful:         s.Successful,
		Failed:             s.FailedN,
		ProgressPercentage: progress,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}
