package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Report kinds the worker knows how to render.
const (
	KindDashboard = "dashboard"
	KindHealth    = "health"
)

// ReportRequest asks the worker to compute and export one report. The
// worker loads the snapshot itself; the message only carries the run
// identity and the reporting window.
type ReportRequest struct {
	RunID       string    `json:"runId"`
	Kind        string    `json:"kind"`
	Currency    string    `json:"currency"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	RequestedAt time.Time `json:"requestedAt"`
}

// NewReportRequest stamps a request with the current time.
func NewReportRequest(runID, kind, currency string, from, to time.Time) *ReportRequest {
	return &ReportRequest{
		RunID:       runID,
		Kind:        kind,
		Currency:    currency,
		From:        from,
		To:          to,
		RequestedAt: time.Now(),
	}
}

// Validate rejects requests the worker could not act on.
func (m *ReportRequest) Validate() error {
	if m.RunID == "" {
		return fmt.Errorf("report request missing run id")
	}
	switch m.Kind {
	case KindDashboard, KindHealth:
	default:
		return fmt.Errorf("unknown report kind %q", m.Kind)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *ReportRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportRequestFromJSON creates a message from JSON bytes
func ReportRequestFromJSON(data []byte) (*ReportRequest, error) {
	var msg ReportRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
