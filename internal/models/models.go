// Package models contains the wire types exchanged with the fault-detection
// backend.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fiberwatch.sh/internal/faults"
)

// timestampLayouts are tried in order. The backend stores timestamps with
// SQLite's CURRENT_TIMESTAMP, which has no zone and a space separator.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Timestamp is an instant decoded leniently from ISO-8601 text.
// Values without a zone are taken as UTC.
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses s with the accepted layouts.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// Measurement is one row of GET /api/data/recent.
type Measurement struct {
	Timestamp   Timestamp        `json:"timestamp"`
	DeviceName  *string          `json:"device_name"`
	SignalPower float64          `json:"signal_power"`
	Attenuation float64          `json:"attenuation"`
	Distance    float64          `json:"distance"`
	FaultType   faults.FaultType `json:"fault_type"`
	Confidence  float64          `json:"confidence"`
}

// Device returns the device name, or "" when the backend sent null.
func (m Measurement) Device() string {
	if m.DeviceName == nil {
		return ""
	}
	return *m.DeviceName
}

// StatsSnapshot is the body of GET /api/data/stats.
type StatsSnapshot struct {
	DeviceCount       int                      `json:"device_count"`
	MeasurementCount  int                      `json:"measurement_count"`
	FaultDistribution map[faults.FaultType]int `json:"fault_distribution"`

	// Optional counters; nil when the backend does not report them.
	NotificationCount *int `json:"notification_count,omitempty"`
	RecentAlerts      *int `json:"recent_alerts,omitempty"`
}

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	SignalPower float64 `json:"signal_power"`
	Attenuation float64 `json:"attenuation"`
	Distance    float64 `json:"distance"`
}

// PredictionResult is the body of a successful POST /predict.
type PredictionResult struct {
	Prediction    faults.FaultType             `json:"prediction"`
	Probabilities map[faults.FaultType]float64 `json:"probabilities"`
	Confidence    float64                      `json:"confidence"`
}

// UnmarshalJSON requires all three fields to be present.
func (p *PredictionResult) UnmarshalJSON(b []byte) error {
	var raw struct {
		Prediction    *faults.FaultType             `json:"prediction"`
		Probabilities *map[faults.FaultType]float64 `json:"probabilities"`
		Confidence    *float64                      `json:"confidence"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var missing []string
	if raw.Prediction == nil {
		missing = append(missing, "prediction")
	}
	if raw.Probabilities == nil || *raw.Probabilities == nil {
		missing = append(missing, "probabilities")
	}
	if raw.Confidence == nil {
		missing = append(missing, "confidence")
	}
	if len(missing) > 0 {
		return fmt.Errorf("prediction response missing %s", strings.Join(missing, ", "))
	}

	p.Prediction = *raw.Prediction
	p.Probabilities = *raw.Probabilities
	p.Confidence = *raw.Confidence
	return nil
}

// Health is the body of GET /api/health.
type Health struct {
	Status string `json:"status"`
}
