package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiberwatch.sh/internal/faults"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC)

	tests := []struct {
		name  string
		input string
	}{
		{"rfc3339", "2024-05-01T10:20:30Z"},
		{"rfc3339 offset", "2024-05-01T12:20:30+02:00"},
		{"iso without zone", "2024-05-01T10:20:30"},
		{"sqlite", "2024-05-01 10:20:30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := ParseTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, want.Equal(ts.Time), "got %s", ts.Time)
		})
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestMeasurementDecode(t *testing.T) {
	body := `[
		{"timestamp":"2024-05-01 10:20:30","device_name":"OLT-1","signal_power":-12.5,"attenuation":0.3,"distance":1200,"fault_type":"No Fault","confidence":0.91},
		{"timestamp":"2024-05-01T10:21:30","device_name":null,"signal_power":-45,"attenuation":2.1,"distance":800,"fault_type":"Bend Loss","confidence":0.4}
	]`

	var ms []Measurement
	require.NoError(t, json.Unmarshal([]byte(body), &ms))
	require.Len(t, ms, 2)

	assert.Equal(t, "OLT-1", ms[0].Device())
	assert.Equal(t, faults.NoFault, ms[0].FaultType)
	assert.Equal(t, "", ms[1].Device())
	assert.Equal(t, faults.FaultType("Bend Loss"), ms[1].FaultType)
	assert.False(t, ms[1].FaultType.Known())
}

func TestStatsDecodeOptionalCounters(t *testing.T) {
	var s StatsSnapshot
	require.NoError(t, json.Unmarshal([]byte(`{"device_count":2,"measurement_count":10,"fault_distribution":{"No Fault":10}}`), &s))
	assert.Nil(t, s.NotificationCount)
	assert.Nil(t, s.RecentAlerts)

	require.NoError(t, json.Unmarshal([]byte(`{"device_count":2,"measurement_count":10,"fault_distribution":{},"notification_count":4,"recent_alerts":1}`), &s))
	require.NotNil(t, s.NotificationCount)
	assert.Equal(t, 4, *s.NotificationCount)
	assert.Equal(t, 1, *s.RecentAlerts)
}

func TestPredictionResultRequiresFields(t *testing.T) {
	var p PredictionResult
	err := json.Unmarshal([]byte(`{"prediction":"High Loss","probabilities":{"High Loss":0.7,"No Fault":0.3},"confidence":0.7}`), &p)
	require.NoError(t, err)
	assert.Equal(t, faults.HighLoss, p.Prediction)
	assert.InDelta(t, 0.7, p.Probabilities[faults.HighLoss], 1e-9)

	err = json.Unmarshal([]byte(`{"prediction":"High Loss"}`), &p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "probabilities")
	assert.Contains(t, err.Error(), "confidence")

	err = json.Unmarshal([]byte(`{"error":"bad input"}`), &p)
	assert.Error(t, err)
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := Timestamp{Time: time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC)}
	b, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-05-01T10:20:30Z"`, string(b))
}
