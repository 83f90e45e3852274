package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name     string
		start    Date
		end      Date
		today    Date
		expected TripStatus
	}{
		{
			name:     "today inside range",
			start:    NewDate(2024, time.June, 10),
			end:      NewDate(2024, time.June, 20),
			today:    NewDate(2024, time.June, 15),
			expected: TripStatusOngoing,
		},
		{
			name:     "end date passed",
			start:    NewDate(2024, time.June, 10),
			end:      NewDate(2024, time.June, 20),
			today:    NewDate(2024, time.June, 21),
			expected: TripStatusCompleted,
		},
		{
			name:     "start date in the future",
			start:    NewDate(2024, time.July, 1),
			end:      NewDate(2024, time.July, 10),
			today:    NewDate(2024, time.June, 15),
			expected: TripStatusPlanned,
		},
		{
			name:     "single-day trip on today",
			start:    NewDate(2024, time.June, 15),
			end:      NewDate(2024, time.June, 15),
			today:    NewDate(2024, time.June, 15),
			expected: TripStatusOngoing,
		},
		{
			name:     "starts today",
			start:    NewDate(2024, time.June, 15),
			end:      NewDate(2024, time.June, 20),
			today:    NewDate(2024, time.June, 15),
			expected: TripStatusOngoing,
		},
		{
			name:     "ends today",
			start:    NewDate(2024, time.June, 10),
			end:      NewDate(2024, time.June, 15),
			today:    NewDate(2024, time.June, 15),
			expected: TripStatusOngoing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyStatus(tt.start, tt.end, tt.today))
		})
	}
}

func TestClassifyStatusIgnoresTimeOfDay(t *testing.T) {
	// DateOf strips the time component, so a trip ending "today" at any
	// wall-clock time is still ongoing.
	lateEvening := time.Date(2024, time.June, 15, 23, 45, 0, 0, time.UTC)
	today := DateOf(lateEvening)
	start := NewDate(2024, time.June, 10)
	end := NewDate(2024, time.June, 15)

	assert.Equal(t, TripStatusOngoing, ClassifyStatus(start, end, today))
}

func TestTripStatusIsValid(t *testing.T) {
	assert.True(t, TripStatusPlanned.IsValid())
	assert.True(t, TripStatusOngoing.IsValid())
	assert.True(t, TripStatusCompleted.IsValid())
	assert.False(t, TripStatus("CANCELLED").IsValid())
	assert.False(t, TripStatus("").IsValid())
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2024, time.June, 15)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-06-15"`, string(data))

	var parsed Date
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.True(t, parsed.Equal(d.Time))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-15", d.String())

	_, err = ParseDate("15/06/2024")
	assert.Error(t, err)
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, time.June, 15, 13, 30, 0, 0, time.UTC)))
	assert.Equal(t, "2024-06-15", d.String())

	require.NoError(t, d.Scan("2024-07-01"))
	assert.Equal(t, "2024-07-01", d.String())

	assert.Error(t, d.Scan(42))
}

func TestTripJSONUsesCalendarDates(t *testing.T) {
	trip := Trip{
		ID:          "t-1",
		OwnerID:     "u-1",
		Title:       "Summer in Rome",
		Destination: "Roma, Italia",
		StartDate:   NewDate(2024, time.June, 10),
		EndDate:     NewDate(2024, time.June, 20),
		Status:      TripStatusPlanned,
	}

	data, err := json.Marshal(trip)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"startDate":"2024-06-10"`)
	assert.Contains(t, string(data), `"endDate":"2024-06-20"`)
}
