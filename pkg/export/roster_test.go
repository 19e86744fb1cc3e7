package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRoster() Roster {
	start := time.Date(2026, 6, 6, 8, 0, 0, 0, time.UTC)
	return Roster{
		EventName: "5K Run",
		Entries: []RosterEntry{
			{
				PositionName:  "Water Station",
				VolunteerName: "Alice",
				Email:         "alice@example.com",
				StartTime:     start,
				EndTime:       start.Add(4 * time.Hour),
				Arrived:       true,
			},
			{
				PositionName:  "Registration",
				VolunteerName: "Bob",
				StartTime:     start,
				EndTime:       start.Add(2 * time.Hour),
			},
		},
	}
}

func TestRosterRenderCSV(t *testing.T) {
	data, err := sampleRoster().RenderCSV()
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, rosterHeaders, records[0])
	assert.Equal(t, "Water Station", records[1][0])
	assert.Equal(t, "alice@example.com", records[1][2])
	assert.Equal(t, "2026-06-06 08:00", records[1][4])
	assert.Equal(t, "yes", records[1][6])
	assert.Equal(t, "no", records[2][6])
}

func TestRosterRenderCSVEmpty(t *testing.T) {
	data, err := Roster{EventName: "Empty"}.RenderCSV()
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestRosterRenderPDF(t *testing.T) {
	data, err := sampleRoster().RenderPDF()
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
