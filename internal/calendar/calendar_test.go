package calendar

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TRIPPLANNER_BACK-END/internal/models"
)

func TestExportImportRoundTrip(t *testing.T) {
	addr := "Praça do Comércio, Lisboa"
	end := time.Date(2026, 11, 2, 12, 0, 0, 0, time.UTC)
	items := []models.TripItem{
		{ID: uuid.New(), Name: "Passeio; centro", StartDatetime: time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC), EndDatetime: &end, LocationAddress: &addr, Notes: "levar água"},
		{ID: uuid.New(), Name: "Jantar", StartDatetime: time.Date(2026, 11, 2, 20, 0, 0, 0, time.UTC)},
	}

	data := Export(models.Trip{Title: "Lisboa"}, items, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))
	text := string(data)
	assert.Contains(t, text, "BEGIN:VCALENDAR")
	assert.Contains(t, text, "UID:"+EventUID(items[0].ID))

	events, err := Import(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "Passeio; centro", events[0].Name)
	assert.True(t, items[0].StartDatetime.Equal(events[0].Start))
	assert.Equal(t, addr, events[0].Location)
	assert.Equal(t, "levar água", events[0].Notes)
	require.NotNil(t, events[0].End)
	assert.True(t, end.Equal(*events[0].End))

	assert.Equal(t, "Jantar", events[1].Name)
	require.NotNil(t, events[1].End)
	assert.Equal(t, time.Hour, events[1].End.Sub(events[1].Start))
}

func TestImportSkipsEventsWithoutStart(t *testing.T) {
	src := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:a@test",
		"SUMMARY:Sem data",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:b@test",
		"DTSTART:20261105T130000Z",
		"SUMMARY:Museu",
		"LOCATION:Rua X\\, 10",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	events, err := Import(strings.NewReader(src))
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, "Museu", events[0].Name)
	assert.Equal(t, "Rua X, 10", events[0].Location)
	assert.Nil(t, events[0].End)
	assert.True(t, time.Date(2026, 11, 5, 13, 0, 0, 0, time.UTC).Equal(events[0].Start))
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, "a, b; c\nd\\e", unescape(`a\, b\; c\nd\\e`))
	assert.Equal(t, "plain", unescape("plain"))
}
