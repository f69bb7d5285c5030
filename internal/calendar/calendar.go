// Package calendar converts trip items to and from iCalendar.
package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"TRIPPLANNER_BACK-END/internal/models"
)

const defaultDuration = time.Hour

// EventUID is the stable UID of an item's VEVENT.
func EventUID(itemID fmt.Stringer) string {
	return fmt.Sprintf("item-%s@trip-planner", itemID)
}

// Export renders one VEVENT per item. Times are written in UTC; an item
// without an end lasts one hour.
func Export(trip models.Trip, items []models.TripItem, now time.Time) []byte {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//trip-planner//itinerary//PT")
	cal.SetXWRCalName(trip.Title)

	for _, it := range items {
		ev := cal.AddEvent(EventUID(it.ID))
		ev.SetDtStampTime(now.UTC())
		ev.SetStartAt(it.StartDatetime.UTC())
		end := it.StartDatetime.Add(defaultDuration)
		if it.EndDatetime != nil && it.EndDatetime.After(it.StartDatetime) {
			end = *it.EndDatetime
		}
		ev.SetEndAt(end.UTC())
		ev.SetSummary(it.Name)
		if it.Notes != "" {
			ev.SetDescription(it.Notes)
		}
		if addr := it.Address(); addr != "" {
			ev.SetLocation(addr)
		}
	}
	return []byte(cal.Serialize())
}

// ImportedEvent is a VEVENT reduced to what an item needs.
type ImportedEvent struct {
	UID      string
	Name     string
	Start    time.Time
	End      *time.Time
	Location string
	Notes    string
}

// Import parses every VEVENT of r. Events without a start are skipped.
func Import(r io.Reader) ([]ImportedEvent, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	out := []ImportedEvent{}
	for _, ev := range cal.Events() {
		start, err := ev.GetStartAt()
		if err != nil {
			if start, err = ev.GetAllDayStartAt(); err != nil {
				continue
			}
		}

		imported := ImportedEvent{
			UID:      ev.Id(),
			Name:     propText(ev, ics.ComponentPropertySummary),
			Start:    start,
			Location: propText(ev, ics.ComponentPropertyLocation),
			Notes:    propText(ev, ics.ComponentPropertyDescription),
		}
		if imported.Name == "" {
			imported.Name = "Evento importado"
		}
		if end, err := ev.GetEndAt(); err == nil && end.After(start) {
			imported.End = &end
		} else if end, err := ev.GetAllDayEndAt(); err == nil && end.After(start) {
			imported.End = &end
		}
		out = append(out, imported)
	}
	return out, nil
}

func propText(ev *ics.VEvent, prop ics.ComponentProperty) string {
	p := ev.GetProperty(prop)
	if p == nil {
		return ""
	}
	return strings.TrimSpace(unescape(p.Value))
}

// unescape reverses RFC 5545 TEXT escaping.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
