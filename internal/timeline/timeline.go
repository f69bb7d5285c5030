// Package timeline buckets trip items into calendar days.
package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"TRIPPLANNER_BACK-END/internal/models"
)

// DateLayout is the wire format of a bucket date.
const DateLayout = "2006-01-02"

// Day is one calendar date and the items starting on it, ordered by start.
type Day struct {
	Date  string            `json:"date"`
	Items []models.TripItem `json:"items"`
}

// DateOf returns the YYYY-MM-DD date of t in loc.
func DateOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// ParseDate validates a requested bucket date.
func ParseDate(s string) (string, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return d.Format(DateLayout), nil
}

// Dates returns the sorted distinct dates that have at least one item.
func Dates(items []models.TripItem, loc *time.Location) []string {
	seen := make(map[string]struct{}, len(items))
	dates := make([]string, 0, len(items))
	for _, it := range items {
		d := DateOf(it.StartDatetime, loc)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Select picks the items of one date. An empty requested date selects the
// earliest date with items; the bool is false only when nothing can be
// selected (no items and no requested date). A requested date without
// items yields that date with an empty list.
func Select(items []models.TripItem, requested string, loc *time.Location) (Day, bool) {
	date := requested
	if date == "" {
		dates := Dates(items, loc)
		if len(dates) == 0 {
			return Day{Items: []models.TripItem{}}, false
		}
		date = dates[0]
	}

	day := Day{Date: date, Items: []models.TripItem{}}
	for _, it := range items {
		if DateOf(it.StartDatetime, loc) == date {
			day.Items = append(day.Items, it)
		}
	}
	sortByStart(day.Items)
	return day, true
}

// Group returns every non-empty day in date order.
func Group(items []models.TripItem, loc *time.Location) []Day {
	byDate := make(map[string][]models.TripItem)
	for _, it := range items {
		d := DateOf(it.StartDatetime, loc)
		byDate[d] = append(byDate[d], it)
	}

	days := make([]Day, 0, len(byDate))
	for _, d := range Dates(items, loc) {
		list := byDate[d]
		sortByStart(list)
		days = append(days, Day{Date: d, Items: list})
	}
	return days
}

func sortByStart(items []models.TripItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].StartDatetime.Equal(items[j].StartDatetime) {
			return items[i].StartDatetime.Before(items[j].StartDatetime)
		}
		return items[i].Name < items[j].Name
	})
}

// CalendarEvent is the shape consumed by the calendar view.
type CalendarEvent struct {
	ID    uuid.UUID  `json:"id"`
	Title string     `json:"title"`
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
	URL   string     `json:"url"`
	Type  string     `json:"type"`
}

// CalendarEvents maps items to calendar events linking back to their day.
func CalendarEvents(tripID uuid.UUID, items []models.TripItem, loc *time.Location) []CalendarEvent {
	events := make([]CalendarEvent, 0, len(items))
	for _, it := range items {
		events = append(events, CalendarEvent{
			ID:    it.ID,
			Title: it.Name,
			Start: it.StartDatetime,
			End:   it.EndDatetime,
			URL:   fmt.Sprintf("/trips/%s/timeline?date=%s", tripID, DateOf(it.StartDatetime, loc)),
			Type:  it.ItemType,
		})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	return events
}
