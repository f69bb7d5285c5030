// Package reminders e-mails item owners when an item's reminder window opens.
package reminders

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"TRIPPLANNER_BACK-END/internal/logger"
	"TRIPPLANNER_BACK-END/internal/mailer"
	"TRIPPLANNER_BACK-END/internal/metrics"
	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/timeline"
)

const lockKey = "lock:reminders"

type ItemStore interface {
	ListPendingReminders(ctx context.Context) ([]models.ReminderCandidate, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID) error
}

// Report summarizes one pass.
type Report struct {
	Pending int
	Due     int
	Sent    int
	Failed  int
	Skipped bool
}

type Job struct {
	items   ItemStore
	sender  mailer.Sender
	locker  Locker
	baseURL string
	loc     *time.Location
}

// NewJob builds a job. locker may be nil when only one process runs the scan.
func NewJob(items ItemStore, sender mailer.Sender, locker Locker, baseURL string, loc *time.Location) *Job {
	if loc == nil {
		loc = time.UTC
	}
	return &Job{items: items, sender: sender, locker: locker, baseURL: strings.TrimRight(baseURL, "/"), loc: loc}
}

// Run sends one e-mail per due item and flags it sent. A failed send leaves
// the item pending for the next pass.
func (j *Job) Run(ctx context.Context, now time.Time) (Report, error) {
	var report Report

	if j.locker != nil {
		unlock, err := j.locker.Lock(ctx, lockKey, 5*time.Minute)
		if errors.Is(err, ErrLocked) {
			logger.L().Info("reminder scan already running elsewhere, skipping")
			report.Skipped = true
			return report, nil
		}
		if err != nil {
			return report, fmt.Errorf("obtain reminder lock: %w", err)
		}
		defer unlock()
	}

	pending, err := j.items.ListPendingReminders(ctx)
	if err != nil {
		return report, err
	}
	report.Pending = len(pending)

	for _, c := range pending {
		if !c.Item.ReminderDue(now) {
			continue
		}
		report.Due++
		entry := log.WithFields(log.Fields{"item_id": c.Item.ID, "to": c.OwnerEmail})

		msg, err := j.Message(c)
		if err == nil {
			err = j.sender.Send(ctx, msg)
		}
		if err != nil {
			report.Failed++
			metrics.ReminderErrors.Inc()
			entry.Errorf("reminder not sent: %v", err)
			continue
		}

		if err := j.items.MarkReminderSent(ctx, c.Item.ID); err != nil {
			// the next pass will send it again
			entry.Errorf("reminder sent but not flagged: %v", err)
		}
		report.Sent++
		metrics.RemindersSent.Inc()
		entry.Infof("reminder sent: %s", c.Item.Name)
	}

	logger.L().Infof("reminder scan done: pending=%d due=%d sent=%d failed=%d", report.Pending, report.Due, report.Sent, report.Failed)
	return report, nil
}

var emailTemplate = template.Must(template.New("reminder").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
<h2 style="color: #1e88e5;">Lembrete de viagem</h2>
<p>Olá, {{.Name}}!</p>
<p><strong>{{.Item}}</strong> ({{.Trip}}) começa em {{.When}}.</p>
{{if .Address}}<p>Local: {{.Address}}</p>{{end}}
{{if .Notes}}<p>{{.Notes}}</p>{{end}}
<p>Ver no roteiro: <a href="{{.Link}}">{{.Link}}</a></p>
</div>
</body>
</html>`))

type emailData struct {
	Name    string
	Item    string
	Trip    string
	When    string
	Address string
	Notes   string
	Link    string
}

// Link points at the timeline day of the item.
func (j *Job) Link(c models.ReminderCandidate) string {
	return fmt.Sprintf("%s/trips/%s/timeline?date=%s", j.baseURL, c.Item.TripID, timeline.DateOf(c.Item.StartDatetime, j.loc))
}

// Message renders the reminder e-mail of c.
func (j *Job) Message(c models.ReminderCandidate) (mailer.Message, error) {
	if c.OwnerEmail == "" {
		return mailer.Message{}, errors.New("owner has no e-mail")
	}
	name := c.OwnerName
	if name == "" {
		name = c.OwnerEmail
	}

	var buf bytes.Buffer
	err := emailTemplate.Execute(&buf, emailData{
		Name:    name,
		Item:    c.Item.Name,
		Trip:    c.TripTitle,
		When:    c.Item.StartDatetime.In(j.loc).Format("02/01/2006 15:04"),
		Address: c.Item.Address(),
		Notes:   c.Item.Notes,
		Link:    j.Link(c),
	})
	if err != nil {
		return mailer.Message{}, fmt.Errorf("render reminder: %w", err)
	}

	html := buf.String()
	return mailer.Message{
		To:      c.OwnerEmail,
		Subject: fmt.Sprintf("🔔 Lembrete: %s (em %s)", c.Item.Name, c.TripTitle),
		Text:    mailer.StripTags(html),
		HTML:    html,
	}, nil
}
