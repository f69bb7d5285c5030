package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"TRIPPLANNER_BACK-END/internal/models"
)

type ItemRepository struct {
	pool *pgxpool.Pool
}

func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

const itemColumns = `i.id, i.trip_id, i.item_type, i.name, i.start_datetime, i.end_datetime,
	i.location_address, i.location_lat, i.location_lng, i.notes,
	i.weather_temp, i.weather_condition, i.weather_icon,
	i.reminder_hours, i.reminder_sent, i.created_at, i.updated_at`

func scanItem(row pgx.Row, extra ...any) (*models.TripItem, error) {
	var it models.TripItem
	dest := append([]any{
		&it.ID, &it.TripID, &it.ItemType, &it.Name, &it.StartDatetime, &it.EndDatetime,
		&it.LocationAddress, &it.LocationLat, &it.LocationLng, &it.Notes,
		&it.WeatherTemp, &it.WeatherCondition, &it.WeatherIcon,
		&it.ReminderHours, &it.ReminderSent, &it.CreatedAt, &it.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &it, nil
}

func collectItems(op string, rows pgx.Rows, err error) ([]models.TripItem, error) {
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	items := []models.TripItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		items = append(items, *it)
	}
	return items, mapErr(op, rows.Err())
}

func (r *ItemRepository) Create(ctx context.Context, it *models.TripItem) error {
	const sql = `
		INSERT INTO trip_items (
			id, trip_id, item_type, name, start_datetime, end_datetime,
			location_address, location_lat, location_lng, notes,
			weather_temp, weather_condition, weather_icon,
			reminder_hours, reminder_sent, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := db(ctx, r.pool).Exec(ctx, sql,
		it.ID, it.TripID, it.ItemType, it.Name, it.StartDatetime, it.EndDatetime,
		it.LocationAddress, it.LocationLat, it.LocationLng, it.Notes,
		it.WeatherTemp, it.WeatherCondition, it.WeatherIcon,
		it.ReminderHours, it.ReminderSent, it.CreatedAt, it.UpdatedAt)
	return mapErr("insert item", err)
}

func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TripItem, error) {
	it, err := scanItem(db(ctx, r.pool).QueryRow(ctx, `SELECT `+itemColumns+` FROM trip_items i WHERE i.id = $1`, id))
	return it, mapErr("get item by id", err)
}

func (r *ItemRepository) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.TripItem, error) {
	rows, err := db(ctx, r.pool).Query(ctx,
		`SELECT `+itemColumns+` FROM trip_items i WHERE i.trip_id = $1 ORDER BY i.start_datetime, i.name`, tripID)
	return collectItems("list items", rows, err)
}

// Update rewrites the user-editable columns. Moving the start resets reminder_sent.
func (r *ItemRepository) Update(ctx context.Context, it *models.TripItem) error {
	const sql = `
		UPDATE trip_items
		SET item_type = $2, name = $3,
		    reminder_sent = CASE WHEN start_datetime <> $4 OR reminder_hours <> $10 THEN FALSE ELSE reminder_sent END,
		    start_datetime = $4, end_datetime = $5,
		    location_address = $6, location_lat = $7, location_lng = $8, notes = $9,
		    reminder_hours = $10,
		    weather_temp = $11, weather_condition = $12, weather_icon = $13,
		    updated_at = $14
		WHERE id = $1`
	tag, err := db(ctx, r.pool).Exec(ctx, sql,
		it.ID, it.ItemType, it.Name, it.StartDatetime, it.EndDatetime,
		it.LocationAddress, it.LocationLat, it.LocationLng, it.Notes, it.ReminderHours,
		it.WeatherTemp, it.WeatherCondition, it.WeatherIcon, it.UpdatedAt)
	return mustAffect("update item", tag, err)
}

func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM trip_items WHERE id = $1`, id)
	return mustAffect("delete item", tag, err)
}

func (r *ItemRepository) ListNeedingEnrichment(ctx context.Context, now time.Time, horizon time.Duration, limit int) ([]models.TripItem, error) {
	rows, err := db(ctx, r.pool).Query(ctx,
		`SELECT `+itemColumns+`
		 FROM trip_items i
		 WHERE COALESCE(i.location_address, '') <> ''
		   AND (i.location_lat IS NULL OR i.location_lng IS NULL OR COALESCE(i.weather_condition, '') = '')
		   AND i.start_datetime BETWEEN $1 AND $2
		 ORDER BY i.enrichment_attempted_at NULLS FIRST, i.start_datetime
		 LIMIT $3`, now, now.Add(horizon), limit)
	return collectItems("list items needing enrichment", rows, err)
}

func (r *ItemRepository) MarkEnrichmentAttempted(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	_, err := db(ctx, r.pool).Exec(ctx,
		`UPDATE trip_items SET enrichment_attempted_at = $2 WHERE id = ANY($1::uuid[])`, raw, at)
	if err != nil {
		return fmt.Errorf("mark enrichment attempted: %w", err)
	}
	return nil
}

func (r *ItemRepository) UpdateEnrichment(ctx context.Context, it *models.TripItem) error {
	const sql = `
		UPDATE trip_items
		SET location_lat = $2, location_lng = $3,
		    weather_temp = $4, weather_condition = $5, weather_icon = $6,
		    updated_at = NOW()
		WHERE id = $1`
	tag, err := db(ctx, r.pool).Exec(ctx, sql,
		it.ID, it.LocationLat, it.LocationLng, it.WeatherTemp, it.WeatherCondition, it.WeatherIcon)
	return mustAffect("update item enrichment", tag, err)
}

func (r *ItemRepository) ListPendingReminders(ctx context.Context) ([]models.ReminderCandidate, error) {
	rows, err := db(ctx, r.pool).Query(ctx,
		`SELECT `+itemColumns+`, t.title, u.email, COALESCE(u.display_name, u.username)
		 FROM trip_items i
		 JOIN trips t ON t.id = i.trip_id
		 JOIN users u ON u.id = t.user_id
		 WHERE i.reminder_hours > 0 AND NOT i.reminder_sent
		 ORDER BY i.start_datetime`)
	if err != nil {
		return nil, mapErr("list pending reminders", err)
	}
	defer rows.Close()

	out := []models.ReminderCandidate{}
	for rows.Next() {
		var c models.ReminderCandidate
		it, err := scanItem(rows, &c.TripTitle, &c.OwnerEmail, &c.OwnerName)
		if err != nil {
			return nil, mapErr("scan reminder", err)
		}
		c.Item = *it
		out = append(out, c)
	}
	return out, mapErr("list pending reminders", rows.Err())
}

func (r *ItemRepository) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	tag, err := db(ctx, r.pool).Exec(ctx, `UPDATE trip_items SET reminder_sent = TRUE WHERE id = $1`, id)
	return mustAffect("mark reminder sent", tag, err)
}
