package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
)

type TripRepository struct {
	pool *pgxpool.Pool
}

func NewTripRepository(pool *pgxpool.Pool) *TripRepository {
	return &TripRepository{pool: pool}
}

const tripColumns = `t.id, t.user_id, t.title, t.start_date, t.end_date, t.status, t.created_at, t.updated_at`

func scanTrip(row pgx.Row, extra ...any) (*models.Trip, error) {
	var t models.Trip
	dest := append([]any{&t.ID, &t.UserID, &t.Title, &t.StartDate, &t.EndDate, &t.Status, &t.CreatedAt, &t.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TripRepository) Create(ctx context.Context, t *models.Trip) error {
	const sql = `
		INSERT INTO trips (id, user_id, title, start_date, end_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := db(ctx, r.pool).Exec(ctx, sql,
		t.ID, t.UserID, t.Title, t.StartDate, t.EndDate, t.Status, t.CreatedAt, t.UpdatedAt)
	return mapErr("insert trip", err)
}

func (r *TripRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Trip, error) {
	t, err := scanTrip(db(ctx, r.pool).QueryRow(ctx, `SELECT `+tripColumns+` FROM trips t WHERE t.id = $1`, id))
	return t, mapErr("get trip by id", err)
}

func (r *TripRepository) ListForUser(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]repository.TripAccess, int, error) {
	const where = `
		FROM trips t
		LEFT JOIN trip_collaborators c ON c.trip_id = t.id AND c.user_id = $1
		WHERE (t.user_id = $1 OR c.user_id IS NOT NULL)
		  AND ($2 = '' OR t.status = $2)`

	var total int
	if err := db(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(1) `+where, userID, status).Scan(&total); err != nil {
		return nil, 0, mapErr("count trips", err)
	}

	rows, err := db(ctx, r.pool).Query(ctx,
		`SELECT `+tripColumns+`,
		        CASE WHEN t.user_id = $1 THEN 'owner' ELSE c.role END `+where+`
		 ORDER BY t.start_date DESC NULLS LAST, t.created_at DESC
		 LIMIT $3 OFFSET $4`, userID, status, limit, offset)
	if err != nil {
		return nil, 0, mapErr("list trips", err)
	}
	defer rows.Close()

	out := make([]repository.TripAccess, 0, limit)
	for rows.Next() {
		var role string
		t, err := scanTrip(rows, &role)
		if err != nil {
			return nil, 0, mapErr("scan trip", err)
		}
		out = append(out, repository.TripAccess{Trip: *t, Role: role})
	}
	return out, total, mapErr("list trips", rows.Err())
}

func (r *TripRepository) ListOwned(ctx context.Context, userID uuid.UUID) ([]models.Trip, error) {
	rows, err := db(ctx, r.pool).Query(ctx,
		`SELECT `+tripColumns+` FROM trips t WHERE t.user_id = $1
		 ORDER BY t.start_date DESC NULLS LAST, t.created_at DESC`, userID)
	if err != nil {
		return nil, mapErr("list owned trips", err)
	}
	defer rows.Close()

	trips := []models.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, mapErr("scan trip", err)
		}
		trips = append(trips, *t)
	}
	return trips, mapErr("list owned trips", rows.Err())
}

func (r *TripRepository) Update(ctx context.Context, t *models.Trip) error {
	const sql = `
		UPDATE trips
		SET title = $2, start_date = $3, end_date = $4, status = $5, updated_at = $6
		WHERE id = $1`
	tag, err := db(ctx, r.pool).Exec(ctx, sql, t.ID, t.Title, t.StartDate, t.EndDate, t.Status, t.UpdatedAt)
	return mustAffect("update trip", tag, err)
}

func (r *TripRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	return mustAffect("delete trip", tag, err)
}

type CollaboratorRepository struct {
	pool *pgxpool.Pool
}

func NewCollaboratorRepository(pool *pgxpool.Pool) *CollaboratorRepository {
	return &CollaboratorRepository{pool: pool}
}

const collaboratorSelect = `
	SELECT c.trip_id, c.user_id, u.email, u.username, c.role, c.created_at
	FROM trip_collaborators c
	JOIN users u ON u.id = c.user_id`

func scanCollaborator(row pgx.Row) (*models.Collaborator, error) {
	var c models.Collaborator
	if err := row.Scan(&c.TripID, &c.UserID, &c.Email, &c.Username, &c.Role, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Add inserts or updates the role of a collaborator.
func (r *CollaboratorRepository) Add(ctx context.Context, c *models.Collaborator) error {
	const sql = `
		INSERT INTO trip_collaborators (trip_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (trip_id, user_id) DO UPDATE SET role = EXCLUDED.role`
	_, err := db(ctx, r.pool).Exec(ctx, sql, c.TripID, c.UserID, c.Role, c.CreatedAt)
	return mapErr("upsert collaborator", err)
}

func (r *CollaboratorRepository) Remove(ctx context.Context, tripID, userID uuid.UUID) error {
	tag, err := db(ctx, r.pool).Exec(ctx,
		`DELETE FROM trip_collaborators WHERE trip_id = $1 AND user_id = $2`, tripID, userID)
	return mustAffect("delete collaborator", tag, err)
}

func (r *CollaboratorRepository) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Collaborator, error) {
	rows, err := db(ctx, r.pool).Query(ctx, collaboratorSelect+` WHERE c.trip_id = $1 ORDER BY c.created_at`, tripID)
	if err != nil {
		return nil, mapErr("list collaborators", err)
	}
	defer rows.Close()

	out := []models.Collaborator{}
	for rows.Next() {
		c, err := scanCollaborator(rows)
		if err != nil {
			return nil, mapErr("scan collaborator", err)
		}
		out = append(out, *c)
	}
	return out, mapErr("list collaborators", rows.Err())
}

func (r *CollaboratorRepository) Get(ctx context.Context, tripID, userID uuid.UUID) (*models.Collaborator, error) {
	c, err := scanCollaborator(db(ctx, r.pool).QueryRow(ctx,
		collaboratorSelect+` WHERE c.trip_id = $1 AND c.user_id = $2`, tripID, userID))
	return c, mapErr("get collaborator", err)
}
