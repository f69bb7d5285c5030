package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"TRIPPLANNER_BACK-END/internal/models"
)

type AccessLogRepository struct {
	pool *pgxpool.Pool
}

func NewAccessLogRepository(pool *pgxpool.Pool) *AccessLogRepository {
	return &AccessLogRepository{pool: pool}
}

func (r *AccessLogRepository) Create(ctx context.Context, l *models.AccessLog) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	_, err := db(ctx, r.pool).Exec(ctx,
		`INSERT INTO access_logs (id, user_id, email, action, ip_address, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.UserID, l.Email, l.Action, l.IPAddress, l.Timestamp)
	return mapErr("insert access log", err)
}

func (r *AccessLogRepository) List(ctx context.Context, limit, offset int) ([]models.AccessLog, int, error) {
	var total int
	if err := db(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(1) FROM access_logs`).Scan(&total); err != nil {
		return nil, 0, mapErr("count access logs", err)
	}

	rows, err := db(ctx, r.pool).Query(ctx,
		`SELECT id, user_id, email, action, ip_address, timestamp
		 FROM access_logs ORDER BY timestamp DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, mapErr("list access logs", err)
	}
	defer rows.Close()

	out := make([]models.AccessLog, 0, limit)
	for rows.Next() {
		var l models.AccessLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Email, &l.Action, &l.IPAddress, &l.Timestamp); err != nil {
			return nil, 0, mapErr("scan access log", err)
		}
		out = append(out, l)
	}
	return out, total, mapErr("list access logs", rows.Err())
}

type VerificationRepository struct {
	pool *pgxpool.Pool
}

func NewVerificationRepository(pool *pgxpool.Pool) *VerificationRepository {
	return &VerificationRepository{pool: pool}
}

const verificationColumns = `id, user_id, email, code, expires_at, used, created_at`

func (r *VerificationRepository) Create(ctx context.Context, v *models.AuthVerification) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	_, err := db(ctx, r.pool).Exec(ctx,
		`INSERT INTO auth_verifications (`+verificationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.ID, v.UserID, v.Email, v.Code, v.ExpiresAt, v.Used, v.CreatedAt)
	return mapErr("insert verification", err)
}

func (r *VerificationRepository) Latest(ctx context.Context, userID uuid.UUID) (*models.AuthVerification, error) {
	var v models.AuthVerification
	err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT `+verificationColumns+` FROM auth_verifications
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`, userID).
		Scan(&v.ID, &v.UserID, &v.Email, &v.Code, &v.ExpiresAt, &v.Used, &v.CreatedAt)
	if err != nil {
		return nil, mapErr("get latest verification", err)
	}
	return &v, nil
}

func (r *VerificationRepository) FindByCode(ctx context.Context, userID uuid.UUID, email, code string) (*models.AuthVerification, error) {
	var v models.AuthVerification
	err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT `+verificationColumns+` FROM auth_verifications
		 WHERE user_id = $1 AND email = $2 AND code = $3
		 ORDER BY created_at DESC LIMIT 1`, userID, email, code).
		Scan(&v.ID, &v.UserID, &v.Email, &v.Code, &v.ExpiresAt, &v.Used, &v.CreatedAt)
	if err != nil {
		return nil, mapErr("find verification", err)
	}
	return &v, nil
}

func (r *VerificationRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	tag, err := db(ctx, r.pool).Exec(ctx, `UPDATE auth_verifications SET used = TRUE WHERE id = $1`, id)
	return mustAffect("mark verification used", tag, err)
}
