package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"TRIPPLANNER_BACK-END/internal/models"
)

type AttachmentRepository struct {
	pool *pgxpool.Pool
}

func NewAttachmentRepository(pool *pgxpool.Pool) *AttachmentRepository {
	return &AttachmentRepository{pool: pool}
}

const attachmentColumns = `id, item_id, title, file_key, content_type, size, uploaded_at`

func (r *AttachmentRepository) Create(ctx context.Context, a *models.Attachment) error {
	_, err := db(ctx, r.pool).Exec(ctx,
		`INSERT INTO attachments (`+attachmentColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.ItemID, a.Title, a.FileKey, a.ContentType, a.Size, a.UploadedAt)
	return mapErr("insert attachment", err)
}

func (r *AttachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	var a models.Attachment
	err := db(ctx, r.pool).QueryRow(ctx, `SELECT `+attachmentColumns+` FROM attachments WHERE id = $1`, id).
		Scan(&a.ID, &a.ItemID, &a.Title, &a.FileKey, &a.ContentType, &a.Size, &a.UploadedAt)
	if err != nil {
		return nil, mapErr("get attachment", err)
	}
	return &a, nil
}

func (r *AttachmentRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]models.Attachment, error) {
	rows, err := db(ctx, r.pool).Query(ctx,
		`SELECT `+attachmentColumns+` FROM attachments WHERE item_id = $1 ORDER BY uploaded_at`, itemID)
	if err != nil {
		return nil, mapErr("list attachments", err)
	}
	defer rows.Close()

	out := []models.Attachment{}
	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.ItemID, &a.Title, &a.FileKey, &a.ContentType, &a.Size, &a.UploadedAt); err != nil {
			return nil, mapErr("scan attachment", err)
		}
		out = append(out, a)
	}
	return out, mapErr("list attachments", rows.Err())
}

func (r *AttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	return mustAffect("delete attachment", tag, err)
}

type PhotoRepository struct {
	pool *pgxpool.Pool
}

func NewPhotoRepository(pool *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{pool: pool}
}

const photoColumns = `id, trip_id, caption, file_key, content_type, size, taken_at, uploaded_at`

func (r *PhotoRepository) Create(ctx context.Context, p *models.Photo) error {
	_, err := db(ctx, r.pool).Exec(ctx,
		`INSERT INTO photos (`+photoColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.TripID, p.Caption, p.FileKey, p.ContentType, p.Size, p.TakenAt, p.UploadedAt)
	return mapErr("insert photo", err)
}

func (r *PhotoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	var p models.Photo
	err := db(ctx, r.pool).QueryRow(ctx, `SELECT `+photoColumns+` FROM photos WHERE id = $1`, id).
		Scan(&p.ID, &p.TripID, &p.Caption, &p.FileKey, &p.ContentType, &p.Size, &p.TakenAt, &p.UploadedAt)
	if err != nil {
		return nil, mapErr("get photo", err)
	}
	return &p, nil
}

func (r *PhotoRepository) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Photo, error) {
	rows, err := db(ctx, r.pool).Query(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE trip_id = $1 ORDER BY COALESCE(taken_at, uploaded_at)`, tripID)
	if err != nil {
		return nil, mapErr("list photos", err)
	}
	defer rows.Close()

	out := []models.Photo{}
	for rows.Next() {
		var p models.Photo
		if err := rows.Scan(&p.ID, &p.TripID, &p.Caption, &p.FileKey, &p.ContentType, &p.Size, &p.TakenAt, &p.UploadedAt); err != nil {
			return nil, mapErr("scan photo", err)
		}
		out = append(out, p)
	}
	return out, mapErr("list photos", rows.Err())
}

func (r *PhotoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
	return mustAffect("delete photo", tag, err)
}
