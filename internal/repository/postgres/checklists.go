package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"TRIPPLANNER_BACK-END/internal/models"
)

type ChecklistRepository struct {
	pool *pgxpool.Pool
}

func NewChecklistRepository(pool *pgxpool.Pool) *ChecklistRepository {
	return &ChecklistRepository{pool: pool}
}

// GetOrCreate returns the trip's checklist, creating it on first use.
func (r *ChecklistRepository) GetOrCreate(ctx context.Context, tripID uuid.UUID) (*models.Checklist, error) {
	const sql = `
		INSERT INTO checklists (id, trip_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (trip_id) DO UPDATE SET trip_id = EXCLUDED.trip_id
		RETURNING id, trip_id, created_at`
	var c models.Checklist
	err := db(ctx, r.pool).QueryRow(ctx, sql, uuid.New(), tripID, time.Now()).Scan(&c.ID, &c.TripID, &c.CreatedAt)
	if err != nil {
		return nil, mapErr("get or create checklist", err)
	}
	return &c, nil
}

func (r *ChecklistRepository) ListItems(ctx context.Context, checklistID uuid.UUID) ([]models.ChecklistItem, error) {
	rows, err := db(ctx, r.pool).Query(ctx,
		`SELECT id, checklist_id, category, item, is_checked
		 FROM checklist_items WHERE checklist_id = $1
		 ORDER BY category, item`, checklistID)
	if err != nil {
		return nil, mapErr("list checklist items", err)
	}
	defer rows.Close()

	out := []models.ChecklistItem{}
	for rows.Next() {
		var it models.ChecklistItem
		if err := rows.Scan(&it.ID, &it.ChecklistID, &it.Category, &it.Item, &it.IsChecked); err != nil {
			return nil, mapErr("scan checklist item", err)
		}
		out = append(out, it)
	}
	return out, mapErr("list checklist items", rows.Err())
}

func (r *ChecklistRepository) AddItems(ctx context.Context, checklistID uuid.UUID, items []models.ChecklistItem) ([]models.ChecklistItem, error) {
	const sql = `
		INSERT INTO checklist_items (id, checklist_id, category, item, is_checked)
		VALUES ($1, $2, $3, $4, $5)`
	out := make([]models.ChecklistItem, 0, len(items))
	for _, it := range items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		it.ChecklistID = checklistID
		if it.Category == "" {
			it.Category = models.DefaultChecklistCategory
		}
		if _, err := db(ctx, r.pool).Exec(ctx, sql, it.ID, it.ChecklistID, it.Category, it.Item, it.IsChecked); err != nil {
			return nil, mapErr("insert checklist item", err)
		}
		out = append(out, it)
	}
	return out, nil
}

func (r *ChecklistRepository) GetItem(ctx context.Context, id uuid.UUID) (*models.ChecklistItem, uuid.UUID, error) {
	var it models.ChecklistItem
	var tripID uuid.UUID
	err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT ci.id, ci.checklist_id, ci.category, ci.item, ci.is_checked, c.trip_id
		 FROM checklist_items ci
		 JOIN checklists c ON c.id = ci.checklist_id
		 WHERE ci.id = $1`, id).Scan(&it.ID, &it.ChecklistID, &it.Category, &it.Item, &it.IsChecked, &tripID)
	if err != nil {
		return nil, uuid.Nil, mapErr("get checklist item", err)
	}
	return &it, tripID, nil
}

func (r *ChecklistRepository) UpdateItem(ctx context.Context, it *models.ChecklistItem) error {
	tag, err := db(ctx, r.pool).Exec(ctx,
		`UPDATE checklist_items SET category = $2, item = $3, is_checked = $4 WHERE id = $1`,
		it.ID, it.Category, it.Item, it.IsChecked)
	return mustAffect("update checklist item", tag, err)
}

func (r *ChecklistRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM checklist_items WHERE id = $1`, id)
	return mustAffect("delete checklist item", tag, err)
}
