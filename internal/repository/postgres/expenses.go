package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
)

type ExpenseRepository struct {
	pool *pgxpool.Pool
}

func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

const expenseColumns = `e.id, e.trip_id, e.item_id, e.description, e.amount, e.currency,
	e.category, e.date, e.is_paid, e.created_at, e.updated_at`

func scanExpense(row pgx.Row, extra ...any) (*models.Expense, error) {
	var e models.Expense
	dest := append([]any{&e.ID, &e.TripID, &e.ItemID, &e.Description, &e.Amount, &e.Currency,
		&e.Category, &e.Date, &e.IsPaid, &e.CreatedAt, &e.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ExpenseRepository) Create(ctx context.Context, e *models.Expense) error {
	const sql = `
		INSERT INTO expenses (id, trip_id, item_id, description, amount, currency,
		                      category, date, is_paid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := db(ctx, r.pool).Exec(ctx, sql,
		e.ID, e.TripID, e.ItemID, e.Description, e.Amount, e.Currency,
		e.Category, e.Date, e.IsPaid, e.CreatedAt, e.UpdatedAt)
	return mapErr("insert expense", err)
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	e, err := scanExpense(db(ctx, r.pool).QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses e WHERE e.id = $1`, id))
	return e, mapErr("get expense by id", err)
}

func (r *ExpenseRepository) GetByItem(ctx context.Context, itemID uuid.UUID) (*models.Expense, error) {
	e, err := scanExpense(db(ctx, r.pool).QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses e WHERE e.item_id = $1`, itemID))
	return e, mapErr("get expense by item", err)
}

func (r *ExpenseRepository) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Expense, error) {
	rows, err := db(ctx, r.pool).Query(ctx,
		`SELECT `+expenseColumns+` FROM expenses e WHERE e.trip_id = $1 ORDER BY e.date, e.created_at`, tripID)
	if err != nil {
		return nil, mapErr("list expenses", err)
	}
	defer rows.Close()

	out := []models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, mapErr("scan expense", err)
		}
		out = append(out, *e)
	}
	return out, mapErr("list expenses", rows.Err())
}

func (r *ExpenseRepository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]repository.TitledExpense, error) {
	rows, err := db(ctx, r.pool).Query(ctx,
		`SELECT `+expenseColumns+`, t.title
		 FROM expenses e
		 JOIN trips t ON t.id = e.trip_id
		 WHERE t.user_id = $1
		 ORDER BY e.date DESC, e.created_at DESC`, userID)
	if err != nil {
		return nil, mapErr("list owner expenses", err)
	}
	defer rows.Close()

	out := []repository.TitledExpense{}
	for rows.Next() {
		var title string
		e, err := scanExpense(rows, &title)
		if err != nil {
			return nil, mapErr("scan expense", err)
		}
		out = append(out, repository.TitledExpense{Expense: *e, TripTitle: title})
	}
	return out, mapErr("list owner expenses", rows.Err())
}

func (r *ExpenseRepository) Update(ctx context.Context, e *models.Expense) error {
	const sql = `
		UPDATE expenses
		SET item_id = $2, description = $3, amount = $4, currency = $5,
		    category = $6, date = $7, is_paid = $8, updated_at = $9
		WHERE id = $1`
	tag, err := db(ctx, r.pool).Exec(ctx, sql,
		e.ID, e.ItemID, e.Description, e.Amount, e.Currency, e.Category, e.Date, e.IsPaid, e.UpdatedAt)
	return mustAffect("update expense", tag, err)
}

func (r *ExpenseRepository) SetPaid(ctx context.Context, id uuid.UUID, paid bool) error {
	tag, err := db(ctx, r.pool).Exec(ctx,
		`UPDATE expenses SET is_paid = $2, updated_at = NOW() WHERE id = $1`, id, paid)
	return mustAffect("set expense paid", tag, err)
}

func (r *ExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	return mustAffect("delete expense", tag, err)
}
