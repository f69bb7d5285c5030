package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"TRIPPLANNER_BACK-END/internal/models"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, username, password_hash, display_name, avatar_url,
	is_superuser, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.DisplayName, &u.AvatarURL,
		&u.IsSuperuser, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	const sql = `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := db(ctx, r.pool).Exec(ctx, sql,
		u.ID, strings.ToLower(u.Email), u.Username, u.PasswordHash, u.DisplayName, u.AvatarURL,
		u.IsSuperuser, u.IsActive, u.CreatedAt, u.UpdatedAt)
	return mapErr("insert user", err)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(db(ctx, r.pool).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return u, mapErr("get user by id", err)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(db(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(strings.TrimSpace(email))))
	return u, mapErr("get user by email", err)
}

func (r *UserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE (email = $1 OR username = $2) AND id <> $3)`,
		strings.ToLower(email), username, exclude).Scan(&exists)
	return exists, mapErr("check user exists", err)
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]models.User, int, error) {
	var total int
	if err := db(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(1) FROM users`).Scan(&total); err != nil {
		return nil, 0, mapErr("count users", err)
	}

	rows, err := db(ctx, r.pool).Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, mapErr("list users", err)
	}
	defer rows.Close()

	users := make([]models.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, mapErr("scan user", err)
		}
		users = append(users, *u)
	}
	return users, total, mapErr("list users", rows.Err())
}

func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	const sql = `
		UPDATE users
		SET email = $2, username = $3, display_name = $4, avatar_url = $5,
		    is_superuser = $6, is_active = $7, updated_at = $8
		WHERE id = $1`
	tag, err := db(ctx, r.pool).Exec(ctx, sql,
		u.ID, strings.ToLower(u.Email), u.Username, u.DisplayName, u.AvatarURL,
		u.IsSuperuser, u.IsActive, u.UpdatedAt)
	return mustAffect("update user", tag, err)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	tag, err := db(ctx, r.pool).Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	return mustAffect("update password", tag, err)
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return mustAffect("delete user", tag, err)
}
