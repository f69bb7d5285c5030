package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"TRIPPLANNER_BACK-END/internal/models"
)

type SettingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

func (r *SettingsRepository) ListAPIKeys(ctx context.Context) ([]models.APIConfiguration, error) {
	rows, err := db(ctx, r.pool).Query(ctx,
		`SELECT id, key, value, is_active, description, updated_at FROM api_configurations ORDER BY key`)
	if err != nil {
		return nil, mapErr("list api keys", err)
	}
	defer rows.Close()

	out := []models.APIConfiguration{}
	for rows.Next() {
		var c models.APIConfiguration
		if err := rows.Scan(&c.ID, &c.Key, &c.Value, &c.IsActive, &c.Description, &c.UpdatedAt); err != nil {
			return nil, mapErr("scan api key", err)
		}
		out = append(out, c)
	}
	return out, mapErr("list api keys", rows.Err())
}

func (r *SettingsRepository) ActiveAPIKey(ctx context.Context, key string) (string, error) {
	var value string
	err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT value FROM api_configurations WHERE key = $1 AND is_active AND value <> ''`, key).Scan(&value)
	return value, mapErr("get active api key", err)
}

func (r *SettingsRepository) UpsertAPIKey(ctx context.Context, c *models.APIConfiguration) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	const sql = `
		INSERT INTO api_configurations (id, key, value, is_active, description, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, is_active = EXCLUDED.is_active,
		    description = EXCLUDED.description, updated_at = EXCLUDED.updated_at`
	_, err := db(ctx, r.pool).Exec(ctx, sql, c.ID, c.Key, c.Value, c.IsActive, c.Description, c.UpdatedAt)
	return mapErr("upsert api key", err)
}

func (r *SettingsRepository) GetEmailConfig(ctx context.Context) (*models.EmailConfiguration, error) {
	var c models.EmailConfiguration
	err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT host, port, username, password, use_tls, use_ssl, default_from_email, updated_at
		 FROM email_configuration WHERE id = 1`).
		Scan(&c.Host, &c.Port, &c.Username, &c.Password, &c.UseTLS, &c.UseSSL, &c.DefaultFromEmail, &c.UpdatedAt)
	if err != nil {
		return nil, mapErr("get email configuration", err)
	}
	return &c, nil
}

func (r *SettingsRepository) SaveEmailConfig(ctx context.Context, c *models.EmailConfiguration) error {
	const sql = `
		INSERT INTO email_configuration (id, host, port, username, password, use_tls, use_ssl, default_from_email, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET host = EXCLUDED.host, port = EXCLUDED.port, username = EXCLUDED.username,
		    password = EXCLUDED.password, use_tls = EXCLUDED.use_tls, use_ssl = EXCLUDED.use_ssl,
		    default_from_email = EXCLUDED.default_from_email, updated_at = EXCLUDED.updated_at`
	_, err := db(ctx, r.pool).Exec(ctx, sql,
		c.Host, c.Port, c.Username, c.Password, c.UseTLS, c.UseSSL, c.DefaultFromEmail, c.UpdatedAt)
	return mapErr("save email configuration", err)
}
