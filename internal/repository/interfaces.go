// Package repository declares the persistence contracts used by handlers and jobs.
// The postgres subpackage implements them with pgx.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"TRIPPLANNER_BACK-END/internal/models"
)

// Transactor runs fn inside one database transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string, exclude uuid.UUID) (bool, error)
	List(ctx context.Context, limit, offset int) ([]models.User, int, error)
	Update(ctx context.Context, u *models.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TripAccess is a trip together with the caller's role on it.
type TripAccess struct {
	Trip models.Trip
	Role string
}

type TripRepository interface {
	Create(ctx context.Context, t *models.Trip) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Trip, error)
	// ListForUser returns trips owned by or shared with userID, start date desc.
	ListForUser(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]TripAccess, int, error)
	// ListOwned returns every trip owned by userID.
	ListOwned(ctx context.Context, userID uuid.UUID) ([]models.Trip, error)
	Update(ctx context.Context, t *models.Trip) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CollaboratorRepository interface {
	Add(ctx context.Context, c *models.Collaborator) error
	Remove(ctx context.Context, tripID, userID uuid.UUID) error
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Collaborator, error)
	Get(ctx context.Context, tripID, userID uuid.UUID) (*models.Collaborator, error)
}

type ItemRepository interface {
	Create(ctx context.Context, it *models.TripItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TripItem, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.TripItem, error)
	Update(ctx context.Context, it *models.TripItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListNeedingEnrichment returns items starting in [now, now+horizon] that
	// have an address but lack coordinates or weather. Items never attempted
	// come first, then the least recently attempted.
	ListNeedingEnrichment(ctx context.Context, now time.Time, horizon time.Duration, limit int) ([]models.TripItem, error)
	MarkEnrichmentAttempted(ctx context.Context, ids []uuid.UUID, at time.Time) error
	// UpdateEnrichment writes only the coordinate and weather columns.
	UpdateEnrichment(ctx context.Context, it *models.TripItem) error
	ListPendingReminders(ctx context.Context) ([]models.ReminderCandidate, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID) error
}

type ExpenseRepository interface {
	Create(ctx context.Context, e *models.Expense) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	GetByItem(ctx context.Context, itemID uuid.UUID) (*models.Expense, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Expense, error)
	// ListByOwner returns expenses of every trip owned by userID, keyed with the trip title.
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]TitledExpense, error)
	Update(ctx context.Context, e *models.Expense) error
	SetPaid(ctx context.Context, id uuid.UUID, paid bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TitledExpense is an expense with its trip's title.
type TitledExpense struct {
	Expense   models.Expense
	TripTitle string
}

type ChecklistRepository interface {
	GetOrCreate(ctx context.Context, tripID uuid.UUID) (*models.Checklist, error)
	ListItems(ctx context.Context, checklistID uuid.UUID) ([]models.ChecklistItem, error)
	AddItems(ctx context.Context, checklistID uuid.UUID, items []models.ChecklistItem) ([]models.ChecklistItem, error)
	// GetItem returns the item and the trip it belongs to.
	GetItem(ctx context.Context, id uuid.UUID) (*models.ChecklistItem, uuid.UUID, error)
	UpdateItem(ctx context.Context, it *models.ChecklistItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

type AttachmentRepository interface {
	Create(ctx context.Context, a *models.Attachment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]models.Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PhotoRepository interface {
	Create(ctx context.Context, p *models.Photo) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Photo, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Photo, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type SettingsRepository interface {
	ListAPIKeys(ctx context.Context) ([]models.APIConfiguration, error)
	// ActiveAPIKey returns the value of an active key, ErrNotFound otherwise.
	ActiveAPIKey(ctx context.Context, key string) (string, error)
	UpsertAPIKey(ctx context.Context, c *models.APIConfiguration) error
	GetEmailConfig(ctx context.Context) (*models.EmailConfiguration, error)
	SaveEmailConfig(ctx context.Context, c *models.EmailConfiguration) error
}

type AccessLogRepository interface {
	Create(ctx context.Context, l *models.AccessLog) error
	List(ctx context.Context, limit, offset int) ([]models.AccessLog, int, error)
}

type VerificationRepository interface {
	Create(ctx context.Context, v *models.AuthVerification) error
	// Latest returns the newest verification of userID, used or not.
	Latest(ctx context.Context, userID uuid.UUID) (*models.AuthVerification, error)
	FindByCode(ctx context.Context, userID uuid.UUID, email, code string) (*models.AuthVerification, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
}
