package handlers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
	"TRIPPLANNER_BACK-END/internal/utils"
)

// memDB backs every fake repository; tests seed it directly.
type memDB struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*models.User
	trips         map[uuid.UUID]*models.Trip
	collaborators map[[2]uuid.UUID]*models.Collaborator
	items         map[uuid.UUID]*models.TripItem
	expenses      map[uuid.UUID]*models.Expense
	checklists    map[uuid.UUID]*models.Checklist
	lines         map[uuid.UUID]*models.ChecklistItem
	attachments   map[uuid.UUID]*models.Attachment
	photos        map[uuid.UUID]*models.Photo
	apiKeys       map[string]*models.APIConfiguration
	email         *models.EmailConfiguration
	accessLogs    []models.AccessLog
	verifications []*models.AuthVerification
}

func newMemDB() *memDB {
	return &memDB{
		users:         map[uuid.UUID]*models.User{},
		trips:         map[uuid.UUID]*models.Trip{},
		collaborators: map[[2]uuid.UUID]*models.Collaborator{},
		items:         map[uuid.UUID]*models.TripItem{},
		expenses:      map[uuid.UUID]*models.Expense{},
		checklists:    map[uuid.UUID]*models.Checklist{},
		lines:         map[uuid.UUID]*models.ChecklistItem{},
		attachments:   map[uuid.UUID]*models.Attachment{},
		photos:        map[uuid.UUID]*models.Photo{},
		apiKeys:       map[string]*models.APIConfiguration{},
	}
}

func (db *memDB) repos() *Repos {
	return &Repos{
		Tx:            fakeTx{},
		Users:         fakeUsers{db},
		Trips:         fakeTrips{db},
		Collaborators: fakeCollaborators{db},
		Items:         fakeItems{db},
		Expenses:      fakeExpenses{db},
		Checklists:    fakeChecklists{db},
		Attachments:   fakeAttachments{db},
		Photos:        fakePhotos{db},
		Settings:      fakeSettings{db},
		AccessLogs:    fakeAccessLogs{db},
		Verifications: fakeVerifications{db},
	}
}

func (db *memDB) addUser(email string) *models.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := &models.User{ID: uuid.New(), Email: email, Username: email, IsActive: true}
	db.users[u.ID] = u
	return u
}

func (db *memDB) addTrip(owner uuid.UUID, title string) *models.Trip {
	db.mu.Lock()
	defer db.mu.Unlock()
	t := &models.Trip{ID: uuid.New(), UserID: owner, Title: title, Status: models.TripPlanning}
	db.trips[t.ID] = t
	return t
}

func (db *memDB) share(tripID, userID uuid.UUID, role string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.collaborators[[2]uuid.UUID{tripID, userID}] = &models.Collaborator{TripID: tripID, UserID: userID, Role: role}
}

func (db *memDB) addItem(tripID uuid.UUID, name string, start time.Time) *models.TripItem {
	db.mu.Lock()
	defer db.mu.Unlock()
	it := &models.TripItem{ID: uuid.New(), TripID: tripID, ItemType: models.ItemActivity, Name: name, StartDatetime: start}
	db.items[it.ID] = it
	return it
}

type fakeTx struct{}

func (fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUsers struct{ db *memDB }

func (f fakeUsers) Create(_ context.Context, u *models.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c := *u
	f.db.users[u.ID] = &c
	return nil
}

func (f fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeUsers) ExistsByEmailOrUsername(_ context.Context, email, username string, exclude uuid.UUID) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.ID != exclude && (u.Email == email || u.Username == username) {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeUsers) List(_ context.Context, limit, offset int) ([]models.User, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []models.User{}
	for _, u := range f.db.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	total := len(out)
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (f fakeUsers) Update(_ context.Context, u *models.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *u
	f.db.users[u.ID] = &c
	return nil
}

func (f fakeUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.db.users, id)
	return nil
}

type fakeTrips struct{ db *memDB }

func (f fakeTrips) Create(_ context.Context, t *models.Trip) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c := *t
	f.db.trips[t.ID] = &c
	return nil
}

func (f fakeTrips) GetByID(_ context.Context, id uuid.UUID) (*models.Trip, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t, ok := f.db.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (f fakeTrips) ListForUser(_ context.Context, userID uuid.UUID, status string, limit, offset int) ([]repository.TripAccess, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []repository.TripAccess{}
	for _, t := range f.db.trips {
		if status != "" && t.Status != status {
			continue
		}
		if t.UserID == userID {
			out = append(out, repository.TripAccess{Trip: *t, Role: models.RoleOwner})
		} else if c, ok := f.db.collaborators[[2]uuid.UUID{t.ID, userID}]; ok {
			out = append(out, repository.TripAccess{Trip: *t, Role: c.Role})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Trip.Title < out[j].Trip.Title })
	total := len(out)
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (f fakeTrips) ListOwned(_ context.Context, userID uuid.UUID) ([]models.Trip, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []models.Trip{}
	for _, t := range f.db.trips {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f fakeTrips) Update(_ context.Context, t *models.Trip) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.trips[t.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *t
	f.db.trips[t.ID] = &c
	return nil
}

func (f fakeTrips) Delete(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.trips[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.db.trips, id)
	for k, it := range f.db.items {
		if it.TripID == id {
			delete(f.db.items, k)
		}
	}
	for k, e := range f.db.expenses {
		if e.TripID == id {
			delete(f.db.expenses, k)
		}
	}
	return nil
}

type fakeCollaborators struct{ db *memDB }

func (f fakeCollaborators) Add(_ context.Context, c *models.Collaborator) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	key := [2]uuid.UUID{c.TripID, c.UserID}
	if _, ok := f.db.collaborators[key]; ok {
		return repository.ErrConflict
	}
	cp := *c
	f.db.collaborators[key] = &cp
	return nil
}

func (f fakeCollaborators) Remove(_ context.Context, tripID, userID uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	key := [2]uuid.UUID{tripID, userID}
	if _, ok := f.db.collaborators[key]; !ok {
		return repository.ErrNotFound
	}
	delete(f.db.collaborators, key)
	return nil
}

func (f fakeCollaborators) ListByTrip(_ context.Context, tripID uuid.UUID) ([]models.Collaborator, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []models.Collaborator{}
	for _, c := range f.db.collaborators {
		if c.TripID == tripID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f fakeCollaborators) Get(_ context.Context, tripID, userID uuid.UUID) (*models.Collaborator, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.collaborators[[2]uuid.UUID{tripID, userID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

type fakeItems struct{ db *memDB }

func (f fakeItems) Create(_ context.Context, it *models.TripItem) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c := *it
	f.db.items[it.ID] = &c
	return nil
}

func (f fakeItems) GetByID(_ context.Context, id uuid.UUID) (*models.TripItem, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	it, ok := f.db.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *it
	return &c, nil
}

func (f fakeItems) ListByTrip(_ context.Context, tripID uuid.UUID) ([]models.TripItem, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []models.TripItem{}
	for _, it := range f.db.items {
		if it.TripID == tripID {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDatetime.Before(out[j].StartDatetime) })
	return out, nil
}

func (f fakeItems) Update(_ context.Context, it *models.TripItem) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.items[it.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *it
	f.db.items[it.ID] = &c
	return nil
}

func (f fakeItems) Delete(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.db.items, id)
	for _, e := range f.db.expenses {
		if e.ItemID != nil && *e.ItemID == id {
			e.ItemID = nil
		}
	}
	return nil
}

func (f fakeItems) ListNeedingEnrichment(context.Context, time.Time, time.Duration, int) ([]models.TripItem, error) {
	return nil, nil
}

func (f fakeItems) MarkEnrichmentAttempted(context.Context, []uuid.UUID, time.Time) error {
	return nil
}

func (f fakeItems) UpdateEnrichment(ctx context.Context, it *models.TripItem) error {
	return f.Update(ctx, it)
}

func (f fakeItems) ListPendingReminders(context.Context) ([]models.ReminderCandidate, error) {
	return nil, nil
}

func (f fakeItems) MarkReminderSent(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if it, ok := f.db.items[id]; ok {
		it.ReminderSent = true
	}
	return nil
}

type fakeExpenses struct{ db *memDB }

func (f fakeExpenses) Create(_ context.Context, e *models.Expense) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c := *e
	f.db.expenses[e.ID] = &c
	return nil
}

func (f fakeExpenses) GetByID(_ context.Context, id uuid.UUID) (*models.Expense, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	e, ok := f.db.expenses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (f fakeExpenses) GetByItem(_ context.Context, itemID uuid.UUID) (*models.Expense, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, e := range f.db.expenses {
		if e.ItemID != nil && *e.ItemID == itemID {
			c := *e
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeExpenses) ListByTrip(_ context.Context, tripID uuid.UUID) ([]models.Expense, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []models.Expense{}
	for _, e := range f.db.expenses {
		if e.TripID == tripID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f fakeExpenses) ListByOwner(_ context.Context, userID uuid.UUID) ([]repository.TitledExpense, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []repository.TitledExpense{}
	for _, e := range f.db.expenses {
		if t, ok := f.db.trips[e.TripID]; ok && t.UserID == userID {
			out = append(out, repository.TitledExpense{Expense: *e, TripTitle: t.Title})
		}
	}
	return out, nil
}

func (f fakeExpenses) Update(_ context.Context, e *models.Expense) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.expenses[e.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *e
	f.db.expenses[e.ID] = &c
	return nil
}

func (f fakeExpenses) SetPaid(_ context.Context, id uuid.UUID, paid bool) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	e, ok := f.db.expenses[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.IsPaid = paid
	return nil
}

func (f fakeExpenses) Delete(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.expenses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.db.expenses, id)
	return nil
}

type fakeChecklists struct{ db *memDB }

func (f fakeChecklists) GetOrCreate(_ context.Context, tripID uuid.UUID) (*models.Checklist, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if cl, ok := f.db.checklists[tripID]; ok {
		c := *cl
		return &c, nil
	}
	cl := &models.Checklist{ID: uuid.New(), TripID: tripID, CreatedAt: time.Now()}
	f.db.checklists[tripID] = cl
	c := *cl
	return &c, nil
}

func (f fakeChecklists) ListItems(_ context.Context, checklistID uuid.UUID) ([]models.ChecklistItem, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []models.ChecklistItem{}
	for _, it := range f.db.lines {
		if it.ChecklistID == checklistID {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Item < out[j].Item
	})
	return out, nil
}

func (f fakeChecklists) AddItems(_ context.Context, checklistID uuid.UUID, items []models.ChecklistItem) ([]models.ChecklistItem, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := make([]models.ChecklistItem, 0, len(items))
	for _, it := range items {
		it.ID = uuid.New()
		it.ChecklistID = checklistID
		if it.Category == "" {
			it.Category = models.DefaultChecklistCategory
		}
		c := it
		f.db.lines[it.ID] = &c
		out = append(out, it)
	}
	return out, nil
}

func (f fakeChecklists) GetItem(_ context.Context, id uuid.UUID) (*models.ChecklistItem, uuid.UUID, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	it, ok := f.db.lines[id]
	if !ok {
		return nil, uuid.Nil, repository.ErrNotFound
	}
	for tripID, cl := range f.db.checklists {
		if cl.ID == it.ChecklistID {
			c := *it
			return &c, tripID, nil
		}
	}
	return nil, uuid.Nil, repository.ErrNotFound
}

func (f fakeChecklists) UpdateItem(_ context.Context, it *models.ChecklistItem) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.lines[it.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *it
	f.db.lines[it.ID] = &c
	return nil
}

func (f fakeChecklists) DeleteItem(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.lines[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.db.lines, id)
	return nil
}

type fakeAttachments struct{ db *memDB }

func (f fakeAttachments) Create(_ context.Context, a *models.Attachment) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c := *a
	f.db.attachments[a.ID] = &c
	return nil
}

func (f fakeAttachments) GetByID(_ context.Context, id uuid.UUID) (*models.Attachment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	a, ok := f.db.attachments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (f fakeAttachments) ListByItem(_ context.Context, itemID uuid.UUID) ([]models.Attachment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []models.Attachment{}
	for _, a := range f.db.attachments {
		if a.ItemID == itemID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f fakeAttachments) Delete(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.attachments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.db.attachments, id)
	return nil
}

type fakePhotos struct{ db *memDB }

func (f fakePhotos) Create(_ context.Context, p *models.Photo) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c := *p
	f.db.photos[p.ID] = &c
	return nil
}

func (f fakePhotos) GetByID(_ context.Context, id uuid.UUID) (*models.Photo, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.photos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (f fakePhotos) ListByTrip(_ context.Context, tripID uuid.UUID) ([]models.Photo, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []models.Photo{}
	for _, p := range f.db.photos {
		if p.TripID == tripID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f fakePhotos) Delete(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.photos[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.db.photos, id)
	return nil
}

type fakeSettings struct{ db *memDB }

func (f fakeSettings) ListAPIKeys(context.Context) ([]models.APIConfiguration, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []models.APIConfiguration{}
	for _, c := range f.db.apiKeys {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f fakeSettings) ActiveAPIKey(_ context.Context, key string) (string, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.apiKeys[key]
	if !ok || !c.IsActive {
		return "", repository.ErrNotFound
	}
	return c.Value, nil
}

func (f fakeSettings) UpsertAPIKey(_ context.Context, c *models.APIConfiguration) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cp := *c
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	cp.UpdatedAt = time.Now()
	f.db.apiKeys[c.Key] = &cp
	return nil
}

func (f fakeSettings) GetEmailConfig(context.Context) (*models.EmailConfiguration, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.email == nil {
		return nil, repository.ErrNotFound
	}
	c := *f.db.email
	return &c, nil
}

func (f fakeSettings) SaveEmailConfig(_ context.Context, c *models.EmailConfiguration) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cp := *c
	f.db.email = &cp
	return nil
}

type fakeAccessLogs struct{ db *memDB }

func (f fakeAccessLogs) Create(_ context.Context, l *models.AccessLog) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.accessLogs = append(f.db.accessLogs, *l)
	return nil
}

func (f fakeAccessLogs) List(_ context.Context, limit, offset int) ([]models.AccessLog, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := append([]models.AccessLog(nil), f.db.accessLogs...)
	total := len(out)
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

type fakeVerifications struct{ db *memDB }

func (f fakeVerifications) Create(_ context.Context, v *models.AuthVerification) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c := *v
	f.db.verifications = append(f.db.verifications, &c)
	return nil
}

func (f fakeVerifications) Latest(_ context.Context, userID uuid.UUID) (*models.AuthVerification, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for i := len(f.db.verifications) - 1; i >= 0; i-- {
		if v := f.db.verifications[i]; v.UserID == userID {
			c := *v
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeVerifications) FindByCode(_ context.Context, userID uuid.UUID, email, code string) (*models.AuthVerification, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for i := len(f.db.verifications) - 1; i >= 0; i-- {
		v := f.db.verifications[i]
		if v.UserID == userID && v.Email == email && v.Code == code {
			c := *v
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeVerifications) MarkUsed(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, v := range f.db.verifications {
		if v.ID == id {
			v.Used = true
			return nil
		}
	}
	return repository.ErrNotFound
}

// asUser authenticates every request as the user named in the X-Test-User header.
func asUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, err := uuid.Parse(r.Header.Get("X-Test-User")); err == nil {
			r = r.WithContext(utils.WithUser(r.Context(), id, "", r.Header.Get("X-Test-Super") == "1"))
		}
		next.ServeHTTP(w, r)
	})
}

func testRouter(mount func(r chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(asUser)
	mount(r)
	return r
}
