package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TRIPPLANNER_BACK-END/internal/ai"
	"TRIPPLANNER_BACK-END/internal/currency"
	"TRIPPLANNER_BACK-END/internal/dto"
	"TRIPPLANNER_BACK-END/internal/mailer"
	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func send(t *testing.T, h http.Handler, method, path string, user uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != uuid.Nil {
		req.Header.Set("X-Test-User", user.String())
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

// fixture is a trip with one user per role.
type fixture struct {
	db       *memDB
	owner    *models.User
	editor   *models.User
	viewer   *models.User
	stranger *models.User
	trip     *models.Trip
}

func newFixture() *fixture {
	db := newMemDB()
	f := &fixture{
		db:       db,
		owner:    db.addUser("owner@example.com"),
		editor:   db.addUser("editor@example.com"),
		viewer:   db.addUser("viewer@example.com"),
		stranger: db.addUser("stranger@example.com"),
	}
	f.trip = db.addTrip(f.owner.ID, "Lisboa")
	db.share(f.trip.ID, f.editor.ID, models.RoleEditor)
	db.share(f.trip.ID, f.viewer.ID, models.RoleViewer)
	return f
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func tripRouter(t *testing.T, f *fixture) http.Handler {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	trips := NewTripsHandler(f.db.repos(), store, currency.NewConverter(nil), time.UTC)
	expenses := NewExpensesHandler(f.db.repos(), currency.NewConverter(nil), time.UTC)
	return testRouter(func(r chi.Router) {
		r.Post("/trips", trips.CreateTrip)
		r.Get("/trips/{tripID}", trips.TripDetail)
		r.Delete("/trips/{tripID}", trips.DeleteTrip)
		r.Get("/trips/{tripID}/expenses", expenses.List)
		r.Post("/trips/{tripID}/expenses", expenses.Create)
		r.Post("/expenses/{expenseID}/toggle-paid", expenses.TogglePaid)
		r.Get("/dashboard", expenses.Dashboard)
		r.Get("/places/currency", expenses.PlaceCurrency)
	})
}

func TestTripAccessByRole(t *testing.T) {
	f := newFixture()
	h := tripRouter(t, f)
	detail := "/trips/" + f.trip.ID.String()
	expense := dto.ExpenseRequest{Amount: amount("10"), Currency: "BRL", Category: "Food", Date: "2026-05-01"}

	tests := []struct {
		name   string
		user   uuid.UUID
		method string
		path   string
		body   any
		want   int
	}{
		{"owner reads", f.owner.ID, http.MethodGet, detail, nil, http.StatusOK},
		{"viewer reads", f.viewer.ID, http.MethodGet, detail, nil, http.StatusOK},
		{"stranger sees nothing", f.stranger.ID, http.MethodGet, detail, nil, http.StatusNotFound},
		{"anonymous", uuid.Nil, http.MethodGet, detail, nil, http.StatusUnauthorized},
		{"viewer cannot add expense", f.viewer.ID, http.MethodPost, detail + "/expenses", expense, http.StatusForbidden},
		{"editor adds expense", f.editor.ID, http.MethodPost, detail + "/expenses", expense, http.StatusCreated},
		{"editor cannot delete trip", f.editor.ID, http.MethodDelete, detail, nil, http.StatusForbidden},
		{"bad id", f.owner.ID, http.MethodGet, "/trips/not-a-uuid", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := send(t, h, tt.method, tt.path, tt.user, tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}

func TestTripDetailPermissions(t *testing.T) {
	f := newFixture()
	h := tripRouter(t, f)

	rr := send(t, h, http.MethodGet, "/trips/"+f.trip.ID.String(), f.editor.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[dto.TripDetailResponse](t, rr)
	assert.Equal(t, models.RoleEditor, resp.Trip.Role)
	assert.True(t, resp.Permissions.CanWriteContent)
	assert.False(t, resp.Permissions.CanDelete)
	assert.False(t, resp.Permissions.CanManageCollaborators)
	assert.Len(t, resp.Collaborators, 2)
}

func TestOwnerDeletesTrip(t *testing.T) {
	f := newFixture()
	h := tripRouter(t, f)

	rr := send(t, h, http.MethodDelete, "/trips/"+f.trip.ID.String(), f.owner.ID, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	_, ok := f.db.trips[f.trip.ID]
	assert.False(t, ok)
}

func TestCreateTrip(t *testing.T) {
	f := newFixture()
	h := tripRouter(t, f)

	t.Run("defaults to planning", func(t *testing.T) {
		start, end := "2026-07-01", "2026-07-10"
		rr := send(t, h, http.MethodPost, "/trips", f.owner.ID, dto.CreateTripRequest{Title: "  Japão ", StartDate: &start, EndDate: &end})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		resp := decodeBody[dto.TripResponse](t, rr)
		assert.Equal(t, "Japão", resp.Title)
		assert.Equal(t, models.TripPlanning, resp.Status)
		assert.Equal(t, models.RoleOwner, resp.Role)
	})

	t.Run("end before start", func(t *testing.T) {
		start, end := "2026-07-10", "2026-07-01"
		rr := send(t, h, http.MethodPost, "/trips", f.owner.ID, dto.CreateTripRequest{Title: "x", StartDate: &start, EndDate: &end})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("title required", func(t *testing.T) {
		rr := send(t, h, http.MethodPost, "/trips", f.owner.ID, dto.CreateTripRequest{})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCreateExpenseValidation(t *testing.T) {
	f := newFixture()
	other := f.db.addTrip(f.owner.ID, "Other")
	foreignItem := f.db.addItem(other.ID, "Museum", time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	ownItem := f.db.addItem(f.trip.ID, "Hotel", time.Date(2026, 5, 1, 14, 0, 0, 0, time.UTC))
	foreign, own := foreignItem.ID.String(), ownItem.ID.String()
	h := tripRouter(t, f)
	path := "/trips/" + f.trip.ID.String() + "/expenses"

	tests := []struct {
		name  string
		req   dto.ExpenseRequest
		want  int
		field string
	}{
		{"negative amount", dto.ExpenseRequest{Amount: amount("-1"), Currency: "BRL", Category: "Food", Date: "2026-05-01"}, http.StatusBadRequest, "amount"},
		{"over max", dto.ExpenseRequest{Amount: amount("100000000"), Currency: "BRL", Category: "Food", Date: "2026-05-01"}, http.StatusBadRequest, "amount"},
		{"unknown currency", dto.ExpenseRequest{Amount: amount("1"), Currency: "XYZ", Category: "Food", Date: "2026-05-01"}, http.StatusBadRequest, "currency"},
		{"bad date", dto.ExpenseRequest{Amount: amount("1"), Currency: "BRL", Category: "Food", Date: "01/05/2026"}, http.StatusBadRequest, "date"},
		{"item of another trip", dto.ExpenseRequest{Amount: amount("1"), Currency: "BRL", Category: "Food", Date: "2026-05-01", ItemID: &foreign}, http.StatusBadRequest, "item_id"},
		{"linked item", dto.ExpenseRequest{Amount: amount("1"), Currency: "BRL", Category: "Hotel", Date: "2026-05-01", ItemID: &own}, http.StatusCreated, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := send(t, h, http.MethodPost, path, f.owner.ID, tt.req)
			require.Equal(t, tt.want, rr.Code, rr.Body.String())
			if tt.field != "" {
				resp := decodeBody[dto.ErrorResponse](t, rr)
				assert.Contains(t, resp.Fields, tt.field)
			}
		})
	}
}

func TestCreateExpenseConverts(t *testing.T) {
	f := newFixture()
	h := tripRouter(t, f)

	rr := send(t, h, http.MethodPost, "/trips/"+f.trip.ID.String()+"/expenses", f.owner.ID,
		dto.ExpenseRequest{Amount: amount("10.005"), Currency: " usd ", Category: " Food ", Date: "2026-05-01"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	resp := decodeBody[dto.ExpenseResponse](t, rr)
	assert.Equal(t, "10.01", resp.Amount)
	assert.Equal(t, "USD", resp.Currency)
	assert.Equal(t, "Food", resp.Category)
	assert.Equal(t, "60.06", resp.ConvertedAmount)
	assert.Equal(t, "Lisboa", resp.TripTitle)
}

func seedExpense(db *memDB, tripID uuid.UUID, amt, cur, category, date string, paid bool) *models.Expense {
	d, _ := time.Parse("2006-01-02", date)
	e := &models.Expense{
		ID: uuid.New(), TripID: tripID, Amount: decimal.RequireFromString(amt),
		Currency: cur, Category: category, Date: d, IsPaid: paid,
	}
	db.expenses[e.ID] = e
	return e
}

func TestListExpensesTotals(t *testing.T) {
	f := newFixture()
	seedExpense(f.db, f.trip.ID, "100", "BRL", "Hotel", "2026-05-02", true)
	seedExpense(f.db, f.trip.ID, "10", "USD", "Food", "2026-05-01", false)
	h := tripRouter(t, f)

	rr := send(t, h, http.MethodGet, "/trips/"+f.trip.ID.String()+"/expenses", f.viewer.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[dto.ExpenseListResponse](t, rr)

	require.Len(t, resp.Expenses, 2)
	assert.Equal(t, "2026-05-01", resp.Expenses[0].Date)
	assert.Equal(t, "BRL", resp.Totals.Currency)
	assert.Equal(t, "160.00", resp.Totals.Total)
	assert.Equal(t, "100.00", resp.Totals.Paid)
	assert.Equal(t, "60.00", resp.Totals.Unpaid)
	assert.Equal(t, "60.00", resp.Totals.ByCategory["Food"])
}

func TestSummarizeTripUsesGivenClock(t *testing.T) {
	f := newFixture()
	e := seedExpense(f.db, f.trip.ID, "80", "BRL", "Hotel", "2026-06-01", false)
	brt := time.FixedZone("BRT", -3*60*60)
	// 2027-01-01 01:00 UTC is still New Year's Eve in BRT
	now := time.Date(2027, 1, 1, 1, 0, 0, 0, time.UTC).In(brt)

	s := summarizeTrip(context.Background(), currency.NewConverter(nil), *f.trip, []models.Expense{*e}, now)

	assert.Equal(t, "80.00", s.YearTotal.StringFixed(2))
	assert.Equal(t, "80.00", s.Total.StringFixed(2))
}

func TestTogglePaid(t *testing.T) {
	f := newFixture()
	e := seedExpense(f.db, f.trip.ID, "50", "BRL", "Food", "2026-05-01", false)
	h := tripRouter(t, f)
	path := "/expenses/" + e.ID.String() + "/toggle-paid"

	rr := send(t, h, http.MethodPost, path, f.viewer.ID, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = send(t, h, http.MethodPost, path, f.editor.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decodeBody[dto.TogglePaidResponse](t, rr)
	assert.True(t, resp.Expense.IsPaid)
	assert.Equal(t, "50.00", resp.Totals.Paid)
	assert.Equal(t, "0.00", resp.Totals.Unpaid)
	assert.True(t, f.db.expenses[e.ID].IsPaid)
}

func TestDashboardOnlyOwnedTrips(t *testing.T) {
	f := newFixture()
	seedExpense(f.db, f.trip.ID, "100", "BRL", "Hotel", "2026-05-02", true)
	seedExpense(f.db, f.trip.ID, "20", "BRL", "Food", "2026-05-03", false)
	theirs := f.db.addTrip(f.stranger.ID, "Not mine")
	f.db.share(theirs.ID, f.owner.ID, models.RoleEditor)
	seedExpense(f.db, theirs.ID, "999", "BRL", "Hotel", "2026-05-02", false)
	h := tripRouter(t, f)

	rr := send(t, h, http.MethodGet, "/dashboard", f.owner.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[dto.DashboardResponse](t, rr)
	assert.Equal(t, "120.00", resp.Total)
	require.Len(t, resp.ByTrip, 1)
	assert.Equal(t, "Lisboa", resp.ByTrip[0].Title)
	require.Len(t, resp.RecentExpenses, 2)
	assert.Equal(t, "2026-05-03", resp.RecentExpenses[0].Date)
}

func TestUpcomingTrips(t *testing.T) {
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	day := func(d int) *time.Time {
		v := time.Date(2026, 6, d, 0, 0, 0, 0, time.UTC)
		return &v
	}
	trips := []models.Trip{
		{Title: "past", StartDate: day(1), Status: models.TripCompleted},
		{Title: "later", StartDate: day(20), Status: models.TripPlanning},
		{Title: "today", StartDate: day(10), Status: models.TripConfirmed},
		{Title: "canceled", StartDate: day(15), Status: models.TripCanceled},
		{Title: "undated", Status: models.TripPlanning},
	}
	got := upcomingTrips(trips, now, 5)
	require.Len(t, got, 2)
	assert.Equal(t, "today", got[0].Title)
	assert.Equal(t, "later", got[1].Title)
	assert.Len(t, upcomingTrips(trips, now, 1), 1)
}

func TestPlaceCurrency(t *testing.T) {
	f := newFixture()
	h := tripRouter(t, f)

	rr := send(t, h, http.MethodGet, "/places/currency?q=Rue+de+Rivoli,+Paris", f.owner.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[dto.PlaceCurrencyResponse](t, rr)
	assert.True(t, resp.Found)
	require.NotNil(t, resp.Currency)
	assert.Equal(t, "EUR", *resp.Currency)

	rr = send(t, h, http.MethodGet, "/places/currency?q=Atlantis", f.owner.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decodeBody[dto.PlaceCurrencyResponse](t, rr).Found)

	rr = send(t, h, http.MethodGet, "/places/currency", f.owner.ID, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestChecklistAddAndToggle(t *testing.T) {
	f := newFixture()
	cl := NewChecklistHandler(f.db.repos())
	h := testRouter(func(r chi.Router) {
		r.Get("/trips/{tripID}/checklist", cl.Get)
		r.Post("/trips/{tripID}/checklist/items", cl.AddItems)
		r.Post("/checklist-items/{checklistItemID}/toggle", cl.ToggleItem)
		r.Delete("/checklist-items/{checklistItemID}", cl.DeleteItem)
	})
	base := "/trips/" + f.trip.ID.String() + "/checklist"

	rr := send(t, h, http.MethodPost, base+"/items", f.editor.ID, dto.ChecklistItemsRequest{Items: []dto.ChecklistItemRequest{
		{Category: "Documentos", Item: "Passaporte"},
		{Item: "  Guarda-chuva "},
	}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	resp := decodeBody[dto.ChecklistResponse](t, rr)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 0, resp.Checked)
	require.Len(t, resp.Categories, 2)
	assert.Equal(t, "Documentos", resp.Categories[0].Name)
	assert.Equal(t, models.DefaultChecklistCategory, resp.Categories[1].Name)
	assert.Equal(t, "Guarda-chuva", resp.Categories[1].Items[0].Item)

	lineID := resp.Categories[0].Items[0].ID
	rr = send(t, h, http.MethodPost, "/checklist-items/"+lineID+"/toggle", f.viewer.ID, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = send(t, h, http.MethodPost, "/checklist-items/"+lineID+"/toggle", f.owner.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decodeBody[dto.ChecklistItemResponse](t, rr).IsChecked)

	rr = send(t, h, http.MethodGet, base, f.viewer.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decodeBody[dto.ChecklistResponse](t, rr).Checked)

	rr = send(t, h, http.MethodPost, base+"/items", f.owner.ID, dto.ChecklistItemsRequest{Items: []dto.ChecklistItemRequest{{Item: "   "}}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = send(t, h, http.MethodDelete, "/checklist-items/"+lineID, f.owner.ID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Len(t, f.db.lines, 1)
}

func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func uploadFile(t *testing.T, h http.Handler, path string, user uuid.UUID, filename string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, filename, content, fields)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-Test-User", user.String())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestPhotoUploadAndDownload(t *testing.T) {
	f := newFixture()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	files := NewFilesHandler(f.db.repos(), store, 1<<20, time.UTC)
	h := testRouter(func(r chi.Router) {
		r.Post("/trips/{tripID}/photos", files.UploadPhoto)
		r.Get("/trips/{tripID}/photos", files.ListPhotos)
		r.Get("/photos/{photoID}/download", files.DownloadPhoto)
	})
	path := "/trips/" + f.trip.ID.String() + "/photos"
	content := append(append([]byte{}, pngHeader...), []byte("pixels")...)

	rr := uploadFile(t, h, path, f.viewer.ID, "beach.png", content, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = uploadFile(t, h, path, f.editor.ID, "notes.txt", []byte("just text"), nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = uploadFile(t, h, path, f.editor.ID, "beach.png", content, map[string]string{"caption": "Praia", "taken_at": "2026-05-01"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	photo := decodeBody[dto.PhotoResponse](t, rr)
	assert.Equal(t, "Praia", photo.Caption)
	assert.Equal(t, "image/png", photo.ContentType)
	assert.Equal(t, int64(len(content)), photo.Size)

	rr = send(t, h, http.MethodGet, path, f.viewer.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]dto.PhotoResponse](t, rr), 1)

	rr = send(t, h, http.MethodGet, "/photos/"+photo.ID+"/download", f.viewer.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "inline")
	assert.Equal(t, content, rr.Body.Bytes())

	rr = send(t, h, http.MethodGet, "/photos/"+photo.ID+"/download", f.stranger.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// postPart sends a single "file" part with the given declared content type.
func postPart(t *testing.T, h http.Handler, path string, user uuid.UUID, filename, partType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", partType)
	pw, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = pw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Test-User", user.String())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestPhotoTypeComesFromContent(t *testing.T) {
	f := newFixture()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	files := NewFilesHandler(f.db.repos(), store, 1<<20, time.UTC)
	h := testRouter(func(r chi.Router) {
		r.Post("/trips/{tripID}/photos", files.UploadPhoto)
		r.Get("/photos/{photoID}/download", files.DownloadPhoto)
	})
	path := "/trips/" + f.trip.ID.String() + "/photos"

	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`)
	rr := postPart(t, h, path, f.editor.ID, "map.svg", "image/svg+xml", svg)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, f.db.photos)

	content := append(append([]byte{}, pngHeader...), []byte("pixels")...)
	rr = postPart(t, h, path, f.editor.ID, "beach.png", "text/html", content)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	photo := decodeBody[dto.PhotoResponse](t, rr)
	assert.Equal(t, "image/png", photo.ContentType)

	rr = send(t, h, http.MethodGet, "/photos/"+photo.ID+"/download", f.viewer.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestAttachmentTitleCutOnRuneBoundary(t *testing.T) {
	f := newFixture()
	item := f.db.addItem(f.trip.ID, "Museu", time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC))
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	files := NewFilesHandler(f.db.repos(), store, 1<<20, time.UTC)
	h := testRouter(func(r chi.Router) {
		r.Post("/items/{itemID}/attachments", files.UploadAttachment)
		r.Get("/attachments/{attachmentID}/download", files.DownloadAttachment)
	})

	title := strings.Repeat("é", 300)
	rr := uploadFile(t, h, "/items/"+item.ID.String()+"/attachments", f.editor.ID, "ticket.pdf", []byte("%PDF-1.4 ticket"), map[string]string{"title": title})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	att := decodeBody[dto.AttachmentResponse](t, rr)
	assert.True(t, utf8.ValidString(att.Title))
	assert.Equal(t, 255, utf8.RuneCountInString(att.Title))

	rr = send(t, h, http.MethodGet, "/attachments/"+att.ID+"/download", f.viewer.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "attachment")
}

func TestUploadTooLarge(t *testing.T) {
	f := newFixture()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	files := NewFilesHandler(f.db.repos(), store, 16, time.UTC)
	h := testRouter(func(r chi.Router) { r.Post("/trips/{tripID}/photos", files.UploadPhoto) })

	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte("x"), 64)...)
	rr := uploadFile(t, h, "/trips/"+f.trip.ID.String()+"/photos", f.owner.ID, "big.png", content, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Empty(t, f.db.photos)
}

func TestImportCalendar(t *testing.T) {
	f := newFixture()
	exports := NewExportsHandler(f.db.repos(), currency.NewConverter(nil), time.UTC)
	h := testRouter(func(r chi.Router) { r.Post("/trips/{tripID}/calendar/import", exports.ImportCalendar) })
	path := "/trips/" + f.trip.ID.String() + "/calendar/import"

	src := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:a@test",
		"DTSTART:20261105T130000Z",
		"DTEND:20261105T150000Z",
		"SUMMARY:Museu",
		"LOCATION:Rua X\\, 10",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:b@test",
		"SUMMARY:Sem data",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	rr := uploadFile(t, h, path, f.viewer.ID, "agenda.ics", []byte(src), nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = uploadFile(t, h, path, f.editor.ID, "agenda.ics", []byte(src), nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	resp := decodeBody[dto.CalendarImportResponse](t, rr)
	assert.Equal(t, 1, resp.Imported)
	require.Len(t, f.db.items, 1)
	for _, it := range f.db.items {
		assert.Equal(t, models.ItemActivity, it.ItemType)
		assert.Equal(t, "Museu", it.Name)
		require.NotNil(t, it.EndDatetime)
		assert.Equal(t, 2*time.Hour, it.EndDatetime.Sub(it.StartDatetime))
		require.NotNil(t, it.LocationAddress)
		assert.Equal(t, "Rua X, 10", *it.LocationAddress)
	}
}

type stubSuggester struct {
	checklist map[string][]string
	events    []ai.SuggestedEvent
	insights  ai.Insights
	err       error
}

func (s stubSuggester) SuggestChecklist(context.Context, models.Trip) (map[string][]string, error) {
	return s.checklist, s.err
}

func (s stubSuggester) SuggestItinerary(context.Context, models.Trip, string) ([]ai.SuggestedEvent, error) {
	return s.events, s.err
}

func (s stubSuggester) DestinationInsights(context.Context, string) (ai.Insights, error) {
	return s.insights, s.err
}

func TestAIChecklistErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no key", ai.ErrNotConfigured, http.StatusServiceUnavailable},
		{"provider failure", errors.New("upstream 500"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			handler := NewAIHandler(f.db.repos(), stubSuggester{err: tt.err}, time.UTC)
			h := testRouter(func(r chi.Router) { r.Post("/trips/{tripID}/ai/checklist", handler.Checklist) })

			rr := send(t, h, http.MethodPost, "/trips/"+f.trip.ID.String()+"/ai/checklist", f.owner.ID, nil)
			assert.Equal(t, tt.want, rr.Code)
			assert.Empty(t, f.db.lines)
		})
	}
}

func TestAIChecklistAppends(t *testing.T) {
	f := newFixture()
	handler := NewAIHandler(f.db.repos(), stubSuggester{checklist: map[string][]string{
		"Roupas":     {"Casaco", ""},
		"Documentos": {"Passaporte"},
	}}, time.UTC)
	h := testRouter(func(r chi.Router) { r.Post("/trips/{tripID}/ai/checklist", handler.Checklist) })

	rr := send(t, h, http.MethodPost, "/trips/"+f.trip.ID.String()+"/ai/checklist", f.editor.ID, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	resp := decodeBody[dto.AIChecklistResponse](t, rr)
	assert.Equal(t, 2, resp.Added)
	assert.Equal(t, 2, resp.Checklist.Total)

	rr = send(t, h, http.MethodPost, "/trips/"+f.trip.ID.String()+"/ai/checklist", f.viewer.ID, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

type stubMailer struct {
	err  error
	sent []mailer.Message
}

func (m *stubMailer) Send(_ context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestAPIKeysMasked(t *testing.T) {
	db := newMemDB()
	handler := NewSettingsHandler(db.repos(), &stubMailer{})
	h := testRouter(func(r chi.Router) {
		r.Get("/settings/api-keys", handler.APIKeys)
		r.Put("/settings/api-keys", handler.PutAPIKeys)
	})
	admin := uuid.New()

	rr := send(t, h, http.MethodPut, "/settings/api-keys", admin, dto.APIKeysUpsertRequest{Keys: []dto.APIKeyUpsertRequest{
		{Key: models.APIKeyWeather, Value: " secret-weather-1234 "},
	}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	keys := decodeBody[[]dto.APIKeyResponse](t, rr)
	require.Len(t, keys, len(models.APIKeys))

	byKey := map[string]dto.APIKeyResponse{}
	for _, k := range keys {
		byKey[k.Key] = k
	}
	weather := byKey[models.APIKeyWeather]
	assert.True(t, weather.Configured)
	assert.True(t, weather.IsActive)
	assert.Equal(t, "****1234", weather.MaskedValue)
	assert.NotContains(t, rr.Body.String(), "secret-weather")
	assert.False(t, byKey[models.APIKeyOpenAI].Configured)
	assert.Equal(t, "secret-weather-1234", db.apiKeys[models.APIKeyWeather].Value)

	rr = send(t, h, http.MethodPut, "/settings/api-keys", admin, dto.APIKeysUpsertRequest{Keys: []dto.APIKeyUpsertRequest{
		{Key: "UNKNOWN", Value: "x"},
	}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTestEmail(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"sent", nil, http.StatusOK},
		{"not configured", mailer.ErrNotConfigured, http.StatusBadRequest},
		{"smtp failure", errors.New("dial tcp: refused"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &stubMailer{err: tt.err}
			handler := NewSettingsHandler(newMemDB().repos(), m)
			h := testRouter(func(r chi.Router) { r.Post("/settings/email/test", handler.TestEmail) })

			rr := send(t, h, http.MethodPost, "/settings/email/test", uuid.New(), dto.EmailTestRequest{To: "ops@example.com"})
			assert.Equal(t, tt.want, rr.Code)
			if tt.err == nil {
				require.Len(t, m.sent, 1)
				assert.Equal(t, "ops@example.com", m.sent[0].To)
			}
		})
	}
}

func TestRoleAllows(t *testing.T) {
	tests := []struct {
		role string
		need access
		want bool
	}{
		{models.RoleOwner, accessOwner, true},
		{models.RoleEditor, accessWrite, true},
		{models.RoleEditor, accessOwner, false},
		{models.RoleViewer, accessRead, true},
		{models.RoleViewer, accessWrite, false},
		{"", accessRead, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, roleAllows(tt.role, tt.need), "%s/%d", tt.role, tt.need)
	}
}

func TestReadiness(t *testing.T) {
	healthy := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	t.Run("all ok", func(t *testing.T) {
		h := NewHealthHandler(map[string]HealthCheck{"postgres": healthy, "redis": healthy})
		rr := httptest.NewRecorder()
		h.ReadinessCheck(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeBody[dto.HealthResponse](t, rr)
		assert.Equal(t, "ready", resp.Status)
		assert.Equal(t, map[string]string{"postgres": "ok", "redis": "ok"}, resp.Checks)
	})

	t.Run("one down", func(t *testing.T) {
		h := NewHealthHandler(map[string]HealthCheck{"postgres": healthy, "redis": down})
		rr := httptest.NewRecorder()
		h.ReadinessCheck(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		resp := decodeBody[dto.HealthResponse](t, rr)
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "connection refused", resp.Checks["redis"])
	})
}
