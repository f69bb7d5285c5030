package handlers

import (
	"bufio"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"TRIPPLANNER_BACK-END/internal/dto"
	"TRIPPLANNER_BACK-END/internal/logger"
	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
	"TRIPPLANNER_BACK-END/internal/storage"
	"TRIPPLANNER_BACK-END/internal/utils"
)

// FilesHandler serves item attachments and the trip photo gallery
type FilesHandler struct {
	guard       tripGuard
	items       repository.ItemRepository
	attachments repository.AttachmentRepository
	photos      repository.PhotoRepository
	store       storage.Store
	maxBytes    int64
	loc         *time.Location
}

func NewFilesHandler(repos *Repos, store storage.Store, maxBytes int64, loc *time.Location) *FilesHandler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	if loc == nil {
		loc = time.UTC
	}
	return &FilesHandler{
		guard:       newTripGuard(repos),
		items:       repos.Items,
		attachments: repos.Attachments,
		photos:      repos.Photos,
		store:       store,
		maxBytes:    maxBytes,
		loc:         loc,
	}
}

const maxFileTitle = 255

// upload is one received multipart file, already sniffed.
type upload struct {
	file     multipart.File
	reader   io.Reader
	filename string
	// contentType is what the client declared, falling back to sniffed.
	contentType string
	// sniffed is derived from the first 512 bytes only.
	sniffed string
	size    int64
}

// readUpload parses the multipart form and opens its "file" part. It writes
// the error response itself and returns nil on failure.
func (h *FilesHandler) readUpload(w http.ResponseWriter, r *http.Request) *upload {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteErrorResponse(w, http.StatusRequestEntityTooLarge, "File too large", "Maximum upload size is "+strconv.FormatInt(h.maxBytes, 10)+" bytes")
			return nil
		}
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid form", "Expected a multipart/form-data body")
		return nil
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteValidationError(w, map[string]string{"file": "is required"})
		return nil
	}
	if header.Size > h.maxBytes {
		file.Close()
		utils.WriteErrorResponse(w, http.StatusRequestEntityTooLarge, "File too large", "Maximum upload size is "+strconv.FormatInt(h.maxBytes, 10)+" bytes")
		return nil
	}

	br := bufio.NewReaderSize(file, 512)
	head, _ := br.Peek(512)
	sniffed := http.DetectContentType(head)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = sniffed
	}
	return &upload{file: file, reader: br, filename: header.Filename, contentType: contentType, sniffed: sniffed, size: header.Size}
}

// isRasterImage reports whether a sniffed type is an image browsers render
// without running script. SVG is excluded.
func isRasterImage(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/") && mediaType != "image/svg+xml"
}

// baseName strips any client-side directory from an uploaded file name.
func baseName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// serve streams the object at key with a download disposition.
func (h *FilesHandler) serve(w http.ResponseWriter, r *http.Request, key, contentType, filename string, inline bool) {
	rc, err := h.store.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Not found", "The stored file is missing")
			return
		}
		logger.LogError("handlers", "serve", "failed to open stored file", map[string]any{"key": key}, err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "Something went wrong")
		return
	}
	defer rc.Close()

	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	if filename != "" {
		disposition = mime.FormatMediaType(disposition, map[string]string{"filename": filename})
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		logger.LogError("handlers", "serve", "failed to stream stored file", map[string]any{"key": key}, err)
	}
}

// ListAttachments handles GET /api/items/{itemID}/attachments
// @Summary Files attached to an itinerary item
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param itemID path string true "Item ID"
// @Success 200 {array} dto.AttachmentResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/items/{itemID}/attachments [get]
func (h *FilesHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	item, _, ok := authorizeItem(w, r, h.guard, h.items, accessRead)
	if !ok {
		return
	}
	list, err := h.attachments.ListByItem(r.Context(), item.ID)
	if err != nil {
		writeRepoError(w, "ListAttachments", err)
		return
	}
	out := make([]dto.AttachmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAttachmentResponse(a))
	}
	utils.WriteJSONResponse(w, http.StatusOK, out)
}

// UploadAttachment handles POST /api/items/{itemID}/attachments
// @Summary Attach a ticket, voucher or other file to an item
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param itemID path string true "Item ID"
// @Param file formData file true "File"
// @Param title formData string false "Display title, defaults to the file name"
// @Success 201 {object} dto.AttachmentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 413 {object} dto.ErrorResponse
// @Router /api/items/{itemID}/attachments [post]
func (h *FilesHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	item, _, ok := authorizeItem(w, r, h.guard, h.items, accessWrite)
	if !ok {
		return
	}
	up := h.readUpload(w, r)
	if up == nil {
		return
	}
	defer up.file.Close()

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = baseName(up.filename)
	}
	title = truncateRunes(title, maxFileTitle)

	a := models.Attachment{
		ID:          uuid.New(),
		ItemID:      item.ID,
		Title:       title,
		FileKey:     storage.NewKey("attachments/"+item.ID.String(), up.filename),
		ContentType: up.contentType,
		Size:        up.size,
		UploadedAt:  time.Now(),
	}
	if err := h.store.Save(r.Context(), a.FileKey, a.ContentType, up.reader); err != nil {
		logger.LogError("handlers", "UploadAttachment", "failed to store file", map[string]any{"item_id": item.ID}, err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Upload failed", "Could not store the file")
		return
	}
	if err := h.attachments.Create(r.Context(), &a); err != nil {
		removeObjects(r.Context(), h.store, []string{a.FileKey})
		writeRepoError(w, "UploadAttachment", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, toAttachmentResponse(a))
}

// authorizeAttachment loads the {attachmentID} path attachment and checks
// access to the trip of its item.
func (h *FilesHandler) authorizeAttachment(w http.ResponseWriter, r *http.Request, need access) (*models.Attachment, bool) {
	id, ok := pathUUID(w, r, "attachmentID")
	if !ok {
		return nil, false
	}
	a, err := h.attachments.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, "GetAttachment", err)
		return nil, false
	}
	item, err := h.items.GetByID(r.Context(), a.ItemID)
	if err != nil {
		writeRepoError(w, "GetAttachment", err)
		return nil, false
	}
	if _, _, ok := h.guard.authorize(w, r, item.TripID, need); !ok {
		return nil, false
	}
	return a, true
}

// DownloadAttachment handles GET /api/attachments/{attachmentID}/download
// @Summary Download an attachment
// @Tags files
// @Produce octet-stream
// @Security BearerAuth
// @Param attachmentID path string true "Attachment ID"
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/attachments/{attachmentID}/download [get]
func (h *FilesHandler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorizeAttachment(w, r, accessRead)
	if !ok {
		return
	}
	h.serve(w, r, a.FileKey, a.ContentType, a.Title, false)
}

// DeleteAttachment handles DELETE /api/attachments/{attachmentID}
// @Summary Delete an attachment
// @Tags files
// @Security BearerAuth
// @Param attachmentID path string true "Attachment ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/attachments/{attachmentID} [delete]
func (h *FilesHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorizeAttachment(w, r, accessWrite)
	if !ok {
		return
	}
	if err := h.attachments.Delete(r.Context(), a.ID); err != nil {
		writeRepoError(w, "DeleteAttachment", err)
		return
	}
	removeObjects(r.Context(), h.store, []string{a.FileKey})
	w.WriteHeader(http.StatusNoContent)
}

// ListPhotos handles GET /api/trips/{tripID}/photos
// @Summary Photo gallery of a trip
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Success 200 {array} dto.PhotoResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{tripID}/photos [get]
func (h *FilesHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	if _, _, ok := h.guard.authorize(w, r, tripID, accessRead); !ok {
		return
	}
	list, err := h.photos.ListByTrip(r.Context(), tripID)
	if err != nil {
		writeRepoError(w, "ListPhotos", err)
		return
	}
	out := make([]dto.PhotoResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPhotoResponse(p))
	}
	utils.WriteJSONResponse(w, http.StatusOK, out)
}

// UploadPhoto handles POST /api/trips/{tripID}/photos
// @Summary Add an image to the gallery
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Param file formData file true "Image"
// @Param caption formData string false "Caption"
// @Param taken_at formData string false "YYYY-MM-DD or YYYY-MM-DDTHH:MM"
// @Success 201 {object} dto.PhotoResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 413 {object} dto.ErrorResponse
// @Router /api/trips/{tripID}/photos [post]
func (h *FilesHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	if _, _, ok := h.guard.authorize(w, r, tripID, accessWrite); !ok {
		return
	}
	up := h.readUpload(w, r)
	if up == nil {
		return
	}
	defer up.file.Close()

	if !isRasterImage(up.sniffed) {
		utils.WriteValidationError(w, map[string]string{"file": "must be an image"})
		return
	}
	caption := truncateRunes(r.FormValue("caption"), maxFileTitle)

	p := models.Photo{
		ID:          uuid.New(),
		TripID:      tripID,
		Caption:     caption,
		FileKey:     storage.NewKey("photos/"+tripID.String(), up.filename),
		ContentType: up.sniffed,
		Size:        up.size,
		UploadedAt:  time.Now(),
	}
	if raw := strings.TrimSpace(r.FormValue("taken_at")); raw != "" {
		taken, err := parseTakenAt(raw, h.loc)
		if err != nil {
			utils.WriteValidationError(w, map[string]string{"taken_at": "must be YYYY-MM-DD or YYYY-MM-DDTHH:MM"})
			return
		}
		p.TakenAt = &taken
	}

	if err := h.store.Save(r.Context(), p.FileKey, p.ContentType, up.reader); err != nil {
		logger.LogError("handlers", "UploadPhoto", "failed to store file", map[string]any{"trip_id": tripID}, err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Upload failed", "Could not store the file")
		return
	}
	if err := h.photos.Create(r.Context(), &p); err != nil {
		removeObjects(r.Context(), h.store, []string{p.FileKey})
		writeRepoError(w, "UploadPhoto", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, toPhotoResponse(p))
}

func parseTakenAt(raw string, loc *time.Location) (time.Time, error) {
	if t, err := utils.ParseDateTime(raw, loc); err == nil {
		return t, nil
	}
	d, err := utils.ParseDate(raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc), nil
}

func (h *FilesHandler) authorizePhoto(w http.ResponseWriter, r *http.Request, need access) (*models.Photo, bool) {
	id, ok := pathUUID(w, r, "photoID")
	if !ok {
		return nil, false
	}
	p, err := h.photos.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, "GetPhoto", err)
		return nil, false
	}
	if _, _, ok := h.guard.authorize(w, r, p.TripID, need); !ok {
		return nil, false
	}
	return p, true
}

// DownloadPhoto handles GET /api/photos/{photoID}/download
// @Summary Download a gallery image
// @Tags files
// @Produce octet-stream
// @Security BearerAuth
// @Param photoID path string true "Photo ID"
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/photos/{photoID}/download [get]
func (h *FilesHandler) DownloadPhoto(w http.ResponseWriter, r *http.Request) {
	p, ok := h.authorizePhoto(w, r, accessRead)
	if !ok {
		return
	}
	h.serve(w, r, p.FileKey, p.ContentType, "", true)
}

// DeletePhoto handles DELETE /api/photos/{photoID}
// @Summary Delete a gallery image
// @Tags files
// @Security BearerAuth
// @Param photoID path string true "Photo ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/photos/{photoID} [delete]
func (h *FilesHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	p, ok := h.authorizePhoto(w, r, accessWrite)
	if !ok {
		return
	}
	if err := h.photos.Delete(r.Context(), p.ID); err != nil {
		writeRepoError(w, "DeletePhoto", err)
		return
	}
	removeObjects(r.Context(), h.store, []string{p.FileKey})
	w.WriteHeader(http.StatusNoContent)
}
