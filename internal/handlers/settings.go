package handlers

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"TRIPPLANNER_BACK-END/internal/dto"
	"TRIPPLANNER_BACK-END/internal/logger"
	"TRIPPLANNER_BACK-END/internal/mailer"
	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
	"TRIPPLANNER_BACK-END/internal/utils"
)

// SettingsHandler edits the runtime configuration stored in the database
type SettingsHandler struct {
	settings repository.SettingsRepository
	mail     mailer.Sender
}

func NewSettingsHandler(repos *Repos, mail mailer.Sender) *SettingsHandler {
	return &SettingsHandler{settings: repos.Settings, mail: mail}
}

// APIKeys handles GET /api/settings/api-keys.
// Every known key is listed, configured or not.
// @Summary Third-party API keys, masked (superuser only)
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.APIKeyResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/settings/api-keys [get]
func (h *SettingsHandler) APIKeys(w http.ResponseWriter, r *http.Request) {
	stored, err := h.settings.ListAPIKeys(r.Context())
	if err != nil {
		writeRepoError(w, "ListAPIKeys", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, apiKeyResponses(stored))
}

func apiKeyResponses(stored []models.APIConfiguration) []dto.APIKeyResponse {
	byKey := make(map[string]models.APIConfiguration, len(stored))
	for _, c := range stored {
		byKey[c.Key] = c
	}
	out := make([]dto.APIKeyResponse, 0, len(models.APIKeys))
	for _, key := range models.APIKeys {
		c, ok := byKey[key]
		if !ok {
			out = append(out, dto.APIKeyResponse{Key: key})
			continue
		}
		out = append(out, toAPIKeyResponse(c))
		delete(byKey, key)
	}
	// rows with keys no longer known still show up, after the known ones
	extra := make([]string, 0, len(byKey))
	for key := range byKey {
		extra = append(extra, key)
	}
	sort.Strings(extra)
	for _, key := range extra {
		out = append(out, toAPIKeyResponse(byKey[key]))
	}
	return out
}

// PutAPIKeys handles PUT /api/settings/api-keys
// @Summary Store one or more API keys (superuser only)
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.APIKeysUpsertRequest true "Keys"
// @Success 200 {array} dto.APIKeyResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/settings/api-keys [put]
func (h *SettingsHandler) PutAPIKeys(w http.ResponseWriter, r *http.Request) {
	var req dto.APIKeysUpsertRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	now := time.Now()
	for _, k := range req.Keys {
		active := true
		if k.IsActive != nil {
			active = *k.IsActive
		}
		c := models.APIConfiguration{
			ID:          uuid.New(),
			Key:         k.Key,
			Value:       strings.TrimSpace(k.Value),
			IsActive:    active,
			Description: k.Description,
			UpdatedAt:   now,
		}
		if err := h.settings.UpsertAPIKey(r.Context(), &c); err != nil {
			writeRepoError(w, "UpsertAPIKey", err)
			return
		}
	}
	h.APIKeys(w, r)
}

// EmailConfig handles GET /api/settings/email
// @Summary SMTP configuration without the password (superuser only)
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.EmailConfigResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/settings/email [get]
func (h *SettingsHandler) EmailConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settings.GetEmailConfig(r.Context())
	if err != nil {
		if isNotFound(err) {
			utils.WriteJSONResponse(w, http.StatusOK, dto.EmailConfigResponse{Port: 587, UseTLS: true})
			return
		}
		writeRepoError(w, "GetEmailConfig", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, toEmailConfigResponse(*cfg))
}

// PutEmailConfig handles PUT /api/settings/email.
// Omitting password keeps the stored one.
// @Summary Replace the SMTP configuration (superuser only)
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.EmailConfigRequest true "SMTP settings"
// @Success 200 {object} dto.EmailConfigResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/settings/email [put]
func (h *SettingsHandler) PutEmailConfig(w http.ResponseWriter, r *http.Request) {
	var req dto.EmailConfigRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.UseTLS && req.UseSSL {
		utils.WriteValidationError(w, map[string]string{"use_ssl": "use_tls and use_ssl are mutually exclusive"})
		return
	}

	password := ""
	current, err := h.settings.GetEmailConfig(r.Context())
	switch {
	case err == nil:
		password = current.Password
	case !isNotFound(err):
		writeRepoError(w, "PutEmailConfig", err)
		return
	}
	if req.Password != nil {
		password = *req.Password
	}

	cfg := models.EmailConfiguration{
		Host:             strings.TrimSpace(req.Host),
		Port:             req.Port,
		Username:         strings.TrimSpace(req.Username),
		Password:         password,
		UseTLS:           req.UseTLS,
		UseSSL:           req.UseSSL,
		DefaultFromEmail: strings.TrimSpace(req.DefaultFromEmail),
		UpdatedAt:        time.Now(),
	}
	if err := h.settings.SaveEmailConfig(r.Context(), &cfg); err != nil {
		writeRepoError(w, "PutEmailConfig", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, toEmailConfigResponse(cfg))
}

// TestEmail handles POST /api/settings/email/test
// @Summary Send a test message with the stored SMTP configuration (superuser only)
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.EmailTestRequest true "Recipient"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/settings/email/test [post]
func (h *SettingsHandler) TestEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.EmailTestRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	err := h.mail.Send(ctx, mailer.Message{
		To:      req.To,
		Subject: "Teste de configuração de e-mail",
		Text:    "Se você recebeu esta mensagem, o envio de e-mails do planejador de viagens está funcionando.",
	})
	if err != nil {
		if errors.Is(err, mailer.ErrNotConfigured) {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Email not configured", "Save an SMTP configuration first")
			return
		}
		logger.LogError("handlers", "TestEmail", "failed to send test email", map[string]any{"to": req.To}, err)
		utils.WriteErrorResponse(w, http.StatusBadGateway, "Send failed", err.Error())
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: "Test email sent"})
}
