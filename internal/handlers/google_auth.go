package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleOAuth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"TRIPPLANNER_BACK-END/internal/config"
	"TRIPPLANNER_BACK-END/internal/dto"
	"TRIPPLANNER_BACK-END/internal/middleware"
	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
	"TRIPPLANNER_BACK-END/internal/utils"
)

// GoogleAuthHandler handles Google OAuth authentication
type GoogleAuthHandler struct {
	users        repository.UserRepository
	accessLogs   repository.AccessLogRepository
	oauth2Config *oauth2.Config
	config       *config.Config
}

// NewGoogleAuthHandler creates a new GoogleAuthHandler instance
func NewGoogleAuthHandler(repos *Repos, cfg *config.Config) *GoogleAuthHandler {
	oauth2Config := &oauth2.Config{
		ClientID:     cfg.GoogleOAuth.ClientID,
		ClientSecret: cfg.GoogleOAuth.ClientSecret,
		RedirectURL:  cfg.GoogleOAuth.RedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &GoogleAuthHandler{
		users:        repos.Users,
		accessLogs:   repos.AccessLogs,
		oauth2Config: oauth2Config,
		config:       cfg,
	}
}

// GoogleLogin initiates Google OAuth login
// @Summary Google OAuth login
// @Description Initiate Google OAuth login flow
// @Tags authentication
// @Produce json
// @Success 200 {object} dto.GoogleLoginResponse "Google OAuth URL"
// @Failure 503 {object} dto.ErrorResponse "Google login not configured"
// @Router /api/auth/google/login [get]
func (h *GoogleAuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.config.IsGoogleOAuthConfigured() {
		utils.WriteErrorResponse(w, http.StatusServiceUnavailable, "Google login not configured", "GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are not set")
		return
	}

	// Generate state parameter for CSRF protection
	state := uuid.New().String()
	authURL := h.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOffline)

	utils.WriteJSONResponse(w, http.StatusOK, dto.GoogleLoginResponse{AuthURL: authURL, State: state})
}

// GoogleCallback handles Google OAuth callback
// @Summary Google OAuth callback
// @Description Handle Google OAuth callback with authorization code and redirect to the front end
// @Tags authentication
// @Param code query string true "Authorization code from Google"
// @Param state query string false "State parameter for CSRF protection"
// @Success 302 "Redirect to the front end with the token"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid authorization code"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/google/callback [get]
func (h *GoogleAuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing authorization code", "Authorization code is required")
		return
	}

	token, err := h.oauth2Config.Exchange(r.Context(), code)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid authorization code", err.Error())
		return
	}

	userInfo, err := h.getGoogleUserInfo(r.Context(), token.AccessToken)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to get user info", err.Error())
		return
	}

	user, err := h.users.GetByEmail(r.Context(), userInfo.Email)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = h.createGoogleUser(r.Context(), userInfo)
	}
	if err != nil {
		writeRepoError(w, "GoogleCallback", err)
		return
	}
	if !user.IsActive {
		utils.WriteErrorResponse(w, http.StatusForbidden, "Account disabled", "This account has been deactivated")
		return
	}

	jwtToken, err := middleware.GenerateToken(user.ID, user.Email, user.IsSuperuser, &h.config.JWT)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate token", err.Error())
		return
	}

	entry := &models.AccessLog{UserID: &user.ID, Email: user.Email, Action: models.AccessLogin, IPAddress: utils.ClientIP(r), Timestamp: time.Now()}
	if err := h.accessLogs.Create(r.Context(), entry); err != nil {
		writeRepoError(w, "GoogleCallback", err)
		return
	}

	// Redirect to frontend with token
	q := url.Values{}
	q.Set("token", jwtToken)
	q.Set("user_id", user.ID.String())
	q.Set("email", user.Email)
	q.Set("display_name", userInfo.Name)
	q.Set("provider", "google")
	if userInfo.EmailVerified {
		q.Set("is_verified", "true")
	} else {
		q.Set("is_verified", "false")
	}
	http.Redirect(w, r, h.config.GoogleOAuth.FrontendURL+"?"+q.Encode(), http.StatusFound)
}

// getGoogleUserInfo fetches user information from Google
func (h *GoogleAuthHandler) getGoogleUserInfo(ctx context.Context, accessToken string) (*dto.GoogleProfile, error) {
	service, err := googleOAuth2.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
	})))
	if err != nil {
		return nil, err
	}

	userInfo, err := service.Userinfo.Get().Do()
	if err != nil {
		return nil, err
	}

	verified := false
	if userInfo.VerifiedEmail != nil {
		verified = *userInfo.VerifiedEmail
	}

	return &dto.GoogleProfile{
		Subject:       userInfo.Id,
		Email:         strings.ToLower(userInfo.Email),
		Name:          userInfo.Name,
		Picture:       userInfo.Picture,
		EmailVerified: verified,
	}, nil
}

// createGoogleUser creates a passwordless user from Google OAuth data
func (h *GoogleAuthHandler) createGoogleUser(ctx context.Context, googleUser *dto.GoogleProfile) (*models.User, error) {
	username, err := h.freeUsername(ctx, googleUser.Email)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.New(),
		Email:     googleUser.Email,
		Username:  username,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if googleUser.Name != "" {
		user.DisplayName = &googleUser.Name
	}
	if googleUser.Picture != "" {
		user.AvatarURL = &googleUser.Picture
	}
	if err := h.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// freeUsername derives a username from the e-mail local part, adding a short
// random suffix when it is taken.
func (h *GoogleAuthHandler) freeUsername(ctx context.Context, email string) (string, error) {
	base := email
	if at := strings.IndexByte(base, '@'); at > 0 {
		base = base[:at]
	}
	if len(base) > 40 {
		base = base[:40]
	}
	if len(base) < 3 {
		base += "user"
	}
	candidate := base
	for i := 0; i < 5; i++ {
		taken, err := h.users.ExistsByEmailOrUsername(ctx, "", candidate, uuid.Nil)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + uuid.NewString()[:6]
	}
	return candidate, nil
}
