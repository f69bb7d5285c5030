package handlers

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"TRIPPLANNER_BACK-END/internal/config"
	"TRIPPLANNER_BACK-END/internal/dto"
	"TRIPPLANNER_BACK-END/internal/logger"
	"TRIPPLANNER_BACK-END/internal/mailer"
	"TRIPPLANNER_BACK-END/internal/middleware"
	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
	"TRIPPLANNER_BACK-END/internal/utils"
)

const verificationTTL = 3 * time.Minute

// CodeMailer delivers password-reset codes.
type CodeMailer interface {
	SendVerificationCode(ctx context.Context, to, code string) error
}

// ForgotPasswordHandler handles forgot password functionality
type ForgotPasswordHandler struct {
	tx            repository.Transactor
	users         repository.UserRepository
	verifications repository.VerificationRepository
	mail          CodeMailer
	jwt           *config.JWTConfig
	now           func() time.Time
}

// NewForgotPasswordHandler creates a new ForgotPasswordHandler instance
func NewForgotPasswordHandler(repos *Repos, mail CodeMailer, cfg *config.JWTConfig) *ForgotPasswordHandler {
	return &ForgotPasswordHandler{
		tx:            repos.Tx,
		users:         repos.Users,
		verifications: repos.Verifications,
		mail:          mail,
		jwt:           cfg,
		now:           time.Now,
	}
}

// ForgotPassword sends verification code to user's email
// @Summary Request password reset
// @Description Send 6-digit verification code to user's email for password reset
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Email address"
// @Success 200 {object} dto.ForgotPasswordResponse "Verification code sent successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 429 {object} dto.ErrorResponse "Code already sent"
// @Failure 502 {object} dto.ErrorResponse "Send failed"
// @Router /api/auth/forgot-password [post]
func (h *ForgotPasswordHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "User not found", "No account found with this email")
			return
		}
		writeRepoError(w, "ForgotPassword", err)
		return
	}

	now := h.now()
	// A still-valid code blocks a new one until it expires
	latest, err := h.verifications.Latest(r.Context(), user.ID)
	switch {
	case err == nil && !latest.Used && latest.ExpiresAt.After(now):
		utils.WriteErrorResponse(w, http.StatusTooManyRequests,
			"Code already sent",
			fmt.Sprintf("Please wait %d seconds before requesting a new code", int(latest.ExpiresAt.Sub(now).Seconds())))
		return
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		writeRepoError(w, "ForgotPassword", err)
		return
	}

	code, err := generateVerificationCode(6)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate code", err.Error())
		return
	}

	verification := &models.AuthVerification{
		UserID:    user.ID,
		Email:     user.Email,
		Code:      code,
		ExpiresAt: now.Add(verificationTTL),
		CreatedAt: now,
	}
	if err := h.verifications.Create(r.Context(), verification); err != nil {
		writeRepoError(w, "ForgotPassword", err)
		return
	}

	if err := h.mail.SendVerificationCode(r.Context(), user.Email, code); err != nil {
		logger.LogError("handlers", "ForgotPassword", "failed to send verification code", map[string]any{"email": user.Email}, err)
		// release the cooldown so the user can retry right away
		if err := h.verifications.MarkUsed(r.Context(), verification.ID); err != nil {
			logger.LogError("handlers", "ForgotPassword", "failed to release verification", nil, err)
		}
		msg := "Could not send the verification e-mail"
		if errors.Is(err, mailer.ErrNotConfigured) {
			msg = "E-mail delivery is not configured"
		}
		utils.WriteErrorResponse(w, http.StatusBadGateway, "Send failed", msg)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.ForgotPasswordResponse{
		Message:   "Verification code has been sent to your email",
		Email:     user.Email,
		ExpiresIn: "3 minutes",
	})
}

// VerifyOTP verifies the OTP and returns a reset token
// @Summary Verify OTP
// @Description Verify the 6-digit code and get a temporary reset token
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.VerifyOTPRequest true "Email and verification code"
// @Success 200 {object} dto.VerifyOTPResponse "OTP verified successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid or expired code"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/verify-otp [post]
func (h *ForgotPasswordHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyOTPRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "User not found", "No account found with this email")
			return
		}
		writeRepoError(w, "VerifyOTP", err)
		return
	}

	v, err := h.verifications.Latest(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid code", "No verification code found")
			return
		}
		writeRepoError(w, "VerifyOTP", err)
		return
	}
	if !h.usable(w, v) {
		return
	}
	if v.Code != req.Code {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid code", "The verification code you entered is incorrect")
		return
	}

	resetToken, err := middleware.GenerateResetToken(user.ID, user.Email, req.Code, h.jwt)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate reset token", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.VerifyOTPResponse{
		Message:    "OTP verified successfully",
		ResetToken: resetToken,
		ExpiresIn:  "10 minutes",
	})
}

// ResetPassword resets user's password using reset token
// @Summary Reset password
// @Description Reset user's password with new password using reset token
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} dto.ResetPasswordResponse "Password reset successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid or expired reset token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/reset-password [post]
func (h *ForgotPasswordHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims, err := middleware.ValidateResetToken(req.ResetToken, h.jwt)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid reset token", err.Error())
		return
	}

	v, err := h.verifications.FindByCode(r.Context(), claims.UserID, claims.Email, claims.Code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid verification", "No matching verification found")
			return
		}
		writeRepoError(w, "ResetPassword", err)
		return
	}
	if !h.usable(w, v) {
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to hash password", err.Error())
		return
	}

	err = h.tx.WithinTransaction(r.Context(), func(ctx context.Context) error {
		if err := h.users.UpdatePassword(ctx, claims.UserID, string(hashedPassword)); err != nil {
			return err
		}
		return h.verifications.MarkUsed(ctx, v.ID)
	})
	if err != nil {
		writeRepoError(w, "ResetPassword", err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.ResetPasswordResponse{
		Message: "Password has been reset successfully",
	})
}

// usable rejects used or expired verifications.
func (h *ForgotPasswordHandler) usable(w http.ResponseWriter, v *models.AuthVerification) bool {
	if v.Used {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Code already used", "This verification code has already been used")
		return false
	}
	if h.now().After(v.ExpiresAt) {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Code expired", "Verification code has expired. Please request a new one")
		return false
	}
	return true
}

// generateVerificationCode generates a random n-digit verification code
func generateVerificationCode(length int) (string, error) {
	const digits = "0123456789"
	code := make([]byte, length)

	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		code[i] = digits[num.Int64()]
	}

	return string(code), nil
}
