// internal/handlers/betaaccess/handler.go
package betaaccess

import (
	"context"
	"net/http"
	"strconv"

	"friendchat-service/internal/domain/betaaccess"
	"friendchat-service/internal/middleware"
	xerrors "friendchat-service/internal/pkg/errors"
	"friendchat-service/internal/pkg/response"
	betaUsecase "friendchat-service/internal/service/betaaccess"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Service is the application-service surface the handler depends on.
type Service interface {
	CreateToken(ctx context.Context, expiresInDays int, userEmail, createdBy string) (*betaaccess.CreateTokenResponse, error)
	ValidateToken(ctx context.Context, authToken string) (*betaaccess.TokenValidation, error)
	Authenticate(ctx context.Context, authToken string) (*betaUsecase.AuthResult, error)
	IssueSessionOTP(ctx context.Context, authToken string) (*betaaccess.SessionResponse, error)
	ListTokens(ctx context.Context, limit, offset int) ([]*betaaccess.Token, error)
}

type BetaAccessHandler struct {
	service Service
	logger  *zap.Logger
}

func NewBetaAccessHandler(service Service, logger *zap.Logger) *BetaAccessHandler {
	return &BetaAccessHandler{
		service: service,
		logger:  logger,
	}
}

// ========== Admin ==========

// CreateToken mints a new beta access token (admin endpoint). The caller is
// trusted, so diagnostic detail is allowed in the error body.
func (h *BetaAccessHandler) CreateToken(c *gin.Context) {
	var req betaaccess.CreateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	createdBy, _ := middleware.GetEmail(c)

	resp, err := h.service.CreateToken(c.Request.Context(), req.ExpiresInDays, req.UserEmail, createdBy)
	if err != nil {
		h.logger.Error("beta token creation failed",
			zap.String("created_by", createdBy),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, "failed to create beta token", err)
		return
	}

	response.Success(c, http.StatusCreated, "beta token created", resp)
}

// ListTokens returns persisted tokens for the admin surface.
func (h *BetaAccessHandler) ListTokens(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	tokens, err := h.service.ListTokens(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("beta token listing failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to list beta tokens", err)
		return
	}

	response.Success(c, http.StatusOK, "beta tokens", tokens)
}

// ========== Public ==========

// Login exchanges an opaque beta token for its session token. Failure
// messages are deliberately generic: the caller never learns whether a token
// was unknown, expired or already someone else's.
func (h *BetaAccessHandler) Login(c *gin.Context) {
	var req betaaccess.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "authToken is required", nil)
		return
	}

	result, err := h.service.Authenticate(c.Request.Context(), req.AuthToken)
	if err != nil {
		h.logger.Warn("beta login failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		response.Error(c, statusFor(err), xerrors.UserMessage(err), nil)
		return
	}

	h.logger.Info("beta login succeeded",
		zap.String("user_id", result.UserID),
		zap.String("ip", c.ClientIP()),
	)

	response.Success(c, http.StatusOK, "login successful", betaaccess.LoginResponse{
		JWTToken: result.JWTToken,
		UserID:   result.UserID,
	})
}

// Validate reports whether a beta token is currently redeemable. Unknown
// tokens answer 200 with isValid=false, not an error.
func (h *BetaAccessHandler) Validate(c *gin.Context) {
	var req betaaccess.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "authToken is required", nil)
		return
	}

	v, err := h.service.ValidateToken(c.Request.Context(), req.AuthToken)
	if err != nil {
		h.logger.Error("beta token validation failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, xerrors.UserMessage(err), nil)
		return
	}

	if v == nil {
		response.Success(c, http.StatusOK, "token not found", betaaccess.ValidateResponse{IsValid: false})
		return
	}

	resp := betaaccess.ValidateResponse{
		IsValid: v.IsValid,
		TokenID: v.TokenID,
	}
	if v.UserID.Valid {
		resp.UserID = v.UserID.String
	}

	response.Success(c, http.StatusOK, "token validated", resp)
}

// Session exchanges a beta token for a one-time code accepted by the
// external auth backend.
func (h *BetaAccessHandler) Session(c *gin.Context) {
	var req betaaccess.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "authToken is required", nil)
		return
	}

	resp, err := h.service.IssueSessionOTP(c.Request.Context(), req.AuthToken)
	if err != nil {
		h.logger.Warn("beta session exchange failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		response.Error(c, statusFor(err), xerrors.UserMessage(err), nil)
		return
	}

	response.Success(c, http.StatusOK, "one-time code issued", resp)
}

// statusFor maps error variants to HTTP status codes. Every authentication
// failure class collapses to 401; only malformed input is 400 and anything
// internal is 500.
func statusFor(err error) int {
	switch {
	case xerrors.Is(err, xerrors.ErrNotFound),
		xerrors.Is(err, xerrors.ErrTokenExpired),
		xerrors.Is(err, xerrors.ErrTokenUsed),
		xerrors.Is(err, xerrors.ErrVerification),
		xerrors.Is(err, xerrors.ErrConflict),
		xerrors.Is(err, xerrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case xerrors.Is(err, xerrors.ErrInvalidInput), xerrors.Is(err, xerrors.ErrBadRequest):
		return http.StatusBadRequest
	case xerrors.Is(err, xerrors.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
