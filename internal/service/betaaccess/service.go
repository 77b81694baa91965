// internal/service/betaaccess/service.go
package betaaccess

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"friendchat-service/internal/domain/betaaccess"
	xerrors "friendchat-service/internal/pkg/errors"
	"friendchat-service/internal/pkg/jwt"
	"friendchat-service/internal/pkg/token"

	"go.uber.org/zap"
)

// TokenRepository is the persistence contract for beta access tokens.
type TokenRepository interface {
	ValidateToken(ctx context.Context, authToken string) (*betaaccess.TokenValidation, error)
	UseToken(ctx context.Context, authToken, userID string) error
	CreateToken(ctx context.Context, t *betaaccess.Token) (string, error)
	ListTokens(ctx context.Context, limit, offset int) ([]*betaaccess.Token, error)
}

// IdentityProvider provisions backing identities and one-time codes in the
// external auth backend.
type IdentityProvider interface {
	CreateUser(ctx context.Context, id, email string) error
	GenerateOTP(ctx context.Context, email string) (string, error)
}

// Service orchestrates admin token issuance and token-to-session exchange.
type Service struct {
	repo     TokenRepository
	issuer   *jwt.Issuer
	verifier *jwt.Verifier
	idp      IdentityProvider
	logger   *zap.Logger
}

func NewService(
	repo TokenRepository,
	jwtManager *jwt.Manager,
	idp IdentityProvider,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:     repo,
		issuer:   jwtManager.Issuer,
		verifier: jwtManager.Verifier,
		idp:      idp,
		logger:   logger,
	}
}

// AuthResult is the outcome of a successful beta token redemption.
type AuthResult struct {
	JWTToken string
	UserID   string
}

// CreateToken is the admin path: generate the opaque token and a backing
// identity, provision the identity, mint a session token with matching
// expiry, persist the association. Identity provisioning failing aborts
// before anything is persisted so no token record ever references a
// nonexistent identity. The persisted record stays unbound (user_id null)
// until first redemption.
func (s *Service) CreateToken(ctx context.Context, expiresInDays int, userEmail, createdBy string) (*betaaccess.CreateTokenResponse, error) {
	if expiresInDays <= 0 {
		expiresInDays = 30
	}

	authToken, err := token.GenerateOpaque(token.DefaultOpaqueLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate beta token: %w", err)
	}

	userID := token.NewID()
	email := userEmail
	if email == "" {
		email = jwt.DeriveEmail(userID)
	}

	if err := s.idp.CreateUser(ctx, userID, email); err != nil {
		return nil, fmt.Errorf("failed to provision identity: %w", err)
	}

	expiresAt := time.Now().Add(time.Duration(expiresInDays) * 24 * time.Hour)
	jwtToken, err := s.issuer.Issue(userID, email, "", expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to mint session token: %w", err)
	}

	rec := &betaaccess.Token{
		AuthToken: authToken,
		JWTToken:  jwtToken,
		ExpiresAt: expiresAt,
		CreatedBy: sql.NullString{String: createdBy, Valid: createdBy != ""},
	}

	tokenID, err := s.repo.CreateToken(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to persist beta token: %w", err)
	}

	s.logger.Info("beta access token created",
		zap.String("token_id", tokenID),
		zap.Int("expires_in_days", expiresInDays),
		zap.String("created_by", createdBy),
	)

	return &betaaccess.CreateTokenResponse{
		AuthToken: authToken,
		TokenID:   tokenID,
	}, nil
}

// ValidateToken is pure delegation to the repository; no extra business rules.
func (s *Service) ValidateToken(ctx context.Context, authToken string) (*betaaccess.TokenValidation, error) {
	return s.repo.ValidateToken(ctx, authToken)
}

// Authenticate exchanges an opaque beta token for its session token. The
// first successful call binds the token permanently to one subject; every
// later call returns that same binding.
func (s *Service) Authenticate(ctx context.Context, authToken string) (*AuthResult, error) {
	v, err := s.repo.ValidateToken(ctx, authToken)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: unknown beta token", xerrors.ErrNotFound)
	}
	if !v.IsValid {
		return nil, fmt.Errorf("%w: beta token past expiry", xerrors.ErrTokenExpired)
	}

	// Defense in depth: the stored session token must itself be well formed
	// and unexpired before it is handed out.
	jwtToken := v.JWTToken
	claims, verifyErr := s.verifier.Verify(jwtToken)

	var userID string
	switch {
	case v.UserID.Valid:
		userID = v.UserID.String
	case verifyErr == nil:
		userID = claims.UserID()
	default:
		// Stored token is unusable and nothing is bound yet: mint a fresh
		// anonymous identity and continue as a first use.
		userID = token.NewID()
	}

	email := ""
	if verifyErr == nil {
		email = claims.Email
	}
	if email == "" {
		email = jwt.DeriveEmail(userID)
	}

	if verifyErr != nil {
		// Beta token is still live, so re-mint instead of surfacing a stale
		// or tampered stored session token.
		s.logger.Warn("stored session token failed verification, re-minting",
			zap.String("token_id", v.TokenID),
			zap.Error(verifyErr),
		)
		if err := s.idp.CreateUser(ctx, userID, email); err != nil {
			return nil, fmt.Errorf("failed to provision identity: %w", err)
		}
		jwtToken, err = s.issuer.Issue(userID, email, "", time.Time{})
		if err != nil {
			return nil, fmt.Errorf("failed to re-mint session token: %w", err)
		}
	}

	if v.Unbound() {
		// First-use binding. Provisioning is idempotent, so re-provisioning
		// the identity minted at creation time is harmless.
		if err := s.idp.CreateUser(ctx, userID, email); err != nil {
			return nil, fmt.Errorf("failed to provision identity: %w", err)
		}

		if err := s.repo.UseToken(ctx, authToken, userID); err != nil {
			if !xerrors.Is(err, xerrors.ErrConflict) {
				return nil, err
			}
			// Lost the race: someone else bound the token between our read
			// and the atomic update. Their binding is authoritative.
			return s.reloadBinding(ctx, authToken)
		}
		s.logger.Info("beta token bound to subject",
			zap.String("token_id", v.TokenID),
			zap.String("user_id", userID),
		)
	}

	return &AuthResult{JWTToken: jwtToken, UserID: userID}, nil
}

// IssueSessionOTP authenticates a beta token and issues a one-time code for
// the bound identity's email, for exchange with the external auth backend.
func (s *Service) IssueSessionOTP(ctx context.Context, authToken string) (*betaaccess.SessionResponse, error) {
	auth, err := s.Authenticate(ctx, authToken)
	if err != nil {
		return nil, err
	}

	email := jwt.DeriveEmail(auth.UserID)
	if claims, err := jwt.ParseUnverified(auth.JWTToken); err == nil && claims.Email != "" {
		email = claims.Email
	}

	otp, err := s.idp.GenerateOTP(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue one-time code: %w", err)
	}

	return &betaaccess.SessionResponse{Email: email, EmailOTP: otp}, nil
}

// ListTokens exposes the persisted tokens to the admin surface.
func (s *Service) ListTokens(ctx context.Context, limit, offset int) ([]*betaaccess.Token, error) {
	return s.repo.ListTokens(ctx, limit, offset)
}

func (s *Service) reloadBinding(ctx context.Context, authToken string) (*AuthResult, error) {
	v, err := s.repo.ValidateToken(ctx, authToken)
	if err != nil {
		return nil, err
	}
	if v == nil || !v.IsValid || !v.UserID.Valid {
		return nil, fmt.Errorf("%w: beta token binding conflict", xerrors.ErrConflict)
	}
	return &AuthResult{JWTToken: v.JWTToken, UserID: v.UserID.String}, nil
}
