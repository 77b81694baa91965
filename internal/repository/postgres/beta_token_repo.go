// internal/repository/postgres/beta_token_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"friendchat-service/internal/domain/betaaccess"
	xerrors "friendchat-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BetaTokenRepository bridges opaque beta tokens to the backend's row and RPC
// primitives.
type BetaTokenRepository struct {
	db *pgxpool.Pool
}

func NewBetaTokenRepository(db *pgxpool.Pool) *BetaTokenRepository {
	return &BetaTokenRepository{db: db}
}

// ValidateToken resolves an opaque token through the validate_beta_token RPC.
// A nil result with nil error means "no such token", not a failure.
// A populated result with IsValid=false means the token exists but expired.
// Errors are transport only.
func (r *BetaTokenRepository) ValidateToken(ctx context.Context, authToken string) (*betaaccess.TokenValidation, error) {
	query := `SELECT token_id, jwt_token, user_id, is_valid FROM validate_beta_token($1)`

	var result betaaccess.TokenValidation
	err := r.db.QueryRow(ctx, query, authToken).Scan(
		&result.TokenID, &result.JWTToken, &result.UserID, &result.IsValid,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to validate beta token: %w", xerrors.ErrTransport, err)
	}

	return &result, nil
}

// UseToken atomically binds a subject to a token unless it is already bound
// to someone else. The WHERE clause is the entire safeguard against
// double-binding under concurrent redemptions: a second writer with a
// different subject matches zero rows. Re-binding the same subject is a no-op
// success, which keeps the call idempotent.
func (r *BetaTokenRepository) UseToken(ctx context.Context, authToken, userID string) error {
	query := `
		UPDATE beta_access_tokens
		SET user_id = $2, is_used = TRUE, updated_at = NOW()
		WHERE auth_token = $1 AND (user_id IS NULL OR user_id = $2)
	`

	tag, err := r.db.Exec(ctx, query, authToken, userID)
	if err != nil {
		return fmt.Errorf("%w: failed to bind beta token: %w", xerrors.ErrTransport, err)
	}

	if tag.RowsAffected() == 0 {
		return xerrors.ErrConflict
	}

	return nil
}

// CreateToken persists a new beta access token. This is the administrative
// write path: every failure is returned loudly, nothing is swallowed.
func (r *BetaTokenRepository) CreateToken(ctx context.Context, t *betaaccess.Token) (string, error) {
	query := `
		INSERT INTO beta_access_tokens (auth_token, jwt_token, user_id, expires_at, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		t.AuthToken, t.JWTToken, t.UserID, t.ExpiresAt, t.CreatedBy,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		return "", fmt.Errorf("failed to create beta token: %w", err)
	}

	return t.ID, nil
}

// ListTokens returns tokens newest-first for the admin surface.
func (r *BetaTokenRepository) ListTokens(ctx context.Context, limit, offset int) ([]*betaaccess.Token, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, auth_token, jwt_token, user_id, is_used, expires_at, created_at, updated_at, created_by
		FROM beta_access_tokens
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list beta tokens: %w", xerrors.ErrTransport, err)
	}
	defer rows.Close()

	var tokens []*betaaccess.Token
	for rows.Next() {
		var t betaaccess.Token
		if err := rows.Scan(
			&t.ID, &t.AuthToken, &t.JWTToken, &t.UserID, &t.IsUsed,
			&t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt, &t.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan beta token: %w", err)
		}
		tokens = append(tokens, &t)
	}

	return tokens, rows.Err()
}
