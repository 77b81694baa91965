// internal/domain/betaaccess/dto.go
package betaaccess

// CreateTokenRequest for admin token issuance
type CreateTokenRequest struct {
	ExpiresInDays int    `json:"expiresInDays"`
	UserEmail     string `json:"userEmail"`
}

// CreateTokenResponse returned to the admin caller
type CreateTokenResponse struct {
	AuthToken string `json:"authToken"`
	TokenID   string `json:"tokenId"`
}

// LoginRequest for beta token redemption
type LoginRequest struct {
	AuthToken string `json:"authToken" binding:"required"`
}

// LoginResponse successful redemption response
type LoginResponse struct {
	JWTToken string `json:"jwtToken"`
	UserID   string `json:"userId"`
}

// ValidateRequest for token validation
type ValidateRequest struct {
	AuthToken string `json:"authToken" binding:"required"`
}

// ValidateResponse reports validity without revealing why a token failed
type ValidateResponse struct {
	IsValid bool   `json:"isValid"`
	TokenID string `json:"tokenId,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

// SessionRequest exchanges a beta token for a one-time code
type SessionRequest struct {
	AuthToken string `json:"authToken" binding:"required"`
}

// SessionResponse carries the one-time code accepted by the external auth backend
type SessionResponse struct {
	Email    string `json:"email"`
	EmailOTP string `json:"email_otp"`
}
