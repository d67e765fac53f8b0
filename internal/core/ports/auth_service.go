package ports

import "context"

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken  string   `json:"access_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
	RefreshToken string   `json:"refresh_token"`
	Email        string   `json:"email"`
	Authorities  []string `json:"authorities"`
}

// RefreshResult is returned by a successful token refresh. The refresh token
// value is echoed back unchanged; refresh does not rotate it.
type RefreshResult struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService orchestrates login, logout, and access-token refresh.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshTokenValue string) (*RefreshResult, error)
}
