package model

import "errors"

// AdminLoginRequest is the request body for the admin login endpoint.
type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminTokenResponse carries the issued access token.
type AdminTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}

// Error codes used in unauthorized responses.
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)

// Admin errors
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
)
