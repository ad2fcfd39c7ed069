package service

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"blogpulse/internal/config"
	"blogpulse/internal/model"
)

// AuthService authenticates the single admin account and issues short-lived
// access tokens. Credentials come from configuration; the password is stored
// as a bcrypt hash, never in plain text.
type AuthService struct {
	config *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{config: cfg}
}

// Login verifies the admin credentials and issues an access token.
// Both checks run unconditionally so a wrong username costs the same as a
// wrong password.
func (s *AuthService) Login(req model.AdminLoginRequest) (*model.AdminTokenResponse, error) {
	usernameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.config.AdminUsername)) == 1

	err := bcrypt.CompareHashAndPassword([]byte(s.config.AdminPasswordHash), []byte(req.Password))
	if !usernameOK || err != nil {
		return nil, model.ErrInvalidCredentials
	}

	accessToken, err := s.generateAccessToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &model.AdminTokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   s.config.AccessTokenMaxAge,
	}, nil
}

func (s *AuthService) generateAccessToken() (string, error) {
	claims := jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(time.Duration(s.config.AccessTokenMaxAge) * time.Second).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
