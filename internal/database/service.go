package database

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminService authenticates admin users and issues session tokens for the
// field-management endpoints.
type AdminService struct {
	username  string
	password  string
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAdminService creates a new admin service
func NewAdminService(username, password, jwtSecret string) *AdminService {
	return &AdminService{
		username:  username,
		password:  password,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  24 * time.Hour,
	}
}

// Login verifies credentials and returns a session token. Comparison is
// constant time so timing does not leak which part was wrong.
func (s *AdminService) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	if !userOK || !passOK {
		return "", fmt.Errorf("invalid credentials")
	}
	return s.GenerateSessionToken(username)
}

// GenerateSessionToken generates a JWT token for the admin session
func (s *AdminService) GenerateSessionToken(username string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  username,
		"role": "admin",
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateSessionToken validates a JWT token and returns the admin username
func (s *AdminService) ValidateSessionToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	if role, _ := claims["role"].(string); role != "admin" {
		return "", fmt.Errorf("token lacks admin role")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return "", fmt.Errorf("subject not found in token")
	}
	return sub, nil
}
