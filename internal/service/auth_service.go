package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"timecircuits/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL   = time.Hour
	tokenIssuer       = "timecircuits"
	minPasswordLength = 6
)

var (
	ErrInvalidUsername = errors.New("username must be 3-32 characters of a-z, 0-9, '.', '_' or '-'")
	ErrWeakPassword    = fmt.Errorf("password must have at least %d characters", minPasswordLength)
	ErrOperatorTaken   = errors.New("username is taken")
	ErrInvalidPassword = errors.New("invalid password")
	ErrUserNotFound    = errors.New("operator not found")
	ErrInvalidToken    = errors.New("invalid token")
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9._-]{3,32}$`)

// AuthService handles operator accounts and API tokens.
type AuthService struct {
	operators  repository.Authorization
	signingKey []byte
	tokenTTL   time.Duration
	now        func() time.Time
}

func NewAuthService(repo repository.Authorization, signingKey string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &AuthService{
		operators:  repo,
		signingKey: []byte(signingKey),
		tokenTTL:   ttl,
		now:        time.Now,
	}
}

// Claims carries the operator in an API token.
type Claims struct {
	jwt.RegisteredClaims
	OperatorID int `json:"operator_id"`
}

// normalizeUsername makes usernames case-insensitive.
func normalizeUsername(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !usernamePattern.MatchString(s) {
		return "", ErrInvalidUsername
	}
	return s, nil
}

func (s *AuthService) SignUp(username, password string) (int, error) {
	name, err := normalizeUsername(username)
	if err != nil {
		return 0, err
	}
	if len(password) < minPasswordLength {
		return 0, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	id, err := s.operators.Create(name, string(hash))
	if errors.Is(err, repository.ErrOperatorExists) {
		return 0, ErrOperatorTaken
	}
	return id, err
}

// GenerateToken checks the credentials and issues a signed token.
func (s *AuthService) GenerateToken(username, password string) (string, error) {
	name, err := normalizeUsername(username)
	if err != nil {
		return "", ErrUserNotFound
	}
	op, err := s.operators.GetByUsername(name)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidPassword
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   op.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		OperatorID: op.ID,
	})
	return token.SignedString(s.signingKey)
}

// ParseToken returns the operator ID of a valid, unexpired HS256 token.
func (s *AuthService) ParseToken(accessToken string) (int, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(accessToken, &claims,
		func(*jwt.Token) (interface{}, error) { return s.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims.OperatorID, nil
}
