// Package service contains application services: authentication, users and
// subscriptions, the tag/ingredient catalog, recipes, favorites/cart marks and
// the shopping list.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	pkgcrypto "github.com/and161185/foodgram/internal/crypto"
	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/limiter"
	"github.com/and161185/foodgram/internal/metrics"
	"github.com/and161185/foodgram/internal/model"
	"github.com/and161185/foodgram/internal/repository"
	"github.com/and161185/foodgram/internal/validation"
)

// AuthService defines registration, token issuance and token verification.
type AuthService interface {
	// Register creates a new user with secure password hashing.
	Register(ctx context.Context, reg model.Registration) (*model.User, error)
	// Login applies rate-limiting by (email, ip) and issues an access token.
	Login(ctx context.Context, email, password, ip string) (model.Tokens, error)
	// SetPassword replaces the viewer's password after checking the current one.
	SetPassword(ctx context.Context, viewer model.Viewer, current, next string) error
	// Authenticate resolves an access token to a viewer.
	Authenticate(ctx context.Context, token string) (model.Viewer, error)
	// Logout revokes the access token so Authenticate rejects it from now on.
	Logout(ctx context.Context, token string) error
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	tokens    repository.TokenRepository
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
	now       func() time.Time
	verify    func(password, encoded string) (bool, error)
}

var _ AuthService = (*AuthServiceImpl)(nil)

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, tokens repository.TokenRepository, signKey []byte, accessTTL time.Duration, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{
		users:     users,
		tokens:    tokens,
		signKey:   signKey,
		accessTTL: accessTTL,
		lim:       lim,
		now:       time.Now,
		verify:    pkgcrypto.VerifyPassword,
	}
}

// dummyHash stands in for the stored hash of an unknown email, so a failed
// lookup costs the same argon2 run as a wrong password.
var dummyHash = sync.OnceValue(func() string {
	h, _ := pkgcrypto.HashPassword("no-such-user-password")
	return h
})

// Register validates the sign-up form and stores the user with an argon2id hash.
func (s *AuthServiceImpl) Register(ctx context.Context, reg model.Registration) (*model.User, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Username = strings.TrimSpace(reg.Username)
	if err := validation.Struct(reg); err != nil {
		return nil, err
	}
	hash, err := pkgcrypto.HashPassword(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{
		Email:        reg.Email,
		Username:     reg.Username,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login authenticates with rate limiting by (email, ip).
func (s *AuthServiceImpl) Login(ctx context.Context, email, password, ip string) (model.Tokens, error) {
	email = strings.TrimSpace(email)
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return model.Tokens{}, fmt.Errorf("limiter: %w", err)
	}
	if !allowed {
		metrics.LoginAttempts.WithLabelValues(metrics.LoginBlocked).Inc()
		return model.Tokens{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return model.Tokens{}, err
	}
	known := err == nil
	hash := dummyHash()
	if known {
		hash = u.PasswordHash
	}
	ok, err := s.verify(password, hash)
	if err != nil && known {
		return model.Tokens{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok || !known {
		// unknown email and wrong password look the same to the caller
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			metrics.LoginAttempts.WithLabelValues(metrics.LoginBlocked).Inc()
			return model.Tokens{}, errs.ErrRateLimited
		}
		metrics.LoginAttempts.WithLabelValues(metrics.LoginBadCredentials).Inc()
		return model.Tokens{}, fmt.Errorf("unable to log in with provided credentials: %w", errs.ErrUnauthorized)
	}

	_ = s.lim.Success(ctx, email, ipHash)
	metrics.LoginAttempts.WithLabelValues(metrics.LoginOK).Inc()

	access, exp, err := s.issueAccessToken(u.ID)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, nil
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueAccessToken(userID int64) (string, time.Time, error) {
	jti, err := uuid.NewV4()
	if err != nil {
		return "", time.Time{}, err
	}
	now := s.now()
	exp := now.Add(s.accessTTL)
	claims := jwt.RegisteredClaims{
		ID:        jti.String(),
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}

// parseToken verifies signature and expiry and returns the claims with the parsed jti.
func (s *AuthServiceImpl) parseToken(token string) (*jwt.RegisteredClaims, uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	keyFunc := func(*jwt.Token) (any, error) { return s.signKey, nil }
	_, err := jwt.ParseWithClaims(token, claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30*time.Second),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("invalid token: %w", errs.ErrUnauthorized)
	}
	jti, err := uuid.FromString(claims.ID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("invalid token id: %w", errs.ErrUnauthorized)
	}
	return claims, jti, nil
}

// Authenticate verifies the token, checks it was not revoked and loads the user for its staff flag.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (model.Viewer, error) {
	claims, jti, err := s.parseToken(token)
	if err != nil {
		return model.Anonymous, err
	}
	revoked, err := s.tokens.IsRevoked(ctx, jti)
	if err != nil {
		return model.Anonymous, err
	}
	if revoked {
		return model.Anonymous, fmt.Errorf("token has been revoked: %w", errs.ErrUnauthorized)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return model.Anonymous, fmt.Errorf("invalid token subject: %w", errs.ErrUnauthorized)
	}
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return model.Anonymous, fmt.Errorf("user no longer exists: %w", errs.ErrUnauthorized)
	}
	if err != nil {
		return model.Anonymous, err
	}
	return model.Viewer{ID: u.ID, IsStaff: u.IsStaff}, nil
}

// Logout puts the token's jti on the revocation list until the token expires.
func (s *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	claims, jti, err := s.parseToken(token)
	if err != nil {
		return err
	}
	return s.tokens.Revoke(ctx, jti, claims.ExpiresAt.Time)
}

type passwordChange struct {
	CurrentPassword string `validate:"required"`
	NewPassword     string `validate:"required,min=8,max=128"`
}

// SetPassword checks the current password and stores a hash of the new one.
func (s *AuthServiceImpl) SetPassword(ctx context.Context, viewer model.Viewer, current, next string) error {
	if !viewer.Authenticated() {
		return errs.ErrUnauthorized
	}
	if err := validation.Struct(passwordChange{CurrentPassword: current, NewPassword: next}); err != nil {
		return err
	}
	u, err := s.users.GetByID(ctx, viewer.ID)
	if err != nil {
		return err
	}
	ok, err := pkgcrypto.VerifyPassword(current, u.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return errs.Invalid("current_password", "the current password is wrong")
	}
	hash, err := pkgcrypto.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, u.ID, hash)
}
