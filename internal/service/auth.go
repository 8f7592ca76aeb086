package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/avelesov/urlwords/internal/hash"
	"github.com/avelesov/urlwords/internal/logging"
	"github.com/avelesov/urlwords/internal/models"
	"github.com/avelesov/urlwords/internal/repo"
	"github.com/avelesov/urlwords/internal/tokens"
)

var (
	// ErrAuthenticationFailed covers both unknown username and wrong
	// password. Callers must not be able to tell which one happened.
	ErrAuthenticationFailed = errors.New("incorrect username or password")
	// ErrInvalidRefreshToken covers absent, expired, revoked and
	// already-used refresh tokens, collapsed into one outcome.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

	ErrUserExists = repo.ErrUserExists
)

// dummyDigest is compared against when the username does not exist, so
// the unknown-user path costs the same bcrypt work as a real check.
const dummyDigest = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// AuthService orchestrates the token lifecycle: it authenticates
// credentials, issues access+refresh pairs, rotates and revokes them.
type AuthService struct {
	Repo       *repo.GormRepo
	Codec      *tokens.Codec
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	BcryptCost int
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	digest, err := hash.HashPassword(password, s.BcryptCost)
	if err != nil {
		l.Error("hash failed", "error", err)
		return nil, err
	}
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: digest,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	l.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, *models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			hash.CheckPassword(dummyDigest, password)
			return nil, nil, ErrAuthenticationFailed
		}
		l.Error("user lookup failed", "error", err)
		return nil, nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, nil, ErrAuthenticationFailed
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		l.Error("pair issuance failed", "error", err, "user_id", user.ID)
		return nil, nil, err
	}
	l.Info("login successful", "user_id", user.ID)
	return pair, user, nil
}

// Refresh exchanges a still-valid refresh token for a brand-new pair.
// The presented token is dead afterwards: issuePair revokes the
// user's active cohort, and the explicit revoke below keeps reuse
// impossible even if the issuance ordering ever changes.
func (s *AuthService) Refresh(ctx context.Context, oldToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	user, ok, err := s.Repo.ResolveRefreshToken(ctx, oldToken)
	if err != nil {
		l.Error("resolve failed", "error", err)
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidRefreshToken
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		l.Error("pair issuance failed", "error", err, "user_id", user.ID)
		return nil, err
	}
	if _, err := s.Repo.RevokeRefreshToken(ctx, oldToken); err != nil {
		l.Error("revoke of rotated token failed", "error", err, "user_id", user.ID)
		return nil, err
	}
	l.Info("tokens rotated", "user_id", user.ID)
	return pair, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	matched, err := s.Repo.RevokeRefreshToken(ctx, token)
	if err != nil {
		logging.FromContext(ctx).Error("revoke failed", "svc", "auth.logout", "error", err)
		return err
	}
	if !matched {
		return ErrInvalidRefreshToken
	}
	return nil
}

// issuePair creates the access token first, then the refresh token.
// Any failure aborts the whole operation; no half-issued pair is
// handed out.
func (s *AuthService) issuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, err := s.Codec.Issue(user.Username, s.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Repo.IssueRefreshToken(ctx, user.ID, s.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}
