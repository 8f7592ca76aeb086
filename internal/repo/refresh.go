package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/avelesov/urlwords/internal/models"
	"github.com/avelesov/urlwords/internal/tokens"
)

// IssueRefreshToken revokes every active token of the user and inserts
// a fresh one with expiry now+ttl. Both steps run in one transaction so
// concurrent logins for the same user can never leave two tokens
// active at once.
func (r *GormRepo) IssueRefreshToken(ctx context.Context, userID uint, ttl time.Duration) (string, error) {
	raw, err := tokens.NewRefreshToken()
	if err != nil {
		return "", err
	}
	record := models.RefreshToken{
		Token:     raw,
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RefreshToken{}).
			Where("user_id = ? AND revoked = ?", userID, false).
			Update("revoked", true).Error; err != nil {
			return err
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return "", err
	}
	return raw, nil
}

// ResolveRefreshToken returns the owning user only for a token that
// exists, is not revoked and has not expired. All three misses look
// identical to the caller: (nil, false, nil).
func (r *GormRepo) ResolveRefreshToken(ctx context.Context, token string) (*models.User, bool, error) {
	var rec models.RefreshToken
	err := r.DB.WithContext(ctx).
		Where("token = ? AND revoked = ? AND expires_at > ?", token, false, time.Now()).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, rec.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &user, true, nil
}

// RevokeRefreshToken marks the matching record revoked and reports
// whether one existed. Revoking an already-revoked token still
// matches, so the call is idempotent.
func (r *GormRepo) RevokeRefreshToken(ctx context.Context, token string) (bool, error) {
	result := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", token).
		Update("revoked", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
