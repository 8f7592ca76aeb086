package repo

import (
	"context"

	"github.com/avelesov/urlwords/internal/models"
)

// CreateUser inserts u unless the username or email is already taken.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", u.Username, u.Email).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrUserExists
	}
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
