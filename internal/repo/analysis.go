package repo

import (
	"context"

	"github.com/avelesov/urlwords/internal/models"
)

func (r *GormRepo) SaveAnalysis(ctx context.Context, a *models.URLAnalysis) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *GormRepo) AnalysesByUser(ctx context.Context, userID uint, offset, limit int) ([]models.URLAnalysis, int64, error) {
	var total int64
	err := r.DB.WithContext(ctx).Model(&models.URLAnalysis{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var items []models.URLAnalysis
	err = r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("analyzed_at DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *GormRepo) AllAnalyses(ctx context.Context, offset, limit int) ([]models.URLAnalysis, int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.URLAnalysis{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.URLAnalysis
	err := r.DB.WithContext(ctx).
		Order("analyzed_at DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
