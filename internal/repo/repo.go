package repo

import (
	"errors"

	"gorm.io/gorm"
)

var ErrUserExists = errors.New("user already exists")

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}
