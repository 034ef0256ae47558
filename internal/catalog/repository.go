package catalog

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	ListBranches(ctx context.Context) ([]Branch, error)
	ListShifts(ctx context.Context) ([]ShiftDefinition, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListBranches(ctx context.Context) ([]Branch, error) {
	var branches []Branch
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&branches).Error
	return branches, err
}

func (r *repository) ListShifts(ctx context.Context) ([]ShiftDefinition, error) {
	var shifts []ShiftDefinition
	err := r.db.WithContext(ctx).
		Order("title ASC").
		Find(&shifts).Error
	return shifts, err
}
