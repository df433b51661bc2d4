package draws

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/suvarnachakram/results-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for draws.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByDate(ctx context.Context, date string) ([]models.Draw, error)
	FindPublishedByDate(ctx context.Context, date string) ([]models.Draw, error)
	FindUnpublishedByDate(ctx context.Context, date string) ([]models.Draw, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Draw, error)
	HasAnyForDate(ctx context.Context, date string) (bool, error)
	ExistsForSlot(ctx context.Context, date, slot string) (bool, error)
	InsertMany(ctx context.Context, draws []models.Draw) error
	MarkPublished(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a draws repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindByDate(ctx context.Context, date string) ([]models.Draw, error) {
	var rows []models.Draw
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("slot ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) FindPublishedByDate(ctx context.Context, date string) ([]models.Draw, error) {
	var rows []models.Draw
	err := r.db.WithContext(ctx).
		Where("date = ? AND published = ?", date, true).
		Order("slot ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) FindUnpublishedByDate(ctx context.Context, date string) ([]models.Draw, error) {
	var rows []models.Draw
	err := r.db.WithContext(ctx).
		Where("date = ? AND published = ?", date, false).
		Order("slot ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Draw, error) {
	var row models.Draw
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) HasAnyForDate(ctx context.Context, date string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Draw{}).
		Where("date = ?", date).
		Count(&count).Error
	return count > 0, err
}

func (r *repositoryImpl) ExistsForSlot(ctx context.Context, date, slot string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Draw{}).
		Where("date = ? AND slot = ?", date, slot).
		Count(&count).Error
	return count > 0, err
}

func (r *repositoryImpl) InsertMany(ctx context.Context, draws []models.Draw) error {
	if len(draws) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&draws).Error
}

// MarkPublished flips a draw to published exactly once. The published guard
// in the predicate makes a second call a no-op.
func (r *repositoryImpl) MarkPublished(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Draw{}).
		Where("id = ? AND published = ?", id, false).
		Updates(map[string]any{
			"published":  true,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
