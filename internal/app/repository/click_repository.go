package repository

import (
	"context"
	"errors"
	"time"

	"github.com/clickwall/clickwall/internal/app/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClickResult carries the state produced by one committed click transaction.
type ClickResult struct {
	Event       model.ClickEvent
	UserCount   int64
	GlobalTotal int64
}

// ClickRepository is the ledger's data access contract. ApplyClick performs
// the three-record update as a single transaction: either the user counter,
// the global counter, and the new click event all commit, or none do.
type ClickRepository interface {
	ApplyClick(ctx context.Context, userID string) (*ClickResult, error)
	GetGlobalTotal(ctx context.Context) (int64, bool, error)
	GetUserCount(ctx context.Context, userID string) (int64, bool, error)
	EnsureGlobalCounter(ctx context.Context) error
}

type clickRepository struct {
	db *gorm.DB
}

// NewClickRepository returns a GORM-backed ClickRepository.
func NewClickRepository(db *gorm.DB) ClickRepository {
	return &clickRepository{db: db}
}

func (r *clickRepository) ApplyClick(ctx context.Context, userID string) (*ClickResult, error) {
	result := &ClickResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upd := tx.Model(&model.User{}).
			Where("id = ?", userID).
			UpdateColumn("click_count", gorm.Expr("click_count + ?", 1))
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return ErrUserNotFound
		}

		if err := tx.Model(&model.GlobalCounter{}).
			Where("id = ?", model.GlobalCounterID).
			UpdateColumn("total", gorm.Expr("total + ?", 1)).Error; err != nil {
			return err
		}

		event := model.ClickEvent{
			ID:         uuid.New().String(),
			UserID:     userID,
			OccurredAt: time.Now().UTC(),
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		// Read the fresh projections inside the transaction so the returned
		// snapshot matches the committed state exactly.
		var user model.User
		if err := tx.Select("click_count").Where("id = ?", userID).First(&user).Error; err != nil {
			return err
		}
		var counter model.GlobalCounter
		if err := tx.First(&counter, model.GlobalCounterID).Error; err != nil {
			return err
		}

		result.Event = event
		result.UserCount = user.ClickCount
		result.GlobalTotal = counter.Total
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *clickRepository) GetGlobalTotal(ctx context.Context) (int64, bool, error) {
	var counter model.GlobalCounter
	err := r.db.WithContext(ctx).First(&counter, model.GlobalCounterID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return counter.Total, true, nil
}

func (r *clickRepository) GetUserCount(ctx context.Context, userID string) (int64, bool, error) {
	var user model.User
	err := r.db.WithContext(ctx).Select("click_count").Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return user.ClickCount, true, nil
}

// EnsureGlobalCounter creates the singleton counter row if it is missing.
// Called once at startup after migrations.
func (r *clickRepository) EnsureGlobalCounter(ctx context.Context) error {
	counter := model.GlobalCounter{ID: model.GlobalCounterID}
	return r.db.WithContext(ctx).FirstOrCreate(&counter, model.GlobalCounter{ID: model.GlobalCounterID}).Error
}
