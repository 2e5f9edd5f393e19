package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/factoryplan/aps-go/internal/domain/workorder"
)

// GormSequenceAllocator implements workorder.SequenceAllocator using a
// per-(kind, date) counter row updated under a row lock.
type GormSequenceAllocator struct {
	db *gorm.DB
}

func NewGormSequenceAllocator(db *gorm.DB) *GormSequenceAllocator {
	return &GormSequenceAllocator{db: db}
}

// Allocate reserves n consecutive sequence numbers for (kind, date) and
// returns the first reserved value. The first allocation of a day yields 1.
func (a *GormSequenceAllocator) Allocate(ctx context.Context, kind workorder.Kind, date time.Time, n int) (int64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("allocation count must be positive, got %d", n)
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	var first int64
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counter DailySequenceModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("kind = ? AND date = ?", string(kind), day).
			First(&counter).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			counter = DailySequenceModel{Kind: string(kind), Date: day, NextValue: 1}
			if err := tx.Create(&counter).Error; err != nil {
				return fmt.Errorf("failed to create sequence counter: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to lock sequence counter: %w", err)
		}

		first = counter.NextValue
		counter.NextValue += int64(n)
		if err := tx.Save(&counter).Error; err != nil {
			return fmt.Errorf("failed to advance sequence counter: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return first, nil
}
