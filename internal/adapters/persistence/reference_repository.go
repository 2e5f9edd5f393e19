package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/factoryplan/aps-go/internal/domain/machine"
)

// GormReferenceRepository implements machine.ReferenceRepository using GORM
type GormReferenceRepository struct {
	db *gorm.DB
}

func NewGormReferenceRepository(db *gorm.DB) *GormReferenceRepository {
	return &GormReferenceRepository{db: db}
}

func (r *GormReferenceRepository) Machines(ctx context.Context) ([]machine.Machine, error) {
	var models []MachineModel
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load machines: %w", err)
	}
	machines := make([]machine.Machine, len(models))
	for i, m := range models {
		machines[i] = machine.Machine{
			Code:   m.Code,
			Kind:   machine.Kind(m.Kind),
			Status: machine.Status(m.Status),
		}
	}
	return machines, nil
}

func (r *GormReferenceRepository) Relations(ctx context.Context) ([]machine.Relation, error) {
	var models []RelationModel
	if err := r.db.WithContext(ctx).Order("priority ASC, id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load relations: %w", err)
	}
	relations := make([]machine.Relation, len(models))
	for i, m := range models {
		relations[i] = machine.Relation{
			FeederCode:    m.FeederCode,
			MakerCode:     m.MakerCode,
			Priority:      m.Priority,
			EffectiveFrom: m.EffectiveFrom,
			EffectiveTo:   m.EffectiveTo,
		}
	}
	return relations, nil
}

func (r *GormReferenceRepository) Speeds(ctx context.Context) ([]machine.Speed, error) {
	var models []SpeedModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load speeds: %w", err)
	}
	speeds := make([]machine.Speed, len(models))
	for i, m := range models {
		speeds[i] = machine.Speed{
			MachineCode:  m.MachineCode,
			ArticleNr:    m.ArticleNr,
			BoxesPerHour: m.BoxesPerHour,
			Efficiency:   m.Efficiency,
		}
	}
	return speeds, nil
}

func (r *GormReferenceRepository) Shifts(ctx context.Context) ([]machine.ShiftWindow, error) {
	var models []ShiftModel
	if err := r.db.WithContext(ctx).Order("start_minutes ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load shifts: %w", err)
	}
	shifts := make([]machine.ShiftWindow, len(models))
	for i, m := range models {
		shifts[i] = machine.ShiftWindow{
			ShiftName:     m.ShiftName,
			MachineScope:  m.MachineScope,
			StartOfDay:    time.Duration(m.StartMinutes) * time.Minute,
			EndOfDay:      time.Duration(m.EndMinutes) * time.Minute,
			MayOvertime:   m.MayOvertime,
			MaxOvertime:   time.Duration(m.MaxOvertimeMin) * time.Minute,
			EffectiveFrom: m.EffectiveFrom,
			EffectiveTo:   m.EffectiveTo,
		}
	}
	return shifts, nil
}

func (r *GormReferenceRepository) MaintenanceBetween(ctx context.Context, from, to time.Time) ([]machine.MaintenanceWindow, error) {
	var models []MaintenanceModel
	err := r.db.WithContext(ctx).
		Where("start_time < ? AND end_time > ?", to, from).
		Order("start_time ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load maintenance windows: %w", err)
	}
	windows := make([]machine.MaintenanceWindow, len(models))
	for i, m := range models {
		windows[i] = machine.MaintenanceWindow{
			MachineCode: m.MachineCode,
			Start:       m.StartTime,
			End:         m.EndTime,
			Status:      machine.MaintenanceStatus(m.Status),
		}
	}
	return windows, nil
}
