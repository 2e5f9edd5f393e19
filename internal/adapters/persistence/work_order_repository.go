package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/factoryplan/aps-go/internal/domain/workorder"
)

// GormWorkOrderRepository implements workorder.Repository using GORM
type GormWorkOrderRepository struct {
	db *gorm.DB
}

func NewGormWorkOrderRepository(db *gorm.DB) *GormWorkOrderRepository {
	return &GormWorkOrderRepository{db: db}
}

func (r *GormWorkOrderRepository) SavePackerOrders(ctx context.Context, orders []workorder.PackerOrder) error {
	if len(orders) == 0 {
		return nil
	}
	models := make([]PackerOrderModel, len(orders))
	for i := range orders {
		models[i] = packerToModel(&orders[i])
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return fmt.Errorf("failed to save packing orders: %w", err)
	}
	return nil
}

func (r *GormWorkOrderRepository) SaveFeederOrders(ctx context.Context, orders []workorder.FeederOrder) error {
	if len(orders) == 0 {
		return nil
	}
	models := make([]FeederOrderModel, len(orders))
	for i := range orders {
		models[i] = feederToModel(&orders[i])
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return fmt.Errorf("failed to save feeding orders: %w", err)
	}
	return nil
}

func (r *GormWorkOrderRepository) FindPackerOrdersByTaskID(ctx context.Context, taskID string) ([]workorder.PackerOrder, error) {
	var models []PackerOrderModel
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("plan_start ASC, plan_id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find packing orders: %w", err)
	}
	orders := make([]workorder.PackerOrder, len(models))
	for i := range models {
		orders[i] = modelToPacker(&models[i])
	}
	return orders, nil
}

func (r *GormWorkOrderRepository) FindFeederOrdersByTaskID(ctx context.Context, taskID string) ([]workorder.FeederOrder, error) {
	var models []FeederOrderModel
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("plan_start ASC, plan_id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find feeding orders: %w", err)
	}
	orders := make([]workorder.FeederOrder, len(models))
	for i := range models {
		orders[i] = modelToFeeder(&models[i])
	}
	return orders, nil
}

// DeleteByTaskID removes both order kinds of a task in one transaction.
func (r *GormWorkOrderRepository) DeleteByTaskID(ctx context.Context, taskID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&PackerOrderModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete packing orders: %w", err)
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&FeederOrderModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete feeding orders: %w", err)
		}
		return nil
	})
}

func (r *GormWorkOrderRepository) UpdatePackerOrderStatus(ctx context.Context, planID string, status workorder.Status) error {
	result := r.db.WithContext(ctx).
		Model(&PackerOrderModel{}).
		Where("plan_id = ?", planID).
		Update("status", string(status))
	if result.Error != nil {
		return fmt.Errorf("failed to update order %s: %w", planID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("packing order %s not found", planID)
	}
	return nil
}

func packerToModel(o *workorder.PackerOrder) PackerOrderModel {
	return PackerOrderModel{
		PlanID:         o.PlanID,
		ProductionLine: o.ProductionLine,
		MaterialCode:   o.MaterialCode,
		Quantity:       o.Quantity,
		PlanStart:      o.PlanStart,
		PlanEnd:        o.PlanEnd,
		Sequence:       o.Sequence,
		PlanDate:       o.PlanDate,
		Shift:          o.Shift,
		InputPlanID:    o.InputPlanID,
		InputBatchCode: o.InputBatchCode,
		TaskID:         o.TaskID,
		Status:         string(o.Status),
	}
}

func modelToPacker(m *PackerOrderModel) workorder.PackerOrder {
	return workorder.PackerOrder{
		PlanID:         m.PlanID,
		ProductionLine: m.ProductionLine,
		MaterialCode:   m.MaterialCode,
		Quantity:       m.Quantity,
		PlanStart:      m.PlanStart,
		PlanEnd:        m.PlanEnd,
		Sequence:       m.Sequence,
		PlanDate:       m.PlanDate,
		Shift:          m.Shift,
		InputPlanID:    m.InputPlanID,
		InputBatchCode: m.InputBatchCode,
		TaskID:         m.TaskID,
		Status:         workorder.Status(m.Status),
	}
}

func feederToModel(o *workorder.FeederOrder) FeederOrderModel {
	return FeederOrderModel{
		PlanID:         o.PlanID,
		MachineCode:    o.MachineCode,
		ProductionLine: o.ProductionLine,
		MaterialCode:   o.MaterialCode,
		PlanStart:      o.PlanStart,
		PlanEnd:        o.PlanEnd,
		Sequence:       o.Sequence,
		PlanDate:       o.PlanDate,
		Shift:          o.Shift,
		TaskID:         o.TaskID,
		SafetyStock:    o.SafetyStock,
		IsLastOne:      o.IsLastOne,
		Status:         string(o.Status),
	}
}

func modelToFeeder(m *FeederOrderModel) workorder.FeederOrder {
	return workorder.FeederOrder{
		PlanID:         m.PlanID,
		MachineCode:    m.MachineCode,
		ProductionLine: m.ProductionLine,
		MaterialCode:   m.MaterialCode,
		PlanStart:      m.PlanStart,
		PlanEnd:        m.PlanEnd,
		Sequence:       m.Sequence,
		PlanDate:       m.PlanDate,
		Shift:          m.Shift,
		TaskID:         m.TaskID,
		SafetyStock:    m.SafetyStock,
		IsLastOne:      m.IsLastOne,
		Status:         workorder.Status(m.Status),
	}
}
