package persistence

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/factoryplan/aps-go/internal/domain/plan"
)

// GormPlanRepository implements plan.Repository using GORM
type GormPlanRepository struct {
	db *gorm.DB
}

func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// SaveRows persists the rows of one import batch.
func (r *GormPlanRepository) SaveRows(ctx context.Context, rows []plan.DecadeRow) error {
	if len(rows) == 0 {
		return nil
	}
	models := make([]DecadeRowModel, len(rows))
	for i := range rows {
		models[i] = rowToModel(&rows[i])
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return fmt.Errorf("failed to save decade rows: %w", err)
	}
	return nil
}

// LoadBatch returns the schedulable rows of a batch in canonical pipeline
// order: (plannedStart asc, row asc). ERROR rows are excluded.
func (r *GormPlanRepository) LoadBatch(ctx context.Context, batchID string) ([]plan.DecadeRow, error) {
	var models []DecadeRowModel
	err := r.db.WithContext(ctx).
		Where("batch_id = ? AND validation_status IN ?", batchID,
			[]string{string(plan.ValidationValid), string(plan.ValidationWarning)}).
		Order("planned_start ASC, row_nr ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load batch %s: %w", batchID, err)
	}

	rows := make([]plan.DecadeRow, len(models))
	for i := range models {
		rows[i] = modelToRow(&models[i])
	}
	return rows, nil
}

// DeleteBatch removes all rows of a batch.
func (r *GormPlanRepository) DeleteBatch(ctx context.Context, batchID string) error {
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Delete(&DecadeRowModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete batch %s: %w", batchID, err)
	}
	return nil
}

func rowToModel(row *plan.DecadeRow) DecadeRowModel {
	return DecadeRowModel{
		ID:               row.ID,
		BatchID:          row.BatchID,
		WorkOrderNr:      row.WorkOrderNr,
		ArticleNr:        row.ArticleNr,
		PackageType:      row.PackageType,
		Spec:             row.Spec,
		QtyTotal:         row.QtyTotal,
		QtyFinal:         row.QtyFinal,
		FeederCodes:      strings.Join(row.FeederCodes, ","),
		MakerCodes:       strings.Join(row.MakerCodes, ","),
		PlannedStart:     row.PlannedStart,
		PlannedEnd:       row.PlannedEnd,
		RowNr:            row.Row,
		ValidationStatus: string(row.Validation),
	}
}

func modelToRow(m *DecadeRowModel) plan.DecadeRow {
	return plan.DecadeRow{
		ID:           m.ID,
		BatchID:      m.BatchID,
		WorkOrderNr:  m.WorkOrderNr,
		ArticleNr:    m.ArticleNr,
		PackageType:  m.PackageType,
		Spec:         m.Spec,
		QtyTotal:     m.QtyTotal,
		QtyFinal:     m.QtyFinal,
		FeederCodes:  splitCodes(m.FeederCodes),
		MakerCodes:   splitCodes(m.MakerCodes),
		PlannedStart: m.PlannedStart,
		PlannedEnd:   m.PlannedEnd,
		Row:          m.RowNr,
		Validation:   plan.ValidationStatus(m.ValidationStatus),
	}
}

func splitCodes(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}
