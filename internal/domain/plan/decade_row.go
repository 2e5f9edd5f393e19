package plan

import (
	"time"

	"github.com/factoryplan/aps-go/internal/domain/shared"
)

// ValidationStatus is the row-level validation verdict assigned at import time.
type ValidationStatus string

const (
	ValidationValid   ValidationStatus = "VALID"
	ValidationWarning ValidationStatus = "WARNING"
	ValidationError   ValidationStatus = "ERROR"
)

// DecadeRow is one row of an imported 10-day production plan.
// Rows are immutable inputs; the scheduling pipeline never mutates them.
type DecadeRow struct {
	ID          int64
	BatchID     string
	WorkOrderNr string
	ArticleNr   string
	PackageType string
	Spec        string
	QtyTotal    int
	QtyFinal    int

	// FeederCodes and MakerCodes keep the spreadsheet column order.
	FeederCodes []string
	MakerCodes  []string

	PlannedStart time.Time
	PlannedEnd   time.Time

	// Row is the spreadsheet row number, used as the stable tiebreaker.
	Row        int
	Validation ValidationStatus
}

// Validate checks the row invariants that must hold before scheduling.
func (r *DecadeRow) Validate() error {
	if r.ArticleNr == "" {
		return shared.NewValidationError("articleNr", "must not be empty")
	}
	if len(r.FeederCodes) == 0 {
		return shared.NewValidationError("feederCodes", "must contain at least one machine")
	}
	if len(r.MakerCodes) == 0 {
		return shared.NewValidationError("makerCodes", "must contain at least one machine")
	}
	if r.QtyFinal <= 0 {
		return shared.NewValidationError("qtyFinal", "must be positive")
	}
	if r.PlannedEnd.Before(r.PlannedStart) {
		return shared.NewValidationError("plannedEnd", "must not be before plannedStart")
	}
	return nil
}

// Schedulable reports whether the row participates in scheduling.
// ERROR rows are excluded; WARNING rows are scheduled as-is.
func (r *DecadeRow) Schedulable() bool {
	return r.Validation == ValidationValid || r.Validation == ValidationWarning
}
