package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// LogicalOrder is the transient unit of work flowing through the pipeline.
// The merger produces possibly multi-packer orders; after the splitter every
// order has exactly one packer and one feeder.
type LogicalOrder struct {
	ID        string
	ArticleNr string
	Qty       int

	Packers []string // machine codes; len 1 after the splitter
	Feeder  string   // machine code

	TargetStart time.Time
	TargetEnd   time.Time

	// SyncGroupID links split siblings. Orders that were never split keep
	// an empty group id and are synchronized as singleton groups.
	SyncGroupID string

	// Provenance lists the decade-row ids this order was built from,
	// in canonical input order.
	Provenance []int64
}

// NewLogicalOrder creates an order with a fresh identity.
func NewLogicalOrder(articleNr string, qty int, packers []string, feeder string, start, end time.Time) *LogicalOrder {
	return &LogicalOrder{
		ID:          uuid.New().String(),
		ArticleNr:   articleNr,
		Qty:         qty,
		Packers:     packers,
		Feeder:      feeder,
		TargetStart: start,
		TargetEnd:   end,
	}
}

// Packer returns the single packer of a post-split order.
func (o *LogicalOrder) Packer() string {
	return o.Packers[0]
}
