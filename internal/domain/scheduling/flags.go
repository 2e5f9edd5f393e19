package scheduling

import "fmt"

// Flags enables or disables individual pipeline stages of a scheduling task.
type Flags struct {
	MergeEnabled      bool
	SplitEnabled      bool
	CorrectionEnabled bool
	ParallelEnabled   bool
}

// DefaultFlags runs the full pipeline.
func DefaultFlags() Flags {
	return Flags{
		MergeEnabled:      true,
		SplitEnabled:      true,
		CorrectionEnabled: true,
		ParallelEnabled:   true,
	}
}

// Fingerprint is a stable encoding of the flag set, used for task
// idempotency checks on (batchId, flags).
func (f Flags) Fingerprint() string {
	return fmt.Sprintf("m%tc%ts%tp%t",
		f.MergeEnabled, f.CorrectionEnabled, f.SplitEnabled, f.ParallelEnabled)
}
