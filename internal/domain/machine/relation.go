package machine

import "time"

// Relation links a feeder to one packer it serves. A feeder with several
// relations is a ONE_TO_MANY feeder; its packer orders must be kept in
// parallel by the synchronizer.
type Relation struct {
	FeederCode    string
	MakerCode     string
	Priority      int
	EffectiveFrom *time.Time
	EffectiveTo   *time.Time
}

// ActiveAt reports whether the relation is effective at the given instant.
func (r *Relation) ActiveAt(at time.Time) bool {
	if r.EffectiveFrom != nil && at.Before(*r.EffectiveFrom) {
		return false
	}
	if r.EffectiveTo != nil && !at.Before(*r.EffectiveTo) {
		return false
	}
	return true
}
