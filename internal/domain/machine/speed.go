package machine

// Wildcard matches any machine or article in the speed table.
const Wildcard = "*"

// Speed is one row of the speed table. Either field may be the wildcard.
type Speed struct {
	MachineCode  string
	ArticleNr    string
	BoxesPerHour float64
	Efficiency   float64
}

// EffectiveRate is the usable production rate in boxes per hour.
func (s *Speed) EffectiveRate() float64 {
	return s.BoxesPerHour * s.Efficiency
}

// specificity ranks a speed row for resolution. Exact match beats
// machine+wildcard beats wildcard+article beats the full wildcard row.
func (s *Speed) specificity() int {
	switch {
	case s.MachineCode != Wildcard && s.ArticleNr != Wildcard:
		return 3
	case s.MachineCode != Wildcard:
		return 2
	case s.ArticleNr != Wildcard:
		return 1
	default:
		return 0
	}
}

// matches reports whether the row applies to the (machine, article) pair.
func (s *Speed) matches(machineCode, articleNr string) bool {
	if s.MachineCode != Wildcard && s.MachineCode != machineCode {
		return false
	}
	if s.ArticleNr != Wildcard && s.ArticleNr != articleNr {
		return false
	}
	return true
}
