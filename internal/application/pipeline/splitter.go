package pipeline

import (
	"sort"

	"github.com/factoryplan/aps-go/internal/domain/scheduling"
)

// Splitter expands one-feeder-to-many-packers orders into one logical order
// per packer with an allocated quantity share.
type Splitter struct{}

func NewSplitter() *Splitter {
	return &Splitter{}
}

// Split emits one single-packer order per packer of each input order. The
// quantity is divided evenly; the remainder goes to the lexicographically
// first packers so the sum is preserved exactly. Split children share a
// syncGroupId equal to the parent's id.
func (s *Splitter) Split(orders []*scheduling.LogicalOrder, flags scheduling.Flags) ([]*scheduling.LogicalOrder, error) {
	out := make([]*scheduling.LogicalOrder, 0, len(orders))
	for _, o := range orders {
		if len(o.Packers) <= 1 {
			out = append(out, o)
			continue
		}
		if !flags.SplitEnabled {
			return nil, scheduling.NewSplitRequiredError(o.ID, o.Packers)
		}

		packers := append([]string(nil), o.Packers...)
		sort.Strings(packers)

		k := len(packers)
		share := o.Qty / k
		remainder := o.Qty % k

		for i, packer := range packers {
			qty := share
			if i < remainder {
				qty++
			}
			child := scheduling.NewLogicalOrder(
				o.ArticleNr, qty, []string{packer}, o.Feeder, o.TargetStart, o.TargetEnd)
			child.SyncGroupID = o.ID
			child.Provenance = append([]int64(nil), o.Provenance...)
			out = append(out, child)
		}
	}
	return out, nil
}
