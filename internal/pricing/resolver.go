package pricing

import "sort"

// ShouldReplace is the whole replacement rule: an observation displaces the
// stored price only when it is both strictly newer and strictly lower.
// Equal timestamps or equal prices keep the stored row, so replaying the
// same history is a no-op.
func ShouldReplace(current CurrentPrice, obs Observation) bool {
	return obs.ObservedAt.After(current.ObservedAt) && obs.UnitPrice < current.UnitPrice
}

// Resolve folds a sequence of observations for one (product, establishment)
// into the price the store would converge on. Observations are replayed in
// timestamp order regardless of input order: the first valid one lands,
// later ones go through ShouldReplace.
func Resolve(observations []Observation) (CurrentPrice, bool) {
	ordered := make([]Observation, len(observations))
	copy(ordered, observations)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ObservedAt.Before(ordered[j].ObservedAt)
	})

	var current CurrentPrice
	seeded := false

	for _, obs := range ordered {
		if obs.validate() != nil {
			continue
		}
		if !seeded {
			current = CurrentPrice{
				SKU:           obs.SKU,
				Establishment: obs.Establishment,
				UnitPrice:     obs.UnitPrice,
				ObservedAt:    obs.ObservedAt,
			}
			seeded = true
			continue
		}
		if ShouldReplace(current, obs) {
			current.UnitPrice = obs.UnitPrice
			current.ObservedAt = obs.ObservedAt
		}
	}
	return current, seeded
}
