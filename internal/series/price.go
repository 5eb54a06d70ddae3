package series

import "strconv"

// sentinelUnavailable is the persisted marker for "item could not be priced
// on this date" (delisted, malformed response, non-200 per-item status). It
// is distinct from the item having no row at all.
const sentinelUnavailable = -1

// Price is a single price observation: either a known amount or unavailable.
// Keeping the tag explicit means sentinels can never leak into a sum.
type Price struct {
	amount float64
	known  bool
}

// Known builds a priced observation.
func Known(amount float64) Price {
	return Price{amount: amount, known: true}
}

// Unavailable builds the could-not-price observation.
func Unavailable() Price {
	return Price{}
}

// Value returns the amount and whether it is known.
func (p Price) Value() (float64, bool) {
	return p.amount, p.known
}

// Comparable reports whether the observation can take part in inflation
// math: known and strictly positive.
func (p Price) Comparable() bool {
	return p.known && p.amount > 0
}

// Sentinel returns the persisted form: the amount, or -1 when unavailable.
func (p Price) Sentinel() float64 {
	if !p.known {
		return sentinelUnavailable
	}
	return p.amount
}

// String renders the persisted form.
func (p Price) String() string {
	return strconv.FormatFloat(p.Sentinel(), 'f', -1, 64)
}

// FromSentinel parses the persisted form. Non-positive values load as
// unavailable; the legacy files used -1 but any failed observation is
// equally unusable.
func FromSentinel(v float64) Price {
	if v <= 0 {
		return Unavailable()
	}
	return Known(v)
}
