package docpreview

import "fmt"

type policyMode int

const (
	modeUnbounded policyMode = iota // zero value: everything on one page
	modeFixed
	modeTiered
)

// CapacityPolicy decides how many records each page holds. Build one with
// Fixed or Tiered; both reject non-positive capacities, so a policy that
// exists is always valid.
type CapacityPolicy struct {
	mode     policyMode
	first    int
	rest     int
	minSplit int
}

// Fixed puts perPage records on every page.
func Fixed(perPage int) (CapacityPolicy, error) {
	if perPage <= 0 {
		return CapacityPolicy{}, fmt.Errorf("%w: perPage must be positive, got %d", ErrInvalidCapacity, perPage)
	}
	return CapacityPolicy{mode: modeFixed, first: perPage, rest: perPage}, nil
}

// Tiered puts up to first records on page one and rest on each following
// page. A trailing remainder of at most minSplitRemainder records gets its
// own page; a larger remainder is split in two near-equal pages so the last
// page is never a lone stub.
func Tiered(first, rest, minSplitRemainder int) (CapacityPolicy, error) {
	if first <= 0 || rest <= 0 {
		return CapacityPolicy{}, fmt.Errorf("%w: first and rest must be positive, got %d/%d", ErrInvalidCapacity, first, rest)
	}
	if minSplitRemainder < 0 {
		return CapacityPolicy{}, fmt.Errorf("%w: minSplitRemainder must be >= 0, got %d", ErrInvalidThreshold, minSplitRemainder)
	}
	return CapacityPolicy{mode: modeTiered, first: first, rest: rest, minSplit: minSplitRemainder}, nil
}

// DefaultPolicy is Tiered(8, 12, 6).
func DefaultPolicy() CapacityPolicy {
	return CapacityPolicy{mode: modeTiered, first: 8, rest: 12, minSplit: 6}
}

// IsZero reports whether p was never built by Fixed or Tiered.
func (p CapacityPolicy) IsZero() bool {
	return p.mode == modeUnbounded
}

// Capacity returns the most records page index may hold.
func (p CapacityPolicy) Capacity(index int) int {
	switch {
	case p.mode == modeUnbounded:
		return -1
	case index == 0:
		return p.first
	default:
		return p.rest
	}
}

func (p CapacityPolicy) String() string {
	switch p.mode {
	case modeFixed:
		return fmt.Sprintf("fixed(%d)", p.first)
	case modeTiered:
		return fmt.Sprintf("tiered(%d,%d,%d)", p.first, p.rest, p.minSplit)
	default:
		return "unbounded"
	}
}

// sizes returns how many records each page gets. It always returns at
// least one entry so an empty document still renders one page.
func (p CapacityPolicy) sizes(total int) []int {
	if total <= 0 {
		return []int{0}
	}

	switch p.mode {
	case modeFixed:
		out := make([]int, 0, (total+p.first-1)/p.first)
		for left := total; left > 0; left -= p.first {
			out = append(out, min(left, p.first))
		}
		return out

	case modeTiered:
		out := []int{min(p.first, total)}
		left := total - out[0]
		for left >= p.rest {
			out = append(out, p.rest)
			left -= p.rest
		}
		switch {
		case left == 0:
		case left <= p.minSplit:
			out = append(out, left)
		default:
			out = append(out, (left+1)/2, left/2)
		}
		return out

	default:
		return []int{total}
	}
}
