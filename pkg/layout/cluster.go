package layout

import "math"

// SameLineRatio is the default fraction of the line spacing within which
// two fragment midpoints are judged to lie on the same visual row.
const SameLineRatio = 0.4

// GroupFragments clusters fragments into reading-order rows.
//
// Fragments are stably sorted by vertical midpoint and consumed in a
// single forward pass. A fragment joins the current row when its midpoint
// is within threshold of the row's running mean midpoint; the rolling mean
// lets a row tolerate gradual baseline drift without a hard cutoff. Closed
// rows are sorted left to right.
func GroupFragments(fragments []Fragment, lineSpacing, ratio float64) [][]Fragment {
	if len(fragments) == 0 {
		return nil
	}

	sorted := make([]Fragment, len(fragments))
	copy(sorted, fragments)
	sortStableBy(sorted, func(a, b Fragment) bool {
		return a.YMid() < b.YMid()
	})

	threshold := math.Max(1.0, ratio*lineSpacing)

	var groups [][]Fragment
	var current []Fragment
	var mean float64

	for _, f := range sorted {
		if len(current) > 0 && math.Abs(f.YMid()-mean) <= threshold {
			current = append(current, f)
			mean = (mean*float64(len(current)-1) + f.YMid()) / float64(len(current))
			continue
		}
		if len(current) > 0 {
			groups = append(groups, closeRow(current))
		}
		current = []Fragment{f}
		mean = f.YMid()
	}
	groups = append(groups, closeRow(current))

	return groups
}

// closeRow fixes a finished row's left-to-right reading order.
func closeRow(row []Fragment) []Fragment {
	sortStableBy(row, func(a, b Fragment) bool {
		return a.X < b.X
	})
	return row
}
