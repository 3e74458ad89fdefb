package layout

import (
	"sort"
	"strings"

	"github.com/Fusyong/youdaoocr/pkg/youdao"
)

// Fragment is the geometry of one horizontal text line during clustering
// and spacing reconstruction. It is an immutable value; derived positions
// are accessors, never stored.
type Fragment struct {
	Text   string
	X      int
	Y      int
	Width  int
	Height int
}

// YMid is the vertical midpoint used for same-row clustering.
func (f Fragment) YMid() float64 {
	return float64(f.Y) + float64(f.Height)/2
}

// Right is the x coordinate of the fragment's right edge.
func (f Fragment) Right() int {
	return f.X + f.Width
}

// Bottom is the y coordinate of the fragment's bottom edge.
func (f Fragment) Bottom() int {
	return f.Y + f.Height
}

// CollectFragments gathers one fragment per non-empty line of every
// horizontal-direction region. A line whose own box is the zero rectangle
// inherits its region's box so it still participates in clustering.
func CollectFragments(regions []youdao.Region) []Fragment {
	var fragments []Fragment
	for _, region := range regions {
		if region.Dir != youdao.DirHorizontal {
			continue
		}
		for _, line := range region.Lines {
			text := strings.TrimSpace(line.Text)
			if text == "" {
				continue
			}
			box := line.BoundingBox
			if box == (youdao.BoundingBox{}) {
				box = region.BoundingBox
			}
			fragments = append(fragments, Fragment{
				Text:   text,
				X:      box.X,
				Y:      box.Y,
				Width:  box.Width,
				Height: box.Height,
			})
		}
	}
	return fragments
}

// sortStableBy sorts a slice in place, preserving the original order of
// equal elements. Clustering correctness depends on this stability: ties
// on the sort key must keep their input sequence.
func sortStableBy[T any](items []T, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])
	})
}
