package layout

import (
	"math"
	"strings"
)

// All pixel-to-whitespace conversions share one rule: two space characters
// approximate one body-character height of horizontal distance.

// LineSpacing is the calibrated pixel distance between two consecutive
// text lines, never below one pixel.
func LineSpacing(c Constants) float64 {
	return math.Max(1.0, c.CharHeight*c.LineHeightMultiplier)
}

// RowIndentSpaces converts a row's offset from the document's left text
// margin into a count of leading spaces.
func RowIndentSpaces(row []Fragment, baseLeft int, charHeight float64) int {
	if len(row) == 0 {
		return 0
	}
	charHeight = guardCharHeight(charHeight)
	left := row[0].X
	for _, f := range row[1:] {
		left = min(left, f.X)
	}
	indentPx := max(0, left-baseLeft)
	return max(0, int(math.Round(float64(indentPx)/charHeight*2)))
}

// JoinWithSpacing concatenates a row's fragments, inserting spaces for the
// pixel gaps between adjacent fragments.
func JoinWithSpacing(row []Fragment, charHeight float64) string {
	if len(row) == 0 {
		return ""
	}
	charHeight = guardCharHeight(charHeight)

	var b strings.Builder
	prevRight := 0
	for i, f := range row {
		if i > 0 {
			gapPx := max(0, f.X-prevRight)
			if spaces := int(math.Round(float64(gapPx) / charHeight * 2)); spaces > 0 {
				b.WriteString(strings.Repeat(" ", spaces))
			}
		}
		b.WriteString(f.Text)
		prevRight = f.Right()
	}
	return b.String()
}

// BlankLinesBetween converts the vertical gap between two rows into a
// count of blank output lines: floor(gap / lineSpacing), measured from the
// previous row's lowest bottom edge to the current row's highest top edge.
func BlankLinesBetween(prevRow, currRow []Fragment, lineSpacing float64) int {
	if len(prevRow) == 0 || len(currRow) == 0 || lineSpacing <= 0 {
		return 0
	}
	prevBottom := prevRow[0].Bottom()
	for _, f := range prevRow[1:] {
		prevBottom = max(prevBottom, f.Bottom())
	}
	currTop := currRow[0].Y
	for _, f := range currRow[1:] {
		currTop = min(currTop, f.Y)
	}
	gapPx := math.Max(0, float64(currTop-prevBottom))
	return int(math.Floor(gapPx / lineSpacing))
}

// guardCharHeight substitutes the default for a degenerate estimate.
func guardCharHeight(charHeight float64) float64 {
	if charHeight <= 0 {
		return DefaultCharHeight
	}
	return charHeight
}
