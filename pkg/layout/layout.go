// Package layout reconstructs the visual layout of an OCR'ed page as plain
// text: indentation, inter-word spacing, and blank lines between paragraphs.
//
// Raw OCR output carries text content plus pixel bounding boxes but no
// spatial relationships between fragments. This package recovers them:
//
// - It estimates the page's body character height and line spacing from
// the geometry samples, blended with a calibration history persisted
// across runs
// - It clusters scattered horizontal line fragments into reading-order rows
// - It converts pixel offsets into leading spaces, inter-fragment spaces,
// and blank lines
//
// The result is a best-effort textual approximation of the page layout,
// suitable for downstream structural analysis (headings, lists, tables).
package layout

import (
	"fmt"
	"io"
	"strings"

	"github.com/Fusyong/youdaoocr/pkg/youdao"
)

// Reconstructor turns recognized regions into layout-preserving text lines.
// Store holds the cross-run calibration history; Warn, when set, receives
// notes about degraded geometry without changing control flow.
type Reconstructor struct {
	Store         Store
	SameLineRatio float64
	Warn          io.Writer
}

// NewReconstructor creates a reconstructor backed by the given calibration
// store. A nil store means the default constants file in the working
// directory.
func NewReconstructor(store Store) *Reconstructor {
	if store == nil {
		store = NewFileStore("")
	}
	return &Reconstructor{
		Store:         store,
		SameLineRatio: SameLineRatio,
	}
}

// ConvertJSON converts a raw OCR JSON response into layout-preserving text.
// It never fails: structural problems in the document come back as a short
// diagnostic string in place of output text, so one malformed page cannot
// crash a batch run.
func (r *Reconstructor) ConvertJSON(data []byte) string {
	doc, err := youdao.ParseDocument(data)
	if err != nil {
		return "conversion failed: " + err.Error()
	}
	return r.Text(doc.Result.Regions)
}

// Text reconstructs the regions and joins the resulting lines with newlines.
func (r *Reconstructor) Text(regions []youdao.Region) string {
	return strings.Join(r.TextLines(regions), "\n")
}

// TextLines reconstructs the ordered text lines of a document.
//
// Horizontal fragments are clustered into rows using the calibrated line
// spacing; each row gets its inter-row blank lines, leading indentation,
// and intra-row spacing. Vertical regions are appended afterwards as plain
// stripped text, ordered by horizontal position.
func (r *Reconstructor) TextLines(regions []youdao.Region) []string {
	constants, _ := r.Estimate(regions)

	var textLines []string

	fragments := CollectFragments(regions)
	if degraded := countZeroBoxes(fragments); degraded > 0 {
		r.warnf("%d fragment(s) carry a defaulted zero bounding box", degraded)
	}

	if len(fragments) > 0 {
		lineSpacing := LineSpacing(constants)
		ratio := r.SameLineRatio
		if ratio <= 0 {
			ratio = SameLineRatio
		}
		rows := GroupFragments(fragments, lineSpacing, ratio)

		// Left text margin of the whole document.
		baseLeft := fragments[0].X
		for _, f := range fragments[1:] {
			baseLeft = min(baseLeft, f.X)
		}

		var prevRow []Fragment
		for _, row := range rows {
			if prevRow != nil {
				for i := 0; i < BlankLinesBetween(prevRow, row, lineSpacing); i++ {
					textLines = append(textLines, "")
				}
			}
			joined := strings.TrimSpace(JoinWithSpacing(row, constants.CharHeight))
			if joined == "" {
				continue
			}
			indent := RowIndentSpaces(row, baseLeft, constants.CharHeight)
			textLines = append(textLines, strings.Repeat(" ", indent)+joined)
			prevRow = row
		}
	}

	textLines = append(textLines, verticalLines(regions)...)
	return textLines
}

// verticalLines emits vertical-direction text after all horizontal output,
// sorted by region then line horizontal position, with no spacing
// reconstruction.
func verticalLines(regions []youdao.Region) []string {
	var vertical []youdao.Region
	for _, region := range regions {
		if region.Dir == youdao.DirVertical {
			vertical = append(vertical, region)
		}
	}
	sortStableBy(vertical, func(a, b youdao.Region) bool {
		return a.BoundingBox.X < b.BoundingBox.X
	})

	var lines []string
	for _, region := range vertical {
		sorted := make([]youdao.Line, len(region.Lines))
		copy(sorted, region.Lines)
		sortStableBy(sorted, func(a, b youdao.Line) bool {
			return a.BoundingBox.X < b.BoundingBox.X
		})
		for _, line := range sorted {
			if text := strings.TrimSpace(line.Text); text != "" {
				lines = append(lines, text)
			}
		}
	}
	return lines
}

func countZeroBoxes(fragments []Fragment) int {
	n := 0
	for _, f := range fragments {
		if f.Width == 0 && f.Height == 0 {
			n++
		}
	}
	return n
}

func (r *Reconstructor) warnf(format string, args ...any) {
	if r.Warn != nil {
		fmt.Fprintf(r.Warn, format+"\n", args...)
	}
}
