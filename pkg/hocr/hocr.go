// Package hocr reads hOCR documents, the HTML-based standard format for
// geometric OCR results, and adapts them into the region model consumed by
// the layout reconstruction engine.
//
// Only the geometry the engine needs is retained: pages, lines, and words
// with their bounding boxes. Areas and paragraphs are flattened away.
package hocr

import (
	"github.com/Fusyong/youdaoocr/pkg/youdao"
)

// BBox is a rectangle in hOCR coordinate form: top-left and bottom-right
// corners.
type BBox struct {
	X1 int
	Y1 int
	X2 int
	Y2 int
}

// Word is a recognized word with its bounding box (class ocrx_word).
type Word struct {
	Text string
	BBox BBox
}

// Line is a recognized text line (class ocr_line).
type Line struct {
	Text  string
	BBox  BBox
	Words []Word
}

// Page is one page of recognized text (class ocr_page).
type Page struct {
	Lang  string
	BBox  BBox
	Lines []Line
}

// Regions converts parsed pages into the region model the layout engine
// consumes. Every hOCR line is horizontal-direction; vertical writing has
// no representation in the format.
func Regions(pages []Page) []youdao.Region {
	var regions []youdao.Region
	for _, page := range pages {
		region := youdao.Region{
			Lang:        page.Lang,
			Dir:         youdao.DirHorizontal,
			BoundingBox: toBoundingBox(page.BBox),
		}
		for _, line := range page.Lines {
			words := make([]youdao.Word, 0, len(line.Words))
			for _, word := range line.Words {
				words = append(words, youdao.Word{
					Text:        word.Text,
					BoundingBox: toBoundingBox(word.BBox),
				})
			}
			region.Lines = append(region.Lines, youdao.Line{
				Text:        line.Text,
				Words:       words,
				BoundingBox: toBoundingBox(line.BBox),
			})
		}
		regions = append(regions, region)
	}
	return regions
}

func toBoundingBox(b BBox) youdao.BoundingBox {
	return youdao.BoundingBox{
		X:      b.X1,
		Y:      b.Y1,
		Width:  b.X2 - b.X1,
		Height: b.Y2 - b.Y1,
	}
}
