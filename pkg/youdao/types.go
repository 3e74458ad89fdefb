package youdao

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Text directions used by the Youdao OCR API.
const (
	DirHorizontal = "h"
	DirVertical   = "v"
)

// BoundingBox is an axis-aligned rectangle in page pixel coordinates.
type BoundingBox struct {
	X      int
	Y      int
	Width  int
	Height int
}

// ParseBoundingBox parses the bounding box string formats used by the API:
//
//   - "x,y,width,height"
//   - "x1,y1,x2,y2,x3,y3,x4,y4" (four corner points)
//
// The four-point form is reduced to its axis-aligned envelope, discarding
// any rotation. Malformed input never produces an error; the zero rectangle
// is returned instead, with ok=false so callers can log degraded geometry.
func ParseBoundingBox(s string) (BoundingBox, bool) {
	var parts []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return BoundingBox{}, false
		}
		nums[i] = n
	}

	switch len(nums) {
	case 4:
		return BoundingBox{X: nums[0], Y: nums[1], Width: nums[2], Height: nums[3]}, true
	case 8:
		minX, maxX := nums[0], nums[0]
		minY, maxY := nums[1], nums[1]
		for i := 2; i < 8; i += 2 {
			minX = min(minX, nums[i])
			maxX = max(maxX, nums[i])
			minY = min(minY, nums[i+1])
			maxY = max(maxY, nums[i+1])
		}
		return BoundingBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
	}
	return BoundingBox{}, false
}

// Word is a single recognized token, the leaf of the region hierarchy.
type Word struct {
	Text        string
	BoundingBox BoundingBox
}

// UnmarshalJSON decodes the API word record, resolving the bounding box
// string to a rectangle.
func (w *Word) UnmarshalJSON(data []byte) error {
	var raw struct {
		Word        string `json:"word"`
		BoundingBox string `json:"boundingBox"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	w.Text = raw.Word
	w.BoundingBox, _ = ParseBoundingBox(raw.BoundingBox)
	return nil
}

// Line is one recognized text line with its word tokens.
type Line struct {
	Text        string
	Words       []Word
	BoundingBox BoundingBox
	TextHeight  int
	Style       string
}

// UnmarshalJSON decodes the API line record. text_height and style are
// optional and may arrive as either numbers or strings; missing or
// unusable values default to zero/empty so a sparse record never blocks
// downstream processing.
func (l *Line) UnmarshalJSON(data []byte) error {
	var raw struct {
		Text        string          `json:"text"`
		Words       []Word          `json:"words"`
		BoundingBox string          `json:"boundingBox"`
		TextHeight  json.RawMessage `json:"text_height"`
		Style       json.RawMessage `json:"style"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	l.Text = raw.Text
	l.Words = raw.Words
	l.BoundingBox, _ = ParseBoundingBox(raw.BoundingBox)
	l.TextHeight = flexInt(raw.TextHeight)
	l.Style = flexString(raw.Style)
	return nil
}

// Region is a document subdivision with a single reading direction.
type Region struct {
	Lang        string
	Dir         string
	Lines       []Line
	BoundingBox BoundingBox
}

// UnmarshalJSON decodes the API region record. A missing direction
// defaults to horizontal.
func (r *Region) UnmarshalJSON(data []byte) error {
	var raw struct {
		Lang        string `json:"lang"`
		Dir         string `json:"dir"`
		Lines       []Line `json:"lines"`
		BoundingBox string `json:"boundingBox"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Lang = raw.Lang
	r.Dir = raw.Dir
	if r.Dir == "" {
		r.Dir = DirHorizontal
	}
	r.Lines = raw.Lines
	r.BoundingBox, _ = ParseBoundingBox(raw.BoundingBox)
	return nil
}

// Result is the recognition payload of an API response.
type Result struct {
	Orientation string   `json:"orientation"`
	Regions     []Region `json:"regions"`
}

// Document is a full OCR API response.
type Document struct {
	ErrorCode string  `json:"errorCode"`
	Result    *Result `json:"Result"`
}

// ParseDocument decodes a raw OCR JSON response. A response without the
// top-level Result key is a hard input error; everything below Result
// degrades gracefully to zero values.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("malformed OCR JSON: %w", err)
	}
	if doc.Result == nil {
		return nil, fmt.Errorf("missing 'Result' field in OCR JSON")
	}
	return &doc, nil
}

// flexInt reads an optional JSON value that may be a number, a numeric
// string, or absent.
func flexInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v
		}
	}
	return 0
}

// flexString reads an optional JSON value that may be a string or a number.
func flexString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}
