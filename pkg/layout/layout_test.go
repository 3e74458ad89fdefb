package layout

import (
	"strings"
	"testing"

	"github.com/Fusyong/youdaoocr/pkg/youdao"
)

// calibrated returns a reconstructor whose store already holds the given
// constants with saturated counts, so a sparse test document always uses
// them as-is.
func calibrated(charHeight, multiplier float64) *Reconstructor {
	store := NewMemoryStore()
	store.Seed(Constants{
		CharHeight:           charHeight,
		LineHeightMultiplier: multiplier,
		SampleCounts:         SampleCounts{Char: maxSampleCount, Line: maxSampleCount},
	})
	return NewReconstructor(store)
}

func hLine(text string, x, y, width, height int) youdao.Line {
	return youdao.Line{
		Text:        text,
		BoundingBox: youdao.BoundingBox{X: x, Y: y, Width: width, Height: height},
	}
}

func TestTextLines_BlankLineBetweenRows(t *testing.T) {
	// char height 50, multiplier 1.5 -> line spacing 75. Two rows of
	// height 20 at y=0 and y=100: gap 80 -> exactly one blank line.
	rec := calibrated(50, 1.5)
	regions := []youdao.Region{{
		Dir: youdao.DirHorizontal,
		Lines: []youdao.Line{
			hLine("第一行", 0, 0, 200, 20),
			hLine("第二行", 0, 100, 200, 20),
		},
	}}

	lines := rec.TextLines(regions)
	want := []string{"第一行", "", "第二行"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestTextLines_Indentation(t *testing.T) {
	// Second row starts one char height right of the margin: two spaces.
	rec := calibrated(50, 1.5)
	regions := []youdao.Region{{
		Dir: youdao.DirHorizontal,
		Lines: []youdao.Line{
			hLine("标题", 0, 0, 200, 20),
			hLine("缩进", 50, 60, 200, 20),
		},
	}}

	lines := rec.TextLines(regions)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), lines)
	}
	if lines[1] != "  缩进" {
		t.Errorf("expected two leading spaces, got %q", lines[1])
	}
}

func TestTextLines_SameRowAcrossRegions(t *testing.T) {
	// Fragments of the same visual row may live in different regions.
	rec := calibrated(50, 1.5)
	regions := []youdao.Region{
		{Dir: youdao.DirHorizontal, Lines: []youdao.Line{hLine("左", 0, 0, 100, 50)}},
		{Dir: youdao.DirHorizontal, Lines: []youdao.Line{hLine("右", 200, 0, 100, 50)}},
	}

	lines := rec.TextLines(regions)
	if len(lines) != 1 {
		t.Fatalf("expected 1 merged line, got %d: %q", len(lines), lines)
	}
	if lines[0] != "左    右" {
		t.Errorf("expected intra-row spacing, got %q", lines[0])
	}
}

func TestTextLines_EmptyRowsSkipped(t *testing.T) {
	rec := calibrated(50, 1.5)
	regions := []youdao.Region{{
		Dir: youdao.DirHorizontal,
		Lines: []youdao.Line{
			hLine("实字", 0, 0, 100, 20),
			hLine("   ", 0, 100, 100, 20),
		},
	}}

	lines := rec.TextLines(regions)
	if len(lines) != 1 {
		t.Fatalf("expected whitespace-only row to be dropped, got %q", lines)
	}
}

func TestTextLines_VerticalAppendedAfterHorizontal(t *testing.T) {
	rec := calibrated(50, 1.5)
	regions := []youdao.Region{
		{
			Dir:         youdao.DirVertical,
			BoundingBox: youdao.BoundingBox{X: 500},
			Lines:       []youdao.Line{hLine("竖排乙", 520, 0, 30, 200)},
		},
		{Dir: youdao.DirHorizontal, Lines: []youdao.Line{hLine("横排", 0, 0, 100, 20)}},
		{
			Dir:         youdao.DirVertical,
			BoundingBox: youdao.BoundingBox{X: 100},
			Lines: []youdao.Line{
				hLine("竖排甲二", 160, 0, 30, 200),
				hLine("竖排甲一", 110, 0, 30, 200),
			},
		},
	}

	lines := rec.TextLines(regions)
	want := []string{"横排", "竖排甲一", "竖排甲二", "竖排乙"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestConvertJSON_EndToEnd(t *testing.T) {
	rec := calibrated(50, 1.5)
	data := []byte(`{
		"Result": {
			"regions": [{
				"lang": "zh-CHS", "dir": "h", "boundingBox": "0,0,400,120",
				"lines": [
					{"text": "甲", "boundingBox": "0,0,200,20", "words": []},
					{"text": "乙", "boundingBox": "0,100,200,20", "words": []}
				]
			}]
		}
	}`)

	got := rec.ConvertJSON(data)
	want := "甲\n\n乙"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestConvertJSON_MissingResultDiagnostic(t *testing.T) {
	rec := calibrated(50, 1.5)
	got := rec.ConvertJSON([]byte(`{"errorCode":"0"}`))

	if !strings.HasPrefix(got, "conversion failed: ") {
		t.Errorf("expected diagnostic text, got %q", got)
	}
}

func TestConvertJSON_MalformedJSONDiagnostic(t *testing.T) {
	rec := calibrated(50, 1.5)
	got := rec.ConvertJSON([]byte(`{"Result": [`))

	if !strings.HasPrefix(got, "conversion failed: ") {
		t.Errorf("expected diagnostic text, got %q", got)
	}
}

func TestTextLines_EmptyDocument(t *testing.T) {
	rec := calibrated(50, 1.5)
	if lines := rec.TextLines(nil); len(lines) != 0 {
		t.Errorf("expected no lines for empty document, got %q", lines)
	}
}

func TestCollectFragments(t *testing.T) {
	regions := []youdao.Region{
		{
			Dir:         youdao.DirHorizontal,
			BoundingBox: youdao.BoundingBox{X: 5, Y: 5, Width: 300, Height: 40},
			Lines: []youdao.Line{
				hLine("  trimmed  ", 10, 10, 100, 20),
				hLine("", 10, 40, 100, 20),
				{Text: "inherits"}, // zero box falls back to the region box
			},
		},
		{Dir: youdao.DirVertical, Lines: []youdao.Line{hLine("skip", 0, 0, 10, 10)}},
	}

	fragments := CollectFragments(regions)
	if len(fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(fragments))
	}
	if fragments[0].Text != "trimmed" {
		t.Errorf("expected stripped text, got %q", fragments[0].Text)
	}
	if fragments[1].X != 5 || fragments[1].Height != 40 {
		t.Errorf("expected region box fallback, got %+v", fragments[1])
	}
}

func TestFragmentAccessors(t *testing.T) {
	f := frag("a", 10, 20, 100, 30)
	if f.YMid() != 35 {
		t.Errorf("expected y-mid 35, got %g", f.YMid())
	}
	if f.Right() != 110 {
		t.Errorf("expected right edge 110, got %d", f.Right())
	}
	if f.Bottom() != 50 {
		t.Errorf("expected bottom edge 50, got %d", f.Bottom())
	}
}
