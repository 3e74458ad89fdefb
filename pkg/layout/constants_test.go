package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/Fusyong/youdaoocr/pkg/youdao"
)

// makeLine builds a test line with the given box height and CJK words of
// the given word height.
func makeLine(lineHeight int, wordHeights ...int) youdao.Line {
	line := youdao.Line{
		Text:        "文",
		BoundingBox: youdao.BoundingBox{X: 0, Y: 0, Width: 100, Height: lineHeight},
	}
	for _, h := range wordHeights {
		line.Words = append(line.Words, youdao.Word{
			Text:        "字",
			BoundingBox: youdao.BoundingBox{Width: h, Height: h},
		})
	}
	return line
}

func makeRegion(lines ...youdao.Line) youdao.Region {
	return youdao.Region{Dir: youdao.DirHorizontal, Lines: lines}
}

func newTestReconstructor() (*Reconstructor, *MemoryStore) {
	store := NewMemoryStore()
	rec := NewReconstructor(store)
	return rec, store
}

func TestEstimate_ColdStartDefaults(t *testing.T) {
	rec, _ := newTestReconstructor()

	// Fewer than 5 char samples and fewer than 3 line samples, no history.
	regions := []youdao.Region{makeRegion(makeLine(40, 30), makeLine(40, 30))}
	constants, counts := rec.Estimate(regions)

	if constants.CharHeight != DefaultCharHeight {
		t.Errorf("expected default char height %.1f, got %g", DefaultCharHeight, constants.CharHeight)
	}
	if constants.LineHeightMultiplier != DefaultLineHeightMultiplier {
		t.Errorf("expected default multiplier %.1f, got %g", DefaultLineHeightMultiplier, constants.LineHeightMultiplier)
	}
	if counts.Char != 2 || counts.Line != 2 {
		t.Errorf("expected raw counts char=2 line=2, got %+v", counts)
	}
}

func TestEstimate_CurrentDocumentMedians(t *testing.T) {
	rec, _ := newTestReconstructor()

	// 5 CJK word samples of height 30 and 5 line samples of height 45.
	var lines []youdao.Line
	for i := 0; i < 5; i++ {
		lines = append(lines, makeLine(45, 30))
	}
	constants, counts := rec.Estimate([]youdao.Region{makeRegion(lines...)})

	if constants.CharHeight != 30 {
		t.Errorf("expected char height 30, got %g", constants.CharHeight)
	}
	if constants.LineHeightMultiplier != 1.5 {
		t.Errorf("expected multiplier 1.5, got %g", constants.LineHeightMultiplier)
	}
	if counts.Char != 5 || counts.Line != 5 {
		t.Errorf("expected counts char=5 line=5, got %+v", counts)
	}
}

func TestEstimate_MedianResistsOutliers(t *testing.T) {
	rec, _ := newTestReconstructor()

	// One mis-segmented giant word must not move the estimate.
	lines := []youdao.Line{
		makeLine(45, 30), makeLine(45, 30), makeLine(45, 30),
		makeLine(45, 30), makeLine(45, 400),
	}
	constants, _ := rec.Estimate([]youdao.Region{makeRegion(lines...)})

	if constants.CharHeight != 30 {
		t.Errorf("expected median char height 30, got %g", constants.CharHeight)
	}
}

func TestEstimate_NonCJKWordsIgnored(t *testing.T) {
	rec, _ := newTestReconstructor()

	var lines []youdao.Line
	for i := 0; i < 5; i++ {
		line := makeLine(45)
		line.Words = append(line.Words, youdao.Word{
			Text:        "latin",
			BoundingBox: youdao.BoundingBox{Height: 30},
		})
		lines = append(lines, line)
	}
	_, counts := rec.Estimate([]youdao.Region{makeRegion(lines...)})

	if counts.Char != 0 {
		t.Errorf("expected 0 char samples from non-CJK words, got %d", counts.Char)
	}
}

func TestEstimate_TextHeightHintFallback(t *testing.T) {
	rec, _ := newTestReconstructor()

	var lines []youdao.Line
	for i := 0; i < 3; i++ {
		line := youdao.Line{Text: "文", TextHeight: 40}
		lines = append(lines, line)
	}
	_, counts := rec.Estimate([]youdao.Region{makeRegion(lines...)})

	if counts.Line != 3 {
		t.Errorf("expected 3 line samples from text height hints, got %d", counts.Line)
	}
}

func TestEstimate_MultiplierAlwaysClamped(t *testing.T) {
	rec, _ := newTestReconstructor()

	// Ratio 100/10 = 10 clamps to the upper bound.
	var lines []youdao.Line
	for i := 0; i < 5; i++ {
		lines = append(lines, makeLine(100, 10))
	}
	constants, _ := rec.Estimate([]youdao.Region{makeRegion(lines...)})
	if constants.LineHeightMultiplier != MaxLineHeightMultiplier {
		t.Errorf("expected clamp to %.1f, got %g", MaxLineHeightMultiplier, constants.LineHeightMultiplier)
	}

	// Ratio 10/10 = 1.0 clamps to the lower bound.
	rec2, _ := newTestReconstructor()
	lines = nil
	for i := 0; i < 5; i++ {
		lines = append(lines, makeLine(10, 10))
	}
	constants, _ = rec2.Estimate([]youdao.Region{makeRegion(lines...)})
	if constants.LineHeightMultiplier != MinLineHeightMultiplier {
		t.Errorf("expected clamp to %.1f, got %g", MinLineHeightMultiplier, constants.LineHeightMultiplier)
	}
}

func TestEstimate_SparseFallsBackToHistory(t *testing.T) {
	rec, store := newTestReconstructor()
	store.Seed(Constants{
		CharHeight:           50,
		LineHeightMultiplier: 1.5,
		SampleCounts:         SampleCounts{Char: 100, Line: 100},
	})

	constants, _ := rec.Estimate([]youdao.Region{makeRegion(makeLine(40, 30))})

	if constants.CharHeight != 50 {
		t.Errorf("expected historical char height 50, got %g", constants.CharHeight)
	}
	if constants.LineHeightMultiplier != 1.5 {
		t.Errorf("expected historical multiplier 1.5, got %g", constants.LineHeightMultiplier)
	}
}

func TestEstimate_BlendWeightCapped(t *testing.T) {
	rec, store := newTestReconstructor()
	// Zero historical samples would give the current document full weight;
	// the cap keeps 30% history.
	store.Seed(Constants{
		CharHeight:           100,
		LineHeightMultiplier: 1.5,
		SampleCounts:         SampleCounts{},
	})

	var lines []youdao.Line
	for i := 0; i < 5; i++ {
		lines = append(lines, makeLine(0, 10))
	}
	constants, _ := rec.Estimate([]youdao.Region{makeRegion(lines...)})

	want := 0.7*10 + 0.3*100
	if math.Abs(constants.CharHeight-want) > 1e-9 {
		t.Errorf("expected capped blend %.1f, got %g", want, constants.CharHeight)
	}
}

func TestEstimate_SampleCountsSaturate(t *testing.T) {
	rec, store := newTestReconstructor()
	store.Seed(Constants{
		CharHeight:           30,
		LineHeightMultiplier: 1.5,
		SampleCounts:         SampleCounts{Char: 998, Line: 999},
	})

	var lines []youdao.Line
	for i := 0; i < 5; i++ {
		lines = append(lines, makeLine(45, 30))
	}
	rec.Estimate([]youdao.Region{makeRegion(lines...)})

	saved, ok := store.Load()
	if !ok {
		t.Fatal("expected constants to be persisted")
	}
	if saved.SampleCounts.Char != maxSampleCount {
		t.Errorf("expected char count saturated at %d, got %d", maxSampleCount, saved.SampleCounts.Char)
	}
	if saved.SampleCounts.Line != maxSampleCount {
		t.Errorf("expected line count saturated at %d, got %d", maxSampleCount, saved.SampleCounts.Line)
	}
	if saved.UpdatedAt == 0 {
		t.Error("expected a fresh timestamp")
	}
}

type failingStore struct{}

func (failingStore) Load() (Constants, bool) { return Constants{}, false }
func (failingStore) Save(Constants) error    { return errors.New("disk full") }

func TestEstimate_SaveFailureSwallowed(t *testing.T) {
	rec := NewReconstructor(failingStore{})

	var lines []youdao.Line
	for i := 0; i < 5; i++ {
		lines = append(lines, makeLine(45, 30))
	}
	constants, _ := rec.Estimate([]youdao.Region{makeRegion(lines...)})

	// The estimate survives; only cross-run memory is lost.
	if constants.CharHeight != 30 {
		t.Errorf("expected char height 30 despite save failure, got %g", constants.CharHeight)
	}
}

func TestContainsCJK(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"汉字", true},
		{"mixed 字 text", true},
		{"latin only", false},
		{"", false},
		{"123!?", false},
		{"ひらがな", false}, // kana are not unified ideographs
		{"\U00020000", true},
	}
	for _, c := range cases {
		if got := ContainsCJK(c.in); got != c.want {
			t.Errorf("ContainsCJK(%q): expected %v, got %v", c.in, c.want, got)
		}
	}
}

func TestRobustMedian(t *testing.T) {
	cases := []struct {
		in   []float64
		want float64
	}{
		{nil, 0},
		{[]float64{5}, 5},
		{[]float64{1, 3}, 2},
		{[]float64{3, 1, 2}, 2},
		{[]float64{1, 2, 3, 100}, 2.5},
	}
	for _, c := range cases {
		if got := robustMedian(c.in); got != c.want {
			t.Errorf("robustMedian(%v): expected %g, got %g", c.in, c.want, got)
		}
	}
}
