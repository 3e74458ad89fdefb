package layout

import (
	"math"
	"sort"
	"time"
	"unicode"

	"github.com/Fusyong/youdaoocr/pkg/youdao"
)

// Calibration defaults and bounds.
const (
	// DefaultCharHeight is the body character height assumed when neither
	// the current document nor the history yields a usable estimate.
	DefaultCharHeight = 32.0

	// DefaultLineHeightMultiplier is the fallback line-height multiplier.
	DefaultLineHeightMultiplier = 1.5

	// MinLineHeightMultiplier and MaxLineHeightMultiplier bound the final
	// multiplier regardless of what the samples suggest.
	MinLineHeightMultiplier = 1.2
	MaxLineHeightMultiplier = 2.0

	// minCharSamples and minLineSamples are the sparsity thresholds below
	// which a dimension's current-document estimate is discarded.
	minCharSamples = 5
	minLineSamples = 3

	// maxSampleCount caps the persisted sample counts so old history can
	// still be displaced by new documents.
	maxSampleCount = 1000

	// maxBlendWeight caps how much a single document can pull the blended
	// estimate away from the history.
	maxBlendWeight = 0.7
)

// cjkIdeographs covers the CJK Unified Ideographs block and its
// extensions. Word boxes are only trusted as character-height samples when
// the word contains at least one of these codepoints, since ideographs are
// rendered at the body text height.
var cjkIdeographs = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x3400, Hi: 0x4DBF, Stride: 1}, // Extension A
		{Lo: 0x4E00, Hi: 0x9FFF, Stride: 1}, // CJK Unified Ideographs
	},
	R32: []unicode.Range32{
		{Lo: 0x20000, Hi: 0x2A6DF, Stride: 1}, // Extension B
		{Lo: 0x2A700, Hi: 0x2B73F, Stride: 1}, // Extension C
		{Lo: 0x2B740, Hi: 0x2B81F, Stride: 1}, // Extension D
		{Lo: 0x2B820, Hi: 0x2CEAF, Stride: 1}, // Extension E
	},
}

// ContainsCJK reports whether s contains at least one CJK ideograph.
func ContainsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(cjkIdeographs, r) {
			return true
		}
	}
	return false
}

// robustMedian returns the median of values, which resists the stray
// large/small outliers that mis-segmented fragments produce. An empty
// input yields 0.
func robustMedian(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Estimate derives the calibration constants best describing the given
// regions, blended with the store's history, and writes the updated record
// back. The returned counts are this document's raw sample counts, for
// diagnostics.
//
// Persistence failures are swallowed: the estimate is still returned, only
// the cross-run memory is lost.
func (r *Reconstructor) Estimate(regions []youdao.Region) (Constants, SampleCounts) {
	var charHeights, lineHeights []float64

	for _, region := range regions {
		for _, line := range region.Lines {
			// Line-height samples prefer the line box, then the hint.
			if line.BoundingBox.Height > 0 {
				lineHeights = append(lineHeights, float64(line.BoundingBox.Height))
			} else if line.TextHeight > 0 {
				lineHeights = append(lineHeights, float64(line.TextHeight))
			}
			for _, word := range line.Words {
				if word.Text == "" {
					continue
				}
				if ContainsCJK(word.Text) && word.BoundingBox.Height > 0 {
					charHeights = append(charHeights, float64(word.BoundingBox.Height))
				}
			}
		}
	}

	counts := SampleCounts{Char: len(charHeights), Line: len(lineHeights)}
	sparseChar := counts.Char < minCharSamples
	sparseLine := counts.Line < minLineSamples

	var currentChar, currentLine float64
	if !sparseChar {
		currentChar = robustMedian(charHeights)
	}
	if !sparseLine {
		currentLine = robustMedian(lineHeights)
	}

	// The multiplier is the median of per-sample ratios, not the ratio of
	// the two medians, which would be sensitive to mismatched pairing.
	var currentMultiplier float64
	if currentChar > 0 && currentLine > 0 {
		ratios := make([]float64, 0, len(lineHeights))
		for _, lh := range lineHeights {
			if lh > 0 {
				ratios = append(ratios, lh/currentChar)
			}
		}
		currentMultiplier = robustMedian(ratios)
	}

	prev, hasHistory := r.Store.Load()
	if !hasHistory {
		prev = Constants{}
	}

	finalChar := currentChar
	finalMultiplier := currentMultiplier

	if prev.CharHeight > 0 {
		if sparseChar || currentChar <= 0 {
			finalChar = prev.CharHeight
		} else {
			w := blendWeight(counts.Char, prev.SampleCounts.Char)
			finalChar = w*currentChar + (1-w)*prev.CharHeight
		}
	}
	if prev.LineHeightMultiplier > 0 {
		if sparseLine || currentMultiplier <= 0 {
			finalMultiplier = prev.LineHeightMultiplier
		} else {
			w := blendWeight(counts.Line, prev.SampleCounts.Line)
			finalMultiplier = w*currentMultiplier + (1-w)*prev.LineHeightMultiplier
		}
	}

	if finalChar <= 0 {
		finalChar = DefaultCharHeight
		if counts.Char > 0 {
			r.warnf("sparse char-height samples (%d), using default %.1fpx", counts.Char, DefaultCharHeight)
		}
	}
	if finalMultiplier <= 0 {
		finalMultiplier = DefaultLineHeightMultiplier
	}

	// Bound pathological inputs, like a single huge outlier sample.
	finalMultiplier = math.Min(MaxLineHeightMultiplier, math.Max(MinLineHeightMultiplier, finalMultiplier))

	updated := Constants{
		CharHeight:           roundTo(finalChar, 2),
		LineHeightMultiplier: roundTo(finalMultiplier, 3),
		SampleCounts: SampleCounts{
			Char: min(maxSampleCount, prev.SampleCounts.Char+counts.Char),
			Line: min(maxSampleCount, prev.SampleCounts.Line+counts.Line),
		},
		UpdatedAt: time.Now().Unix(),
	}
	if err := r.Store.Save(updated); err != nil {
		r.warnf("failed to persist layout constants: %v", err)
	}

	return Constants{
		CharHeight:           finalChar,
		LineHeightMultiplier: finalMultiplier,
		SampleCounts:         updated.SampleCounts,
		UpdatedAt:            updated.UpdatedAt,
	}, counts
}

// blendWeight is the sample-weighted blending factor, capped so a single
// document can never fully override long-run history.
func blendWeight(current, historical int) float64 {
	return math.Min(maxBlendWeight, float64(current)/float64(current+historical))
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.Round(v*scale) / scale
}
