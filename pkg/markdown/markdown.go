// Package markdown classifies reconstructed text lines and OCR regions
// into Markdown structure using regex heuristics.
//
// The classifiers are independent of the layout engine: they consume
// either its layout-preserving text lines or the raw region list, and
// decide headings, lists, emphasis, and quotes from text shape alone.
package markdown

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Fusyong/youdaoocr/pkg/youdao"
)

var (
	titlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^第[一二三四五六七八九十\d]+[章节篇]`),
		regexp.MustCompile(`^[一二三四五六七八九十\d]+[、.]`),
		regexp.MustCompile(`^[A-Z][A-Z\s]*$`),
		regexp.MustCompile(`^[A-Z][a-z\s]+$`),
	}
	subtitlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^[一二三四五六七八九十\d]+[、.]`),
		regexp.MustCompile(`^[A-Z][a-z\s]+$`),
	}
	listPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^[•·▪▫◦‣⁃]\s*`),
		regexp.MustCompile(`^\d+[.)]\s*`),
		regexp.MustCompile(`^[①②③④⑤⑥⑦⑧⑨⑩]\s*`),
		regexp.MustCompile(`^[a-zA-Z][.)]\s*`),
	}
	emphasisMarks = regexp.MustCompile(`[《》“”‘’【】]`)
)

// IsTitle reports whether a line looks like a chapter or section title.
func IsTitle(text string) bool {
	text = strings.TrimSpace(text)
	n := len([]rune(text))
	if n < 2 || n > 50 {
		return false
	}
	return matchAny(titlePatterns, text)
}

// IsSubtitle reports whether a line looks like a numbered subtitle.
func IsSubtitle(text string) bool {
	text = strings.TrimSpace(text)
	n := len([]rune(text))
	if n < 2 || n > 30 {
		return false
	}
	return matchAny(subtitlePatterns, text)
}

// IsListItem reports whether a line starts with a bullet or enumeration
// marker.
func IsListItem(text string) bool {
	return matchAny(listPatterns, strings.TrimSpace(text))
}

// IsEmphasis reports whether a line should render bold: all-caps text or
// text carrying CJK book-title/quote marks.
func IsEmphasis(text string) bool {
	if isUpper(text) && len([]rune(text)) > 1 {
		return true
	}
	return emphasisMarks.MatchString(text)
}

// FormatText strips a line and wraps emphasized text in bold markers.
func FormatText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if IsEmphasis(text) {
		return "**" + text + "**"
	}
	return text
}

// ConvertRegions renders recognized regions as Markdown, classifying each
// horizontal line as title, subtitle, list item, or paragraph. Vertical
// regions render as blockquotes, ordered by horizontal position.
func ConvertRegions(regions []youdao.Region) string {
	sorted := make([]youdao.Region, len(regions))
	copy(sorted, regions)
	sortStableBy(sorted, func(a, b youdao.Region) bool {
		return a.BoundingBox.Y < b.BoundingBox.Y
	})

	var lines []string
	for _, region := range sorted {
		if region.Dir == youdao.DirVertical {
			lines = append(lines, verticalMarkdown(region)...)
		} else {
			lines = append(lines, horizontalMarkdown(region)...)
		}
	}

	return strings.Join(mergeListItems(lines), "\n")
}

func horizontalMarkdown(region youdao.Region) []string {
	sorted := make([]youdao.Line, len(region.Lines))
	copy(sorted, region.Lines)
	sortStableBy(sorted, func(a, b youdao.Line) bool {
		return a.BoundingBox.Y < b.BoundingBox.Y
	})

	var out []string
	for _, line := range sorted {
		text := strings.TrimSpace(line.Text)
		if text == "" {
			continue
		}
		switch {
		case IsTitle(text):
			out = append(out, "# "+text)
		case IsSubtitle(text):
			out = append(out, "## "+text)
		case IsListItem(text):
			out = append(out, "- "+text)
		default:
			if formatted := FormatText(text); formatted != "" {
				out = append(out, formatted)
			}
		}
	}
	return out
}

func verticalMarkdown(region youdao.Region) []string {
	sorted := make([]youdao.Line, len(region.Lines))
	copy(sorted, region.Lines)
	sortStableBy(sorted, func(a, b youdao.Line) bool {
		return a.BoundingBox.X < b.BoundingBox.X
	})

	var out []string
	for _, line := range sorted {
		if formatted := FormatText(line.Text); formatted != "" {
			out = append(out, "> "+formatted)
		}
	}
	return out
}

// mergeListItems joins runs of consecutive list items into single blocks.
func mergeListItems(lines []string) []string {
	var merged []string
	for i := 0; i < len(lines); {
		if !strings.HasPrefix(lines[i], "- ") {
			merged = append(merged, lines[i])
			i++
			continue
		}
		var items []string
		for i < len(lines) && strings.HasPrefix(lines[i], "- ") {
			items = append(items, strings.TrimPrefix(lines[i], "- "))
			i++
		}
		merged = append(merged, "- "+strings.Join(items, "\n- "))
	}
	return merged
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// isUpper mirrors the "all cased characters are uppercase, and there is at
// least one" rule.
func isUpper(s string) bool {
	hasCased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasCased = true
		}
	}
	return hasCased
}
