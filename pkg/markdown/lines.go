package markdown

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/width"
)

var (
	questionPattern = regexp.MustCompile(`^[一二三四五六七八九十]+、`)
	tocFiller       = regexp.MustCompile(`…\s*\d*`)
)

// tocEntry is one table-of-contents line: its heading level and its
// space-insensitive lookup key.
type tocEntry struct {
	level int
	key   string
}

// LineConverter turns layout-preserving text lines into Markdown. An
// optional table of contents maps known entries to heading levels;
// exercise-style question lines become level-4 headings. Indentation and
// blank lines pass through untouched.
type LineConverter struct {
	contents []tocEntry
}

// NewLineConverter builds a converter from a table-of-contents string.
//
// The contents format is one entry per line; leading indentation encodes
// the level, and a trailing "…… 12" page filler is ignored:
//
//	第一单元 ……………………………………  1
//	    1 课文名称 ……………………………………  3
//
// Indentation depths are ranked and mapped to consecutive levels starting
// at startLevel. An empty contents string yields a converter that only
// applies the question-line heuristic.
func NewLineConverter(contents string, startLevel int) *LineConverter {
	if startLevel < 1 {
		startLevel = 1
	}

	type rawEntry struct {
		spaces int
		name   string
	}
	var raw []rawEntry
	depthSet := map[int]bool{}

	for _, line := range strings.Split(contents, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}
		spaces := len(line) - len(strings.TrimLeft(line, " "))
		name := strings.TrimSpace(tocFiller.ReplaceAllString(line, ""))
		if name == "" {
			continue
		}
		raw = append(raw, rawEntry{spaces: spaces, name: name})
		depthSet[spaces] = true
	}

	depths := make([]int, 0, len(depthSet))
	for d := range depthSet {
		depths = append(depths, d)
	}
	sort.Ints(depths)
	rank := make(map[int]int, len(depths))
	for i, d := range depths {
		rank[d] = i
	}

	conv := &LineConverter{}
	for _, entry := range raw {
		conv.contents = append(conv.contents, tocEntry{
			level: rank[entry.spaces] + startLevel,
			key:   tocKey(entry.name),
		})
	}
	return conv
}

// ConvertLines renders layout text lines as Markdown.
func (c *LineConverter) ConvertLines(lines []string) string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		content := strings.TrimLeft(line, " ")
		if content == "" {
			out = append(out, "")
			continue
		}
		if level := c.contentsLevel(content); level > 0 {
			out = append(out, strings.Repeat("#", level)+" "+strings.TrimSpace(line))
		} else if questionPattern.MatchString(content) {
			out = append(out, "#### "+strings.TrimSpace(content))
		} else {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// ConvertText is ConvertLines over a newline-joined document.
func (c *LineConverter) ConvertText(text string) string {
	return c.ConvertLines(strings.Split(text, "\n"))
}

// contentsLevel returns the heading level for a known contents entry, or 0.
func (c *LineConverter) contentsLevel(text string) int {
	key := tocKey(text)
	for _, entry := range c.contents {
		if entry.key == key {
			return entry.level
		}
	}
	return 0
}

// tocKey normalizes an entry for matching: spaces removed and fullwidth
// forms folded to their narrow equivalents, since OCR output mixes both.
func tocKey(s string) string {
	return strings.ReplaceAll(width.Narrow.String(s), " ", "")
}

func sortStableBy[T any](items []T, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])
	})
}
