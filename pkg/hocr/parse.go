package hocr

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
)

// Parse converts raw hOCR data into pages of lines and words.
func Parse(data []byte) ([]Page, error) {
	decoded, err := decodeCharset(data)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(strings.NewReader(string(decoded)))
	if err != nil {
		return nil, err
	}

	var pages []Page
	var findPages func(*html.Node)
	findPages = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "ocr_page") {
			pages = append(pages, parsePage(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findPages(c)
		}
	}
	findPages(doc)

	if len(pages) == 0 {
		return nil, fmt.Errorf("no ocr_page elements found in hOCR data")
	}
	return pages, nil
}

// decodeCharset sniffs the declared charset and converts Latin-1 input to
// UTF-8. Anything else passes through untouched.
func decodeCharset(data []byte) ([]byte, error) {
	content := string(data)
	idx := strings.Index(content, "charset=")
	if idx < 0 {
		return data, nil
	}
	rest := content[idx+len("charset="):]
	fields := strings.FieldsFunc(rest, func(r rune) bool {
		return r == '"' || r == '\'' || r == ';' || r == '>' || r == ' '
	})
	if len(fields) == 0 {
		return data, nil
	}
	enc := strings.ToLower(fields[0])
	if enc == "" || enc == "utf-8" {
		return data, nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", enc, err)
	}
	return decoded, nil
}

func parsePage(n *html.Node) Page {
	page := Page{
		Lang: attrVal(n, "lang"),
		BBox: bboxFromTitle(attrVal(n, "title")),
	}

	var findLines func(*html.Node)
	findLines = func(node *html.Node) {
		if node.Type == html.ElementNode && hasClass(node, "ocr_line") {
			page.Lines = append(page.Lines, parseLine(node))
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			findLines(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		findLines(c)
	}
	return page
}

func parseLine(n *html.Node) Line {
	line := Line{
		BBox: bboxFromTitle(attrVal(n, "title")),
	}

	var findWords func(*html.Node)
	findWords = func(node *html.Node) {
		if node.Type == html.ElementNode && hasClass(node, "ocrx_word") {
			line.Words = append(line.Words, Word{
				Text: textContent(node),
				BBox: bboxFromTitle(attrVal(node, "title")),
			})
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			findWords(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		findWords(c)
	}

	texts := make([]string, 0, len(line.Words))
	for _, w := range line.Words {
		if w.Text != "" {
			texts = append(texts, w.Text)
		}
	}
	line.Text = strings.Join(texts, " ")
	return line
}

// bboxFromTitle extracts the "bbox x1 y1 x2 y2" property from an hOCR
// title attribute. A missing or malformed property yields the zero box.
func bboxFromTitle(title string) BBox {
	for _, part := range strings.Split(title, ";") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) < 5 || fields[0] != "bbox" {
			continue
		}
		var coords [4]int
		ok := true
		for i := 0; i < 4; i++ {
			n, err := strconv.Atoi(fields[i+1])
			if err != nil {
				ok = false
				break
			}
			coords[i] = n
		}
		if ok {
			return BBox{X1: coords[0], Y1: coords[1], X2: coords[2], Y2: coords[3]}
		}
	}
	return BBox{}
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attrVal(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attrVal(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(textContent(c))
	}
	return strings.TrimSpace(text.String())
}
