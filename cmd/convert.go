package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Fusyong/youdaoocr/pkg/hocr"
	"github.com/Fusyong/youdaoocr/pkg/layout"
	"github.com/Fusyong/youdaoocr/pkg/markdown"
	"github.com/Fusyong/youdaoocr/pkg/youdao"
)

var (
	flagConvHOCR         bool
	flagConvText         string
	flagConvMarkdown     string
	flagConvContents     string
	flagConvHeadingLevel int
	flagConvRegions      bool
	flagConvConstants    string
)

var convertCmd = &cobra.Command{
	Use:   "convert <result.json|page.hocr>",
	Short: "Reconstruct layout text from a saved OCR result",
	Long: `Convert runs the layout reconstruction engine on a saved recognition
result — either a Youdao OCR JSON response or an hOCR document — and
optionally classifies the result into Markdown.

Examples:
  youdaoocr convert page_ocr.json
  youdaoocr convert page_ocr.json --text page.txt --markdown page.md
  youdaoocr convert page.hocr --hocr --text page.txt
  youdaoocr convert page_ocr.json --markdown page.md --contents toc.txt --heading-level 2`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().BoolVar(&flagConvHOCR, "hocr", false, "Treat the input as hOCR (default: by file extension)")
	convertCmd.Flags().StringVar(&flagConvText, "text", "", "Path for the reconstructed text (default: stdout)")
	convertCmd.Flags().StringVar(&flagConvMarkdown, "markdown", "", "Path for Markdown output")
	convertCmd.Flags().StringVar(&flagConvContents, "contents", "", "Table-of-contents file for heading mapping")
	convertCmd.Flags().IntVar(&flagConvHeadingLevel, "heading-level", 1, "Heading level of top contents entries")
	convertCmd.Flags().BoolVar(&flagConvRegions, "regions", false, "Classify regions directly, skipping layout reconstruction")
	convertCmd.Flags().StringVar(&flagConvConstants, "constants", "", "Path of the layout constants file (default: ./"+layout.DefaultStorePath+")")
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	regions, err := loadRegions(inputPath, data)
	if err != nil {
		return err
	}

	rec := layout.NewReconstructor(layout.NewFileStore(flagConvConstants))
	rec.Warn = os.Stderr
	lines := rec.TextLines(regions)
	text := strings.Join(lines, "\n")

	if flagConvText != "" {
		if err := os.WriteFile(flagConvText, []byte(text), 0644); err != nil {
			return fmt.Errorf("writing text: %w", err)
		}
		fmt.Fprintln(os.Stdout, "Reconstructed text saved to:", flagConvText)
	}

	if flagConvMarkdown != "" {
		md, err := renderMarkdown(regions, lines)
		if err != nil {
			return err
		}
		if err := os.WriteFile(flagConvMarkdown, []byte(md), 0644); err != nil {
			return fmt.Errorf("writing markdown: %w", err)
		}
		fmt.Fprintln(os.Stdout, "Markdown saved to:", flagConvMarkdown)
	}

	if flagConvText == "" && flagConvMarkdown == "" {
		fmt.Fprintln(os.Stdout, text)
	}

	return nil
}

// loadRegions parses the input as hOCR or Youdao JSON, selected by flag or
// file extension.
func loadRegions(path string, data []byte) ([]youdao.Region, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if flagConvHOCR || ext == ".hocr" || ext == ".html" || ext == ".htm" {
		pages, err := hocr.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing hOCR: %w", err)
		}
		return hocr.Regions(pages), nil
	}

	doc, err := youdao.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing OCR JSON: %w", err)
	}
	return doc.Result.Regions, nil
}

// renderMarkdown emits Markdown either from the layout text lines or, with
// --regions, from the raw regions via the position-based classifier.
func renderMarkdown(regions []youdao.Region, lines []string) (string, error) {
	if flagConvRegions {
		return markdown.ConvertRegions(regions), nil
	}

	contents := ""
	if flagConvContents != "" {
		data, err := os.ReadFile(flagConvContents)
		if err != nil {
			return "", fmt.Errorf("reading contents file: %w", err)
		}
		contents = string(data)
	}
	conv := markdown.NewLineConverter(contents, flagConvHeadingLevel)
	return conv.ConvertLines(lines), nil
}
