// Package cmd implements the CLI commands for youdaoocr using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "youdaoocr",
	Short: "Reconstruct page layout from geometric OCR output",
	Long: `youdaoocr recognizes document images with the Youdao OCR service and
reconstructs plain text that preserves the visual layout of the page:
indentation, inter-word spacing, and blank lines between paragraphs.

Usage:
  youdaoocr ocr <image> [flags]
  youdaoocr convert <result.json|page.hocr> [flags]`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
