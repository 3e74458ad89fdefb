package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Fusyong/youdaoocr/pkg/layout"
	"github.com/Fusyong/youdaoocr/pkg/youdao"
)

var (
	flagOCRConfig    string
	flagOCREnv       string
	flagOCRText      string
	flagOCRJSON      string
	flagOCRConstants string
)

var ocrCmd = &cobra.Command{
	Use:   "ocr <image>",
	Short: "Recognize an image and save the raw JSON plus reconstructed text",
	Long: `Ocr sends an image to the Youdao OCR service, archives the raw JSON
response next to the image, and writes the layout-preserving text
reconstruction.

Credentials are read from the YOUDAO_APP_KEY and YOUDAO_APP_SECRET
environment variables; a .env file in the working directory is loaded
automatically.

Examples:
  youdaoocr ocr page.jpg
  youdaoocr ocr page.jpg --config ocr.yml --text page.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

func init() {
	rootCmd.AddCommand(ocrCmd)

	ocrCmd.Flags().StringVar(&flagOCRConfig, "config", "", "YAML file with recognition request options")
	ocrCmd.Flags().StringVar(&flagOCREnv, "env", "", "Path to a .env file with credentials (default: ./.env)")
	ocrCmd.Flags().StringVar(&flagOCRText, "text", "", "Path for the reconstructed text (default: image path with .txt)")
	ocrCmd.Flags().StringVar(&flagOCRJSON, "json", "", "Path for the raw OCR JSON (default: image path with _ocr.json)")
	ocrCmd.Flags().StringVar(&flagOCRConstants, "constants", "", "Path of the layout constants file (default: ./"+layout.DefaultStorePath+")")
}

func runOCR(cmd *cobra.Command, args []string) error {
	imagePath := args[0]

	// Credentials come from the environment, optionally seeded by a .env
	// file. A missing file is fine; missing variables are not.
	if flagOCREnv != "" {
		if err := godotenv.Load(flagOCREnv); err != nil {
			return fmt.Errorf("loading env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}
	appKey := os.Getenv("YOUDAO_APP_KEY")
	appSecret := os.Getenv("YOUDAO_APP_SECRET")
	if appKey == "" || appSecret == "" {
		return fmt.Errorf("YOUDAO_APP_KEY and YOUDAO_APP_SECRET must be set")
	}

	client := youdao.NewClient(appKey, appSecret)
	if flagOCRConfig != "" {
		opts, err := loadRequestOptions(flagOCRConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		client.Options = opts
	}

	image, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	doc, raw, err := client.Recognize(context.Background(), image)
	if err != nil {
		return fmt.Errorf("recognizing %s: %w", imagePath, err)
	}

	jsonPath := flagOCRJSON
	if jsonPath == "" {
		jsonPath = replaceExt(imagePath, "_ocr.json")
	}
	if err := os.WriteFile(jsonPath, raw, 0644); err != nil {
		return fmt.Errorf("writing raw JSON: %w", err)
	}
	fmt.Fprintln(os.Stdout, "Raw OCR JSON saved to:", jsonPath)

	rec := layout.NewReconstructor(layout.NewFileStore(flagOCRConstants))
	rec.Warn = os.Stderr
	text := rec.Text(doc.Result.Regions)

	textPath := flagOCRText
	if textPath == "" {
		textPath = replaceExt(imagePath, ".txt")
	}
	if err := os.WriteFile(textPath, []byte(text), 0644); err != nil {
		return fmt.Errorf("writing text: %w", err)
	}
	fmt.Fprintln(os.Stdout, "Reconstructed text saved to:", textPath)

	return nil
}

// loadRequestOptions reads a YAML file of recognition options, starting
// from the defaults so a sparse file is enough.
func loadRequestOptions(path string) (youdao.RequestOptions, error) {
	opts := youdao.DefaultRequestOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, err
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// replaceExt swaps a path's extension for the given suffix.
func replaceExt(path, suffix string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}
