package youdao

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultEndpoint is the general text recognition API endpoint.
const DefaultEndpoint = "https://openapi.youdao.com/ocrapi"

// RequestOptions holds the recognition parameters sent with every request.
// The zero value is not useful; start from DefaultRequestOptions.
type RequestOptions struct {
	LangType   string `yaml:"lang_type"`   // Recognition language, e.g. "zh-CHS"
	DetectType string `yaml:"detect_type"` // "10012" recognizes line by line
	Angle      string `yaml:"angle"`       // "1" enables 360 degree detection
	Column     string `yaml:"column"`      // "onecolumn" or "columns"
	Rotate     string `yaml:"rotate"`      // "rotate" or "donot_rotate"
	DocType    string `yaml:"doc_type"`    // Response format, only "json"
	ImageType  string `yaml:"image_type"`  // Only "1" (base64) is supported
}

// DefaultRequestOptions returns the parameters used for line-based
// recognition of single-column Chinese text.
func DefaultRequestOptions() RequestOptions {
	return RequestOptions{
		LangType:   "zh-CHS",
		DetectType: "10012",
		Angle:      "0",
		Column:     "onecolumn",
		Rotate:     "donot_rotate",
		DocType:    "json",
		ImageType:  "1",
	}
}

// Client calls the Youdao OCR API with signed form requests.
type Client struct {
	AppKey     string
	AppSecret  string
	Endpoint   string
	Options    RequestOptions
	HTTPClient *http.Client
}

// NewClient creates a client with default endpoint, options, and HTTP
// transport. Credentials come from the application console.
func NewClient(appKey, appSecret string) *Client {
	return &Client{
		AppKey:     appKey,
		AppSecret:  appSecret,
		Endpoint:   DefaultEndpoint,
		Options:    DefaultRequestOptions(),
		HTTPClient: http.DefaultClient,
	}
}

// Recognize sends image bytes for recognition and returns the parsed
// document along with the raw response body so callers can archive the
// original JSON.
func (c *Client) Recognize(ctx context.Context, image []byte) (*Document, []byte, error) {
	if c.AppKey == "" || c.AppSecret == "" {
		return nil, nil, fmt.Errorf("missing app key or secret")
	}

	form := url.Values{}
	form.Set("img", base64.StdEncoding.EncodeToString(image))
	form.Set("langType", c.Options.LangType)
	form.Set("detectType", c.Options.DetectType)
	form.Set("angle", c.Options.Angle)
	form.Set("column", c.Options.Column)
	form.Set("rotate", c.Options.Rotate)
	form.Set("docType", c.Options.DocType)
	form.Set("imageType", c.Options.ImageType)
	AddAuthParams(c.AppKey, c.AppSecret, form)

	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build OCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("OCR request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read OCR response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, body, fmt.Errorf("OCR request returned status %d", resp.StatusCode)
	}

	// Check the service error code before insisting on a Result payload,
	// since failed recognitions come back without one.
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, body, fmt.Errorf("malformed OCR JSON: %w", err)
	}
	if doc.ErrorCode != "" && doc.ErrorCode != "0" {
		return &doc, body, fmt.Errorf("OCR service returned error code %s", doc.ErrorCode)
	}
	if doc.Result == nil {
		return &doc, body, fmt.Errorf("missing 'Result' field in OCR JSON")
	}
	return &doc, body, nil
}
