// Package youdao implements the data model for Youdao Cloud OCR responses
// and a client for the recognition API.
//
// The package provides:
//
// - Structured types for the region/line/word hierarchy returned by the API
// - Tolerant bounding box parsing for both rectangle and four-point formats
// - An HTTP client implementing the service's v3 request signing
//
// Recognition results keep their pixel geometry intact so that downstream
// layout reconstruction can recover indentation, spacing, and blank lines
// from the page image.
package youdao
