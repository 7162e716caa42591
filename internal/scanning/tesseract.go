package scanning

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultVendors is the closed set of retailers the OCR fallback can
// recognize. Matching against a fixed vocabulary is a known precision gap:
// unlisted merchants come back as "Unknown". Extend the set through the
// --vendors flag rather than editing this list.
var DefaultVendors = []string{
	"Walgreens", "CVS", "Costco", "Walmart", "Target", "Kroger", "Safeway", "Rite Aid",
}

var (
	amountRe  = regexp.MustCompile(`\$?\s*([0-9]+[,.]?[0-9]*\.[0-9]{2})`)
	dateRe    = regexp.MustCompile(`(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`)
	dateSepRe = regexp.MustCompile(`[-/]`)
)

const tesseractTimeout = 30 * time.Second

// Runner executes an external command and returns its stdout
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Tesseract implements the Scanner interface using a local tesseract binary
// plus regex heuristics over the transcription. No network dependency.
type Tesseract struct {
	binary   string
	language string
	vendorRe *regexp.Regexp
	runner   Runner
}

// NewTesseract creates a new Tesseract Scanner instance
func NewTesseract(binary, language string, vendors []string) *Tesseract {
	return NewTesseractWithRunner(binary, language, vendors, execRunner{})
}

// NewTesseractWithRunner creates a Tesseract Scanner with a custom command
// runner for testing
func NewTesseractWithRunner(binary, language string, vendors []string, runner Runner) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	if len(vendors) == 0 {
		vendors = DefaultVendors
	}

	quoted := make([]string, len(vendors))
	for i, v := range vendors {
		quoted[i] = regexp.QuoteMeta(v)
	}

	return &Tesseract{
		binary:   binary,
		language: language,
		vendorRe: regexp.MustCompile(`(?i)(` + strings.Join(quoted, "|") + `)`),
		runner:   runner,
	}
}

// ScanReceipt runs OCR over the image and extracts fields with regex
// heuristics. Line items are never populated on this path.
func (t *Tesseract) ScanReceipt(imageData []byte, mimeType string) (*ReceiptRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), tesseractTimeout)
	defer cancel()

	tmp, err := os.CreateTemp("", "receipt-ocr-*"+extForMIME(mimeType))
	if err != nil {
		return nil, fmt.Errorf("staging image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(imageData); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("staging image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("staging image: %w", err)
	}

	// tesseract <file> stdout -l <lang>
	out, err := t.runner.Run(ctx, t.binary, tmp.Name(), "stdout", "-l", t.language)
	if err != nil {
		return nil, fmt.Errorf("running tesseract: %w", err)
	}
	text := string(out)

	return &ReceiptRecord{
		Vendor:  t.matchVendor(text),
		Amount:  matchAmount(text),
		Date:    matchDate(text),
		RawText: text, // uncorrected transcription, verbatim
	}, nil
}

// Method identifies the extraction backend
func (t *Tesseract) Method() string { return "tesseract" }

// Model returns the model identifier for the health endpoint
func (t *Tesseract) Model() string { return "tesseract" }

// Close closes the Tesseract scanner (no-op)
func (t *Tesseract) Close() error { return nil }

// matchVendor returns the first vocabulary match as it appears in the
// transcription, or "Unknown"
func (t *Tesseract) matchVendor(text string) string {
	if m := t.vendorRe.FindString(text); m != "" {
		return m
	}
	return "Unknown"
}

// matchAmount finds the first currency-like value with exactly two cents
// digits, stripping thousands separators
func matchAmount(text string) float64 {
	m := amountRe.FindStringSubmatch(text)
	if m == nil {
		return 0.0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0.0
	}
	return v
}

// matchDate finds the first slash- or dash-separated date and re-renders it
// as MM/DD/YYYY in the component order found. Two-digit years are assumed to
// be 20xx. There is no month/day validity checking.
func matchDate(text string) string {
	m := dateRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	parts := dateSepRe.Split(m[1], -1)
	if len(parts) != 3 {
		return ""
	}
	month, day, year := parts[0], parts[1], parts[2]
	if len(year) == 2 {
		year = "20" + year
	}
	return fmt.Sprintf("%s/%s/%s", pad2(month), pad2(day), year)
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func extForMIME(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
