package scanning

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// extensionMIMETypes maps known upload extensions to MIME types. The
// extension wins over the declared Content-Type because phone uploads
// routinely declare application/octet-stream for anything unusual.
var extensionMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".pdf":  "application/pdf",
	".heic": "image/heic",
	".heif": "image/heic",
}

// resolveMIMEType determines the effective MIME type from the filename
// extension, falling back to the declared content type.
func resolveMIMEType(declared, filename string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		if mt, ok := extensionMIMETypes[ext]; ok {
			return mt
		}
	}
	mimeType := strings.ToLower(strings.TrimSpace(declared))
	if mimeType == "" {
		mimeType = "image/jpeg" // default
	}
	return mimeType
}

// PrepareImage normalizes an uploaded document to a single still image.
// HEIC/HEIF is re-encoded as baseline JPEG and PDFs are reduced to their
// first page. Any other type passes through untouched; whether the bytes
// actually decode as that type is the scanner's problem.
func PrepareImage(data []byte, declaredContentType, filename string) ([]byte, string, error) {
	mimeType := resolveMIMEType(declaredContentType, filename)

	switch mimeType {
	case "image/heic", "image/heif":
		jpegData, err := heicToJPEG(data)
		if err != nil {
			return nil, "", &ConversionError{Op: "converting HEIC image", Cause: err}
		}
		return jpegData, "image/jpeg", nil
	case "application/pdf":
		jpegData, err := pdfFirstPageJPEG(data)
		if err != nil {
			return nil, "", err
		}
		return jpegData, "image/jpeg", nil
	}

	return data, mimeType, nil
}

// heicToJPEG decodes a HEIC/HEIF container and re-encodes it as JPEG
func heicToJPEG(data []byte) ([]byte, error) {
	img, err := heic.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// pdfFirstPageJPEG renders the first page of a PDF to a JPEG image. The
// rendering library opens documents by path, so the PDF is staged in a temp
// file that is removed on every exit path.
func pdfFirstPageJPEG(data []byte) ([]byte, error) {
	tmp, err := os.CreateTemp("", "receipt-*.pdf")
	if err != nil {
		return nil, &ConversionError{Op: "staging PDF", Cause: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, &ConversionError{Op: "staging PDF", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return nil, &ConversionError{Op: "staging PDF", Cause: err}
	}

	doc, err := fitz.New(tmp.Name())
	if err != nil {
		return nil, &ConversionError{Op: "opening PDF", Cause: err}
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, &ConversionError{Op: "no pages found in PDF"}
	}

	// Most receipts are single page; only the first page is rendered
	img, err := doc.Image(0)
	if err != nil {
		return nil, &ConversionError{Op: "rendering PDF page", Cause: err}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return nil, &ConversionError{Op: "encoding JPEG", Cause: err}
	}
	return buf.Bytes(), nil
}
