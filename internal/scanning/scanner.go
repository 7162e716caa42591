package scanning

// ReceiptRecord contains the structured data extracted from a receipt
type ReceiptRecord struct {
	Vendor       string   `json:"vendor"`
	Amount       float64  `json:"amount"`         // Final total paid, in dollars
	Date         string   `json:"date,omitempty"` // MM/DD/YYYY
	Items        []string `json:"items"`
	RawText      string   `json:"raw_text"`
	HSAQualified bool     `json:"hsa_qualified"`
	HSAStatus    string   `json:"hsa_status"`
}

// Normalize applies the uniform post-processing contract to a record.
// Qualification is never inferred from receipt content; every record is
// marked fully qualified and a human adjusts it later. Idempotent.
func (r *ReceiptRecord) Normalize() {
	r.HSAQualified = true
	r.HSAStatus = "Yes"
	if r.Amount < 0 {
		r.Amount = 0
	}
	if r.Items == nil {
		r.Items = []string{}
	}
}

// Scanner defines the interface for receipt extraction backends
type Scanner interface {
	// ScanReceipt extracts structured data from a normalized receipt image
	ScanReceipt(imageData []byte, mimeType string) (*ReceiptRecord, error)
	// Method identifies the extraction backend for the health endpoint
	Method() string
	// Model returns the model identifier in use
	Model() string
	// Close closes the scanner and releases resources
	Close() error
}
