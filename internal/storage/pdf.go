package storage

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// VerifyPDF checks that data parses as a PDF with at least one page and
// returns the page count.
func VerifyPDF(data []byte) (pages int, err error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("report is empty")
	}

	// the parser panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("report is not a readable PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("report is not a readable PDF: %w", err)
	}

	pages = reader.NumPage()
	if pages < 1 {
		return 0, fmt.Errorf("report PDF has no pages")
	}
	return pages, nil
}
