package document

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadablePDF is returned for files that claim to be PDFs but cannot be parsed.
var ErrUnreadablePDF = errors.New("pdf could not be read")

// PDFInfo is what we learn about an uploaded PDF.
type PDFInfo struct {
	Pages int
}

// InspectPDF parses the document structure and counts its pages. The reader
// panics on some malformed inputs, so those are folded into ErrUnreadablePDF.
func InspectPDF(data []byte) (info PDFInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnreadablePDF, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return PDFInfo{}, fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}

	pages := reader.NumPage()
	if pages < 1 {
		return PDFInfo{}, fmt.Errorf("%w: document has no pages", ErrUnreadablePDF)
	}
	return PDFInfo{Pages: pages}, nil
}
