// Package extract turns uploaded resume documents into plain text for prompts.
package extract

import (
	"bytes"
	"fmt"
	"iter"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/yoockh/careercoach/internal/utils"
)

const MediaTypePDF = "application/pdf"

// PDFText validates the declared media type and the content, then returns the
// page-ordered text of the document as one flat, single-spaced string.
func PDFText(data []byte, mediaType string) (string, error) {
	const op = "extract.PDFText"

	if !IsPDF(data, mediaType) {
		return "", utils.E(utils.CodeUnsupportedFormat, op, "only PDF documents are supported", nil)
	}

	var b strings.Builder
	for run, err := range Runs(data) {
		if err != nil {
			return "", utils.E(utils.CodeExtractionFailed, op, "could not read text from the PDF", err)
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(run)
	}

	if b.Len() == 0 {
		// image-only or empty document
		return "", utils.E(utils.CodeExtractionFailed, op, "the PDF contains no extractable text", nil)
	}
	return b.String(), nil
}

// IsPDF requires both the declared type and the sniffed content to be PDF.
func IsPDF(data []byte, mediaType string) bool {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil || !strings.EqualFold(mt, MediaTypePDF) {
		return false
	}
	return mimetype.Detect(data).Is(MediaTypePDF)
}

// Runs lazily yields whitespace-separated text runs page by page.
// Iteration stops at the first error.
func Runs(data []byte) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		r, err := openPDF(data)
		if err != nil {
			yield("", err)
			return
		}

		for i := 1; i <= r.NumPage(); i++ {
			text, err := pageText(r, i)
			if err != nil {
				yield("", fmt.Errorf("page %d: %w", i, err))
				return
			}
			for _, run := range strings.Fields(text) {
				if !yield(run, nil) {
					return
				}
			}
		}
	}
}

// the parser panics on some malformed inputs
func openPDF(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("malformed pdf: %v", rec)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

func pageText(r *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("malformed page: %v", rec)
		}
	}()

	p := r.Page(num)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}
