// Package export builds the downloadable documents: the ledger report as
// HTML, text or xlsx, and the comparison report as HTML or text.
package export

import (
	"bytes"
	"errors"
	"time"

	"github.com/pbaille/unikit/internal/report"
	"github.com/pbaille/unikit/internal/service"
	"github.com/pbaille/unikit/internal/sheet"
)

const (
	KindLedger     = "ledger"
	KindComparison = "comparison"

	FormatHTML = "html"
	FormatText = "text"
	FormatXLSX = "xlsx"
)

var (
	ErrFormat = errors.New("format must be html, text or xlsx")
	ErrKind   = errors.New("kind must be ledger or comparison")
)

// Document is a rendered report ready to be written or uploaded
type Document struct {
	Body        []byte
	ContentType string
	// Base is the suggested file name without extension
	Base string
	Ext  string
}

// FileName is Base plus extension
func (d *Document) FileName() string {
	return d.Base + "." + d.Ext
}

// Build renders the report of kind in format from the service state.
// Empty kind and format mean the HTML ledger report.
func Build(svc *service.Service, kind, format string, now time.Time) (*Document, error) {
	if kind == "" {
		kind = KindLedger
	}
	if format == "" {
		format = FormatHTML
	}

	var buf bytes.Buffer
	doc := &Document{}
	switch kind {
	case KindLedger:
		doc.Base = "cgpa-report"
		years, res := svc.Ledger()
		if format == FormatXLSX {
			if err := sheet.Export(&buf, years, res); err != nil {
				return nil, err
			}
			doc.Body, doc.ContentType, doc.Ext = buf.Bytes(), sheet.ContentType, "xlsx"
			return doc, nil
		}
		if err := report.Ledger(&buf, years, res, now); err != nil {
			return nil, err
		}
	case KindComparison:
		doc.Base = "cgpa-comparison"
		if err := report.Comparison(&buf, svc.Rankings(), now); err != nil {
			return nil, err
		}
	default:
		return nil, ErrKind
	}

	switch format {
	case FormatHTML:
		doc.Body, doc.ContentType, doc.Ext = buf.Bytes(), report.ContentType, "html"
	case FormatText:
		doc.Body, doc.ContentType, doc.Ext = []byte(report.Text(buf.String())+"\n"), "text/plain; charset=utf-8", "txt"
	default:
		return nil, ErrFormat
	}
	return doc, nil
}
