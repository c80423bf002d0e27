// Package report writes the line-oriented console report.
package report

import (
	"fmt"
	"io"

	"github.com/recentdocs/internal/model"
)

// Printer writes report lines to an io.Writer. Write errors are ignored; stdout is the only target.
type Printer struct {
	w io.Writer
}

func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Header announces the collection being listed.
func (p *Printer) Header(collection string) {
	fmt.Fprintln(p.w, "Listing recent documents in", collection)
}

// Record prints one record block: separator, id, status fields, then the preview.
func (p *Printer) Record(r model.Record) {
	fmt.Fprintln(p.w, "---")
	fmt.Fprintln(p.w, "id:", r.ID)
	fmt.Fprintln(p.w, "created_at:", model.FormatValue(r.CreatedAt()))
	fmt.Fprintln(p.w, "email_sent:", model.FormatValue(r.EmailSent()))
	fmt.Fprintln(p.w, "email_error:", model.FormatValue(r.EmailError()))
	fmt.Fprintln(p.w, "data_preview:", model.FormatMap(r.Preview()))
}

// InitFailed reports a credential or app initialisation failure.
func (p *Printer) InitFailed(app string, err error) {
	fmt.Fprintf(p.w, "%s init failed: %v\n", app, err)
}

// ClientFailed reports a client construction failure.
func (p *Printer) ClientFailed(client string, err error) {
	fmt.Fprintf(p.w, "Failed to create %s client: %v\n", client, err)
}

// QueryFailed reports a failed listing query.
func (p *Printer) QueryFailed(err error) {
	fmt.Fprintln(p.w, "Error listing docs:", err)
}
