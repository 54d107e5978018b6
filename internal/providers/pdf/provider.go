// Package pdf renders quotations, invoices and report tables with maroto.
package pdf

import (
	"context"
)

type Provider interface {
	RenderDocument(ctx context.Context, doc Document) ([]byte, error)
	RenderTable(ctx context.Context, table Table) ([]byte, error)
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}
