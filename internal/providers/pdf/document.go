package pdf

import (
	"context"
	"errors"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Document is a quotation or invoice with every amount already formatted.
type Document struct {
	Title     string
	Number    string
	IssueDate string
	// DateLabel names the secondary date, e.g. "Valid until" or "Due date".
	DateLabel string
	Date      string

	SellerName   string
	SellerRegion string

	BillToName    string
	BillToAddress string
	BillToEmail   string
	BillToGSTIN   string
	ShipToAddress string
	PlaceOfSupply string

	Items []DocumentItem

	Currency string
	Subtotal string
	Discount string
	Taxable  string
	CGST     string
	SGST     string
	IGST     string
	Total    string
	// InterState selects the IGST row instead of CGST and SGST.
	InterState bool

	Notes string
	Terms string
}

type DocumentItem struct {
	Description string
	HSNCode     string
	Quantity    string
	UnitPrice   string
	Discount    string
	TaxRate     string
	Amount      string
}

var ErrEmptyDocument = errors.New("pdf: document number is required")

func (p *PDFProvider) RenderDocument(ctx context.Context, doc Document) ([]byte, error) {
	if doc.Number == "" {
		return nil, ErrEmptyDocument
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, doc.Title, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, doc.SellerName, props.Text{
			Size:  11,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	m.AddRow(18,
		col.New(6).Add(
			text.New("Number: "+doc.Number, props.Text{Top: 0}),
			text.New("Date: "+doc.IssueDate, props.Text{Top: 4}),
			text.New(doc.DateLabel+": "+doc.Date, props.Text{Top: 8}),
		),
		col.New(6).Add(
			text.New(doc.SellerRegion, props.Text{Align: align.Right}),
		),
	)

	m.AddRow(30,
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(doc.BillToName, props.Text{Top: 5}),
			text.New(doc.BillToAddress, props.Text{Top: 9}),
			text.New(doc.BillToEmail, props.Text{Top: 17}),
			text.New(gstinLine(doc.BillToGSTIN), props.Text{Top: 21}),
		),
		col.New(6).Add(
			text.New("Ship to", props.Text{Style: fontstyle.Bold}),
			text.New(doc.ShipToAddress, props.Text{Top: 5}),
			text.New("Place of supply: "+doc.PlaceOfSupply, props.Text{Top: 17}),
		),
	)

	header := props.Text{Style: fontstyle.Bold, Size: 9}
	headerRight := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}
	m.AddRow(8,
		text.NewCol(4, "Description", header),
		text.NewCol(1, "HSN", header),
		text.NewCol(1, "Qty", headerRight),
		text.NewCol(2, "Unit price", headerRight),
		text.NewCol(1, "Disc %", headerRight),
		text.NewCol(1, "Tax %", headerRight),
		text.NewCol(2, "Amount", headerRight),
	)
	m.AddRow(2, line.NewCol(12))

	cell := props.Text{Size: 9}
	cellRight := props.Text{Size: 9, Align: align.Right}
	for _, item := range doc.Items {
		m.AddRow(8,
			text.NewCol(4, item.Description, cell),
			text.NewCol(1, item.HSNCode, cell),
			text.NewCol(1, item.Quantity, cellRight),
			text.NewCol(2, item.UnitPrice, cellRight),
			text.NewCol(1, item.Discount, cellRight),
			text.NewCol(1, item.TaxRate, cellRight),
			text.NewCol(2, item.Amount, cellRight),
		)
	}
	m.AddRow(2, line.NewCol(12))

	totals := [][2]string{
		{"Subtotal", doc.Subtotal},
		{"Discount", doc.Discount},
		{"Taxable amount", doc.Taxable},
	}
	if doc.InterState {
		totals = append(totals, [2]string{"IGST", doc.IGST})
	} else {
		totals = append(totals, [2]string{"CGST", doc.CGST}, [2]string{"SGST", doc.SGST})
	}
	for _, row := range totals {
		m.AddRow(7,
			col.New(8),
			text.NewCol(2, row[0], cell),
			text.NewCol(2, row[1], cellRight),
		)
	}
	m.AddRow(9,
		col.New(8),
		text.NewCol(2, "Total ("+doc.Currency+")", header),
		text.NewCol(2, doc.Total, headerRight),
	)

	if doc.Notes != "" {
		m.AddRow(14,
			col.New(12).Add(
				text.New("Notes", props.Text{Style: fontstyle.Bold, Size: 9, Top: 4}),
				text.New(doc.Notes, props.Text{Size: 9, Top: 9}),
			),
		)
	}
	if doc.Terms != "" {
		m.AddRow(14,
			col.New(12).Add(
				text.New("Terms and conditions", props.Text{Style: fontstyle.Bold, Size: 9, Top: 4}),
				text.New(doc.Terms, props.Text{Size: 9, Top: 9}),
			),
		)
	}

	out, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return out.GetBytes(), nil
}

func gstinLine(gstin string) string {
	if gstin == "" {
		return ""
	}
	return "GSTIN: " + gstin
}
