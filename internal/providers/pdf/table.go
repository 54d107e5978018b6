package pdf

import (
	"context"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Table is a titled grid of pre-formatted cells, used for report exports.
type Table struct {
	Title    string
	Subtitle string
	Headers  []string
	Rows     [][]string
}

func (p *PDFProvider) RenderTable(ctx context.Context, table Table) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, table.Title, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	if table.Subtitle != "" {
		m.AddRow(8, text.NewCol(12, table.Subtitle, props.Text{Size: 9}))
	}

	if len(table.Headers) > 0 {
		m.AddRow(8, cells(table.Headers, props.Text{Style: fontstyle.Bold, Size: 9})...)
		m.AddRow(2, line.NewCol(12))
	}
	for _, row := range table.Rows {
		m.AddRow(7, cells(row, props.Text{Size: 8})...)
	}

	out, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return out.GetBytes(), nil
}

// cells spreads values across the 12-column grid. Values past the twelfth
// column are dropped.
func cells(values []string, style props.Text) []core.Col {
	if len(values) == 0 {
		return nil
	}
	if len(values) > 12 {
		values = values[:12]
	}
	width := 12 / len(values)
	out := make([]core.Col, 0, len(values))
	for i, v := range values {
		size := width
		if i == len(values)-1 {
			size = 12 - width*(len(values)-1)
		}
		out = append(out, text.NewCol(size, v, style))
	}
	return out
}
