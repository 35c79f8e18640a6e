package pdf

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

// FinalInvoiceData carries everything the final-invoice layout needs.
// Amounts stay decimal until the formatting layer here.
type FinalInvoiceData struct {
	InvoiceNumber string
	ClientName    string
	CompanyName   string
	ProjectTitle  string
	QuotedPrice   decimal.Decimal
	AdvancePaid   decimal.Decimal
	BalanceDue    decimal.Decimal
	IssuedDate    string
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// RenderFinalInvoice renders the closing invoice for a project: the quoted
// price, the advance already received and the remaining balance due.
func RenderFinalInvoice(data FinalInvoiceData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Final Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(16,
		col.New(6).Add(
			text.New("Invoice number: "+data.InvoiceNumber, props.Text{Top: 0}),
			text.New("Date of issue: "+data.IssuedDate, props.Text{Top: 4}),
			text.New("Project: "+data.ProjectTitle, props.Text{Top: 8}),
		),
		col.New(6),
	)

	billTo := data.ClientName
	if data.CompanyName != "" {
		billTo = fmt.Sprintf("%s (%s)", data.ClientName, data.CompanyName)
	}
	m.AddRow(20,
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(billTo, props.Text{Top: 5}),
		),
		col.New(6),
	)

	m.AddRow(10,
		text.NewCol(8, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	m.AddRow(12,
		text.NewCol(8, "Quoted price: "+data.ProjectTitle, props.Text{Size: 9}),
		text.NewCol(4, money(data.QuotedPrice), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(12,
		text.NewCol(8, "Advance received", props.Text{Size: 9}),
		text.NewCol(4, "-"+money(data.AdvancePaid), props.Text{Size: 9, Align: align.Right}),
	)

	m.AddRow(12,
		col.New(6),
		text.NewCol(3, "Balance due", props.Text{Style: fontstyle.Bold, Size: 11}),
		text.NewCol(3, money(data.BalanceDue), props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate invoice pdf: %w", err)
	}
	return doc.GetBytes(), nil
}
