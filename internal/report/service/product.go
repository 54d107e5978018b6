package service

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/crm/internal/invoice/domain"
	productdomain "github.com/smallbiznis/crm/internal/product/domain"
	"github.com/smallbiznis/crm/pkg/ratio"
)

const (
	topSellingProducts = 5
	topDemandProducts  = 10
)

// priceBand groups catalogue prices, in rupees.
type priceBand struct {
	label string
	below decimal.Decimal
}

var priceBands = []priceBand{
	{label: "Under ₹50K", below: decimal.NewFromInt(50000)},
	{label: "₹50K - ₹1L", below: decimal.NewFromInt(100000)},
	{label: "₹1L - ₹5L", below: decimal.NewFromInt(500000)},
	{label: "Above ₹5L"},
}

func bandOf(price decimal.Decimal) string {
	for _, b := range priceBands {
		if b.below.IsZero() || price.LessThan(b.below) {
			return b.label
		}
	}
	return priceBands[len(priceBands)-1].label
}

// invoicedSales tallies units and revenue per product name across every
// invoice that was not cancelled.
func invoicedSales(invoices []*invoicedomain.Invoice) map[string]*ranking {
	tally := map[string]*ranking{}
	for _, inv := range invoices {
		if is(inv.Status, invoicedomain.StatusCancelled) {
			continue
		}
		for _, item := range inv.LineItems {
			name := strings.TrimSpace(item.Product)
			if name == "" {
				continue
			}
			r := tallyOf(tally, name)
			r.count++
			r.quantity = r.quantity.Add(item.Quantity)
			r.value = r.value.Add(item.Amount)
		}
	}
	return tally
}

func salesFor(tally map[string]*ranking, p *productdomain.Product) *ranking {
	if r, ok := tally[strings.ToLower(strings.TrimSpace(p.ProductName))]; ok {
		return r
	}
	return &ranking{name: p.ProductName}
}

func productSalesAnalysis(ds *dataset, _ env) map[string]any {
	tally := invoicedSales(ds.invoices)

	type row struct {
		product *productdomain.Product
		sales   *ranking
	}
	rows := make([]row, 0, len(ds.products))
	categories := map[string]*ranking{}
	for _, p := range ds.products {
		sales := salesFor(tally, p)
		rows = append(rows, row{product: p, sales: sales})

		c := tallyOf(categories, orUnknown(p.Category))
		c.quantity = c.quantity.Add(sales.quantity)
		c.value = c.value.Add(sales.value)
	}

	view := func(r row) map[string]any {
		return map[string]any{
			"id":           r.product.ID.String(),
			"product_name": r.product.ProductName,
			"category":     r.product.Category,
			"price":        money(r.product.Price),
			"salesCount":   r.sales.quantity.InexactFloat64(),
			"revenue":      money(r.sales.value),
		}
	}

	performance := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		performance = append(performance, view(r))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].sales.value.GreaterThan(rows[j].sales.value)
	})
	top := make([]map[string]any, 0, topSellingProducts)
	for i := 0; i < len(rows) && i < topSellingProducts; i++ {
		top = append(top, view(rows[i]))
	}

	byCategory := make(map[string]any, len(categories))
	for _, c := range categories {
		byCategory[c.name] = map[string]any{
			"count":   c.quantity.InexactFloat64(),
			"revenue": money(c.value),
		}
	}

	return map[string]any{
		"productPerformance":  performance,
		"topProducts":         top,
		"categoryPerformance": byCategory,
	}
}

func categoryPerformance(ds *dataset, _ env) map[string]any {
	tally := invoicedSales(ds.invoices)

	categories := map[string]*ranking{}
	for _, p := range ds.products {
		sales := salesFor(tally, p)
		c := tallyOf(categories, orUnknown(p.Category))
		c.count++
		c.quantity = c.quantity.Add(sales.quantity)
		c.value = c.value.Add(sales.value)
	}

	ranked := rank(categories)
	total := decimal.Zero
	for _, c := range ranked {
		total = total.Add(c.value)
	}

	breakdown := make([]map[string]any, 0, len(ranked))
	share := make(map[string]any, len(ranked))
	for _, c := range ranked {
		breakdown = append(breakdown, map[string]any{
			"category": c.name,
			"products": c.count,
			"sales":    money(c.value),
			"units":    c.quantity.InexactFloat64(),
		})
		share[c.name] = ratio.PercentOf(c.value, total)
	}

	var top any
	if len(breakdown) > 0 {
		top = breakdown[0]
	}
	return map[string]any{
		"categoryBreakdown": breakdown,
		"topCategory":       top,
		"marketShare":       share,
		"illustrative":      placeholder(PlaceholderCategoryOutlook),
	}
}

func pricingAnalysis(ds *dataset, _ env) map[string]any {
	tally := invoicedSales(ds.invoices)

	type band struct {
		products int
		revenue  decimal.Decimal
	}
	bands := make(map[string]*band, len(priceBands))
	for _, b := range priceBands {
		bands[b.label] = &band{revenue: decimal.Zero}
	}
	for _, p := range ds.products {
		b := bands[bandOf(p.Price)]
		b.products++
		b.revenue = b.revenue.Add(salesFor(tally, p).value)
	}

	ranges := make(map[string]any, len(bands))
	for label, b := range bands {
		ranges[label] = map[string]any{"products": b.products, "revenue": money(b.revenue)}
	}
	return map[string]any{
		"priceRanges":  ranges,
		"averagePrice": ratio.Mean(sumBy(ds.products, func(p *productdomain.Product) decimal.Decimal { return p.Price }), len(ds.products)),
		"illustrative": placeholder(PlaceholderPricing),
	}
}

// productDemand ranks products by quantity quoted during the period.
func productDemand(ds *dataset, _ env) map[string]any {
	tally := map[string]*ranking{}
	for _, q := range ds.quotations {
		for _, item := range q.LineItems {
			name := strings.TrimSpace(item.Product)
			if name == "" {
				continue
			}
			r := tallyOf(tally, name)
			r.count++
			r.quantity = r.quantity.Add(item.Quantity)
			r.value = r.value.Add(item.Amount)
		}
	}

	ranked := make([]*ranking, 0, len(tally))
	for _, r := range tally {
		ranked = append(ranked, r)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if c := ranked[i].quantity.Cmp(ranked[j].quantity); c != 0 {
			return c > 0
		}
		return ranked[i].name < ranked[j].name
	})
	if len(ranked) > topDemandProducts {
		ranked = ranked[:topDemandProducts]
	}

	demand := make([]map[string]any, 0, len(ranked))
	for _, r := range ranked {
		demand = append(demand, map[string]any{
			"product":        r.name,
			"quotedQuantity": r.quantity.InexactFloat64(),
			"quoteLines":     r.count,
			"quotedValue":    money(r.value),
		})
	}

	idle := 0
	for _, p := range ds.products {
		if _, ok := tally[strings.ToLower(strings.TrimSpace(p.ProductName))]; !ok {
			idle++
		}
	}

	return map[string]any{
		"demandByProduct":       demand,
		"productsWithoutDemand": idle,
		"illustrative":          placeholder(PlaceholderDemand),
	}
}
