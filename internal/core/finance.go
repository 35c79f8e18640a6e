package core

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// The financial derivation engine. Everything in this file and in
// portfolio.go is a pure function of its inputs: no database, no clock, no
// state across calls. The persistence services fetch a snapshot and hand the
// raw rows in; derived values are never written back.

const hoursPerDay = 24

// CostTotals is the aggregate of all cost entries for one project.
type CostTotals struct {
	Labor   decimal.Decimal `json:"labor"`
	Tool    decimal.Decimal `json:"tool"`
	Hosting decimal.Decimal `json:"hosting"`
	Other   decimal.Decimal `json:"other"`
	Total   decimal.Decimal `json:"total"`
}

// AggregateCosts sums the cost entries of one project into per-category
// sub-totals and a grand total. Empty input yields all zeros. Negative lines
// are summed as given so correction entries reduce the total.
func AggregateCosts(costs []Cost) CostTotals {
	var t CostTotals
	for _, c := range costs {
		t.Labor = t.Labor.Add(c.LaborCost)
		t.Tool = t.Tool.Add(c.ToolCost)
		t.Hosting = t.Hosting.Add(c.HostingCost)
		t.Other = t.Other.Add(c.OtherCost)
	}
	t.Total = t.Labor.Add(t.Tool).Add(t.Hosting).Add(t.Other)
	return t
}

// ProfitMargin derives profit and margin percent from a quoted price and an
// aggregated total cost. Margin is profit as a percentage of price, 0 when
// price is not positive (never a division by zero). It is not clamped:
// a cost overrun yields a negative margin and that sign must be preserved.
func ProfitMargin(price, totalCost decimal.Decimal) (profit, margin decimal.Decimal) {
	profit = price.Sub(totalCost)
	if price.IsPositive() {
		margin = profit.Div(price).Mul(decimal.NewFromInt(100))
	}
	return profit, margin
}

// CycleDays returns the rounded number of days between a project's start date
// and the date its final payment was recorded paid. It is defined only when
// both dates are present; otherwise nil — absent is not zero, and callers
// must exclude nil from any average.
func CycleDays(start, finalPayment *time.Time) *int {
	if start == nil || finalPayment == nil {
		return nil
	}
	days := int(math.Round(finalPayment.Sub(*start).Hours() / hoursPerDay))
	return &days
}

// ProjectMetric is the per-project record shown on the dashboard, finance and
// reports views.
type ProjectMetric struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	ServiceType string          `json:"service_type"`
	Price       decimal.Decimal `json:"price"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	Profit      decimal.Decimal `json:"profit"`
	Margin      decimal.Decimal `json:"margin"`
	CycleDays   *int            `json:"cycle_days"`
	Status      ProjectStatus   `json:"status"`
}

// BuildProjectMetric combines a project's price, its aggregated costs and its
// payment dates into one metric record. Margin is rounded to one decimal
// place; profit and cost are carried exact.
func BuildProjectMetric(p Project, costs []Cost) ProjectMetric {
	totals := AggregateCosts(costs)
	profit, margin := ProfitMargin(p.Price, totals.Total)

	status := p.Status
	if status == "" {
		status = ProjectActive
	}

	return ProjectMetric{
		ID:          p.ID,
		Title:       p.Title,
		ServiceType: p.ServiceType.Bucket(),
		Price:       p.Price,
		TotalCost:   totals.Total,
		Profit:      profit,
		Margin:      margin.Round(1),
		CycleDays:   CycleDays(p.StartDate, p.FinalPaymentDate),
		Status:      status,
	}
}

// ClientFinancials is the rollup of a client's projects: revenue is the sum
// of quoted prices, cost the sum of aggregated project costs.
type ClientFinancials struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
}

// AggregateClientFinancials rolls per-project revenue and cost up to the
// owning client. Projects are matched by client id regardless of status.
// A client with zero projects yields all zeros, margin included.
func AggregateClientFinancials(clientID string, projects []Project, costs []Cost) ClientFinancials {
	byProject := groupCostsByProject(costs)

	var f ClientFinancials
	for _, p := range projects {
		if p.ClientID != clientID {
			continue
		}
		f.TotalRevenue = f.TotalRevenue.Add(p.Price)
		f.TotalCost = f.TotalCost.Add(AggregateCosts(byProject[p.ID]).Total)
	}
	f.TotalProfit = f.TotalRevenue.Sub(f.TotalCost)
	if f.TotalRevenue.IsPositive() {
		f.MarginPercent = f.TotalProfit.Div(f.TotalRevenue).Mul(decimal.NewFromInt(100))
	}
	return f
}

func groupCostsByProject(costs []Cost) map[string][]Cost {
	m := make(map[string][]Cost, len(costs))
	for _, c := range costs {
		m[c.ProjectID] = append(m[c.ProjectID], c)
	}
	return m
}
