package core

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const monthKeyLayout = "2006-01"

// ServiceTypeBreakdown accumulates revenue, cost and profit for one service
// type bucket.
type ServiceTypeBreakdown struct {
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
}

// MonthBucket is one point of the monthly revenue/expense series. Month is a
// short display label ("Mar"); the series is already sorted chronologically.
type MonthBucket struct {
	Month    string          `json:"month"`
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
}

// Portfolio is the studio-wide aggregate behind the dashboard, finance and
// reports views.
type Portfolio struct {
	TotalRevenue           decimal.Decimal                 `json:"totalRevenue"`
	TotalReceived          decimal.Decimal                 `json:"totalReceived"`
	TotalPending           decimal.Decimal                 `json:"totalPending"`
	TotalCosts             decimal.Decimal                 `json:"totalCosts"`
	TotalProfit            decimal.Decimal                 `json:"totalProfit"`
	ProfitByServiceType    map[string]ServiceTypeBreakdown `json:"profitByServiceType"`
	BurnRate               decimal.Decimal                 `json:"burnRate"`
	ActiveProjectsCount    int                             `json:"activeProjectsCount"`
	CompletedProjectsCount int                             `json:"completedProjectsCount"`
	AvgCycleTimeDays       int                             `json:"avgCycleTimeDays"`
	RevenueByMonth         []MonthBucket                   `json:"revenueByMonth"`
	ProjectMetrics         []ProjectMetric                 `json:"projectMetrics"`
}

// BuildPortfolio combines all project metrics into the portfolio aggregate.
//
// The monthly series buckets projects by the year-month of their start date;
// projects without a start date are excluded, not coerced to a default month.
// The series keeps the last six buckets that have data — calendar months with
// no project start produce no bucket and are not zero-filled. Lexicographic
// sort on the "YYYY-MM" keys is chronological, so year ordering survives the
// string sort.
//
// Burn rate is total cost divided by the number of distinct months in which
// at least one project started, denominator floored at 1.
func BuildPortfolio(projects []Project, payments []Payment, costs []Cost) *Portfolio {
	pf := &Portfolio{
		ProfitByServiceType: make(map[string]ServiceTypeBreakdown),
		RevenueByMonth:      []MonthBucket{},
		ProjectMetrics:      make([]ProjectMetric, 0, len(projects)),
	}

	// Payment partition is independent of project status: paid amounts count
	// as received, everything else as pending.
	for _, pay := range payments {
		if pay.Status == PaymentPaid {
			pf.TotalReceived = pf.TotalReceived.Add(pay.Amount)
		} else {
			pf.TotalPending = pf.TotalPending.Add(pay.Amount)
		}
	}

	byProject := groupCostsByProject(costs)

	type monthAccum struct {
		revenue  decimal.Decimal
		expenses decimal.Decimal
	}
	months := make(map[string]*monthAccum)
	startMonths := make(map[string]struct{})

	var cycleTotalDays float64
	cycleCount := 0

	for _, p := range projects {
		metric := BuildProjectMetric(p, byProject[p.ID])

		pf.TotalRevenue = pf.TotalRevenue.Add(p.Price)
		pf.TotalCosts = pf.TotalCosts.Add(metric.TotalCost)
		pf.TotalProfit = pf.TotalProfit.Add(metric.Profit)
		pf.ProjectMetrics = append(pf.ProjectMetrics, metric)

		b := pf.ProfitByServiceType[metric.ServiceType]
		b.Revenue = b.Revenue.Add(p.Price)
		b.Cost = b.Cost.Add(metric.TotalCost)
		b.Profit = b.Profit.Add(metric.Profit)
		pf.ProfitByServiceType[metric.ServiceType] = b

		switch p.Status {
		case ProjectActive:
			pf.ActiveProjectsCount++
		case ProjectCompleted:
			pf.CompletedProjectsCount++
		}

		// Cycle time averages only projects where both dates exist; the rest
		// are excluded from numerator and denominator alike.
		if p.StartDate != nil && p.FinalPaymentDate != nil {
			cycleTotalDays += p.FinalPaymentDate.Sub(*p.StartDate).Hours() / hoursPerDay
			cycleCount++
		}

		if p.StartDate != nil {
			key := p.StartDate.Format(monthKeyLayout)
			startMonths[key] = struct{}{}
			acc, ok := months[key]
			if !ok {
				acc = &monthAccum{}
				months[key] = acc
			}
			acc.revenue = acc.revenue.Add(p.Price)
			acc.expenses = acc.expenses.Add(metric.TotalCost)
		}
	}

	if cycleCount > 0 {
		pf.AvgCycleTimeDays = int(math.Round(cycleTotalDays / float64(cycleCount)))
	}

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 6 {
		keys = keys[len(keys)-6:]
	}
	for _, k := range keys {
		pf.RevenueByMonth = append(pf.RevenueByMonth, MonthBucket{
			Month:    monthLabel(k),
			Revenue:  months[k].revenue,
			Expenses: months[k].expenses,
		})
	}

	monthCount := int64(len(startMonths))
	if monthCount < 1 {
		monthCount = 1
	}
	pf.BurnRate = pf.TotalCosts.Div(decimal.NewFromInt(monthCount)).Round(0)

	return pf
}

// monthLabel renders a "YYYY-MM" bucket key as a short month name.
func monthLabel(key string) string {
	t, err := time.Parse(monthKeyLayout, key)
	if err != nil {
		return key
	}
	return t.Format("Jan")
}
