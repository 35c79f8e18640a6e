package core_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"studio-console/internal/core"

	"github.com/shopspring/decimal"
)

func TestBuildPortfolio_EndToEnd(t *testing.T) {
	projects := []core.Project{
		{
			ID: "p1", ClientID: "c1", Title: "Site relaunch",
			ServiceType: core.ServiceWebsite, Price: dec("10000"),
			Status: core.ProjectActive, StartDate: date(2024, time.March, 1),
		},
		{
			ID: "p2", ClientID: "c2", Title: "Zap pipeline",
			ServiceType: core.ServiceAutomation, Price: dec("5000"),
			Status: core.ProjectCompleted, StartDate: date(2024, time.March, 10),
		},
	}
	costs := []core.Cost{
		{ProjectID: "p1", LaborCost: dec("3500"), ToolCost: dec("500")},
		{ProjectID: "p2", LaborCost: dec("1000")},
	}

	pf := core.BuildPortfolio(projects, nil, costs)

	if !pf.TotalRevenue.Equal(dec("15000")) {
		t.Errorf("totalRevenue: want 15000, got %s", pf.TotalRevenue)
	}
	if !pf.TotalCosts.Equal(dec("5000")) {
		t.Errorf("totalCosts: want 5000, got %s", pf.TotalCosts)
	}
	if !pf.TotalProfit.Equal(dec("10000")) {
		t.Errorf("totalProfit: want 10000, got %s", pf.TotalProfit)
	}

	web := pf.ProfitByServiceType["website"]
	if !web.Revenue.Equal(dec("10000")) || !web.Cost.Equal(dec("4000")) || !web.Profit.Equal(dec("6000")) {
		t.Errorf("website bucket: want 10000/4000/6000, got %s/%s/%s", web.Revenue, web.Cost, web.Profit)
	}
	auto := pf.ProfitByServiceType["automation"]
	if !auto.Revenue.Equal(dec("5000")) || !auto.Cost.Equal(dec("1000")) || !auto.Profit.Equal(dec("4000")) {
		t.Errorf("automation bucket: want 5000/1000/4000, got %s/%s/%s", auto.Revenue, auto.Cost, auto.Profit)
	}

	if pf.ActiveProjectsCount != 1 || pf.CompletedProjectsCount != 1 {
		t.Errorf("counts: want 1 active / 1 completed, got %d/%d",
			pf.ActiveProjectsCount, pf.CompletedProjectsCount)
	}

	// Both projects started in 2024-03 → a single bucket carrying everything.
	if len(pf.RevenueByMonth) != 1 {
		t.Fatalf("revenueByMonth: want 1 bucket, got %d", len(pf.RevenueByMonth))
	}
	bucket := pf.RevenueByMonth[0]
	if bucket.Month != "Mar" {
		t.Errorf("bucket label: want Mar, got %s", bucket.Month)
	}
	if !bucket.Revenue.Equal(dec("15000")) || !bucket.Expenses.Equal(dec("5000")) {
		t.Errorf("bucket: want 15000/5000, got %s/%s", bucket.Revenue, bucket.Expenses)
	}

	// One distinct start month → burn rate equals total cost.
	if !pf.BurnRate.Equal(dec("5000")) {
		t.Errorf("burnRate: want 5000, got %s", pf.BurnRate)
	}

	if len(pf.ProjectMetrics) != 2 {
		t.Errorf("projectMetrics: want 2, got %d", len(pf.ProjectMetrics))
	}
}

func TestBuildPortfolio_PaymentPartition(t *testing.T) {
	payments := []core.Payment{
		{ID: "a", ProjectID: "p1", Type: core.PaymentAdvance, Amount: dec("4000"), Status: core.PaymentPaid},
		{ID: "f", ProjectID: "p1", Type: core.PaymentFinal, Amount: dec("6000"), Status: core.PaymentPending},
	}
	pf := core.BuildPortfolio(nil, payments, nil)

	if !pf.TotalReceived.Equal(dec("4000")) {
		t.Errorf("totalReceived: want 4000, got %s", pf.TotalReceived)
	}
	if !pf.TotalPending.Equal(dec("6000")) {
		t.Errorf("totalPending: want 6000, got %s", pf.TotalPending)
	}
}

func TestBuildPortfolio_AvgCycleTime(t *testing.T) {
	projects := []core.Project{
		{
			ID: "p1", Price: dec("1"),
			StartDate:        date(2024, time.January, 1),
			FinalPaymentDate: date(2024, time.January, 31), // 30 days
		},
		{
			ID: "p2", Price: dec("1"),
			StartDate:        date(2024, time.February, 1),
			FinalPaymentDate: date(2024, time.February, 21), // 20 days
		},
		// No start date: excluded from numerator and denominator alike.
		{ID: "p3", Price: dec("1"), FinalPaymentDate: date(2024, time.March, 1)},
		// No final payment yet: also excluded.
		{ID: "p4", Price: dec("1"), StartDate: date(2024, time.March, 1)},
	}

	pf := core.BuildPortfolio(projects, nil, nil)
	if pf.AvgCycleTimeDays != 25 {
		t.Errorf("avgCycleTimeDays: want 25, got %d", pf.AvgCycleTimeDays)
	}
}

func TestBuildPortfolio_AvgCycleTimeEmptySubset(t *testing.T) {
	projects := []core.Project{
		{ID: "p1", Price: dec("100"), StartDate: date(2024, time.May, 1)},
	}
	pf := core.BuildPortfolio(projects, nil, nil)
	if pf.AvgCycleTimeDays != 0 {
		t.Errorf("avgCycleTimeDays: want 0 for empty subset, got %d", pf.AvgCycleTimeDays)
	}
}

func TestBuildPortfolio_LastSixNonEmptyBuckets(t *testing.T) {
	// Eight distinct start months across a year boundary with gaps. Only the
	// six most recent months that have data survive; gaps are not zero-filled.
	starts := []struct {
		y int
		m time.Month
	}{
		{2023, time.September}, {2023, time.November}, {2023, time.December},
		{2024, time.February}, {2024, time.March}, {2024, time.June},
		{2024, time.September}, {2024, time.October},
	}
	var projects []core.Project
	for i, s := range starts {
		projects = append(projects, core.Project{
			ID:        string(rune('a' + i)),
			Price:     dec("100"),
			StartDate: date(s.y, s.m, 5),
		})
	}

	pf := core.BuildPortfolio(projects, nil, nil)

	if len(pf.RevenueByMonth) != 6 {
		t.Fatalf("want 6 buckets, got %d", len(pf.RevenueByMonth))
	}
	wantLabels := []string{"Dec", "Feb", "Mar", "Jun", "Sep", "Oct"}
	for i, want := range wantLabels {
		if pf.RevenueByMonth[i].Month != want {
			t.Errorf("bucket %d: want %s, got %s", i, want, pf.RevenueByMonth[i].Month)
		}
	}

	// 2023-09 and 2023-11 dropped; the kept buckets each carry one project.
	for i, b := range pf.RevenueByMonth {
		if !b.Revenue.Equal(dec("100")) {
			t.Errorf("bucket %d revenue: want 100, got %s", i, b.Revenue)
		}
	}
}

func TestBuildPortfolio_BurnRate(t *testing.T) {
	t.Run("divides by distinct start months", func(t *testing.T) {
		projects := []core.Project{
			{ID: "p1", Price: dec("1"), StartDate: date(2024, time.January, 1)},
			{ID: "p2", Price: dec("1"), StartDate: date(2024, time.January, 20)},
			{ID: "p3", Price: dec("1"), StartDate: date(2024, time.April, 2)},
		}
		costs := []core.Cost{
			{ProjectID: "p1", LaborCost: dec("600")},
			{ProjectID: "p3", LaborCost: dec("401")},
		}
		pf := core.BuildPortfolio(projects, nil, costs)
		// 1001 over 2 distinct months → 500.5 → rounds to 501.
		if !pf.BurnRate.Equal(dec("501")) {
			t.Errorf("burnRate: want 501, got %s", pf.BurnRate)
		}
	})

	t.Run("denominator floored at one", func(t *testing.T) {
		projects := []core.Project{{ID: "p1", Price: dec("1")}} // no start date
		costs := []core.Cost{{ProjectID: "p1", LaborCost: dec("750")}}
		pf := core.BuildPortfolio(projects, nil, costs)
		if !pf.BurnRate.Equal(dec("750")) {
			t.Errorf("burnRate: want 750, got %s", pf.BurnRate)
		}
	})
}

func TestBuildPortfolio_EmptyInput(t *testing.T) {
	pf := core.BuildPortfolio(nil, nil, nil)

	for name, v := range map[string]decimal.Decimal{
		"totalRevenue": pf.TotalRevenue, "totalReceived": pf.TotalReceived,
		"totalPending": pf.TotalPending, "totalCosts": pf.TotalCosts,
		"totalProfit": pf.TotalProfit, "burnRate": pf.BurnRate,
	} {
		if !v.IsZero() {
			t.Errorf("%s: want 0, got %s", name, v)
		}
	}
	if pf.AvgCycleTimeDays != 0 {
		t.Errorf("avgCycleTimeDays: want 0, got %d", pf.AvgCycleTimeDays)
	}
	if len(pf.RevenueByMonth) != 0 || len(pf.ProjectMetrics) != 0 {
		t.Errorf("want empty series, got %d buckets / %d metrics",
			len(pf.RevenueByMonth), len(pf.ProjectMetrics))
	}
	if len(pf.ProfitByServiceType) != 0 {
		t.Errorf("want empty breakdown, got %d buckets", len(pf.ProfitByServiceType))
	}
}

func TestBuildPortfolio_Idempotent(t *testing.T) {
	projects := []core.Project{
		{
			ID: "p1", ClientID: "c1", Title: "A", ServiceType: core.ServiceWebsite,
			Price: dec("8000"), Status: core.ProjectActive,
			StartDate: date(2024, time.March, 1), FinalPaymentDate: date(2024, time.April, 14),
		},
		{
			ID: "p2", ClientID: "c1", Title: "B", ServiceType: "mystery",
			Price: dec("2000"), Status: core.ProjectCompleted,
			StartDate: date(2024, time.May, 2),
		},
	}
	payments := []core.Payment{
		{ID: "a", ProjectID: "p1", Type: core.PaymentAdvance, Amount: dec("3200"), Status: core.PaymentPaid},
	}
	costs := []core.Cost{{ProjectID: "p1", LaborCost: dec("2500.75")}}

	first, err := json.Marshal(core.BuildPortfolio(projects, payments, costs))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(core.BuildPortfolio(projects, payments, costs))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("outputs differ:\n%s\n%s", first, second)
	}
}
