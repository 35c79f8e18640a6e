package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"studio-console/internal/app"
	"studio-console/internal/core"

	"github.com/shopspring/decimal"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:] — the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	switch args[0] {
	case "metrics", "met", "m":
		portfolio, err := svc.GetDashboardMetrics(ctx)
		if err != nil {
			log.Fatalf("Failed to compute metrics: %v", err)
		}
		printPortfolio(portfolio)

	case "clients", "cl":
		clients, err := svc.ListClients(ctx)
		if err != nil {
			log.Fatalf("Failed to list clients: %v", err)
		}
		printClients(clients)

	case "projects", "pr":
		projects, err := svc.ListProjects(ctx)
		if err != nil {
			log.Fatalf("Failed to list projects: %v", err)
		}
		printProjects(projects)

	case "paid":
		if len(args) < 2 {
			log.Fatal("Usage: console paid <payment-id> [YYYY-MM-DD]")
		}
		paidDate := ""
		if len(args) > 2 {
			paidDate = args[2]
		}
		payment, err := svc.MarkPaymentPaid(ctx, args[1], paidDate)
		if err != nil {
			log.Fatalf("Failed to mark payment paid: %v", err)
		}
		fmt.Printf("Payment %s marked paid (%s %s).\n", payment.ID, payment.Type, payment.Amount.StringFixed(2))

	case "seed":
		if err := seedDemoData(ctx, svc); err != nil {
			log.Fatalf("Seed failed: %v", err)
		}
		fmt.Println("Demo data seeded.")

	case "summary", "sum", "s":
		summary, err := svc.SummarizeFinances(ctx)
		if err != nil {
			log.Fatalf("Agent error: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(summary)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: metrics, clients, projects, paid, seed, summary", args[0])
	}
}

// seedDemoData loads a small demo book: two clients, three projects with
// their payment splits, and cost entries, so the dashboard has something to
// show on a fresh install.
func seedDemoData(ctx context.Context, svc app.ApplicationService) error {
	type seedProject struct {
		title       string
		serviceType string
		price       string
		status      string
		start       string
		costs       [4]string // labor, tool, hosting, other
	}
	seeds := []struct {
		client   app.CreateClientRequest
		projects []seedProject
	}{
		{
			client: app.CreateClientRequest{
				Name: "Northwind Traders", CompanyName: "Northwind GmbH",
				Email: "ops@northwind.example", PaymentStructure: "40/60",
				Status: "active", ContractStart: "2024-01-15",
			},
			projects: []seedProject{
				{"Corporate website relaunch", "website", "12000", "completed", "2024-02-01",
					[4]string{"3500", "400", "120", "0"}},
				{"Lead intake automation", "automation", "6500", "active", "2024-04-10",
					[4]string{"1800", "250", "0", "100"}},
			},
		},
		{
			client: app.CreateClientRequest{
				Name: "Acme Studio", CompanyName: "Acme Studio LLC",
				Email: "hello@acme.example", PaymentStructure: "50/50",
				Status: "active", ContractStart: "2024-03-01",
			},
			projects: []seedProject{
				{"Support assistant rollout", "ai_workflow", "9000", "active", "2024-05-05",
					[4]string{"2200", "600", "80", "0"}},
			},
		},
	}

	for _, s := range seeds {
		client, err := svc.CreateClient(ctx, s.client)
		if err != nil {
			return fmt.Errorf("seed client %q: %w", s.client.Name, err)
		}
		for _, sp := range s.projects {
			project, err := svc.CreateProject(ctx, app.CreateProjectRequest{
				ClientID:    client.ID,
				Title:       sp.title,
				ServiceType: sp.serviceType,
				Price:       mustDecimal(sp.price),
				Status:      sp.status,
				StartDate:   sp.start,
			})
			if err != nil {
				return fmt.Errorf("seed project %q: %w", sp.title, err)
			}
			labor, tool := mustDecimal(sp.costs[0]), mustDecimal(sp.costs[1])
			hosting, other := mustDecimal(sp.costs[2]), mustDecimal(sp.costs[3])
			if _, err := svc.AddCost(ctx, app.AddCostRequest{
				ProjectID: project.ID,
				LaborCost: &labor, ToolCost: &tool,
				HostingCost: &hosting, OtherCost: &other,
			}); err != nil {
				return fmt.Errorf("seed costs for %q: %w", sp.title, err)
			}
		}
	}
	return nil
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func printPortfolio(p *core.Portfolio) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-58s\n", "PORTFOLIO METRICS")
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-24s %15s\n", "Total revenue", p.TotalRevenue.StringFixed(2))
	fmt.Printf("  %-24s %15s\n", "Received", p.TotalReceived.StringFixed(2))
	fmt.Printf("  %-24s %15s\n", "Pending", p.TotalPending.StringFixed(2))
	fmt.Printf("  %-24s %15s\n", "Total costs", p.TotalCosts.StringFixed(2))
	fmt.Printf("  %-24s %15s\n", "Total profit", p.TotalProfit.StringFixed(2))
	fmt.Printf("  %-24s %15s\n", "Burn rate / month", p.BurnRate.StringFixed(2))
	fmt.Printf("  %-24s %15d\n", "Active projects", p.ActiveProjectsCount)
	fmt.Printf("  %-24s %15d\n", "Completed projects", p.CompletedProjectsCount)
	fmt.Printf("  %-24s %15d\n", "Avg cycle days", p.AvgCycleTimeDays)
	fmt.Println(strings.Repeat("-", 62))
	fmt.Printf("  %-20s %12s %12s %12s\n", "SERVICE", "REVENUE", "COST", "PROFIT")
	buckets := make([]string, 0, len(p.ProfitByServiceType))
	for bucket := range p.ProfitByServiceType {
		buckets = append(buckets, bucket)
	}
	sort.Strings(buckets)
	for _, bucket := range buckets {
		b := p.ProfitByServiceType[bucket]
		fmt.Printf("  %-20s %12s %12s %12s\n", bucket,
			b.Revenue.StringFixed(2), b.Cost.StringFixed(2), b.Profit.StringFixed(2))
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printClients(clients []core.ClientWithFinancials) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 78))
	fmt.Printf("  %-26s %-12s %12s %12s %8s\n", "NAME", "STATUS", "REVENUE", "PROFIT", "MARGIN")
	fmt.Println(strings.Repeat("-", 78))
	for _, c := range clients {
		fmt.Printf("  %-26s %-12s %12s %12s %7s%%\n",
			truncate(c.Name, 26), c.Status,
			c.TotalRevenue.StringFixed(2), c.TotalProfit.StringFixed(2),
			c.MarginPercent.StringFixed(1))
	}
	fmt.Println(strings.Repeat("=", 78))
}

func printProjects(projects []core.ProjectWithClient) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 78))
	fmt.Printf("  %-28s %-20s %-11s %12s\n", "TITLE", "CLIENT", "STATUS", "PRICE")
	fmt.Println(strings.Repeat("-", 78))
	for _, p := range projects {
		fmt.Printf("  %-28s %-20s %-11s %12s\n",
			truncate(p.Title, 28), truncate(p.ClientName, 20), p.Status, p.Price.StringFixed(2))
	}
	fmt.Println(strings.Repeat("=", 78))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
