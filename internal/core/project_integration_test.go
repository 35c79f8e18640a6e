package core_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"studio-console/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	files, err := filepath.Glob("../../migrations/*.sql")
	if err != nil || len(files) == 0 {
		t.Fatalf("no migration files found: %v", err)
	}
	sort.Strings(files)
	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			t.Fatalf("read %s: %v", file, err)
		}
		if _, err := pool.Exec(ctx, string(sqlBytes)); err != nil {
			t.Fatalf("apply %s: %v", file, err)
		}
	}

	if _, err := pool.Exec(ctx, "TRUNCATE TABLE costs, payments, projects, documents, clients CASCADE"); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	return pool
}

func seedClient(t *testing.T, pool *pgxpool.Pool, structure string) *core.Client {
	t.Helper()
	ctx := context.Background()
	costs := core.NewCostService(pool)
	projects := core.NewProjectService(pool)
	svc := core.NewClientService(pool, projects, costs)

	client, err := svc.Create(ctx, core.ClientInput{
		Name:             "Acme Retainers",
		CompanyName:      "Acme GmbH",
		Email:            "ops@acme.test",
		PaymentStructure: structure,
	})
	if err != nil {
		t.Fatalf("Create client: %v", err)
	}
	return client
}

func TestProject_CreateSplitsPayments(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	client := seedClient(t, pool, "40/60")
	svc := core.NewProjectService(pool)

	project, err := svc.Create(ctx, core.ProjectInput{
		ClientID:    client.ID,
		Title:       "Corporate website relaunch",
		ServiceType: core.ServiceWebsite,
		Price:       dec("10000"),
		Status:      core.ProjectActive,
		StartDate:   date(2024, time.March, 1),
	})
	if err != nil {
		t.Fatalf("Create project: %v", err)
	}

	if len(project.Payments) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(project.Payments))
	}

	var advance, final *core.Payment
	for i := range project.Payments {
		switch project.Payments[i].Type {
		case core.PaymentAdvance:
			advance = &project.Payments[i]
		case core.PaymentFinal:
			final = &project.Payments[i]
		}
	}
	if advance == nil || final == nil {
		t.Fatal("expected one advance and one final payment")
	}
	if !advance.Amount.Equal(dec("4000")) {
		t.Errorf("advance: want 4000, got %s", advance.Amount)
	}
	if !final.Amount.Equal(dec("6000")) {
		t.Errorf("final: want 6000, got %s", final.Amount)
	}
	if !advance.Amount.Add(final.Amount).Equal(project.Price) {
		t.Errorf("split must sum to price: %s + %s != %s", advance.Amount, final.Amount, project.Price)
	}
	if advance.Status != core.PaymentPending || final.Status != core.PaymentPending {
		t.Error("both payments must start pending")
	}
}

func TestProject_SplitHonoursClientStructure(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	client := seedClient(t, pool, "50/50")
	svc := core.NewProjectService(pool)

	project, err := svc.Create(ctx, core.ProjectInput{
		ClientID: client.ID,
		Title:    "Support automation",
		Price:    dec("7001"),
	})
	if err != nil {
		t.Fatalf("Create project: %v", err)
	}

	total := dec("0")
	for _, p := range project.Payments {
		total = total.Add(p.Amount)
		if p.Type == core.PaymentAdvance && !p.Amount.Equal(dec("3500.50")) {
			t.Errorf("advance: want 3500.50, got %s", p.Amount)
		}
	}
	if !total.Equal(project.Price) {
		t.Errorf("split must sum to price, got %s", total)
	}
}

func TestPayment_MarkFinalPaidStampsProject(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	client := seedClient(t, pool, "40/60")
	projects := core.NewProjectService(pool)
	payments := core.NewPaymentService(pool)

	project, err := projects.Create(ctx, core.ProjectInput{
		ClientID:  client.ID,
		Title:     "Dashboard build",
		Price:     dec("5000"),
		StartDate: date(2024, time.January, 10),
	})
	if err != nil {
		t.Fatalf("Create project: %v", err)
	}

	var finalID string
	for _, p := range project.Payments {
		if p.Type == core.PaymentFinal {
			finalID = p.ID
		}
	}

	paidOn := time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC)
	paid, err := payments.MarkPaid(ctx, finalID, paidOn)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if paid.Status != core.PaymentPaid {
		t.Errorf("status: want paid, got %s", paid.Status)
	}
	if paid.PaidDate == nil || !paid.PaidDate.Equal(paidOn) {
		t.Errorf("paid_date: want %s, got %v", paidOn, paid.PaidDate)
	}

	reloaded, err := projects.Get(ctx, project.ID)
	if err != nil {
		t.Fatalf("Get project: %v", err)
	}
	if reloaded.FinalPaymentDate == nil {
		t.Fatal("final payment date must be stamped on the project")
	}
	if !reloaded.FinalPaymentDate.Equal(paidOn) {
		t.Errorf("final_payment_date: want %s, got %s", paidOn, reloaded.FinalPaymentDate)
	}
}

func TestProject_CompletionBackfillsFinalPayment(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	client := seedClient(t, pool, "40/60")
	projects := core.NewProjectService(pool)

	project, err := projects.Create(ctx, core.ProjectInput{
		ClientID: client.ID,
		Title:    "Ops retainer",
		Price:    dec("8000"),
		Status:   core.ProjectActive,
	})
	if err != nil {
		t.Fatalf("Create project: %v", err)
	}

	// Remove the final payment row to simulate a project created before the
	// split rule existed.
	if _, err := pool.Exec(ctx,
		"DELETE FROM payments WHERE project_id = $1 AND type = 'final'", project.ID); err != nil {
		t.Fatalf("delete final payment: %v", err)
	}

	updated, err := projects.Update(ctx, project.ID, core.ProjectInput{
		Status: core.ProjectCompleted,
	})
	if err != nil {
		t.Fatalf("Update to completed: %v", err)
	}
	if updated.Status != core.ProjectCompleted {
		t.Errorf("status: want completed, got %s", updated.Status)
	}

	detail, err := projects.Get(ctx, project.ID)
	if err != nil {
		t.Fatalf("Get project: %v", err)
	}
	var final *core.Payment
	for i := range detail.Payments {
		if detail.Payments[i].Type == core.PaymentFinal {
			final = &detail.Payments[i]
		}
	}
	if final == nil {
		t.Fatal("completion must recreate the missing final payment")
	}
	if !final.Amount.Equal(dec("4800")) {
		t.Errorf("backfilled final: want price minus advance 4800, got %s", final.Amount)
	}
	if final.Status != core.PaymentPending {
		t.Errorf("backfilled final must be pending, got %s", final.Status)
	}
}

func TestClient_FinancialRollup(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	client := seedClient(t, pool, "40/60")
	projects := core.NewProjectService(pool)
	costs := core.NewCostService(pool)
	clients := core.NewClientService(pool, projects, costs)

	project, err := projects.Create(ctx, core.ProjectInput{
		ClientID: client.ID,
		Title:    "Brand site",
		Price:    dec("10000"),
	})
	if err != nil {
		t.Fatalf("Create project: %v", err)
	}
	if _, err := costs.Add(ctx, core.CostInput{
		ProjectID: project.ID,
		LaborCost: dec("2500"),
		ToolCost:  dec("500"),
	}); err != nil {
		t.Fatalf("Add cost: %v", err)
	}

	withFin, err := clients.GetWithFinancials(ctx, client.ID)
	if err != nil {
		t.Fatalf("GetWithFinancials: %v", err)
	}
	if !withFin.TotalRevenue.Equal(dec("10000")) {
		t.Errorf("revenue: want 10000, got %s", withFin.TotalRevenue)
	}
	if !withFin.TotalCost.Equal(dec("3000")) {
		t.Errorf("cost: want 3000, got %s", withFin.TotalCost)
	}
	if !withFin.TotalProfit.Equal(dec("7000")) {
		t.Errorf("profit: want 7000, got %s", withFin.TotalProfit)
	}
	if !withFin.MarginPercent.Equal(dec("70")) {
		t.Errorf("margin: want 70, got %s", withFin.MarginPercent)
	}
}
