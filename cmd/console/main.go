package main

import (
	"context"
	"log"
	"os"

	"studio-console/internal/adapters/cli"
	"studio-console/internal/ai"
	"studio-console/internal/app"
	"studio-console/internal/core"
	"studio-console/internal/db"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	_ = godotenv.Load()

	decimal.MarshalJSONWithoutQuotes = true

	if len(os.Args) < 2 {
		log.Fatal("Usage: console <metrics|clients|projects|paid|seed|summary> [args]")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	userService := core.NewUserService(pool)
	projectService := core.NewProjectService(pool)
	paymentService := core.NewPaymentService(pool)
	costService := core.NewCostService(pool)
	clientService := core.NewClientService(pool, projectService, costService)
	documentService := core.NewDocumentService(pool)
	templateService := core.NewTemplateService(pool)

	agent := ai.NewAgent(os.Getenv("OPENAI_API_KEY"))

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}

	svc := app.NewAppService(userService, clientService, projectService,
		paymentService, costService, documentService, templateService,
		agent, uploadDir)

	cli.Run(ctx, svc, os.Args[1:])
}
