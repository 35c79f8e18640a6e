package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "studio-console/internal/adapters/web"
	"studio-console/internal/ai"
	"studio-console/internal/app"
	"studio-console/internal/core"
	"studio-console/internal/db"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	_ = godotenv.Load()

	// Money serializes as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true

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

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set")
	}
	agent := ai.NewAgent(apiKey)

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}

	svc := app.NewAppService(userService, clientService, projectService,
		paymentService, costService, documentService, templateService,
		agent, uploadDir)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
