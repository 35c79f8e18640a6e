package app

import (
	"context"
	"io"

	"studio-console/internal/ai"
	"studio-console/internal/core"
)

// UserSession is the authenticated identity handed to the web adapter for
// cookie issuance.
type UserSession struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// InvoicePDF is a rendered final-invoice document.
type InvoicePDF struct {
	Filename string
	Bytes    []byte
}

// ApplicationService is the single interface all adapters (web, CLI) call.
// It decouples presentation from business logic: implementations contain no
// HTTP types and no display logic.
type ApplicationService interface {
	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, email, password string) (*UserSession, error)

	// ChangePassword verifies the current password and stores the new one.
	ChangePassword(ctx context.Context, userID, current, next string) error

	ListUsers(ctx context.Context) ([]core.User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*core.User, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*core.User, error)
	DeleteUser(ctx context.Context, id string) error

	// ListClients returns all clients with their derived financial rollup.
	ListClients(ctx context.Context) ([]core.ClientWithFinancials, error)

	// GetClient returns one client with its derived financial rollup.
	GetClient(ctx context.Context, id string) (*core.ClientWithFinancials, error)

	CreateClient(ctx context.Context, req CreateClientRequest) (*core.Client, error)
	UpdateClient(ctx context.Context, id string, req UpdateClientRequest) (*core.Client, error)
	DeleteClient(ctx context.Context, id string) error

	ListProjects(ctx context.Context) ([]core.ProjectWithClient, error)
	GetProject(ctx context.Context, id string) (*core.ProjectWithRelations, error)

	// CreateProject inserts the project and its pending advance/final payment
	// split in one transaction.
	CreateProject(ctx context.Context, req CreateProjectRequest) (*core.ProjectWithRelations, error)

	UpdateProject(ctx context.Context, id string, req UpdateProjectRequest) (*core.Project, error)
	DeleteProject(ctx context.Context, id string) error

	// MarkPaymentPaid records a payment as paid. An empty paidDate means
	// today. Final payments stamp the project's final_payment_date.
	MarkPaymentPaid(ctx context.Context, id, paidDate string) (*core.Payment, error)

	ListProjectCosts(ctx context.Context, projectID string) ([]core.Cost, error)
	AddCost(ctx context.Context, req AddCostRequest) (*core.Cost, error)

	// GetDashboardMetrics computes the portfolio aggregate from the current
	// stored snapshot. Nothing is cached; every call recomputes.
	GetDashboardMetrics(ctx context.Context) (*core.Portfolio, error)

	// SummarizeFinances asks the AI agent for a narrative reading of the
	// current portfolio metrics.
	SummarizeFinances(ctx context.Context) (*ai.FinanceSummary, error)

	// RenderFinalInvoice renders the final-invoice PDF for a project:
	// quoted price, advance received, balance due.
	RenderFinalInvoice(ctx context.Context, projectID string) (*InvoicePDF, error)

	// ListDocuments returns document metadata, optionally filtered by client.
	ListDocuments(ctx context.Context, clientID string) ([]core.Document, error)

	// UploadDocument stores the file bytes on disk and the metadata row in
	// the database.
	UploadDocument(ctx context.Context, req UploadDocumentRequest) (*core.Document, error)

	// OpenDocument returns the metadata and an open reader for the stored
	// bytes. The caller closes the reader.
	OpenDocument(ctx context.Context, id string) (*core.Document, io.ReadCloser, error)

	// DeleteDocument removes the metadata row and the file on disk.
	DeleteDocument(ctx context.Context, id string) error

	ListTemplates(ctx context.Context) ([]core.Template, error)
	GetTemplate(ctx context.Context, id string) (*core.Template, error)
	CreateTemplate(ctx context.Context, req TemplateRequest) (*core.Template, error)
	UpdateTemplate(ctx context.Context, id string, req TemplateRequest) (*core.Template, error)
	DeleteTemplate(ctx context.Context, id string) error
}
