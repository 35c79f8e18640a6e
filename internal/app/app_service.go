package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"studio-console/internal/ai"
	"studio-console/internal/core"
	"studio-console/internal/pdf"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type appService struct {
	users     core.UserService
	clients   core.ClientService
	projects  core.ProjectService
	payments  core.PaymentService
	costs     core.CostService
	documents core.DocumentService
	templates core.TemplateService
	agent     *ai.Agent
	uploadDir string
	now       func() time.Time
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	users core.UserService,
	clients core.ClientService,
	projects core.ProjectService,
	payments core.PaymentService,
	costs core.CostService,
	documents core.DocumentService,
	templates core.TemplateService,
	agent *ai.Agent,
	uploadDir string,
) ApplicationService {
	return &appService{
		users:     users,
		clients:   clients,
		projects:  projects,
		payments:  payments,
		costs:     costs,
		documents: documents,
		templates: templates,
		agent:     agent,
		uploadDir: uploadDir,
		now:       time.Now,
	}
}

// ── Auth & users ──────────────────────────────────────────────────────────────

func (s *appService) AuthenticateUser(ctx context.Context, email, password string) (*UserSession, error) {
	u, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &UserSession{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}, nil
}

func (s *appService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < 8 {
		return fmt.Errorf("%w: new password must be at least 8 characters", ErrInvalid)
	}
	return s.users.ChangePassword(ctx, userID, current, next)
}

func (s *appService) ListUsers(ctx context.Context) ([]core.User, error) {
	return s.users.List(ctx)
}

func (s *appService) CreateUser(ctx context.Context, req CreateUserRequest) (*core.User, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	return s.users.Create(ctx, core.UserInput{
		Name: req.Name, Email: req.Email, Password: req.Password, Role: req.Role,
	})
}

func (s *appService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*core.User, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	return s.users.Update(ctx, id, core.UserInput{
		Name: req.Name, Email: req.Email, Role: req.Role,
	})
}

func (s *appService) DeleteUser(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

// ── Clients ───────────────────────────────────────────────────────────────────

func (s *appService) ListClients(ctx context.Context) ([]core.ClientWithFinancials, error) {
	return s.clients.ListWithFinancials(ctx)
}

func (s *appService) GetClient(ctx context.Context, id string) (*core.ClientWithFinancials, error) {
	return s.clients.GetWithFinancials(ctx, id)
}

func clientInput(name, company, email string, phone, industry *string,
	structure, status, contractStart, renewalDate string, notes *string) core.ClientInput {
	return core.ClientInput{
		Name:             name,
		CompanyName:      company,
		Email:            email,
		Phone:            phone,
		Industry:         industry,
		PaymentStructure: structure,
		Status:           core.ClientStatus(status),
		ContractStart:    parseDate(contractStart),
		RenewalDate:      parseDate(renewalDate),
		Notes:            notes,
	}
}

func (s *appService) CreateClient(ctx context.Context, req CreateClientRequest) (*core.Client, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	return s.clients.Create(ctx, clientInput(req.Name, req.CompanyName, req.Email,
		req.Phone, req.Industry, req.PaymentStructure, req.Status,
		req.ContractStart, req.RenewalDate, req.Notes))
}

func (s *appService) UpdateClient(ctx context.Context, id string, req UpdateClientRequest) (*core.Client, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	return s.clients.Update(ctx, id, clientInput(req.Name, req.CompanyName, req.Email,
		req.Phone, req.Industry, req.PaymentStructure, req.Status,
		req.ContractStart, req.RenewalDate, req.Notes))
}

func (s *appService) DeleteClient(ctx context.Context, id string) error {
	return s.clients.Delete(ctx, id)
}

// ── Projects ──────────────────────────────────────────────────────────────────

func (s *appService) ListProjects(ctx context.Context) ([]core.ProjectWithClient, error) {
	return s.projects.List(ctx)
}

func (s *appService) GetProject(ctx context.Context, id string) (*core.ProjectWithRelations, error) {
	return s.projects.Get(ctx, id)
}

func (s *appService) CreateProject(ctx context.Context, req CreateProjectRequest) (*core.ProjectWithRelations, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalid)
	}
	return s.projects.Create(ctx, core.ProjectInput{
		ClientID:    req.ClientID,
		Title:       req.Title,
		ServiceType: core.ServiceType(req.ServiceType),
		Price:       req.Price,
		Status:      core.ProjectStatus(req.Status),
		StartDate:   parseDate(req.StartDate),
		Deadline:    parseDate(req.Deadline),
	})
}

func (s *appService) UpdateProject(ctx context.Context, id string, req UpdateProjectRequest) (*core.Project, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalid)
	}
	return s.projects.Update(ctx, id, core.ProjectInput{
		ClientID:    req.ClientID,
		Title:       req.Title,
		ServiceType: core.ServiceType(req.ServiceType),
		Price:       req.Price,
		Status:      core.ProjectStatus(req.Status),
		StartDate:   parseDate(req.StartDate),
		Deadline:    parseDate(req.Deadline),
	})
}

func (s *appService) DeleteProject(ctx context.Context, id string) error {
	return s.projects.Delete(ctx, id)
}

// ── Payments & costs ──────────────────────────────────────────────────────────

func (s *appService) MarkPaymentPaid(ctx context.Context, id, paidDate string) (*core.Payment, error) {
	when := parseDate(paidDate)
	if when == nil {
		today := s.now().UTC().Truncate(24 * time.Hour)
		when = &today
	}
	return s.payments.MarkPaid(ctx, id, *when)
}

func (s *appService) ListProjectCosts(ctx context.Context, projectID string) ([]core.Cost, error) {
	return s.costs.ListForProject(ctx, projectID)
}

func (s *appService) AddCost(ctx context.Context, req AddCostRequest) (*core.Cost, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	return s.costs.Add(ctx, core.CostInput{
		ProjectID:   req.ProjectID,
		LaborCost:   orZero(req.LaborCost),
		ToolCost:    orZero(req.ToolCost),
		HostingCost: orZero(req.HostingCost),
		OtherCost:   orZero(req.OtherCost),
	})
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// ── Metrics & reports ─────────────────────────────────────────────────────────

// GetDashboardMetrics fetches the raw snapshot and runs the derivation
// engine over it. The three reads are plain list-alls; everything after is
// pure computation.
func (s *appService) GetDashboardMetrics(ctx context.Context) (*core.Portfolio, error) {
	projects, err := s.projects.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	costs, err := s.costs.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return core.BuildPortfolio(projects, payments, costs), nil
}

func (s *appService) SummarizeFinances(ctx context.Context) (*ai.FinanceSummary, error) {
	portfolio, err := s.GetDashboardMetrics(ctx)
	if err != nil {
		return nil, err
	}
	return s.agent.SummarizePortfolio(ctx, portfolio)
}

func (s *appService) RenderFinalInvoice(ctx context.Context, projectID string) (*InvoicePDF, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.Get(ctx, project.ClientID)
	if err != nil {
		return nil, err
	}

	advancePaid := decimal.Zero
	for _, p := range project.Payments {
		if p.Type == core.PaymentAdvance && p.Status == core.PaymentPaid {
			advancePaid = advancePaid.Add(p.Amount)
		}
	}

	issued := s.now()
	data := pdf.FinalInvoiceData{
		InvoiceNumber: fmt.Sprintf("INV-%d-%s", issued.Year(), strings.ToUpper(project.ID[:8])),
		ClientName:    client.Name,
		CompanyName:   client.CompanyName,
		ProjectTitle:  project.Title,
		QuotedPrice:   project.Price,
		AdvancePaid:   advancePaid,
		BalanceDue:    project.Price.Sub(advancePaid),
		IssuedDate:    issued.Format(dateLayout),
	}

	bytes, err := pdf.RenderFinalInvoice(data)
	if err != nil {
		return nil, fmt.Errorf("render invoice for %s: %w", projectID, err)
	}
	return &InvoicePDF{
		Filename: fmt.Sprintf("%s.pdf", data.InvoiceNumber),
		Bytes:    bytes,
	}, nil
}

// ── Documents ─────────────────────────────────────────────────────────────────

func (s *appService) ListDocuments(ctx context.Context, clientID string) ([]core.Document, error) {
	if clientID != "" {
		return s.documents.ListForClient(ctx, clientID)
	}
	return s.documents.List(ctx)
}

func (s *appService) UploadDocument(ctx context.Context, req UploadDocumentRequest) (*core.Document, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	storagePath := uuid.NewString() + "_" + filepath.Base(req.Name)
	f, err := os.Create(filepath.Join(s.uploadDir, storagePath))
	if err != nil {
		return nil, fmt.Errorf("store upload %q: %w", req.Name, err)
	}
	size, err := io.Copy(f, req.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.uploadDir, storagePath))
		return nil, fmt.Errorf("store upload %q: %w", req.Name, err)
	}

	doc, err := s.documents.Create(ctx, core.DocumentInput{
		Name:        req.Name,
		ContentType: req.ContentType,
		Size:        size,
		ClientID:    req.ClientID,
		StoragePath: storagePath,
	})
	if err != nil {
		_ = os.Remove(filepath.Join(s.uploadDir, storagePath))
		return nil, err
	}
	return doc, nil
}

func (s *appService) OpenDocument(ctx context.Context, id string) (*core.Document, io.ReadCloser, error) {
	doc, err := s.documents.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(filepath.Join(s.uploadDir, doc.StoragePath))
	if err != nil {
		return nil, nil, fmt.Errorf("open document %s: %w", id, err)
	}
	return doc, f, nil
}

func (s *appService) DeleteDocument(ctx context.Context, id string) error {
	doc, err := s.documents.Delete(ctx, id)
	if err != nil {
		return err
	}
	// Best effort: a missing file should not resurrect the metadata row.
	_ = os.Remove(filepath.Join(s.uploadDir, doc.StoragePath))
	return nil
}

// ── Templates ─────────────────────────────────────────────────────────────────

func (s *appService) ListTemplates(ctx context.Context) ([]core.Template, error) {
	return s.templates.List(ctx)
}

func (s *appService) GetTemplate(ctx context.Context, id string) (*core.Template, error) {
	return s.templates.Get(ctx, id)
}

func (s *appService) CreateTemplate(ctx context.Context, req TemplateRequest) (*core.Template, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: template name is required", ErrInvalid)
	}
	if req.Type == "" {
		req.Type = string(core.TemplateProposal)
	}
	return s.templates.Create(ctx, core.TemplateInput{
		Name: req.Name, Type: core.TemplateType(req.Type), Content: req.Content,
	})
}

func (s *appService) UpdateTemplate(ctx context.Context, id string, req TemplateRequest) (*core.Template, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	return s.templates.Update(ctx, id, core.TemplateInput{
		Name: req.Name, Type: core.TemplateType(req.Type), Content: req.Content,
	})
}

func (s *appService) DeleteTemplate(ctx context.Context, id string) error {
	return s.templates.Delete(ctx, id)
}
