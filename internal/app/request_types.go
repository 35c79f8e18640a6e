package app

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrInvalid wraps request validation failures so adapters can map them to
// HTTP 400 without inspecting validator internals.
var ErrInvalid = errors.New("invalid request")

var validate = validator.New(validator.WithRequiredStructEnabled())

func checkRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

const dateLayout = "2006-01-02"

// parseDate coerces a date string to a time, accepting plain dates and
// RFC 3339 timestamps. Anything malformed coerces to nil — the same
// treatment as absent, never a crash and never epoch-zero.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	return nil
}

// CreateUserRequest creates a console user.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
}

// UpdateUserRequest patches a console user; empty fields are left unchanged.
type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
	Role  string `json:"role" validate:"omitempty,oneof=admin user"`
}

// CreateClientRequest creates a client.
type CreateClientRequest struct {
	Name             string  `json:"name" validate:"required"`
	CompanyName      string  `json:"company_name"`
	Email            string  `json:"email" validate:"required,email"`
	Phone            *string `json:"phone"`
	Industry         *string `json:"industry"`
	PaymentStructure string  `json:"payment_structure"`
	Status           string  `json:"status" validate:"omitempty,oneof=active completed paused"`
	ContractStart    string  `json:"contract_start"`
	RenewalDate      string  `json:"renewal_date"`
	Notes            *string `json:"notes"`
}

// UpdateClientRequest patches a client; empty fields are left unchanged.
type UpdateClientRequest struct {
	Name             string  `json:"name"`
	CompanyName      string  `json:"company_name"`
	Email            string  `json:"email" validate:"omitempty,email"`
	Phone            *string `json:"phone"`
	Industry         *string `json:"industry"`
	PaymentStructure string  `json:"payment_structure"`
	Status           string  `json:"status" validate:"omitempty,oneof=active completed paused"`
	ContractStart    string  `json:"contract_start"`
	RenewalDate      string  `json:"renewal_date"`
	Notes            *string `json:"notes"`
}

// CreateProjectRequest creates a project plus its pending payment split.
type CreateProjectRequest struct {
	ClientID    string          `json:"client_id" validate:"required,uuid4"`
	Title       string          `json:"title" validate:"required"`
	ServiceType string          `json:"service_type" validate:"omitempty,oneof=website ai_workflow automation management"`
	Price       decimal.Decimal `json:"price"`
	Status      string          `json:"status" validate:"omitempty,oneof=lead active completed paused"`
	StartDate   string          `json:"start_date"`
	Deadline    string          `json:"deadline"`
}

// UpdateProjectRequest patches a project; empty fields are left unchanged.
// final_payment_date is deliberately absent: it is only ever stamped by the
// payment workflow.
type UpdateProjectRequest struct {
	ClientID    string          `json:"client_id" validate:"omitempty,uuid4"`
	Title       string          `json:"title"`
	ServiceType string          `json:"service_type" validate:"omitempty,oneof=website ai_workflow automation management"`
	Price       decimal.Decimal `json:"price"`
	Status      string          `json:"status" validate:"omitempty,oneof=lead active completed paused"`
	StartDate   string          `json:"start_date"`
	Deadline    string          `json:"deadline"`
}

// AddCostRequest records one cost entry. Nil sub-fields are treated as zero.
type AddCostRequest struct {
	ProjectID   string           `json:"project_id" validate:"required,uuid4"`
	LaborCost   *decimal.Decimal `json:"labor_cost"`
	ToolCost    *decimal.Decimal `json:"tool_cost"`
	HostingCost *decimal.Decimal `json:"hosting_cost"`
	OtherCost   *decimal.Decimal `json:"other_cost"`
}

// TemplateRequest creates or patches a document template.
type TemplateRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type" validate:"omitempty,oneof=proposal invoice contract sow"`
	Content string `json:"content"`
}

// UploadDocumentRequest stores an uploaded file. Body is consumed fully.
type UploadDocumentRequest struct {
	Name        string `validate:"required"`
	ContentType string
	ClientID    *string
	Body        io.Reader `validate:"required"`
}
