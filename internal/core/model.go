package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type ClientStatus string

const (
	ClientActive    ClientStatus = "active"
	ClientCompleted ClientStatus = "completed"
	ClientPaused    ClientStatus = "paused"
)

type ProjectStatus string

const (
	ProjectLead      ProjectStatus = "lead"
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectPaused    ProjectStatus = "paused"
)

// ServiceType is the closed categorical tag used to bucket projects for the
// profitability breakdown. Anything outside the enumeration falls into the
// "other" bucket at aggregation time.
type ServiceType string

const (
	ServiceWebsite    ServiceType = "website"
	ServiceAIWorkflow ServiceType = "ai_workflow"
	ServiceAutomation ServiceType = "automation"
	ServiceManagement ServiceType = "management"

	// ServiceBucketOther is the fallback breakdown key for absent or
	// unrecognized service types.
	ServiceBucketOther = "other"
)

// Bucket returns the breakdown key for this service type: the type itself
// when it is one of the known categories, "other" otherwise.
func (s ServiceType) Bucket() string {
	switch s {
	case ServiceWebsite, ServiceAIWorkflow, ServiceAutomation, ServiceManagement:
		return string(s)
	}
	return ServiceBucketOther
}

type PaymentType string

const (
	PaymentAdvance PaymentType = "advance"
	PaymentFinal   PaymentType = "final"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
)

// Client is a studio customer. It carries no stored financial fields; all
// financial attributes are derived by aggregating the client's projects.
type Client struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	CompanyName      string       `json:"company_name"`
	Email            string       `json:"email"`
	Phone            *string      `json:"phone"`
	Industry         *string      `json:"industry"`
	PaymentStructure string       `json:"payment_structure"`
	Status           ClientStatus `json:"status"`
	ContractStart    *time.Time   `json:"contract_start"`
	RenewalDate      *time.Time   `json:"renewal_date"`
	Notes            *string      `json:"notes"`
	CreatedAt        time.Time    `json:"created_at"`
}

// Project is a unit of billable work belonging to exactly one client.
// FinalPaymentDate is stamped when the project's final payment is recorded
// paid; it is one of the two inputs to the cycle-time calculation.
type Project struct {
	ID               string          `json:"id"`
	ClientID         string          `json:"client_id"`
	Title            string          `json:"title"`
	ServiceType      ServiceType     `json:"service_type"`
	Price            decimal.Decimal `json:"price"`
	Status           ProjectStatus   `json:"status"`
	StartDate        *time.Time      `json:"start_date"`
	Deadline         *time.Time      `json:"deadline"`
	FinalPaymentDate *time.Time      `json:"final_payment_date"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Payment is one leg of a project's advance/final split. A project has at
// most one payment of each type.
type Payment struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"project_id"`
	Type      PaymentType     `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Status    PaymentStatus   `json:"status"`
	PaidDate  *time.Time      `json:"paid_date"`
}

// Cost is one cost entry against a project. Each sub-field is stored
// independently; absent values land here as zero. Negative lines are legal
// correction entries and are summed as given.
type Cost struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id"`
	LaborCost   decimal.Decimal `json:"labor_cost"`
	ToolCost    decimal.Decimal `json:"tool_cost"`
	HostingCost decimal.Decimal `json:"hosting_cost"`
	OtherCost   decimal.Decimal `json:"other_cost"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Document is stored file metadata; the bytes live on disk under the
// configured upload directory.
type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"type"`
	Size        int64     `json:"size"`
	ClientID    *string   `json:"client_id"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
}

type TemplateType string

const (
	TemplateProposal TemplateType = "proposal"
	TemplateInvoice  TemplateType = "invoice"
	TemplateContract TemplateType = "contract"
	TemplateSOW      TemplateType = "sow"
)

// Template is a reusable document body (proposal, invoice, contract, SOW).
type Template struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Type      TemplateType `json:"type"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"created_at"`
}

// User is an authenticated console user.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
