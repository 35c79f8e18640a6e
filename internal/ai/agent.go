package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"studio-console/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// FinanceSummary is a narrative reading of the portfolio metrics, produced
// by the model under a strict JSON schema.
type FinanceSummary struct {
	Headline   string   `json:"headline" jsonschema_description:"One-sentence state of the business"`
	Narrative  string   `json:"narrative" jsonschema_description:"Short paragraph interpreting revenue, costs, margin and cycle time"`
	Watchouts  []string `json:"watchouts" jsonschema_description:"Concrete risks visible in the numbers, empty when none"`
	Confidence float64  `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
}

type AgentService interface {
	SummarizePortfolio(ctx context.Context, portfolio *core.Portfolio) (*FinanceSummary, error)
}

type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

// SummarizePortfolio sends the full derived metrics to the model and asks
// for a grounded narrative. The metrics are authoritative; the model only
// interprets, it never recomputes.
func (a *Agent) SummarizePortfolio(ctx context.Context, portfolio *core.Portfolio) (*FinanceSummary, error) {
	metricsJSON, err := json.Marshal(portfolio)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal portfolio: %w", err)
	}

	prompt := fmt.Sprintf(`You are the finance analyst for a small services studio.
Below are the studio's current derived metrics. All numbers are already computed;
do not recalculate anything. Write for the studio's owner.
Rules:
1. Reference ONLY numbers present in the metrics.
2. Headline is one sentence. Narrative is at most one short paragraph.
3. List watchouts only when the numbers actually show a risk (thin margins,
   heavy pending balance, long cycle time, burn rate near revenue).
4. Provide a confidence score (0.0-1.0).

Metrics:
%s`, metricsJSON)

	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "finance_summary",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A narrative summary of studio financial metrics"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var summary FinanceSummary
	if err := json.Unmarshal([]byte(content), &summary); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}

	if summary.Confidence < 0 {
		summary.Confidence = 0
	}
	if summary.Confidence > 1 {
		summary.Confidence = 1
	}

	return &summary, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v FinanceSummary
	return reflector.Reflect(v)
}
