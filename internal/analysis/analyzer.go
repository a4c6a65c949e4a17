package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"

	"github.com/tribuna-project/tribuna/internal/proposals"
	"github.com/tribuna-project/tribuna/pkg/formatting"
)

// Analyzer assesses the social relevance of one proposal. Implementations
// return a typed *Error on failure so callers can leave the proposal pending.
type Analyzer interface {
	Analyze(ctx context.Context, p proposals.Proposal) (*Report, error)
}

// AnalyzerOptions configure the model-backed analyzer.
type AnalyzerOptions struct {
	BaseURL string
	Token   string
	Model   string
}

const systemPrompt = `Você é um analista legislativo. Avalie a relevância social da proposição
e responda somente com JSON neste formato:
{"escopo_impacto": 0-30, "alinhamento_objetivos": 0-30, "inovacao": 0-20,
"sustentabilidade_fiscal": 0-20, "penalidade": 0-15, "justificativa": "texto curto"}
A penalidade aplica-se apenas a propostas fiscalmente insustentáveis.`

type reportPayload struct {
	EscopoImpacto          int    `json:"escopo_impacto"`
	AlinhamentoObjetivos   int    `json:"alinhamento_objetivos"`
	Inovacao               int    `json:"inovacao"`
	SustentabilidadeFiscal int    `json:"sustentabilidade_fiscal"`
	Penalidade             int    `json:"penalidade"`
	Justificativa          string `json:"justificativa"`
}

type modelAnalyzer struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewAnalyzer creates the production analyzer on the configured completion
// endpoint.
func NewAnalyzer(opts AnalyzerOptions, logger *slog.Logger) Analyzer {
	cfg := openai.DefaultConfig(opts.Token)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	return &modelAnalyzer{
		client: openai.NewClientWithConfig(cfg),
		model:  opts.Model,
		logger: logger.With("system", "analyzer"),
	}
}

func (a *modelAnalyzer) Analyze(ctx context.Context, p proposals.Proposal) (*Report, error) {
	prompt := fmt.Sprintf("Proposição %s %d/%d.\nEmenta: %s\nSituação: %s",
		p.Kind, p.Number, p.Year, p.Summary, p.Status)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, Unavailable(p.ExternalID, err)
	}
	if len(resp.Choices) == 0 {
		return nil, Malformed(p.ExternalID, fmt.Errorf("empty completion"))
	}

	payload, err := formatting.Parse[reportPayload](resp.Choices[0].Message.Content)
	if err != nil {
		return nil, Malformed(p.ExternalID, err)
	}

	return &Report{
		ScopeImpact:     clamp(payload.EscopoImpacto, MaxScopeImpact),
		GoalAlignment:   clamp(payload.AlinhamentoObjetivos, MaxGoalAlignment),
		Innovation:      clamp(payload.Inovacao, MaxInnovation),
		FiscalSoundness: clamp(payload.SustentabilidadeFiscal, MaxFiscalSoundness),
		Penalty:         clamp(payload.Penalidade, MaxPenalty),
		Rationale:       payload.Justificativa,
	}, nil
}

func clamp(value, max int) int {
	if value < 0 {
		return 0
	}
	if value > max {
		return max
	}
	return value
}
