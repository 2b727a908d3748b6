package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/smsa"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/pkg/logging"
)

const defaultRateCountry = "KSA"

const ratesClarification = "To quote a shipping rate I need the origin city, the destination city, " +
	"and the package weight in kilograms. For example: \"rates from Riyadh to Jeddah for 5 kg\"."

// RatesService is the provider surface the rates agent needs.
type RatesService interface {
	Quote(ctx context.Context, q smsa.RateQuery) ([]smsa.RateOption, error)
}

// RatesAgent answers shipping price inquiries. It expects the shared
// parameter extractor to have filled origin_city, destination_city and
// weight; anything missing produces a clarifying question instead of a
// provider call.
type RatesAgent struct {
	service RatesService
	logger  *logging.Logger
}

// NewRatesAgent creates the rates agent.
func NewRatesAgent(service RatesService, logger *logging.Logger) *RatesAgent {
	if logger == nil {
		logger = logging.Default()
	}
	return &RatesAgent{service: service, logger: logger.Component("agent.rates")}
}

// Name implements Agent.
func (a *RatesAgent) Name() string { return "rates" }

// Run implements Agent.
func (a *RatesAgent) Run(ctx context.Context, in Input) (Result, error) {
	return a.run(ctx, in, nil)
}

// RunStream implements StreamingAgent. Rates responses are
// deterministic, so the whole content goes out as one fragment.
func (a *RatesAgent) RunStream(ctx context.Context, in Input, emit func(token string) error) (Result, error) {
	return a.run(ctx, in, emit)
}

func (a *RatesAgent) run(ctx context.Context, in Input, emit func(token string) error) (Result, error) {
	origin := stringParam(in.Parameters, "origin_city")
	destination := stringParam(in.Parameters, "destination_city")
	weight := stringParam(in.Parameters, "weight")

	var missing []string
	if origin == "" {
		missing = append(missing, "origin city")
	}
	if destination == "" {
		missing = append(missing, "destination city")
	}
	if weight == "" {
		missing = append(missing, "weight")
	}
	if len(missing) > 0 {
		a.logger.Info("rate inquiry missing parameters",
			"missing", missing, "conversation_id", in.ConversationID)
		return emitWhole(Result{
			Content:            ratesClarification,
			Metadata:           map[string]any{"missing": missing},
			NeedsClarification: true,
		}, emit)
	}

	query := smsa.RateQuery{
		FromCountry: countryOrDefault(stringParam(in.Parameters, "origin_country")),
		FromCity:    origin,
		ToCountry:   countryOrDefault(stringParam(in.Parameters, "destination_country")),
		ToCity:      destination,
		WeightKG:    weight,
	}

	a.logger.Info("rate inquiry",
		"from", query.FromCity, "to", query.ToCity, "weight", query.WeightKG,
		"conversation_id", in.ConversationID)

	options, err := a.service.Quote(ctx, query)
	if err != nil {
		a.logger.Error("rate inquiry failed", "error", err)
		return emitWhole(Result{
			Content:  "I could not fetch shipping rates right now. Please try again in a moment.",
			Metadata: map[string]any{"error": err.Error()},
		}, emit)
	}
	if len(options) == 0 {
		return emitWhole(Result{
			Content: fmt.Sprintf("No shipping options were found from %s to %s for %s kg. "+
				"Please check the city names and try again.", origin, destination, weight),
		}, emit)
	}

	return emitWhole(Result{
		Content: formatRateOptions(query, options),
		Type:    "rate_options",
		Results: options,
	}, emit)
}

func formatRateOptions(q smsa.RateQuery, options []smsa.RateOption) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Shipping options from %s to %s for %s kg:\n", q.FromCity, q.ToCity, q.WeightKG)
	for _, opt := range options {
		fmt.Fprintf(&sb, "- %s: %.2f %s total (%.2f + %.2f VAT)\n",
			opt.Product, opt.TotalAmount, opt.Currency, opt.Amount, opt.VatAmount)
	}
	sb.WriteString("Prices include VAT where shown. Book at your nearest SMSA center or online.")
	return sb.String()
}

func countryOrDefault(country string) string {
	if country == "" {
		return defaultRateCountry
	}
	return country
}
