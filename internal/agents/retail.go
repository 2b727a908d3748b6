package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/smsa"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/pkg/logging"
)

const retailClarification = "Which city are you looking for? Tell me the city name and I will " +
	"list the SMSA service centers there."

// RetailService is the provider surface the retail centers agent needs.
type RetailService interface {
	CentersByCity(ctx context.Context, city string) ([]smsa.RetailCenter, error)
}

// RetailAgent looks up SMSA service centers for a city.
type RetailAgent struct {
	service RetailService
	logger  *logging.Logger
}

// NewRetailAgent creates the retail centers agent.
func NewRetailAgent(service RetailService, logger *logging.Logger) *RetailAgent {
	if logger == nil {
		logger = logging.Default()
	}
	return &RetailAgent{service: service, logger: logger.Component("agent.retail")}
}

// Name implements Agent.
func (a *RetailAgent) Name() string { return "retail_centers" }

// Run implements Agent.
func (a *RetailAgent) Run(ctx context.Context, in Input) (Result, error) {
	return a.run(ctx, in, nil)
}

// RunStream implements StreamingAgent.
func (a *RetailAgent) RunStream(ctx context.Context, in Input, emit func(token string) error) (Result, error) {
	return a.run(ctx, in, emit)
}

func (a *RetailAgent) run(ctx context.Context, in Input, emit func(token string) error) (Result, error) {
	city := stringParam(in.Parameters, "city")
	if city == "" {
		// A location question usually names just one city; the
		// extractor records a lone city in the destination slot.
		city = stringParam(in.Parameters, "destination_city")
	}
	if city == "" {
		city = stringParam(in.Parameters, "origin_city")
	}
	if city == "" {
		return emitWhole(Result{
			Content:            retailClarification,
			NeedsClarification: true,
		}, emit)
	}

	a.logger.Info("retail center lookup", "city", city, "conversation_id", in.ConversationID)

	centers, err := a.service.CentersByCity(ctx, city)
	if err != nil {
		a.logger.Error("retail center lookup failed", "error", err)
		return emitWhole(Result{
			Content:  "I could not look up service centers right now. Please try again in a moment.",
			Metadata: map[string]any{"error": err.Error()},
		}, emit)
	}
	if len(centers) == 0 {
		return emitWhole(Result{
			Content: fmt.Sprintf("I could not find any SMSA service centers in %s. "+
				"Please check the city name or try a nearby city.", city),
		}, emit)
	}

	return emitWhole(Result{
		Content: formatCenters(city, centers),
		Type:    "retail_centers",
		Results: centers,
	}, emit)
}

func formatCenters(city string, centers []smsa.RetailCenter) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SMSA service centers in %s:\n", city)
	for _, c := range centers {
		fmt.Fprintf(&sb, "- %s, %s", c.Name, c.Address)
		if c.WorkingHours != "" {
			fmt.Fprintf(&sb, " (hours: %s)", c.WorkingHours)
		}
		if c.Phone != "" {
			fmt.Fprintf(&sb, ", phone %s", c.Phone)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
