package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractParametersWeight(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"rates for 5kg", "5"},
		{"rates for 5 kg", "5"},
		{"about 2.5 kilograms", "2.5"},
		{"a 10 kilo box", "10"},
	}
	for _, tt := range tests {
		params := ExtractParameters(tt.message)
		assert.Equal(t, tt.want, params["weight"], "message=%q", tt.message)
	}
}

func TestExtractParametersNoWeight(t *testing.T) {
	params := ExtractParameters("track my shipment please")
	_, ok := params["weight"]
	assert.False(t, ok)
}

func TestExtractParametersPieces(t *testing.T) {
	params := ExtractParameters("I want to send 3 boxes to Riyadh")
	assert.Equal(t, 3, params["pieces"])
}

func TestExtractParametersSingleCityIsDestination(t *testing.T) {
	params := ExtractParameters("how much to ship to jeddah")
	assert.Equal(t, "Jeddah", params["destination_city"])
	_, ok := params["origin_city"]
	assert.False(t, ok)
}

func TestExtractParametersTwoCitiesOrderedByTextPosition(t *testing.T) {
	// Slot assignment follows first occurrence in the text, not any
	// internal vocabulary order.
	params := ExtractParameters("from Jeddah to Riyadh")
	assert.Equal(t, "Jeddah", params["origin_city"])
	assert.Equal(t, "Riyadh", params["destination_city"])

	params = ExtractParameters("from Riyadh to Jeddah")
	assert.Equal(t, "Riyadh", params["origin_city"])
	assert.Equal(t, "Jeddah", params["destination_city"])
}

func TestExtractParametersCityAliases(t *testing.T) {
	params := ExtractParameters("ship from mecca to medina")
	assert.Equal(t, "Makkah", params["origin_city"])
	assert.Equal(t, "Madinah", params["destination_city"])
}

func TestExtractParametersWordBoundary(t *testing.T) {
	// "hail" inside "thailand" must not match the city.
	params := ExtractParameters("shipping to thailand")
	_, ok := params["destination_city"]
	assert.False(t, ok)
}

func TestExtractParametersRatesScenario(t *testing.T) {
	params := ExtractParameters("what are your rates from Riyadh to Jeddah for 5kg")
	assert.Equal(t, "5", params["weight"])
	assert.Equal(t, "Riyadh", params["origin_city"])
	assert.Equal(t, "Jeddah", params["destination_city"])
}

func TestExtractParametersIsDeterministic(t *testing.T) {
	message := "from Jeddah to Riyadh via Dammam"
	first := ExtractParameters(message)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, ExtractParameters(message))
	}
}
