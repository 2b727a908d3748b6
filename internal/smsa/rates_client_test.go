package smsa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatesClientQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rateInquiryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Riyadh", req.FromCity)
		assert.Equal(t, "Jeddah", req.ToCity)
		assert.Equal(t, "5", req.Weight)
		assert.Equal(t, "secret", req.Passkey)
		// Provider requires these constants on every request.
		assert.Equal(t, "documents", req.Documents)
		assert.Equal(t, "Parcel", req.ProductCategory)

		_ = json.NewEncoder(w).Encode(rateInquiryResponse{
			Success: true,
			Data: []RateOption{
				{Product: "SMSA Priority Parcels", ProductCode: "DP", Amount: 40, VatAmount: 6, TotalAmount: 46, Currency: "SAR", VatPercentage: "15%"},
			},
		})
	}))
	defer srv.Close()

	client, err := NewRatesClient(RatesConfig{BaseURL: srv.URL, Passkey: "secret"})
	require.NoError(t, err)

	options, err := client.Quote(context.Background(), RateQuery{
		FromCountry: "KSA", FromCity: "Riyadh",
		ToCountry: "KSA", ToCity: "Jeddah",
		WeightKG: "5",
	})
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "DP", options[0].ProductCode)
	assert.Equal(t, 46.0, options[0].TotalAmount)
}

func TestRatesClientUnsuccessfulResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(rateInquiryResponse{Success: false})
	}))
	defer srv.Close()

	client, err := NewRatesClient(RatesConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Quote(context.Background(), RateQuery{FromCity: "Riyadh", ToCity: "Jeddah", WeightKG: "1"})
	require.Error(t, err)
}

func TestRetailClientCentersByCity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Jeddah", r.URL.Query().Get("city"))
		_ = json.NewEncoder(w).Encode([]RetailCenter{
			{Name: "Jeddah Center", Address: "Prince Sultan Rd", City: "Jeddah", WorkingHours: "9-9"},
		})
	}))
	defer srv.Close()

	client, err := NewRetailClient(RetailConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	centers, err := client.CentersByCity(context.Background(), "Jeddah")
	require.NoError(t, err)
	require.Len(t, centers, 1)
	assert.Equal(t, "Jeddah Center", centers[0].Name)
}
