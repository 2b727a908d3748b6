// Package smsa wraps the SMSA Express provider APIs (tracking, rate
// inquiry, retail center lookup) behind narrow typed clients.
package smsa

import "time"

// TrackingStatus is the coarse shipment state derived from SMSA status codes.
type TrackingStatus string

const (
	StatusPending        TrackingStatus = "PENDING"
	StatusInTransit      TrackingStatus = "IN_TRANSIT"
	StatusOutForDelivery TrackingStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      TrackingStatus = "DELIVERED"
	StatusException      TrackingStatus = "EXCEPTION"
	StatusUnknown        TrackingStatus = "UNKNOWN"
)

// TrackingCheckpoint is one scan event in a shipment's history.
type TrackingCheckpoint struct {
	Timestamp   time.Time `json:"timestamp"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	StatusCode  string    `json:"statusCode,omitempty"`
}

// TrackingResult is the normalized outcome of tracking one AWB.
type TrackingResult struct {
	AWB             string               `json:"awb"`
	Status          TrackingStatus       `json:"status"`
	FriendlyStatus  string               `json:"friendlyStatus,omitempty"`
	CurrentLocation string               `json:"currentLocation,omitempty"`
	LastUpdate      string               `json:"lastUpdate,omitempty"`
	Checkpoints     []TrackingCheckpoint `json:"checkpoints,omitempty"`
	ErrorCode       string               `json:"errorCode,omitempty"`
	ErrorMessage    string               `json:"errorMessage,omitempty"`
}

// RateOption is one service-level price quote.
type RateOption struct {
	Product       string  `json:"Product"`
	ProductCode   string  `json:"ProductCode"`
	Amount        float64 `json:"Amount"`
	VatAmount     float64 `json:"VatAmount"`
	TotalAmount   float64 `json:"TotalAmount"`
	Currency      string  `json:"Currency"`
	VatPercentage string  `json:"VatPercentage"`
}

// RateQuery describes one origin/destination/weight rate inquiry.
type RateQuery struct {
	FromCountry string
	FromCity    string
	ToCountry   string
	ToCity      string
	WeightKG    string
}

// RetailCenter is one SMSA service center.
type RetailCenter struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Phone        string `json:"phone,omitempty"`
	WorkingHours string `json:"workingHours,omitempty"`
}
