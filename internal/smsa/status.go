package smsa

import "strings"

// friendlyStatusMap converts SMSA scan codes to user-facing text.
var friendlyStatusMap = map[string]string{
	"DLV":              "Delivered",
	"DEL":              "Delivered",
	"DELIVERED":        "Delivered",
	"RTS":              "Returned to Shipper",
	"RTN":              "Returned",
	"RETURNED":         "Returned",
	"PU":               "Picked Up",
	"PICKUP":           "Picked Up",
	"AF":               "Arrived at Facility",
	"ARRIVED":          "Arrived at Facility",
	"HIP":              "At Sorting Hub",
	"HOP":              "Departed Hub",
	"INT":              "In Transit",
	"TRANSIT":          "In Transit",
	"OFD":              "Out for Delivery",
	"OUT FOR DELIVERY": "Out for Delivery",
	"DEX14":            "Return in Progress",
	"DEX29":            "Rerouted",
	"RTI":              "Ready for Collection",
	"RTOPS":            "Collected from Retail",
	"SMS":              "SMS Notification Sent",
	"HOLD":             "On Hold",
	"CAN":              "Cancelled",
	"CANCELLED":        "Cancelled",
}

// FriendlyStatus converts an SMSA status code to display text, falling
// back to the event description when the code is unmapped.
func FriendlyStatus(statusCode, eventDesc string) string {
	code := strings.ToUpper(strings.TrimSpace(statusCode))
	if friendly, ok := friendlyStatusMap[code]; ok {
		return friendly
	}
	if eventDesc != "" && eventDesc != "Unknown" {
		return eventDesc
	}
	if code == "" {
		return "UNKNOWN"
	}
	return code
}

// statusEnum maps an SMSA status code into the coarse TrackingStatus set.
func statusEnum(statusCode string) TrackingStatus {
	code := strings.ToUpper(strings.TrimSpace(statusCode))
	switch code {
	case "DLV", "DEL", "DELIVERED":
		return StatusDelivered
	case "OFD", "OUT FOR DELIVERY":
		return StatusOutForDelivery
	case "RTS", "RTN", "RETURNED", "DEX14", "DEX29", "HOLD", "CAN", "CANCELLED":
		return StatusException
	case "PU", "PICKUP", "AF", "ARRIVED", "HIP", "HOP", "INT", "TRANSIT":
		return StatusInTransit
	case "":
		return StatusUnknown
	default:
		return StatusInTransit
	}
}
