package domain

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

type BulkAssignmentSuggestion struct {
	PassengerID        string     `json:"passenger_id"`
	PassengerName      string     `json:"passenger_name"`
	SuggestedSeatID    string     `json:"suggested_seat_id"`
	SuggestedSeatLabel string     `json:"suggested_seat_label"`
	Reason             string     `json:"reason"`
	Confidence         Confidence `json:"confidence"`
	Conflicts          []string   `json:"conflicts"`
}
