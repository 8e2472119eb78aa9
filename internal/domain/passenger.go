package domain

type PreferenceType string

const (
	PreferencePosition      PreferenceType = "position"
	PreferenceCompanion     PreferenceType = "companion"
	PreferenceAccessibility PreferenceType = "accessibility"
)

// UnassignedPassenger is supplied by the booking system and treated as read-only input.
type UnassignedPassenger struct {
	ID             string         `json:"id"`
	TransportID    string         `json:"transport_id"`
	BookingRef     string         `json:"booking_ref"`
	Name           string         `json:"name"`
	PreferenceText string         `json:"preference_text,omitempty"`
	PreferenceType PreferenceType `json:"preference_type,omitempty"`
	Accommodation  string         `json:"accommodation,omitempty"`
	Phone          string         `json:"phone,omitempty"`
	Email          string         `json:"email,omitempty"`
}
