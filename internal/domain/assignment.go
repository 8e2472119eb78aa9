package domain

import "time"

type SeatAssignment struct {
	ID             string     `json:"id"`
	SeatID         string     `json:"seat_id"`
	TransportID    string     `json:"bus_transport_id"`
	PassengerName  string     `json:"passenger_name"`
	BookingRef     string     `json:"booking_ref,omitempty"`
	Preferences    string     `json:"preferences,omitempty"`
	PreferenceType string     `json:"preference_type,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Email          string     `json:"email,omitempty"`
	AssignedAt     time.Time  `json:"assigned_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// Relocated returns a copy bound to another seat, keeping the passenger data.
func (a SeatAssignment) Relocated(id, seatID string, at time.Time) SeatAssignment {
	moved := a
	moved.ID = id
	moved.SeatID = seatID
	moved.AssignedAt = at
	moved.UpdatedAt = nil
	return moved
}

type AssignmentPatch struct {
	PassengerName  *string `json:"passenger_name,omitempty"`
	BookingRef     *string `json:"booking_ref,omitempty"`
	Preferences    *string `json:"preferences,omitempty"`
	PreferenceType *string `json:"preference_type,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Email          *string `json:"email,omitempty"`
}

func (p AssignmentPatch) Empty() bool {
	return p.PassengerName == nil && p.BookingRef == nil && p.Preferences == nil &&
		p.PreferenceType == nil && p.Phone == nil && p.Email == nil
}

func (p AssignmentPatch) Apply(a *SeatAssignment) {
	if p.PassengerName != nil {
		a.PassengerName = *p.PassengerName
	}
	if p.BookingRef != nil {
		a.BookingRef = *p.BookingRef
	}
	if p.Preferences != nil {
		a.Preferences = *p.Preferences
	}
	if p.PreferenceType != nil {
		a.PreferenceType = *p.PreferenceType
	}
	if p.Phone != nil {
		a.Phone = *p.Phone
	}
	if p.Email != nil {
		a.Email = *p.Email
	}
}
