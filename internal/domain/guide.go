package domain

import "time"

type TourGuideAssignment struct {
	ID              string    `json:"id"`
	TripDepartureID string    `json:"trip_departure_id"`
	TransportID     string    `json:"transport_id"`
	Name            string    `json:"name"`
	AssignedSeatID  *string   `json:"assigned_seat_id"`
	UpdatedAt       time.Time `json:"updated_at"`
}
