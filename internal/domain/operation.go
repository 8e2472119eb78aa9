package domain

import "time"

type OperationKind string

const (
	OperationAssign     OperationKind = "assign"
	OperationFree       OperationKind = "free"
	OperationMove       OperationKind = "move"
	OperationBlock      OperationKind = "block"
	OperationUnblock    OperationKind = "unblock"
	OperationBulkAssign OperationKind = "bulk_assign"
)

type BulkPair struct {
	SeatID        string `json:"seat_id"`
	SeatLabel     string `json:"seat_label"`
	PassengerName string `json:"passenger_name"`
}

// SeatOperation is an audit record. Seat labels and passenger names are copied in
// so history renders after the seat or assignment is gone.
type SeatOperation struct {
	ID            string        `json:"id"`
	Seq           int64         `json:"seq"`
	Kind          OperationKind `json:"kind"`
	TransportID   string        `json:"transport_id,omitempty"`
	SeatID        string        `json:"seat_id,omitempty"`
	SeatLabel     string        `json:"seat_label,omitempty"`
	PassengerName string        `json:"passenger_name,omitempty"`
	FromSeatID    string        `json:"from_seat_id,omitempty"`
	FromSeatLabel string        `json:"from_seat_label,omitempty"`
	ToSeatID      string        `json:"to_seat_id,omitempty"`
	ToSeatLabel   string        `json:"to_seat_label,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Pairs         []BulkPair    `json:"pairs,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}
