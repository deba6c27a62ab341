package model

import "time"

// FloorCall is a hall request for service at a floor in a given direction.
type FloorCall struct {
	Floor     int       `json:"floor"`
	Direction Direction `json:"direction"`
	CreatedAt time.Time `json:"timestamp"`
}

// Waited returns how long the call has been pending at now.
func (c FloorCall) Waited(now time.Time) time.Duration {
	return now.Sub(c.CreatedAt)
}

// DestinationRequest is an in-car request to add a stop to one car.
type DestinationRequest struct {
	ElevatorID int       `json:"elevatorId"`
	Floor      int       `json:"floor"`
	CreatedAt  time.Time `json:"timestamp"`
}
