package model

import "time"

// DeliveryJob is one pending webhook callback. Payload is the encoded JSON
// body; it is immutable once the job is enqueued.
type DeliveryJob struct {
	DeliveryID  string    `json:"delivery_id"`
	CallbackURL string    `json:"callback_url"`
	RequestID   string    `json:"request_id,omitempty"`
	Payload     []byte    `json:"-"`
	Attempt     int       `json:"attempt"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
}
