package entity

import "time"

// Purchase is an append-only ledger row.
type Purchase struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	CourseID   string    `json:"course_id"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	PaymentRef string    `json:"payment_ref,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
