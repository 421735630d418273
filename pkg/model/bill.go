package model

import "time"

const (
	BillPending = "pending"
	BillPaid    = "paid"
	BillOverdue = "overdue"
)

type Bill struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID string    `json:"booking_id" bson:"booking_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Amount    float64   `json:"amount" bson:"amount"`
	IssueDate time.Time `json:"issue_date" bson:"issue_date"`
	DueDate   time.Time `json:"due_date" bson:"due_date"`
	Status    string    `json:"status" bson:"status"`
}
