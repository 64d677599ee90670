package models

import "time"

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"
)

func (s RequestStatus) Valid() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusRejected
}

// RequestRecord is one sender→recipient proposal. A bulk submission to N
// recipients fans out into N independent records, each with its own lifecycle.
type RequestRecord struct {
	ID            string        `bson:"_id,omitempty" json:"id"`
	SenderID      CompanyID     `bson:"sender_id" json:"sender_id"`
	RecipientID   CompanyID     `bson:"recipient_id" json:"recipient_id"`
	Subject       string        `bson:"subject" json:"subject"`
	Text          string        `bson:"text" json:"text"`
	ProductID     string        `bson:"product_id,omitempty" json:"product_id,omitempty"`
	Files         []FileRef     `bson:"files" json:"files"`
	Status        RequestStatus `bson:"status" json:"status"`
	Response      string        `bson:"response,omitempty" json:"response,omitempty"`
	ResponseFiles []FileRef     `bson:"response_files" json:"response_files"`
	RespondedAt   *time.Time    `bson:"responded_at,omitempty" json:"responded_at,omitempty"`
	CreatedAt     time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updated_at"`
}

// RecipientResult is one entry of the fan-out creation report. A failing
// recipient never rolls back the others.
type RecipientResult struct {
	RecipientID CompanyID `json:"recipient_id"`
	RequestID   string    `json:"request_id,omitempty"`
	OK          bool      `json:"ok"`
	Error       string    `json:"error,omitempty"`
}
