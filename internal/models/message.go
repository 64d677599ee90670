package models

import "time"

type Message struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	ThreadID    string    `bson:"thread_id" json:"thread_id"`
	SenderID    CompanyID `bson:"sender_id" json:"sender_id"`
	RecipientID CompanyID `bson:"recipient_id,omitempty" json:"recipient_id,omitempty"`
	Text        string    `bson:"text" json:"text"`
	Read        bool      `bson:"read" json:"read"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// ThreadSummary is one entry of the "my threads" listing: the latest message
// of the thread plus the counterpart and how many messages are still unread.
type ThreadSummary struct {
	ThreadID      string    `json:"thread_id"`
	CounterpartID CompanyID `json:"counterpart_id"`
	LastMessage   *Message  `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
	UnreadCount   int       `json:"unread_count"`
}
