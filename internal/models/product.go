package models

import "time"

// Product is a catalog entry a company offers. Requests may reference
// a product; its files are copied by value into the request at creation time.
type Product struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	CompanyID   CompanyID `bson:"company_id" json:"company_id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Category    string    `bson:"category,omitempty" json:"category,omitempty"`
	Files       []FileRef `bson:"files" json:"files"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
