package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// CompanyID is the canonical company identifier. Older documents recorded
// company references sometimes as plain strings and sometimes as ObjectIDs;
// everything is normalized to this type at the boundary so downstream
// comparisons are always plain string equality.
type CompanyID string

func (id CompanyID) String() string { return string(id) }
func (id CompanyID) IsZero() bool   { return id == "" }

// CompanyIDFrom normalizes the representations a company id shows up in.
func CompanyIDFrom(v interface{}) CompanyID {
	switch t := v.(type) {
	case CompanyID:
		return t
	case string:
		return CompanyID(t)
	case primitive.ObjectID:
		return CompanyID(t.Hex())
	case fmt.Stringer:
		return CompanyID(t.String())
	default:
		return ""
	}
}

func (id CompanyID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bsontype.String, bsoncore.AppendString(nil, string(id)), nil
}

// UnmarshalBSONValue accepts both string and ObjectID encodings, since legacy
// documents mix the two.
func (id *CompanyID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.String:
		s, _, ok := bsoncore.ReadString(data)
		if !ok {
			return fmt.Errorf("models: malformed bson string for company id")
		}
		*id = CompanyID(s)
	case bsontype.ObjectID:
		oid, _, ok := bsoncore.ReadObjectID(data)
		if !ok {
			return fmt.Errorf("models: malformed bson objectid for company id")
		}
		*id = CompanyID(primitive.ObjectID(oid).Hex())
	case bsontype.Null:
		*id = ""
	default:
		return fmt.Errorf("models: cannot decode %s into company id", t)
	}
	return nil
}

type Company struct {
	ID          CompanyID `bson:"_id,omitempty" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	INN         string    `bson:"inn,omitempty" json:"inn,omitempty"`
	Website     string    `bson:"website,omitempty" json:"website,omitempty"`
	Email       string    `bson:"email,omitempty" json:"email,omitempty"`
	Phone       string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Logo        *FileRef  `bson:"logo,omitempty" json:"logo,omitempty"`
	LogoThumb   string    `bson:"logo_thumb,omitempty" json:"logo_thumb,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
