package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AVVlasov/procurement-pl-sub001/internal/models"
)

type MongoMessageRepository struct {
	coll *mongo.Collection
}

func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	r := &MongoMessageRepository{coll: db.Collection("messages")}
	_, _ = r.coll.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "thread_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "read", Value: 1}}},
		{Keys: bson.D{{Key: "sender_id", Value: 1}}},
	})
	return r
}

func (r *MongoMessageRepository) Insert(ctx context.Context, m *models.Message) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.coll.InsertOne(ctx, m)
	return err
}

func (r *MongoMessageRepository) ListByThread(ctx context.Context, threadID string) ([]*models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"thread_id": threadID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	return decodeMessages(ctx, cur)
}

func (r *MongoMessageRepository) ListByCompany(ctx context.Context, company models.CompanyID) ([]*models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	vals := companyIDValues(company)
	filter := bson.M{"$or": []bson.M{
		{"sender_id": bson.M{"$in": vals}},
		{"recipient_id": bson.M{"$in": vals}},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	return decodeMessages(ctx, cur)
}

func (r *MongoMessageRepository) MarkThreadRead(ctx context.Context, threadID string, recipient models.CompanyID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"thread_id": threadID, "recipient_id": bson.M{"$in": companyIDValues(recipient)}, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *MongoMessageRepository) CountUnread(ctx context.Context, recipient models.CompanyID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{"recipient_id": bson.M{"$in": companyIDValues(recipient)}, "read": false})
}

// companyIDValues covers both encodings a company reference appears under in
// legacy documents: plain string and ObjectID.
func companyIDValues(id models.CompanyID) []interface{} {
	vals := []interface{}{string(id)}
	if oid, err := primitive.ObjectIDFromHex(string(id)); err == nil {
		vals = append(vals, oid)
	}
	return vals
}

func decodeMessages(ctx context.Context, cur *mongo.Cursor) ([]*models.Message, error) {
	out := []*models.Message{}
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, cur.Err()
}
