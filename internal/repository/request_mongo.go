package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AVVlasov/procurement-pl-sub001/internal/models"
)

type MongoRequestRepository struct {
	coll *mongo.Collection
}

func NewMongoRequestRepository(db *mongo.Database) *MongoRequestRepository {
	r := &MongoRequestRepository{coll: db.Collection("requests")}
	_, _ = r.coll.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return r
}

func (r *MongoRequestRepository) Insert(ctx context.Context, rec *models.RequestRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.coll.InsertOne(ctx, rec)
	return err
}

func (r *MongoRequestRepository) Get(ctx context.Context, id string) (*models.RequestRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var rec models.RequestRecord
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *MongoRequestRepository) SetResponse(ctx context.Context, id string, status models.RequestStatus, response string, files []models.FileRef, at time.Time) (*models.RequestRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if files == nil {
		files = []models.FileRef{}
	}
	res := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":         status,
			"response":       response,
			"response_files": files,
			"responded_at":   at,
			"updated_at":     at,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var rec models.RequestRecord
	if err := res.Decode(&rec); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *MongoRequestRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRequestRepository) ListBySender(ctx context.Context, sender models.CompanyID) ([]*models.RequestRecord, error) {
	return r.list(ctx, "sender_id", sender)
}

func (r *MongoRequestRepository) ListByRecipient(ctx context.Context, recipient models.CompanyID) ([]*models.RequestRecord, error) {
	return r.list(ctx, "recipient_id", recipient)
}

func (r *MongoRequestRepository) list(ctx context.Context, field string, company models.CompanyID) ([]*models.RequestRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{field: bson.M{"$in": companyIDValues(company)}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.RequestRecord{}
	for cur.Next(ctx) {
		var rec models.RequestRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, cur.Err()
}
