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

type MongoCompanyRepository struct {
	coll *mongo.Collection
}

func NewMongoCompanyRepository(db *mongo.Database) *MongoCompanyRepository {
	r := &MongoCompanyRepository{coll: db.Collection("companies")}
	_, _ = r.coll.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
	})
	return r
}

func (r *MongoCompanyRepository) Get(ctx context.Context, id models.CompanyID) (*models.Company, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var c models.Company
	if err := r.coll.FindOne(ctx, bson.M{"_id": bson.M{"$in": companyIDValues(id)}}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoCompanyRepository) Update(ctx context.Context, c *models.Company) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": bson.M{"$in": companyIDValues(c.ID)}}, c, options.Replace().SetUpsert(true))
	return err
}

func (r *MongoCompanyRepository) Search(ctx context.Context, query string, limit int64) ([]*models.Company, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	filter := bson.M{"name": bson.M{"$regex": primitive.Regex{Pattern: regexEscape(query), Options: "i"}}}
	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Company{}
	for cur.Next(ctx) {
		var c models.Company
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}
