package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AVVlasov/procurement-pl-sub001/internal/models"
)

var ErrNotFound = errors.New("not found")

type MessageRepository interface {
	Insert(ctx context.Context, m *models.Message) error
	// ListByThread returns the thread's messages in ascending created_at order.
	ListByThread(ctx context.Context, threadID string) ([]*models.Message, error)
	// ListByCompany returns every message the company sent or received, in
	// insertion order.
	ListByCompany(ctx context.Context, company models.CompanyID) ([]*models.Message, error)
	// MarkThreadRead flips read on the recipient's unread messages in the
	// thread and reports how many were flipped.
	MarkThreadRead(ctx context.Context, threadID string, recipient models.CompanyID) (int64, error)
	CountUnread(ctx context.Context, recipient models.CompanyID) (int64, error)
}

type RequestRepository interface {
	Insert(ctx context.Context, r *models.RequestRecord) error
	Get(ctx context.Context, id string) (*models.RequestRecord, error)
	// SetResponse atomically records the recipient's response on a single
	// document and returns the updated record.
	SetResponse(ctx context.Context, id string, status models.RequestStatus, response string, files []models.FileRef, at time.Time) (*models.RequestRecord, error)
	Delete(ctx context.Context, id string) error
	ListBySender(ctx context.Context, sender models.CompanyID) ([]*models.RequestRecord, error)
	ListByRecipient(ctx context.Context, recipient models.CompanyID) ([]*models.RequestRecord, error)
}

type ProductRepository interface {
	Insert(ctx context.Context, p *models.Product) error
	Get(ctx context.Context, id string) (*models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) error
	ListByCompany(ctx context.Context, company models.CompanyID) ([]*models.Product, error)
	Search(ctx context.Context, query string, limit int64) ([]*models.Product, error)
}

type CompanyRepository interface {
	Get(ctx context.Context, id models.CompanyID) (*models.Company, error)
	Update(ctx context.Context, c *models.Company) error
	Search(ctx context.Context, query string, limit int64) ([]*models.Company, error)
}

// Connect dials MongoDB and pings it.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

func regexEscape(s string) string {
	return regexp.QuoteMeta(s)
}
