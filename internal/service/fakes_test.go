package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/AVVlasov/procurement-pl-sub001/internal/models"
	"github.com/AVVlasov/procurement-pl-sub001/internal/repository"
	"github.com/AVVlasov/procurement-pl-sub001/internal/storage"
)

type fakeMessageRepo struct {
	msgs      []*models.Message
	insertErr error
	markErr   error
	markCalls int
}

func (r *fakeMessageRepo) Insert(ctx context.Context, m *models.Message) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	cp := *m
	r.msgs = append(r.msgs, &cp)
	return nil
}

func (r *fakeMessageRepo) ListByThread(ctx context.Context, threadID string) ([]*models.Message, error) {
	out := []*models.Message{}
	for _, m := range r.msgs {
		if m.ThreadID == threadID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeMessageRepo) ListByCompany(ctx context.Context, company models.CompanyID) ([]*models.Message, error) {
	out := []*models.Message{}
	for _, m := range r.msgs {
		if m.SenderID == company || m.RecipientID == company {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkThreadRead(ctx context.Context, threadID string, recipient models.CompanyID) (int64, error) {
	r.markCalls++
	if r.markErr != nil {
		return 0, r.markErr
	}
	var n int64
	for _, m := range r.msgs {
		if m.ThreadID == threadID && m.RecipientID == recipient && !m.Read {
			m.Read = true
			n++
		}
	}
	return n, nil
}

func (r *fakeMessageRepo) CountUnread(ctx context.Context, recipient models.CompanyID) (int64, error) {
	var n int64
	for _, m := range r.msgs {
		if m.RecipientID == recipient && !m.Read {
			n++
		}
	}
	return n, nil
}

type fakeRequestRepo struct {
	recs           map[string]*models.RequestRecord
	failFor        map[models.CompanyID]error
	setResponseErr error
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{recs: map[string]*models.RequestRecord{}, failFor: map[models.CompanyID]error{}}
}

func (r *fakeRequestRepo) Insert(ctx context.Context, rec *models.RequestRecord) error {
	if err := r.failFor[rec.RecipientID]; err != nil {
		return err
	}
	cp := *rec
	r.recs[rec.ID] = &cp
	return nil
}

func (r *fakeRequestRepo) Get(ctx context.Context, id string) (*models.RequestRecord, error) {
	rec, ok := r.recs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeRequestRepo) SetResponse(ctx context.Context, id string, status models.RequestStatus, response string, files []models.FileRef, at time.Time) (*models.RequestRecord, error) {
	if r.setResponseErr != nil {
		return nil, r.setResponseErr
	}
	rec, ok := r.recs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rec.Status = status
	rec.Response = response
	rec.ResponseFiles = files
	rec.RespondedAt = &at
	rec.UpdatedAt = at
	cp := *rec
	return &cp, nil
}

func (r *fakeRequestRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.recs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.recs, id)
	return nil
}

func (r *fakeRequestRepo) ListBySender(ctx context.Context, sender models.CompanyID) ([]*models.RequestRecord, error) {
	out := []*models.RequestRecord{}
	for _, rec := range r.recs {
		if rec.SenderID == sender {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) ListByRecipient(ctx context.Context, recipient models.CompanyID) ([]*models.RequestRecord, error) {
	out := []*models.RequestRecord{}
	for _, rec := range r.recs {
		if rec.RecipientID == recipient {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeProductRepo struct {
	products map[string]*models.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*models.Product{}}
}

func (r *fakeProductRepo) Insert(ctx context.Context, p *models.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Get(ctx context.Context, id string) (*models.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *models.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) ListByCompany(ctx context.Context, company models.CompanyID) ([]*models.Product, error) {
	out := []*models.Product{}
	for _, p := range r.products {
		if p.CompanyID == company {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Search(ctx context.Context, query string, limit int64) ([]*models.Product, error) {
	return r.ListByCompany(ctx, "")
}

type fakeCompanyRepo struct {
	companies map[models.CompanyID]*models.Company
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{companies: map[models.CompanyID]*models.Company{}}
}

func (r *fakeCompanyRepo) Get(ctx context.Context, id models.CompanyID) (*models.Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCompanyRepo) Update(ctx context.Context, c *models.Company) error {
	cp := *c
	r.companies[c.ID] = &cp
	return nil
}

func (r *fakeCompanyRepo) Search(ctx context.Context, query string, limit int64) ([]*models.Company, error) {
	out := []*models.Company{}
	for _, c := range r.companies {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

// fakeStore keeps objects in memory and records deletions and opens.
type fakeStore struct {
	objects map[string][]byte
	saveErr error
	deleted []string
	opened  []string
	seq     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Save(ctx context.Context, area, name, contentType string, data []byte) (storage.Stored, error) {
	if s.saveErr != nil {
		return storage.Stored{}, s.saveErr
	}
	s.seq++
	path := fmt.Sprintf("%s/obj%d_%s", area, s.seq, name)
	s.objects[path] = data
	return storage.Stored{Path: path}, nil
}

func (s *fakeStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	s.opened = append(s.opened, path)
	data, ok := s.objects[path]
	if !ok {
		return nil, fmt.Errorf("no object at %s", path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStore) Delete(ctx context.Context, path string) error {
	s.deleted = append(s.deleted, path)
	delete(s.objects, path)
	return nil
}
