package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AVVlasov/procurement-pl-sub001/internal/logger"
	"github.com/AVVlasov/procurement-pl-sub001/internal/middleware"
	"github.com/AVVlasov/procurement-pl-sub001/internal/models"
	"github.com/AVVlasov/procurement-pl-sub001/internal/repository"
	"github.com/AVVlasov/procurement-pl-sub001/internal/service"
	"github.com/AVVlasov/procurement-pl-sub001/internal/storage"
)

type memRequestRepo struct {
	recs map[string]*models.RequestRecord
}

func (r *memRequestRepo) Insert(ctx context.Context, rec *models.RequestRecord) error {
	cp := *rec
	r.recs[rec.ID] = &cp
	return nil
}

func (r *memRequestRepo) Get(ctx context.Context, id string) (*models.RequestRecord, error) {
	rec, ok := r.recs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *memRequestRepo) SetResponse(ctx context.Context, id string, status models.RequestStatus, response string, files []models.FileRef, at time.Time) (*models.RequestRecord, error) {
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

func (r *memRequestRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.recs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.recs, id)
	return nil
}

func (r *memRequestRepo) ListBySender(ctx context.Context, sender models.CompanyID) ([]*models.RequestRecord, error) {
	return nil, nil
}

func (r *memRequestRepo) ListByRecipient(ctx context.Context, recipient models.CompanyID) ([]*models.RequestRecord, error) {
	return nil, nil
}

type memProductRepo struct{}

func (memProductRepo) Insert(ctx context.Context, p *models.Product) error { return nil }
func (memProductRepo) Get(ctx context.Context, id string) (*models.Product, error) {
	return nil, repository.ErrNotFound
}
func (memProductRepo) Update(ctx context.Context, p *models.Product) error { return nil }
func (memProductRepo) Delete(ctx context.Context, id string) error         { return nil }
func (memProductRepo) ListByCompany(ctx context.Context, company models.CompanyID) ([]*models.Product, error) {
	return nil, nil
}
func (memProductRepo) Search(ctx context.Context, query string, limit int64) ([]*models.Product, error) {
	return nil, nil
}

type memStore struct {
	objects map[string][]byte
	seq     int
}

func (s *memStore) Save(ctx context.Context, area, name, contentType string, data []byte) (storage.Stored, error) {
	s.seq++
	path := fmt.Sprintf("%s/obj%d_%s", area, s.seq, name)
	s.objects[path] = data
	return storage.Stored{Path: path}, nil
}

func (s *memStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	data, ok := s.objects[path]
	if !ok {
		return nil, fmt.Errorf("no object at %s", path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStore) Delete(ctx context.Context, path string) error {
	delete(s.objects, path)
	return nil
}

func newRespondFixture() (*fiber.App, *memRequestRepo, *memStore) {
	repo := &memRequestRepo{recs: map[string]*models.RequestRecord{
		"req1": {
			ID: "req1", SenderID: "companyA", RecipientID: "companyB",
			Subject: "Units", Text: "Need 100 units", Status: models.StatusPending,
			Files: []models.FileRef{}, ResponseFiles: []models.FileRef{},
		},
	}}
	store := &memStore{objects: map[string][]byte{}}
	svc := service.NewRequestService(repo, memProductRepo{}, store, nil, logger.Nop(), 15*1024*1024)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalCompanyID, models.CompanyID("companyB"))
		return c.Next()
	})
	rh := NewRequestHandler(svc)
	app.Put("/v1/requests/:id", rh.respond)
	return app, repo, store
}

func respondForm(t *testing.T, fileField string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("response", "Can deliver"))
	require.NoError(t, w.WriteField("status", "accepted"))

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, "offer.pdf"))
	h.Set("Content-Type", "application/pdf")
	fw, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = fw.Write([]byte("pdf-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestRespondEndpointStoresResponseFiles(t *testing.T) {
	for _, field := range []string{"responseFiles", "files"} {
		app, repo, store := newRespondFixture()

		body, contentType := respondForm(t, field)
		req := httptest.NewRequest("PUT", "/v1/requests/req1", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err, "field %q", field)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, "field %q", field)

		rec, err := repo.Get(context.Background(), "req1")
		require.NoError(t, err)
		assert.Equal(t, models.StatusAccepted, rec.Status, "field %q", field)
		require.Len(t, rec.ResponseFiles, 1, "field %q", field)
		assert.Equal(t, "offer.pdf", rec.ResponseFiles[0].Name)
		assert.Len(t, store.objects, 1, "field %q", field)
	}
}
