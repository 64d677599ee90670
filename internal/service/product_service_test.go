package service

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AVVlasov/procurement-pl-sub001/internal/apperr"
	"github.com/AVVlasov/procurement-pl-sub001/internal/logger"
	"github.com/AVVlasov/procurement-pl-sub001/internal/models"
	"github.com/AVVlasov/procurement-pl-sub001/internal/uploads"
)

func newProductFixture() (*ProductService, *fakeProductRepo, *fakeStore) {
	prods := newFakeProductRepo()
	store := newFakeStore()
	svc := NewProductService(prods, store, logger.Nop(), testMaxFileSize)
	return svc, prods, store
}

func TestProductCreateAndGet(t *testing.T) {
	svc, _, store := newProductFixture()
	ctx := context.Background()

	p, err := svc.Create(ctx, "companyA", ProductInput{
		Name:        "Steel pipes",
		Description: "DN50",
		Category:    "metals",
		Files:       []uploads.Upload{pdfUpload("spec.pdf", "pdf-bytes")},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, models.CompanyID("companyA"), p.CompanyID)
	require.Len(t, p.Files, 1)
	assert.Len(t, store.objects, 1)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Steel pipes", got.Name)

	_, err = svc.Get(ctx, "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestProductCreateValidation(t *testing.T) {
	svc, _, store := newProductFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, "companyA", ProductInput{Name: "  "})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	bad := uploads.Upload{Name: "a.exe", ContentType: "application/x-msdownload", Size: 4, Data: []byte("exex")}
	_, err = svc.Create(ctx, "companyA", ProductInput{Name: "x", Files: []uploads.Upload{bad}})
	assert.Equal(t, apperr.KindUnsupportedFile, apperr.KindOf(err))
	assert.Empty(t, store.objects)
}

func TestProductUpdateOwnerOnly(t *testing.T) {
	svc, _, _ := newProductFixture()
	ctx := context.Background()

	p, err := svc.Create(ctx, "companyA", ProductInput{Name: "Pipes"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, p.ID, "companyB", ProductInput{Name: "Hijacked"})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	updated, err := svc.Update(ctx, p.ID, "companyA", ProductInput{
		Name:  "Pipes v2",
		Files: []uploads.Upload{pdfUpload("extra.pdf", "more")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Pipes v2", updated.Name)
	assert.Len(t, updated.Files, 1, "new files are appended")
}

func TestProductDelete(t *testing.T) {
	svc, _, store := newProductFixture()
	ctx := context.Background()

	p, err := svc.Create(ctx, "companyA", ProductInput{
		Name:  "Pipes",
		Files: []uploads.Upload{pdfUpload("spec.pdf", "data")},
	})
	require.NoError(t, err)

	err = svc.Delete(ctx, p.ID, "companyB")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	require.NoError(t, svc.Delete(ctx, p.ID, "companyA"))
	assert.Empty(t, store.objects, "product files removed with the product")

	err = svc.Delete(ctx, p.ID, "companyA")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestProductDownloadFileIsShared(t *testing.T) {
	svc, _, _ := newProductFixture()
	ctx := context.Background()

	p, err := svc.Create(ctx, "companyA", ProductInput{
		Name:  "Pipes",
		Files: []uploads.Upload{pdfUpload("spec.pdf", "pdf-bytes")},
	})
	require.NoError(t, err)

	// any authenticated company can read catalog documents
	rc, f, err := svc.DownloadFile(ctx, p.ID, p.Files[0].ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(data))
	assert.Equal(t, "spec.pdf", f.Name)

	_, _, err = svc.DownloadFile(ctx, p.ID, "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestProductSearchValidation(t *testing.T) {
	svc, _, _ := newProductFixture()

	_, err := svc.Search(context.Background(), "  ", 10)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
