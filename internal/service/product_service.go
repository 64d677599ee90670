package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AVVlasov/procurement-pl-sub001/internal/apperr"
	"github.com/AVVlasov/procurement-pl-sub001/internal/models"
	"github.com/AVVlasov/procurement-pl-sub001/internal/repository"
	"github.com/AVVlasov/procurement-pl-sub001/internal/storage"
	"github.com/AVVlasov/procurement-pl-sub001/internal/uploads"
)

type ProductService struct {
	repo        repository.ProductRepository
	store       storage.FileStore
	log         *zap.SugaredLogger
	maxFileSize int64
}

func NewProductService(repo repository.ProductRepository, store storage.FileStore, log *zap.SugaredLogger, maxFileSize int64) *ProductService {
	return &ProductService{repo: repo, store: store, log: log, maxFileSize: maxFileSize}
}

type ProductInput struct {
	Name        string
	Description string
	Category    string
	Files       []uploads.Upload
}

func (s *ProductService) Create(ctx context.Context, owner models.CompanyID, in ProductInput) (*models.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("product name is required")
	}
	for _, u := range in.Files {
		if err := uploads.ValidateDocument(u, s.maxFileSize); err != nil {
			return nil, err
		}
	}

	files := []models.FileRef{}
	for _, u := range in.Files {
		st, err := s.store.Save(ctx, storage.AreaProducts, u.Name, u.ContentType, u.Data)
		if err != nil {
			s.cleanup(ctx, files)
			return nil, apperr.Wrap(apperr.KindStorage, "storing product file", err)
		}
		files = append(files, models.FileRef{
			ID:          uuid.NewString(),
			Name:        u.Name,
			ContentType: u.ContentType,
			Size:        u.Size,
			StoragePath: st.Path,
			URL:         st.URL,
		})
	}

	now := time.Now().UTC()
	p := &models.Product{
		ID:          uuid.NewString(),
		CompanyID:   owner,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Files:       files,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		s.cleanup(ctx, files)
		return nil, apperr.Wrap(apperr.KindStorage, "saving product", err)
	}
	return p, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, apperr.Wrap(apperr.KindStorage, "loading product", err)
	}
	return p, nil
}

// Update replaces metadata and appends any new files. Only the owner may
// update. Requests created earlier are unaffected: they copied file metadata
// by value.
func (s *ProductService) Update(ctx context.Context, id string, actor models.CompanyID, in ProductInput) (*models.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("product name is required")
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.CompanyID != actor {
		return nil, apperr.Forbidden("only the owner may update a product")
	}
	for _, u := range in.Files {
		if err := uploads.ValidateDocument(u, s.maxFileSize); err != nil {
			return nil, err
		}
	}
	for _, u := range in.Files {
		st, err := s.store.Save(ctx, storage.AreaProducts, u.Name, u.ContentType, u.Data)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindStorage, "storing product file", err)
		}
		p.Files = append(p.Files, models.FileRef{
			ID:          uuid.NewString(),
			Name:        u.Name,
			ContentType: u.ContentType,
			Size:        u.Size,
			StoragePath: st.Path,
			URL:         st.URL,
		})
	}
	p.Name = in.Name
	p.Description = in.Description
	p.Category = in.Category
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "saving product", err)
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string, actor models.CompanyID) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.CompanyID != actor {
		return apperr.Forbidden("only the owner may delete a product")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("product not found")
		}
		return apperr.Wrap(apperr.KindStorage, "deleting product", err)
	}
	s.cleanup(ctx, p.Files)
	return nil
}

func (s *ProductService) ListMine(ctx context.Context, owner models.CompanyID) ([]*models.Product, error) {
	out, err := s.repo.ListByCompany(ctx, owner)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "listing products", err)
	}
	return out, nil
}

func (s *ProductService) Search(ctx context.Context, query string, limit int64) ([]*models.Product, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperr.Validation("search query is required")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	out, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "searching products", err)
	}
	return out, nil
}

// DownloadFile streams a product document. The catalog is visible to every
// authenticated company, so no ownership check.
func (s *ProductService) DownloadFile(ctx context.Context, id, fileID string) (io.ReadCloser, *models.FileRef, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	f := findFile(p.Files, fileID)
	if f == nil {
		return nil, nil, apperr.NotFound("file not found on product")
	}
	rc, err := s.store.Open(ctx, f.StoragePath)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindStorage, "opening product file", err)
	}
	return rc, f, nil
}

func (s *ProductService) cleanup(ctx context.Context, files []models.FileRef) {
	for _, f := range files {
		if err := s.store.Delete(ctx, f.StoragePath); err != nil {
			s.log.Warnw("product file cleanup failed", "path", f.StoragePath, "err", err)
		}
	}
}
