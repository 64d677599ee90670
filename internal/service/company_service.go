package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AVVlasov/procurement-pl-sub001/internal/apperr"
	"github.com/AVVlasov/procurement-pl-sub001/internal/models"
	"github.com/AVVlasov/procurement-pl-sub001/internal/repository"
	"github.com/AVVlasov/procurement-pl-sub001/internal/storage"
	"github.com/AVVlasov/procurement-pl-sub001/internal/uploads"
)

type CompanyService struct {
	repo        repository.CompanyRepository
	store       storage.FileStore
	log         *zap.SugaredLogger
	maxFileSize int64
}

func NewCompanyService(repo repository.CompanyRepository, store storage.FileStore, log *zap.SugaredLogger, maxFileSize int64) *CompanyService {
	return &CompanyService{repo: repo, store: store, log: log, maxFileSize: maxFileSize}
}

func (s *CompanyService) Get(ctx context.Context, id models.CompanyID) (*models.Company, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("company not found")
		}
		return nil, apperr.Wrap(apperr.KindStorage, "loading company", err)
	}
	return c, nil
}

type UpdateCompanyInput struct {
	Name        string
	Description string
	INN         string
	Website     string
	Email       string
	Phone       string
	Address     string
}

func (s *CompanyService) UpdateProfile(ctx context.Context, id models.CompanyID, in UpdateCompanyInput) (*models.Company, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("company name is required")
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Wrap(apperr.KindStorage, "loading company", err)
	}
	now := time.Now().UTC()
	if c == nil {
		c = &models.Company{ID: id, CreatedAt: now}
	}
	c.Name = in.Name
	c.Description = in.Description
	c.INN = in.INN
	c.Website = in.Website
	c.Email = in.Email
	c.Phone = in.Phone
	c.Address = in.Address
	c.UpdatedAt = now
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "saving company", err)
	}
	return c, nil
}

// UploadLogo stores the image plus a 320px JPEG thumbnail and replaces the
// previous logo. Old logo cleanup is best-effort.
func (s *CompanyService) UploadLogo(ctx context.Context, id models.CompanyID, u uploads.Upload) (*models.Company, error) {
	if err := uploads.ValidateImage(u, s.maxFileSize); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	st, err := s.store.Save(ctx, storage.AreaLogos, u.Name, u.ContentType, u.Data)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "storing logo", err)
	}
	thumbPath := ""
	if thumb, err := makeThumbnail(u.Data); err == nil {
		if ts, err := s.store.Save(ctx, storage.AreaLogos, "thumb_"+u.Name+".jpg", "image/jpeg", thumb); err == nil {
			thumbPath = ts.Path
		}
	} else {
		s.log.Warnw("thumbnail generation failed", "company_id", id, "err", err)
	}

	oldLogo, oldThumb := c.Logo, c.LogoThumb
	c.Logo = &models.FileRef{
		ID:          uuid.NewString(),
		Name:        u.Name,
		ContentType: u.ContentType,
		Size:        u.Size,
		StoragePath: st.Path,
		URL:         st.URL,
	}
	c.LogoThumb = thumbPath
	c.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "saving company", err)
	}

	if oldLogo != nil {
		if err := s.store.Delete(ctx, oldLogo.StoragePath); err != nil {
			s.log.Warnw("old logo cleanup failed", "path", oldLogo.StoragePath, "err", err)
		}
	}
	if oldThumb != "" {
		if err := s.store.Delete(ctx, oldThumb); err != nil {
			s.log.Warnw("old logo thumbnail cleanup failed", "path", oldThumb, "err", err)
		}
	}
	return c, nil
}

func (s *CompanyService) Search(ctx context.Context, query string, limit int64) ([]*models.Company, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperr.Validation("search query is required")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	out, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "searching companies", err)
	}
	return out, nil
}

func makeThumbnail(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	thumb := imaging.Resize(img, 320, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
