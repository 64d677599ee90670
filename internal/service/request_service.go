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
	"github.com/AVVlasov/procurement-pl-sub001/internal/events"
	"github.com/AVVlasov/procurement-pl-sub001/internal/models"
	"github.com/AVVlasov/procurement-pl-sub001/internal/repository"
	"github.com/AVVlasov/procurement-pl-sub001/internal/storage"
	"github.com/AVVlasov/procurement-pl-sub001/internal/uploads"
)

type RequestService struct {
	requests    repository.RequestRepository
	products    repository.ProductRepository
	store       storage.FileStore
	pub         *events.Publisher
	log         *zap.SugaredLogger
	maxFileSize int64
}

func NewRequestService(requests repository.RequestRepository, products repository.ProductRepository, store storage.FileStore, pub *events.Publisher, log *zap.SugaredLogger, maxFileSize int64) *RequestService {
	return &RequestService{
		requests:    requests,
		products:    products,
		store:       store,
		pub:         pub,
		log:         log,
		maxFileSize: maxFileSize,
	}
}

type CreateRequestInput struct {
	Sender     models.CompanyID
	Recipients []models.CompanyID
	Text       string
	Subject    string
	ProductID  string
	Files      []uploads.Upload
}

// Create fans one submission out into an independent request per recipient.
// A recipient whose save fails gets a failure entry in the result list; the
// others are unaffected. A fatal validation failure deletes any files this
// call already stored before returning.
func (s *RequestService) Create(ctx context.Context, in CreateRequestInput) ([]models.RecipientResult, error) {
	for _, u := range in.Files {
		if err := uploads.ValidateDocument(u, s.maxFileSize); err != nil {
			return nil, err
		}
	}

	stored, err := s.storeUploads(ctx, storage.AreaRequests, in.Files)
	if err != nil {
		return nil, err
	}

	recipients := normalizeRecipients(in.Recipients)
	if len(recipients) == 0 {
		s.deleteFiles(ctx, stored)
		return nil, apperr.Validation("at least one recipient is required")
	}
	if strings.TrimSpace(in.Text) == "" {
		s.deleteFiles(ctx, stored)
		return nil, apperr.Validation("request text is required")
	}

	var product *models.Product
	if in.ProductID != "" {
		product, err = s.products.Get(ctx, in.ProductID)
		if err != nil {
			s.deleteFiles(ctx, stored)
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperr.NotFound("referenced product not found")
			}
			return nil, apperr.Wrap(apperr.KindStorage, "loading product", err)
		}
	}

	subject := strings.TrimSpace(in.Subject)
	if subject == "" && product != nil {
		subject = product.Name
	}
	if subject == "" {
		s.deleteFiles(ctx, stored)
		return nil, apperr.Validation("subject is required")
	}

	files := stored
	if len(files) == 0 && product != nil && len(product.Files) > 0 {
		files = inheritFiles(product.Files)
	}
	if files == nil {
		files = []models.FileRef{}
	}

	now := time.Now().UTC()
	results := make([]models.RecipientResult, 0, len(recipients))
	for _, rcpt := range recipients {
		rec := &models.RequestRecord{
			ID:            uuid.NewString(),
			SenderID:      in.Sender,
			RecipientID:   rcpt,
			Subject:       subject,
			Text:          in.Text,
			ProductID:     in.ProductID,
			Files:         files,
			Status:        models.StatusPending,
			ResponseFiles: []models.FileRef{},
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.requests.Insert(ctx, rec); err != nil {
			s.log.Errorw("request save failed", "recipient_id", rcpt, "err", err)
			results = append(results, models.RecipientResult{RecipientID: rcpt, OK: false, Error: "could not save request"})
			continue
		}
		results = append(results, models.RecipientResult{RecipientID: rcpt, RequestID: rec.ID, OK: true})
		s.pub.Publish(events.Event{Type: events.TypeRequestCreated, CompanyID: in.Sender, RecipientID: rcpt, EntityID: rec.ID})
	}
	return results, nil
}

// Respond records the recipient's answer. Supplying new files deletes the
// previously stored response files; the replacement is destructive, not
// additive. Re-invocation overwrites the earlier response rather than being
// rejected.
func (s *RequestService) Respond(ctx context.Context, id string, responder models.CompanyID, responseText string, status models.RequestStatus, files []uploads.Upload) (*models.RequestRecord, error) {
	if status != models.StatusAccepted && status != models.StatusRejected {
		return nil, apperr.Validation("status must be accepted or rejected")
	}
	if strings.TrimSpace(responseText) == "" {
		return nil, apperr.Validation("response text is required")
	}
	for _, u := range files {
		if err := uploads.ValidateDocument(u, s.maxFileSize); err != nil {
			return nil, err
		}
	}

	rec, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.RecipientID != responder {
		return nil, apperr.Forbidden("only the recipient may respond to a request")
	}

	responseFiles := rec.ResponseFiles
	var stored []models.FileRef
	if len(files) > 0 {
		stored, err = s.storeUploads(ctx, storage.AreaRequests, files)
		if err != nil {
			return nil, err
		}
		responseFiles = stored
	}

	updated, err := s.requests.SetResponse(ctx, id, status, responseText, responseFiles, time.Now().UTC())
	if err != nil {
		// the replacement never took effect; drop the new uploads, keep the
		// old set reachable
		s.deleteFiles(ctx, stored)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("request not found")
		}
		return nil, apperr.Wrap(apperr.KindStorage, "saving response", err)
	}
	if len(stored) > 0 {
		s.deleteFiles(ctx, rec.ResponseFiles)
	}
	s.pub.Publish(events.Event{Type: events.TypeRequestResponded, CompanyID: responder, RecipientID: updated.SenderID, EntityID: id})
	return updated, nil
}

// Delete removes the record; either party may do it. Attachment cleanup is
// best-effort and never fails the deletion.
func (s *RequestService) Delete(ctx context.Context, id string, actor models.CompanyID) error {
	rec, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if rec.SenderID != actor && rec.RecipientID != actor {
		return apperr.Forbidden("only the sender or the recipient may delete a request")
	}
	if err := s.requests.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("request not found")
		}
		return apperr.Wrap(apperr.KindStorage, "deleting request", err)
	}
	s.deleteFiles(ctx, rec.Files)
	s.deleteFiles(ctx, rec.ResponseFiles)
	return nil
}

// DownloadAttachment streams one attachment of the request to its sender or
// recipient. The file id is searched in both the request files and the
// response files.
func (s *RequestService) DownloadAttachment(ctx context.Context, id, fileID string, requester models.CompanyID) (io.ReadCloser, *models.FileRef, error) {
	rec, err := s.get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if rec.SenderID != requester && rec.RecipientID != requester {
		return nil, nil, apperr.Forbidden("not a party to this request")
	}
	f := findFile(rec.Files, fileID)
	if f == nil {
		f = findFile(rec.ResponseFiles, fileID)
	}
	if f == nil {
		return nil, nil, apperr.NotFound("file not found on request")
	}
	rc, err := s.store.Open(ctx, storage.ResolveRequestPath(f.StoragePath))
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindStorage, "opening attachment", err)
	}
	return rc, f, nil
}

func (s *RequestService) ListSent(ctx context.Context, sender models.CompanyID) ([]*models.RequestRecord, error) {
	out, err := s.requests.ListBySender(ctx, sender)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "listing sent requests", err)
	}
	return out, nil
}

func (s *RequestService) ListReceived(ctx context.Context, recipient models.CompanyID) ([]*models.RequestRecord, error) {
	out, err := s.requests.ListByRecipient(ctx, recipient)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "listing received requests", err)
	}
	return out, nil
}

func (s *RequestService) get(ctx context.Context, id string) (*models.RequestRecord, error) {
	rec, err := s.requests.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("request not found")
		}
		return nil, apperr.Wrap(apperr.KindStorage, "loading request", err)
	}
	return rec, nil
}

func (s *RequestService) storeUploads(ctx context.Context, area string, files []uploads.Upload) ([]models.FileRef, error) {
	stored := []models.FileRef{}
	for _, u := range files {
		st, err := s.store.Save(ctx, area, u.Name, u.ContentType, u.Data)
		if err != nil {
			s.deleteFiles(ctx, stored)
			return nil, apperr.Wrap(apperr.KindStorage, "storing attachment", err)
		}
		stored = append(stored, models.FileRef{
			ID:          uuid.NewString(),
			Name:        u.Name,
			ContentType: u.ContentType,
			Size:        u.Size,
			StoragePath: st.Path,
			URL:         st.URL,
		})
	}
	return stored, nil
}

func (s *RequestService) deleteFiles(ctx context.Context, files []models.FileRef) {
	for _, f := range files {
		// inherited files share the product's storage pointer; the product
		// still owns those objects
		if !strings.HasPrefix(f.StoragePath, storage.AreaRequests+"/") {
			continue
		}
		if err := s.store.Delete(ctx, f.StoragePath); err != nil {
			s.log.Warnw("attachment cleanup failed", "path", f.StoragePath, "err", err)
		}
	}
}

// inheritFiles copies product file metadata by value: fresh ids, same storage
// pointers, so later edits to the product never touch the request.
func inheritFiles(src []models.FileRef) []models.FileRef {
	out := make([]models.FileRef, 0, len(src))
	for _, f := range src {
		f.ID = uuid.NewString()
		out = append(out, f)
	}
	return out
}

func findFile(files []models.FileRef, id string) *models.FileRef {
	for i := range files {
		if files[i].ID == id {
			return &files[i]
		}
	}
	return nil
}

func normalizeRecipients(in []models.CompanyID) []models.CompanyID {
	seen := map[models.CompanyID]bool{}
	out := []models.CompanyID{}
	for _, r := range in {
		r = models.CompanyID(strings.TrimSpace(string(r)))
		if r.IsZero() || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
