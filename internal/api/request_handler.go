package api

import (
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/AVVlasov/procurement-pl-sub001/internal/apperr"
	"github.com/AVVlasov/procurement-pl-sub001/internal/middleware"
	"github.com/AVVlasov/procurement-pl-sub001/internal/models"
	"github.com/AVVlasov/procurement-pl-sub001/internal/service"
	"github.com/AVVlasov/procurement-pl-sub001/internal/uploads"
)

type RequestHandler struct {
	svc *service.RequestService
}

func NewRequestHandler(svc *service.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

func (h *RequestHandler) listSent(c *fiber.Ctx) error {
	out, err := h.svc.ListSent(c.Context(), middleware.CallerCompany(c))
	if err != nil {
		return jsonErr(c, err)
	}
	return jsonOK(c, fiber.StatusOK, out)
}

func (h *RequestHandler) listReceived(c *fiber.Ctx) error {
	out, err := h.svc.ListReceived(c.Context(), middleware.CallerCompany(c))
	if err != nil {
		return jsonErr(c, err)
	}
	return jsonOK(c, fiber.StatusOK, out)
}

// create accepts a multipart form: recipientCompanyIds (repeated or
// comma-separated), text, subject?, productId?, files[].
func (h *RequestHandler) create(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return jsonErr(c, apperr.Validation("multipart form expected"))
	}
	files, err := readUploads(form.File["files"])
	if err != nil {
		return jsonErr(c, err)
	}
	in := service.CreateRequestInput{
		Sender:     middleware.CallerCompany(c),
		Recipients: parseRecipients(form.Value["recipientCompanyIds"]),
		Text:       formValue(form, "text"),
		Subject:    formValue(form, "subject"),
		ProductID:  formValue(form, "productId"),
		Files:      files,
	}
	results, err := h.svc.Create(c.Context(), in)
	if err != nil {
		return jsonErr(c, err)
	}
	return jsonOK(c, fiber.StatusCreated, results)
}

// respond accepts a multipart form {response, status, responseFiles[]}; a
// JSON body without files works too. "files" is honored as an alias for the
// attachment field.
func (h *RequestHandler) respond(c *fiber.Ctx) error {
	var (
		response string
		status   string
		files    []uploads.Upload
	)
	if form, err := c.MultipartForm(); err == nil {
		response = formValue(form, "response")
		status = formValue(form, "status")
		files, err = readUploads(uploadsField(form, "responseFiles", "files"))
		if err != nil {
			return jsonErr(c, err)
		}
	} else {
		var body struct {
			Response string `json:"response"`
			Status   string `json:"status"`
		}
		if err := c.BodyParser(&body); err != nil {
			return jsonErr(c, apperr.Validation("invalid request body"))
		}
		response, status = body.Response, body.Status
	}

	rec, err := h.svc.Respond(c.Context(), c.Params("id"), middleware.CallerCompany(c), response, models.RequestStatus(status), files)
	if err != nil {
		return jsonErr(c, err)
	}
	return jsonOK(c, fiber.StatusOK, rec)
}

func (h *RequestHandler) delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.Context(), c.Params("id"), middleware.CallerCompany(c)); err != nil {
		return jsonErr(c, err)
	}
	return jsonOK(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

func (h *RequestHandler) download(c *fiber.Ctx) error {
	rc, f, err := h.svc.DownloadAttachment(c.Context(), c.Params("id"), c.Params("fileId"), middleware.CallerCompany(c))
	if err != nil {
		return jsonErr(c, err)
	}
	c.Set(fiber.HeaderContentType, f.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", f.Name))
	return c.SendStream(rc)
}

func readUploads(headers []*multipart.FileHeader) ([]uploads.Upload, error) {
	out := make([]uploads.Upload, 0, len(headers))
	for _, fh := range headers {
		u, err := uploads.FromMultipart(fh)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindStorage, "reading upload", err)
		}
		out = append(out, u)
	}
	return out, nil
}

func parseRecipients(values []string) []models.CompanyID {
	out := []models.CompanyID{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			out = append(out, models.CompanyID(strings.TrimSpace(part)))
		}
	}
	return out
}

// uploadsField returns the files under the first candidate key that carries
// any.
func uploadsField(form *multipart.Form, keys ...string) []*multipart.FileHeader {
	for _, k := range keys {
		if fhs := form.File[k]; len(fhs) > 0 {
			return fhs
		}
	}
	return nil
}

func formValue(form *multipart.Form, key string) string {
	if vals := form.Value[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}
