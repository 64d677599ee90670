package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/AVVlasov/procurement-pl-sub001/internal/apperr"
	"github.com/AVVlasov/procurement-pl-sub001/internal/middleware"
	"github.com/AVVlasov/procurement-pl-sub001/internal/service"
)

type ProductHandler struct {
	svc *service.ProductService
}

func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

func (h *ProductHandler) create(c *fiber.Ctx) error {
	in, err := parseProductForm(c)
	if err != nil {
		return jsonErr(c, err)
	}
	p, err := h.svc.Create(c.Context(), middleware.CallerCompany(c), in)
	if err != nil {
		return jsonErr(c, err)
	}
	return jsonOK(c, fiber.StatusCreated, p)
}

func (h *ProductHandler) list(c *fiber.Ctx) error {
	if q := c.Query("q"); q != "" {
		out, err := h.svc.Search(c.Context(), q, int64(c.QueryInt("limit", 50)))
		if err != nil {
			return jsonErr(c, err)
		}
		return jsonOK(c, fiber.StatusOK, out)
	}
	out, err := h.svc.ListMine(c.Context(), middleware.CallerCompany(c))
	if err != nil {
		return jsonErr(c, err)
	}
	return jsonOK(c, fiber.StatusOK, out)
}

func (h *ProductHandler) get(c *fiber.Ctx) error {
	p, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return jsonErr(c, err)
	}
	return jsonOK(c, fiber.StatusOK, p)
}

func (h *ProductHandler) update(c *fiber.Ctx) error {
	in, err := parseProductForm(c)
	if err != nil {
		return jsonErr(c, err)
	}
	p, err := h.svc.Update(c.Context(), c.Params("id"), middleware.CallerCompany(c), in)
	if err != nil {
		return jsonErr(c, err)
	}
	return jsonOK(c, fiber.StatusOK, p)
}

func (h *ProductHandler) delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.Context(), c.Params("id"), middleware.CallerCompany(c)); err != nil {
		return jsonErr(c, err)
	}
	return jsonOK(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

func (h *ProductHandler) download(c *fiber.Ctx) error {
	rc, f, err := h.svc.DownloadFile(c.Context(), c.Params("id"), c.Params("fileId"))
	if err != nil {
		return jsonErr(c, err)
	}
	c.Set(fiber.HeaderContentType, f.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", f.Name))
	return c.SendStream(rc)
}

// parseProductForm accepts multipart (with files) or JSON (metadata only).
func parseProductForm(c *fiber.Ctx) (service.ProductInput, error) {
	if form, err := c.MultipartForm(); err == nil {
		files, err := readUploads(form.File["files"])
		if err != nil {
			return service.ProductInput{}, err
		}
		return service.ProductInput{
			Name:        formValue(form, "name"),
			Description: formValue(form, "description"),
			Category:    formValue(form, "category"),
			Files:       files,
		}, nil
	}
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := c.BodyParser(&body); err != nil {
		return service.ProductInput{}, apperr.Validation("invalid request body")
	}
	return service.ProductInput{Name: body.Name, Description: body.Description, Category: body.Category}, nil
}
