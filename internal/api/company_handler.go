package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/AVVlasov/procurement-pl-sub001/internal/apperr"
	"github.com/AVVlasov/procurement-pl-sub001/internal/middleware"
	"github.com/AVVlasov/procurement-pl-sub001/internal/models"
	"github.com/AVVlasov/procurement-pl-sub001/internal/service"
	"github.com/AVVlasov/procurement-pl-sub001/internal/uploads"
)

type CompanyHandler struct {
	svc *service.CompanyService
}

func NewCompanyHandler(svc *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{svc: svc}
}

func (h *CompanyHandler) getMe(c *fiber.Ctx) error {
	company, err := h.svc.Get(c.Context(), middleware.CallerCompany(c))
	if err != nil {
		return jsonErr(c, err)
	}
	return jsonOK(c, fiber.StatusOK, company)
}

type updateCompanyBody struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	INN         string `json:"inn"`
	Website     string `json:"website"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
}

func (h *CompanyHandler) updateMe(c *fiber.Ctx) error {
	var body updateCompanyBody
	if err := c.BodyParser(&body); err != nil {
		return jsonErr(c, apperr.Validation("invalid request body"))
	}
	if err := validate.Struct(&body); err != nil {
		return jsonErr(c, apperr.Validation(validationMessage(err)))
	}
	company, err := h.svc.UpdateProfile(c.Context(), middleware.CallerCompany(c), service.UpdateCompanyInput{
		Name:        body.Name,
		Description: body.Description,
		INN:         body.INN,
		Website:     body.Website,
		Email:       body.Email,
		Phone:       body.Phone,
		Address:     body.Address,
	})
	if err != nil {
		return jsonErr(c, err)
	}
	return jsonOK(c, fiber.StatusOK, company)
}

func (h *CompanyHandler) uploadLogo(c *fiber.Ctx) error {
	fh, err := c.FormFile("logo")
	if err != nil {
		return jsonErr(c, apperr.Validation("logo file is required"))
	}
	u, err := uploads.FromMultipart(fh)
	if err != nil {
		return jsonErr(c, apperr.Wrap(apperr.KindStorage, "reading upload", err))
	}
	company, err := h.svc.UploadLogo(c.Context(), middleware.CallerCompany(c), u)
	if err != nil {
		return jsonErr(c, err)
	}
	return jsonOK(c, fiber.StatusOK, company)
}

func (h *CompanyHandler) get(c *fiber.Ctx) error {
	company, err := h.svc.Get(c.Context(), models.CompanyID(c.Params("id")))
	if err != nil {
		return jsonErr(c, err)
	}
	return jsonOK(c, fiber.StatusOK, company)
}

func (h *CompanyHandler) search(c *fiber.Ctx) error {
	out, err := h.svc.Search(c.Context(), c.Query("q"), int64(c.QueryInt("limit", 50)))
	if err != nil {
		return jsonErr(c, err)
	}
	return jsonOK(c, fiber.StatusOK, out)
}
