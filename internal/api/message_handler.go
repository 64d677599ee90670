package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/AVVlasov/procurement-pl-sub001/internal/apperr"
	"github.com/AVVlasov/procurement-pl-sub001/internal/middleware"
	"github.com/AVVlasov/procurement-pl-sub001/internal/service"
)

type MessageHandler struct {
	svc *service.MessageService
}

func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

func (h *MessageHandler) listThreads(c *fiber.Ctx) error {
	company := middleware.CallerCompany(c)
	threads, err := h.svc.ListThreads(c.Context(), company)
	if err != nil {
		return jsonErr(c, err)
	}
	return jsonOK(c, fiber.StatusOK, threads)
}

func (h *MessageHandler) unreadCount(c *fiber.Ctx) error {
	company := middleware.CallerCompany(c)
	n, err := h.svc.UnreadCount(c.Context(), company)
	if err != nil {
		return jsonErr(c, err)
	}
	return jsonOK(c, fiber.StatusOK, fiber.Map{"unread": n})
}

func (h *MessageHandler) listMessages(c *fiber.Ctx) error {
	company := middleware.CallerCompany(c)
	msgs, err := h.svc.List(c.Context(), c.Params("threadId"), company)
	if err != nil {
		return jsonErr(c, err)
	}
	return jsonOK(c, fiber.StatusOK, msgs)
}

type postMessageBody struct {
	Text string `json:"text" validate:"required"`
}

func (h *MessageHandler) postMessage(c *fiber.Ctx) error {
	var body postMessageBody
	if err := c.BodyParser(&body); err != nil {
		return jsonErr(c, apperr.Validation("invalid request body"))
	}
	if err := validate.Struct(&body); err != nil {
		return jsonErr(c, apperr.Validation(validationMessage(err)))
	}
	company := middleware.CallerCompany(c)
	m, err := h.svc.Post(c.Context(), c.Params("threadId"), company, body.Text)
	if err != nil {
		return jsonErr(c, err)
	}
	return jsonOK(c, fiber.StatusCreated, m)
}
