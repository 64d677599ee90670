package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/AVVlasov/procurement-pl-sub001/internal/auth"
	"github.com/AVVlasov/procurement-pl-sub001/internal/config"
	"github.com/AVVlasov/procurement-pl-sub001/internal/middleware"
	"github.com/AVVlasov/procurement-pl-sub001/internal/service"
)

type Services struct {
	Messages  *service.MessageService
	Requests  *service.RequestService
	Companies *service.CompanyService
	Products  *service.ProductService
}

// NewServer wires the Fiber app: /healthz is open, everything under /v1 sits
// behind bearer auth (and the rate limiter when Redis is configured).
func NewServer(cfg *config.Config, verifier *auth.Verifier, rdb *redis.Client, svcs Services) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.MaxFileSize)*4 + 1024*1024,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/v1")
	v1.Use(middleware.JWTAuth(verifier))
	if rdb != nil && !cfg.Redis.RateLimitDisabled {
		limit := cfg.Redis.RateLimitPerMin
		if limit == 0 {
			limit = 300
		}
		rl := middleware.NewRateLimiter(rdb, "ratelimit", limit, time.Minute)
		v1.Use(rl.Middleware())
	}

	mh := NewMessageHandler(svcs.Messages)
	v1.Get("/messages/threads", mh.listThreads)
	v1.Get("/messages/unread-count", mh.unreadCount)
	v1.Get("/messages/:threadId", mh.listMessages)
	v1.Post("/messages/:threadId", mh.postMessage)

	rh := NewRequestHandler(svcs.Requests)
	v1.Get("/requests/sent", rh.listSent)
	v1.Get("/requests/received", rh.listReceived)
	v1.Post("/requests", rh.create)
	v1.Put("/requests/:id", rh.respond)
	v1.Delete("/requests/:id", rh.delete)
	v1.Get("/requests/:id/files/:fileId", rh.download)

	ch := NewCompanyHandler(svcs.Companies)
	v1.Get("/companies/me", ch.getMe)
	v1.Put("/companies/me", ch.updateMe)
	v1.Post("/companies/me/logo", ch.uploadLogo)
	v1.Get("/companies", ch.search)
	v1.Get("/companies/:id", ch.get)

	ph := NewProductHandler(svcs.Products)
	v1.Post("/products", ph.create)
	v1.Get("/products", ph.list)
	v1.Get("/products/:id", ph.get)
	v1.Put("/products/:id", ph.update)
	v1.Delete("/products/:id", ph.delete)
	v1.Get("/products/:id/files/:fileId", ph.download)

	return app
}
