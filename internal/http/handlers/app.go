package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "fandomia/internal/log"
)

type AppOptions struct {
	// RequestsPerMinute caps each client across the API; 0 means 120.
	RequestsPerMinute int
	// LoginAttempts caps POST /auth/v1/token per 10 minutes; 0 means 10.
	LoginAttempts int
	// AccessLog enables fiber's per-request access log.
	AccessLog bool
}

// NewApp builds the backend API with its middleware stack and routes.
func NewApp(deps *Deps, opts AppOptions) *fiber.App {
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 120
	}
	if opts.LoginAttempts <= 0 {
		opts.LoginAttempts = 10
	}

	app := fiber.New(fiber.Config{
		AppName:      "fandomia",
		BodyLimit:    1 << 20, // 1 MiB
		ErrorHandler: ErrorHandler,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        opts.RequestsPerMinute,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))
	app.Use(Authenticate(deps.Auth))

	// ---------- Auth ----------
	authAPI := app.Group("/auth/v1")
	authAPI.Post("/signup", deps.AuthHandler.SignUp)
	authAPI.Post("/token", limiter.New(limiter.Config{
		Max:        opts.LoginAttempts,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, try again later"})
		},
	}), deps.AuthHandler.Token)
	authAPI.Post("/logout", deps.AuthHandler.Logout)
	authAPI.Get("/user", RequireUser(), deps.AuthHandler.User)

	// ---------- Data ----------
	rest := app.Group("/rest/v1")
	rest.Post("/rpc/whoami_role", RequireUser(), deps.RoleHandler.WhoAmI)
	rest.Get("/profiles/:id", RequireUser(), deps.RoleHandler.Profile)
	rest.Post("/cart_items", RequireUser(), deps.CartItemsHandler.Upsert)
	rest.Get("/cart_items", RequireUser(), deps.CartItemsHandler.List)
	rest.Get("/products", deps.SearchHandler.Search)
	rest.Get("/products/:slug", deps.ProductHandler.Detail)
	rest.Get("/categories", deps.SearchHandler.Categories)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})
	return app
}

// ErrorHandler logs the cause and answers without leaking internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < 500 {
		code, msg = fe.Code, fe.Message
	}
	if code >= 500 {
		applog.Error(c, "server.error", err, nil)
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

func bearerToken(c *fiber.Ctx) string {
	h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return c.Cookies("sid")
}
