package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"chessql/internal/server/core"
	"chessql/internal/server/processor"
	"chessql/internal/server/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const (
	rateLimitRate = 10 // req/sec
	bodyLimit     = 16 << 20
)

// HTTPHandler handles HTTP requests and routes them to the processor
type HTTPHandler struct {
	proc *processor.Processor
	svc  *service.Service
}

func NewHTTPHandler(proc *processor.Processor, svc *service.Service) *HTTPHandler {
	return &HTTPHandler{proc: proc, svc: svc}
}

func NewFiberApp(proc *processor.Processor, svc *service.Service, devMode bool) *fiber.App {
	h := NewHTTPHandler(proc, svc)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    bodyLimit,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")
	api.Get("/health", h.Health)

	validateToken := svc.ValidateToken

	auth := api.Group("/auth")

	// Register: 5 req/min per IP
	auth.Post("/register", limiter.New(limiter.Config{
		Max:          5,
		Expiration:   1 * time.Minute,
		KeyGenerator: clientIP,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: "5 registrations per minute allowed",
			})
		},
	}), h.RegisterHandler)

	// Login: 10 req/min per IP
	auth.Post("/login", limiter.New(limiter.Config{
		Max:          10,
		Expiration:   1 * time.Minute,
		KeyGenerator: clientIP,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: "10 login attempts per minute allowed",
			})
		},
	}), h.LoginHandler)

	auth.Get("/me", AuthRequired(validateToken), h.GetCurrentUserHandler)
	auth.Post("/logout", AuthRequired(validateToken), h.LogoutHandler)

	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:          maxReq,
		Expiration:   1 * time.Second,
		KeyGenerator: clientIP,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	// Reads are open; writes need a token
	api.Post("/games", AuthRequired(validateToken), h.IngestGames)
	api.Get("/games/:gameId", OptionalAuth(validateToken), h.GetGame)
	api.Get("/games/:gameId/captures", OptionalAuth(validateToken), h.GetCaptures)
	api.Delete("/games/:gameId", AuthRequired(validateToken), h.DeleteGame)

	api.Post("/query", OptionalAuth(validateToken), h.Query)
	api.Get("/examples", h.Examples)
	api.Get("/stats", h.Stats)

	api.Get("/accounts", OptionalAuth(validateToken), h.ListAccounts)
	api.Post("/accounts", AuthRequired(validateToken), h.CreateAccount)
	api.Delete("/accounts/:username", AuthRequired(validateToken), h.DeleteAccount)

	return app
}

// clientIP keys rate limits by the first X-Forwarded-For hop, else the peer
func clientIP(c *fiber.Ctx) string {
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	return c.IP()
}

// contentTypeValidator ensures POST requests carry application/json
func contentTypeValidator(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		contentType := c.Get("Content-Type")
		if contentType != "" && !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound, fiber.StatusBadRequest, fiber.StatusMethodNotAllowed, fiber.StatusRequestEntityTooLarge:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// statusFor maps a processor error code to an HTTP status
func statusFor(code string) int {
	switch code {
	case core.ErrGameNotFound, core.ErrAccountNotFound:
		return fiber.StatusNotFound
	case core.ErrAccountExists:
		return fiber.StatusConflict
	case core.ErrStorageDisabled:
		return fiber.StatusServiceUnavailable
	case core.ErrUnauthorized:
		return fiber.StatusForbidden
	case core.ErrInternalError:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}

func (h *HTTPHandler) respond(c *fiber.Ctx, resp processor.ProcessorResponse, okStatus int) error {
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	if resp.Data == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Status(okStatus).JSON(resp.Data)
}

func bodyError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
		Error: err.Error(),
		Code:  core.ErrInternalError,
	})
}

func parseGameID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("gameId"), 10, 64)
	return id, err == nil && id > 0
}

func invalidGameID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
		Error:   "invalid game ID format",
		Code:    core.ErrInvalidRequest,
		Details: "game ID must be a positive integer",
	})
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(core.HealthResponse{
		Status:  "healthy",
		Time:    time.Now().Unix(),
		Storage: h.svc.GetStorageHealth(),
		Games:   h.svc.CountGames(c.UserContext()),
		Workers: h.proc.Workers(),
	})
}

// IngestGames stores the games of a posted PGN document
func (h *HTTPHandler) IngestGames(c *fiber.Ctx) error {
	req, err := validatedBody[core.IngestRequest](c)
	if err != nil {
		return bodyError(c, err)
	}

	cmd := processor.NewIngestCommand(req)
	cmd.UserID, _ = c.Locals("userID").(string)

	return h.respond(c, h.proc.Execute(c.UserContext(), cmd), fiber.StatusCreated)
}

// GetGame returns a stored game with its captures
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	id, ok := parseGameID(c)
	if !ok {
		return invalidGameID(c)
	}
	return h.respond(c, h.proc.Execute(c.UserContext(), processor.NewGetGameCommand(id)), fiber.StatusOK)
}

// GetCaptures returns only the capture rows of a game
func (h *HTTPHandler) GetCaptures(c *fiber.Ctx) error {
	id, ok := parseGameID(c)
	if !ok {
		return invalidGameID(c)
	}
	return h.respond(c, h.proc.Execute(c.UserContext(), processor.NewGetCapturesCommand(id)), fiber.StatusOK)
}

// DeleteGame removes a game and its captures
func (h *HTTPHandler) DeleteGame(c *fiber.Ctx) error {
	id, ok := parseGameID(c)
	if !ok {
		return invalidGameID(c)
	}

	cmd := processor.NewDeleteGameCommand(id)
	cmd.UserID, _ = c.Locals("userID").(string)

	return h.respond(c, h.proc.Execute(c.UserContext(), cmd), fiber.StatusOK)
}

// Query runs a ChessQL query or /pattern/ move search
func (h *HTTPHandler) Query(c *fiber.Ctx) error {
	req, err := validatedBody[core.QueryRequest](c)
	if err != nil {
		return bodyError(c, err)
	}

	cmd := processor.NewQueryCommand(req)
	cmd.UserID, _ = c.Locals("userID").(string)

	return h.respond(c, h.proc.Execute(c.UserContext(), cmd), fiber.StatusOK)
}

// Examples lists sample queries
func (h *HTTPHandler) Examples(c *fiber.Ctx) error {
	return h.respond(c, h.proc.Execute(c.UserContext(), processor.NewExamplesCommand()), fiber.StatusOK)
}

// Stats returns database totals
func (h *HTTPHandler) Stats(c *fiber.Ctx) error {
	return h.respond(c, h.proc.Execute(c.UserContext(), processor.NewStatsCommand()), fiber.StatusOK)
}

// ListAccounts returns all platform accounts
func (h *HTTPHandler) ListAccounts(c *fiber.Ctx) error {
	return h.respond(c, h.proc.Execute(c.UserContext(), processor.NewListAccountsCommand()), fiber.StatusOK)
}

// CreateAccount registers a platform account
func (h *HTTPHandler) CreateAccount(c *fiber.Ctx) error {
	req, err := validatedBody[core.AccountRequest](c)
	if err != nil {
		return bodyError(c, err)
	}

	cmd := processor.NewCreateAccountCommand(req)
	cmd.UserID, _ = c.Locals("userID").(string)

	return h.respond(c, h.proc.Execute(c.UserContext(), cmd), fiber.StatusCreated)
}

// DeleteAccount removes an account and its games. The platform comes from
// the query string and defaults to lichess.
func (h *HTTPHandler) DeleteAccount(c *fiber.Ctx) error {
	req := core.AccountRequest{
		Username: c.Params("username"),
		Platform: c.Query("platform", "lichess"),
	}
	if errs := validate.Struct(&req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.ErrInvalidRequest,
			Details: describeValidation(errs),
		})
	}

	cmd := processor.NewDeleteAccountCommand(req)
	cmd.UserID, _ = c.Locals("userID").(string)

	return h.respond(c, h.proc.Execute(c.UserContext(), cmd), fiber.StatusOK)
}
