package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"paisometer/internal/alerts"
	"paisometer/internal/ledger"
	"paisometer/internal/models"
	"paisometer/internal/pipeline"
)

// Ingestor handles one incoming notification.
type Ingestor interface {
	Handle(ctx context.Context, n models.Notification) pipeline.Result
}

// Syncer moves pending transactions into the ledger.
type Syncer interface {
	Sync(ctx context.Context) (ledger.Result, error)
}

// Pending is the categorization side of the queue.
type Pending interface {
	Peek(ctx context.Context) ([]models.QueuedTransaction, error)
	UpdateDisposition(ctx context.Context, id, category string, note *string) (bool, error)
}

// Ledger reads and extends the ledger.
type Ledger interface {
	All(ctx context.Context) ([]models.LedgerTransaction, error)
	Add(ctx context.Context, txn models.LedgerTransaction) error
}

// Budget stores the budget context alerts are computed against.
type Budget interface {
	Budget(ctx context.Context) (alerts.Budget, bool, error)
	SetBudget(ctx context.Context, b alerts.Budget) error
}

// Deps are the components the API exposes.
type Deps struct {
	Ingestor Ingestor
	Syncer   Syncer
	Pending  Pending
	Ledger   Ledger
	Budget   Budget
	Now      func() time.Time
}

// Server is the HTTP API.
type Server struct {
	app  *fiber.App
	deps Deps
	log  zerolog.Logger
}

// New builds the app and registers every route.
func New(deps Deps, log zerolog.Logger) *Server {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               "paisometer",
			DisableStartupMessage: true,
			ErrorHandler:          errorHandler,
		}),
		deps: deps,
		log:  log.With().Str("component", "http").Logger(),
	}

	s.app.Use(recover.New())
	s.app.Use(s.requestLogger)
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	api := s.app.Group("/api/v1")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	api.Post("/notifications", s.handleNotification)
	api.Post("/sync", s.handleSync)
	api.Get("/pending", s.listPending)
	api.Patch("/pending/:id", s.updatePending)
	api.Get("/transactions", s.listTransactions)
	api.Post("/transactions", s.addTransaction)
	api.Get("/budget", s.getBudget)
	api.Put("/budget", s.putBudget)

	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves until ctx is cancelled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.app.Listen(addr) }()

	s.log.Info().Str("addr", addr).Msg("http server listening")
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.app.ShutdownWithContext(shutdownCtx)
	}
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}

	event := s.log.Info()
	if status >= fiber.StatusInternalServerError {
		event = s.log.Error().Err(err)
	}
	event.
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Msg("request")
	return err
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal error"
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
