package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"paisometer/internal/alerts"
	"paisometer/internal/ledger"
	"paisometer/internal/models"
)

func (s *Server) handleNotification(c *fiber.Ctx) error {
	var n models.Notification
	if err := c.BodyParser(&n); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid notification body")
	}
	return c.JSON(s.deps.Ingestor.Handle(c.UserContext(), n))
}

func (s *Server) handleSync(c *fiber.Ctx) error {
	res, err := s.deps.Syncer.Sync(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (s *Server) listPending(c *fiber.Ctx) error {
	items, err := s.deps.Pending.Peek(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(items)
}

// DispositionRequest is the body of a categorization.
type DispositionRequest struct {
	Category string  `json:"category"`
	Note     *string `json:"note"`
}

func (s *Server) updatePending(c *fiber.Ctx) error {
	var req DispositionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if !models.ValidCategory(req.Category) {
		return fiber.NewError(fiber.StatusBadRequest, "unknown category "+req.Category)
	}

	found, err := s.deps.Pending.UpdateDisposition(c.UserContext(), c.Params("id"), req.Category, req.Note)
	if err != nil {
		return err
	}
	if !found {
		return fiber.NewError(fiber.StatusNotFound, "pending transaction not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listTransactions(c *fiber.Ctx) error {
	txns, err := s.deps.Ledger.All(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(txns)
}

// ManualEntryRequest adds a transaction without a notification.
type ManualEntryRequest struct {
	Amount    decimal.Decimal        `json:"amount"`
	Type      models.TransactionType `json:"type"`
	Category  string                 `json:"category"`
	Note      string                 `json:"note"`
	Timestamp int64                  `json:"timestamp"`
}

func (s *Server) addTransaction(c *fiber.Ctx) error {
	var req ManualEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Type == "" {
		req.Type = models.TypeExpense
	}
	if req.Timestamp == 0 {
		req.Timestamp = s.deps.Now().UnixMilli()
	}

	txn := models.LedgerTransaction{
		ID:        uuid.NewString(),
		Amount:    req.Amount,
		Type:      req.Type,
		Category:  req.Category,
		Timestamp: req.Timestamp,
		Note:      req.Note,
	}
	if err := s.deps.Ledger.Add(c.UserContext(), txn); err != nil {
		if errors.Is(err, ledger.ErrInvalidTransaction) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(txn)
}

func (s *Server) getBudget(c *fiber.Ctx) error {
	b, ok, err := s.deps.Budget.Budget(c.UserContext())
	if err != nil {
		return err
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no budget set")
	}
	return c.JSON(b)
}

func (s *Server) putBudget(c *fiber.Ctx) error {
	var b alerts.Budget
	if err := c.BodyParser(&b); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := s.deps.Budget.SetBudget(c.UserContext(), b); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(b)
}
