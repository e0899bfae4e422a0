package handler

import (
	"bytes"
	"fmt"
	"time"

	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/receipt"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TransactionHandler struct {
	service service.TransactionService
}

func NewTransactionHandler(s service.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// rangeQuery reads from/to (RFC3339 or YYYY-MM-DD) or days.
func rangeQuery(c *fiber.Ctx) (repository.TransactionQuery, error) {
	var q repository.TransactionQuery
	parse := func(name string) (time.Time, error) {
		raw := c.Query(name)
		if raw == "" {
			return time.Time{}, nil
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, nil
		}
		t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s", errBadParam, name)
		}
		return t, nil
	}

	var err error
	if q.From, err = parse("from"); err != nil {
		return q, err
	}
	if q.To, err = parse("to"); err != nil {
		return q, err
	}
	if days := queryInt(c, "days", 0); days > 0 && q.From.IsZero() {
		q.From = time.Now().AddDate(0, 0, -days)
	}
	if raw := c.Query("cashier_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return q, fmt.Errorf("%w: cashier_id", errBadParam)
		}
		q.CashierID = &id
	}
	q.Method = c.Query("method")
	q.Limit = queryInt(c, "limit", 0)
	return q, nil
}

// GET /api/v1/transactions?from=&to=&days=&cashier_id=&method=
func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	q, err := rangeQuery(c)
	if err != nil {
		return fail(c, err)
	}
	list, err := h.service.List(c.UserContext(), middleware.Session(c), q)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(list)
}

// GET /api/v1/transactions/:id (row id or TXN number)
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	tx, err := h.service.Get(c.UserContext(), middleware.Session(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(tx)
}

// GetReceipt returns the receipt as JSON, or as a text download with ?format=text.
// GET /api/v1/transactions/:id/receipt
func (h *TransactionHandler) GetReceipt(c *fiber.Ctx) error {
	r, err := h.service.Receipt(c.UserContext(), middleware.Session(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	if c.Query("format") != "text" {
		return c.JSON(r)
	}

	var buf bytes.Buffer
	if err := receipt.Render(&buf, *r); err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=receipt-%s.txt", r.Header.TransactionID))
	return c.Send(buf.Bytes())
}
