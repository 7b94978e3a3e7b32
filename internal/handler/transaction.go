package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/finance-tracker/internal/audit"
	"github.com/iliyamo/finance-tracker/internal/middleware"
	"github.com/iliyamo/finance-tracker/internal/model"
	"github.com/iliyamo/finance-tracker/internal/repository"
	"github.com/iliyamo/finance-tracker/internal/validation"
)

// TransactionHandler serves /api/transactions.  Every operation is scoped
// to the authenticated user; someone else's transaction is a 404.
type TransactionHandler struct {
	Transactions TransactionStore
	Categories   CategoryStore
	Audit        audit.Publisher
}

func NewTransactionHandler(t TransactionStore, cats CategoryStore, pub audit.Publisher) *TransactionHandler {
	return &TransactionHandler{Transactions: t, Categories: cats, Audit: pub}
}

// Create records a transaction owned by the caller.
func (h *TransactionHandler) Create(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized("Access token required")
	}
	var req createTransactionReq
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	if req.UserID != nil && *req.UserID != uid {
		return validation.Errors{{Field: "userId", Message: "must match the authenticated user"}}
	}
	amount, err := model.ParseAmount(req.Amount)
	if err != nil {
		return validation.Errors{{Field: "amount", Message: err.Error()}}
	}
	date, _, err := parseDate(req.Date)
	if err != nil {
		return validation.Errors{{Field: "date", Message: "must be an ISO 8601 date"}}
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.requireCategory(c, req.CategoryID); err != nil {
		return err
	}
	t, err := h.Transactions.Create(ctx, model.Transaction{
		Title:       req.Title,
		Description: req.Description,
		Amount:      amount,
		Date:        date,
		UserID:      uid,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return err
	}
	publish(c, h.Audit, audit.NewEvent(audit.ActionCreate, audit.EntityTransaction, t.ID, uid))
	return respond(c, http.StatusCreated, "Transaction created successfully", t)
}

func (h *TransactionHandler) Get(c echo.Context) error {
	uid, id, err := h.scope(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	t, err := h.Transactions.GetByIDForUser(ctx, id, uid)
	if err != nil {
		return transactionErr(err, id)
	}
	return respond(c, http.StatusOK, "", t)
}

// ListByUser returns the caller's transactions, newest first.  Query
// parameters: skip, take, categoryId, dateFrom, dateTo.  A date-only
// dateTo covers the whole day.
func (h *TransactionHandler) ListByUser(c echo.Context) error {
	uid, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	f, err := listFilter(c)
	if err != nil {
		return err
	}
	f.UserID = uid

	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Transactions.ListByUser(ctx, f)
	if err != nil {
		return err
	}
	total := decimal.Zero
	for _, t := range list {
		total = total.Add(t.SignedAmount())
	}
	return respondList(c, http.StatusOK, list, len(list), model.Amount{Decimal: total})
}

func (h *TransactionHandler) Update(c echo.Context) error {
	uid, id, err := h.scope(c)
	if err != nil {
		return err
	}
	var req updateTransactionReq
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	patch, err := req.patch()
	if err != nil {
		return validation.Errors{{Field: "body", Message: err.Error()}}
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	// ownership first: a foreign transaction is a 404 regardless of body
	if _, err := h.Transactions.GetByIDForUser(ctx, id, uid); err != nil {
		return transactionErr(err, id)
	}
	if patch.CategoryID != nil {
		if err := h.requireCategory(c, *patch.CategoryID); err != nil {
			return err
		}
	}
	t, err := h.Transactions.UpdateForUser(ctx, id, uid, patch)
	if err != nil {
		return transactionErr(err, id)
	}
	publish(c, h.Audit, audit.NewEvent(audit.ActionUpdate, audit.EntityTransaction, id, uid))
	return respond(c, http.StatusOK, "Transaction updated successfully", t)
}

func (h *TransactionHandler) Delete(c echo.Context) error {
	uid, id, err := h.scope(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Transactions.DeleteForUser(ctx, id, uid); err != nil {
		return transactionErr(err, id)
	}
	publish(c, h.Audit, audit.NewEvent(audit.ActionDelete, audit.EntityTransaction, id, uid))
	return respond(c, http.StatusOK, "Transaction deleted successfully", nil)
}

// scope returns the caller and the :id path parameter.
func (h *TransactionHandler) scope(c echo.Context) (uid, id uint64, err error) {
	uid, ok := middleware.UserID(c)
	if !ok {
		return 0, 0, unauthorized("Access token required")
	}
	id, err = pathID(c, "id")
	return uid, id, err
}

func (h *TransactionHandler) requireCategory(c echo.Context, id uint64) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	ok, err := h.Categories.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFoundf("Category with ID %d not found", id)
	}
	return nil
}

func listFilter(c echo.Context) (model.TransactionFilter, error) {
	var f model.TransactionFilter
	var dateFrom, to string
	bindErrs := echo.QueryParamsBinder(c).
		FailFast(false).
		Int("skip", &f.Skip).
		Int("take", &f.Take).
		Uint64("categoryId", &f.CategoryID).
		String("dateFrom", &dateFrom).
		String("dateTo", &to).
		BindErrors()

	var errs validation.Errors
	for _, err := range bindErrs {
		var be *echo.BindingError
		if errors.As(err, &be) {
			errs = append(errs, validation.FieldError{Field: be.Field, Message: "must be an integer"})
		}
	}
	if f.Skip < 0 {
		errs = append(errs, validation.FieldError{Field: "skip", Message: "must be no less than 0"})
	}
	if f.Take < 0 {
		errs = append(errs, validation.FieldError{Field: "take", Message: "must be no less than 0"})
	}
	if f.Take > repository.MaxTake {
		f.Take = repository.MaxTake
	}
	if strings.TrimSpace(dateFrom) != "" {
		d, _, err := parseDate(dateFrom)
		if err != nil {
			errs = append(errs, validation.FieldError{Field: "dateFrom", Message: "must be an ISO 8601 date"})
		} else {
			f.DateFrom = &d
		}
	}
	if strings.TrimSpace(to) != "" {
		d, dateOnly, err := parseDate(to)
		if err != nil {
			errs = append(errs, validation.FieldError{Field: "dateTo", Message: "must be an ISO 8601 date"})
		} else {
			if dateOnly {
				d = d.Add(24*time.Hour - time.Second)
			}
			f.DateTo = &d
		}
	}
	if len(errs) > 0 {
		return f, errs
	}
	return f, nil
}

func transactionErr(err error, id uint64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFoundf("Transaction with ID %d not found", id)
	}
	return err
}
