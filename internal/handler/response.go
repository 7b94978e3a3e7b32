package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/finance-tracker/internal/audit"
	"github.com/iliyamo/finance-tracker/internal/log"
)

// dbTimeout bounds the store work of one request.
const dbTimeout = 5 * time.Second

// success is the envelope for every 2xx body.
type success struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
	Count   *int   `json:"count,omitempty"`
	Total   any    `json:"total,omitempty"`
}

func respond(c echo.Context, status int, msg string, data any) error {
	return c.JSON(status, success{Success: true, Message: msg, Data: data})
}

func respondList(c echo.Context, status int, data any, count int, total any) error {
	return c.JSON(status, success{Success: true, Data: data, Count: &count, Total: total})
}

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// publish sends an audit event with its own short deadline.  Failures
// are logged and otherwise ignored.
func publish(c echo.Context, p audit.Publisher, ev audit.Event) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 2*time.Second)
	defer cancel()
	if err := p.Publish(ctx, ev); err != nil {
		log.FromContext(c.Request().Context()).WithComponent(log.ComponentAudit).Warn("publish audit event failed",
			log.FieldOperation, ev.Action,
			log.FieldEntity, ev.Entity,
			log.FieldEntityID, ev.EntityID,
			log.FieldError, err)
	}
}
