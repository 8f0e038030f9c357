package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"repairshop/internal/tenant"
	"repairshop/pkg/logger"
)

// respondError maps core error kinds to HTTP responses. Validation
// reasons are shown to the caller verbatim; storage failures are
// logged with their cause and reported generically.
func respondError(c echo.Context, err error) error {
	var ve *tenant.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   ve.Error(),
			"reasons": ve.Reasons,
		})
	}

	var nfe *tenant.NotFoundError
	if errors.As(err, &nfe) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": nfe.Error()})
	}

	logger.FromEcho(c).Error("Operation failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "operation failed"})
}
