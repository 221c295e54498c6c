package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"zimmerbot/internal/booking"
	"zimmerbot/internal/calendar"
	"zimmerbot/internal/hold"
	"zimmerbot/internal/logger"
	"zimmerbot/internal/repository"
)

// Error codes surfaced to API clients alongside the HTTP status.
const (
	codeInvalidInput      = "InvalidInput"
	codeNotFound          = "NotFound"
	codeHoldAlreadyExists = "HoldAlreadyExists"
	codeCabinOnHold       = "CabinOnHold"
	codeCabinBusy         = "CabinBusy"
	codeHoldMismatch      = "HoldMismatch"
	codeDependencyDown    = "DependencyUnavailable"
	codeInternal          = "Internal"
)

type errorBody struct {
	Code      string   `json:"code"`
	Detail    string   `json:"detail"`
	Conflicts []string `json:"conflicts,omitempty"`
}

// respondError maps domain errors onto the HTTP taxonomy. Anything
// unmapped is a 500 and gets logged at error level.
func respondError(c *gin.Context, err error) {
	var (
		alreadyHeld  *hold.ErrAlreadyHeld
		onHold       *booking.OnHoldError
		busy         *booking.BusyError
		holdMismatch *booking.HoldMismatchError
	)

	switch {
	case errors.Is(err, booking.ErrInvalidDateRange):
		c.JSON(http.StatusBadRequest, errorBody{Code: codeInvalidInput, Detail: err.Error()})

	case errors.Is(err, repository.ErrCabinNotFound),
		errors.Is(err, repository.ErrBookingNotFound),
		errors.Is(err, repository.ErrTransactionNotFound),
		errors.Is(err, booking.ErrHoldNotFound),
		errors.Is(err, calendar.ErrNotFound),
		errors.Is(err, sql.ErrNoRows):
		c.JSON(http.StatusNotFound, errorBody{Code: codeNotFound, Detail: err.Error()})

	case errors.As(err, &alreadyHeld):
		c.JSON(http.StatusConflict, errorBody{Code: codeHoldAlreadyExists, Detail: err.Error()})

	case errors.As(err, &onHold):
		c.JSON(http.StatusConflict, errorBody{Code: codeCabinOnHold, Detail: err.Error()})

	case errors.As(err, &busy):
		c.JSON(http.StatusConflict, errorBody{Code: codeCabinBusy, Detail: err.Error(), Conflicts: busy.Conflicts})

	case errors.As(err, &holdMismatch):
		c.JSON(http.StatusConflict, errorBody{Code: codeHoldMismatch, Detail: err.Error()})

	case errors.Is(err, calendar.ErrUnreachable),
		errors.Is(err, calendar.ErrForbidden):
		c.JSON(http.StatusServiceUnavailable, errorBody{Code: codeDependencyDown, Detail: err.Error()})

	default:
		l := logger.FromContext(c.Request.Context())
		l.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, errorBody{Code: codeInternal, Detail: err.Error()})
	}
}

func badRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, errorBody{Code: codeInvalidInput, Detail: detail})
}

func notFound(c *gin.Context, detail string) {
	c.JSON(http.StatusNotFound, errorBody{Code: codeNotFound, Detail: detail})
}
