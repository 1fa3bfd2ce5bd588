package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-gear-rental/internal/api"
	"github.com/sanosuguru/go-gear-rental/internal/application"
	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
	"github.com/sanosuguru/go-gear-rental/internal/domain/cart"
	"github.com/sanosuguru/go-gear-rental/internal/domain/discount"
	"github.com/sanosuguru/go-gear-rental/internal/domain/pricing"
	"github.com/sanosuguru/go-gear-rental/internal/domain/product"
	"github.com/sanosuguru/go-gear-rental/internal/domain/reservation"
	"github.com/sanosuguru/go-gear-rental/internal/infrastructure/payment"
)

var badRequestErrors = []error{
	calendar.ErrInvalidDate,
	calendar.ErrPastDate,
	calendar.ErrStartDayNotAllowed,
	calendar.ErrInvalidWindow,
	calendar.ErrInvalidCountingSpan,
	cart.ErrSessionRequired,
	cart.ErrProductIDRequired,
	cart.ErrInvalidQuantity,
	cart.ErrItemNotInCart,
	cart.ErrEmptyCart,
	cart.ErrStartDateRequired,
	discount.ErrCodeRequired,
	discount.ErrInvalidPercentage,
	discount.ErrInvalidMaxUses,
	discount.ErrInvalidValidityPeriod,
	pricing.ErrNoItems,
	pricing.ErrInvalidQuantity,
	pricing.ErrUnknownProduct,
	product.ErrNameRequired,
	product.ErrCategoryRequired,
	product.ErrInvalidStock,
	product.ErrInvalidPrice,
	reservation.ErrInvalidStatus,
	reservation.ErrCustomerNameRequired,
	reservation.ErrCustomerContactRequired,
	reservation.ErrItemsRequired,
	reservation.ErrInvalidQuantity,
	reservation.ErrProductIDRequired,
	application.ErrInvalidDateRange,
}

var notFoundErrors = []error{
	product.ErrProductNotFound,
	reservation.ErrReservationNotFound,
	discount.ErrDiscountNotFound,
}

var conflictErrors = []error{
	product.ErrOptimisticLockConflict,
	product.ErrProductInUse,
	discount.ErrCodeAlreadyExists,
	reservation.ErrIdempotencyKeyAlreadyExists,
	reservation.ErrStatusChanged,
}

// toHTTPError maps service errors onto API responses. Anything unrecognised
// becomes a 500 whose cause is logged by the error handler only.
func toHTTPError(err error) error {
	var (
		he         *echo.HTTPError
		overBooked *pricing.OverBookedError
		invalid    *application.InvalidDiscountError
	)
	switch {
	case errors.As(err, &he):
		return he
	case errors.As(err, &overBooked):
		return api.NewHTTPError(http.StatusConflict, "insufficient stock for "+overBooked.ProductName, overBooked.ProductID)
	case errors.As(err, &invalid):
		return api.NewHTTPError(http.StatusBadRequest, "invalid discount code", invalid.Reason)
	case errors.Is(err, application.ErrLockContention):
		return api.NewHTTPError(http.StatusConflict, err.Error(), "retry")
	case errors.Is(err, payment.ErrBadSignature):
		return api.NewHTTPError(http.StatusForbidden, "invalid notification signature", "")
	case errors.Is(err, application.ErrCartUnavailable), errors.Is(err, application.ErrWebhookUnavailable):
		return api.NewHTTPError(http.StatusServiceUnavailable, err.Error(), "")
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return api.NewHTTPError(http.StatusNotFound, target.Error(), "")
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return api.NewHTTPError(http.StatusConflict, target.Error(), "")
		}
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return api.NewHTTPError(http.StatusBadRequest, target.Error(), err.Error())
		}
	}
	return api.NewHTTPError(http.StatusInternalServerError, "internal server error, please retry later", "").SetInternal(err)
}

func badRequest(details string) error {
	return api.NewHTTPError(http.StatusBadRequest, "invalid request", details)
}
