package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/qs3c/workshop_server/internal/pkg/response"
	"github.com/qs3c/workshop_server/internal/service"
)

// handleServiceError 把 service 层的错误映射为统一响应码
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrWorkshopNotFound),
		errors.Is(err, service.ErrPackageNotFound),
		errors.Is(err, service.ErrSubscriptionNotFound),
		errors.Is(err, service.ErrGiftNotFound),
		errors.Is(err, service.ErrCreditTxNotFound),
		errors.Is(err, service.ErrProductNotFound):
		response.NotFoundError(c, err.Error())

	case errors.Is(err, service.ErrInsufficientCredit),
		errors.Is(err, service.ErrInsufficientDonation),
		errors.Is(err, service.ErrOutOfStock):
		response.InsufficientError(c, err.Error())

	case errors.Is(err, service.ErrDuplicateSubscription),
		errors.Is(err, service.ErrGiftAlreadyClaimed),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrPhoneExists):
		response.DuplicateError(c, err.Error())

	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrSubscriptionDeleted),
		errors.Is(err, service.ErrGiftDeleted),
		errors.Is(err, service.ErrNotInTrash),
		errors.Is(err, service.ErrDonationEntry),
		errors.Is(err, service.ErrNotDonation),
		errors.Is(err, service.ErrDonationBalanceRemaining):
		response.InvalidStateError(c, err.Error())

	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidAttendance),
		errors.Is(err, service.ErrCreditExceedsTotal),
		errors.Is(err, service.ErrInvalidTransfer),
		errors.Is(err, service.ErrDonationWorkshopMismatch),
		errors.Is(err, service.ErrInvalidReclaimMode),
		errors.Is(err, service.ErrContactRequired),
		errors.Is(err, service.ErrInvalidGiftTarget):
		response.ParamError(c, err.Error())

	case errors.Is(err, service.ErrInvalidCredentials):
		response.AuthError(c, err.Error())

	default:
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("unhandled service error")
		response.ServerError(c, "")
	}
}
