package routes

import (
	"errors"

	"tripnest-server/booking"
	"tripnest-server/chat"
	"tripnest-server/utils"

	"github.com/kataras/iris/v12"
)

// handleBookingError maps engine sentinels onto the HTTP surface.
// None of these are retried server-side; a conflict means the client
// should search again.
func handleBookingError(err error, ctx iris.Context) {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		utils.CreateError(iris.StatusNotFound, "Not Found", "Unit or reservation not found", ctx)
	case errors.Is(err, booking.ErrConflict):
		utils.CreateError(iris.StatusConflict, "Conflict", "Selected dates are no longer available", ctx)
	case errors.Is(err, booking.ErrInvalidTransition):
		utils.CreateError(iris.StatusUnprocessableEntity, "Invalid Transition", err.Error(), ctx)
	case errors.Is(err, booking.ErrInvalidWindow):
		utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
	default:
		utils.CreateInternalServerError(ctx)
	}
}

func handleChatError(err error, ctx iris.Context) {
	if errors.Is(err, chat.ErrConversationNotFound) {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Conversation not found", ctx)
		return
	}
	utils.CreateInternalServerError(ctx)
}
