package routes

import (
	"tripnest-server/booking"
	"tripnest-server/chat"
	"tripnest-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// Package-level collaborators, wired in main before the server starts.
var (
	Booking *booking.Engine
	Chat    *chat.Store
)

func isAdmin(ctx iris.Context) bool {
	claims, ok := jwt.Get(ctx).(*utils.AccessToken)
	return ok && claims.Role == "admin"
}
