package routes

import (
	"net/http"
	"strings"
	"time"

	"tripnest-server/booking"
	"tripnest-server/models"
	"tripnest-server/storage"
	"tripnest-server/utils"

	"github.com/kataras/iris/v12"
)

// AdminListReservations - GET /admin/reservations?status=&unit_type=&page=&per_page=
func AdminListReservations(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	status := strings.TrimSpace(ctx.URLParamDefault("status", ""))
	unitType := strings.TrimSpace(ctx.URLParamDefault("unit_type", ""))

	query := storage.DB.Model(&models.Reservation{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if unitType != "" {
		query = query.Where("unit_type = ?", unitType)
	}

	var total int64
	query.Count(&total)

	var reservations []models.Reservation
	if err := query.
		Preload("Guest").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&reservations).Error; err != nil {
		ctx.StatusCode(http.StatusInternalServerError)
		ctx.JSON(iris.Map{"error": "server_error", "message": err.Error()})
		return
	}

	ctx.JSON(iris.Map{
		"data": reservations,
		"meta": iris.Map{"page": page, "per_page": perPage, "total": total},
	})
}

// AdminCancelReservation - POST /admin/reservations/:id/cancel
// Goes through the engine so the state machine still applies: a
// completed reservation cannot be cancelled even by an admin.
func AdminCancelReservation(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	reservation, err := Booking.TransitionStatus(id, booking.StatusCancelled)
	if err != nil {
		handleBookingError(err, ctx)
		return
	}
	utils.Audit(ctx, "reservation.cancel", "reservation", reservation.ID, nil, reservation)
	ctx.JSON(reservation)
}

// AdminExpireReservations - POST /admin/reservations/expire
// Sweeps pending reservations whose 24h window has lapsed into
// cancelled. Meant to be hit by a scheduler; safe to run repeatedly.
func AdminExpireReservations(ctx iris.Context) {
	var stale []models.Reservation
	if err := storage.DB.
		Where("status = ? AND expires_at < ?", booking.StatusPending, time.Now()).
		Find(&stale).Error; err != nil {
		ctx.StatusCode(http.StatusInternalServerError)
		ctx.JSON(iris.Map{"error": "server_error", "message": err.Error()})
		return
	}

	expired := 0
	for _, reservation := range stale {
		if _, err := Booking.TransitionStatus(reservation.ID, booking.StatusCancelled); err == nil {
			expired++
		}
	}

	ctx.JSON(iris.Map{"success": true, "expired": expired})
}
