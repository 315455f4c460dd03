package routes

import (
	"math"
	"time"

	"tripnest-server/booking"
	"tripnest-server/models"
	"tripnest-server/services"
	"tripnest-server/storage"
	"tripnest-server/utils"

	"github.com/kataras/iris/v12"
)

type CreateReservationInput struct {
	UnitType  string     `json:"unitType" validate:"required,oneof=room vehicle transfer"`
	UnitID    uint       `json:"unitID" validate:"required"`
	StartDate time.Time  `json:"startDate"`
	EndDate   time.Time  `json:"endDate"`
	PickupAt  *time.Time `json:"pickupAt"`
	NumGuests int        `json:"numGuests" validate:"required,gte=1"`
	Note      string     `json:"note" validate:"max=1000"`
}

// unitListing is what pricing and notifications need from any vertical.
type unitListing struct {
	hostID uint
	title  string
}

// quotePrice computes the total server-side so clients cannot set their
// own price. Rooms price per night plus the one-off cleaning fee,
// vehicles per started day, transfers a flat pickup fee.
func quotePrice(input CreateReservationInput) (float32, unitListing, bool) {
	switch input.UnitType {
	case booking.UnitRoom:
		var room models.Room
		if err := storage.DB.First(&room, input.UnitID).Error; err != nil {
			return 0, unitListing{}, false
		}
		nights := int(input.EndDate.Sub(input.StartDate).Hours() / 24)
		if nights < 1 {
			nights = 1
		}
		total := float32(nights)*room.NightlyPrice + room.CleaningFee
		return total, unitListing{hostID: room.HostID, title: room.Title}, true
	case booking.UnitVehicle:
		var vehicle models.Vehicle
		if err := storage.DB.First(&vehicle, input.UnitID).Error; err != nil {
			return 0, unitListing{}, false
		}
		days := int(math.Ceil(input.EndDate.Sub(input.StartDate).Hours() / 24))
		if days < 1 {
			days = 1
		}
		total := float32(days) * vehicle.DailyPrice
		title := vehicle.Make + " " + vehicle.VehicleModel
		return total, unitListing{hostID: vehicle.HostID, title: title}, true
	case booking.UnitTransfer:
		var transfer models.TransferVehicle
		if err := storage.DB.First(&transfer, input.UnitID).Error; err != nil {
			return 0, unitListing{}, false
		}
		return transfer.PickupFee, unitListing{hostID: transfer.HostID, title: transfer.Title}, true
	}
	return 0, unitListing{}, false
}

func CreateReservation(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input CreateReservationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	total, listing, found := quotePrice(input)
	if !found {
		utils.CreateNotFound(ctx)
		return
	}

	params := booking.CreateParams{
		Ref:        booking.UnitRef{Type: input.UnitType, ID: input.UnitID},
		GuestID:    userID,
		Start:      input.StartDate,
		End:        input.EndDate,
		NumGuests:  input.NumGuests,
		TotalPrice: total,
		Note:       input.Note,
	}
	if input.PickupAt != nil {
		params.Pickup = *input.PickupAt
	}

	reservation, err := Booking.CreateReservation(params)
	if err != nil {
		handleBookingError(err, ctx)
		return
	}

	var guest models.User
	storage.DB.Select("first_name", "last_name").First(&guest, userID)
	go services.Notifications.ReservationRequested(
		listing.hostID, reservation.ID, guest.FirstName+" "+guest.LastName, listing.title)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(reservation)
}

type UpdateReservationStatusInput struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed active completed cancelled"`
}

// UpdateReservationStatus lets the unit's host (or an admin) drive the
// lifecycle. The engine rejects transitions the state machine forbids.
func UpdateReservationStatus(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid reservation ID", ctx)
		return
	}

	var input UpdateReservationStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var existing models.Reservation
	if storage.DB.First(&existing, id).Error != nil {
		utils.CreateNotFound(ctx)
		return
	}

	listing, ok := listingForUnit(existing.UnitType, existing.UnitID)
	if !ok {
		utils.CreateNotFound(ctx)
		return
	}
	if listing.hostID != userID && !isAdmin(ctx) {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "Only the host can update this reservation", ctx)
		return
	}

	reservation, err := Booking.TransitionStatus(id, input.Status)
	if err != nil {
		handleBookingError(err, ctx)
		return
	}

	go services.Notifications.ReservationStatusChanged(
		reservation.GuestID, reservation.ID, listing.title, reservation.Status)

	ctx.JSON(reservation)
}

// CancelReservation is the guest-facing cancel. Guests may only cancel
// their own reservations; everything else goes through the host status
// endpoint.
func CancelReservation(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid reservation ID", ctx)
		return
	}

	var existing models.Reservation
	if storage.DB.First(&existing, id).Error != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if existing.GuestID != userID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "You can only cancel your own reservations", ctx)
		return
	}

	reservation, err := Booking.TransitionStatus(id, booking.StatusCancelled)
	if err != nil {
		handleBookingError(err, ctx)
		return
	}
	ctx.JSON(reservation)
}

func GetUserReservations(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var reservations []models.Reservation
	if err := storage.DB.
		Where("guest_id = ?", userID).
		Order("start_at DESC").
		Find(&reservations).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(reservations)
}

// GetHostReservations returns reservations against any inventory the
// caller hosts, across all three verticals.
func GetHostReservations(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	roomIDs, err := hostUnitIDs(&models.Room{}, userID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	vehicleIDs, err := hostUnitIDs(&models.Vehicle{}, userID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	transferIDs, err := hostUnitIDs(&models.TransferVehicle{}, userID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	query := storage.DB.Where("1 = 0")
	if len(roomIDs) > 0 {
		query = query.Or("unit_type = ? AND unit_id IN ?", booking.UnitRoom, roomIDs)
	}
	if len(vehicleIDs) > 0 {
		query = query.Or("unit_type = ? AND unit_id IN ?", booking.UnitVehicle, vehicleIDs)
	}
	if len(transferIDs) > 0 {
		query = query.Or("unit_type = ? AND unit_id IN ?", booking.UnitTransfer, transferIDs)
	}

	var reservations []models.Reservation
	if err := storage.DB.
		Where(query).
		Preload("Guest").
		Order("start_at DESC").
		Find(&reservations).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(reservations)
}

func hostUnitIDs(model interface{}, hostID uint) ([]uint, error) {
	var ids []uint
	err := storage.DB.Model(model).Where("host_id = ?", hostID).Pluck("id", &ids).Error
	return ids, err
}

func listingForUnit(unitType string, unitID uint) (unitListing, bool) {
	switch unitType {
	case booking.UnitRoom:
		var room models.Room
		if storage.DB.First(&room, unitID).Error != nil {
			return unitListing{}, false
		}
		return unitListing{hostID: room.HostID, title: room.Title}, true
	case booking.UnitVehicle:
		var vehicle models.Vehicle
		if storage.DB.First(&vehicle, unitID).Error != nil {
			return unitListing{}, false
		}
		return unitListing{hostID: vehicle.HostID, title: vehicle.Make + " " + vehicle.VehicleModel}, true
	case booking.UnitTransfer:
		var transfer models.TransferVehicle
		if storage.DB.First(&transfer, unitID).Error != nil {
			return unitListing{}, false
		}
		return unitListing{hostID: transfer.HostID, title: transfer.Title}, true
	}
	return unitListing{}, false
}
