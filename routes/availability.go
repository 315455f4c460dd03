package routes

import (
	"time"

	"tripnest-server/booking"
	"tripnest-server/utils"

	"github.com/kataras/iris/v12"
)

const dateLayout = "2006-01-02"

// GetUnitAvailability answers "can this unit be booked for window W?".
// Stays and rentals take ?start and ?end calendar dates; transfers take
// a single ?pickup instant that the engine expands into its buffer
// window.
func GetUnitAvailability(ctx iris.Context) {
	unitType := ctx.Params().Get("unitType")
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid unit ID", ctx)
		return
	}
	ref := booking.UnitRef{Type: unitType, ID: id}

	var window booking.Window
	if unitType == booking.UnitTransfer {
		pickup, err := time.Parse(time.RFC3339, ctx.URLParam("pickup"))
		if err != nil {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "pickup must be an RFC3339 timestamp", ctx)
			return
		}
		window = Booking.TransferWindow(pickup)
	} else {
		start, errStart := time.Parse(dateLayout, ctx.URLParam("start"))
		end, errEnd := time.Parse(dateLayout, ctx.URLParam("end"))
		if errStart != nil || errEnd != nil {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "start and end dates are required (YYYY-MM-DD)", ctx)
			return
		}
		window = booking.Window{Start: start, End: end}
	}

	avail, err := Booking.CheckAvailability(ref, window)
	if err != nil {
		handleBookingError(err, ctx)
		return
	}
	ctx.JSON(avail)
}

type SearchUnitsInput struct {
	UnitType     string    `json:"unitType" validate:"required,oneof=room vehicle transfer"`
	City         string    `json:"city"`
	MaxPrice     float32   `json:"maxPrice" validate:"gte=0"`
	MinOccupancy int       `json:"minOccupancy" validate:"gte=0"`
	StartDate    time.Time `json:"startDate" validate:"required"`
	EndDate      time.Time `json:"endDate" validate:"required"`
}

// SearchUnits applies the cheap filters first, then verifies
// availability per candidate for the requested window.
func SearchUnits(ctx iris.Context) {
	var input SearchUnitsInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	filters := booking.SearchFilters{
		UnitType:     input.UnitType,
		City:         input.City,
		MaxPrice:     input.MaxPrice,
		MinOccupancy: input.MinOccupancy,
	}
	window := booking.Window{Start: input.StartDate, End: input.EndDate}

	units, err := Booking.SearchAvailableUnits(filters, window)
	if err != nil {
		handleBookingError(err, ctx)
		return
	}

	results := make([]interface{}, 0, len(units))
	for _, u := range units {
		results = append(results, u.Model())
	}
	ctx.JSON(iris.Map{
		"success": true,
		"data":    results,
	})
}
