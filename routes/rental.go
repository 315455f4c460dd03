package routes

import (
	"encoding/json"

	"tripnest-server/models"
	"tripnest-server/storage"
	"tripnest-server/utils"

	"github.com/kataras/iris/v12"
)

type CreateVehicleInput struct {
	Make         string   `json:"make" validate:"required,max=128"`
	Model        string   `json:"model" validate:"required,max=128"`
	Year         int      `json:"year" validate:"required,gte=1980"`
	City         string   `json:"city" validate:"required"`
	Seats        int      `json:"seats" validate:"required,gte=1,lte=16"`
	Transmission string   `json:"transmission" validate:"omitempty,oneof=manual automatic"`
	TotalUnits   int      `json:"totalUnits" validate:"required,gte=1"`
	DailyPrice   float32  `json:"dailyPrice" validate:"required,gt=0"`
	Currency     string   `json:"currency"`
	Images       []string `json:"images"`
}

func CreateVehicle(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input CreateVehicleInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	images, _ := json.Marshal(input.Images)

	vehicle := models.Vehicle{
		HostID:       userID,
		Make:         input.Make,
		VehicleModel: input.Model,
		Year:         input.Year,
		City:         input.City,
		Seats:        input.Seats,
		Transmission: input.Transmission,
		TotalUnits:   input.TotalUnits,
		DailyPrice:   input.DailyPrice,
		Currency:     input.Currency,
		Images:       images,
		Status:       "available",
	}
	if err := storage.DB.Create(&vehicle).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(vehicle)
}

func GetVehicle(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var vehicle models.Vehicle
	if err := storage.DB.Preload("Host").First(&vehicle, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Vehicle not found", ctx)
		return
	}
	ctx.JSON(vehicle)
}

func GetHostVehicles(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var vehicles []models.Vehicle
	if err := storage.DB.Where("host_id = ?", userID).Order("created_at DESC").Find(&vehicles).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(vehicles)
}

func UpdateVehicleStatus(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().Get("id")

	var input UpdateUnitStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var vehicle models.Vehicle
	if err := storage.DB.Where("id = ? AND host_id = ?", id, userID).First(&vehicle).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Vehicle not found or access denied", ctx)
		return
	}

	vehicle.Status = input.Status
	if err := storage.DB.Save(&vehicle).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(vehicle)
}
