package routes

import (
	"tripnest-server/models"
	"tripnest-server/storage"
	"tripnest-server/utils"

	"github.com/kataras/iris/v12"
)

type CreateTransferVehicleInput struct {
	Title        string  `json:"title" validate:"required,max=256"`
	City         string  `json:"city" validate:"required"`
	Seats        int     `json:"seats" validate:"required,gte=1,lte=16"`
	PickupFee    float32 `json:"pickupFee" validate:"required,gt=0"`
	Currency     string  `json:"currency"`
	LicensePlate string  `json:"licensePlate"`
}

func CreateTransferVehicle(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input CreateTransferVehicleInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	tv := models.TransferVehicle{
		HostID:       userID,
		Title:        input.Title,
		City:         input.City,
		Seats:        input.Seats,
		PickupFee:    input.PickupFee,
		Currency:     input.Currency,
		LicensePlate: input.LicensePlate,
		Status:       "available",
	}
	if err := storage.DB.Create(&tv).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(tv)
}

func GetTransferVehicle(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var tv models.TransferVehicle
	if err := storage.DB.Preload("Host").First(&tv, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Transfer vehicle not found", ctx)
		return
	}
	ctx.JSON(tv)
}

func GetHostTransferVehicles(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var tvs []models.TransferVehicle
	if err := storage.DB.Where("host_id = ?", userID).Order("created_at DESC").Find(&tvs).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(tvs)
}

func UpdateTransferVehicleStatus(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().Get("id")

	var input UpdateUnitStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var tv models.TransferVehicle
	if err := storage.DB.Where("id = ? AND host_id = ?", id, userID).First(&tv).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Transfer vehicle not found or access denied", ctx)
		return
	}

	tv.Status = input.Status
	if err := storage.DB.Save(&tv).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(tv)
}
