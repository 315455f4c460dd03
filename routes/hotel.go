package routes

import (
	"encoding/json"

	"tripnest-server/models"
	"tripnest-server/storage"
	"tripnest-server/utils"

	"github.com/kataras/iris/v12"
)

type CreateRoomInput struct {
	Title        string   `json:"title" validate:"required,max=256"`
	Description  string   `json:"description"`
	AddressLine1 string   `json:"addressLine1"`
	City         string   `json:"city" validate:"required"`
	Country      string   `json:"country"`
	Lat          float32  `json:"lat"`
	Lng          float32  `json:"lng"`
	Occupancy    int      `json:"occupancy" validate:"required,gte=1,lte=16"`
	TotalUnits   int      `json:"totalUnits" validate:"required,gte=1"`
	NightlyPrice float32  `json:"nightlyPrice" validate:"required,gt=0"`
	CleaningFee  float32  `json:"cleaningFee" validate:"gte=0"`
	Currency     string   `json:"currency"`
	Amenities    []string `json:"amenities"`
	Images       []string `json:"images"`
}

func CreateRoom(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input CreateRoomInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	amenities, _ := json.Marshal(input.Amenities)
	images, _ := json.Marshal(input.Images)

	room := models.Room{
		HostID:       userID,
		Title:        input.Title,
		Description:  input.Description,
		AddressLine1: input.AddressLine1,
		City:         input.City,
		Country:      input.Country,
		Lat:          input.Lat,
		Lng:          input.Lng,
		Occupancy:    input.Occupancy,
		TotalUnits:   input.TotalUnits,
		NightlyPrice: input.NightlyPrice,
		CleaningFee:  input.CleaningFee,
		Currency:     input.Currency,
		Amenities:    amenities,
		Images:       images,
		Status:       "available",
	}
	if err := storage.DB.Create(&room).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(room)
}

func GetRoom(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var room models.Room
	if err := storage.DB.Preload("Host").First(&room, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Room not found", ctx)
		return
	}
	ctx.JSON(room)
}

func GetHostRooms(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var rooms []models.Room
	if err := storage.DB.Where("host_id = ?", userID).Order("created_at DESC").Find(&rooms).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(rooms)
}

type UpdateUnitStatusInput struct {
	Status string `json:"status" validate:"required,oneof=available maintenance inactive"`
}

// UpdateRoomStatus soft-retires or reactivates a room type. Rooms are
// never hard-deleted while reservations reference them.
func UpdateRoomStatus(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().Get("id")

	var input UpdateUnitStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var room models.Room
	if err := storage.DB.Where("id = ? AND host_id = ?", id, userID).First(&room).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Room not found or access denied", ctx)
		return
	}

	room.Status = input.Status
	if err := storage.DB.Save(&room).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(room)
}
