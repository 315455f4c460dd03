package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"tripnest-server/booking"
	"tripnest-server/chat"
	"tripnest-server/routes"
	"tripnest-server/storage"
	"tripnest-server/utils"
	"tripnest-server/websocket"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	godotenv.Load()
	db := storage.InitializeDB()
	storage.InitializeRedis()

	routes.Booking = booking.NewEngine(booking.NewGormStore(db), transferBuffer())
	routes.Chat = chat.NewStore(db)

	app := iris.New()
	app.Validator = validator.New()

	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})
	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		if err := ctx.ReadJSON(&tokenInput); err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Post("/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)
	}

	room := app.Party("/api/room")
	{
		room.Get("/{id:uint}", routes.GetRoom)
		room.Post("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.CreateRoom)
		room.Get("/host/mine", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetHostRooms)
		room.Patch("/{id:uint}/status", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.UpdateRoomStatus)
	}

	vehicle := app.Party("/api/vehicle")
	{
		vehicle.Get("/{id:uint}", routes.GetVehicle)
		vehicle.Post("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.CreateVehicle)
		vehicle.Get("/host/mine", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetHostVehicles)
		vehicle.Patch("/{id:uint}/status", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.UpdateVehicleStatus)
	}

	transfer := app.Party("/api/transfer")
	{
		transfer.Get("/{id:uint}", routes.GetTransferVehicle)
		transfer.Post("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.CreateTransferVehicle)
		transfer.Get("/host/mine", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetHostTransferVehicles)
		transfer.Patch("/{id:uint}/status", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.UpdateTransferVehicleStatus)
	}

	availability := app.Party("/api/availability")
	{
		availability.Get("/{unitType:string}/{id:uint}", routes.GetUnitAvailability)
		availability.Post("/search", routes.SearchUnits)
	}

	reservation := app.Party("/api/reservation", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		reservation.Post("/", routes.CreateReservation)
		reservation.Get("/mine", routes.GetUserReservations)
		reservation.Get("/host", routes.GetHostReservations)
		reservation.Patch("/{id:uint}/status", routes.UpdateReservationStatus)
		reservation.Post("/{id:uint}/cancel", routes.CancelReservation)
	}

	conversation := app.Party("/api/conversation", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		conversation.Post("/", routes.StartDirectConversation)
		conversation.Get("/", routes.GetUserConversations)
		conversation.Get("/{id:uint}", routes.GetConversationByID)
		conversation.Get("/{id:uint}/messages", routes.ListMessages)
		conversation.Post("/{id:uint}/messages", routes.CreateMessage)
		conversation.Post("/{id:uint}/typing", routes.Typing)
		conversation.Get("/{id:uint}/typing", routes.ListTyping)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/reservations", routes.AdminListReservations)
		admin.Post("/reservations/{id:uint}/cancel", routes.AdminCancelReservation)
		admin.Post("/reservations/expire", routes.AdminExpireReservations)
	}

	// The chat relay runs its own plain HTTP listener so websocket
	// traffic does not go through the iris middleware chain.
	chatServer := websocket.NewServer(
		routes.Chat,
		splitOrigins(os.Getenv("CHAT_ALLOWED_ORIGINS")),
		[]byte(os.Getenv("ACCESS_TOKEN_SECRET")),
	)
	chatPort := os.Getenv("CHAT_PORT")
	if chatPort == "" {
		chatPort = "4001"
	}
	go func() {
		if err := chatServer.ListenAndServe(":" + chatPort); err != nil {
			log.Fatal("chat relay: ", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	app.Listen(":" + port)
}

func transferBuffer() time.Duration {
	if raw := os.Getenv("TRANSFER_BUFFER_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			return time.Duration(hours) * time.Hour
		}
		log.Println("invalid TRANSFER_BUFFER_HOURS, using default")
	}
	return booking.DefaultTransferBuffer
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
