package routes

import (
	"tripnest-server/models"
	"tripnest-server/services"
	"tripnest-server/storage"
	"tripnest-server/utils"

	"github.com/kataras/iris/v12"
)

type CreateMessageInput struct {
	Text string `json:"text" validate:"required,max=5000"`
}

// CreateMessage is the REST fallback for clients without an open
// websocket. It shares persistence with the relay, so ordering and
// lastMessage bookkeeping are identical on both paths.
func CreateMessage(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	conversationID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid conversation ID", ctx)
		return
	}

	var input CreateMessageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	ok, err := Chat.IsParticipant(conversationID, userID)
	if err != nil {
		handleChatError(err, ctx)
		return
	}
	if !ok {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "Not a participant of this conversation", ctx)
		return
	}

	message, err := Chat.AppendMessage(conversationID, userID, input.Text)
	if err != nil {
		handleChatError(err, ctx)
		return
	}

	go notifyRecipient(conversationID, userID, message)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(message)
}

func notifyRecipient(conversationID, senderID uint, message *models.Message) {
	conversation, err := Chat.GetConversation(conversationID)
	if err != nil {
		return
	}
	recipientID := conversation.UserAID
	if recipientID == senderID {
		recipientID = conversation.UserBID
	}

	var sender models.User
	storage.DB.Select("first_name", "last_name").First(&sender, senderID)
	services.Notifications.NewMessage(
		recipientID, conversationID, sender.FirstName+" "+sender.LastName, message.Text)
}

// ListMessages pages backwards through history. cursor=0 starts from
// the newest messages; the response's nextCursor feeds the next call
// until it comes back 0.
func ListMessages(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	conversationID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid conversation ID", ctx)
		return
	}

	ok, err := Chat.IsParticipant(conversationID, userID)
	if err != nil {
		handleChatError(err, ctx)
		return
	}
	if !ok {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "Not a participant of this conversation", ctx)
		return
	}

	cursor := uint(ctx.URLParamIntDefault("cursor", 0))
	limit := ctx.URLParamIntDefault("limit", 50)

	messages, nextCursor, err := Chat.ListMessages(conversationID, cursor, limit)
	if err != nil {
		handleChatError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{
		"messages":   messages,
		"nextCursor": nextCursor,
	})
}
