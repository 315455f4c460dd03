package routes

import (
	"tripnest-server/models"
	"tripnest-server/storage"
	"tripnest-server/utils"

	"github.com/kataras/iris/v12"
)

type StartConversationInput struct {
	RecipientID uint `json:"recipientID" validate:"required"`
}

// StartDirectConversation finds or creates the direct conversation
// between the caller and the recipient. Calling it twice returns the
// same conversation.
func StartDirectConversation(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input StartConversationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.RecipientID == userID {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Cannot start a conversation with yourself", ctx)
		return
	}

	var recipient models.User
	if storage.DB.First(&recipient, input.RecipientID).Error != nil {
		utils.CreateNotFound(ctx)
		return
	}

	conversation, created, err := Chat.FindOrCreateDirect(userID, input.RecipientID)
	if err != nil {
		handleChatError(err, ctx)
		return
	}

	if created {
		ctx.StatusCode(iris.StatusCreated)
	}
	ctx.JSON(conversation)
}

func GetConversationByID(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid conversation ID", ctx)
		return
	}

	ok, err := Chat.IsParticipant(id, userID)
	if err != nil {
		handleChatError(err, ctx)
		return
	}
	if !ok {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "Not a participant of this conversation", ctx)
		return
	}

	conversation, err := Chat.GetConversation(id)
	if err != nil {
		handleChatError(err, ctx)
		return
	}
	ctx.JSON(conversation)
}

func GetUserConversations(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	conversations, err := Chat.ConversationsForUser(userID)
	if err != nil {
		handleChatError(err, ctx)
		return
	}
	ctx.JSON(conversations)
}
