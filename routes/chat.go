package routes

import (
	"fmt"
	"time"

	"tripnest-server/models"
	"tripnest-server/storage"
	"tripnest-server/utils"

	"github.com/kataras/iris/v12"
)

// Typing sets a short-lived Redis key marking the caller as typing in a
// conversation. Clients re-ping while the user keeps typing; the key
// simply expires otherwise.
func Typing(ctx iris.Context) {
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

	storage.Redis.Set(ctx, typingKey(conversationID, userID), "1", 5*time.Second)
	ctx.JSON(iris.Map{"success": true})
}

// ListTyping checks the Redis typing keys for the other participant.
func ListTyping(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	conversationID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid conversation ID", ctx)
		return
	}

	conversation, err := Chat.GetConversation(conversationID)
	if err != nil {
		handleChatError(err, ctx)
		return
	}
	if conversation.UserAID != userID && conversation.UserBID != userID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "Not a participant of this conversation", ctx)
		return
	}

	typing := []iris.Map{}
	for _, participantID := range []uint{conversation.UserAID, conversation.UserBID} {
		if participantID == userID {
			continue
		}
		key := typingKey(conversationID, participantID)
		if val, err := storage.Redis.Get(ctx, key).Result(); err == nil && val == "1" {
			var participant models.User
			storage.DB.Select("first_name", "last_name").First(&participant, participantID)
			typing = append(typing, iris.Map{
				"userID": participantID,
				"name":   participant.FirstName + " " + participant.LastName,
			})
		}
	}
	ctx.JSON(iris.Map{"success": true, "typing": typing})
}

func typingKey(conversationID uint, userID uint) string {
	return fmt.Sprintf("typing:conv:%d:user:%d", conversationID, userID)
}
