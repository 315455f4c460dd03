package websocket

import (
	"encoding/json"
	"errors"
	"log"

	"tripnest-server/chat"
)

type roomPayload struct {
	ConversationID uint `json:"conversationID"`
}

type sendPayload struct {
	ConversationID uint   `json:"conversationID"`
	Text           string `json:"text"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleEvent processes one inbound event from a connection. Each
// connection's events arrive from its own readPump, so a pending
// persistence call only suspends that connection, never the hub.
func (h *Hub) handleEvent(client *Client, raw []byte) {
	var evt inboundEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		client.deliver("error", errorPayload{Code: "bad_event", Message: "malformed event"})
		return
	}

	switch evt.Type {
	case "join-room":
		var p roomPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil || p.ConversationID == 0 {
			client.deliver("error", errorPayload{Code: "bad_event", Message: "join-room requires a conversationID"})
			return
		}
		h.handleJoin(client, p.ConversationID)
	case "leave-room":
		var p roomPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil || p.ConversationID == 0 {
			client.deliver("error", errorPayload{Code: "bad_event", Message: "leave-room requires a conversationID"})
			return
		}
		h.leaveRoom(client, p.ConversationID)
	case "send-message":
		var p sendPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil || p.ConversationID == 0 || p.Text == "" {
			client.deliver("error", errorPayload{Code: "bad_event", Message: "send-message requires a conversationID and text"})
			return
		}
		h.handleSend(client, p)
	default:
		client.deliver("error", errorPayload{Code: "bad_event", Message: "unknown event type"})
	}
}

// handleJoin verifies the caller participates in the conversation, then
// moves it into the room. The acknowledgement goes to the requesting
// connection only.
func (h *Hub) handleJoin(client *Client, conversationID uint) {
	ok, err := h.store.IsParticipant(conversationID, client.userID)
	if err != nil {
		code := "persistence_error"
		if errors.Is(err, chat.ErrConversationNotFound) {
			code = "not_found"
		}
		client.deliver("error", errorPayload{Code: code, Message: err.Error()})
		return
	}
	if !ok {
		client.deliver("error", errorPayload{Code: "forbidden", Message: "not a participant of this conversation"})
		return
	}

	h.joinRoom(client, conversationID)
	client.deliver("join-acknowledged", roomPayload{ConversationID: conversationID})
}

// handleSend persists first, then broadcasts the stored message with
// its server-assigned id and timestamp to the whole room, sender
// included. A persistence failure is reported to the sender only;
// nothing is broadcast.
func (h *Hub) handleSend(client *Client, p sendPayload) {
	if h.activeRoomOf(client) != p.ConversationID {
		client.deliver("error", errorPayload{Code: "not_joined", Message: "join the room before sending"})
		return
	}

	msg, err := h.store.AppendMessage(p.ConversationID, client.userID, p.Text)
	if err != nil {
		log.Printf("persist message from user %d in conversation %d: %v", client.userID, p.ConversationID, err)
		code := "persistence_error"
		if errors.Is(err, chat.ErrConversationNotFound) {
			code = "not_found"
		}
		client.deliver("error", errorPayload{Code: code, Message: "message could not be saved"})
		return
	}

	data := encodeEvent("new-message", msg)
	if data == nil {
		return
	}
	h.broadcastToRoom(p.ConversationID, data)
}
