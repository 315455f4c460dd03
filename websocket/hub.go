package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"tripnest-server/models"
)

// MessageStore is the chat persistence collaborator. chat.Store
// implements it; hub tests substitute a fake.
type MessageStore interface {
	AppendMessage(conversationID, senderID uint, text string) (*models.Message, error)
	IsParticipant(conversationID, userID uint) (bool, error)
}

// Hub maintains room membership and fans persisted messages out to the
// connections currently in a conversation's room. Membership is
// process-local and lost on restart; clients simply rejoin.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Rooms mapping (conversationID -> clients). A client appears in
	// at most one room; Client.activeRoom tracks which.
	rooms map[uint]map[*Client]bool

	// Mutex for clients/rooms maps and activeRoom fields
	mu sync.RWMutex

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	store MessageStore
}

func NewHub(store MessageStore) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		rooms:      make(map[uint]map[*Client]bool),
		store:      store,
	}
}

// Run owns client registration for the hub's lifetime.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				h.removeFromRoomLocked(client)
				close(client.send)
			}
			h.mu.Unlock()
		}
	}
}

// joinRoom moves the client into a room. A connection holds at most
// one room membership, so joining implicitly leaves the previous room.
func (h *Hub) joinRoom(client *Client, conversationID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoomLocked(client)

	if _, ok := h.rooms[conversationID]; !ok {
		h.rooms[conversationID] = make(map[*Client]bool)
	}
	h.rooms[conversationID][client] = true
	client.activeRoom = conversationID
}

// leaveRoom removes the client only if the named room is its recorded
// active room.
func (h *Hub) leaveRoom(client *Client, conversationID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client.activeRoom != conversationID {
		return
	}
	h.removeFromRoomLocked(client)
}

func (h *Hub) removeFromRoomLocked(client *Client) {
	if client.activeRoom == 0 {
		return
	}
	if clients, ok := h.rooms[client.activeRoom]; ok {
		delete(clients, client)
		// Clean up empty rooms
		if len(clients) == 0 {
			delete(h.rooms, client.activeRoom)
		}
	}
	client.activeRoom = 0
}

// activeRoomOf reads the client's current room under the hub lock.
func (h *Hub) activeRoomOf(client *Client) uint {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return client.activeRoom
}

// broadcastToRoom sends an encoded event to every connection in the
// room, including the sender's. A client whose send buffer is full is
// dropped rather than allowed to stall the room.
func (h *Hub) broadcastToRoom(conversationID uint, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.rooms[conversationID]
	if !ok {
		return
	}
	for client := range clients {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(clients, client)
			delete(h.clients, client)
			client.activeRoom = 0
		}
	}
}

func encodeEvent(eventType string, payload interface{}) []byte {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		log.Printf("error marshaling %s event: %v", eventType, err)
		return nil
	}
	return data
}
