package chat

import (
	"errors"
	"fmt"

	"tripnest-server/models"

	"gorm.io/gorm"
)

// ErrConversationNotFound is returned when a message references a
// conversation that does not exist. The relay reports it only to the
// sending connection.
var ErrConversationNotFound = errors.New("conversation not found")

// Store is the chat persistence collaborator shared by the REST
// message routes and the websocket relay.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// orderedPair normalizes a direct-conversation participant pair so
// (a,b) and (b,a) address the same row.
func orderedPair(a, b uint) (uint, uint) {
	if b < a {
		return b, a
	}
	return a, b
}

// FindOrCreateDirect returns the direct conversation between two users,
// creating it if this is their first contact. The second return value
// reports whether a new conversation was created.
func (s *Store) FindOrCreateDirect(userA, userB uint) (*models.Conversation, bool, error) {
	a, b := orderedPair(userA, userB)
	var conv models.Conversation
	err := s.db.Where("is_group = ? AND user_a_id = ? AND user_b_id = ?", false, a, b).First(&conv).Error
	if err == nil {
		return &conv, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	conv = models.Conversation{UserAID: a, UserBID: b}
	if err := s.db.Create(&conv).Error; err != nil {
		return nil, false, err
	}
	return &conv, true, nil
}

// GetConversation loads one conversation by id.
func (s *Store) GetConversation(id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.db.First(&conv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("conversation %d: %w", id, ErrConversationNotFound)
		}
		return nil, err
	}
	return &conv, nil
}

// IsParticipant reports whether the user belongs to the conversation.
func (s *Store) IsParticipant(conversationID, userID uint) (bool, error) {
	conv, err := s.GetConversation(conversationID)
	if err != nil {
		return false, err
	}
	return conv.UserAID == userID || conv.UserBID == userID, nil
}

// ConversationsForUser lists a user's conversations, most recently
// active first, for the chat list screen.
func (s *Store) ConversationsForUser(userID uint) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := s.db.
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Preload("UserA").Preload("UserB").
		Order("last_message_at DESC NULLS LAST").
		Find(&convs).Error
	return convs, err
}

// AppendMessage inserts a message and moves the conversation's
// last-message pointer in one transaction. Either both are recorded or
// neither is. The returned message carries the server-assigned id and
// timestamp the relay broadcasts as canonical.
func (s *Store) AppendMessage(conversationID, senderID uint, text string) (*models.Message, error) {
	var msg models.Message
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var conv models.Conversation
		if err := tx.First(&conv, conversationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("conversation %d: %w", conversationID, ErrConversationNotFound)
			}
			return err
		}
		msg = models.Message{ConversationID: conversationID, SenderID: senderID, Text: text}
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		return tx.Model(&conv).Updates(map[string]interface{}{
			"last_message_id": msg.ID,
			"last_message_at": msg.CreatedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	// preload sender for client display
	s.db.Preload("Sender").First(&msg, msg.ID)
	return &msg, nil
}

// ListMessages pages backwards through a conversation's history with an
// id cursor and returns the page in chronological order.
func (s *Store) ListMessages(conversationID, cursor uint, limit int) ([]models.Message, uint, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	q := s.db.Where("conversation_id = ?", conversationID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	var msgs []models.Message
	if err := q.Order("id DESC").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, 0, err
	}
	// reverse to chronological
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	var nextCursor uint
	if len(msgs) > 0 {
		nextCursor = msgs[0].ID
	}
	return msgs, nextCursor, nil
}
