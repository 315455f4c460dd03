package services

import (
	"encoding/json"
	"fmt"
	"log"

	"tripnest-server/models"
	"tripnest-server/storage"
	"tripnest-server/utils"
)

// NotificationService records in-app notifications and mirrors them to
// the user's registered push tokens. Push delivery is best effort; the
// database row is the source of truth for the in-app feed.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// Global instance, used by the route handlers.
var Notifications = NewNotificationService()

func (ns *NotificationService) userPushTokens(userID uint) []string {
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return nil
	}
	if user.AllowsNotifications == nil || !*user.AllowsNotifications || user.PushTokens == nil {
		return nil
	}
	var tokens []string
	if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
		log.Printf("notifications: bad push tokens for user %d: %v", userID, err)
		return nil
	}
	return tokens
}

// Notify stores the notification row and fans it out to push tokens.
func (ns *NotificationService) Notify(userID uint, notifType, refType string, refID uint, title, message string) {
	record := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    notifType,
		RefID:   refID,
		RefType: refType,
	}
	if err := storage.DB.Create(&record).Error; err != nil {
		log.Printf("notifications: store for user %d: %v", userID, err)
	}

	data := map[string]string{
		"type":    notifType,
		"refType": refType,
		"refID":   fmt.Sprintf("%d", refID),
	}
	for _, token := range ns.userPushTokens(userID) {
		if err := utils.SendNotification(token, title, message, data); err != nil {
			log.Printf("notifications: push to user %d: %v", userID, err)
		}
	}
}

// ReservationRequested tells the host a new pending reservation exists.
func (ns *NotificationService) ReservationRequested(hostID uint, reservationID uint, guestName, unitTitle string) {
	ns.Notify(hostID, "reservation_request", "reservation", reservationID,
		"New reservation request",
		fmt.Sprintf("%s requested to book %s", guestName, unitTitle))
}

// ReservationStatusChanged tells the guest their reservation moved to a
// new status.
func (ns *NotificationService) ReservationStatusChanged(guestID uint, reservationID uint, unitTitle, status string) {
	var title, message string
	switch status {
	case "confirmed":
		title = "Reservation confirmed"
		message = fmt.Sprintf("Your booking for %s was confirmed", unitTitle)
	case "cancelled":
		title = "Reservation cancelled"
		message = fmt.Sprintf("Your booking for %s was cancelled", unitTitle)
	case "active":
		title = "Reservation started"
		message = fmt.Sprintf("Your booking for %s is now active", unitTitle)
	case "completed":
		title = "Reservation completed"
		message = fmt.Sprintf("Your booking for %s is complete", unitTitle)
	default:
		title = "Reservation updated"
		message = fmt.Sprintf("Your booking for %s is now %s", unitTitle, status)
	}
	ns.Notify(guestID, "reservation_status", "reservation", reservationID, title, message)
}

// NewMessage tells a conversation participant they received a message.
func (ns *NotificationService) NewMessage(recipientID uint, conversationID uint, senderName, preview string) {
	if len(preview) > 80 {
		preview = preview[:77] + "..."
	}
	ns.Notify(recipientID, "new_message", "conversation", conversationID,
		fmt.Sprintf("Message from %s", senderName), preview)
}
