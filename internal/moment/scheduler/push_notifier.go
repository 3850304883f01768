package scheduler

import (
	"context"
	"log"

	authrepo "moments-backend/internal/auth/repository"
	"moments-backend/pkg/fcm"
)

// PushNotifier delivers reminder notifications to all of a user's devices
// over FCM. Tokens that FCM rejects are removed.
type PushNotifier struct {
	fcmRepo   authrepo.FCMTokenRepository
	fcmClient *fcm.Client
}

// NewPushNotifier creates a new PushNotifier
func NewPushNotifier(fcmRepo authrepo.FCMTokenRepository, fcmClient *fcm.Client) *PushNotifier {
	return &PushNotifier{
		fcmRepo:   fcmRepo,
		fcmClient: fcmClient,
	}
}

// Notify sends the reminder to every registered device of the user
func (n *PushNotifier) Notify(userID, title, body string) {
	if n.fcmClient == nil || userID == "" {
		return
	}

	tokens, err := n.fcmRepo.GetTokensByUserID(userID)
	if err != nil {
		log.Printf("[PushNotifier] Error getting FCM tokens for user %s: %v", userID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	var tokenStrings []string
	for _, t := range tokens {
		tokenStrings = append(tokenStrings, t.Token)
	}

	notification := fcm.NotificationData{
		Title: title,
		Body:  body,
		Data: map[string]string{
			"type":         "reminder",
			"click_action": "/",
		},
	}

	failedTokens, err := n.fcmClient.SendToDevices(context.Background(), tokenStrings, notification)
	if err != nil {
		log.Printf("[PushNotifier] Error sending reminder to user %s: %v", userID, err)
		return
	}

	for _, token := range failedTokens {
		n.fcmRepo.DeleteToken(token)
	}
	log.Printf("[PushNotifier] Sent reminder to %d devices for user %s", len(tokenStrings)-len(failedTokens), userID)
}
