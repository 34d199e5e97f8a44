package domain

import "time"

// Notification types raised by the item and claim flows.
const (
	NotificationTypeMatch  = "match"
	NotificationTypeNearby = "nearby"
	NotificationTypeClaim  = "claim"
)

// Notification is an in-app alert shown to one user. It is the guaranteed
// delivery channel; push is best-effort on top of it.
type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	Type           string    `json:"type" dynamodbav:"type"`
	Title          string    `json:"title" dynamodbav:"title"`
	Message        string    `json:"message" dynamodbav:"message"`
	RelatedItemID  *string   `json:"related_item_id,omitempty" dynamodbav:"related_item_id,omitempty"`
	Read           bool      `json:"read" dynamodbav:"read"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}
