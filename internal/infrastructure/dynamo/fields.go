package dynamo

// DynamoDB attribute names used in expressions across repos.
const (
	fieldNotificationID = "notification_id"
	fieldSubscriptionID = "subscription_id"
	fieldUserID         = "user_id"
	fieldRead           = "read"
	fieldCreatedAt      = "created_at"
	fieldUpdatedAt      = "updated_at"
	fieldLatitude       = "latitude"
	fieldLongitude      = "longitude"
)

// Index names created by Bootstrap.
const (
	indexUserCreatedAt = "user_id-created_at-index"
	indexUser          = "user_id-index"
)
