package domain

import "time"

// DefaultRadiusKm applies to subscriptions that never configured a radius.
const DefaultRadiusKm = 5.0

// PushSubscription is one browser endpoint registered for Web Push.
// Latitude and Longitude are either both set or both nil.
type PushSubscription struct {
	SubscriptionID string    `json:"id" dynamodbav:"subscription_id"`
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	Endpoint       string    `json:"endpoint" dynamodbav:"endpoint"`
	P256dh         string    `json:"p256dh" dynamodbav:"p256dh"`
	Auth           string    `json:"auth" dynamodbav:"auth"`
	Latitude       *float64  `json:"latitude,omitempty" dynamodbav:"latitude,omitempty"`
	Longitude      *float64  `json:"longitude,omitempty" dynamodbav:"longitude,omitempty"`
	RadiusKm       *float64  `json:"radius_km,omitempty" dynamodbav:"notification_radius_km,omitempty"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}

// HasLocation reports whether the subscription can be geotargeted.
func (s *PushSubscription) HasLocation() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// EffectiveRadiusKm returns the configured radius, then fallback, then DefaultRadiusKm.
func (s *PushSubscription) EffectiveRadiusKm(fallback float64) float64 {
	if s.RadiusKm != nil && *s.RadiusKm > 0 {
		return *s.RadiusKm
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultRadiusKm
}

// SubscriptionKeys mirrors the browser PushSubscription.toJSON().keys object.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh" validate:"required"`
	Auth   string `json:"auth" validate:"required"`
}

// SubscribeRequest registers (or re-registers) a browser endpoint for the caller.
type SubscribeRequest struct {
	Endpoint  string           `json:"endpoint" validate:"required,url"`
	Keys      SubscriptionKeys `json:"keys"`
	Latitude  *float64         `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64         `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	RadiusKm  *float64         `json:"radiusKm" validate:"omitempty,gt=0"`
}

// UpdateLocationRequest replaces the location and radius of one subscription.
// Sending neither coordinate clears the location.
type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	RadiusKm  *float64 `json:"radiusKm" validate:"omitempty,gt=0"`
}

// CoordinatesPaired reports whether lat and lng are both set or both nil.
func CoordinatesPaired(lat, lng *float64) bool {
	return (lat == nil) == (lng == nil)
}
