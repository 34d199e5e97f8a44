package domain

// Dispatch modes.
const (
	ModeDirect      = "direct"
	ModeGeotargeted = "geotargeted"
)

// DispatchRequest is the body of one notify call. Supplying both Latitude
// and Longitude switches to geotargeted mode, where UserID is the user who
// triggered the event and is excluded from push recipients.
type DispatchRequest struct {
	Type          string   `json:"type" validate:"required"`
	UserID        string   `json:"userId" validate:"required"`
	Title         string   `json:"title" validate:"required"`
	Message       string   `json:"message" validate:"required"`
	RelatedItemID *string  `json:"relatedItemId,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude     *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	RadiusKm      *float64 `json:"radiusKm,omitempty" validate:"omitempty,gt=0"`
}

// Geotargeted reports whether the request carries an origin point.
func (r *DispatchRequest) Geotargeted() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Mode returns ModeGeotargeted or ModeDirect.
func (r *DispatchRequest) Mode() string {
	if r.Geotargeted() {
		return ModeGeotargeted
	}
	return ModeDirect
}

// PushPayload is the JSON body delivered to the service worker.
type PushPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

// PushOutcome is the terminal state of one delivery attempt.
type PushOutcome string

const (
	OutcomeDelivered       PushOutcome = "delivered"
	OutcomeFailedTransient PushOutcome = "failed_transient"
	OutcomeDeleted         PushOutcome = "deleted"
)

// DispatchResult summarises one dispatch operation.
type DispatchResult struct {
	Notification *Notification `json:"notification"`
	Mode         string        `json:"mode"`
	PushEnabled  bool          `json:"push_enabled"`
	Selected     int           `json:"selected"`
	Delivered    int           `json:"delivered"`
	Failed       int           `json:"failed"`
	Removed      int           `json:"removed"`
}
