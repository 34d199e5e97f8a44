package dispatch

import (
	"context"

	"github.com/lostfound-notify/internal/domain"
	"github.com/lostfound-notify/internal/pkg/geo"
)

func (s *service) selectSubscriptions(ctx context.Context, req domain.DispatchRequest) ([]domain.PushSubscription, error) {
	if !req.Geotargeted() {
		return s.subs.ListByUser(ctx, req.UserID)
	}
	located, err := s.subs.ListLocated(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	origin := geo.Point{Lat: *req.Latitude, Lng: *req.Longitude}
	return filterNearby(located, origin, req.UserID, req.RadiusKm, s.defaultRadiusKm), nil
}

// filterNearby keeps subscriptions with a location whose distance from origin
// is within their radius. radiusOverride, when set, replaces every
// subscription's own radius. Subscriptions owned by excludeUserID never match.
func filterNearby(subs []domain.PushSubscription, origin geo.Point, excludeUserID string, radiusOverride *float64, defaultRadiusKm float64) []domain.PushSubscription {
	out := make([]domain.PushSubscription, 0, len(subs))
	for _, sub := range subs {
		if sub.UserID == excludeUserID || !sub.HasLocation() {
			continue
		}
		radius := sub.EffectiveRadiusKm(defaultRadiusKm)
		if radiusOverride != nil {
			radius = *radiusOverride
		}
		if geo.Within(origin, geo.Point{Lat: *sub.Latitude, Lng: *sub.Longitude}, radius) {
			out = append(out, sub)
		}
	}
	return out
}
