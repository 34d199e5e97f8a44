package dispatch

import (
	"testing"

	"github.com/lostfound-notify/internal/domain"
	"github.com/lostfound-notify/internal/pkg/geo"
	"github.com/stretchr/testify/assert"
)

// kmPerDegreeAtEquator is the length of one degree of longitude on the equator.
const kmPerDegreeAtEquator = 2 * 3.141592653589793 * geo.EarthRadiusKm / 360

func eastOfOrigin(km float64) float64 { return km / kmPerDegreeAtEquator }

func ids(subs []domain.PushSubscription) []string {
	out := make([]string, 0, len(subs))
	for _, s := range subs {
		out = append(out, s.SubscriptionID)
	}
	return out
}

func TestFilterNearby_DefaultRadiusBoundary(t *testing.T) {
	origin := geo.Point{}
	subs := []domain.PushSubscription{
		locatedSub("near", "u2", 0, eastOfOrigin(4.9), nil),
		locatedSub("far", "u3", 0, eastOfOrigin(5.1), nil),
	}
	got := filterNearby(subs, origin, "u1", nil, domain.DefaultRadiusKm)
	assert.Equal(t, []string{"near"}, ids(got))
}

func TestFilterNearby_ExactBoundaryIncluded(t *testing.T) {
	origin := geo.Point{}
	s := locatedSub("edge", "u2", 0, eastOfOrigin(3), nil)
	exact := geo.Distance(origin, geo.Point{Lat: *s.Latitude, Lng: *s.Longitude})
	s.RadiusKm = &exact

	assert.Equal(t, []string{"edge"}, ids(filterNearby([]domain.PushSubscription{s}, origin, "u1", nil, 5)))

	smaller := exact - 1e-9
	s.RadiusKm = &smaller
	assert.Empty(t, filterNearby([]domain.PushSubscription{s}, origin, "u1", nil, 5))
}

func TestFilterNearby_PerSubscriptionRadius(t *testing.T) {
	origin := geo.Point{}
	subs := []domain.PushSubscription{
		locatedSub("wide", "u2", 0, eastOfOrigin(8), fptr(10)),
		locatedSub("narrow", "u3", 0, eastOfOrigin(2), fptr(1)),
	}
	assert.Equal(t, []string{"wide"}, ids(filterNearby(subs, origin, "u1", nil, 5)))
}

func TestFilterNearby_RadiusOverrideReplacesOwnRadius(t *testing.T) {
	origin := geo.Point{}
	subs := []domain.PushSubscription{
		locatedSub("a", "u2", 0, eastOfOrigin(8), fptr(10)),
		locatedSub("b", "u3", 0, eastOfOrigin(2), fptr(1)),
	}
	assert.Equal(t, []string{"b"}, ids(filterNearby(subs, origin, "u1", fptr(3), 5)))
}

func TestFilterNearby_ExcludesTriggeringUser(t *testing.T) {
	origin := geo.Point{Lat: 10, Lng: 10}
	subs := []domain.PushSubscription{
		locatedSub("mine", "u1", 10, 10, nil),
		locatedSub("theirs", "u2", 10, 10, nil),
	}
	assert.Equal(t, []string{"theirs"}, ids(filterNearby(subs, origin, "u1", fptr(20000), 5)))
}

func TestFilterNearby_NullLocationNeverMatches(t *testing.T) {
	origin := geo.Point{}
	halfLocated := sub("half", "u3")
	halfLocated.Latitude = fptr(0)
	subs := []domain.PushSubscription{sub("nowhere", "u2"), halfLocated}

	for _, radius := range []float64{0.001, 5, 1e9} {
		assert.Empty(t, filterNearby(subs, origin, "u1", fptr(radius), 5), "radius %v", radius)
	}
}
