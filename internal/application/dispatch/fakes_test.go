package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lostfound-notify/internal/domain"
)

// memNotifications is an in-memory notification store.
type memNotifications struct {
	mu    sync.Mutex
	items []*domain.Notification
	err   error
}

func (m *memNotifications) Put(_ context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.items = append(m.items, n)
	return nil
}

func (m *memNotifications) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// memSubscriptions is an in-memory subscription store that mimics the
// DynamoDB filters of the real repo.
type memSubscriptions struct {
	mu      sync.Mutex
	subs    map[string]domain.PushSubscription
	deletes map[string]int
	listErr error
}

func newMemSubscriptions(subs ...domain.PushSubscription) *memSubscriptions {
	m := &memSubscriptions{subs: map[string]domain.PushSubscription{}, deletes: map[string]int{}}
	for _, s := range subs {
		m.subs[s.SubscriptionID] = s
	}
	return m
}

func (m *memSubscriptions) ListByUser(_ context.Context, userID string) ([]domain.PushSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.PushSubscription
	for _, s := range m.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sortByID(out)
	return out, nil
}

func (m *memSubscriptions) ListLocated(_ context.Context, excludeUserID string) ([]domain.PushSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.PushSubscription
	for _, s := range m.subs {
		if s.HasLocation() && s.UserID != excludeUserID {
			out = append(out, s)
		}
	}
	sortByID(out)
	return out, nil
}

func (m *memSubscriptions) Delete(_ context.Context, subscriptionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[subscriptionID]; !ok {
		return fmt.Errorf("subscription not found: %w", domain.ErrNotFound)
	}
	delete(m.subs, subscriptionID)
	m.deletes[subscriptionID]++
	return nil
}

func (m *memSubscriptions) has(subscriptionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.subs[subscriptionID]
	return ok
}

func sortByID(subs []domain.PushSubscription) {
	sort.Slice(subs, func(i, j int) bool { return subs[i].SubscriptionID < subs[j].SubscriptionID })
}

// fakeSender answers per endpoint and records every attempt.
type fakeSender struct {
	mu        sync.Mutex
	responses map[string]error
	panics    map[string]bool
	attempts  map[string]int
	payloads  [][]byte
	delay     time.Duration
	inFlight  int
	maxFlight int
}

func newFakeSender() *fakeSender {
	return &fakeSender{responses: map[string]error{}, panics: map[string]bool{}, attempts: map[string]int{}}
}

func (f *fakeSender) Send(ctx context.Context, sub *domain.PushSubscription, payload []byte) error {
	f.mu.Lock()
	f.attempts[sub.Endpoint]++
	f.payloads = append(f.payloads, payload)
	f.inFlight++
	if f.inFlight > f.maxFlight {
		f.maxFlight = f.inFlight
	}
	resp := f.responses[sub.Endpoint]
	shouldPanic := f.panics[sub.Endpoint]
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if shouldPanic {
		panic("sender exploded")
	}
	return resp
}

func (f *fakeSender) attemptsFor(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts[endpoint]
}

var errGone = fmt.Errorf("endpoint returned 410: %w", domain.ErrSubscriptionGone)

var errTransient = errors.New("push service responded 503")

func sub(id, userID string) domain.PushSubscription {
	return domain.PushSubscription{
		SubscriptionID: id,
		UserID:         userID,
		Endpoint:       "https://push.example/" + id,
		P256dh:         "p256dh-" + id,
		Auth:           "auth-" + id,
	}
}

func locatedSub(id, userID string, lat, lng float64, radiusKm *float64) domain.PushSubscription {
	s := sub(id, userID)
	s.Latitude = &lat
	s.Longitude = &lng
	s.RadiusKm = radiusKm
	return s
}

func fptr(f float64) *float64 { return &f }

func sptr(s string) *string { return &s }
