package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/lostfound-notify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI records inputs and serves scripted outputs.
type fakeAPI struct {
	puts      []*dynamodb.PutItemInput
	getItem   map[string]types.AttributeValue
	updates   []*dynamodb.UpdateItemInput
	updateOut map[string]types.AttributeValue
	updateErr error
	deletes   []*dynamodb.DeleteItemInput
	deleteErr error
	queries   []*dynamodb.QueryInput
	scans     []*dynamodb.ScanInput
	pages     []*dynamodb.ScanOutput
	qpages    []*dynamodb.QueryOutput
}

func (f *fakeAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeAPI) GetItem(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.getItem}, nil
}

func (f *fakeAPI) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updates = append(f.updates, in)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &dynamodb.UpdateItemOutput{Attributes: f.updateOut}, nil
}

func (f *fakeAPI) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.deletes = append(f.deletes, in)
	return &dynamodb.DeleteItemOutput{}, f.deleteErr
}

func (f *fakeAPI) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queries = append(f.queries, in)
	if len(f.qpages) == 0 {
		return &dynamodb.QueryOutput{}, nil
	}
	out := f.qpages[0]
	f.qpages = f.qpages[1:]
	return out, nil
}

func (f *fakeAPI) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scans = append(f.scans, in)
	if len(f.pages) == 0 {
		return &dynamodb.ScanOutput{}, nil
	}
	out := f.pages[0]
	f.pages = f.pages[1:]
	return out, nil
}

func mustMarshal(t *testing.T, v interface{}) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(v)
	require.NoError(t, err)
	return item
}

func fptr(f float64) *float64 { return &f }

func TestSubscriptionRepo_Put_OmitsMissingLocation(t *testing.T) {
	api := &fakeAPI{}
	repo := NewSubscriptionRepo(api, "push_subscriptions")

	err := repo.Put(context.Background(), &domain.PushSubscription{
		SubscriptionID: "s1", UserID: "u1", Endpoint: "https://push.example/1", P256dh: "k", Auth: "a",
	})
	require.NoError(t, err)
	require.Len(t, api.puts, 1)
	item := api.puts[0].Item
	assert.Contains(t, item, "subscription_id")
	assert.Contains(t, item, "endpoint")
	assert.NotContains(t, item, "latitude")
	assert.NotContains(t, item, "longitude")
	assert.NotContains(t, item, "notification_radius_km")
}

func TestSubscriptionRepo_Get_Missing(t *testing.T) {
	repo := NewSubscriptionRepo(&fakeAPI{}, "push_subscriptions")
	_, err := repo.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSubscriptionRepo_ListLocated_PaginatesAndFilters(t *testing.T) {
	s1 := domain.PushSubscription{SubscriptionID: "s1", UserID: "u2", Latitude: fptr(1), Longitude: fptr(2)}
	s2 := domain.PushSubscription{SubscriptionID: "s2", UserID: "u3", Latitude: fptr(3), Longitude: fptr(4), RadiusKm: fptr(10)}
	api := &fakeAPI{pages: []*dynamodb.ScanOutput{
		{
			Items:            []map[string]types.AttributeValue{mustMarshal(t, s1)},
			LastEvaluatedKey: strKey("subscription_id", "s1"),
		},
		{Items: []map[string]types.AttributeValue{mustMarshal(t, s2)}},
	}}
	repo := NewSubscriptionRepo(api, "push_subscriptions")

	subs, err := repo.ListLocated(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "s1", subs[0].SubscriptionID)
	assert.Equal(t, 10.0, *subs[1].RadiusKm)

	require.Len(t, api.scans, 2)
	first := api.scans[0]
	assert.Equal(t, "attribute_exists(#lat) AND attribute_exists(#lng) AND #uid <> :uid", aws.ToString(first.FilterExpression))
	assert.Equal(t, &types.AttributeValueMemberS{Value: "u1"}, first.ExpressionAttributeValues[":uid"])
	assert.Equal(t, strKey("subscription_id", "s1"), api.scans[1].ExclusiveStartKey)
}

func TestSubscriptionRepo_Delete_MissingIsNotFound(t *testing.T) {
	api := &fakeAPI{deleteErr: &types.ConditionalCheckFailedException{Message: aws.String("gone")}}
	repo := NewSubscriptionRepo(api, "push_subscriptions")

	err := repo.Delete(context.Background(), "s1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	require.Len(t, api.deletes, 1)
	assert.Equal(t, "attribute_exists(subscription_id)", aws.ToString(api.deletes[0].ConditionExpression))
}

func TestNotificationRepo_ListByUser_UnreadFilterAndLimit(t *testing.T) {
	n := func(id string) map[string]types.AttributeValue {
		return mustMarshal(t, domain.Notification{NotificationID: id, UserID: "u1", CreatedAt: time.Now()})
	}
	api := &fakeAPI{qpages: []*dynamodb.QueryOutput{
		{Items: []map[string]types.AttributeValue{n("a"), n("b")}, LastEvaluatedKey: strKey("notification_id", "b")},
		{Items: []map[string]types.AttributeValue{n("c")}},
	}}
	repo := NewNotificationRepo(api, "notifications")

	list, err := repo.ListByUser(context.Background(), "u1", true, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	require.Len(t, api.queries, 1, "stops paging once the limit is reached")

	q := api.queries[0]
	assert.Equal(t, "user_id-created_at-index", aws.ToString(q.IndexName))
	assert.False(t, aws.ToBool(q.ScanIndexForward))
	assert.Equal(t, "#r = :f", aws.ToString(q.FilterExpression))
	assert.Equal(t, "read", q.ExpressionAttributeNames["#r"])
}

func TestNotificationRepo_MarkAsRead(t *testing.T) {
	api := &fakeAPI{updateOut: mustMarshal(t, domain.Notification{NotificationID: "n1", UserID: "u1", Read: true})}
	repo := NewNotificationRepo(api, "notifications")

	n, err := repo.MarkAsRead(context.Background(), "n1")
	require.NoError(t, err)
	assert.True(t, n.Read)
	require.Len(t, api.updates, 1)
	assert.Equal(t, types.ReturnValueAllNew, api.updates[0].ReturnValues)
}

func TestNotificationRepo_MarkAsRead_Missing(t *testing.T) {
	api := &fakeAPI{updateErr: &types.ConditionalCheckFailedException{Message: aws.String("missing")}}
	repo := NewNotificationRepo(api, "notifications")

	_, err := repo.MarkAsRead(context.Background(), "n1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestNotificationRepo_Put_CreatedAtSortsLexically(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	api := &fakeAPI{}
	repo := NewNotificationRepo(api, "notifications")

	// .1s and .12s would render as "...:00.1Z" and "...:00.12Z" in RFC3339Nano,
	// and the whole second "...:00Z" would sort after both.
	for i, off := range []time.Duration{0, 100 * time.Millisecond, 120 * time.Millisecond, time.Second} {
		n := &domain.Notification{NotificationID: string(rune('a' + i)), UserID: "u1", CreatedAt: base.Add(off), UpdatedAt: base.Add(off)}
		require.NoError(t, repo.Put(context.Background(), n))
	}
	require.Len(t, api.puts, 4)

	var stamps []string
	for _, p := range api.puts {
		s, ok := p.Item["created_at"].(*types.AttributeValueMemberS)
		require.True(t, ok)
		assert.Len(t, s.Value, len("2026-03-01T12:00:00.000000000Z"))
		stamps = append(stamps, s.Value)
	}
	assert.Equal(t, "2026-03-01T12:00:00.000000000Z", stamps[0])
	assert.IsIncreasing(t, stamps)

	var back domain.Notification
	require.NoError(t, attributevalue.UnmarshalMap(api.puts[2].Item, &back))
	assert.True(t, back.CreatedAt.Equal(base.Add(120*time.Millisecond)))
}
