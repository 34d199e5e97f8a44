package sns

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/lostfound-notify/internal/config"
	"github.com/lostfound-notify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSNS struct{ mock.Mock }

func (m *mockSNS) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	return &sns.PublishOutput{}, args.Error(0)
}

func TestNewPublisher_RequiresTopic(t *testing.T) {
	_, err := NewPublisher(context.Background(), &config.Config{})
	assert.Error(t, err)
}

func TestPublishDispatch(t *testing.T) {
	m := &mockSNS{}
	m.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		var ev dispatchEvent
		if err := json.Unmarshal([]byte(aws.ToString(in.Message)), &ev); err != nil {
			return false
		}
		return aws.ToString(in.TopicArn) == "arn:aws:sns:us-east-1:000000000000:dispatches" &&
			ev.NotificationID == "n1" && ev.Mode == domain.ModeGeotargeted && ev.Removed == 1 &&
			aws.ToString(in.MessageAttributes["notification_type"].StringValue) == "nearby"
	})).Return(nil)

	p := newPublisher(m, "arn:aws:sns:us-east-1:000000000000:dispatches")
	err := p.PublishDispatch(context.Background(), &domain.DispatchResult{
		Notification: &domain.Notification{NotificationID: "n1", UserID: "u1", Type: "nearby"},
		Mode:         domain.ModeGeotargeted,
		PushEnabled:  true,
		Selected:     3,
		Delivered:    2,
		Removed:      1,
	})
	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestPublishDispatch_NilResultIsNoop(t *testing.T) {
	m := &mockSNS{}
	p := newPublisher(m, "arn")
	require.NoError(t, p.PublishDispatch(context.Background(), nil))
	m.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}
