package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/lostfound-notify/internal/config"
	"github.com/lostfound-notify/internal/domain"
)

// DispatchPublisher announces completed dispatches to other parts of the system.
type DispatchPublisher interface {
	PublishDispatch(ctx context.Context, result *domain.DispatchResult) error
}

// publishAPI is the subset of the SNS client used here.
type publishAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, opts ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type publisher struct {
	client   publishAPI
	topicARN string
}

// NewPublisher returns a publisher for cfg.SNSDispatchTopic. It errors when
// no topic is configured so callers can fall back to not publishing.
func NewPublisher(ctx context.Context, cfg *config.Config) (DispatchPublisher, error) {
	if cfg.SNSDispatchTopic == "" {
		return nil, fmt.Errorf("SNS_DISPATCH_TOPIC_ARN not set")
	}
	awsCfg, err := cfg.AWS(ctx, cfg.SNSRegion)
	if err != nil {
		return nil, err
	}
	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if cfg.AWSEndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		}
	})
	return newPublisher(client, cfg.SNSDispatchTopic), nil
}

func newPublisher(client publishAPI, topicARN string) *publisher {
	return &publisher{client: client, topicARN: topicARN}
}

type dispatchEvent struct {
	NotificationID string `json:"notification_id"`
	UserID         string `json:"user_id"`
	Type           string `json:"type"`
	Mode           string `json:"mode"`
	PushEnabled    bool   `json:"push_enabled"`
	Selected       int    `json:"selected"`
	Delivered      int    `json:"delivered"`
	Failed         int    `json:"failed"`
	Removed        int    `json:"removed"`
}

func (p *publisher) PublishDispatch(ctx context.Context, result *domain.DispatchResult) error {
	if result == nil || result.Notification == nil {
		return nil
	}
	body, err := json.Marshal(dispatchEvent{
		NotificationID: result.Notification.NotificationID,
		UserID:         result.Notification.UserID,
		Type:           result.Notification.Type,
		Mode:           result.Mode,
		PushEnabled:    result.PushEnabled,
		Selected:       result.Selected,
		Delivered:      result.Delivered,
		Failed:         result.Failed,
		Removed:        result.Removed,
	})
	if err != nil {
		return fmt.Errorf("marshal dispatch event: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"notification_type": {DataType: aws.String("String"), StringValue: aws.String(result.Notification.Type)},
			"mode":              {DataType: aws.String("String"), StringValue: aws.String(result.Mode)},
		},
	})
	return err
}
