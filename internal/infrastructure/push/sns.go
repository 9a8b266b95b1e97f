package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/torn-watcher/internal/config"
	"github.com/torn-watcher/internal/domain"
)

type publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSGateway publishes each message to the device's SNS platform endpoint.
// Device tokens hold endpoint ARNs when this gateway is in use.
type SNSGateway struct {
	client publisher
}

func NewSNSGateway(ctx context.Context, cfg *config.Config) (*SNSGateway, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &SNSGateway{client: sns.NewFromConfig(awsCfg)}, nil
}

// Send publishes every message; failures are collected and returned together.
func (g *SNSGateway) Send(ctx context.Context, msgs []domain.NotificationMessage) error {
	var errs []error
	for _, m := range msgs {
		body, err := snsPayload(m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		_, err = g.client.Publish(ctx, &sns.PublishInput{
			TargetArn:        aws.String(m.PushToken),
			Message:          aws.String(body),
			MessageStructure: aws.String("json"),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("publish to %s: %w", m.PushToken, err))
		}
	}
	return errors.Join(errs...)
}

// snsPayload builds the per-platform JSON message SNS expects with MessageStructure=json.
func snsPayload(m domain.NotificationMessage) (string, error) {
	apns, err := json.Marshal(map[string]interface{}{
		"aps": map[string]interface{}{
			"alert": map[string]string{"title": m.Title, "body": m.Body},
			"sound": "default",
		},
	})
	if err != nil {
		return "", err
	}
	gcm, err := json.Marshal(map[string]interface{}{
		"notification": map[string]string{"title": m.Title, "body": m.Body},
		"priority":     "high",
	})
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(map[string]string{
		"default":      m.Body,
		"APNS":         string(apns),
		"APNS_SANDBOX": string(apns),
		"GCM":          string(gcm),
	})
	return string(out), err
}
