package reporters

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// snsClient defines the minimal subset of the SNS client used by snsReporter.
type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// snsReporter implements the Reporter interface for AWS SNS.
type snsReporter struct {
	id       string
	topicARN string
	typ      string
	client   snsClient
	log      Logger
}

func newSNSReporter(ctx context.Context, cfg ReporterConfig, log Logger) (Reporter, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("reporter %q missing sns configuration", cfg.ID)
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.SNS.Region, cfg.SNS.Credentials)
	if err != nil {
		return nil, err
	}

	return &snsReporter{
		id:       cfg.ID,
		typ:      TypeSNS,
		topicARN: cfg.SNS.TopicARN,
		client:   sns.NewFromConfig(awsCfg),
		log:      ensureLogger(log),
	}, nil
}

func (s *snsReporter) ID() string   { return s.id }
func (s *snsReporter) Type() string { return s.typ }

// Report publishes the failure to the configured SNS topic.
func (s *snsReporter) Report(ctx context.Context, f Failure) error {
	body, err := marshalFailure(f)
	if err != nil {
		return err
	}

	attrs := make(map[string]types.MessageAttributeValue)
	for k, v := range messageAttributes(f) {
		attrs[k] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(v),
		}
	}

	input := &sns.PublishInput{
		TopicArn:          aws.String(s.topicARN),
		Message:           aws.String(body),
		MessageAttributes: attrs,
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		s.log.ErrorObj("sns reporter publish failed", "reporter_sns_error", map[string]any{
			"reporter_id": s.id,
			"error":       err.Error(),
		})
		return fmt.Errorf("publish to sns: %w", err)
	}
	s.log.DebugObj("sns reporter delivered failure", "reporter_sns_delivery", map[string]any{
		"reporter_id": s.id,
	})
	return nil
}
