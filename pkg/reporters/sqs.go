package reporters

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// sqsClient defines the minimal subset of the SQS client used by sqsReporter.
type sqsClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// sqsReporter implements the Reporter interface for AWS SQS.
type sqsReporter struct {
	id       string
	queueURL string
	typ      string
	client   sqsClient
	log      Logger
}

// newSQSReporter creates a new SQS reporter with the given configuration.
func newSQSReporter(ctx context.Context, cfg ReporterConfig, log Logger) (Reporter, error) {
	if cfg.SQS == nil {
		return nil, fmt.Errorf("reporter %q missing sqs configuration", cfg.ID)
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.SQS.Region, cfg.SQS.Credentials)
	if err != nil {
		return nil, err
	}

	return &sqsReporter{
		id:       cfg.ID,
		typ:      TypeSQS,
		queueURL: cfg.SQS.QueueURL,
		client:   sqs.NewFromConfig(awsCfg),
		log:      ensureLogger(log),
	}, nil
}

func (s *sqsReporter) ID() string   { return s.id }
func (s *sqsReporter) Type() string { return s.typ }

// Report sends the failure to the configured SQS queue.
func (s *sqsReporter) Report(ctx context.Context, f Failure) error {
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

	input := &sqs.SendMessageInput{
		QueueUrl:          aws.String(s.queueURL),
		MessageBody:       aws.String(body),
		MessageAttributes: attrs,
	}

	if _, err := s.client.SendMessage(ctx, input); err != nil {
		s.log.ErrorObj("sqs reporter send failed", "reporter_sqs_error", map[string]any{
			"reporter_id": s.id,
			"error":       err.Error(),
		})
		return fmt.Errorf("send message to sqs: %w", err)
	}
	s.log.DebugObj("sqs reporter delivered failure", "reporter_sqs_delivery", map[string]any{
		"reporter_id": s.id,
	})
	return nil
}
