package reporters

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// topicPublisher hides *pubsub.Topic so tests can observe publishes.
type topicPublisher interface {
	publish(ctx context.Context, data []byte, attrs map[string]string) (string, error)
	close() error
}

type gcpTopic struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

func (g *gcpTopic) publish(ctx context.Context, data []byte, attrs map[string]string) (string, error) {
	return g.topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs}).Get(ctx)
}

func (g *gcpTopic) close() error {
	g.topic.Stop()
	return g.client.Close()
}

// pubsubReporter implements the Reporter interface for Google Cloud Pub/Sub.
type pubsubReporter struct {
	id    string
	typ   string
	topic topicPublisher
	log   Logger
}

func newPubSubReporter(ctx context.Context, cfg ReporterConfig, log Logger) (Reporter, error) {
	if cfg.PubSub == nil {
		return nil, fmt.Errorf("reporter %q missing pubsub configuration", cfg.ID)
	}

	var opts []option.ClientOption
	if cfg.PubSub.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.PubSub.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &pubsubReporter{
		id:    cfg.ID,
		typ:   TypePubSub,
		topic: &gcpTopic{client: client, topic: client.Topic(cfg.PubSub.Topic)},
		log:   ensureLogger(log),
	}, nil
}

func (p *pubsubReporter) ID() string   { return p.id }
func (p *pubsubReporter) Type() string { return p.typ }

// Report publishes the failure and waits for the server to acknowledge it.
func (p *pubsubReporter) Report(ctx context.Context, f Failure) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal failure: %w", err)
	}

	serverID, err := p.topic.publish(ctx, data, messageAttributes(f))
	if err != nil {
		p.log.ErrorObj("pubsub reporter publish failed", "reporter_pubsub_error", map[string]any{
			"reporter_id": p.id,
			"error":       err.Error(),
		})
		return fmt.Errorf("publish to pubsub: %w", err)
	}
	p.log.DebugObj("pubsub reporter delivered failure", "reporter_pubsub_delivery", map[string]any{
		"reporter_id": p.id,
		"message_id":  serverID,
	})
	return nil
}

// Close stops the topic's publish goroutines and closes the client.
func (p *pubsubReporter) Close() error {
	if p == nil || p.topic == nil {
		return nil
	}
	return p.topic.close()
}
