package reporters

import (
	"context"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
)

func TestPubSubReporterPublishes(t *testing.T) {
	// Use the in-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	admin, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer admin.Close()
	if _, err := admin.CreateTopic(ctx, "failures"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	rep, err := newPubSubReporter(ctx, ReporterConfig{
		ID:     "ps",
		Type:   TypePubSub,
		PubSub: &PubSubConfig{ProjectID: "test-project", Topic: "failures"},
	}, nil)
	if err != nil {
		t.Fatalf("newPubSubReporter: %v", err)
	}
	defer rep.(*pubsubReporter).Close()

	if err := rep.Report(ctx, sampleFailure()); err != nil {
		t.Fatalf("Report: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Attributes["code"] != "401" {
		t.Fatalf("unexpected attributes %#v", msgs[0].Attributes)
	}
}
