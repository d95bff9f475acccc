package reporters

import "context"

// Reporter forwards failed calls to a downstream sink (HTTP, SQS, etc).
type Reporter interface {
	ID() string
	Type() string
	Report(ctx context.Context, f Failure) error
}
