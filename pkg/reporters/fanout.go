package reporters

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Fanout dispatches failures to all configured reporters.
type Fanout struct {
	reporters []Reporter
}

// NewFanout builds a dispatcher that fans out failures across reporters.
func NewFanout(reps []Reporter) *Fanout {
	cp := make([]Reporter, 0, len(reps))
	for _, r := range reps {
		if r == nil {
			continue
		}
		cp = append(cp, r)
	}
	return &Fanout{reporters: cp}
}

// Report forwards the failure to every registered reporter.
// It returns the number of reporters that successfully handled it.
func (f *Fanout) Report(ctx context.Context, failure Failure) (int, error) {
	if f == nil || len(f.reporters) == 0 {
		return 0, nil
	}

	var errs []error
	successful := 0
	for _, r := range f.reporters {
		if err := r.Report(ctx, failure); err != nil {
			errs = append(errs, fmt.Errorf("%s reporter[%s]: %w", r.Type(), r.ID(), err))
		} else {
			successful++
		}
	}
	return successful, errors.Join(errs...)
}

// Size returns the number of active reporters.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.reporters)
}

// Close releases reporters that hold connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, r := range f.reporters {
		if c, ok := r.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close reporter[%s]: %w", r.ID(), err))
			}
		}
	}
	return errors.Join(errs...)
}
