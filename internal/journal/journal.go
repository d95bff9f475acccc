// Package journal keeps a short, expiring history of call outcomes for the CLI.
package journal

import (
	"fmt"
	"strings"
	"time"
)

// Entry is one recorded call outcome.
type Entry struct {
	Verb      string    `json:"verb"`
	Path      string    `json:"path"`
	Host      string    `json:"host"`
	OK        bool      `json:"ok"`
	Code      int       `json:"code,omitempty"`
	At        time.Time `json:"at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Journal records outcomes and lists the most recent ones.
type Journal interface {
	Close() error
	Record(e Entry) error
	Recent(limit int) ([]Entry, error)
}

// Options controls retention characteristics for concrete journal implementations.
type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

const (
	defaultTTL             = 7 * 24 * time.Hour
	defaultCleanupInterval = 6 * time.Hour
)

// Open creates the configured journal backend.
func Open(typ, path string, opts Options) (Journal, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopJournal{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt journal requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported journal type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopJournal struct{}

func (noopJournal) Close() error                { return nil }
func (noopJournal) Record(Entry) error          { return nil }
func (noopJournal) Recent(int) ([]Entry, error) { return nil, nil }
