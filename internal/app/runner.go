package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/voter-science/trc-client/internal/config"
	"github.com/voter-science/trc-client/internal/journal"
	"github.com/voter-science/trc-client/internal/logger"
	"github.com/voter-science/trc-client/pkg/httpclient"
	"github.com/voter-science/trc-client/pkg/reporters"
	"github.com/voter-science/trc-client/pkg/requests"
)

// Runner wires the TRC client with failure reporters, the outcome journal and
// named request definitions.
type Runner struct {
	cfg      *config.Config
	client   *httpclient.Client
	fanout   *reporters.Fanout
	journal  journal.Journal
	requests *requests.Registry
	log      logger.Logger
}

// Options overrides pieces of the runtime, mainly for tests.
type Options struct {
	ClientOptions []httpclient.Option
}

// NewRunner builds a runner from config.
func NewRunner(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("trc_host is required")
	}

	clientOpts := append([]httpclient.Option{
		httpclient.WithLogger(log),
		httpclient.WithTimeout(cfg.RequestTimeout),
	}, opts.ClientOptions...)
	client, err := httpclient.New(cfg.Protocol, cfg.Host, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("init client: %w", err)
	}
	log.InfoObj("trc client initialized", "client_config", client.Config())

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	j, err := journal.Open(cfg.JournalType, cfg.JournalPath, journal.Options{
		TTL:             cfg.JournalTTL,
		CleanupInterval: cfg.JournalCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init journal: %w", err)
	}

	return &Runner{
		cfg:     cfg,
		client:  client,
		fanout:  fanout,
		journal: j,
		log:     log,
	}, nil
}

func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*reporters.Fanout, error) {
	if strings.TrimSpace(cfg.ReportersFile) == "" {
		return reporters.NewFanout(nil), nil
	}

	reg, err := reporters.LoadRegistry(cfg.ReportersFile)
	if err != nil {
		return nil, fmt.Errorf("load reporters registry: %w", err)
	}
	enabled := reg.Enabled()
	reps, err := reporters.BuildAll(ctx, reporters.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build reporters: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, rc := range enabled {
		summaries = append(summaries, map[string]string{"id": rc.ID, "type": rc.Type})
	}
	log.InfoObj("reporters registry loaded", "reporters_meta", map[string]any{
		"count":     len(summaries),
		"reporters": summaries,
	})
	return reporters.NewFanout(reps), nil
}

// Client exposes the underlying TRC client.
func (r *Runner) Client() *httpclient.Client { return r.client }

// Send performs req, journals the outcome and reports failures. The auth
// header from config is used when req carries none.
func (r *Runner) Send(ctx context.Context, req httpclient.Request) httpclient.Result {
	if req.AuthHeader == nil && r.cfg.AuthHeader != "" {
		auth := r.cfg.AuthHeader
		req.AuthHeader = &auth
	}

	res := r.client.Send(ctx, req)

	entry := journal.Entry{Verb: req.Verb, Path: req.Path, Host: r.client.Hostname(), OK: res.OK()}
	if res.Err != nil {
		entry.Code = res.Err.Code
	}
	if err := r.journal.Record(entry); err != nil {
		r.log.WarnObj("journal record failed", "error", err.Error())
	}

	if res.Err != nil && r.fanout.Size() > 0 {
		failure := reporters.NewFailure(r.client.Hostname(), req, res.Err)
		if _, err := r.fanout.Report(ctx, failure); err != nil {
			r.log.ErrorObj("failure report failed", "error", err.Error())
		}
	}
	return res
}

// Run sends the named request from the requests file.
func (r *Runner) Run(ctx context.Context, name string) (httpclient.Result, error) {
	reg, err := r.requestRegistry()
	if err != nil {
		return httpclient.Result{}, err
	}
	def, ok := reg.ByName(name)
	if !ok {
		return httpclient.Result{}, fmt.Errorf("request %q not defined in %s", name, r.cfg.RequestsFile)
	}
	return r.Send(ctx, def.ToRequest()), nil
}

func (r *Runner) requestRegistry() (*requests.Registry, error) {
	if r.requests != nil {
		return r.requests, nil
	}
	reg, err := requests.Load(r.cfg.RequestsFile)
	if err != nil {
		return nil, fmt.Errorf("load requests: %w", err)
	}
	r.requests = reg
	return reg, nil
}

// History returns the most recent journaled outcomes.
func (r *Runner) History(limit int) ([]journal.Entry, error) {
	return r.journal.Recent(limit)
}

// Close releases the journal and reporters.
func (r *Runner) Close() error {
	if r == nil {
		return nil
	}
	return errors.Join(r.journal.Close(), r.fanout.Close())
}
