package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/voter-science/trc-client/internal/app"
	"github.com/voter-science/trc-client/internal/config"
	"github.com/voter-science/trc-client/internal/logger"
	"github.com/voter-science/trc-client/pkg/httpclient"
)

var errCallFailed = errors.New("call failed")

type globalFlags struct {
	protocol string
	host     string
}

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func newRootCommand() *cobra.Command {
	var gf globalFlags

	root := &cobra.Command{
		Use:           "trcctl",
		Short:         "Send JSON requests to a TRC service",
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&gf.protocol, "protocol", "", "http or https (overrides TRC_PROTOCOL)")
	root.PersistentFlags().StringVar(&gf.host, "host", "", "hostname[:port] (overrides TRC_HOST)")

	root.AddCommand(newSendCommand(&gf), newRunCommand(&gf), newHistoryCommand(&gf))
	return root
}

// withRunner loads config, applies flag overrides and hands a ready runner to fn.
func withRunner(cmd *cobra.Command, gf *globalFlags, fn func(ctx context.Context, r *app.Runner) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if gf.protocol != "" {
		cfg.Protocol = strings.ToLower(gf.protocol)
	}
	if gf.host != "" {
		cfg.Host = gf.host
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := app.NewRunner(ctx, cfg, log, app.Options{})
	if err != nil {
		logger.ErrorObj("failed to initialize runner", "error", err.Error())
		return err
	}
	defer func() {
		if err := runner.Close(); err != nil {
			logger.ErrorObj("runner close failed", "error", err.Error())
		}
	}()

	return fn(ctx, runner)
}

func newSendCommand(gf *globalFlags) *cobra.Command {
	var (
		body    string
		auth    string
		lat     float64
		long    float64
		withGeo bool
	)

	cmd := &cobra.Command{
		Use:     "send VERB PATH",
		Short:   "Send a single request",
		Example: "  trcctl send GET /sheets\n  trcctl send POST /login/code2 --body '{\"code\":\"abc\"}'",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := httpclient.Request{
				Verb: strings.ToUpper(args[0]),
				Path: args[1],
			}
			if body != "" {
				var v any
				if err := json.Unmarshal([]byte(body), &v); err != nil {
					return fmt.Errorf("--body is not valid JSON: %w", err)
				}
				req.Body = v
			}
			if cmd.Flags().Changed("auth") {
				req.AuthHeader = &auth
			}
			if withGeo || cmd.Flags().Changed("lat") || cmd.Flags().Changed("long") {
				req.Geo = &httpclient.GeoPoint{Lat: lat, Long: long}
			}

			return withRunner(cmd, gf, func(ctx context.Context, r *app.Runner) error {
				return printResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), r.Send(ctx, req))
			})
		},
	}
	cmd.Flags().StringVar(&body, "body", "", "JSON request body")
	cmd.Flags().StringVar(&auth, "auth", "", "Authorization header value")
	cmd.Flags().Float64Var(&lat, "lat", 0, "client latitude (x-lat header)")
	cmd.Flags().Float64Var(&long, "long", 0, "client longitude (x-long header)")
	cmd.Flags().BoolVar(&withGeo, "geo", false, "send geo headers even when lat/long are zero")
	return cmd
}

func newRunCommand(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run NAME",
		Short: "Send a named request from the requests file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd, gf, func(ctx context.Context, r *app.Runner) error {
				res, err := r.Run(ctx, args[0])
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), res)
			})
		},
	}
}

func newHistoryCommand(gf *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent call outcomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRunner(cmd, gf, func(_ context.Context, r *app.Runner) error {
				entries, err := r.History(limit)
				if err != nil {
					return fmt.Errorf("read history: %w", err)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "AT\tVERB\tPATH\tRESULT")
				for _, e := range entries {
					result := "ok"
					if !e.OK {
						result = fmt.Sprintf("error %d", e.Code)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.At.Local().Format(time.RFC3339), e.Verb, e.Path, result)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show (0 for all)")
	return cmd
}

// printResult writes the success value to out, or the ErrorInfo to errOut.
func printResult(out, errOut io.Writer, res httpclient.Result) error {
	if res.Err != nil {
		enc := json.NewEncoder(errOut)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Err); err != nil {
			return err
		}
		return errCallFailed
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res.Value)
}
