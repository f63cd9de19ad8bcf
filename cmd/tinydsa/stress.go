package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/pornin/go-tiny-dsa/internal/stress"
	"github.com/pornin/go-tiny-dsa/tinydsa"
)

// Parameters used by stress runs when no stored set is named.
var referenceParams = tinydsa.Parameters{P: 153151, Q: 1021, G: 45535}

func stressCmd(a *app) *cobra.Command {
	var (
		opts        stress.Options
		paramsName  string
		mode        string
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run repeated sign-and-verify trials and print statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := hashFor(mode)
			if err != nil {
				return err
			}
			opts.Hash = hash
			opts.Params = referenceParams
			if paramsName != "" {
				db, err := a.store()
				if err != nil {
					return err
				}
				ps, err := db.ParamSet(paramsName)
				if err != nil {
					return err
				}
				opts.Params = ps.Parameters()
			}
			if !cmd.Flags().Changed("workers") {
				opts.Workers = a.cfg.Workers
			}
			if !cmd.Flags().Changed("metrics-addr") {
				metricsAddr = a.cfg.MetricsAddr
			}
			opts.MaxAttempts = a.cfg.MaxAttempts
			if a.cfg.Seed != "" {
				opts.Seed = []byte(a.cfg.Seed + "/stress")
			}
			opts.Logger = &a.log

			reg := prometheus.NewRegistry()
			m := stress.NewMetrics(reg)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if metricsAddr != "" {
				srv, err := serveMetrics(a, reg, metricsAddr)
				if err != nil {
					return err
				}
				defer func() {
					sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(sctx)
				}()
			}

			st, err := stress.Run(ctx, opts, m)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				stress.Stats
				DuplicateKeys int `json:"duplicate_keys"`
			}{st, st.DuplicateKeys()})
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&opts.Keys, "keys", 10, "number of key pairs")
	flags.IntVar(&opts.Messages, "messages", 100, "messages per key and length")
	flags.IntVar(&opts.MinLength, "min-length", stress.DefaultMinLength, "shortest message, in characters")
	flags.IntVar(&opts.Lengths, "lengths", stress.DefaultLengths, "number of message lengths")
	flags.IntVar(&opts.Workers, "workers", 4, "keys processed concurrently")
	flags.StringVar(&paramsName, "params", "", "name of stored parameters (default: 153151:1021:45535)")
	flags.StringVar(&mode, "mode", modeChunks, "digest mode: chunks, collapsed or shake")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")
	return cmd
}

// Start the /metrics endpoint in the background.
func serveMetrics(a *app, reg *prometheus.Registry, addr string) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			a.log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	a.log.Info().Str("addr", ln.Addr().String()).Msg("serving metrics")
	return srv, nil
}
