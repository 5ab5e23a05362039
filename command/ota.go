package command

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/frantjc/ota"
	"github.com/frantjc/ota/internal/otablob"
	"github.com/frantjc/ota/internal/otahttp"
	"github.com/frantjc/ota/internal/otametrics"
	"github.com/frantjc/ota/propertylist"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"gocloud.dev/blob"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = time.Second * 10

// NewOTA returns the root command for
// ota which acts as its CLI entrypoint.
func NewOTA() *cobra.Command {
	env, envErr := LoadEnv()
	if env == nil {
		env = &Env{Addr: ":8080", Blob: "mem://", ManifestFormat: "xml"}
	}

	var (
		address        string
		urlstr         string
		bloburlstr     string
		maxUploadSize  int64
		ttl            time.Duration
		manifestFormat string
		verbosity      int
		cmd            = &cobra.Command{
			Use:   "ota",
			Short: "Serve .ipa uploads for over-the-air installation",
			PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
				if envErr != nil {
					return envErr
				}

				if env.IsVerbose() && verbosity < 2 {
					verbosity = 2
				}

				cmd.SetContext(
					ota.WithLogger(
						cmd.Context(), ota.NewLogger(cmd.ErrOrStderr(), verbosity),
					),
				)

				return nil
			},
			RunE: func(cmd *cobra.Command, _ []string) error {
				var (
					ctx = cmd.Context()
					log = ota.LoggerFrom(ctx)
				)

				format, err := propertylist.ParseFormat(manifestFormat)
				if err != nil {
					return err
				}

				var base *url.URL
				if urlstr != "" {
					if base, err = url.Parse(urlstr); err != nil {
						return err
					}
				}

				log.Info("opening bucket " + bloburlstr)
				bucket, err := blob.OpenBucket(ctx, bloburlstr)
				if err != nil {
					return err
				}
				defer bucket.Close()

				reg := prometheus.NewRegistry()
				reg.MustRegister(
					collectors.NewGoCollector(),
					collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				)

				handler, err := otahttp.NewHandler(otahttp.Config{
					Bucket:         bucket,
					BaseURL:        base,
					MaxUploadSize:  maxUploadSize,
					ManifestFormat: format,
					Metrics:        otametrics.NewProm("ota", reg),
					MetricsHandler: otametrics.Handler(reg),
				})
				if err != nil {
					return err
				}

				var (
					eg, egctx = errgroup.WithContext(ctx)
					srv       = &http.Server{
						ReadHeaderTimeout: time.Second * 5,
						BaseContext: func(_ net.Listener) context.Context {
							return ctx
						},
						Handler: handler,
					}
				)

				lis, err := net.Listen("tcp", address)
				if err != nil {
					return err
				}
				defer lis.Close()

				eg.Go(func() error {
					log.Info("listening on " + lis.Addr().String())
					if err := srv.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
						return err
					}

					return nil
				})

				eg.Go(func() error {
					<-egctx.Done()

					shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(egctx), shutdownTimeout)
					defer cancel()

					return srv.Shutdown(shutdownCtx)
				})

				if ttl > 0 {
					eg.Go(func() error {
						log.Info("sweeping artifacts older than " + ttl.String())
						return otablob.RunSweeper(egctx, bucket, ttl, max(ttl/4, time.Second))
					})
				}

				if err = eg.Wait(); err != nil {
					return err
				}

				return ctx.Err()
			},
		}
	)

	setCommon(cmd)
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "V", "verbosity for ota")
	cmd.PersistentFlags().StringVar(&urlstr, "url", env.URL, "base URL for ota")

	cmd.Flags().StringVar(&address, "addr", env.Addr, "listen address for ota")
	cmd.Flags().StringVar(&bloburlstr, "blob", env.Blob, "blob URL for ota")
	cmd.Flags().Int64Var(&maxUploadSize, "max-upload-size", env.MaxUploadSize, "maximum upload size in bytes")
	cmd.Flags().DurationVar(&ttl, "ttl", env.TTL, "delete uploads older than this, never if 0")
	cmd.Flags().StringVar(&manifestFormat, "manifest-format", env.ManifestFormat, "manifest encoding, xml or binary")

	cmd.AddCommand(newUpload(), newInspect())

	return cmd
}
