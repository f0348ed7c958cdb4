package main

import (
	"context"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ChaXxl/LysToolBox/internal/decoder"
	"github.com/ChaXxl/LysToolBox/internal/dispatch"
	"github.com/ChaXxl/LysToolBox/internal/fetcher"
	"github.com/ChaXxl/LysToolBox/internal/model"
	"github.com/ChaXxl/LysToolBox/internal/pipeline"
	"github.com/ChaXxl/LysToolBox/internal/resilience"
)

var interceptKeyword string

var interceptCmd = &cobra.Command{
	Use:   "intercept",
	Short: "Run a capture session for one search keyword",
	Long:  "Listens for response events forwarded by the proxy add-on, decodes the platform payloads, and merges matching listings into the keyword's workbook. Stopping the session flushes whatever is already queued.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if interceptKeyword != "" {
			cfg.Intercept.Keyword = interceptKeyword
		}
		if err := cfg.Validate("intercept"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		kw, err := model.ParseKeyword(cfg.Intercept.Keyword)
		if err != nil {
			return err
		}

		meds, err := loadMedicines()
		if err != nil {
			return err
		}

		resolver := decoder.NewMallNameResolver(
			fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}),
			resilience.NewCircuitBreaker("pdd-mall", resilience.DefaultConfig()),
		)

		p := pipeline.New(pipeline.Options{
			DatasetPath:     datasetPath(kw.Raw()),
			Keyword:         kw,
			Medicines:       meds,
			ResolveMallName: resolver,
		})
		sess := pipeline.NewSession(dispatch.New(p.Routes()), cfg.Intercept.QueueDepth)

		mux := http.NewServeMux()
		mux.HandleFunc("POST /events", func(w http.ResponseWriter, r *http.Request) {
			url := r.URL.Query().Get("url")
			if url == "" {
				http.Error(w, "url query parameter is required", http.StatusBadRequest)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, "read body", http.StatusBadRequest)
				return
			}

			// The add-on forwards the upstream's Content-Encoding so
			// gzip bodies can pass through untouched.
			header := http.Header{}
			if enc := r.Header.Get("X-Upstream-Content-Encoding"); enc != "" {
				header.Set("Content-Encoding", enc)
			}

			if !sess.Submit(r.Context(), dispatch.Event{URL: url, Body: body, Header: header}) {
				http.Error(w, "session is shutting down", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusAccepted)
		})

		srv := &http.Server{Addr: cfg.Intercept.Listen, Handler: mux}

		// The worker gets its own context so a SIGINT drains the queue
		// instead of abandoning it.
		workCtx := context.Background()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return sess.Run(workCtx)
		})
		g.Go(func() error {
			zap.L().Info("capture session listening",
				zap.String("addr", cfg.Intercept.Listen),
				zap.String("keyword", kw.Raw()),
			)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "intercept listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("stopping capture session")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
			sess.Close()
			return nil
		})

		return g.Wait()
	},
}

func init() {
	interceptCmd.Flags().StringVar(&interceptKeyword, "keyword", "", "search keyword (default from config)")
	rootCmd.AddCommand(interceptCmd)
}
