// Command yearshape serves, renders and snapshots the year
// visualization.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/komapc/year-shape/internal/app"
	"github.com/komapc/year-shape/internal/capture"
	"github.com/komapc/year-shape/internal/config"
	"github.com/komapc/year-shape/internal/ics"
	applog "github.com/komapc/year-shape/internal/log"
	"github.com/komapc/year-shape/internal/web"
)

type rootFlags struct {
	configPath string
	cacheDir   string
	debug      bool
	width      float64
	height     float64
}

func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "yearshape", "config.yaml")
	}
	return "./yearshape.yaml"
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		applog.Error("command failed", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "yearshape",
		Short:         "Year calendar visualization: morphing shapes, rings and zoomable wedges",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if flags.debug {
				applog.SetLevel(applog.LevelDebug)
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", defaultConfigPath(), "path to the settings file")
	pf.StringVar(&flags.cacheDir, "cache-dir", "./var/ics-cache", "directory for the ICS HTTP cache")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging")
	pf.Float64Var(&flags.width, "width", 800, "viewport width in pixels")
	pf.Float64Var(&flags.height, "height", 800, "viewport height in pixels")

	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newRenderCmd(flags))
	root.AddCommand(newSnapshotCmd(flags))
	return root
}

// buildApp loads the settings and constructs the application and its
// event fetcher.
func buildApp(flags *rootFlags) (*app.App, *ics.Fetcher, *config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config %s: %w", flags.configPath, err)
	}

	a, err := app.New(cfg, flags.configPath, flags.width, flags.height)
	if err != nil {
		return nil, nil, nil, err
	}
	return a, ics.NewFetcher(flags.cacheDir), cfg, nil
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the visualization over HTTP with scheduled event refresh",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, fetcher, cfg, err := buildApp(flags)
			if err != nil {
				return err
			}
			defer a.Destroy()
			if listen != "" {
				cfg.Listen = listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := web.NewServer(a, fetcher)

			if len(cfg.ICS) > 0 {
				refreshOnce(ctx, srv, "initial")
			}

			sched := cron.New()
			if _, err := sched.AddFunc(cfg.RefreshCron, func() {
				refreshOnce(context.Background(), srv, "scheduled")
			}); err != nil {
				return fmt.Errorf("invalid refresh schedule %q: %w", cfg.RefreshCron, err)
			}
			sched.Start()
			defer sched.Stop()

			httpSrv := &http.Server{Addr: cfg.Listen, Handler: srv.Handler()}
			errCh := make(chan error, 1)
			go func() { errCh <- httpSrv.ListenAndServe() }()

			applog.Info("serving", "listen", "http://"+cfg.Listen,
				"mode", cfg.Mode, "refresh", cfg.RefreshCron, "ics_count", len(cfg.ICS))

			select {
			case <-ctx.Done():
				applog.Info("signal received, shutting down")
				shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return httpSrv.Shutdown(shCtx)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides the settings file)")
	return cmd
}

func refreshOnce(parent context.Context, srv *web.Server, kind string) {
	ctx, cancel := context.WithTimeout(parent, time.Minute)
	defer cancel()
	if err := srv.RefreshEvents(ctx); err != nil {
		applog.Error(kind+" event refresh failed", err)
		return
	}
	applog.Info(kind + " event refresh done")
}

func newRenderCmd(flags *rootFlags) *cobra.Command {
	var (
		out  string
		mode string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the visualization once as SVG",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, fetcher, cfg, err := buildApp(flags)
			if err != nil {
				return err
			}
			defer a.Destroy()

			if mode != "" {
				if err := a.SetMode(mode); err != nil {
					return err
				}
			}

			if len(cfg.ICS) > 0 {
				ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
				defer cancel()
				loc := time.UTC
				if l, err := time.LoadLocation(cfg.Timezone); err == nil {
					loc = l
				}
				events, err := fetcher.LoadYear(ctx, icsSources(cfg), a.GetCurrentState().Year, loc)
				if err != nil {
					applog.Error("event load failed, rendering without events", err)
				} else {
					a.UpdateEvents(events)
				}
			}

			w := os.Stdout
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			a.EncodeSVG(w)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVar(&mode, "mode", "", "display mode override: shape|rings|zoom")
	return cmd
}

func newSnapshotCmd(flags *rootFlags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Rasterize the visualization to PNG via headless Chromium",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, fetcher, cfg, err := buildApp(flags)
			if err != nil {
				return err
			}
			defer a.Destroy()

			srv := web.NewServer(a, fetcher)

			// Temporary in-process server on an ephemeral port; the
			// capture backend needs a real URL to navigate to.
			ln, err := net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				return err
			}
			httpSrv := &http.Server{Handler: srv.Handler()}
			go func() { _ = httpSrv.Serve(ln) }()
			defer func() {
				shCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = httpSrv.Shutdown(shCtx)
			}()

			if len(cfg.ICS) > 0 {
				refreshOnce(cmd.Context(), srv, "snapshot")
			}

			url := fmt.Sprintf("http://%s/view", ln.Addr())
			applog.Info("capturing snapshot", "url", url, "out", out)
			return capture.SnapshotPNG(cmd.Context(), capture.Options{
				URL:        url,
				OutputPath: out,
				Width:      int(flags.width),
				Height:     int(flags.height),
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "yearshape.png", "output PNG path")
	return cmd
}

func icsSources(cfg *config.Config) []ics.Source {
	sources := make([]ics.Source, 0, len(cfg.ICS))
	for _, src := range cfg.ICS {
		if src.URL == "" {
			continue
		}
		id := src.ID
		if id == "" {
			id = src.Name
		}
		if id == "" {
			id = src.URL
		}
		sources = append(sources, ics.Source{ID: id, URL: src.URL})
	}
	return sources
}
