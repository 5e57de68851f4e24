package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	anichart "github.com/DanSleeman/anichart-filter"
	"github.com/DanSleeman/anichart-filter/core"
	"github.com/DanSleeman/anichart-filter/internal/appconfig"
	"github.com/DanSleeman/anichart-filter/internal/browser"
	"github.com/DanSleeman/anichart-filter/internal/selstore"
	"github.com/DanSleeman/anichart-filter/schema"
	"pkt.systems/pslog"
)

func newAttachCmd() *cobra.Command {
	var cfgPath string
	var remoteURL string
	var headless bool
	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Attach to the schedule page and start filtering",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if remoteURL != "" {
				cfg.Browser.RemoteURL = remoteURL
			}
			if cmd.Flags().Changed("headless") {
				cfg.Browser.Headless = headless
			}

			store, err := selstore.NewStoreWithLogger(cfg.StateFile, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if cfg.Browser.RemoteURL != "" {
				logger.Info("browser attach", "remote_url", cfg.Browser.RemoteURL)
			} else {
				logger.Info("browser launch", "headless", cfg.Browser.Headless, "exec_path", cfg.Browser.ExecPath)
			}
			tabCtx, closeTab := browser.Attach(ctx, browser.AttachOptions{
				RemoteURL:   cfg.Browser.RemoteURL,
				ExecPath:    cfg.Browser.ExecPath,
				Headless:    cfg.Browser.Headless,
				UserDataDir: cfg.Browser.UserDataDir,
			})
			defer closeTab()

			doc, err := browser.NewDocument(tabCtx, browser.Config{
				CardSelectors:     cfg.Page.CardSelectors,
				ControlsSelector:  cfg.Page.ControlsSelector,
				HighlightSelector: cfg.Page.HighlightSelector,
				StatusSelector:    cfg.Page.StatusSelector,
			}, logger)
			if err != nil {
				return err
			}

			overlay, err := anichart.New(anichart.OverlayConfig{
				Engine: schema.EngineConfig{
					DebounceInterval: time.Duration(cfg.Engine.DebounceMillis) * time.Millisecond,
				},
				PageURL: cfg.Browser.PageURL,
			}, anichart.OverlayDeps{
				Document:  doc,
				Controls:  doc,
				Store:     store,
				Toggles:   doc,
				Navigator: doc,
				Sinks:     []core.SignalSink{&logSink{log: logger}},
				Logger:    logger,
			})
			if err != nil {
				return err
			}

			go func() {
				<-tabCtx.Done()
				stop()
			}()
			go func() {
				<-ctx.Done()
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := overlay.Stop(stopCtx); err != nil {
					logger.Warn("overlay stop failed", "err", err)
				}
			}()

			if err := overlay.Start(tabCtx); err != nil {
				return err
			}
			return overlay.Wait()
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&remoteURL, "remote-url", "", "DevTools endpoint of a running browser")
	cmd.Flags().BoolVar(&headless, "headless", false, "launch the browser headless")
	return cmd
}

type logSink struct {
	log pslog.Logger
}

func (s *logSink) OnControlsChanged() {}

func (s *logSink) OnCardsChanged() {}

func (s *logSink) OnRefresh(stats schema.RefreshStats) {
	s.log.Info("refresh", "cards", stats.Cards, "hidden", stats.Hidden, "aired", stats.Aired)
}
