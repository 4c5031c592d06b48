package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newRootCommand() *cobra.Command {
	v := newConfigViper()
	root := &cobra.Command{
		Use:           "mdt-tui",
		Short:         "Mobile data terminal client for a dispatch backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			cfg, err := loadConfig(v, configFile)
			if err != nil {
				return err
			}
			return runTUI(cmd.Context(), cfg)
		},
	}
	bindConfigFlags(root.PersistentFlags(), v)
	root.AddCommand(newReplayCommand(v))
	return root
}

func runTUI(ctx context.Context, cfg appConfig) error {
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	clientID := uuid.NewString()
	log = log.With(zap.String("client_id", clientID))
	defer func() { _ = log.Sync() }()

	sender := newHTTPCommandSender(cfg.callbackURL, cfg.commandTimeout, clientID, log)
	var sink notifier = mutedNotifier{}
	if !cfg.mute {
		sink = newExecNotifier(cfg.soundDir, cfg.player, cfg.speech, log)
	}
	term := newTerminal(terminalOptions{
		sender:      sender,
		sink:        sink,
		log:         log,
		adminSecret: cfg.adminPassword,
	})

	endpoint, dial := cfg.inboundEndpoint()
	inbound := make(chan tea.Msg, inboundBufferSize)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sender.Run(gctx) })
	if dial != nil {
		g.Go(func() error { return runInboundStream(gctx, endpoint, dial, inbound, log) })
	} else {
		log.Warn("no inbound endpoint configured; waiting for nothing")
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.altScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if cfg.mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	log.Info("terminal starting",
		zap.String("endpoint", endpoint),
		zap.String("callback_url", cfg.callbackURL),
		zap.Bool("muted", cfg.mute),
	)
	_, runErr := tea.NewProgram(newModel(cfg, term, inbound, endpoint), opts...).Run()
	if errors.Is(runErr, tea.ErrProgramKilled) {
		runErr = nil
	}
	if runErr != nil {
		runErr = fmt.Errorf("run ui: %w", runErr)
	}
	cancel()
	waitErr := g.Wait()
	if errors.Is(waitErr, context.Canceled) {
		waitErr = nil
	}
	log.Info("terminal stopped")
	return errors.Join(runErr, waitErr)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "mdt-tui fatal error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
