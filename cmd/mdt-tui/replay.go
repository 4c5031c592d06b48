package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type replayOptions struct {
	format      string
	admin       bool
	adminSecret string
}

func newReplayCommand(v *viper.Viper) *cobra.Command {
	opts := replayOptions{}
	cmd := &cobra.Command{
		Use:   "replay [frames.jsonl]",
		Short: "Feed recorded backend frames through the terminal and print every surface",
		Long: "replay reads newline-delimited backend frames from a file (or stdin when the file\n" +
			"is omitted or \"-\"), dispatches them headless, then prints every surface followed\n" +
			"by the outbound commands and notifications they produced.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			cfg, err := loadConfig(v, configFile)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open frames: %w", err)
				}
				defer f.Close()
				in = f
			}
			opts.adminSecret = cfg.adminPassword
			return runReplay(in, cmd.OutOrStdout(), opts, log)
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "text", "surface format: text or html")
	cmd.Flags().BoolVar(&opts.admin, "admin", false, "render with admin mode enabled")
	return cmd
}

func runReplay(in io.Reader, out io.Writer, opts replayOptions, log *zap.Logger) error {
	render := renderBlockPlain
	switch strings.ToLower(strings.TrimSpace(opts.format)) {
	case "", "text":
	case "html":
		render = renderBlockHTML
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
	if log == nil {
		log = zap.NewNop()
	}

	rec := &commandRecorder{}
	sink := &notificationLog{}
	term := newTerminal(terminalOptions{sender: rec, sink: sink, log: log, adminSecret: opts.adminSecret})
	if opts.admin {
		term.adminLogin(term.adminSecret)
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameBytes)
	frames, handled := 0, 0
	for lineNo := 1; scanner.Scan(); lineNo++ {
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		frames++
		ev, err := decodeInboundFrame(raw)
		if err != nil {
			log.Warn("skipping frame", zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		if term.dispatch(ev) {
			handled++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read frames: %w", err)
	}

	st := term.state
	fmt.Fprintf(out, "# frames=%d handled=%d visible=%t page=%s status=%s admin=%t\n",
		frames, handled, st.visible, st.activePage, st.status, st.isAdmin)
	for _, surface := range allSurfaces {
		fmt.Fprintf(out, "\n## %s\n%s\n", surface, render(term.slot(surface)))
	}

	fmt.Fprintln(out, "\n## outbound")
	for _, c := range rec.sent() {
		payload, err := json.Marshal(c.Payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", c.Name, err)
		}
		fmt.Fprintf(out, "%s %s\n", c.Name, payload)
	}

	fmt.Fprintln(out, "\n## notifications")
	for _, cue := range []soundCue{cueClick, cuePanic, cueCall, cueBolo} {
		if n := sink.count(cue); n > 0 {
			fmt.Fprintf(out, "cue %s x%d\n", cue, n)
		}
	}
	for _, text := range sink.spoken() {
		fmt.Fprintf(out, "speak %q\n", text)
	}
	return nil
}
