package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	outboundQueueSize = 256
	maxInflightPosts  = 8
	inboundBufferSize = 256
	maxFrameBytes     = 1 << 20
	initialBackoff    = 250 * time.Millisecond
	maxBackoff        = 5 * time.Second
	wsWriteWait       = 5 * time.Second
	wsPongWait        = 60 * time.Second
	wsPingPeriod      = (wsPongWait * 9) / 10
)

var (
	errFrameInvalid   = errors.New("frame is not valid JSON")
	errFrameNotObject = errors.New("frame is not a JSON object")
	errFrameUnnamed   = errors.New("frame carries no action")
)

// inboundEvent is one named backend push. Data is the raw `data` field; Frame
// keeps the whole object for event-specific top-level fields.
type inboundEvent struct {
	Name  string
	Data  gjson.Result
	Frame gjson.Result
}

func (e inboundEvent) field(key string) gjson.Result {
	return e.Frame.Get(key)
}

func decodeInboundFrame(raw []byte) (inboundEvent, error) {
	trimmed := bytes.TrimSpace(raw)
	if !gjson.ValidBytes(trimmed) {
		return inboundEvent{}, errFrameInvalid
	}
	frame := gjson.ParseBytes(trimmed)
	if !frame.IsObject() {
		return inboundEvent{}, errFrameNotObject
	}
	name := strings.TrimSpace(firstString(frame, "action", "event"))
	if name == "" {
		return inboundEvent{}, errFrameUnnamed
	}
	return inboundEvent{Name: name, Data: frame.Get("data"), Frame: frame}, nil
}

type outboundCommand struct {
	Name    string
	Payload map[string]any
}

// commandSender delivers named commands to the backend. Send never blocks on
// the network and never reports failure to the caller.
type commandSender interface {
	Send(name string, payload map[string]any)
}

// httpCommandSender posts each command as JSON to {baseURL}/{name}. Each post
// runs on its own goroutine, at most maxInflightPosts at once, so a slow
// command never holds back the ones issued after it.
type httpCommandSender struct {
	baseURL string
	client  *resty.Client
	queue   chan outboundCommand
	log     *zap.Logger
}

func newHTTPCommandSender(baseURL string, timeout time.Duration, clientID string, log *zap.Logger) *httpCommandSender {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json; charset=UTF-8").
		SetHeader("X-MDT-Client", clientID)
	return &httpCommandSender{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  client,
		queue:   make(chan outboundCommand, outboundQueueSize),
		log:     log,
	}
}

func (s *httpCommandSender) Send(name string, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	select {
	case s.queue <- outboundCommand{Name: name, Payload: payload}:
	default:
		s.log.Warn("outbound queue full, dropping command", zap.String("command", name))
	}
}

// Run posts queued commands until ctx is done, then waits for in-flight posts
// to be cancelled. Commands still queued at that point are dropped.
func (s *httpCommandSender) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInflightPosts)
	for {
		select {
		case <-ctx.Done():
			return g.Wait()
		case cmd := <-s.queue:
			g.Go(func() error {
				s.post(gctx, cmd)
				return nil
			})
		}
	}
}

func (s *httpCommandSender) post(ctx context.Context, cmd outboundCommand) {
	if s.baseURL == "" {
		s.log.Debug("no callback url configured, dropping command", zap.String("command", cmd.Name))
		return
	}
	url := s.baseURL + "/" + cmd.Name
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(cmd.Payload).
		Post(url)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.Error("command post failed", zap.String("command", cmd.Name), zap.Error(err))
		return
	}
	if resp.IsError() {
		s.log.Warn("command rejected by backend",
			zap.String("command", cmd.Name),
			zap.Int("status", resp.StatusCode()),
			zap.String("body", compactSingleLine(resp.String(), 200)),
		)
		return
	}
	s.log.Debug("command posted", zap.String("command", cmd.Name), zap.Duration("took", resp.Time()))
}

type commandRecorder struct {
	mu       sync.Mutex
	commands []outboundCommand
}

func (r *commandRecorder) Send(name string, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, outboundCommand{Name: name, Payload: payload})
}

func (r *commandRecorder) sent() []outboundCommand {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]outboundCommand, len(r.commands))
	copy(out, r.commands)
	return out
}

func (r *commandRecorder) names() []string {
	sent := r.sent()
	out := make([]string, 0, len(sent))
	for _, cmd := range sent {
		out = append(out, cmd.Name)
	}
	return out
}

func (r *commandRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = nil
}

type inboundFrameMsg struct {
	event inboundEvent
}

type linkStatusMsg struct {
	connected bool
	endpoint  string
	info      string
}

type frameSource interface {
	ReadFrame() ([]byte, error)
	Close() error
}

type frameDialer func(ctx context.Context) (frameSource, error)

type wsFrameSource struct {
	conn *websocket.Conn
	done chan struct{}
	once sync.Once
}

func dialWebsocket(url string, header http.Header) frameDialer {
	return func(ctx context.Context) (frameSource, error) {
		dialer := websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 5 * time.Second,
		}
		conn, _, err := dialer.DialContext(ctx, url, header)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", url, err)
		}
		conn.SetReadLimit(maxFrameBytes)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		src := &wsFrameSource{conn: conn, done: make(chan struct{})}
		go src.keepalive()
		return src, nil
	}
}

func (s *wsFrameSource) keepalive() {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func (s *wsFrameSource) ReadFrame() ([]byte, error) {
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	_ = s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	return data, nil
}

func (s *wsFrameSource) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(wsWriteWait),
		)
		err = s.conn.Close()
	})
	return err
}

type lineFrameSource struct {
	conn    net.Conn
	scanner *bufio.Scanner
}

func dialUnixSocket(path string) frameDialer {
	return func(ctx context.Context) (frameSource, error) {
		dialer := net.Dialer{Timeout: 1500 * time.Millisecond}
		conn, err := dialer.DialContext(ctx, "unix", path)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", path, err)
		}
		return &lineFrameSource{conn: conn, scanner: newLineScanner(conn)}, nil
	}
}

// newLineScanner caps a line at maxFrameBytes, the same limit the websocket
// reader enforces.
func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameBytes)
	return scanner
}

func (s *lineFrameSource) ReadFrame() ([]byte, error) {
	for s.scanner.Scan() {
		if trimmed := bytes.TrimSpace(s.scanner.Bytes()); len(trimmed) > 0 {
			return bytes.Clone(trimmed), nil
		}
	}
	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (s *lineFrameSource) Close() error {
	return s.conn.Close()
}

// runInboundStream keeps one connection to the backend open, reconnecting with
// backoff, and forwards decoded events to out. Link status changes are
// best-effort; events are never dropped while ctx is live.
func runInboundStream(ctx context.Context, endpoint string, dial frameDialer, out chan<- tea.Msg, log *zap.Logger) error {
	backoff := initialBackoff
	lastStatus := ""
	emitStatus := func(connected bool, info string) {
		key := fmt.Sprintf("%t|%s", connected, info)
		if key == lastStatus {
			return
		}
		lastStatus = key
		select {
		case out <- linkStatusMsg{connected: connected, endpoint: endpoint, info: info}:
		default:
		}
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		src, err := dial(ctx)
		if err != nil {
			emitStatus(false, compactSingleLine(err.Error(), 160))
			log.Debug("inbound dial failed", zap.String("endpoint", endpoint), zap.Error(err))
			if !sleepContext(ctx, backoff) {
				return nil
			}
			backoff = minDuration(backoff*2, maxBackoff)
			continue
		}

		backoff = initialBackoff
		emitStatus(true, "connected")
		log.Info("inbound stream connected", zap.String("endpoint", endpoint))

		err = pumpFrames(ctx, src, out, log)
		_ = src.Close()
		if ctx.Err() != nil {
			return nil
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
			log.Warn("inbound stream closed unexpectedly", zap.String("endpoint", endpoint), zap.Error(err))
		} else {
			log.Info("inbound stream ended", zap.String("endpoint", endpoint), zap.Error(err))
		}
		emitStatus(false, compactSingleLine(err.Error(), 160))
		if !sleepContext(ctx, backoff) {
			return nil
		}
	}
}

func pumpFrames(ctx context.Context, src frameSource, out chan<- tea.Msg, log *zap.Logger) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = src.Close()
		case <-stop:
		}
	}()

	for {
		raw, err := src.ReadFrame()
		if err != nil {
			return err
		}
		event, err := decodeInboundFrame(raw)
		if err != nil {
			log.Warn("dropping inbound frame", zap.Error(err), zap.String("raw", compactSingleLine(string(raw), 200)))
			continue
		}
		select {
		case out <- inboundFrameMsg{event: event}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func waitInbound(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
