// Package cli implements the veracity operator console: an interactive
// shell that submits reports, verifies them and inspects users over gRPC.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/client/config"
	gs "github.com/mohitexpo007/Ocean-Hazard-App/internal/server/grpc"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// apiClient is the transport surface the console needs. *gs.Client
// satisfies it.
type apiClient interface {
	Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type App struct {
	config *config.Config
	api    apiClient
	conn   io.Closer
	reader *bufio.Reader
	out    io.Writer

	mu    sync.RWMutex
	mode  Mode
	token string
}

func NewApp(c *config.Config) (*App, error) {
	conn, err := grpc.NewClient(c.ServerEndpointAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.ServerEndpointAddr, err)
	}

	a := newApp(c, gs.NewClient(conn), bufio.NewReader(os.Stdin), os.Stdout)
	a.conn = conn
	return a, nil
}

func newApp(c *config.Config, api apiClient, r *bufio.Reader, w io.Writer) *App {
	return &App{
		config: c,
		api:    api,
		reader: r,
		out:    w,
		mode:   ModeOffline,
		token:  c.AccessToken,
	}
}

func (a *App) setMode(m Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mode = m
}

func (a *App) getMode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setToken(t string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = t
}

func (a *App) getToken() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

func (a *App) hasToken() bool { return a.getToken() != "" }

// StartOnlineStatusWatcher pings the server every interval and flips the
// console mode accordingly. It returns when ctx is cancelled.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) status() string {
	s := string(a.getMode())
	if a.hasToken() {
		s += " verifier"
	}
	return fmt.Sprintf("(%s)", s)
}

// Run checks connectivity, starts the status watcher and runs the shell on
// stdin until exit or EOF.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if a.conn != nil {
		defer a.conn.Close()
	}

	fmt.Fprintln(a.out, "Veracity operator console (type 'help' for commands)")
	a.checkOnline(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader), a.out)
}
