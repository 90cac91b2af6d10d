package command

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/okrski/minikv/internal/params"
	"github.com/okrski/minikv/internal/server/redisserver"
	"github.com/okrski/minikv/internal/store"
)

func TestApp(t *testing.T) {
	app := App()
	if app == nil {
		t.Fatal("App returned nil")
	}
	if app.Name != "minikv-cli" {
		t.Errorf("Name = %q, want %q", app.Name, "minikv-cli")
	}

	cmdNames := make(map[string]bool)
	for _, cmd := range app.Commands {
		cmdNames[cmd.Name] = true
	}
	for _, name := range []string{"ping", "echo", "get", "set", "config"} {
		if !cmdNames[name] {
			t.Errorf("missing command: %s", name)
		}
	}
}

func TestSetCommand_Flags(t *testing.T) {
	cmd := SetCommand()

	flagNames := make(map[string]bool)
	for _, flag := range cmd.Flags {
		flagNames[flag.Names()[0]] = true
	}

	for _, name := range []string{"nx", "xx", "get", "ex", "px", "exat", "pxat", "keepttl"} {
		if !flagNames[name] {
			t.Errorf("missing flag: %s", name)
		}
	}
}

func startServer(t *testing.T) string {
	t.Helper()

	cfg := redisserver.DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	srv := redisserver.New(cfg, store.New(), params.New(map[string]params.Value{
		"dir": params.Path("/tmp/minikv"),
	}), nil, nil)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	return srv.Addr().String()
}

func runApp(t *testing.T, addr string, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	app := App()
	app.Writer = &out

	argv := append([]string{"minikv-cli", "--server", addr}, args...)
	if err := app.Run(argv); err != nil {
		t.Fatalf("Run(%v) error = %v", args, err)
	}
	return strings.TrimSpace(out.String())
}

func TestApp_EndToEnd(t *testing.T) {
	addr := startServer(t)

	if got := runApp(t, addr, "ping"); got != "PONG" {
		t.Errorf("ping = %q, want PONG", got)
	}
	if got := runApp(t, addr, "echo", "hello"); got != `"hello"` {
		t.Errorf("echo = %q", got)
	}
	if got := runApp(t, addr, "set", "city", "warsaw"); got != "OK" {
		t.Errorf("set = %q, want OK", got)
	}
	if got := runApp(t, addr, "get", "city"); got != `"warsaw"` {
		t.Errorf("get = %q", got)
	}
	if got := runApp(t, addr, "set", "--nx", "city", "krakow"); got != "(nil)" {
		t.Errorf("set --nx on existing key = %q, want (nil)", got)
	}
	if got := runApp(t, addr, "config", "dir"); !strings.Contains(got, "/tmp/minikv") {
		t.Errorf("config dir = %q", got)
	}
}
