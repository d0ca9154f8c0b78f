package sandbox

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/gwrecon/internal/adapters/http/api"
	"github.com/okian/gwrecon/pkg/logger"
)

// File names written by Prepare.
const (
	InputFile    = "input.csv"
	RegistryFile = "registry.db"
	ConfigFile   = "gwrecon.yaml"
)

// HTTP server timeouts.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Config controls the sandbox.
type Config struct {
	Dir   string
	Rows  int
	Addr  string
	Token string
	Seed  uint64

	Logger logger.Logger // nil discards
}

func (c Config) log() logger.Logger {
	if c.Logger == nil {
		return logger.NewNop()
	}
	return c.Logger
}

// Paths are the files Prepare wrote.
type Paths struct {
	Input    string
	Registry string
	Config   string
}

// Prepare generates a fixture and writes the input list, the registry and a
// config file pointing at http://<cfg.Addr> into cfg.Dir.
func Prepare(ctx context.Context, cfg Config) (Fixture, Paths, error) {
	fx, err := Generate(cfg.Rows, cfg.Seed)
	if err != nil {
		return Fixture{}, Paths{}, err
	}

	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return Fixture{}, Paths{}, fmt.Errorf("resolve %s: %w", cfg.Dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Fixture{}, Paths{}, fmt.Errorf("create %s: %w", dir, err)
	}
	paths := Paths{
		Input:    filepath.Join(dir, InputFile),
		Registry: filepath.Join(dir, RegistryFile),
		Config:   filepath.Join(dir, ConfigFile),
	}

	if err := WriteInput(paths.Input, fx.Requests); err != nil {
		return Fixture{}, Paths{}, err
	}
	if err := SeedRegistry(ctx, paths.Registry, fx.Registry); err != nil {
		return Fixture{}, Paths{}, err
	}
	if err := WriteConfig(paths.Config, "http://"+cfg.Addr, cfg.Token, paths.Registry); err != nil {
		return Fixture{}, Paths{}, err
	}

	cfg.log().Info(ctx, "sandbox prepared",
		logger.String("dir", dir),
		logger.Int("requests", len(fx.Requests)),
		logger.Int("registry_rows", len(fx.Registry)),
	)
	return fx, paths, nil
}

// Handler returns the stub CIP-API routes for fx.
func Handler(fx Fixture, token string) http.Handler {
	mux := http.NewServeMux()
	api.NewServer(fx, token).Register(mux)
	return mux
}

// Serve runs the stub CIP-API on ln until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, ln net.Listener, fx Fixture, cfg Config) error {
	log := cfg.log()
	srv := &http.Server{
		Handler:           Handler(fx, cfg.Token),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting stub CIP-API", logger.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(ctx, "shutting down stub CIP-API...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info(ctx, "stub CIP-API stopped")
	return nil
}
