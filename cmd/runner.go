package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/pldiff/internal/formatter"
	"github.com/desertthunder/pldiff/internal/services"
	"github.com/desertthunder/pldiff/internal/shared"
	"github.com/desertthunder/pldiff/internal/tasks"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	palette    *formatter.Palette
	clock      func() time.Time

	tokens  *services.TokenStore
	auth    *services.Authenticator
	fetcher *services.PlaylistFetcher
	engine  *tasks.PlaylistEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Palette    *formatter.Palette
	Clock      func() time.Time
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Palette == nil {
		opts.Palette = formatter.DefaultPalette()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	r := &Runner{
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		palette:    opts.Palette,
		clock:      opts.Clock,
	}
	r.configure(opts.Config)
	return r
}

// configure (re)builds the service graph for config. Any refresh scheduled by a previous graph is cancelled.
func (r *Runner) configure(config *shared.Config) {
	if r.tokens != nil {
		r.tokens.Stop()
	}

	client := r.httpClient
	if client == nil {
		client = &http.Client{Timeout: config.API.Timeout()}
	}

	r.config = config
	r.tokens = services.NewTokenStore(r.logger)
	r.auth = services.NewAuthenticator(r.tokens, services.AuthOptions{
		TokenURL:   config.API.TokenURL,
		HTTPClient: client,
		Logger:     r.logger,
	})
	r.fetcher = services.NewPlaylistFetcher(r.tokens, services.FetcherOptions{
		BaseURL:           config.API.BaseURL,
		PageSize:          config.API.PageSize,
		Market:            config.API.Market,
		Fields:            config.API.Fields,
		RequestsPerSecond: config.API.RequestsPerSecond,
		Burst:             config.API.Burst,
		HTTPClient:        client,
		Logger:            r.logger,
	})
	r.engine = tasks.NewPlaylistEngine(r.fetcher, r.logger)
}

// Before loads the configuration, applies flag overrides and wires the services for the command being run.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	config, err := loadConfig(path, cmd.IsSet("config"))
	if err != nil {
		return ctx, err
	}

	if id := cmd.String("client-id"); id != "" {
		config.Credentials.Spotify.ClientID = id
	}
	if secret := cmd.String("client-secret"); secret != "" {
		config.Credentials.Spotify.ClientSecret = secret
	}
	if level := cmd.String("log-level"); level != "" {
		config.Log.Level = level
	}

	if err := config.Validate(); err != nil {
		return ctx, err
	}

	level, err := shared.ParseLogLevel(config.Log.Level)
	if err != nil {
		return ctx, err
	}
	shared.SetLogLevel(r.logger, level)

	r.configPath = path
	r.configure(config)
	return ctx, nil
}

// loadConfig reads path, falling back to the embedded defaults when the file is absent and was not asked for.
func loadConfig(path string, explicit bool) (*shared.Config, error) {
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return shared.DefaultConfig(), nil
		}
		return nil, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
	}

	return shared.LoadConfig(path)
}

// ensureToken acquires a credential unless one is already held.
func (r *Runner) ensureToken(ctx context.Context) error {
	if _, ok := r.tokens.Current(); ok {
		return nil
	}

	creds := r.config.Credentials.Spotify
	if !creds.Ready() {
		return fmt.Errorf("%w: set [credentials.spotify] in %s, pass --client-id/--client-secret or export SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET",
			shared.ErrMissingCredentials, r.configFile())
	}

	_, err := r.auth.Acquire(ctx, creds.ClientID, creds.ClientSecret)
	return err
}

func (r *Runner) configFile() string {
	if r.configPath == "" {
		return defaultConfigPath
	}
	return r.configPath
}

// emit writes rendered output to the file at path, or to the runner's output when path is empty.
func (r *Runner) emit(path string, render func(io.Writer) error) error {
	if path == "" {
		return render(r.output)
	}

	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	if err := formatter.WriteFile(path, buf.Bytes()); err != nil {
		return err
	}

	r.logger.Info("output written", "path", path)
	return r.writePlain("✓ Written to %s\n", path)
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
