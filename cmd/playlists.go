package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/desertthunder/pldiff/internal/formatter"
	"github.com/desertthunder/pldiff/internal/services"
	"github.com/desertthunder/pldiff/internal/shared"
	"github.com/desertthunder/pldiff/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the embedded example configuration
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config created", "path", path)
	return r.writePlain("✓ Configuration written to %s\n", path)
}

// Token acquires a credential and reports when it was issued
func (r *Runner) Token(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Spotify
	if !creds.Ready() {
		return fmt.Errorf("%w: client id and client secret are required", shared.ErrMissingCredentials)
	}

	tok, err := r.auth.Acquire(ctx, creds.ClientID, creds.ClientSecret)
	if err != nil {
		return err
	}
	defer r.tokens.Stop()

	if err := r.writePlain("[%s] Successfully acquired token\n", r.clock().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	if tok.Expiry.IsZero() {
		return nil
	}
	return r.writePlain("  Expires: %s\n", tok.Expiry.UTC().Format(time.RFC3339))
}

// Tracks lists the canonical tracks of one playlist
func (r *Runner) Tracks(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"),
		formatter.Text, formatter.JSON, formatter.CSV, formatter.Markdown)
	if err != nil {
		return err
	}

	playlistID, err := services.ParsePlaylistRef(cmd.StringArg("playlist"))
	if err != nil {
		return err
	}

	if err := r.ensureToken(ctx); err != nil {
		return err
	}
	defer r.tokens.Stop()

	r.logger.Info("loading playlist", "playlist", playlistID)

	pl, err := r.engine.Load(ctx, playlistID)
	if err != nil {
		return err
	}

	return r.emit(cmd.String("output"), func(w io.Writer) error {
		return formatter.WriteTracks(w, pl, format)
	})
}

// Diff compares two playlists
func (r *Runner) Diff(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"),
		formatter.Text, formatter.JSON, formatter.Markdown)
	if err != nil {
		return err
	}

	leftID, err := services.ParsePlaylistRef(cmd.StringArg("left"))
	if err != nil {
		return fmt.Errorf("left: %w", err)
	}
	rightID, err := services.ParsePlaylistRef(cmd.StringArg("right"))
	if err != nil {
		return fmt.Errorf("right: %w", err)
	}

	if err := r.ensureToken(ctx); err != nil {
		return err
	}
	defer r.tokens.Stop()

	progress := make(chan tasks.ProgressUpdate, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	cmp, err := r.engine.Compare(ctx, leftID, rightID, progress)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	output := cmd.String("output")
	palette := r.palette
	if output != "" {
		palette = nil
	}

	return r.emit(output, func(w io.Writer) error {
		return formatter.WriteDiff(w, cmp, format, palette)
	})
}
