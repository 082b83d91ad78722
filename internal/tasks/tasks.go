package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/pldiff/internal/models"
	"github.com/desertthunder/pldiff/internal/services"
	"github.com/desertthunder/pldiff/internal/shared"
	"golang.org/x/sync/errgroup"
)

// Comparer loads playlists and compares them.
type Comparer interface {
	// Load fetches and normalizes every track of one playlist.
	Load(ctx context.Context, playlistID string) (*models.PlaylistTracks, error)

	// Compare loads two playlists concurrently and diffs them. Any failure aborts the whole comparison.
	Compare(ctx context.Context, leftID, rightID string, progress chan<- ProgressUpdate) (*models.Comparison, error)
}

// PlaylistEngine implements [Comparer] over a [services.TrackSource].
type PlaylistEngine struct {
	source services.TrackSource
	logger *log.Logger
}

// NewPlaylistEngine creates a new PlaylistEngine reading playlists from source.
func NewPlaylistEngine(source services.TrackSource, logger *log.Logger) *PlaylistEngine {
	return &PlaylistEngine{
		source: source,
		logger: shared.WithLogger(logger, "component", "engine"),
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Load fetches and normalizes every track of one playlist.
func (e *PlaylistEngine) Load(ctx context.Context, playlistID string) (*models.PlaylistTracks, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: track source not initialized", shared.ErrServiceUnavailable)
	}

	entries, err := e.source.FetchAll(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	tracks, err := services.Normalize(entries)
	if err != nil {
		return nil, fmt.Errorf("playlist %s: %w", playlistID, err)
	}

	return &models.PlaylistTracks{ID: playlistID, Tracks: tracks}, nil
}

// Compare loads both playlists concurrently, then diffs them.
//
// No partial list ever reaches [Diff]: the first failure cancels the other fetch and is returned.
func (e *PlaylistEngine) Compare(ctx context.Context, leftID, rightID string, progress chan<- ProgressUpdate) (*models.Comparison, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: track source not initialized", shared.ErrServiceUnavailable)
	}

	runID := shared.GenerateID()
	logger := e.logger.With("run", runID)
	logger.Info("comparing playlists", "left", leftID, "right", rightID)

	var left, right *models.PlaylistTracks

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		e.sendProgress(progress, fetchUpdate(runID, FetchLeft, 1, leftID))
		pl, err := e.Load(gctx, leftID)
		if err != nil {
			return fmt.Errorf("left playlist: %w", err)
		}
		left = pl
		return nil
	})
	g.Go(func() error {
		e.sendProgress(progress, fetchUpdate(runID, FetchRight, 2, rightID))
		pl, err := e.Load(gctx, rightID)
		if err != nil {
			return fmt.Errorf("right playlist: %w", err)
		}
		right = pl
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("comparison aborted", "error", err)
		return nil, err
	}

	e.sendProgress(progress, normalizeUpdate(runID, len(left.Tracks), len(right.Tracks)))
	e.sendProgress(progress, compareUpdate(runID))

	diff := Diff(left.Tracks, right.Tracks)

	e.sendProgress(progress, doneUpdate(runID, diff))
	logger.Info("comparison complete",
		"shared", len(diff.Intersection), "only_left", len(diff.OnlyLeft), "only_right", len(diff.OnlyRight))

	return &models.Comparison{RunID: runID, Left: *left, Right: *right, Diff: diff}, nil
}
