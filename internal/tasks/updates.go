package tasks

import (
	"fmt"

	"github.com/desertthunder/pldiff/internal/models"
)

// ProgressUpdate represents a progress event during a comparison.
//
// Used to send real-time updates to the CLI or HTTP layer for display.
type ProgressUpdate struct {
	RunID   string // Comparison run the update belongs to
	Phase   Phase  // Operation phase
	Step    int    // Current step number
	Total   int    // Total steps in the run
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchLeft Phase = iota
	FetchRight
	Normalize
	Compare
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchLeft:
		return "fetch_left"
	case FetchRight:
		return "fetch_right"
	case Normalize:
		return "normalize"
	case Compare:
		return "compare"
	case Done:
		return "done"
	default:
		return ""
	}
}

const compareSteps = 5

func fetchUpdate(runID string, phase Phase, step int, playlistID string) ProgressUpdate {
	side := "left"
	if phase == FetchRight {
		side = "right"
	}
	return ProgressUpdate{
		RunID:   runID,
		Phase:   phase,
		Step:    step,
		Total:   compareSteps,
		Message: fmt.Sprintf("Fetching %s playlist (%s)...", side, playlistID),
	}
}

func normalizeUpdate(runID string, left, right int) ProgressUpdate {
	return ProgressUpdate{
		RunID:   runID,
		Phase:   Normalize,
		Step:    3,
		Total:   compareSteps,
		Message: fmt.Sprintf("Normalized %d + %d tracks", left, right),
	}
}

func compareUpdate(runID string) ProgressUpdate {
	return ProgressUpdate{
		RunID:   runID,
		Phase:   Compare,
		Step:    4,
		Total:   compareSteps,
		Message: "Comparing tracks...",
	}
}

func doneUpdate(runID string, diff models.DiffResult) ProgressUpdate {
	return ProgressUpdate{
		RunID: runID,
		Phase: Done,
		Step:  compareSteps,
		Total: compareSteps,
		Message: fmt.Sprintf("%d shared, %d only left, %d only right",
			len(diff.Intersection), len(diff.OnlyLeft), len(diff.OnlyRight)),
		Data: diff,
	}
}
