package sync

import (
	"context"
	"time"

	"github.com/sticky-situation/sticky/internal/reconcile"
	"github.com/sticky-situation/sticky/internal/sticky"
)

// Syncer reconciles the Stickies data directory with the note database.
//
// One pass reads both sides fresh, classifies every note, and applies the
// resulting actions in order. Nothing is cached between passes; running Pass
// again after an interrupted pass picks up where the previous one stopped.
type Syncer interface {
	// Scan reads the filesystem side: bundle IDs, primary document times
	// and the appearance map from the state file.
	//
	// Returns an error wrapping sticky.ErrNotFound if the Stickies directory
	// is missing, or sticky.ErrFormat if the state file is malformed.
	//
	// Example:
	//   snap, err := syncer.Scan()
	Scan() (*Snapshot, error)

	// Pass performs one reconciliation pass.
	//
	// By default the first failed action stops the pass and its error is
	// returned along with the partial Result. With Config.ContinueOnError
	// failures are collected in Result.Failed instead. With Config.DryRun
	// the actions are classified but not applied.
	//
	// Example:
	//   result, err := syncer.Pass(ctx)
	Pass(ctx context.Context) (*Result, error)
}

// Store is the subset of the note database a Syncer needs.
// *store.DB satisfies it.
type Store interface {
	ModifiedTimesContext(ctx context.Context) (map[string]int64, error)
	GetContext(ctx context.Context, id string) (*sticky.Note, error)
	UpsertContext(ctx context.Context, note *sticky.Note) error
}

// Snapshot is the filesystem side of a pass.
type Snapshot struct {
	// IDs lists every discovered bundle, sorted.
	IDs []string
	// Paths maps each ID to its bundle directory.
	Paths map[string]string
	// Times holds primary document times. Bundles whose document could not
	// be read have no entry.
	Times map[string]int64
	// Appearances is the decoded state file.
	Appearances map[string]sticky.Appearance
	// StatePath is the state file that was read.
	StatePath string
}

// Failure records an action that could not be applied.
type Failure struct {
	Action reconcile.Action
	Err    error
}

// Result reports what a pass did.
type Result struct {
	Actions []reconcile.Action
	Counts  reconcile.Counts
	// Applied counts actions carried out, NoChange excluded.
	Applied int
	Failed  []Failure
	// FilesystemChanged is set when a bundle or the state file was written.
	FilesystemChanged bool
	DryRun            bool
	Duration          time.Duration
}
