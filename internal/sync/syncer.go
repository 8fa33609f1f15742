package sync

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/sticky-situation/sticky/internal/bundle"
	"github.com/sticky-situation/sticky/internal/meta"
	"github.com/sticky-situation/sticky/internal/reconcile"
	"github.com/sticky-situation/sticky/internal/rtf"
	"github.com/sticky-situation/sticky/internal/sticky"
)

// Config configures a Syncer.
type Config struct {
	// StickiesDir is the directory holding the .rtfd bundles.
	StickiesDir string
	// StatePath overrides the state file location. When empty it is
	// resolved inside StickiesDir on every Scan.
	StatePath string
	// Hostname is recorded as the origin of notes read from the filesystem.
	Hostname string
	// DryRun classifies without applying.
	DryRun bool
	// ContinueOnError keeps applying actions after a failure.
	ContinueOnError bool
	// Logger receives progress output. Defaults to stderr.
	Logger *log.Logger
	// ConflictLog, when set, receives one line per last-write-wins overwrite.
	ConflictLog *log.Logger
	// Now is the clock used for timing. Defaults to time.Now.
	Now func() time.Time
}

// syncer implements the Syncer interface.
type syncer struct {
	db  Store
	cfg Config
}

// New creates a new Syncer instance.
//
// The database must be initialized and have its schema created before
// passing it to this function.
//
// Example:
//
//	database, err := store.Create(cfg.DatabasePath)
//	if err != nil {
//	    return err
//	}
//	defer database.Close()
//	syncer := sync.New(database, sync.Config{StickiesDir: cfg.StickiesDir})
func New(db Store, cfg Config) Syncer {
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &syncer{
		db:  db,
		cfg: cfg,
	}
}

// Scan implements Syncer.Scan.
func (s *syncer) Scan() (*Snapshot, error) {
	found, err := bundle.Discover(s.cfg.StickiesDir)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		IDs:   bundle.IDs(found),
		Paths: found,
		Times: make(map[string]int64, len(found)),
	}

	for _, id := range snap.IDs {
		ts, err := bundle.LastModified(found[id])
		if err != nil {
			s.cfg.Logger.Printf("WARNING: %v", err)
			continue
		}
		snap.Times[id] = ts
	}

	snap.StatePath = s.cfg.StatePath
	if snap.StatePath == "" {
		snap.StatePath = meta.ResolvePath(s.cfg.StickiesDir)
	}
	snap.Appearances, err = meta.ReadFile(snap.StatePath)
	if err != nil {
		return nil, err
	}

	return snap, nil
}

// Pass implements Syncer.Pass.
func (s *syncer) Pass(ctx context.Context) (*Result, error) {
	start := s.cfg.Now()
	result := &Result{DryRun: s.cfg.DryRun}
	defer func() {
		result.Duration = s.cfg.Now().Sub(start)
	}()

	snap, err := s.Scan()
	if err != nil {
		return result, fmt.Errorf("failed to scan stickies: %w", err)
	}

	dbTimes, err := s.db.ModifiedTimesContext(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read database times: %w", err)
	}

	result.Actions = reconcile.Classify(snap.IDs, dbTimes, snap.Times)
	result.Counts = reconcile.Summarize(result.Actions)
	s.cfg.Logger.Printf("Classified %d notes (%d to apply)", result.Counts.Total(), result.Counts.Changes())

	if s.cfg.DryRun {
		return result, nil
	}

	for _, action := range result.Actions {
		if action.Kind == reconcile.NoChange {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("sync interrupted: %w", err)
		}

		if err := s.apply(ctx, action, snap, dbTimes); err != nil {
			err = fmt.Errorf("failed to apply %s: %w", action, err)
			if !s.cfg.ContinueOnError {
				return result, err
			}
			s.cfg.Logger.Printf("WARNING: %v", err)
			result.Failed = append(result.Failed, Failure{Action: action, Err: err})
			continue
		}

		result.Applied++
		if action.Kind.DatabaseWins() {
			result.FilesystemChanged = true
		}
	}

	s.cfg.Logger.Printf("Sync complete: applied=%d failed=%d", result.Applied, len(result.Failed))
	return result, nil
}

func (s *syncer) apply(ctx context.Context, action reconcile.Action, snap *Snapshot, dbTimes map[string]int64) error {
	switch action.Kind {
	case reconcile.NewOnFilesystem, reconcile.UpdateDatabase:
		return s.toDatabase(ctx, action, snap, dbTimes)
	case reconcile.UpdateFilesystem, reconcile.NewInDatabase:
		return s.toFilesystem(ctx, action, snap)
	}
	return nil
}

// toDatabase stores the bundle and appearance of a note.
func (s *syncer) toDatabase(ctx context.Context, action reconcile.Action, snap *Snapshot, dbTimes map[string]int64) error {
	id := action.ID
	b, err := bundle.Read(snap.Paths[id])
	if err != nil {
		return err
	}

	appearance, _ := meta.Lookup(snap.Appearances, id)
	blob, err := meta.EncodeAppearance(appearance)
	if err != nil {
		return err
	}

	ts := snap.Times[id]
	note := &sticky.Note{
		ID:          id,
		PlainText:   rtf.Extract(b.Document),
		RichText:    b.Document,
		Metadata:    blob,
		Attachments: b.Attachments,
		Color:       appearance.ColorName(),
		CreatedAt:   ts,
		ModifiedAt:  ts,
		OriginHost:  s.cfg.Hostname,
	}

	if action.Kind == reconcile.UpdateDatabase {
		existing, err := s.db.GetContext(ctx, id)
		if err != nil {
			return err
		}
		if existing != nil {
			note.CreatedAt = existing.CreatedAt
			s.conflictf("%s: filesystem wins (fs=%d db=%d)", id, ts, lookupTime(dbTimes, id))
		}
	}

	if err := s.db.UpsertContext(ctx, note); err != nil {
		return err
	}

	s.cfg.Logger.Printf("Stored note: %s (%s)", id, action.Kind)
	return nil
}

// toFilesystem writes a stored note back to its bundle and state entry.
//
// The document is replaced, stored attachments overwrite files of the same
// name, files present only on disk are kept, and the document time is set to
// the stored modification time so the next pass sees no change.
func (s *syncer) toFilesystem(ctx context.Context, action reconcile.Action, snap *Snapshot) error {
	id := action.ID
	note, err := s.db.GetContext(ctx, id)
	if err != nil {
		return err
	}
	if note == nil {
		return fmt.Errorf("%w: %s", sticky.ErrNoteNotFound, id)
	}

	path, ok := snap.Paths[id]
	if !ok {
		if err := bundle.ValidateID(id); err != nil {
			return err
		}
		path = bundle.Path(s.cfg.StickiesDir, id)
	}
	if filepath.Dir(path) != filepath.Clean(s.cfg.StickiesDir) {
		return fmt.Errorf("%w: bundle %s is outside %s", sticky.ErrFormat, path, s.cfg.StickiesDir)
	}

	doc := note.RichText
	if len(doc) == 0 {
		doc = rtf.Minimal(note.PlainText)
	}
	if err := bundle.Write(&bundle.Bundle{Document: doc, Attachments: note.Attachments}, path); err != nil {
		return err
	}

	appearance, err := storedAppearance(note)
	if err != nil {
		return err
	}
	if err := meta.UpdateEntry(snap.StatePath, id, appearance); err != nil {
		return err
	}

	if err := bundle.SetModified(path, note.ModifiedAt); err != nil {
		return err
	}

	if action.Kind == reconcile.UpdateFilesystem {
		s.conflictf("%s: database wins (fs=%d db=%d)", id, snap.Times[id], note.ModifiedAt)
	}
	s.cfg.Logger.Printf("Wrote bundle: %s (%s)", id, action.Kind)
	return nil
}

// storedAppearance decodes a note's metadata blob, falling back to its color
// tag when the blob is empty.
func storedAppearance(note *sticky.Note) (sticky.Appearance, error) {
	if len(note.Metadata) == 0 {
		a := sticky.DefaultAppearance()
		a.ColorIndex = sticky.ColorIndexFor(note.Color)
		return a, nil
	}
	return meta.DecodeAppearance(note.Metadata)
}

func (s *syncer) conflictf(format string, args ...interface{}) {
	if s.cfg.ConflictLog != nil {
		s.cfg.ConflictLog.Printf(format, args...)
	}
}

func lookupTime(times map[string]int64, id string) int64 {
	if ts, ok := times[id]; ok {
		return ts
	}
	for k, ts := range times {
		if sticky.SameID(k, id) {
			return ts
		}
	}
	return 0
}
