// Package sync reconciles the Stickies data directory with the note database.
//
// Overview
//
// Stickies.app keeps each note as a <ID>.rtfd bundle next to a property list
// of window state. sticky keeps a SQLite copy of every note for search. A
// pass brings the two into agreement using last-write-wins on whole-second
// modification times.
//
// Architecture
//
//	Stickies data directory                         SQLite database
//	     ├── <ID>.rtfd/TXT.rtf    ─┐                ┌─ notes
//	     ├── <ID>.rtfd/<files>     ├─ Scan ─┐  ┌────┤  attachments
//	     └── .SavedStickiesState  ─┘        │  │    └─ notes_fts
//	                                        ↓  ↓
//	                                 reconcile.Classify
//	                                        ↓
//	                               apply actions in order
//
// Filesystem-wins actions (NewOnFilesystem, UpdateDatabase) read the bundle,
// extract plain text for the index, encode the note's appearance and upsert
// the record. UpdateDatabase keeps the stored creation time.
//
// Database-wins actions (UpdateFilesystem, NewInDatabase):
//
//	1. TXT.rtf is rewritten from the stored rich text (a minimal document is
//	   generated from the plain text when none is stored)
//	2. stored attachments are written over files of the same name; files
//	   that exist only on disk are left alone
//	3. the note's entry in the state file is updated from the stored
//	   appearance; every other entry is written back unchanged
//	4. the TXT.rtf modification time is set to the stored modification time
//
// Step 4 makes the next pass classify the note as NoChange. A note whose ID
// is not a plain file name fails with sticky.ErrFormat before step 1, so a
// bundle is never written outside the Stickies directory.
//
// Usage
//
//	database, err := store.Create(cfg.DatabasePath)
//	if err != nil {
//	    return err
//	}
//	defer database.Close()
//
//	syncer := sync.New(database, sync.Config{
//	    StickiesDir: cfg.StickiesDir,
//	    Hostname:    cfg.Hostname,
//	})
//
//	result, err := syncer.Pass(ctx)
//	if err != nil {
//	    return err
//	}
//	if result.FilesystemChanged {
//	    // Stickies.app only rereads its files on launch
//	}
//
// Error Handling
//
// The default is fail-fast: the first action that fails stops the pass and
// its error is returned. Actions already applied stay applied; each upsert is
// its own transaction, so a rerun resumes from fresh timestamps.
//
// With Config.ContinueOnError the failure is logged, recorded in
// Result.Failed, and the pass moves on.
//
// Concurrency
//
// A pass is sequential and assumes it is the only writer to both the
// Stickies directory and the database file.
package sync
