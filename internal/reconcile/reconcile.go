// Package reconcile decides, per note, which side of a sync is authoritative.
//
// Classify is pure: it sees only identifiers and whole-second timestamps and
// returns one Action per identifier in the union of both sides.
//
//	on filesystem  in database  timestamps   action
//	     yes           no           -        NewOnFilesystem
//	     yes           yes       fs > db     UpdateDatabase
//	     yes           yes       db > fs     UpdateFilesystem
//	     yes           yes       fs == db    NoChange
//	     no            yes          -        NewInDatabase
//
// Equal timestamps are never a conflict. Edits made on both sides within the
// same second are indistinguishable and resolve to NoChange.
package reconcile

import (
	"sort"
	"strconv"
	"strings"
)

// Kind classifies the work needed to bring one note into agreement.
type Kind int

const (
	// NoChange means both sides carry the same modification time.
	NoChange Kind = iota
	// NewOnFilesystem means the note exists only as a bundle.
	NewOnFilesystem
	// UpdateDatabase means the bundle is newer than the stored record.
	UpdateDatabase
	// UpdateFilesystem means the stored record is newer than the bundle.
	UpdateFilesystem
	// NewInDatabase means the note exists only in the database.
	NewInDatabase
)

var kindNames = map[Kind]string{
	NoChange:         "NoChange",
	NewOnFilesystem:  "NewOnFilesystem",
	UpdateDatabase:   "UpdateDatabase",
	UpdateFilesystem: "UpdateFilesystem",
	NewInDatabase:    "NewInDatabase",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// DatabaseWins reports whether applying k writes to the filesystem.
func (k Kind) DatabaseWins() bool {
	return k == UpdateFilesystem || k == NewInDatabase
}

// FilesystemWins reports whether applying k writes to the database.
func (k Kind) FilesystemWins() bool {
	return k == NewOnFilesystem || k == UpdateDatabase
}

// Action is the classification of a single note.
type Action struct {
	Kind Kind
	ID   string
}

func (a Action) String() string {
	return a.Kind.String() + "(" + a.ID + ")"
}

// Classify partitions the union of fsIDs and the keys of dbTimes into actions.
//
// Identifiers are compared case-insensitively. A note present on both sides
// is reported with its filesystem spelling. A filesystem note missing from
// fsTimes is treated as modified at time 0.
//
// Output order: filesystem IDs in input order (repeats collapsed), then
// database-only IDs sorted.
func Classify(fsIDs []string, dbTimes, fsTimes map[string]int64) []Action {
	db := fold(dbTimes)
	fs := fold(fsTimes)

	actions := make([]Action, 0, len(fsIDs)+len(dbTimes))
	seen := make(map[string]bool, len(fsIDs))

	for _, id := range fsIDs {
		key := strings.ToLower(id)
		if seen[key] {
			continue
		}
		seen[key] = true

		d, inDB := db[key]
		if !inDB {
			actions = append(actions, Action{Kind: NewOnFilesystem, ID: id})
			continue
		}

		f := fs[key]
		switch {
		case f > d:
			actions = append(actions, Action{Kind: UpdateDatabase, ID: id})
		case d > f:
			actions = append(actions, Action{Kind: UpdateFilesystem, ID: id})
		default:
			actions = append(actions, Action{Kind: NoChange, ID: id})
		}
	}

	dbIDs := make([]string, 0, len(dbTimes))
	for id := range dbTimes {
		dbIDs = append(dbIDs, id)
	}
	sort.Strings(dbIDs)
	for _, id := range dbIDs {
		key := strings.ToLower(id)
		if seen[key] {
			continue
		}
		seen[key] = true
		actions = append(actions, Action{Kind: NewInDatabase, ID: id})
	}

	return actions
}

// fold re-keys a timestamp map by lowercase ID. When two keys differ only
// in case the later modification time is kept.
func fold(times map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(times))
	for id, ts := range times {
		key := strings.ToLower(id)
		if prev, ok := out[key]; !ok || ts > prev {
			out[key] = ts
		}
	}
	return out
}

// Counts tallies actions by kind.
type Counts struct {
	NoChange         int
	NewOnFilesystem  int
	UpdateDatabase   int
	UpdateFilesystem int
	NewInDatabase    int
}

// Total returns the number of classified notes.
func (c Counts) Total() int {
	return c.NoChange + c.NewOnFilesystem + c.UpdateDatabase + c.UpdateFilesystem + c.NewInDatabase
}

// Changes returns the number of notes that need work.
func (c Counts) Changes() int {
	return c.Total() - c.NoChange
}

// Summarize counts actions by kind.
func Summarize(actions []Action) Counts {
	var c Counts
	for _, a := range actions {
		switch a.Kind {
		case NoChange:
			c.NoChange++
		case NewOnFilesystem:
			c.NewOnFilesystem++
		case UpdateDatabase:
			c.UpdateDatabase++
		case UpdateFilesystem:
			c.UpdateFilesystem++
		case NewInDatabase:
			c.NewInDatabase++
		}
	}
	return c
}
