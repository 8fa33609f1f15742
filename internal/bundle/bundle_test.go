package bundle

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/sticky-situation/sticky/internal/sticky"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func sortAttachments(a []sticky.Attachment) {
	sort.Slice(a, func(i, j int) bool { return a[i].Name < a[j].Name })
}

func TestRead(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "NOTE.rtfd")
	writeFile(t, filepath.Join(dir, DocumentName), []byte(`{\rtf1 hi}`))
	writeFile(t, filepath.Join(dir, "image.png"), []byte{0x89, 'P', 'N', 'G'})
	writeFile(t, filepath.Join(dir, ".hidden"), []byte("secret"))
	if err := os.MkdirAll(filepath.Join(dir, "subdir"), 0755); err != nil {
		t.Fatal(err)
	}

	b, err := Read(dir)
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}

	if string(b.Document) != `{\rtf1 hi}` {
		t.Errorf("Document = %q", b.Document)
	}

	sortAttachments(b.Attachments)
	if len(b.Attachments) != 2 {
		t.Fatalf("got %d attachments, want 2 (hidden files included, dirs skipped)", len(b.Attachments))
	}
	if b.Attachments[0].Name != ".hidden" || string(b.Attachments[0].Content) != "secret" {
		t.Errorf("attachment[0] = %+v", b.Attachments[0])
	}
	if b.Attachments[1].Name != "image.png" {
		t.Errorf("attachment[1] = %+v", b.Attachments[1])
	}
}

func TestRead_NotADirectory(t *testing.T) {
	tmp := t.TempDir()

	_, err := Read(filepath.Join(tmp, "missing.rtfd"))
	if !sticky.IsNotFound(err) {
		t.Errorf("missing dir: got %v, want not-found", err)
	}

	file := filepath.Join(tmp, "file.rtfd")
	writeFile(t, file, []byte("x"))
	_, err = Read(file)
	if !sticky.IsNotFound(err) {
		t.Errorf("regular file: got %v, want not-found", err)
	}
}

func TestRead_MissingDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "EMPTY.rtfd")
	writeFile(t, filepath.Join(dir, "only.png"), []byte("x"))

	_, err := Read(dir)
	if err == nil {
		t.Fatal("Read() should fail without TXT.rtf")
	}
	if sticky.IsNotFound(err) {
		t.Errorf("missing document is an I/O failure, not a missing bundle: %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected underlying not-exist error, got %v", err)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "deep", "nested", "RT.rtfd")
	want := &Bundle{
		Document: []byte(`{\rtf1\ansi round trip}`),
		Attachments: []sticky.Attachment{
			{Name: "a.png", Content: []byte{1, 2, 3}},
			{Name: ".DS_Store", Content: []byte("meta")},
			{Name: "empty.bin", Content: nil},
		},
	}

	if err := Write(want, dir); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	got, err := Read(dir)
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}

	if !bytes.Equal(got.Document, want.Document) {
		t.Errorf("Document = %q, want %q", got.Document, want.Document)
	}

	sortAttachments(got.Attachments)
	wantAtt := append([]sticky.Attachment(nil), want.Attachments...)
	sortAttachments(wantAtt)
	if len(got.Attachments) != len(wantAtt) {
		t.Fatalf("got %d attachments, want %d", len(got.Attachments), len(wantAtt))
	}
	for i := range wantAtt {
		if got.Attachments[i].Name != wantAtt[i].Name || !bytes.Equal(got.Attachments[i].Content, wantAtt[i].Content) {
			t.Errorf("attachment %d = %+v, want %+v", i, got.Attachments[i], wantAtt[i])
		}
	}
}

func TestWrite_OverwritesAndKeepsOthers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "OW.rtfd")
	writeFile(t, filepath.Join(dir, DocumentName), []byte("old"))
	writeFile(t, filepath.Join(dir, "keep.txt"), []byte("kept"))
	writeFile(t, filepath.Join(dir, "pic.png"), []byte("old pic"))

	err := Write(&Bundle{
		Document:    []byte("new"),
		Attachments: []sticky.Attachment{{Name: "pic.png", Content: []byte("new pic")}},
	}, dir)
	if err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	for name, want := range map[string]string{DocumentName: "new", "pic.png": "new pic", "keep.txt": "kept"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", name, data, want)
		}
	}
}

func TestWrite_RejectsBadNames(t *testing.T) {
	for _, name := range []string{"", ".", "..", "../escape", "a/b", DocumentName} {
		t.Run(name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "BAD.rtfd")
			err := Write(&Bundle{
				Document:    []byte("x"),
				Attachments: []sticky.Attachment{{Name: name, Content: []byte("y")}},
			}, dir)
			if !sticky.IsFormat(err) {
				t.Errorf("Write() with name %q: got %v, want format error", name, err)
			}
			if _, statErr := os.Stat(dir); !os.IsNotExist(statErr) {
				t.Errorf("bundle dir should not be created on invalid input")
			}
		})
	}
}

func TestLastModified(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "TS.rtfd")
	writeFile(t, filepath.Join(dir, DocumentName), []byte("x"))
	writeFile(t, filepath.Join(dir, "att"), []byte("y"))

	docTime := time.Unix(1_600_000_000, 0)
	if err := os.Chtimes(filepath.Join(dir, DocumentName), docTime, docTime); err != nil {
		t.Fatal(err)
	}
	later := time.Unix(1_700_000_000, 0)
	if err := os.Chtimes(filepath.Join(dir, "att"), later, later); err != nil {
		t.Fatal(err)
	}

	got, err := LastModified(dir)
	if err != nil {
		t.Fatalf("LastModified() failed: %v", err)
	}
	if got != 1_600_000_000 {
		t.Errorf("LastModified() = %d, want document time only", got)
	}

	if err := SetModified(dir, 1_650_000_000); err != nil {
		t.Fatalf("SetModified() failed: %v", err)
	}
	if got, _ := LastModified(dir); got != 1_650_000_000 {
		t.Errorf("after SetModified, LastModified() = %d", got)
	}
}

func TestLastModified_MissingDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "NODOC.rtfd")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := LastModified(dir); err == nil {
		t.Error("LastModified() should fail without TXT.rtf")
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"AAA.rtfd", "bbb.rtfd", "notes.txt.d", ".rtfd"} {
		if err := os.MkdirAll(filepath.Join(dir, name), 0755); err != nil {
			t.Fatal(err)
		}
	}
	writeFile(t, filepath.Join(dir, "CCC.rtfd"), []byte("a file, not a bundle"))
	writeFile(t, filepath.Join(dir, ".SavedStickiesState"), []byte("x"))

	found, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	ids := IDs(found)
	if len(ids) != 2 || ids[0] != "AAA" || ids[1] != "bbb" {
		t.Errorf("IDs = %v, want [AAA bbb]", ids)
	}
	if found["AAA"] != Path(dir, "AAA") {
		t.Errorf("path = %q, want %q", found["AAA"], Path(dir, "AAA"))
	}
}

func TestDiscover_MissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"))
	if !sticky.IsNotFound(err) {
		t.Errorf("got %v, want not-found", err)
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"8B0A3C1E-5F2D-4E6A-9C7B-1D2E3F4A5B6C", false},
		{"note-1", false},
		{"TXT.rtf", false},
		{"", true},
		{".", true},
		{"..", true},
		{"../escaped", true},
		{`..\escaped`, true},
		{"a/b", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := ValidateID(tt.id)
			if tt.wantErr {
				if !errors.Is(err, sticky.ErrFormat) {
					t.Errorf("ValidateID(%q) = %v, want ErrFormat", tt.id, err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateID(%q) = %v, want nil", tt.id, err)
			}
		})
	}
}
