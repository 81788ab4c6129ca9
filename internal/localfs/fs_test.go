package localfs

import (
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestStatMissingIsNotAnError(t *testing.T) {
	fs := NewWithFs(afero.NewMemMapFs())
	info, err := fs.Stat("/nope")
	if err != nil {
		t.Fatalf("missing path must not error: %v", err)
	}
	if info.Exists {
		t.Error("missing path reported as existing")
	}
}

func TestStatExisting(t *testing.T) {
	mem := afero.NewMemMapFs()
	fs := NewWithFs(mem)
	if err := afero.WriteFile(mem, "/dir/f.txt", []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	mtime := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	if err := fs.Chtimes("/dir/f.txt", mtime, mtime); err != nil {
		t.Fatal(err)
	}

	info, err := fs.Stat("/dir/f.txt")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !info.Exists || info.IsDir || info.Size != 5 {
		t.Errorf("got %+v, want existing 5-byte file", info)
	}
	if !info.ModTime.Equal(mtime) {
		t.Errorf("mtime = %v, want %v", info.ModTime, mtime)
	}

	dir, err := fs.Stat("/dir")
	if err != nil || !dir.IsDir {
		t.Errorf("dir stat = %+v, err = %v", dir, err)
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain.txt", "plain.txt"},
		{"a/b.txt", "a_b.txt"},
		{`a\b.txt`, "a_b.txt"},
		{"line\nbreak", "line_break"},
		{"tab\there", "tab_here"},
		{"cr\rhere", "cr_here"},
		{"../escape", ".._escape"},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
