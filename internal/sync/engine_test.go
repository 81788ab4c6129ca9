package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dl-alexandre/dsync/internal/localfs"
	"github.com/dl-alexandre/dsync/internal/sync/policy"
	"github.com/dl-alexandre/dsync/internal/testing/mocks"
	"github.com/dl-alexandre/dsync/internal/types"
	"github.com/spf13/afero"
)

var (
	t50  = time.Date(2024, 5, 10, 12, 0, 50, 0, time.UTC)
	t100 = time.Date(2024, 5, 10, 12, 1, 40, 0, time.UTC)
	t200 = time.Date(2024, 5, 10, 12, 3, 20, 0, time.UTC)
)

func newTestEngine(t *testing.T, store *mocks.FakeStore, opts Options) (*Engine, afero.Fs) {
	t.Helper()
	cfg, err := NewConfig(opts)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	mem := afero.NewMemMapFs()
	return New(store, localfs.NewWithFs(mem), cfg), mem
}

func testReqCtx() *types.RequestContext {
	return &types.RequestContext{TraceID: "test", RequestType: types.RequestTypeContent}
}

// seedTree builds the canonical fixture: report.pdf at the root and
// sub/notes.txt one level down.
func seedTree(store *mocks.FakeStore) (report, notes *types.RemoteItem) {
	report = store.AddFile("root", "report.pdf", []byte("pdf-bytes"), t100)
	sub := store.AddFolder("root", "sub")
	notes = store.AddFile(sub.ID, "notes.txt", []byte("meeting notes"), t50)
	return report, notes
}

func TestDownloadFreshTree(t *testing.T) {
	store := mocks.NewFakeStore()
	seedTree(store)
	eng, mem := newTestEngine(t, store, Options{})

	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "drive:root", "/dest")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(outcomes))
	}
	for _, o := range outcomes {
		if !o.Transferred || o.Reason != policy.ReasonNotFoundLocally {
			t.Errorf("%s: got %+v, want not-found-locally transfer", o.Path, o)
		}
	}

	data, err := afero.ReadFile(mem, "/dest/report.pdf")
	if err != nil || string(data) != "pdf-bytes" {
		t.Errorf("report.pdf content = %q, err = %v", data, err)
	}
	data, err = afero.ReadFile(mem, "/dest/sub/notes.txt")
	if err != nil || string(data) != "meeting notes" {
		t.Errorf("notes.txt content = %q, err = %v", data, err)
	}

	fi, err := mem.Stat("/dest/report.pdf")
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.ModTime().Unix() != t100.Unix() {
		t.Errorf("report.pdf mtime = %v, want %v", fi.ModTime(), t100)
	}
}

func TestDownloadSecondRunSkips(t *testing.T) {
	store := mocks.NewFakeStore()
	seedTree(store)
	eng, _ := newTestEngine(t, store, Options{})

	if _, err := eng.Sync(context.Background(), testReqCtx(), "drive:root", "/dest"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	fetches := store.Calls["FetchContent"]

	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "drive:root", "/dest")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for _, o := range outcomes {
		if o.Transferred || o.Reason != policy.ReasonLocalNewerOrSame {
			t.Errorf("%s: got %+v, want local-newer-or-same skip", o.Path, o)
		}
	}
	if store.Calls["FetchContent"] != fetches {
		t.Errorf("second run fetched content; runs over unchanged trees must not transfer")
	}
}

func TestDownloadRemoteTouched(t *testing.T) {
	store := mocks.NewFakeStore()
	report, _ := seedTree(store)
	eng, _ := newTestEngine(t, store, Options{})

	if _, err := eng.Sync(context.Background(), testReqCtx(), "drive:root", "/dest"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	store.SetModified(report.ID, t200)

	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "drive:root", "/dest")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	byPath := outcomesByPath(outcomes)
	if o := byPath["/dest/report.pdf"]; !o.Transferred || o.Reason != policy.ReasonRemoteNewer {
		t.Errorf("report.pdf: got %+v, want remote-newer transfer", o)
	}
	if o := byPath["/dest/sub/notes.txt"]; o.Transferred {
		t.Errorf("notes.txt: got %+v, want skip", o)
	}
}

func TestDownloadForceTransfersEverything(t *testing.T) {
	store := mocks.NewFakeStore()
	seedTree(store)
	eng, _ := newTestEngine(t, store, Options{Mode: policy.ModeForce})

	if _, err := eng.Sync(context.Background(), testReqCtx(), "drive:root", "/dest"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "drive:root", "/dest")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for _, o := range outcomes {
		if !o.Transferred || o.Reason != policy.ReasonForce {
			t.Errorf("%s: got %+v, want force transfer", o.Path, o)
		}
	}
}

func TestDownloadSkipExistingNeverOverwrites(t *testing.T) {
	store := mocks.NewFakeStore()
	report, _ := seedTree(store)
	eng, _ := newTestEngine(t, store, Options{Mode: policy.ModeSkipExisting})

	if _, err := eng.Sync(context.Background(), testReqCtx(), "drive:root", "/dest"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	store.SetModified(report.ID, t200)

	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "drive:root", "/dest")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for _, o := range outcomes {
		if o.Transferred || o.Reason != policy.ReasonSkipExisting {
			t.Errorf("%s: got %+v, want skip-existing", o.Path, o)
		}
	}
}

func TestDownloadFlattenOrdering(t *testing.T) {
	store := mocks.NewFakeStore()
	store.AddFile("root", "a.txt", []byte("a"), t50)
	folderB := store.AddFolder("root", "b")
	store.AddFile(folderB.ID, "b1.txt", []byte("b1"), t50)
	store.AddFile("root", "c.txt", []byte("c"), t50)
	folderD := store.AddFolder("root", "d")
	store.AddFile(folderD.ID, "d1.txt", []byte("d1"), t50)
	store.PageSize = 2

	eng, _ := newTestEngine(t, store, Options{Concurrency: 3})
	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "drive:root", "/dest")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	// Page 1 holds [a.txt, b]; page 2 holds [c.txt, d]. Within each page
	// leaves land before folder subtrees, and pages keep listing order.
	want := []string{
		"/dest/a.txt",
		"/dest/b/b1.txt",
		"/dest/c.txt",
		"/dest/d/d1.txt",
	}
	if len(outcomes) != len(want) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(want))
	}
	for i, o := range outcomes {
		if o.Path != want[i] {
			t.Errorf("outcomes[%d].Path = %s, want %s", i, o.Path, want[i])
		}
	}
}

func TestDownloadExportsVirtualDocument(t *testing.T) {
	store := mocks.NewFakeStore()
	store.AddVirtual("root", "Plan", "application/vnd.google-apps.document",
		[]byte("exported-docx"), t100)

	eng, mem := newTestEngine(t, store, Options{})
	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "drive:root", "/dest")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Path != "/dest/Plan.docx" {
		t.Fatalf("got %+v, want one outcome at /dest/Plan.docx", outcomes)
	}
	data, err := afero.ReadFile(mem, "/dest/Plan.docx")
	if err != nil || string(data) != "exported-docx" {
		t.Errorf("Plan.docx content = %q, err = %v", data, err)
	}
	if store.Calls["FetchContent"] != 0 {
		t.Error("virtual documents must go through export, not raw fetch")
	}
}

func TestDownloadExportFormatOverride(t *testing.T) {
	store := mocks.NewFakeStore()
	store.AddVirtual("root", "Plan", "application/vnd.google-apps.document",
		[]byte("exported-pdf"), t100)

	eng, mem := newTestEngine(t, store, Options{
		ExportFormats: map[string]string{"document": "pdf"},
	})
	if _, err := eng.Sync(context.Background(), testReqCtx(), "drive:root", "/dest"); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if _, err := mem.Stat("/dest/Plan.pdf"); err != nil {
		t.Errorf("expected /dest/Plan.pdf: %v", err)
	}
}

func TestDownloadResolvesShortcut(t *testing.T) {
	store := mocks.NewFakeStore()
	hidden := store.AddFolder("root", "hidden")
	target := store.AddFile(hidden.ID, "target.bin", []byte("target-bytes"), t100)
	store.AddShortcut("root", "Link", target, t200)

	eng, mem := newTestEngine(t, store, Options{})
	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "drive:root", "/dest")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	byPath := outcomesByPath(outcomes)
	o, ok := byPath["/dest/Link"]
	if !ok || !o.Transferred {
		t.Fatalf("got %+v, want a transfer at /dest/Link", outcomes)
	}
	data, err := afero.ReadFile(mem, "/dest/Link")
	if err != nil || string(data) != "target-bytes" {
		t.Errorf("Link content = %q, err = %v", data, err)
	}
	fi, _ := mem.Stat("/dest/Link")
	if fi.ModTime().Unix() != t200.Unix() {
		t.Errorf("shortcut keeps its own timestamps: mtime = %v, want %v", fi.ModTime(), t200)
	}
}

func TestDownloadSanitizesNames(t *testing.T) {
	store := mocks.NewFakeStore()
	store.AddFile("root", "bad/name.txt", []byte("x"), t50)

	eng, mem := newTestEngine(t, store, Options{})
	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "drive:root", "/dest")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if outcomes[0].Path != "/dest/bad_name.txt" {
		t.Errorf("path = %s, want separators replaced", outcomes[0].Path)
	}
	if _, err := mem.Stat("/dest/bad_name.txt"); err != nil {
		t.Errorf("expected sanitized file: %v", err)
	}
}

func TestDownloadSingleFileRoot(t *testing.T) {
	store := mocks.NewFakeStore()
	report := store.AddFile("root", "report.pdf", []byte("pdf-bytes"), t100)

	eng, mem := newTestEngine(t, store, Options{})
	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "drive:"+report.ID, "/dest")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Path != "/dest/report.pdf" {
		t.Fatalf("got %+v, want single outcome at /dest/report.pdf", outcomes)
	}
	if store.Calls["ListChildren"] != 0 {
		t.Error("single-file roots must not be traversed")
	}
	if _, err := mem.Stat("/dest/report.pdf"); err != nil {
		t.Errorf("expected downloaded file: %v", err)
	}
}

func TestDownloadSubtreeFailureKeepsSiblings(t *testing.T) {
	store := mocks.NewFakeStore()
	store.AddFile("root", "a.txt", []byte("a"), t50)
	broken := store.AddFolder("root", "broken")
	store.AddFile(broken.ID, "lost.txt", []byte("lost"), t50)
	store.ListErr[broken.ID] = errors.New("listing boom")

	eng, mem := newTestEngine(t, store, Options{})
	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "drive:root", "/dest")
	if err != nil {
		t.Fatalf("a subtree failure must not fail the run: %v", err)
	}

	byPath := outcomesByPath(outcomes)
	if o := byPath["/dest/a.txt"]; !o.Transferred {
		t.Errorf("sibling a.txt: got %+v, want transfer", o)
	}
	if o := byPath["/dest/broken"]; o.Err == nil {
		t.Errorf("broken subtree: got %+v, want error outcome", o)
	}
	if _, err := mem.Stat("/dest/a.txt"); err != nil {
		t.Errorf("sibling file missing: %v", err)
	}
}

func TestDownloadItemFailureRecordedNotFatal(t *testing.T) {
	store := mocks.NewFakeStore()
	bad := store.AddFile("root", "bad.bin", []byte("x"), t50)
	store.AddFile("root", "good.bin", []byte("y"), t50)
	store.FetchErr[bad.ID] = errors.New("fetch boom")

	eng, _ := newTestEngine(t, store, Options{})
	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "drive:root", "/dest")
	if err != nil {
		t.Fatalf("item failures must not fail the run: %v", err)
	}
	s := Summarize(outcomes)
	if s.Failed != 1 || s.Transferred != 1 {
		t.Errorf("summary %+v, want 1 failed and 1 transferred", s)
	}
}

func TestDownloadAbortOnError(t *testing.T) {
	store := mocks.NewFakeStore()
	bad := store.AddFile("root", "bad.bin", []byte("x"), t50)
	later := store.AddFolder("root", "later")
	store.AddFile(later.ID, "more.bin", []byte("y"), t50)
	store.FetchErr[bad.ID] = errors.New("fetch boom")

	eng, _ := newTestEngine(t, store, Options{AbortOnError: true})
	_, err := eng.Sync(context.Background(), testReqCtx(), "drive:root", "/dest")
	if err == nil {
		t.Fatal("expected abort error")
	}
	if store.Calls["ListChildren"] != 1 {
		t.Errorf("made %d listings, want 1; aborted runs must not schedule new batches",
			store.Calls["ListChildren"])
	}
}

func TestDownloadDryRun(t *testing.T) {
	store := mocks.NewFakeStore()
	seedTree(store)

	eng, mem := newTestEngine(t, store, Options{DryRun: true})
	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "drive:root", "/dest")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(outcomes))
	}
	for _, o := range outcomes {
		if !o.Transferred {
			t.Errorf("%s: dry run should still plan the transfer", o.Path)
		}
	}
	if store.Calls["FetchContent"] != 0 {
		t.Error("dry run must not fetch content")
	}
	if exists, _ := afero.DirExists(mem, "/dest"); exists {
		t.Error("dry run must not touch the local filesystem")
	}
}

func TestDownloadPreScanSetsTotal(t *testing.T) {
	store := mocks.NewFakeStore()
	seedTree(store)

	cfg, err := NewConfig(Options{PreScan: true})
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	eng := New(store, localfs.NewWithFs(afero.NewMemMapFs()), cfg)
	if _, err := eng.Download(context.Background(), testReqCtx(), "root", "/dest"); err != nil {
		t.Fatalf("Download: %v", err)
	}
	snap := cfg.Tracker.Snapshot()
	if !snap.HasTotal || snap.Total != 2 {
		t.Errorf("total = %d (has=%v), want 2 from pre-scan", snap.Total, snap.HasTotal)
	}
}

func TestUploadCreatesTree(t *testing.T) {
	store := mocks.NewFakeStore()
	eng, mem := newTestEngine(t, store, Options{})
	writeLocal(t, mem, "/src/a.txt", "alpha", t100)
	writeLocal(t, mem, "/src/sub/b.txt", "beta", t50)

	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "/src", "drive:root")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(outcomes))
	}
	for _, o := range outcomes {
		if !o.Transferred || o.Reason != policy.ReasonCreated {
			t.Errorf("%s: got %+v, want created", o.Path, o)
		}
	}

	a, err := store.FindChildByName(context.Background(), testReqCtx(), "root", "a.txt")
	if err != nil || a == nil {
		t.Fatalf("a.txt not uploaded: %v", err)
	}
	if string(store.Content(a.ID)) != "alpha" {
		t.Errorf("a.txt content = %q", store.Content(a.ID))
	}
	sub, _ := store.FindChildByName(context.Background(), testReqCtx(), "root", "sub")
	if sub == nil || sub.Kind != types.KindFolder {
		t.Fatal("sub folder not created remotely")
	}
	b, _ := store.FindChildByName(context.Background(), testReqCtx(), sub.ID, "b.txt")
	if b == nil || string(store.Content(b.ID)) != "beta" {
		t.Error("b.txt not uploaded into sub")
	}
}

func TestUploadSecondRunSkips(t *testing.T) {
	store := mocks.NewFakeStore()
	eng, mem := newTestEngine(t, store, Options{})
	writeLocal(t, mem, "/src/a.txt", "alpha", t100)

	if _, err := eng.Sync(context.Background(), testReqCtx(), "/src", "drive:root"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "/src", "drive:root")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for _, o := range outcomes {
		if o.Transferred || o.Reason != policy.ReasonRemoteNewerOrSame {
			t.Errorf("%s: got %+v, want remote-newer-or-same skip", o.Path, o)
		}
	}
	if store.Calls["UpdateContent"] != 0 {
		t.Error("unchanged files must not be re-uploaded")
	}
}

func TestUploadUpdatesWhenLocalNewer(t *testing.T) {
	store := mocks.NewFakeStore()
	eng, mem := newTestEngine(t, store, Options{})
	writeLocal(t, mem, "/src/a.txt", "alpha", t100)

	if _, err := eng.Sync(context.Background(), testReqCtx(), "/src", "drive:root"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	writeLocal(t, mem, "/src/a.txt", "alpha-v2", t200)

	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "/src", "drive:root")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(outcomes) != 1 || !outcomes[0].Transferred || outcomes[0].Reason != policy.ReasonUpdated {
		t.Fatalf("got %+v, want one updated transfer", outcomes)
	}
	a, _ := store.FindChildByName(context.Background(), testReqCtx(), "root", "a.txt")
	if string(store.Content(a.ID)) != "alpha-v2" {
		t.Errorf("content = %q, want alpha-v2", store.Content(a.ID))
	}
}

func TestUploadSingleFile(t *testing.T) {
	store := mocks.NewFakeStore()
	eng, mem := newTestEngine(t, store, Options{})
	writeLocal(t, mem, "/src/a.txt", "alpha", t100)

	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "/src/a.txt", "drive:root")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Reason != policy.ReasonCreated {
		t.Fatalf("got %+v, want single created outcome", outcomes)
	}
}

func TestUploadMissingSourceFails(t *testing.T) {
	store := mocks.NewFakeStore()
	eng, _ := newTestEngine(t, store, Options{})

	if _, err := eng.Sync(context.Background(), testReqCtx(), "/nope", "drive:root"); err == nil {
		t.Fatal("expected error for missing source path")
	}
}

func TestUploadDryRun(t *testing.T) {
	store := mocks.NewFakeStore()
	eng, mem := newTestEngine(t, store, Options{DryRun: true})
	writeLocal(t, mem, "/src/a.txt", "alpha", t100)
	writeLocal(t, mem, "/src/sub/b.txt", "beta", t50)

	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "/src", "drive:root")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(outcomes))
	}
	if store.Calls["CreateFile"] != 0 || store.Calls["CreateFolder"] != 0 {
		t.Error("dry run must not mutate the remote store")
	}
}

func TestDownloadSubPathEndpoint(t *testing.T) {
	store := mocks.NewFakeStore()
	reports := store.AddFolder("root", "Reports")
	q2 := store.AddFolder(reports.ID, "2024")
	store.AddFile(q2.ID, "summary.pdf", []byte("summary"), t100)
	eng, mem := newTestEngine(t, store, Options{})

	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "drive:root/Reports/2024", "/dest")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(outcomes) != 1 {
		t.Fatalf("got %d outcomes, want 1", len(outcomes))
	}
	data, err := afero.ReadFile(mem, "/dest/summary.pdf")
	if err != nil || string(data) != "summary" {
		t.Errorf("summary.pdf content = %q, err = %v", data, err)
	}
}

func TestDownloadSubPathMissing(t *testing.T) {
	store := mocks.NewFakeStore()
	store.AddFolder("root", "Reports")
	eng, _ := newTestEngine(t, store, Options{})

	if _, err := eng.Sync(context.Background(), testReqCtx(), "drive:root/Nope", "/dest"); err == nil {
		t.Error("expected error for unresolvable sub-path")
	}
}

func TestDownloadExcludePatterns(t *testing.T) {
	store := mocks.NewFakeStore()
	seedTree(store)
	store.AddFile("root", "debug.log", []byte("noise"), t100)
	tmp := store.AddFolder("root", "scratch")
	store.AddFile(tmp.ID, "wip.txt", []byte("wip"), t100)
	eng, mem := newTestEngine(t, store, Options{Exclude: []string{"*.log", "scratch/"}})

	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "drive:root", "/dest")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	byPath := outcomesByPath(outcomes)
	if o := byPath["/dest/debug.log"]; o.Transferred || o.Reason != policy.ReasonExcluded {
		t.Errorf("debug.log: got %+v, want excluded skip", o)
	}
	if _, ok := byPath["/dest/scratch/wip.txt"]; ok {
		t.Error("excluded folder contents should be pruned, not visited")
	}
	if exists, _ := afero.Exists(mem, "/dest/debug.log"); exists {
		t.Error("excluded file was written locally")
	}
	if exists, _ := afero.DirExists(mem, "/dest/scratch"); exists {
		t.Error("excluded folder was created locally")
	}
	if o := byPath["/dest/report.pdf"]; !o.Transferred {
		t.Errorf("report.pdf: got %+v, want transfer", o)
	}
}

func TestDownloadDefaultExcludes(t *testing.T) {
	store := mocks.NewFakeStore()
	seedTree(store)
	store.AddFile("root", ".DS_Store", []byte("junk"), t100)
	eng, mem := newTestEngine(t, store, Options{})

	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "drive:root", "/dest")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if o := outcomesByPath(outcomes)["/dest/.DS_Store"]; o.Transferred || o.Reason != policy.ReasonExcluded {
		t.Errorf(".DS_Store: got %+v, want excluded skip", o)
	}
	if exists, _ := afero.Exists(mem, "/dest/.DS_Store"); exists {
		t.Error(".DS_Store was written locally")
	}
}

func TestUploadExcludePrunesDirectories(t *testing.T) {
	store := mocks.NewFakeStore()
	eng, mem := newTestEngine(t, store, Options{Exclude: []string{"*.log"}})

	writeLocal(t, mem, "/src/alpha.txt", "alpha", t100)
	writeLocal(t, mem, "/src/build.log", "noise", t100)
	writeLocal(t, mem, "/src/node_modules/pkg/index.js", "dep", t100)

	outcomes, err := eng.Sync(context.Background(), testReqCtx(), "/src", "drive:root")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	byPath := outcomesByPath(outcomes)
	if o := byPath["/src/alpha.txt"]; !o.Transferred || o.Reason != policy.ReasonCreated {
		t.Errorf("alpha.txt: got %+v, want created", o)
	}
	if o := byPath["/src/build.log"]; o.Transferred || o.Reason != policy.ReasonExcluded {
		t.Errorf("build.log: got %+v, want excluded skip", o)
	}
	if _, ok := byPath["/src/node_modules/pkg/index.js"]; ok {
		t.Error("default-excluded directory contents should be pruned")
	}
	if item, _ := store.FindChildByName(context.Background(), testReqCtx(), "root", "node_modules"); item != nil {
		t.Error("excluded directory was created remotely")
	}
}

func outcomesByPath(outcomes []Outcome) map[string]Outcome {
	m := make(map[string]Outcome, len(outcomes))
	for _, o := range outcomes {
		m[o.Path] = o
	}
	return m
}

func writeLocal(t *testing.T, mem afero.Fs, path, content string, mtime time.Time) {
	t.Helper()
	if err := afero.WriteFile(mem, path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := mem.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}
