package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/dl-alexandre/dsync/internal/testing/mocks"
	"github.com/dl-alexandre/dsync/internal/types"
)

func testReqCtx() *types.RequestContext {
	return &types.RequestContext{TraceID: "test", RequestType: types.RequestTypeMetadata}
}

func TestResolveWalksSegments(t *testing.T) {
	store := mocks.NewFakeStore()
	reports := store.AddFolder("root", "Reports")
	q2 := store.AddFolder(reports.ID, "2024")
	file := store.AddFile(q2.ID, "summary.pdf", []byte("x"), time.Now())

	r := New(store, 0)
	ctx := context.Background()

	got, err := r.Resolve(ctx, testReqCtx(), "root", "Reports/2024")
	if err != nil {
		t.Fatalf("Resolve folder: %v", err)
	}
	if got.ID != q2.ID {
		t.Errorf("got %s, want %s", got.ID, q2.ID)
	}

	got, err = r.Resolve(ctx, testReqCtx(), "root", "Reports/2024/summary.pdf")
	if err != nil {
		t.Fatalf("Resolve file: %v", err)
	}
	if got.ID != file.ID {
		t.Errorf("got %s, want %s", got.ID, file.ID)
	}
}

func TestResolveNormalizesPath(t *testing.T) {
	store := mocks.NewFakeStore()
	reports := store.AddFolder("root", "Reports")

	r := New(store, 0)
	got, err := r.Resolve(context.Background(), testReqCtx(), "root", "/Reports/")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != reports.ID {
		t.Errorf("got %s, want %s", got.ID, reports.ID)
	}
}

func TestResolveEmptyPathReturnsRoot(t *testing.T) {
	store := mocks.NewFakeStore()
	r := New(store, 0)

	got, err := r.Resolve(context.Background(), testReqCtx(), "root", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != "root" {
		t.Errorf("got %s, want root", got.ID)
	}
}

func TestResolveMissingSegment(t *testing.T) {
	store := mocks.NewFakeStore()
	store.AddFolder("root", "Reports")

	r := New(store, 0)
	if _, err := r.Resolve(context.Background(), testReqCtx(), "root", "Reports/missing"); err == nil {
		t.Error("expected error for missing segment")
	}
}

func TestResolveFollowsIntermediateShortcut(t *testing.T) {
	store := mocks.NewFakeStore()
	target := store.AddFolder("root", "Target")
	inner := store.AddFile(target.ID, "inner.txt", []byte("x"), time.Now())
	store.AddShortcut("root", "Link", target, time.Now())

	r := New(store, 0)
	got, err := r.Resolve(context.Background(), testReqCtx(), "root", "Link/inner.txt")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != inner.ID {
		t.Errorf("got %s, want %s", got.ID, inner.ID)
	}
}

func TestResolveCachesWithinTTL(t *testing.T) {
	store := mocks.NewFakeStore()
	store.AddFolder("root", "Reports")

	r := New(store, time.Minute)
	ctx := context.Background()

	if _, err := r.Resolve(ctx, testReqCtx(), "root", "Reports"); err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	lookups := store.Calls["FindChildByName"]
	if _, err := r.Resolve(ctx, testReqCtx(), "root", "Reports"); err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if store.Calls["FindChildByName"] != lookups {
		t.Error("second resolve within TTL should hit the cache")
	}

	r.Invalidate()
	if _, err := r.Resolve(ctx, testReqCtx(), "root", "Reports"); err != nil {
		t.Fatalf("third Resolve: %v", err)
	}
	if store.Calls["FindChildByName"] == lookups {
		t.Error("resolve after Invalidate should hit the store")
	}
}
