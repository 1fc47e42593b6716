package diag

import (
	"context"
	"slices"
	"sync"
	"testing"
)

func TestBag_PutGetRemove(t *testing.T) {
	b := NewBag()
	b.Put(KeyLocale, "fr")
	b.Put(KeyRequestID, "r-1")
	b.Put(KeyTenant, "")

	if v, ok := b.Get(KeyLocale); !ok || v != "fr" {
		t.Fatalf("Get(locale) = %q %v", v, ok)
	}
	if _, ok := b.Get(KeyTenant); ok {
		t.Fatalf("empty Put should not store a key")
	}
	if b.Len() != 2 {
		t.Fatalf("Len = %d, want 2", b.Len())
	}

	b.Remove(KeyLocale)
	if b.Value(KeyLocale) != "" || b.Value(KeyRequestID) != "r-1" {
		t.Fatalf("Remove touched the wrong keys: %v", b.Snapshot())
	}

	b.Put(KeyRequestID, "")
	if b.Len() != 0 {
		t.Fatalf("empty Put should delete, got %v", b.Snapshot())
	}
}

func TestBag_NilSafeReads(t *testing.T) {
	var b *Bag
	if v, ok := b.Get(KeyLocale); ok || v != "" {
		t.Fatalf("nil Get = %q %v", v, ok)
	}
	if b.Len() != 0 || b.Snapshot() != nil || b.Keys() != nil {
		t.Fatalf("nil bag reads should be empty")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	b := NewBag()
	b.Put(KeyLocale, "de")
	s := b.Snapshot()
	s[KeyLocale] = "xx"
	if b.Value(KeyLocale) != "de" {
		t.Fatalf("snapshot mutation leaked into bag")
	}
}

func TestApply_ReportsOnlyWrittenKeys(t *testing.T) {
	dst := NewBag()
	dst.Put(KeyConnector, "github")
	dst.Put(KeyLocale, "fr")

	wrote := Apply(dst, map[Key]string{
		KeyLocale:    "fr",  // same value, owned by dst already
		KeyRequestID: "r-9", // new
	})
	if !slices.Equal(wrote, []Key{KeyRequestID}) {
		t.Fatalf("Apply wrote = %v", wrote)
	}

	dst.Remove(wrote...)
	if dst.Value(KeyLocale) != "fr" || dst.Value(KeyConnector) != "github" {
		t.Fatalf("removing applied keys stripped pre-existing state: %v", dst.Snapshot())
	}
	if _, ok := dst.Get(KeyRequestID); ok {
		t.Fatalf("applied key not removed")
	}

	if Apply(nil, map[Key]string{KeyLocale: "x"}) != nil {
		t.Fatalf("Apply(nil) should be a no-op")
	}
}

func TestContextHelpers(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Fatalf("expected no bag on background")
	}
	ctx, b := Ensure(context.Background())
	b.Put(KeyPrincipal, "alice")
	if Get(ctx, KeyPrincipal) != "alice" {
		t.Fatalf("Get via ctx failed")
	}
	ctx2, b2 := Ensure(ctx)
	if b2 != b || ctx2 != ctx {
		t.Fatalf("Ensure should reuse the existing bag")
	}
	if Get(context.Background(), KeyPrincipal) != "" {
		t.Fatalf("Get on bare ctx should be empty")
	}
}

func TestBag_ConcurrentAccess(t *testing.T) {
	b := NewBag()
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k := Key("k" + string(rune('a'+i)))
			b.Put(k, "v")
			_ = b.Snapshot()
			b.Remove(k)
		}()
	}
	wg.Wait()
	if b.Len() != 0 {
		t.Fatalf("expected empty bag, got %v", b.Snapshot())
	}
}
