package sqlite_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/uxwatch/uxwatch/internal/adapter/outbound/persistence/sqlite"
	"github.com/uxwatch/uxwatch/internal/domain/model"
	"github.com/uxwatch/uxwatch/internal/domain/port/outbound"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.NewStore(sqlite.Config{
		Path:              ":memory:",
		MaxOpenConns:      1,
		PragmaJournalMode: "WAL",
		PragmaBusyTimeout: 5000,
	})
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSessionRepo_LoadBeforeStore(t *testing.T) {
	store := newTestStore(t)
	repo := sqlite.NewSessionRepo(store)

	_, err := repo.Load(context.Background())
	if !errors.Is(err, outbound.ErrSessionNotFound) {
		t.Errorf("Load on empty store: err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionRepo_StoreAndLoad(t *testing.T) {
	store := newTestStore(t)
	repo := sqlite.NewSessionRepo(store)
	ctx := context.Background()

	blob := []byte(`{"dc":2,"auth_key":"abc"}`)
	if err := repo.Store(ctx, blob); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(got, blob) {
		t.Errorf("Load: got %s, want %s", got, blob)
	}
}

func TestSessionRepo_StoreReplaces(t *testing.T) {
	store := newTestStore(t)
	repo := sqlite.NewSessionRepo(store)
	ctx := context.Background()

	if err := repo.Store(ctx, []byte("first")); err != nil {
		t.Fatalf("Store first: %v", err)
	}
	if err := repo.Store(ctx, []byte("second")); err != nil {
		t.Fatalf("Store second: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Load: got %q, want %q", got, "second")
	}
}

func TestDeliveryRepo_CreateAndListRecent(t *testing.T) {
	store := newTestStore(t)
	repo := sqlite.NewDeliveryRepo(store)
	ctx := context.Background()

	first := model.NewDelivery("@agency", 1001, "draft one").WithOutcome(model.DeliveryFull, true)
	first.CreatedAt = time.Now().UTC().Add(-time.Minute)
	second := model.NewDelivery("@studio", 1002, "draft two").WithOutcome(model.DeliveryTextFallback, false)

	for _, d := range []model.Delivery{first, second} {
		if _, err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	items, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].TargetHandle != "@studio" {
		t.Errorf("newest first: got %q", items[0].TargetHandle)
	}
	if items[0].Outcome != model.DeliveryTextFallback {
		t.Errorf("outcome = %q", items[0].Outcome)
	}
	if items[1].AttachmentSent != true {
		t.Errorf("attachment_sent not persisted")
	}
}

func TestDeliveryRepo_ListRecentLimit(t *testing.T) {
	store := newTestStore(t)
	repo := sqlite.NewDeliveryRepo(store)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		d := model.NewDelivery("@h", int64(i), "text")
		d.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if _, err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	items, err := repo.ListRecent(ctx, 3)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("len = %d, want 3", len(items))
	}
	if items[0].ChannelID != 4 {
		t.Errorf("newest first: channel = %d, want 4", items[0].ChannelID)
	}
}
