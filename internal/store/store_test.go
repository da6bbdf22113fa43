package store

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/dori/tminus/internal/db"
	"github.com/dori/tminus/internal/model"
	"github.com/spf13/afero"
)

var now = time.UnixMilli(1_900_000_000_000)

func timerAt(name string, offset time.Duration) model.Timer {
	target := now.Add(offset)
	return model.Timer{
		Name:   name,
		Date:   target.Format(model.DateLayout),
		Time:   target.Format(model.TimeLayout),
		Target: target.UnixMilli(),
	}
}

func newMemStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return Open(NewFileBackend(fs, "/data"), DefaultSlot), fs
}

func persisted(t *testing.T, fs afero.Fs) []model.Timer {
	t.Helper()
	data, err := afero.ReadFile(fs, "/data/savedTimers.json")
	if err != nil {
		t.Fatalf("reading slot file: %v", err)
	}
	var timers []model.Timer
	if err := json.Unmarshal(data, &timers); err != nil {
		t.Fatalf("slot file is not a timer list: %v", err)
	}
	return timers
}

func TestOpenFailsOpen(t *testing.T) {
	fs := afero.NewMemMapFs()

	s := Open(NewFileBackend(fs, "/data"), "")
	if s.Len() != 0 {
		t.Fatalf("missing slot gave %d timers", s.Len())
	}

	if err := afero.WriteFile(fs, "/data/savedTimers.json", []byte("{not json"), 0644); err != nil {
		t.Fatalf("seeding slot: %v", err)
	}
	s = Open(NewFileBackend(fs, "/data"), DefaultSlot)
	if s.Len() != 0 {
		t.Fatalf("corrupt slot gave %d timers", s.Len())
	}

	// The next write replaces the corrupt value
	if err := s.Upsert(timerAt("A", time.Hour)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if got := persisted(t, fs); len(got) != 1 {
		t.Fatalf("persisted %d timers, want 1", len(got))
	}
}

func TestUpsertNewAndExisting(t *testing.T) {
	s, fs := newMemStore(t)

	a := timerAt("A", time.Hour)
	if err := s.Upsert(a); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := s.Upsert(timerAt("B", 2*time.Hour)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}

	// Same input twice leaves the size alone
	if err := s.Upsert(a); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len after repeated upsert = %d, want 2", s.Len())
	}

	// Existing name replaces fields in place
	moved := timerAt("A", 3*time.Hour)
	if err := s.Upsert(moved); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	got := s.Snapshot()
	if len(got) != 2 || got[0] != moved || got[1].Name != "B" {
		t.Fatalf("Snapshot after replace = %+v", got)
	}
	if p := persisted(t, fs); !reflect.DeepEqual(p, got) {
		t.Fatalf("persisted %+v, memory %+v", p, got)
	}
}

func TestUpsertRejectsEmptyName(t *testing.T) {
	s, fs := newMemStore(t)

	if err := s.Upsert(timerAt("", time.Hour)); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("Upsert(empty name) = %v, want ErrEmptyName", err)
	}
	if s.Len() != 0 {
		t.Fatal("unnamed timer was stored")
	}
	if ok, _ := afero.Exists(fs, "/data/savedTimers.json"); ok {
		t.Fatal("unnamed timer caused a write")
	}
}

func TestListPrunesExpired(t *testing.T) {
	s, fs := newMemStore(t)

	for _, tm := range []model.Timer{
		timerAt("past", -time.Minute),
		timerAt("soon", time.Minute),
		timerAt("edge", 0),
		timerAt("later", time.Hour),
	} {
		if err := s.Upsert(tm); err != nil {
			t.Fatalf("Upsert(%s) failed: %v", tm.Name, err)
		}
	}

	first, err := s.List(now)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, tm := range first {
		if tm.Target <= now.UnixMilli() {
			t.Fatalf("List returned expired timer %+v", tm)
		}
	}
	if len(first) != 2 || first[0].Name != "soon" || first[1].Name != "later" {
		t.Fatalf("List = %+v, want [soon later] in insertion order", first)
	}
	if s.Len() != 2 {
		t.Fatalf("store still holds %d timers after prune", s.Len())
	}
	if p := persisted(t, fs); len(p) != 2 {
		t.Fatalf("pruned list not persisted: %+v", p)
	}

	second, err := s.List(now)
	if err != nil {
		t.Fatalf("second List failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("List not stable: %+v then %+v", first, second)
	}
}

func TestListScenarioAllExpire(t *testing.T) {
	s, fs := newMemStore(t)

	if err := s.Upsert(timerAt("A", time.Second)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := s.List(now.Add(2 * time.Second))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("List = %+v, want empty", got)
	}
	if s.Len() != 0 {
		t.Fatalf("store not empty after prune: %d", s.Len())
	}
	if p := persisted(t, fs); len(p) != 0 {
		t.Fatalf("persisted %+v, want empty", p)
	}

	data, _ := afero.ReadFile(fs, "/data/savedTimers.json")
	if string(data) != "[]" {
		t.Fatalf("empty store encoded as %q, want []", data)
	}
}

func TestFindAndDelete(t *testing.T) {
	s, _ := newMemStore(t)

	if err := s.Upsert(timerAt("A", time.Hour)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := s.Upsert(timerAt("B", time.Hour)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if tm, ok := s.Find("B"); !ok || tm.Name != "B" {
		t.Fatalf("Find(B) = %+v, %v", tm, ok)
	}
	if _, ok := s.Find("b"); ok {
		t.Fatal("Find is not an exact match")
	}

	before := s.Snapshot()
	if err := s.Delete("missing"); err != nil {
		t.Fatalf("Delete(missing) = %v", err)
	}
	if !reflect.DeepEqual(before, s.Snapshot()) {
		t.Fatal("deleting an absent name changed the store")
	}

	if err := s.Delete("A"); err != nil {
		t.Fatalf("Delete(A) failed: %v", err)
	}
	if _, ok := s.Find("A"); ok {
		t.Fatal("A still present after delete")
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
}

type failingBackend struct {
	data []byte
}

func (b *failingBackend) Load(string) ([]byte, error) { return b.data, nil }
func (b *failingBackend) Save(string, []byte) error  { return errors.New("disk full") }

func TestFailedWriteLeavesStoreUnchanged(t *testing.T) {
	seed, _ := json.Marshal([]model.Timer{timerAt("A", -time.Hour), timerAt("B", time.Hour)})
	s := Open(&failingBackend{data: seed}, DefaultSlot)

	if err := s.Upsert(timerAt("C", time.Hour)); err == nil {
		t.Fatal("Upsert succeeded on failing backend")
	}
	if err := s.Delete("B"); err == nil {
		t.Fatal("Delete succeeded on failing backend")
	}
	if _, err := s.List(now); err == nil {
		t.Fatal("List succeeded on failing backend")
	}
	if s.Len() != 2 {
		t.Fatalf("store changed despite failed writes: %+v", s.Snapshot())
	}
}

// lockedBackend fails Load until unlocked, like SQLite under a
// competing writer
type lockedBackend struct {
	data   []byte
	locked bool
}

func (b *lockedBackend) Load(string) ([]byte, error) {
	if b.locked {
		return nil, errors.New("database is locked")
	}
	return b.data, nil
}

func (b *lockedBackend) Save(_ string, data []byte) error {
	b.data = data
	return nil
}

func TestUnreadableBackendRefusesWrites(t *testing.T) {
	seed, _ := json.Marshal([]model.Timer{timerAt("A", time.Hour)})
	b := &lockedBackend{data: seed, locked: true}
	s := Open(b, DefaultSlot)

	if err := s.Upsert(timerAt("B", time.Hour)); !errors.Is(err, ErrUnreadable) {
		t.Fatalf("Upsert while locked = %v, want ErrUnreadable", err)
	}
	if err := s.Delete("A"); !errors.Is(err, ErrUnreadable) {
		t.Fatalf("Delete while locked = %v, want ErrUnreadable", err)
	}
	if _, err := s.List(now); !errors.Is(err, ErrUnreadable) {
		t.Fatalf("List while locked = %v, want ErrUnreadable", err)
	}
	if string(b.data) != string(seed) {
		t.Fatalf("slot overwritten while unreadable: %s", b.data)
	}

	// Once the backend reads again the stored timers are kept
	b.locked = false
	if err := s.Upsert(timerAt("B", time.Hour)); err != nil {
		t.Fatalf("Upsert after unlock failed: %v", err)
	}

	var got []model.Timer
	if err := json.Unmarshal(b.data, &got); err != nil {
		t.Fatalf("decoding slot: %v", err)
	}
	if len(got) != 2 || got[0].Name != "A" || got[1].Name != "B" {
		t.Fatalf("slot = %+v, want [A B]", got)
	}
}

func TestStoreOverSQLite(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	s := Open(database, DefaultSlot)
	if err := s.Upsert(timerAt("A", time.Hour)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := s.Upsert(timerAt("B", time.Second)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if _, err := s.List(now.Add(time.Minute)); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	reopened := Open(database, DefaultSlot)
	got := reopened.Snapshot()
	if len(got) != 1 || got[0].Name != "A" {
		t.Fatalf("reopened store = %+v, want [A]", got)
	}
}
