package storage

import (
	"math"
	"path/filepath"
	"testing"

	bolt "go.etcd.io/bbolt"

	"github.com/samvad-hq/neowatch/internal/domain"
)

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.db")

	store, err := NewStore("bbolt", path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if _, ok, err := store.GetFloat(ThresholdKey); err != nil || ok {
		t.Fatalf("expected empty store, ok=%v err=%v", ok, err)
	}
	if err := store.SetFloat(ThresholdKey, 0.0125); err != nil {
		t.Fatalf("SetFloat: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewStore("bbolt", path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.GetFloat(ThresholdKey)
	if err != nil || !ok || v != 0.0125 {
		t.Fatalf("GetFloat after reopen = %v, %v, %v", v, ok, err)
	}
}

func TestBoltStoreTreatsGarbageAsAbsent(t *testing.T) {
	raw, err := openBolt(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := raw.(*boltStore)
	defer store.Close()

	if err := store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(preferenceBucket)).Put([]byte(ThresholdKey), []byte("abc"))
	}); err != nil {
		t.Fatalf("seed garbage: %v", err)
	}

	if _, ok, err := store.GetFloat(ThresholdKey); err != nil || ok {
		t.Fatalf("expected garbage to read as absent, ok=%v err=%v", ok, err)
	}
	th, err := LoadThreshold(store)
	if err != nil || th != domain.DefaultThresholdAU {
		t.Fatalf("LoadThreshold = %v, %v", th, err)
	}
}

func TestNewStoreBackends(t *testing.T) {
	for _, typ := range []string{"none", "", "Memory"} {
		store, err := NewStore(typ, "")
		if err != nil {
			t.Fatalf("NewStore(%q): %v", typ, err)
		}
		if err := store.SetFloat("x", 1); err != nil {
			t.Fatalf("NewStore(%q).SetFloat: %v", typ, err)
		}
	}

	if _, err := NewStore("bbolt", " "); err == nil {
		t.Fatalf("expected bbolt without path to fail")
	}
	if _, err := NewStore("redis", "x"); err == nil {
		t.Fatalf("expected unsupported type to fail")
	}
}

func TestThresholdRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	th, err := LoadThreshold(store)
	if err != nil || th != domain.DefaultThresholdAU {
		t.Fatalf("default LoadThreshold = %v, %v", th, err)
	}

	saved, err := SaveThreshold(store, 0.02)
	if err != nil || saved != 0.02 {
		t.Fatalf("SaveThreshold(0.02) = %v, %v", saved, err)
	}
	if th, _ := LoadThreshold(store); th != 0.02 {
		t.Fatalf("LoadThreshold after save = %v", th)
	}

	for _, bad := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		saved, err := SaveThreshold(store, bad)
		if err != nil || saved != domain.DefaultThresholdAU {
			t.Fatalf("SaveThreshold(%v) = %v, %v", bad, saved, err)
		}
	}
	if th, _ := LoadThreshold(store); th != domain.DefaultThresholdAU {
		t.Fatalf("invalid save should persist the default, got %v", th)
	}
}

func TestLoadThresholdNormalizesStoredValue(t *testing.T) {
	store := NewMemoryStore()
	_ = store.SetFloat(ThresholdKey, -1)
	if th, _ := LoadThreshold(store); th != domain.DefaultThresholdAU {
		t.Fatalf("negative stored threshold should load as default, got %v", th)
	}
	if th, _ := LoadThreshold(nil); th != domain.DefaultThresholdAU {
		t.Fatalf("nil store should load default, got %v", th)
	}
}
