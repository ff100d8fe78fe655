package keyhash_test

import (
	"testing"

	"github.com/karupanerura/sweep-cache/internal/keyhash"
)

func TestGetOrCreateKeyHash_Stable(t *testing.T) {
	t.Parallel()

	hashString := keyhash.GetOrCreateKeyHash[string]()
	if hashString("key") != hashString("key") {
		t.Error("hash of the same string must be stable")
	}
	if hashString("key") == hashString("other") {
		t.Error("hash of different strings should differ")
	}

	hashInt := keyhash.GetOrCreateKeyHash[int]()
	if hashInt(42) != hashInt(42) {
		t.Error("hash of the same int must be stable")
	}

	hashUint := keyhash.GetOrCreateKeyHash[uint16]()
	if hashUint(uint16(42)) != hashUint(uint16(42)) {
		t.Error("hash of the same uint16 must be stable")
	}

	hashFloat := keyhash.GetOrCreateKeyHash[float64]()
	if hashFloat(1.5) != hashFloat(1.5) {
		t.Error("hash of the same float64 must be stable")
	}
}

func TestGetOrCreateKeyHash_CachedPerType(t *testing.T) {
	t.Parallel()

	first := keyhash.GetOrCreateKeyHash[string]()
	second := keyhash.GetOrCreateKeyHash[string]()
	if first("key") != second("key") {
		t.Error("cached hash function must produce identical results")
	}
}

func TestGetOrCreateKeyHash_UnsupportedType(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for unsupported key type, but did not panic")
		}
	}()
	keyhash.GetOrCreateKeyHash[[2]int]()
}
