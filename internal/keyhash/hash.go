// Package keyhash resolves a hash function for a key type.
// The hash is used to distribute keys across lock shards.
package keyhash

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"sync"

	"github.com/goccy/go-reflect"

	sweepcache "github.com/karupanerura/sweep-cache"
)

var (
	// hashFuncsMutex guards hashFuncs.
	hashFuncsMutex = sync.RWMutex{}

	// hashFuncs caches the resolved hash functions per key type.
	hashFuncs = map[string]func(any) int{}
)

// GetOrCreateKeyHash returns a hash function for the given key type.
// The function is resolved once per type and cached.
// It panics for key types that have no canonical byte representation.
func GetOrCreateKeyHash[K sweepcache.KeyConstraint]() func(any) int {
	var zero K
	return getOrCreateKeyHashAny(zero)
}

func getOrCreateKeyHashAny(t any) func(any) int {
	name := reflect.TypeOf(t).String()

	hashFuncsMutex.RLock()
	if f, ok := hashFuncs[name]; ok {
		hashFuncsMutex.RUnlock()
		return f
	}

	hashFuncsMutex.RUnlock()
	hashFuncsMutex.Lock()
	defer hashFuncsMutex.Unlock()
	if f, ok := hashFuncs[name]; ok {
		return f
	}

	f := createKeyHash(t)
	hashFuncs[name] = f
	return f
}

// createKeyHash builds an FNV-1a hash function over the key's canonical bytes.
func createKeyHash(t any) func(any) int {
	switch reflect.TypeOf(t).Kind() {
	case reflect.String:
		return func(v any) int {
			return hashBytes([]byte(reflect.ValueOf(v).String()))
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(v any) int {
			var b [8]byte
			binary.BigEndian.PutUint64(b[:], uint64(reflect.ValueOf(v).Int()))
			return hashBytes(b[:])
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(v any) int {
			var b [8]byte
			binary.BigEndian.PutUint64(b[:], reflect.ValueOf(v).Uint())
			return hashBytes(b[:])
		}
	case reflect.Float32, reflect.Float64:
		return func(v any) int {
			var b [8]byte
			binary.BigEndian.PutUint64(b[:], math.Float64bits(reflect.ValueOf(v).Float()))
			return hashBytes(b[:])
		}
	default:
		panic(fmt.Sprintf("keyhash: unsupported key type: %T", t))
	}
}

func hashBytes(b []byte) int {
	h := fnv.New64a()
	_, _ = h.Write(b)
	return int(h.Sum64())
}
