package accessor

import (
	"reflect"
	"sync"
)

// Cache is a single-flight memoization layer mapping a key to one constructed
// accessor instance. Safe for unsynchronized concurrent use. Construction
// races are resolved first-writer-wins: racing factory calls are harmless
// because factories are pure, and every caller (including the losers)
// observes the one retained instance afterward.
//
// There is no eviction: membership is bounded by the number of distinct
// members a process ever introspects, which is small relative to process
// lifetime.
type Cache[K comparable, V any] struct {
	entries sync.Map // map[K]V
}

// GetOrCreate returns the cached value for key, invoking factory and
// atomically inserting the result when absent. Factory errors are returned
// and never cached, so a failed resolution re-attempts on every call.
func (c *Cache[K, V]) GetOrCreate(key K, factory func() (V, error)) (V, error) {
	if v, ok := c.entries.Load(key); ok {
		return v.(V), nil
	}
	built, err := factory()
	if err != nil {
		var zero V
		return zero, err
	}
	actual, _ := c.entries.LoadOrStore(key, built)
	return actual.(V), nil
}

// Get returns the cached value for key without constructing anything.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	if v, ok := c.entries.Load(key); ok {
		return v.(V), true
	}
	var zero V
	return zero, false
}

// Clear drops all entries. Used only for test isolation.
func (c *Cache[K, V]) Clear() {
	c.entries.Range(func(key, _ any) bool {
		c.entries.Delete(key)
		return true
	})
}

// Len returns the number of cached entries. Useful for monitoring and tests.
func (c *Cache[K, V]) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Process-wide caches. Explicit singleton state with an explicit clear API
// rather than state hidden inside accessor constructors.
var (
	memberCache    Cache[MemberDescriptor, *MemberAccessor]
	methodCache    Cache[MemberDescriptor, *MethodAccessor]
	attributeCache Cache[attributeKey, attributeEntry]
	typeCache      Cache[reflect.Type, *TypeAccessor]

	// signatureIndex maps (type, name, signature fingerprint) to the resolved
	// descriptor so overload resolution runs once per distinct request.
	signatureIndex Cache[sigIndexKey, MemberDescriptor]

	// firstByName maps (type, name) to the first method found in enumeration
	// order for requests that omit parameter types.
	firstByName Cache[nameIndexKey, MemberDescriptor]
)

type sigIndexKey struct {
	t    reflect.Type
	name string
	sig  uint64
}

type nameIndexKey struct {
	t    reflect.Type
	name string
}

// ClearCaches drops every process-wide accessor cache. Intended for test
// isolation only; accessors handed out before the clear remain valid.
func ClearCaches() {
	memberCache.Clear()
	methodCache.Clear()
	attributeCache.Clear()
	typeCache.Clear()
	signatureIndex.Clear()
	firstByName.Clear()
	clearStatics()
	clearFunctions()
	clearConstructors()
}

// CacheStats reports entry counts for the process-wide caches, keyed by
// cache name.
func CacheStats() map[string]int {
	return map[string]int{
		"members":    memberCache.Len(),
		"methods":    methodCache.Len(),
		"attributes": attributeCache.Len(),
		"types":      typeCache.Len(),
		"signatures": signatureIndex.Len(),
		"names":      firstByName.Len(),
	}
}
