// Package assoc implements the sparse four-key association store: a mapping
// from (word index, position, word index, position) to a signed integer,
// backed by an open-hash table with separate chaining.
//
// Map is not safe for concurrent use on its own; callers serialize access
// under the owning vocabulary's lock (see the vocab package), matching the
// lock hierarchy where the association map's lifetime is owned by its
// vocabulary.
package assoc

import "math/bits"

// Key identifies one directed, position-qualified association between two
// words: word WordI at position PosI co-occurring with word WordK at
// position PosK. Swapping (WordI,PosI) with (WordK,PosK) is a different key
// — the store is asymmetric by design.
type Key struct {
	WordI int
	PosI  int
	WordK int
	PosK  int
}

type entry struct {
	key   Key
	value int
	next  *entry
}

// Map is the sparse association store.
type Map struct {
	buckets []*entry
	count   int
}

const (
	initialBuckets = 16
	maxLoadFactor  = 0.75
)

// New returns an empty association map.
func New() *Map {
	return &Map{buckets: make([]*entry, initialBuckets)}
}

// Len reports the number of non-zero entries currently stored.
func (m *Map) Len() int {
	return m.count
}

// Get returns the stored value for key, or 0 if absent.
func (m *Map) Get(key Key) int {
	idx := m.bucketIndex(key)

	for e := m.buckets[idx]; e != nil; e = e.next {
		if e.key == key {
			return e.value
		}
	}

	return 0
}

// Add applies delta to the value stored at key.
//
// A delta of 0 is a no-op. If the key is absent and delta is non-zero, a new
// entry is created with value delta. If present, the value is delta'd in
// place; an entry whose value becomes 0 is removed, preserving the invariant
// that the map never stores zero-valued entries.
func (m *Map) Add(key Key, delta int) {
	if delta == 0 {
		return
	}

	idx := m.bucketIndex(key)

	var prev *entry

	for e := m.buckets[idx]; e != nil; e = e.next {
		if e.key == key {
			e.value += delta
			if e.value == 0 {
				m.remove(idx, prev, e)
			}

			return
		}

		prev = e
	}

	if m.needsRehash() {
		m.rehash()
		idx = m.bucketIndex(key)
	}

	m.buckets[idx] = &entry{key: key, value: delta, next: m.buckets[idx]}
	m.count++
}

func (m *Map) remove(idx int, prev, target *entry) {
	if prev == nil {
		m.buckets[idx] = target.next
	} else {
		prev.next = target.next
	}

	m.count--
}

func (m *Map) needsRehash() bool {
	return float64(m.count+1) > maxLoadFactor*float64(len(m.buckets))
}

func (m *Map) rehash() {
	old := m.buckets
	m.buckets = make([]*entry, len(old)*2)

	for _, head := range old {
		for e := head; e != nil; {
			next := e.next
			idx := m.indexForSize(e.key, len(m.buckets))
			e.next = m.buckets[idx]
			m.buckets[idx] = e
			e = next
		}
	}
}

func (m *Map) bucketIndex(key Key) int {
	return m.indexForSize(key, len(m.buckets))
}

func (m *Map) indexForSize(key Key, size int) int {
	return int(hash(key) & uint64(size-1))
}

// Iterate calls fn once for each present entry, in unspecified order. fn
// must not mutate the map; there are no guarantees if it does, and Iterate
// makes none under concurrent mutation from another goroutine either.
func (m *Map) Iterate(fn func(key Key, value int)) {
	for _, head := range m.buckets {
		for e := head; e != nil; e = e.next {
			fn(e.key, e.value)
		}
	}
}

// hash combines all four key components so that swapping any two changes
// the result — positions are structurally meaningful, not decoration. Each
// component is folded in with a distinct multiplicative round (the classic
// splitmix64 finalizer) so transposing (WordI,PosI) and (WordK,PosK) moves
// bits to different output positions instead of cancelling out.
func hash(k Key) uint64 {
	h := uint64(14695981039346656037) // FNV offset basis, reused as a seed

	h = mix(h ^ uint64(uint32(k.WordI)))
	h = mix(h ^ uint64(uint32(k.PosI))<<1)
	h = mix(h ^ uint64(uint32(k.WordK))<<2)
	h = mix(h ^ uint64(uint32(k.PosK))<<3)

	return h
}

// mix is splitmix64's finalizer: a few rounds of xor-shift and
// multiplication by odd constants that give good avalanche behavior for
// small integer inputs.
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31

	return bits.RotateLeft64(x, 17)
}
