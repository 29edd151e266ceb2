package ecs

import (
	"fmt"
	"math/bits"
	"strings"
)

// Signature is a set of component types, either the components present on an
// entity or the components required by a System or query.
//
// Besides the bitset it keeps a dense packing of the set bits: the component with
// the lowest bit index gets slot 0, the next one slot 1 and so on. That ordering is
// the one used for every row of component pointers handed out by the World.
type Signature struct {
	components uint64
	packed     [MaxComponents]int8
	count      int
}

// NewSignature returns a signature containing the given component IDs.
func NewSignature(ids ...ComponentID) Signature {
	var s Signature
	for _, id := range ids {
		s.components |= 1 << uint(IndexOf(id))
	}
	s.reindex()
	return s
}

// Add sets the component's bit.
func (s *Signature) Add(id ComponentID) {
	s.components |= 1 << uint(IndexOf(id))
	s.reindex()
}

// Has reports whether the component's bit is set. Unregistered components are
// never part of a signature and are not registered by the check.
func (s Signature) Has(id ComponentID) bool {
	bit, ok := lookupIndex(id)
	return ok && s.components&(1<<uint(bit)) != 0
}

// Index returns the dense slot of the component inside this signature.
// It panics if the component is not part of the signature.
func (s Signature) Index(id ComponentID) int {
	bit, ok := lookupIndex(id)
	if !ok || s.components&(1<<uint(bit)) == 0 || s.packed[bit] < 0 {
		panic(fmt.Sprintf("component %s is not part of signature %s", componentLabel(id), s))
	}
	return int(s.packed[bit])
}

// Count returns the number of components in the signature.
func (s Signature) Count() int {
	return s.count
}

// IsEmpty reports whether no bit is set.
func (s Signature) IsEmpty() bool {
	return s.components == 0
}

// And returns the intersection of both signatures.
func (s Signature) And(o Signature) Signature {
	r := Signature{components: s.components & o.components}
	r.reindex()
	return r
}

// Equal reports whether both signatures hold the same components.
func (s Signature) Equal(o Signature) bool {
	return s.components == o.components
}

// Contains reports whether every component of sub is present in s,
// i.e. (s & sub) == sub.
func (s Signature) Contains(sub Signature) bool {
	return s.And(sub).Equal(sub)
}

// Bits returns the raw bitset.
func (s Signature) Bits() uint64 {
	return s.components
}

func (s Signature) String() string {
	var b strings.Builder
	b.WriteByte('[')
	first := true
	for bit := range MaxComponents {
		if s.components&(1<<uint(bit)) == 0 {
			continue
		}
		if !first {
			b.WriteByte(' ')
		}
		first = false
		fmt.Fprintf(&b, "%d", bit)
	}
	b.WriteByte(']')
	return b.String()
}

func (s *Signature) reindex() {
	var next int8
	for bit := range MaxComponents {
		if s.components&(1<<uint(bit)) != 0 {
			s.packed[bit] = next
			next++
		} else {
			s.packed[bit] = -1
		}
	}
	s.count = bits.OnesCount64(s.components)
}

func componentLabel(id ComponentID) string {
	if name := ComponentTypeName(id); name != "" {
		return name
	}
	return fmt.Sprintf("0x%X", uint64(id))
}
