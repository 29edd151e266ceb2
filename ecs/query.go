package ecs

import (
	"slices"

	"go.uber.org/zap"
)

// EntityWithComponents is one row of a query: an entity and the components
// requested by the query, ordered by ascending bit index of the signature.
type EntityWithComponents struct {
	Entity     Entity
	Components []Component
}

// QueryResult is a cached query: the rows matching Signature as of the last flush.
type QueryResult struct {
	Signature Signature
	Matching  []EntityWithComponents

	members map[EntityID]struct{}
}

func (q *QueryResult) lists(id EntityID) bool {
	_, ok := q.members[id]
	return ok
}

// QueryEntities returns every live entity carrying all components of sig. The
// result is cached per signature and stays valid until the next flush; callers
// must not keep it across ticks or modify it.
func (w *World) QueryEntities(sig Signature) []EntityWithComponents {
	for _, q := range w.queries {
		if q.Signature.Equal(sig) {
			return q.Matching
		}
	}

	q := &QueryResult{
		Signature: sig,
		members:   make(map[EntityID]struct{}),
	}
	for _, id := range w.entities {
		if !w.Signature(id).Contains(sig) {
			continue
		}
		q.Matching = append(q.Matching, EntityWithComponents{
			Entity:     w.Wrap(id),
			Components: w.fillComponents(id, sig),
		})
		q.members[id] = struct{}{}
	}
	w.queries = append(w.queries, q)
	return q.Matching
}

// ForgetQuery drops the cached result for sig, if any. Callers running many
// short-lived queries use it to keep the cache from growing.
func (w *World) ForgetQuery(sig Signature) {
	w.queries = slices.DeleteFunc(w.queries, func(q *QueryResult) bool {
		return q.Signature.Equal(sig)
	})
}

// CachedQueryCount returns the number of cached query results.
func (w *World) CachedQueryCount() int {
	return len(w.queries)
}

func (w *World) fillComponents(id EntityID, sig Signature) []Component {
	row := make([]Component, sig.Count())
	comps, _ := w.components.Get(id)
	for cid, c := range comps {
		if sig.Has(cid) {
			row[sig.Index(cid)] = c
		}
	}
	return row
}

// invalidateQueries drops every cached query a pending change may affect. It
// runs before removals are applied, so removed entities are judged by the
// components they had. Dropped queries are rebuilt on their next read.
func (w *World) invalidateQueries() {
	if len(w.queries) == 0 {
		return
	}
	before := len(w.queries)

	for _, ids := range [][]EntityID{w.pending.adds, w.pending.removes} {
		for _, id := range ids {
			sig := w.Signature(id)
			w.queries = slices.DeleteFunc(w.queries, func(q *QueryResult) bool {
				return sig.Contains(q.Signature)
			})
		}
	}

	// an update can flip membership either way: drop queries listing the
	// entity and queries it now satisfies
	for _, id := range w.pending.updates {
		sig := w.Signature(id)
		w.queries = slices.DeleteFunc(w.queries, func(q *QueryResult) bool {
			return q.lists(id) || sig.Contains(q.Signature)
		})
	}

	if dropped := before - len(w.queries); dropped > 0 {
		w.log.Debug("dropped cached queries", zap.Int("dropped", dropped), zap.Int("kept", len(w.queries)))
	}
}

// Query1 calls fn for every live entity carrying A.
func Query1[A Component](w *World, fn func(Entity, A)) {
	sig := NewSignature(IDOf[A]())
	ia := sig.Index(IDOf[A]())
	for _, row := range w.QueryEntities(sig) {
		fn(row.Entity, row.Components[ia].(A))
	}
}

// Query2 calls fn for every live entity carrying A and B.
func Query2[A, B Component](w *World, fn func(Entity, A, B)) {
	sig := NewSignature(IDOf[A](), IDOf[B]())
	ia, ib := sig.Index(IDOf[A]()), sig.Index(IDOf[B]())
	for _, row := range w.QueryEntities(sig) {
		fn(row.Entity, row.Components[ia].(A), row.Components[ib].(B))
	}
}

// Query3 calls fn for every live entity carrying A, B and C.
func Query3[A, B, C Component](w *World, fn func(Entity, A, B, C)) {
	sig := NewSignature(IDOf[A](), IDOf[B](), IDOf[C]())
	ia, ib, ic := sig.Index(IDOf[A]()), sig.Index(IDOf[B]()), sig.Index(IDOf[C]())
	for _, row := range w.QueryEntities(sig) {
		fn(row.Entity, row.Components[ia].(A), row.Components[ib].(B), row.Components[ic].(C))
	}
}
