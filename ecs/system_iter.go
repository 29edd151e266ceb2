package ecs

// The ForEach helpers call fn for every entity tracked by a system, passing the
// requested components. They are fetched by signature slot without a nil check:
// a tracked entity is guaranteed to carry every required component. Asking for
// a component the system does not require panics.
//
// fn runs synchronously, so capturing locals is safe.

// ForEach1 iterates a system's entities with one required component.
func ForEach1[A Component](s System, fn func(Entity, A)) {
	b := s.base()
	ia := b.signature.Index(IDOf[A]())
	for _, row := range b.rows {
		fn(row.Entity, row.Components[ia].(A))
	}
}

// ForEach2 iterates a system's entities with two required components.
func ForEach2[A, B Component](s System, fn func(Entity, A, B)) {
	b := s.base()
	ia := b.signature.Index(IDOf[A]())
	ib := b.signature.Index(IDOf[B]())
	for _, row := range b.rows {
		fn(row.Entity, row.Components[ia].(A), row.Components[ib].(B))
	}
}

// ForEach3 iterates a system's entities with three required components.
func ForEach3[A, B, C Component](s System, fn func(Entity, A, B, C)) {
	b := s.base()
	ia := b.signature.Index(IDOf[A]())
	ib := b.signature.Index(IDOf[B]())
	ic := b.signature.Index(IDOf[C]())
	for _, row := range b.rows {
		fn(row.Entity, row.Components[ia].(A), row.Components[ib].(B), row.Components[ic].(C))
	}
}

// The ParallelForEach helpers schedule one task per tracked entity on the
// World's TaskScheduler and block until all of them have run. fn may only
// mutate the components it is handed: adding or removing entities or components
// from fn races with the World.

// ParallelForEach1 is the concurrent form of ForEach1.
func ParallelForEach1[A Component](s System, fn func(Entity, A)) {
	b := s.base()
	ia := b.signature.Index(IDOf[A]())
	fanOut(b, func(row EntityWithComponents) {
		fn(row.Entity, row.Components[ia].(A))
	})
}

// ParallelForEach2 is the concurrent form of ForEach2.
func ParallelForEach2[A, B Component](s System, fn func(Entity, A, B)) {
	b := s.base()
	ia := b.signature.Index(IDOf[A]())
	ib := b.signature.Index(IDOf[B]())
	fanOut(b, func(row EntityWithComponents) {
		fn(row.Entity, row.Components[ia].(A), row.Components[ib].(B))
	})
}

// ParallelForEach3 is the concurrent form of ForEach3.
func ParallelForEach3[A, B, C Component](s System, fn func(Entity, A, B, C)) {
	b := s.base()
	ia := b.signature.Index(IDOf[A]())
	ib := b.signature.Index(IDOf[B]())
	ic := b.signature.Index(IDOf[C]())
	fanOut(b, func(row EntityWithComponents) {
		fn(row.Entity, row.Components[ia].(A), row.Components[ib].(B), row.Components[ic].(C))
	})
}

func fanOut(b *SystemBase, task func(EntityWithComponents)) {
	var counter Counter
	for _, row := range b.rows {
		b.world.tasks.Schedule(func() { task(row) }, &counter)
	}
	counter.BusyWait()
}
