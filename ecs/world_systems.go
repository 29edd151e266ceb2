package ecs

import (
	"slices"

	"go.uber.org/zap"
)

// AddLogicSystem registers a logic system. It immediately starts tracking the
// matching live entities. Several systems of the same type may coexist.
func (w *World) AddLogicSystem(s System) {
	w.attachSystem(s, "logic")
	w.logicSystems = append(w.logicSystems, s)
}

// AddRenderSystem registers a render system. Render systems keep ticking while
// logic is frozen.
func (w *World) AddRenderSystem(s System) {
	w.attachSystem(s, "render")
	w.renderSystems = append(w.renderSystems, s)
}

func (w *World) attachSystem(s System, kind string) {
	if s == nil {
		panic("system must not be nil")
	}
	b := s.base()
	if b.world != w {
		panic("system " + SystemName(s) + " was built for another world")
	}
	if hook, ok := s.(EntityAddedHook); ok {
		b.onAdded = hook.OnEntityAdded
	}
	b.OnEntitiesAdded(w.entities)

	w.log.Debug("registered system",
		zap.String("kind", kind),
		zap.String("system", SystemName(s)),
		zap.Stringer("signature", b.signature),
		zap.Int("entities", len(b.entities)))
}

// RemoveLogicSystem unregisters s. It does nothing if s is not registered.
func (w *World) RemoveLogicSystem(s System) {
	w.logicSystems = slices.DeleteFunc(w.logicSystems, func(o System) bool { return o == s })
}

// RemoveRenderSystem unregisters s. It does nothing if s is not registered.
func (w *World) RemoveRenderSystem(s System) {
	w.renderSystems = slices.DeleteFunc(w.renderSystems, func(o System) bool { return o == s })
}

// LogicSystems returns the logic systems in registration order.
func (w *World) LogicSystems() []System {
	return slices.Clone(w.logicSystems)
}

// RenderSystems returns the render systems in registration order.
func (w *World) RenderSystems() []System {
	return slices.Clone(w.renderSystems)
}

// FindLogicSystem returns the first registered logic system of type T.
func FindLogicSystem[T System](w *World) (T, bool) {
	return findSystem[T](w.logicSystems)
}

// FindRenderSystem returns the first registered render system of type T.
func FindRenderSystem[T System](w *World) (T, bool) {
	return findSystem[T](w.renderSystems)
}

func findSystem[T System](systems []System) (T, bool) {
	for _, s := range systems {
		if typed, ok := s.(T); ok {
			return typed, true
		}
	}
	var zero T
	return zero, false
}

// ReloadSystems lets systems reallocate their engine resources.
func (w *World) ReloadSystems() {
	w.eachSystem(func(s System) {
		if r, ok := s.(Reloadable); ok {
			r.Reload()
		}
	})
}

// UnloadSystems lets systems free their engine resources, render systems first.
func (w *World) UnloadSystems() {
	for _, list := range [][]System{w.renderSystems, w.logicSystems} {
		for _, s := range list {
			if r, ok := s.(Reloadable); ok {
				r.Unload()
			}
		}
	}
}

// BroadcastStart notifies StartStopListener systems that play mode started.
func (w *World) BroadcastStart() {
	w.eachRenderFirst(func(s System) {
		if l, ok := s.(StartStopListener); ok {
			l.OnStart()
		}
	})
}

// BroadcastStop notifies StartStopListener systems that play mode stopped.
func (w *World) BroadcastStop() {
	w.eachRenderFirst(func(s System) {
		if l, ok := s.(StartStopListener); ok {
			l.OnStop()
		}
	})
}

func (w *World) eachRenderFirst(fn func(System)) {
	for _, s := range w.renderSystems {
		fn(s)
	}
	for _, s := range w.logicSystems {
		fn(s)
	}
}

// SetupCamera lets render systems prepare their cameras.
func (w *World) SetupCamera(ctx RenderContext) {
	for _, s := range w.renderSystems {
		if h, ok := s.(CameraHook); ok {
			h.SetupCamera(ctx)
		}
	}
}

// OnFrame runs the per-frame hooks: systems first catch up with component
// changes made since the last tick, then logic and render systems get OnFrame,
// and finally every system may swap its buffers.
func (w *World) OnFrame(ctx RenderContext) {
	var updated []EntityID
	for _, id := range w.pending.updates {
		if w.IsLive(id) {
			updated = append(updated, id)
		}
	}
	if len(updated) > 0 {
		w.eachSystem(func(s System) { s.base().OnEntitiesUpdated(updated) })
	}

	w.eachSystem(func(s System) {
		if h, ok := s.(FrameHook); ok {
			h.OnFrame(ctx)
		}
	})
	w.eachSystem(func(s System) {
		if h, ok := s.(BufferSwapper); ok {
			h.SwapBuffers()
		}
	})
}

// RecordOpaqueGBufferPass lets every system record opaque draw work.
func (w *World) RecordOpaqueGBufferPass(pass RenderPass, ctx RenderContext) {
	w.eachSystem(func(s System) {
		if h, ok := s.(GBufferHook); ok {
			h.OpaqueGBufferRender(pass, ctx)
		}
	})
}

// RecordTransparentGBufferPass lets every system record transparent draw work.
func (w *World) RecordTransparentGBufferPass(pass RenderPass, ctx RenderContext) {
	w.eachSystem(func(s System) {
		if h, ok := s.(GBufferHook); ok {
			h.TransparentGBufferRender(pass, ctx)
		}
	})
}
