package debugui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/sceneworld/ecs"
)

type EntityInfo struct {
	ID             ecs.EntityID
	Name           string
	Depth          int
	ComponentTypes []string
	ChildCount     int
	Hidden         bool
	Removing       bool
}

const (
	columnID = iota
	columnName
	columnComponents
	columnChildren
)

// EntityBrowser lists the live entities either as a sortable table or as the
// parent/child tree.
type EntityBrowser struct {
	entities      []EntityInfo
	lastCount     int
	sortColumn    int
	sortAscending bool

	selected           ecs.EntityID
	filterText         string
	treeMode           bool
	maxEntitiesPerPage int
	currentPage        int
}

func NewEntityBrowser(maxEntitiesPerPage int) *EntityBrowser {
	return &EntityBrowser{
		sortColumn:         columnID,
		sortAscending:      true,
		treeMode:           true,
		maxEntitiesPerPage: maxEntitiesPerPage,
		lastCount:          -1,
	}
}

// Selected returns the entity picked by the user, or the null ID.
func (eb *EntityBrowser) Selected() ecs.EntityID {
	return eb.selected
}

func (eb *EntityBrowser) Render(w *ecs.World, frame uint64) {
	imgui.SetNextWindowPosV(imgui.NewVec2(10, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(420, 500), imgui.CondOnce)
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	// refresh on population changes, and twice a second at 60 FPS for renames
	if eb.lastCount != w.EntityCount() || frame%30 == 0 {
		eb.entities = collectEntities(w)
		eb.lastCount = w.EntityCount()
		sortEntities(eb.entities, eb.sortColumn, eb.sortAscending)
	}
	if eb.selected != 0 && !w.Exists(eb.selected) {
		eb.selected = 0
	}

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
	}
	imgui.SameLine()
	imgui.Checkbox("Hierarchy", &eb.treeMode)

	if eb.treeMode && eb.filterText == "" {
		for _, root := range w.Roots() {
			eb.renderNode(root)
		}
	} else {
		eb.renderTable()
	}

	imgui.End()
}

func (eb *EntityBrowser) renderNode(e ecs.Entity) {
	name, _ := e.Name()
	label := fmt.Sprintf("%s %s", name, e.ID())

	children := e.Children()
	if !e.IsVisible() {
		imgui.PushStyleColorVec4(imgui.ColText, imgui.NewVec4(0.5, 0.5, 0.5, 1))
		defer imgui.PopStyleColor()
	}

	if len(children) == 0 {
		if imgui.SelectableBoolV(label, eb.selected == e.ID(), 0, imgui.NewVec2(0, 0)) {
			eb.selected = e.ID()
		}
		return
	}

	open := imgui.TreeNodeStr(label)
	imgui.SameLine()
	if imgui.Button(fmt.Sprintf("select##%d", uint64(e.ID()))) {
		eb.selected = e.ID()
	}
	if open {
		for _, child := range children {
			eb.renderNode(child)
		}
		imgui.TreePop()
	}
}

func (eb *EntityBrowser) renderTable() {
	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	filtered := filterEntities(eb.entities, eb.filterText)

	if imgui.BeginTableV("EntityTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity ID")
		imgui.TableSetupColumn("Name")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Children")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.sortColumn = int(spec.ColumnIndex())
			eb.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sortEntities(eb.entities, eb.sortColumn, eb.sortAscending)
			filtered = filterEntities(eb.entities, eb.filterText)
			sortSpecs.SetSpecsDirty(false)
		}

		start, end := pageBounds(len(filtered), eb.currentPage, eb.maxEntitiesPerPage)
		for _, entity := range filtered[start:end] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			if imgui.SelectableBoolV(entity.ID.String(), eb.selected == entity.ID, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selected = entity.ID
			}

			imgui.TableNextColumn()
			switch {
			case entity.Removing:
				imgui.TextColored(imgui.NewVec4(0.9, 0.3, 0.3, 1), entity.Name)
			case entity.Hidden:
				imgui.TextColored(imgui.NewVec4(0.5, 0.5, 0.5, 1), entity.Name)
			default:
				imgui.Text(strings.Repeat("  ", entity.Depth) + entity.Name)
			}

			imgui.TableNextColumn()
			imgui.Text(strings.Join(entity.ComponentTypes, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", entity.ChildCount))
		}

		imgui.EndTable()
	}

	if len(filtered) > eb.maxEntitiesPerPage {
		totalPages := (len(filtered) + eb.maxEntitiesPerPage - 1) / eb.maxEntitiesPerPage
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filtered)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		eb.currentPage = 0
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filtered)))
	}
}

// collectEntities walks the hierarchy depth first from every root.
func collectEntities(w *ecs.World) []EntityInfo {
	out := make([]EntityInfo, 0, w.EntityCount())
	var walk func(e ecs.Entity, depth int)
	walk = func(e ecs.Entity, depth int) {
		name, _ := e.Name()
		children := e.Children()

		comps := e.AllComponents()
		types := make([]string, len(comps))
		for i, c := range comps {
			types[i] = ecs.ComponentTypeName(ecs.ComponentIDFor(c))
		}

		out = append(out, EntityInfo{
			ID:             e.ID(),
			Name:           name,
			Depth:          depth,
			ComponentTypes: types,
			ChildCount:     len(children),
			Hidden:         !e.IsVisible(),
			Removing:       w.IsRemoving(e.ID()),
		})
		for _, child := range children {
			walk(child, depth+1)
		}
	}
	for _, root := range w.Roots() {
		walk(root, 0)
	}
	return out
}

func sortEntities(entities []EntityInfo, column int, ascending bool) {
	sort.SliceStable(entities, func(i, j int) bool {
		a, b := entities[i], entities[j]
		var less bool

		switch column {
		case columnName:
			less = a.Name < b.Name
		case columnComponents:
			less = strings.Join(a.ComponentTypes, ",") < strings.Join(b.ComponentTypes, ",")
		case columnChildren:
			less = a.ChildCount < b.ChildCount
		default:
			less = a.ID < b.ID
		}

		if !ascending {
			return !less
		}
		return less
	})
}

// filterEntities keeps entities whose ID, name or component types contain text,
// ignoring case.
func filterEntities(entities []EntityInfo, text string) []EntityInfo {
	if text == "" {
		return entities
	}

	filtered := make([]EntityInfo, 0, len(entities))
	filterLower := strings.ToLower(text)

	for _, entity := range entities {
		idStr := fmt.Sprintf("%d", uint64(entity.ID))
		componentsStr := strings.ToLower(strings.Join(entity.ComponentTypes, " "))

		if !strings.Contains(idStr, filterLower) &&
			!strings.Contains(strings.ToLower(entity.Name), filterLower) &&
			!strings.Contains(componentsStr, filterLower) {
			continue
		}

		filtered = append(filtered, entity)
	}

	return filtered
}

func pageBounds(total, page, perPage int) (int, int) {
	if perPage <= 0 {
		return 0, total
	}
	start := page * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return start, end
}
