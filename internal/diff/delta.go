package diff

import (
	"github.com/pgterra/pgterra/internal/ir"
)

// Delta is a three-way partition of one homogeneous, by-name-keyed
// collection between an old and new Schema snapshot (spec.md §4.3).
type Delta[T ir.Node] struct {
	Added   []T
	Removed []T
	// Changed pairs an old object with its new replacement: anything whose
	// name survived in both maps but whose CanonicalSQL differs.
	Changed []Pair[T]
	// Renamed pairs a removed object with the added object that replaced
	// it, detected only under the narrow rename heuristic below.
	Renamed []Pair[T]
}

// Pair is an (old, new) correspondence between two objects of one variant.
type Pair[T ir.Node] struct {
	Old T
	New T
}

// Calculate partitions oldObjs/newObjs (both keyed by object name within
// one category) into Delta.Added/Removed/Changed, then promotes an
// added/removed pair to Renamed when the rename heuristic applies
// (spec.md §4.3, §9 "Rename detection"):
//
//	len(Added) == 1 && len(Removed) == 1 && the removed object's
//	CanonicalSQL, with the added object's name substituted for its own,
//	equals the added object's CanonicalSQL.
//
// renameCanonical renders obj's CanonicalSQL as if obj were named
// newName (the added object's full ID string); a nil renameCanonical
// disables rename detection.
func Calculate[T ir.Node](oldObjs, newObjs map[string]T, renameCanonical func(obj T, newName string) string) Delta[T] {
	var d Delta[T]

	for name, newObj := range newObjs {
		oldObj, existed := oldObjs[name]
		if !existed {
			d.Added = append(d.Added, newObj)
			continue
		}
		if oldObj.CanonicalSQL() != newObj.CanonicalSQL() {
			d.Changed = append(d.Changed, Pair[T]{Old: oldObj, New: newObj})
		}
	}
	for name, oldObj := range oldObjs {
		if _, stillExists := newObjs[name]; !stillExists {
			d.Removed = append(d.Removed, oldObj)
		}
	}

	if renameCanonical != nil && len(d.Added) == 1 && len(d.Removed) == 1 {
		removed, added := d.Removed[0], d.Added[0]
		newName := added.ID().String()
		if renameCanonical(removed, newName) == added.CanonicalSQL() {
			d.Renamed = []Pair[T]{{Old: removed, New: added}}
			d.Added = nil
			d.Removed = nil
		}
	}

	return d
}
