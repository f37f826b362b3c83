package unused

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// Registry holds the classes and methods found by the scanner and tracks
// which of them have been seen. IDs are insertion indexes and never change.
// Seen flags only ever go from false to true.
type Registry struct {
	classes []Class
	methods []Method

	classSeen  *roaring.Bitmap
	methodSeen *roaring.Bitmap

	entryClass  string
	entryMethod string
	capacity    Capacity
}

// NewRegistry creates an empty registry. Entities whose names equal the entry
// class or method are marked seen as they are added.
func NewRegistry(entryClass, entryMethod string, capacity Capacity) *Registry {
	return &Registry{
		classSeen:   roaring.New(),
		methodSeen:  roaring.New(),
		entryClass:  entryClass,
		entryMethod: entryMethod,
		capacity:    capacity,
	}
}

// AddClass records a class and returns its ID.
func (r *Registry) AddClass(c Class) (int, error) {
	if r.capacity.MaxClasses > 0 && len(r.classes) >= r.capacity.MaxClasses {
		return -1, fmt.Errorf("%w: more than %d classes", ErrCapacityExceeded, r.capacity.MaxClasses)
	}
	c.ID = len(r.classes)
	r.classes = append(r.classes, c)
	if c.Name == r.entryClass {
		r.classSeen.Add(uint32(c.ID))
	}
	return c.ID, nil
}

// AddMethod records a method and returns its ID.
func (r *Registry) AddMethod(m Method) (int, error) {
	if r.capacity.MaxMethods > 0 && len(r.methods) >= r.capacity.MaxMethods {
		return -1, fmt.Errorf("%w: more than %d methods", ErrCapacityExceeded, r.capacity.MaxMethods)
	}
	m.ID = len(r.methods)
	r.methods = append(r.methods, m)
	if m.Name == r.entryMethod {
		r.methodSeen.Add(uint32(m.ID))
	}
	return m.ID, nil
}

// Classes returns the recorded classes in scan order.
func (r *Registry) Classes() []Class {
	return r.classes
}

// Methods returns the recorded methods in scan order.
func (r *Registry) Methods() []Method {
	return r.methods
}

// ClassSeen reports whether the class with the given ID is seen.
func (r *Registry) ClassSeen(id int) bool {
	return r.classSeen.Contains(uint32(id))
}

// MethodSeen reports whether the method with the given ID is seen.
func (r *Registry) MethodSeen(id int) bool {
	return r.methodSeen.Contains(uint32(id))
}

// MarkClass marks a class seen and reports whether it was newly marked.
func (r *Registry) MarkClass(id int) bool {
	return r.classSeen.CheckedAdd(uint32(id))
}

// MarkMethod marks a method seen and reports whether it was newly marked.
func (r *Registry) MarkMethod(id int) bool {
	return r.methodSeen.CheckedAdd(uint32(id))
}

// ClassNameSeen reports whether any seen class carries name.
func (r *Registry) ClassNameSeen(name string) bool {
	it := r.classSeen.Iterator()
	for it.HasNext() {
		if r.classes[it.Next()].Name == name {
			return true
		}
	}
	return false
}

// SeenMethods returns a snapshot of the seen method IDs.
func (r *Registry) SeenMethods() []int {
	ids := r.methodSeen.ToArray()
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}

// SeenCount returns the number of seen classes and methods.
func (r *Registry) SeenCount() (classes, methods int) {
	return int(r.classSeen.GetCardinality()), int(r.methodSeen.GetCardinality())
}

// Len returns the total number of recorded entities.
func (r *Registry) Len() int {
	return len(r.classes) + len(r.methods)
}

// Entities returns the diagnostic entity table, classes first.
func (r *Registry) Entities() []Entity {
	out := make([]Entity, 0, r.Len())
	for _, c := range r.classes {
		out = append(out, Entity{
			Kind:       KindClass,
			Name:       c.Name,
			Start:      c.Start,
			End:        c.End,
			Seen:       r.ClassSeen(c.ID),
			Comparator: c.Comparator,
		})
	}
	for _, m := range r.methods {
		out = append(out, Entity{
			Kind:  KindMethod,
			Name:  m.Name,
			Class: m.Class,
			Start: m.Start,
			End:   m.End,
			Seen:  r.MethodSeen(m.ID),
		})
	}
	return out
}
