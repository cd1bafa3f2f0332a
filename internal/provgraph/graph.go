package provgraph

import (
	"iter"
	"maps"
	"slices"
)

// PrefixKey is the top-level key holding namespace declarations.
const PrefixKey = "prefix"

// Instance is the attribute bag of one record: qualified attribute name to
// opaque value.
type Instance map[string]any

// Clone returns a shallow copy. Nested values are shared.
func (in Instance) Clone() Instance {
	if in == nil {
		return Instance{}
	}

	return maps.Clone(in)
}

// Bucket holds the instances of one class keyed by instance id.
type Bucket struct {
	ids       []string
	instances map[string]Instance
}

// NewBucket creates an empty bucket.
func NewBucket() *Bucket {
	return &Bucket{instances: make(map[string]Instance)}
}

// Len returns the number of instances.
func (b *Bucket) Len() int {
	return len(b.ids)
}

// IDs returns instance ids in insertion order.
func (b *Bucket) IDs() []string {
	return slices.Clone(b.ids)
}

// Get returns the instance with the given id.
func (b *Bucket) Get(id string) (Instance, bool) {
	inst, ok := b.instances[id]
	return inst, ok
}

// Has reports whether an instance with the given id exists.
func (b *Bucket) Has(id string) bool {
	_, ok := b.instances[id]
	return ok
}

// Put stores inst under id and reports whether an existing instance was
// replaced. A replaced instance keeps its original position.
func (b *Bucket) Put(id string, inst Instance) bool {
	_, exists := b.instances[id]
	if !exists {
		b.ids = append(b.ids, id)
	}

	b.instances[id] = inst

	return exists
}

// All iterates over the instances in insertion order.
func (b *Bucket) All() iter.Seq2[string, Instance] {
	return func(yield func(string, Instance) bool) {
		for _, id := range b.ids {
			if !yield(id, b.instances[id]) {
				return
			}
		}
	}
}

// Graph is a provenance document: class name to bucket.
type Graph struct {
	classes []string
	buckets map[string]*Bucket

	// Prefix is the namespace declaration block, nil when absent.
	Prefix map[string]any
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{buckets: make(map[string]*Bucket)}
}

// Classes returns class names in insertion order.
func (g *Graph) Classes() []string {
	return slices.Clone(g.classes)
}

// Bucket returns the bucket for class.
func (g *Graph) Bucket(class string) (*Bucket, bool) {
	b, ok := g.buckets[class]
	return b, ok
}

// Ensure returns the bucket for class, creating an empty one if needed.
func (g *Graph) Ensure(class string) *Bucket {
	if b, ok := g.buckets[class]; ok {
		return b
	}

	b := NewBucket()
	g.classes = append(g.classes, class)
	g.buckets[class] = b

	return b
}

// Replace installs b as the bucket for class, discarding any previous one.
func (g *Graph) Replace(class string, b *Bucket) {
	if _, ok := g.buckets[class]; !ok {
		g.classes = append(g.classes, class)
	}

	g.buckets[class] = b
}

// Len returns the number of classes.
func (g *Graph) Len() int {
	return len(g.classes)
}

// InstanceCount returns the number of instances across all classes.
func (g *Graph) InstanceCount() int {
	n := 0
	for _, b := range g.buckets {
		n += b.Len()
	}

	return n
}

// document returns the plain nested-map form used for encoding.
func (g *Graph) document() map[string]any {
	doc := make(map[string]any, len(g.buckets)+1)
	for class, b := range g.buckets {
		instances := make(map[string]Instance, b.Len())
		for id, inst := range b.All() {
			if inst == nil {
				inst = Instance{}
			}

			instances[id] = inst
		}

		doc[class] = instances
	}

	if g.Prefix != nil {
		doc[PrefixKey] = g.Prefix
	}

	return doc
}
