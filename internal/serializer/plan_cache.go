package serializer

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/Yiling-J/theine-go"
)

// DefaultPlanCacheSize is the number of struct types whose reflected
// field plans are kept by the default cache.
const DefaultPlanCacheSize = 1024

// structPlan is the reflected, immutable field layout of a struct type.
type structPlan struct {
	fields []*Field
}

// PlanCache caches reflected struct field plans per type. It is safe for
// concurrent use.
type PlanCache struct {
	cache *theine.Cache[reflect.Type, *structPlan]
}

// NewPlanCache creates a plan cache holding at most size types.
func NewPlanCache(size int64) (*PlanCache, error) {
	cache, err := theine.NewBuilder[reflect.Type, *structPlan](size).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build plan cache: %w", err)
	}
	return &PlanCache{cache: cache}, nil
}

// plan returns the cached plan for t, reflecting it on a miss.
func (c *PlanCache) plan(t reflect.Type) *structPlan {
	metrics := GetSerializerMetrics()

	if p, ok := c.cache.Get(t); ok {
		metrics.RecordPlanLookup("hit")
		return p
	}

	metrics.RecordPlanLookup("miss")
	p := reflectPlan(t)
	c.cache.Set(t, p, 1)
	return p
}

// Len returns the number of cached plans.
func (c *PlanCache) Len() int {
	return c.cache.Len()
}

// Close stops the cache's background maintenance.
func (c *PlanCache) Close() {
	c.cache.Close()
}

var (
	defaultPlanCacheMu sync.RWMutex
	defaultPlanCache   *PlanCache
)

// DefaultPlanCache returns the process-wide plan cache, creating it with
// DefaultPlanCacheSize on first use.
func DefaultPlanCache() *PlanCache {
	defaultPlanCacheMu.RLock()
	pc := defaultPlanCache
	defaultPlanCacheMu.RUnlock()
	if pc != nil {
		return pc
	}

	defaultPlanCacheMu.Lock()
	defer defaultPlanCacheMu.Unlock()
	if defaultPlanCache == nil {
		pc, err := NewPlanCache(DefaultPlanCacheSize)
		if err != nil {
			panic(err)
		}
		defaultPlanCache = pc
	}
	return defaultPlanCache
}

// SetDefaultPlanCacheSize replaces the process-wide plan cache with an
// empty one of the given size. Builders created with WithPlanCache are
// not affected.
func SetDefaultPlanCacheSize(size int64) error {
	pc, err := NewPlanCache(size)
	if err != nil {
		return err
	}

	defaultPlanCacheMu.Lock()
	old := defaultPlanCache
	defaultPlanCache = pc
	defaultPlanCacheMu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

// reflectPlan walks t and returns its serializable fields in declaration
// order. Fields of embedded structs without a json name are promoted,
// except through unexported embedded pointers. On a name clash the
// shallower field wins, and the first declared wins at equal depth.
func reflectPlan(t reflect.Type) *structPlan {
	w := &planWalker{
		root:   t,
		byName: make(map[string]int),
	}
	w.walk(t, nil, 0, make(map[reflect.Type]bool))
	return &structPlan{fields: w.fields}
}

type planWalker struct {
	root   reflect.Type
	fields []*Field
	depths []int
	byName map[string]int
}

func (w *planWalker) walk(t reflect.Type, index []int, depth int, visiting map[reflect.Type]bool) {
	if visiting[t] {
		return
	}
	visiting[t] = true
	defer delete(visiting, t)

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)

		jsonTag := sf.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name, omitEmpty := parseJSONTag(jsonTag)

		idx := make([]int, 0, len(index)+1)
		idx = append(append(idx, index...), i)

		if sf.Anonymous && name == "" {
			ft := sf.Type
			isPtr := ft.Kind() == reflect.Ptr
			if isPtr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				// Exported fields of an unexported embedded struct are
				// promoted; an unexported embedded pointer is skipped.
				if sf.IsExported() || !isPtr {
					w.walk(ft, idx, depth+1, visiting)
				}
				continue
			}
		}

		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}

		readOnly, writeOnly := parseSerializerTag(sf.Tag.Get("serializer"))

		w.add(&Field{
			Name:      name,
			GoName:    sf.Name,
			Type:      sf.Type,
			Index:     idx,
			ReadOnly:  readOnly,
			WriteOnly: writeOnly,
			OmitEmpty: omitEmpty,
			get:       structAccessor(w.root, idx),
		}, depth)
	}
}

func (w *planWalker) add(f *Field, depth int) {
	if pos, exists := w.byName[f.Name]; exists {
		// Shallower wins. At equal depth the first declared field is kept,
		// where encoding/json would drop both.
		if depth < w.depths[pos] {
			w.fields[pos] = f
			w.depths[pos] = depth
		}
		return
	}
	w.byName[f.Name] = len(w.fields)
	w.fields = append(w.fields, f)
	w.depths = append(w.depths, depth)
}

// structAccessor reads the field at index from an instance of root or a
// pointer to it. A nil embedded pointer on the path makes the field absent.
func structAccessor(root reflect.Type, index []int) accessor {
	return func(instance interface{}) (interface{}, bool, error) {
		rv, err := derefInstance(root, instance)
		if err != nil {
			return nil, false, err
		}

		fv, err := rv.FieldByIndexErr(index)
		if err != nil {
			return nil, false, nil
		}
		return fv.Interface(), true, nil
	}
}

// derefInstance follows pointers and checks the result is of type root.
func derefInstance(root reflect.Type, instance interface{}) (reflect.Value, error) {
	rv := reflect.ValueOf(instance)
	if !rv.IsValid() {
		return reflect.Value{}, ErrNilInstance
	}
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}, ErrNilInstance
		}
		rv = rv.Elem()
	}
	if rv.Type() != root {
		return reflect.Value{}, fmt.Errorf("%w: expected %s, got %s", ErrTypeMismatch, root, rv.Type())
	}
	return rv, nil
}
