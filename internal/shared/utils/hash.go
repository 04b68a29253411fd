package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// HashAlgorithm represents the hashing algorithm to use
type HashAlgorithm string

const (
	SHA256 HashAlgorithm = "sha256"
)

// cycleMarker replaces a value that refers back to one of its ancestors
const cycleMarker = `"<cycle>"`

// Hasher provides hashing of canonical payload forms
type Hasher struct {
	algorithm HashAlgorithm
}

// NewHasher creates a new hasher with the specified algorithm
func NewHasher(algorithm HashAlgorithm) *Hasher {
	return &Hasher{algorithm: algorithm}
}

// DefaultHasher returns a hasher with the default algorithm
func DefaultHasher() *Hasher {
	return NewHasher(SHA256)
}

// HashString computes a hex digest of s
func (h *Hasher) HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// PayloadKey returns a stable identity for a window payload. Two payloads
// that are structurally equal (regardless of map key order or numeric type)
// share a key.
func (h *Hasher) PayloadKey(payload interface{}) string {
	return h.HashString(Canonical(payload))
}

// Canonical renders v deterministically: map keys and struct fields are
// sorted, integral floats print like integers, and a value that contains
// itself is cut at the repeat.
func Canonical(v interface{}) string {
	var sb strings.Builder
	c := canonicalizer{sb: &sb, path: make(map[uintptr]struct{})}
	c.write(reflect.ValueOf(v))
	return sb.String()
}

type canonicalizer struct {
	sb   *strings.Builder
	path map[uintptr]struct{} // reference values on the current descent
}

func (c *canonicalizer) write(v reflect.Value) {
	if !v.IsValid() {
		c.sb.WriteString("null")
		return
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			c.sb.WriteString("null")
			return
		}
		c.write(v.Elem())

	case reflect.Pointer:
		if v.IsNil() {
			c.sb.WriteString("null")
			return
		}
		c.enter(v.Pointer(), func() { c.write(v.Elem()) })

	case reflect.Map:
		if v.IsNil() {
			c.sb.WriteString("null")
			return
		}
		c.enter(v.Pointer(), func() { c.writeMap(v) })

	case reflect.Slice:
		if v.IsNil() {
			c.sb.WriteString("null")
			return
		}
		if v.Len() == 0 {
			c.sb.WriteString("[]")
			return
		}
		c.enter(v.Pointer(), func() { c.writeList(v) })

	case reflect.Array:
		c.writeList(v)

	case reflect.Struct:
		c.writeStruct(v)

	case reflect.String:
		c.sb.WriteString(strconv.Quote(v.String()))

	case reflect.Bool:
		c.sb.WriteString(strconv.FormatBool(v.Bool()))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		c.sb.WriteString(strconv.FormatInt(v.Int(), 10))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		c.sb.WriteString(strconv.FormatUint(v.Uint(), 10))

	case reflect.Float32, reflect.Float64:
		c.sb.WriteString(formatFloat(v.Float()))

	default:
		// func, chan, complex: not representable, keep only the kind
		fmt.Fprintf(c.sb, `"<%s>"`, v.Kind())
	}
}

func (c *canonicalizer) enter(ptr uintptr, fn func()) {
	if _, seen := c.path[ptr]; seen {
		c.sb.WriteString(cycleMarker)
		return
	}
	c.path[ptr] = struct{}{}
	fn()
	delete(c.path, ptr)
}

func (c *canonicalizer) writeList(v reflect.Value) {
	c.sb.WriteByte('[')
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			c.sb.WriteByte(',')
		}
		c.write(v.Index(i))
	}
	c.sb.WriteByte(']')
}

func (c *canonicalizer) writeMap(v reflect.Value) {
	type entry struct {
		key   string
		value reflect.Value
	}
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		entries = append(entries, entry{key: fmt.Sprint(iter.Key().Interface()), value: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	c.sb.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			c.sb.WriteByte(',')
		}
		c.sb.WriteString(strconv.Quote(e.key))
		c.sb.WriteByte(':')
		c.write(e.value)
	}
	c.sb.WriteByte('}')
}

func (c *canonicalizer) writeStruct(v reflect.Value) {
	t := v.Type()
	type field struct {
		name  string
		index int
	}
	fields := make([]field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		fields = append(fields, field{name: name, index: i})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].name < fields[j].name })

	c.sb.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			c.sb.WriteByte(',')
		}
		c.sb.WriteString(strconv.Quote(f.name))
		c.sb.WriteByte(':')
		c.write(v.Field(f.index))
	}
	c.sb.WriteByte('}')
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return `"NaN"`
	case math.IsInf(f, 1):
		return `"+Inf"`
	case math.IsInf(f, -1):
		return `"-Inf"`
	case f == math.Trunc(f) && math.Abs(f) < 1e15:
		return strconv.FormatInt(int64(f), 10)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// ClonePayload deep-copies JSON-shaped values (maps, slices, scalars) so a
// stored payload cannot be changed through the caller's reference. Other
// values are returned as-is; self-references are dropped.
func ClonePayload(v interface{}) interface{} {
	return clonePayload(v, make(map[uintptr]struct{}))
}

func clonePayload(v interface{}, path map[uintptr]struct{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		if t == nil {
			return t
		}
		ptr := reflect.ValueOf(t).Pointer()
		if _, seen := path[ptr]; seen {
			return nil
		}
		path[ptr] = struct{}{}
		defer delete(path, ptr)

		out := make(map[string]interface{}, len(t))
		for k, child := range t {
			out[k] = clonePayload(child, path)
		}
		return out
	case []interface{}:
		if t == nil {
			return t
		}
		if len(t) > 0 {
			ptr := reflect.ValueOf(t).Pointer()
			if _, seen := path[ptr]; seen {
				return nil
			}
			path[ptr] = struct{}{}
			defer delete(path, ptr)
		}

		out := make([]interface{}, len(t))
		for i, child := range t {
			out[i] = clonePayload(child, path)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
