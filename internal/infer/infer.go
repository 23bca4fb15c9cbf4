// Package infer derives task dependency lists from declared input shapes
// and binds resolved results back into them.
//
// A shape is any struct (or pointer to struct) whose fields carry a
// `task:"name"` tag naming another task. Inference is conservative: a shape
// that cannot be parsed into a flat set of named fields yields no
// dependencies instead of an error, so a malformed declaration degrades to a
// root task rather than breaking graph construction.
package infer

import (
	"fmt"
	"reflect"
	"strings"
)

// tagName is the struct tag key naming the task a field is bound to.
const tagName = "task"

// Inputs is the filtered view of the shared result set handed to a running
// task: exactly the resolved values of its declared dependencies, keyed by
// task name. It is a private copy; mutating it has no effect on other tasks.
type Inputs map[string]any

// Value returns the resolved result of the named dependency.
func (in Inputs) Value(name string) (any, bool) {
	v, ok := in[name]
	return v, ok
}

// Decode injects the resolved dependency values into target, which must be
// a non-nil pointer to a struct using `task` tags. See Bind.
func (in Inputs) Decode(target any) error {
	return Bind(in, target)
}

// Dependencies extracts the ordered list of task names a declared input
// shape references. Untagged fields and fields tagged "-" are skipped;
// duplicate names are collapsed to their first occurrence. Nil and
// non-struct shapes infer no dependencies.
func Dependencies(shape any) []string {
	t, ok := structType(shape)
	if !ok {
		return nil
	}

	seen := make(map[string]struct{}, t.NumField())
	var names []string
	for i := 0; i < t.NumField(); i++ {
		name, ok := fieldTaskName(t.Field(i))
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Bind populates target's tagged fields from the provided inputs. Target
// must be a non-nil pointer to a struct. A tagged field whose task name is
// absent from in is left at its zero value; a resolved value that neither
// implements nor is assignable to the field type is an error.
func Bind(in Inputs, target any) error {
	v := reflect.ValueOf(target)
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind target must be a non-nil pointer to a struct, got %T", target)
	}

	structVal := v.Elem()
	structType := structVal.Type()

	for i := 0; i < structVal.NumField(); i++ {
		field := structType.Field(i)
		name, ok := fieldTaskName(field)
		if !ok {
			continue
		}

		value, present := in[name]
		if !present {
			continue
		}
		fieldVal := structVal.Field(i)
		if !fieldVal.CanSet() {
			return fmt.Errorf("field '%s' bound to task '%s' is not settable", field.Name, name)
		}
		if value == nil {
			continue
		}

		valueType := reflect.TypeOf(value)
		fieldType := field.Type
		if fieldType.Kind() == reflect.Interface {
			if !valueType.Implements(fieldType) {
				return fmt.Errorf("type mismatch for '%s': result of type %v does not implement %v", name, valueType, fieldType)
			}
		} else if !valueType.AssignableTo(fieldType) {
			return fmt.Errorf("type mismatch for '%s': result of type %v is not assignable to field of type %v", name, valueType, fieldType)
		}
		fieldVal.Set(reflect.ValueOf(value))
	}
	return nil
}

// structType resolves a declared shape to its struct type, unwrapping
// pointers. The second return is false for anything that is not a struct.
func structType(shape any) (reflect.Type, bool) {
	if shape == nil {
		return nil, false
	}
	t := reflect.TypeOf(shape)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, false
	}
	return t, true
}

// fieldTaskName returns the task name a struct field is bound to via its
// `task` tag, or false if the field does not participate.
func fieldTaskName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get(tagName)
	if tag == "" || tag == "-" {
		return "", false
	}
	name := strings.Split(tag, ",")[0]
	if name == "" {
		return "", false
	}
	return name, true
}
