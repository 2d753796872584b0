package confloader

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/knadh/koanf/maps"
)

// ErrReadBytesNotSupported is returned when ReadBytes is called on a map provider.
var ErrReadBytesNotSupported = errors.New("confloader: ReadBytes not supported by map provider")

// mapProvider loads configuration from a map with dotted keys.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

func (m mapProvider) Read() (map[string]any, error) {
	return maps.Unflatten(m, "."), nil
}

// flatten walks a struct pointer and returns its koanf-tagged leaf fields
// as dotted keys. Fields without a koanf tag are skipped.
func flatten(target any) (map[string]any, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("confloader: target must be a non-nil struct pointer, got %T", target)
	}

	out := make(map[string]any)
	flattenStruct(v.Elem(), "", out)
	return out, nil
}

func flattenStruct(v reflect.Value, prefix string, out map[string]any) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("koanf")
		if tag == "" || tag == "-" || !field.IsExported() {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		fv := v.Field(i)
		if fv.Kind() == reflect.Struct {
			flattenStruct(fv, key, out)
			continue
		}
		out[key] = fv.Interface()
	}
}
