package extract

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/ajg/form"
)

const implicitIndex = "_"

var timeType = reflect.TypeFor[time.Time]()

type valuesDecoder struct {
	delimiter     rune
	ignoreUnknown bool
	ignoreCase    bool
}

func (d valuesDecoder) decode(dst any, values url.Values) error {
	delimiter := d.delimiter
	if delimiter == 0 {
		delimiter = DefaultQueryDelimiter
	}

	decoder := form.NewDecoder(nil).DelimitWith(delimiter)
	decoder.IgnoreUnknownKeys(d.ignoreUnknown)
	decoder.IgnoreCase(d.ignoreCase)
	normalized := normalizeKeys(values, delimiter, reflect.TypeOf(dst), d.ignoreCase)
	if err := decoder.DecodeValues(dst, normalized); err != nil {
		return fmt.Errorf("failed to decode values: %w", err)
	}
	return nil
}

type keyTarget int

const (
	targetUnknown keyTarget = iota
	targetSingle
	targetList
)

// normalizeKeys rewrites bracket keys (a[b][], a[0]) to delimited keys. Keys that address a
// slice of target are implicitly indexed so that their values fill it in order, repeated keys
// that address a single value keep the first one. Keys target cannot resolve are indexed
// only when repeated.
func normalizeKeys(values url.Values, delimiter rune, target reflect.Type, ignoreCase bool) url.Values {
	delim := string(delimiter)
	normalized := make(url.Values, len(values))
	for key, vs := range values {
		key = bracketsToDelimiter(key, delim)
		if !strings.HasSuffix(key, delim+implicitIndex) {
			switch resolveKeyTarget(target, strings.Split(key, delim), ignoreCase) {
			case targetList:
				key += delim + implicitIndex
			case targetSingle:
				vs = vs[:min(len(vs), 1)]
			default:
				if len(vs) > 1 {
					key += delim + implicitIndex
				}
			}
		}
		normalized[key] = append(normalized[key], vs...)
	}
	return normalized
}

// resolveKeyTarget follows path through t the way ajg/form looks up fields.
func resolveKeyTarget(t reflect.Type, path []string, ignoreCase bool) keyTarget {
	if t == nil {
		return targetUnknown
	}
	for _, segment := range path {
		t = indirectType(t)
		if isTextValue(t) {
			return targetUnknown
		}
		switch t.Kind() {
		case reflect.Struct:
			field, ok := lookupFormField(t, segment, ignoreCase)
			if !ok {
				return targetUnknown
			}
			t = field.Type
		case reflect.Map:
			t = t.Elem()
		case reflect.Slice, reflect.Array:
			if _, err := strconv.Atoi(segment); err != nil {
				return targetUnknown
			}
			t = t.Elem()
		default:
			return targetUnknown
		}
	}

	t = indirectType(t)
	if isTextValue(t) {
		return targetSingle
	}
	switch t.Kind() {
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return targetSingle
		}
		return targetList
	case reflect.Array:
		return targetList
	case reflect.Struct, reflect.Map, reflect.Interface, reflect.Invalid:
		return targetUnknown
	}
	return targetSingle
}

func lookupFormField(t reflect.Type, name string, ignoreCase bool) (reflect.StructField, bool) {
	caseInsensitive := -1
	for i := range t.NumField() {
		field := t.Field(i)
		key, ok := formFieldName(field)
		if !ok {
			continue
		}
		if key == name {
			return field, true
		}
		if ignoreCase && strings.EqualFold(key, name) {
			caseInsensitive = i
		}
	}
	if caseInsensitive >= 0 {
		return t.Field(caseInsensitive), true
	}

	for i := range t.NumField() {
		field := t.Field(i)
		if _, ok := formFieldName(field); !ok || !field.Anonymous {
			continue
		}
		embedded := indirectType(field.Type)
		if embedded.Kind() != reflect.Struct {
			continue
		}
		if found, ok := lookupFormField(embedded, name, ignoreCase); ok {
			return found, true
		}
	}
	return reflect.StructField{}, false
}

func formFieldName(field reflect.StructField) (string, bool) {
	if field.PkgPath != "" {
		return "", false
	}
	name, _, _ := strings.Cut(field.Tag.Get("form"), ",")
	switch name {
	case "-":
		return "", false
	case "":
		return field.Name, true
	}
	return name, true
}

func indirectType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func isTextValue(t reflect.Type) bool {
	if t.ConvertibleTo(timeType) {
		return true
	}
	return t.Implements(textUnmarshalerType) || reflect.PointerTo(t).Implements(textUnmarshalerType)
}

func bracketsToDelimiter(key string, delim string) string {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return key
	}

	var builder strings.Builder
	builder.WriteString(key[:open])
	rest := key[open:]
	for rest != "" {
		if rest[0] != '[' {
			return key
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return key
		}
		segment := rest[1:end]
		if segment == "" {
			segment = implicitIndex
		}
		builder.WriteString(delim)
		builder.WriteString(segment)
		rest = rest[end+1:]
	}
	return builder.String()
}
