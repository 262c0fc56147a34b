// Package crud is the configuration-driven list/modal data flow shared by
// every entity screen of the dashboard.
package crud

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ListItem is one backend record. The id is assigned by the backend.
type ListItem map[string]any

// ID returns the record id as text, or "" when the record has none.
func (it ListItem) ID() string {
	return Text(it["id"])
}

// Lookup resolves a dotted path such as "en.title" or "type.id".
func (it ListItem) Lookup(path string) (any, bool) {
	var cur any = map[string]any(it)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String returns the text at path, or "".
func (it ListItem) String(path string) string {
	v, _ := it.Lookup(path)
	return Text(v)
}

// Localized returns key in the locale sub-object, falling back to English
// and then to the flat field.
func (it ListItem) Localized(locale, key string) string {
	for _, loc := range []string{locale, "en"} {
		if s := it.String(loc + "." + key); s != "" {
			return s
		}
		if s := translation(it["translations"], loc, key); s != "" {
			return s
		}
	}
	return it.String(key)
}

// Label is a human name for the record.
func (it ListItem) Label(locale string) string {
	for _, key := range []string{"name", "title"} {
		if s := it.Localized(locale, key); s != "" {
			return s
		}
	}
	return it.ID()
}

// translation reads Laravel-style [{"locale": "ar", "name": ...}] arrays.
func translation(v any, locale, key string) string {
	list, ok := v.([]any)
	if !ok {
		return ""
	}
	for _, entry := range list {
		m, ok := asMap(entry)
		if !ok || Text(m["locale"]) != locale {
			continue
		}
		return Text(m[key])
	}
	return ""
}

// Text formats a decoded JSON scalar. Nil and composite values give "".
func Text(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case map[string]any, ListItem, []any:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case ListItem:
		return m, true
	}
	return nil, false
}
