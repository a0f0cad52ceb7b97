package templates

import "fmt"

var byKey = buildIndex()

func buildIndex() map[string]Template {
	idx := make(map[string]Template, len(catalog))
	for _, tpl := range catalog {
		if _, dup := idx[tpl.Key]; dup {
			panic(fmt.Sprintf("templates: duplicate key %q", tpl.Key))
		}
		idx[tpl.Key] = tpl
	}
	for _, tpl := range catalog {
		for _, dep := range tpl.Dependencies {
			if _, ok := idx[dep]; !ok {
				panic(fmt.Sprintf("templates: %q depends on unknown key %q", tpl.Key, dep))
			}
		}
	}
	return idx
}

// OrderedSections returns the full catalog in document assembly order.
func OrderedSections() []Template {
	out := make([]Template, len(catalog))
	copy(out, catalog)
	return out
}

// Get looks up a template by key.
func Get(key string) (Template, bool) {
	tpl, ok := byKey[key]
	return tpl, ok
}

// Keys returns all template keys in assembly order.
func Keys() []string {
	out := make([]string, 0, len(catalog))
	for _, tpl := range catalog {
		out = append(out, tpl.Key)
	}
	return out
}

// Position returns the assembly-order index of a key, or len(catalog) for
// unknown keys so they sort after every known section.
func Position(key string) int {
	for i, tpl := range catalog {
		if tpl.Key == key {
			return i
		}
	}
	return len(catalog)
}
