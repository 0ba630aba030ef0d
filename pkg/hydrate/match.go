package hydrate

import (
	"fmt"

	"github.com/utiligize/configator/pkg/onepassword"
)

// SectionIndex maps normalized section titles to section IDs. Untitled
// sections cannot be addressed and are left out; when two titles normalize to
// the same key the later section wins.
func SectionIndex(item onepassword.Item) map[string]string {
	index := make(map[string]string, len(item.Sections))
	for _, s := range item.Sections {
		if s.Title == "" {
			continue
		}
		index[Normalize(s.Title)] = s.ID
	}
	return index
}

// FindField returns the first field whose normalized title equals key and
// whose section equals scope. An empty scope only matches unsectioned fields.
func FindField(fields []onepassword.Field, key, scope string) (onepassword.Field, error) {
	for _, f := range fields {
		if Normalize(f.Title) == key && f.SectionID == scope {
			return f, nil
		}
	}
	if scope == "" {
		return onepassword.Field{}, fmt.Errorf("%w: no field titled %q", ErrFieldNotFound, key)
	}
	return onepassword.Field{}, fmt.Errorf("%w: no field titled %q in section %q", ErrFieldNotFound, key, scope)
}
