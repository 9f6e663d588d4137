package core

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

const (
	descriptionWidth = 40
	ellipsis         = "..."
)

// SortLink is the header control on the task listing that flips the created_at order.
type SortLink struct {
	Label string
	Href  string
	Class string
}

// NewSortLink builds the control for the current created_at value. The link always targets the
// opposite direction; the default view links to descending.
func NewSortLink(label string, path string, current string) SortLink {
	link := SortLink{Label: label}

	target := SortDesc

	switch strings.ToLower(strings.TrimSpace(current)) {
	case string(SortAsc):
		link.Class = "sort_link_asc"
	case string(SortDesc):
		link.Class = "sort_link_desc"
		target = SortAsc
	}

	link.Href = path + "?" + url.Values{"created_at": {string(target)}}.Encode()

	return link
}

// Truncate shortens s to the given display width. Wide characters count as two columns.
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, ellipsis)
}

// TruncateDescription is the listing variant of Truncate.
func TruncateDescription(s string) string {
	return Truncate(s, descriptionWidth)
}

const displayTimeLayout = "2006/01/02 15:04"

// FormatTime renders a timestamp in loc, or an empty string for the zero time.
func FormatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}

	if loc != nil {
		t = t.In(loc)
	}

	return t.Format(displayTimeLayout)
}

const methodOverrideField = "_method"

var overridableMethods = map[string]string{
	"patch":  http.MethodPatch,
	"put":    http.MethodPut,
	"delete": http.MethodDelete,
}

// MethodOverride rewrites a POST carrying a _method form field into the named verb before routing.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			err := r.ParseForm()
			if err == nil {
				method, ok := overridableMethods[strings.ToLower(strings.TrimSpace(r.PostForm.Get(methodOverrideField)))]
				if ok {
					r.Method = method
				}
			}
		}

		next.ServeHTTP(w, r)
	})
}
