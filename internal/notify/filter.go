package notify

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"paisometer/internal/models"
	"paisometer/internal/utils"
)

// DefaultAllowlist is the set of messaging apps whose notifications are read
// even when they are not the configured default SMS app.
var DefaultAllowlist = []string{
	"com.google.android.apps.messaging",
	"com.samsung.android.messaging",
	"com.android.mms",
}

// Flags carries the notification attributes the filter looks at.
type Flags struct {
	Ongoing bool
}

// Filter decides whether a notification is worth parsing
type Filter struct {
	defaultSMSApp string
	allowed       map[string]bool
}

// NewFilter builds a filter for the given default SMS app. Extra package
// names are added to DefaultAllowlist.
func NewFilter(defaultSMSApp string, extra ...string) *Filter {
	f := &Filter{
		defaultSMSApp: strings.TrimSpace(defaultSMSApp),
		allowed:       make(map[string]bool, len(DefaultAllowlist)+len(extra)),
	}
	for _, app := range DefaultAllowlist {
		f.allowed[app] = true
	}
	for _, app := range extra {
		if app = strings.TrimSpace(app); app != "" {
			f.allowed[app] = true
		}
	}
	return f
}

// ShouldProcess applies the rules in order: ongoing notifications are
// dropped, the default SMS app is accepted, allowlisted apps are accepted,
// everything else is dropped.
func (f *Filter) ShouldProcess(sourceApp string, flags Flags) bool {
	if flags.Ongoing {
		return false
	}
	if f.defaultSMSApp != "" && sourceApp == f.defaultSMSApp {
		return true
	}
	return f.allowed[sourceApp]
}

// Accept is ShouldProcess for a whole notification.
func (f *Filter) Accept(n models.Notification) bool {
	return f.ShouldProcess(n.SourceApp, Flags{Ongoing: n.Ongoing})
}

// Compose assembles the text a notification shows: the title, then the first
// non-empty of big text, text and sub text, then any inbox-style lines.
// The result is NFKC-normalized with whitespace runs collapsed.
func Compose(n models.Notification) string {
	parts := make([]string, 0, 2+len(n.TextLines))
	if n.Title != "" {
		parts = append(parts, n.Title)
	}
	for _, body := range []string{n.BigText, n.Text, n.SubText} {
		if strings.TrimSpace(body) != "" {
			parts = append(parts, body)
			break
		}
	}
	parts = append(parts, n.TextLines...)

	return utils.CollapseWhitespace(norm.NFKC.String(strings.Join(parts, " ")))
}
