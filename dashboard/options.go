package dashboard

// DeleteRefresh is how the criteria list is brought up to date after a
// successful delete.
type DeleteRefresh int

const (
	// Refetch reloads the list in the same response.
	Refetch DeleteRefresh = iota
	// Navigate redirects the browser to the list page.
	Navigate
)

func (d DeleteRefresh) String() string {
	if d == Navigate {
		return "navigate"
	}
	return "refetch"
}

// RenderOptions collects the presentation switches that differed between
// dashboard generations. Use Variant to get one of the known presets.
type RenderOptions struct {
	Version           int
	FormatCounts      bool // thousands separators on counters
	DedupeConsecutive bool // drop repeated consecutive usernames in card lists
	Drilldown         bool // chart bars link to the day view
	DeleteRefresh     DeleteRefresh
}

// LatestVariant is the preset used when none is configured.
const LatestVariant = 3

// Variant returns the preset for dashboard generation v. Unknown versions
// get the latest preset.
func Variant(v int) RenderOptions {
	switch v {
	case 1:
		return RenderOptions{Version: 1, DeleteRefresh: Navigate}
	case 2:
		return RenderOptions{Version: 2, FormatCounts: true, Drilldown: true, DeleteRefresh: Navigate}
	default:
		return RenderOptions{
			Version:           LatestVariant,
			FormatCounts:      true,
			DedupeConsecutive: true,
			Drilldown:         true,
			DeleteRefresh:     Refetch,
		}
	}
}
