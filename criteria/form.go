package criteria

import (
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/eringen/followdash/backend"
)

// FieldKind is how a form field is rendered and parsed.
type FieldKind int

const (
	Text FieldKind = iota
	Checkbox
	Integer
	Decimal
	Hidden
)

// Field is one input of the criterion form.
type Field struct {
	Name    string
	Label   string
	Kind    FieldKind
	Value   string
	Checked bool
}

// Form is the editable representation of a SearchCriterion. Values are
// kept as submitted so a rejected form can be shown again unchanged.
type Form struct {
	ID     string
	Values map[string]string
	Checks map[string]bool
}

type fieldDef struct {
	name  string
	label string
	kind  FieldKind
}

var fieldDefs = []fieldDef{
	{"id", "", Hidden},
	{"name", "Name", Text},
	{"value", "Search for", Text},
	{"lang", "Language", Text},
	{"latest", "Latest only", Checkbox},
	{"has_link", "Has link", Checkbox},
	{"include_rt", "Include reposts", Checkbox},
	{"post_count_min", "Posts min", Integer},
	{"post_count_max", "Posts max", Integer},
	{"fave_count_min", "Favorites min", Integer},
	{"fave_count_max", "Favorites max", Integer},
	{"following_count_min", "Following min", Integer},
	{"following_count_max", "Following max", Integer},
	{"follower_count_min", "Followers min", Integer},
	{"follower_count_max", "Followers max", Integer},
	{"follower_ratio_min", "Follower ratio min", Decimal},
	{"follower_ratio_max", "Follower ratio max", Decimal},
}

// Fields returns the form inputs in display order.
func (f Form) Fields() []Field {
	out := make([]Field, 0, len(fieldDefs))
	for _, d := range fieldDefs {
		fl := Field{Name: d.name, Label: d.label, Kind: d.kind}
		switch d.kind {
		case Checkbox:
			fl.Checked = f.Checks[d.name]
		case Hidden:
			fl.Value = f.ID
		default:
			fl.Value = f.Values[d.name]
		}
		out = append(out, fl)
	}
	return out
}

// Get returns the submitted value of a text or numeric field.
func (f Form) Get(name string) string {
	return f.Values[name]
}

// ToForm fills a form from c. Zero bounds are shown as empty fields.
func ToForm(c backend.SearchCriterion) Form {
	f := Form{
		ID: c.ID,
		Values: map[string]string{
			"name":                c.Name,
			"value":               c.Value,
			"lang":                c.Lang,
			"post_count_min":      itoa(c.PostCountMin),
			"post_count_max":      itoa(c.PostCountMax),
			"fave_count_min":      itoa(c.FaveCountMin),
			"fave_count_max":      itoa(c.FaveCountMax),
			"following_count_min": itoa(c.FollowingCountMin),
			"following_count_max": itoa(c.FollowingCountMax),
			"follower_count_min":  itoa(c.FollowerCountMin),
			"follower_count_max":  itoa(c.FollowerCountMax),
			"follower_ratio_min":  ftoa(c.FollowerRatioMin),
			"follower_ratio_max":  ftoa(c.FollowerRatioMax),
		},
		Checks: map[string]bool{
			"latest":     c.Latest,
			"has_link":   c.HasLink,
			"include_rt": c.IncludeRT,
		},
	}
	return f
}

// FromValues reads a submitted form.
func FromValues(v url.Values) Form {
	f := Form{
		ID:     strings.TrimSpace(v.Get("id")),
		Values: make(map[string]string),
		Checks: make(map[string]bool),
	}
	for _, d := range fieldDefs {
		switch d.kind {
		case Hidden:
		case Checkbox:
			val := v.Get(d.name)
			f.Checks[d.name] = val == "on" || val == "true" || val == "1"
		default:
			f.Values[d.name] = strings.TrimSpace(v.Get(d.name))
		}
	}
	return f
}

// FieldErrors maps field names to validation messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	names := make([]string, 0, len(e))
	for n := range e {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n + ": " + e[n]
	}
	return "invalid criterion: " + strings.Join(parts, "; ")
}

// Criterion validates the form and converts it to a SearchCriterion.
func (f Form) Criterion() (backend.SearchCriterion, error) {
	errs := FieldErrors{}
	c := backend.SearchCriterion{
		ID:        f.ID,
		Name:      f.Values["name"],
		Value:     f.Values["value"],
		Lang:      f.Values["lang"],
		Latest:    f.Checks["latest"],
		HasLink:   f.Checks["has_link"],
		IncludeRT: f.Checks["include_rt"],
	}
	if c.Name == "" {
		errs["name"] = "required"
	}
	if c.Value == "" {
		errs["value"] = "required"
	}

	ints := []struct {
		min, max string
		dst      [2]*int
	}{
		{"post_count_min", "post_count_max", [2]*int{&c.PostCountMin, &c.PostCountMax}},
		{"fave_count_min", "fave_count_max", [2]*int{&c.FaveCountMin, &c.FaveCountMax}},
		{"following_count_min", "following_count_max", [2]*int{&c.FollowingCountMin, &c.FollowingCountMax}},
		{"follower_count_min", "follower_count_max", [2]*int{&c.FollowerCountMin, &c.FollowerCountMax}},
	}
	for _, r := range ints {
		for i, name := range []string{r.min, r.max} {
			n, err := parseInt(f.Values[name])
			if err != nil {
				errs[name] = err.Error()
				continue
			}
			*r.dst[i] = n
		}
		if *r.dst[1] > 0 && *r.dst[0] > *r.dst[1] {
			errs[r.max] = "must not be less than the minimum"
		}
	}

	var ferr error
	if c.FollowerRatioMin, ferr = parseFloat(f.Values["follower_ratio_min"]); ferr != nil {
		errs["follower_ratio_min"] = ferr.Error()
	}
	if c.FollowerRatioMax, ferr = parseFloat(f.Values["follower_ratio_max"]); ferr != nil {
		errs["follower_ratio_max"] = ferr.Error()
	}
	if c.FollowerRatioMax > 0 && c.FollowerRatioMin > c.FollowerRatioMax {
		errs["follower_ratio_max"] = "must not be less than the minimum"
	}

	if len(errs) > 0 {
		return c, errs
	}
	return c, nil
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("not a whole number")
	}
	if n < 0 {
		return 0, errors.New("must not be negative")
	}
	return n, nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("not a number")
	}
	if v < 0 {
		return 0, errors.New("must not be negative")
	}
	return v, nil
}

func itoa(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func ftoa(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
