// Package criteria manages saved search criteria: listing, selecting one
// for edit, creating, saving and deleting.
package criteria

import (
	"context"
	"errors"
	"net/url"
	"sort"

	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/eringen/followdash/backend"
	"github.com/eringen/followdash/dashboard"
	"github.com/eringen/followdash/format"
)

// Mode is the state of the criteria page.
type Mode int

const (
	Listing Mode = iota
	Editing
	Creating
)

func (m Mode) String() string {
	switch m {
	case Editing:
		return "editing"
	case Creating:
		return "creating"
	default:
		return "listing"
	}
}

// Paths served by the criteria pages.
const (
	ListPath   = "/view/search"
	NewPath    = "/view/search/new"
	CancelPath = "/view/search/cancel"
)

// EditPath is the select target for criterion id.
func EditPath(id string) string {
	return ListPath + "/" + url.PathEscape(id)
}

// MethodField is the form field that turns a POST into the method it
// names. HTML forms cannot send DELETE themselves.
const MethodField = "_method"

// ResultsPath lists search results for criterion id.
func ResultsPath(id string) string {
	return "/view/tweets/" + url.PathEscape(id)
}

// FeedPath is the RSS feed of the newest results for criterion id.
func FeedPath(id string) string {
	return ResultsPath(id) + "/feed.xml"
}

// Store is the slice of the backend client the manager needs.
type Store interface {
	Criteria(ctx context.Context, uid string) ([]backend.SearchCriterion, error)
	Criterion(ctx context.Context, uid, id string) (*backend.SearchCriterion, error)
	SaveCriterion(ctx context.Context, uid string, sc backend.SearchCriterion) (*backend.SearchCriterion, error)
	DeleteCriterion(ctx context.Context, uid, id string) error
	SearchResults(ctx context.Context, uid, id, key string) (*backend.ResultPage, error)
}

// Row is one criterion in the list.
type Row struct {
	ID           string
	Name         string
	ExecutedDate string
	ExecutedTime string
	URL          string
}

// Executed reports whether the criterion ever ran.
func (r Row) Executed() bool {
	return r.ExecutedDate != ""
}

// Page is one rendering of the criteria screen.
type Page struct {
	Mode     Mode
	Rows     []Row
	NewURL   string
	Query    string
	Form     Form
	Invalid  FieldErrors
	Err      error
	Message  string
	Flash    string
	Redirect string // set when the browser should navigate instead of rendering
}

// DeleteURL is where the delete control sends its DELETE; empty unless
// editing.
func (p *Page) DeleteURL() string {
	if p.Mode != Editing || p.Form.ID == "" {
		return ""
	}
	return EditPath(p.Form.ID)
}

// Manager drives the criteria screen against a Store. It holds no
// per-user state; every call fetches what it renders.
type Manager struct {
	store   Store
	refresh dashboard.DeleteRefresh
	log     *zap.Logger
	deletes singleflight.Group
}

// NewManager returns a Manager backed by store.
func NewManager(store Store, refresh dashboard.DeleteRefresh, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{store: store, refresh: refresh, log: log}
}

// List fetches the criteria and returns the Listing page. A non-empty
// query keeps only rows whose name fuzzy-matches it, in backend order.
func (m *Manager) List(ctx context.Context, uid, query string) *Page {
	p := &Page{Mode: Listing, NewURL: NewPath, Query: query}
	list, err := m.store.Criteria(ctx, uid)
	if err != nil {
		m.log.Error("list criteria", zap.Error(err))
		p.Err = err
		p.Message = dashboard.Message(err)
		return p
	}
	for _, c := range filter(list, query) {
		p.Rows = append(p.Rows, rowOf(c))
	}
	return p
}

func rowOf(c backend.SearchCriterion) Row {
	r := Row{ID: c.ID, Name: c.Name, URL: EditPath(c.ID)}
	if c.ExecutedOn != "" {
		r.ExecutedDate = format.ToShortDate(c.ExecutedOn)
		r.ExecutedTime = format.ToLongTime(c.ExecutedOn)
	}
	return r
}

type names []backend.SearchCriterion

func (n names) String(i int) string { return n[i].Name }
func (n names) Len() int            { return len(n) }

func filter(list []backend.SearchCriterion, query string) []backend.SearchCriterion {
	if query == "" {
		return list
	}
	matches := fuzzy.FindFrom(query, names(list))
	idx := make([]int, len(matches))
	for i, mt := range matches {
		idx[i] = mt.Index
	}
	sort.Ints(idx)
	out := make([]backend.SearchCriterion, len(idx))
	for i, j := range idx {
		out[i] = list[j]
	}
	return out
}

// Select fetches criterion id and returns the Editing page for it. If it
// cannot be loaded the Listing page is returned with the error.
func (m *Manager) Select(ctx context.Context, uid, id string) *Page {
	c, err := m.store.Criterion(ctx, uid, id)
	if err != nil {
		m.log.Error("get criterion", zap.String("id", id), zap.Error(err))
		p := m.List(ctx, uid, "")
		if p.Err == nil {
			p.Err = err
			p.Message = dashboard.Message(err)
		}
		return p
	}
	return m.SelectCriterion(*c)
}

// SelectCriterion returns the Editing page with every field taken from c.
func (m *Manager) SelectCriterion(c backend.SearchCriterion) *Page {
	return &Page{Mode: Editing, NewURL: NewPath, Form: ToForm(c)}
}

// Create returns the Creating page with an empty form.
func (m *Manager) Create() *Page {
	return &Page{Mode: Creating, NewURL: NewPath, Form: ToForm(backend.SearchCriterion{})}
}

// Cancel drops any in-progress edit and returns to Listing.
func (m *Manager) Cancel(ctx context.Context, uid string) *Page {
	return m.List(ctx, uid, "")
}

// Save validates f and stores it. New criteria (empty id) get their id from
// the backend. On success the page redirects to the list.
func (m *Manager) Save(ctx context.Context, uid string, f Form) (*Page, error) {
	mode := Editing
	if f.ID == "" {
		mode = Creating
	}
	c, err := f.Criterion()
	if err != nil {
		var invalid FieldErrors
		errors.As(err, &invalid)
		return &Page{Mode: mode, NewURL: NewPath, Form: f, Invalid: invalid, Err: err, Message: "Fix the highlighted fields."}, err
	}
	saved, err := m.store.SaveCriterion(ctx, uid, c)
	if err != nil {
		m.log.Error("save criterion", zap.String("id", f.ID), zap.Error(err))
		return &Page{Mode: mode, NewURL: NewPath, Form: f, Err: err, Message: dashboard.Message(err)}, err
	}
	m.log.Info("criterion saved", zap.String("id", saved.ID))
	return &Page{Mode: Listing, Redirect: ListPath, Flash: "Saved " + saved.Name + "."}, nil
}

// Delete removes criterion id. Concurrent deletes of the same id share a
// single backend call. A criterion that is already gone counts as
// deleted. On failure the Editing page is returned with the error.
//
// The shared call runs detached from ctx so that one caller going away
// does not fail the others joined to it.
func (m *Manager) Delete(ctx context.Context, uid, id string) (*Page, error) {
	_, err, shared := m.deletes.Do(uid+"\x00"+id, func() (any, error) {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), backend.DefaultTimeout)
		defer cancel()
		err := m.store.DeleteCriterion(dctx, uid, id)
		if errors.Is(err, backend.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	})
	if err != nil {
		m.log.Error("delete criterion", zap.String("id", id), zap.Error(err))
		p := m.Select(ctx, uid, id)
		p.Err = err
		p.Message = "Could not delete this criterion: " + dashboard.Message(err)
		return p, err
	}
	m.log.Info("criterion deleted", zap.String("id", id), zap.Bool("shared", shared))

	if m.refresh == dashboard.Navigate {
		return &Page{Mode: Listing, Redirect: ListPath, Flash: "Criterion deleted."}, nil
	}
	p := m.List(ctx, uid, "")
	p.Flash = "Criterion deleted."
	return p, nil
}
