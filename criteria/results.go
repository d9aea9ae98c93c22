package criteria

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/eringen/followdash/backend"
	"github.com/eringen/followdash/dashboard"
)

// Results is one page of search results for a criterion.
type Results struct {
	CriterionID string
	Items       []backend.Tweet
	NextURL     string // empty on the last page
	Err         error
	Message     string
}

// Results fetches the page of results for criterion id that starts after
// key.
func (m *Manager) Results(ctx context.Context, uid, id, key string) *Results {
	r := &Results{CriterionID: id}
	page, err := m.store.SearchResults(ctx, uid, id, key)
	if err != nil {
		m.log.Error("search results", zap.String("id", id), zap.Error(err))
		r.Err = err
		r.Message = dashboard.Message(err)
		return r
	}
	r.Items = page.Items
	if page.NextKey != "" {
		r.NextURL = ResultsPath(id) + "?key=" + url.QueryEscape(page.NextKey)
	}
	return r
}
