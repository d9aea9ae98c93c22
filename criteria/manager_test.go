package criteria

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eringen/followdash/backend"
	"github.com/eringen/followdash/dashboard"
)

type memStore struct {
	mu      sync.Mutex
	list    []backend.SearchCriterion
	err     error
	delErr  error
	deletes atomic.Int32
	block   chan struct{} // when set, DeleteCriterion waits on it
	started chan struct{}
}

func newMemStore(list ...backend.SearchCriterion) *memStore {
	return &memStore{list: list}
}

func (s *memStore) Criteria(ctx context.Context, uid string) ([]backend.SearchCriterion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]backend.SearchCriterion(nil), s.list...), nil
}

func (s *memStore) Criterion(ctx context.Context, uid, id string) (*backend.SearchCriterion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.list {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, &backend.APIError{Status: 404}
}

func (s *memStore) SaveCriterion(ctx context.Context, uid string, sc backend.SearchCriterion) (*backend.SearchCriterion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc.ID == "" {
		sc.ID = "new"
		s.list = append(s.list, sc)
		return &sc, nil
	}
	for i := range s.list {
		if s.list[i].ID == sc.ID {
			s.list[i] = sc
			return &sc, nil
		}
	}
	return nil, &backend.APIError{Status: 404}
}

func (s *memStore) DeleteCriterion(ctx context.Context, uid, id string) error {
	s.deletes.Add(1)
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.delErr != nil {
		return s.delErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.list {
		if c.ID == id {
			s.list = append(s.list[:i], s.list[i+1:]...)
			return nil
		}
	}
	return &backend.APIError{Status: 404}
}

func (s *memStore) SearchResults(ctx context.Context, uid, id, key string) (*backend.ResultPage, error) {
	if s.err != nil {
		return nil, s.err
	}
	if key == "" {
		return &backend.ResultPage{Items: []backend.Tweet{{ID: "t1"}}, NextKey: "k 2"}, nil
	}
	return &backend.ResultPage{Items: []backend.Tweet{{ID: "t2"}}}, nil
}

func twoCriteria() *memStore {
	return newMemStore(
		backend.SearchCriterion{ID: "1", Name: "A"},
		backend.SearchCriterion{ID: "2", Name: "B", ExecutedOn: "2024-01-02T15:04:05Z"},
	)
}

func TestListRowsInOrder(t *testing.T) {
	m := NewManager(twoCriteria(), dashboard.Refetch, nil)
	p := m.List(context.Background(), "alice", "")

	if p.Mode != Listing || p.Err != nil {
		t.Fatalf("page = %+v", p)
	}
	if len(p.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(p.Rows))
	}
	if p.Rows[0].Name != "A" || p.Rows[1].Name != "B" {
		t.Errorf("rows = %+v", p.Rows)
	}
	if p.Rows[0].URL != "/view/search/1" {
		t.Errorf("row URL = %q", p.Rows[0].URL)
	}
	if p.Rows[0].Executed() {
		t.Error("row A was never executed")
	}
	if p.Rows[1].ExecutedDate != "2024-01-02" || p.Rows[1].ExecutedTime != "3:04:05 PM UTC" {
		t.Errorf("row B executed = %q %q", p.Rows[1].ExecutedDate, p.Rows[1].ExecutedTime)
	}
	if p.NewURL != NewPath {
		t.Errorf("NewURL = %q", p.NewURL)
	}
}

func TestListFuzzyFilterKeepsOrder(t *testing.T) {
	store := newMemStore(
		backend.SearchCriterion{ID: "1", Name: "golang jobs"},
		backend.SearchCriterion{ID: "2", Name: "rust"},
		backend.SearchCriterion{ID: "3", Name: "go"},
	)
	p := NewManager(store, dashboard.Refetch, nil).List(context.Background(), "alice", "go")
	if len(p.Rows) != 2 || p.Rows[0].ID != "1" || p.Rows[1].ID != "3" {
		t.Errorf("rows = %+v", p.Rows)
	}
}

func TestListError(t *testing.T) {
	store := twoCriteria()
	store.err = errors.New("connection refused")
	p := NewManager(store, dashboard.Refetch, nil).List(context.Background(), "alice", "")
	if p.Err == nil || p.Message == "" || len(p.Rows) != 0 {
		t.Errorf("page = %+v", p)
	}
}

func TestSelectPopulatesForm(t *testing.T) {
	store := newMemStore(backend.SearchCriterion{
		ID: "7", Name: "go", Value: "#golang", Lang: "en",
		HasLink: true, PostCountMin: 5, FollowerRatioMax: 2.5,
	})
	p := NewManager(store, dashboard.Refetch, nil).Select(context.Background(), "alice", "7")

	if p.Mode != Editing {
		t.Fatalf("Mode = %v", p.Mode)
	}
	if p.Form.ID != "7" || p.DeleteURL() != "/view/search/7" {
		t.Errorf("form id = %q, delete = %q", p.Form.ID, p.DeleteURL())
	}
	if p.Form.Get("value") != "#golang" || p.Form.Get("post_count_min") != "5" || p.Form.Get("follower_ratio_max") != "2.5" {
		t.Errorf("values = %v", p.Form.Values)
	}
	if !p.Form.Checks["has_link"] || p.Form.Checks["include_rt"] {
		t.Errorf("checks = %v", p.Form.Checks)
	}
}

func TestSelectMissing(t *testing.T) {
	p := NewManager(twoCriteria(), dashboard.Refetch, nil).Select(context.Background(), "alice", "9")
	if p.Mode != Listing || !errors.Is(p.Err, backend.ErrNotFound) {
		t.Errorf("page = %+v", p)
	}
	if len(p.Rows) != 2 {
		t.Errorf("rows = %d, want list shown with error", len(p.Rows))
	}
}

func TestCreateAndCancel(t *testing.T) {
	m := NewManager(twoCriteria(), dashboard.Refetch, nil)
	p := m.Create()
	if p.Mode != Creating || p.Form.ID != "" || p.DeleteURL() != "" {
		t.Errorf("create page = %+v", p)
	}
	if p := m.Cancel(context.Background(), "alice"); p.Mode != Listing || len(p.Rows) != 2 {
		t.Errorf("cancel page = %+v", p)
	}
}

func TestDeleteRefetch(t *testing.T) {
	store := twoCriteria()
	m := NewManager(store, dashboard.Refetch, nil)

	p, err := m.Delete(context.Background(), "alice", "2")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if p.Mode != Listing || p.Redirect != "" {
		t.Fatalf("page = %+v", p)
	}
	for _, r := range p.Rows {
		if r.ID == "2" {
			t.Fatal("criterion 2 still listed")
		}
	}
	if len(p.Rows) != 1 || p.Flash == "" {
		t.Errorf("page = %+v", p)
	}
	if again := m.List(context.Background(), "alice", ""); len(again.Rows) != 1 {
		t.Errorf("later list has %d rows", len(again.Rows))
	}
}

func TestDeleteNavigate(t *testing.T) {
	p, err := NewManager(twoCriteria(), dashboard.Navigate, nil).Delete(context.Background(), "alice", "1")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if p.Redirect != ListPath {
		t.Errorf("Redirect = %q", p.Redirect)
	}
}

func TestDeleteAlreadyGone(t *testing.T) {
	if _, err := NewManager(twoCriteria(), dashboard.Refetch, nil).Delete(context.Background(), "alice", "9"); err != nil {
		t.Errorf("deleting a missing criterion: %v", err)
	}
}

func TestDeleteFailureKeepsEditing(t *testing.T) {
	store := twoCriteria()
	store.delErr = &backend.APIError{Status: 500, Message: "boom"}
	p, err := NewManager(store, dashboard.Refetch, nil).Delete(context.Background(), "alice", "2")
	if err == nil {
		t.Fatal("expected error")
	}
	if p.Mode != Editing || p.Form.ID != "2" || p.Err == nil || p.Message == "" {
		t.Errorf("page = %+v", p)
	}
}

func TestConcurrentDeleteSharesCall(t *testing.T) {
	store := twoCriteria()
	store.block = make(chan struct{})
	store.started = make(chan struct{}, 2)
	m := NewManager(store, dashboard.Refetch, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	run := func() {
		defer wg.Done()
		_, err := m.Delete(context.Background(), "alice", "2")
		errs <- err
	}
	wg.Add(2)
	go run()
	<-store.started
	go run()
	time.Sleep(50 * time.Millisecond)
	close(store.block)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Delete: %v", err)
		}
	}
	if n := store.deletes.Load(); n != 1 {
		t.Errorf("backend deletes = %d, want 1", n)
	}
}

func TestDeleteSurvivesFirstCallerCancel(t *testing.T) {
	store := twoCriteria()
	store.block = make(chan struct{})
	store.started = make(chan struct{}, 2)
	m := NewManager(store, dashboard.Refetch, nil)

	ctx1, cancel1 := context.WithCancel(context.Background())
	defer cancel1()

	var wg sync.WaitGroup
	var err1, err2 error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err1 = m.Delete(ctx1, "alice", "2")
	}()
	<-store.started
	go func() {
		defer wg.Done()
		_, err2 = m.Delete(context.Background(), "alice", "2")
	}()
	time.Sleep(50 * time.Millisecond)
	cancel1()
	time.Sleep(20 * time.Millisecond)
	close(store.block)
	wg.Wait()

	if err1 != nil {
		t.Errorf("cancelled caller: %v", err1)
	}
	if err2 != nil {
		t.Errorf("joined caller: %v", err2)
	}
	if n := store.deletes.Load(); n != 1 {
		t.Errorf("backend deletes = %d, want 1", n)
	}
	if _, err := store.Criterion(context.Background(), "alice", "2"); !errors.Is(err, backend.ErrNotFound) {
		t.Errorf("criterion 2 still stored: %v", err)
	}
}

func TestSaveCreate(t *testing.T) {
	store := twoCriteria()
	m := NewManager(store, dashboard.Refetch, nil)
	f := FromValues(url.Values{"name": {"new one"}, "value": {"#go"}, "include_rt": {"on"}})

	p, err := m.Save(context.Background(), "alice", f)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if p.Redirect != ListPath {
		t.Errorf("Redirect = %q", p.Redirect)
	}
	if got := m.List(context.Background(), "alice", ""); len(got.Rows) != 3 || got.Rows[2].Name != "new one" {
		t.Errorf("rows = %+v", got.Rows)
	}
}

func TestSaveInvalid(t *testing.T) {
	f := FromValues(url.Values{"id": {"1"}, "value": {"x"}, "post_count_min": {"ten"}})
	p, err := NewManager(twoCriteria(), dashboard.Refetch, nil).Save(context.Background(), "alice", f)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if p.Mode != Editing || p.Invalid["name"] == "" || p.Invalid["post_count_min"] == "" {
		t.Errorf("page = %+v", p)
	}
	if p.Form.Get("post_count_min") != "ten" {
		t.Errorf("submitted value lost: %q", p.Form.Get("post_count_min"))
	}
}

func TestResults(t *testing.T) {
	m := NewManager(twoCriteria(), dashboard.Refetch, nil)
	r := m.Results(context.Background(), "alice", "1", "")
	if len(r.Items) != 1 || r.NextURL != "/view/tweets/1?key=k+2" {
		t.Errorf("results = %+v", r)
	}
	if last := m.Results(context.Background(), "alice", "1", "k 2"); last.NextURL != "" {
		t.Errorf("last page NextURL = %q", last.NextURL)
	}
}
