package followdash

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/eringen/followdash/backend"
	"github.com/eringen/followdash/fakebackend"
)

var testNow = time.Date(2024, 3, 10, 15, 4, 5, 0, time.UTC)

type testEnv struct {
	app    *App
	srv    *httptest.Server
	client *http.Client
}

// setupApp serves an App against a seeded fake backend. The client keeps
// cookies, is signed in as the demo user and does not follow redirects.
func setupApp(t *testing.T, cfg SiteConfig) *testEnv {
	t.Helper()
	store, err := fakebackend.NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := fakebackend.Seed(store, fakebackend.DemoUID, testNow); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	be := httptest.NewServer(fakebackend.NewServer(store, fakebackend.WithClock(func() time.Time { return testNow })).Echo)
	t.Cleanup(be.Close)

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "test-session-secret-0123456789"
	}
	cfg.BackendURL = be.URL
	app := New(cfg, DefaultViews())
	if err := app.Setup(); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	t.Cleanup(func() { app.Close() })

	srv := httptest.NewServer(app.Echo)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	u, _ := url.Parse(srv.URL)
	jar.SetCookies(u, []*http.Cookie{{Name: backend.UserCookieName, Value: fakebackend.DemoUID, Path: "/"}})

	return &testEnv{
		app: app,
		srv: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (e *testEnv) do(t *testing.T, method, path string, form url.Values, header map[string]string) *http.Response {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, e.srv.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, *goquery.Document) {
	t.Helper()
	resp := e.do(t, http.MethodGet, path, nil, nil)
	return resp, readDoc(t, resp)
}

func readDoc(t *testing.T, resp *http.Response) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func csrfFrom(t *testing.T, doc *goquery.Document) string {
	t.Helper()
	token, ok := doc.Find(`input[name="_csrf"]`).First().Attr("value")
	if !ok || token == "" {
		t.Fatal("page has no csrf token")
	}
	return token
}

func TestHealth(t *testing.T) {
	e := setupApp(t, SiteConfig{})
	resp := e.do(t, http.MethodGet, "/_health", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestRootRedirectsToBoard(t *testing.T) {
	e := setupApp(t, SiteConfig{})
	resp := e.do(t, http.MethodGet, "/", nil, nil)
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != boardPath {
		t.Errorf("GET / = %d %q, want 302 to %s", resp.StatusCode, resp.Header.Get("Location"), boardPath)
	}
}

func TestSetupRequiresSessionSecret(t *testing.T) {
	a := New(SiteConfig{}, DefaultViews())
	if err := a.Setup(); err == nil {
		t.Error("Setup without SessionSecret should fail")
	}
}

func TestBoardLoaded(t *testing.T) {
	e := setupApp(t, SiteConfig{})
	resp, doc := e.get(t, "/view/board")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", cc)
	}
	if state, _ := doc.Find("#board").Attr("data-state"); state != "loaded" {
		t.Fatalf("data-state = %q, want loaded", state)
	}
	if got := doc.Find("#follower-count").Text(); !strings.Contains(got, ",") {
		t.Errorf("follower count = %q, want a thousands separator", got)
	}
	if n := doc.Find("figure.chart img[ismap]").Length(); n != 2 {
		t.Errorf("found %d drill-down charts, want 2", n)
	}
	if n := doc.Find("#unfollowers li.user-card").Length(); n == 0 {
		t.Error("unfollower list is empty")
	}
}

func TestBoardWithoutUserShowsFailure(t *testing.T) {
	e := setupApp(t, SiteConfig{})
	e.client.Jar, _ = cookiejar.New(nil)

	_, doc := e.get(t, "/view/board")
	if state, _ := doc.Find("#board").Attr("data-state"); state != "failed" {
		t.Fatalf("data-state = %q, want failed", state)
	}
	if msg := doc.Find("#failed .banner").Text(); !strings.Contains(msg, "Sign in again") {
		t.Errorf("failure message = %q", msg)
	}
	if _, hidden := doc.Find("#loaded").Attr("hidden"); !hidden {
		t.Error("loaded region should be hidden")
	}
}

func TestBoardRefreshLimit(t *testing.T) {
	e := setupApp(t, SiteConfig{RefreshLimit: 1})
	if resp := e.do(t, http.MethodGet, "/view/board", nil, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("first refresh status = %d", resp.StatusCode)
	}
	if resp := e.do(t, http.MethodGet, "/view/board", nil, nil); resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("second refresh status = %d, want 429", resp.StatusCode)
	}
}

func TestChartSVG(t *testing.T) {
	e := setupApp(t, SiteConfig{})
	resp := e.do(t, http.MethodGet, "/view/chart/followers.svg", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "<svg") || !strings.Contains(string(body), "2024-03-03") {
		t.Error("chart should be an svg labelled with the first date")
	}

	if resp := e.do(t, http.MethodGet, "/view/chart/nope.svg", nil, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown chart status = %d, want 404", resp.StatusCode)
	}
}

func TestChartClick(t *testing.T) {
	e := setupApp(t, SiteConfig{})
	tests := []struct {
		query string
		want  string
	}{
		{"30,100", "/view/day/2024-03-03"},
		{"5,100", boardPath},
		{"30,255", boardPath},
		{"garbage", boardPath},
		{"", boardPath},
	}
	for _, tt := range tests {
		resp := e.do(t, http.MethodGet, "/view/chart/followers/click?"+tt.query, nil, nil)
		if resp.StatusCode != http.StatusSeeOther {
			t.Errorf("click %q status = %d, want 303", tt.query, resp.StatusCode)
			continue
		}
		if got := resp.Header.Get("Location"); got != tt.want {
			t.Errorf("click %q -> %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestChartClickWithoutDrilldown(t *testing.T) {
	e := setupApp(t, SiteConfig{RenderVariant: 1})
	resp := e.do(t, http.MethodGet, "/view/chart/followers/click?30,100", nil, nil)
	if got := resp.Header.Get("Location"); got != boardPath {
		t.Errorf("click without drill-down -> %q, want %s", got, boardPath)
	}
}

func TestDayPage(t *testing.T) {
	e := setupApp(t, SiteConfig{})
	resp, doc := e.get(t, "/view/day/2024-03-09")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if n := doc.Find("#day li.user-card").Length(); n == 0 {
		t.Error("day page lists no users")
	}

	if resp := e.do(t, http.MethodGet, "/view/day/yesterday", nil, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("bad date status = %d, want 404", resp.StatusCode)
	}
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	e := setupApp(t, SiteConfig{})
	resp, doc := e.get(t, "/nowhere")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if doc.Find(".error-page h1").Text() != "Page not found" {
		t.Error("404 page not rendered")
	}
}

func TestSearchList(t *testing.T) {
	e := setupApp(t, SiteConfig{})
	_, doc := e.get(t, "/view/search")

	items := doc.Find("#criteria-list > li")
	if items.Length() != 3 {
		t.Fatalf("list has %d items, want 2 criteria and the new affordance", items.Length())
	}
	if got := items.Eq(0).Find("a.select").Text(); got != "Go jobs" {
		t.Errorf("first criterion = %q, want Go jobs", got)
	}
	if !items.Eq(2).HasClass("new") {
		t.Error("last item should be the new criterion link")
	}

	_, filtered := e.get(t, "/view/search?q=mentions")
	if n := filtered.Find("#criteria-list li.criterion[data-id]").Length(); n != 1 {
		t.Errorf("filtered list has %d criteria, want 1", n)
	}
}

func TestSearchCreate(t *testing.T) {
	e := setupApp(t, SiteConfig{})
	_, doc := e.get(t, "/view/search/new")
	if mode, _ := doc.Find("#criteria").Attr("data-mode"); mode != "creating" {
		t.Fatalf("data-mode = %q, want creating", mode)
	}
	if doc.Find("#delete-form").Length() != 0 {
		t.Error("create form should have no delete control")
	}

	form := url.Values{
		"_csrf":          {csrfFrom(t, doc)},
		"name":           {"Rust news"},
		"value":          {"rustlang"},
		"lang":           {"en"},
		"has_link":       {"on"},
		"post_count_min": {"10"},
	}
	resp := e.do(t, http.MethodPost, "/view/search", form, nil)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/view/search" {
		t.Fatalf("save = %d %q, want 303 to /view/search", resp.StatusCode, resp.Header.Get("Location"))
	}

	_, list := e.get(t, "/view/search")
	if !strings.Contains(list.Find("#criteria-list").Text(), "Rust news") {
		t.Error("saved criterion missing from the list")
	}
	if flash := list.Find(".banner-info").Text(); !strings.Contains(flash, "Saved Rust news.") {
		t.Errorf("flash = %q", flash)
	}

	// The flash is shown once.
	_, again := e.get(t, "/view/search")
	if again.Find(".banner-info").Length() != 0 {
		t.Error("flash should not repeat")
	}
}

func TestSearchSaveInvalid(t *testing.T) {
	e := setupApp(t, SiteConfig{})
	_, doc := e.get(t, "/view/search/new")
	form := url.Values{"_csrf": {csrfFrom(t, doc)}, "name": {""}, "value": {"x"}}

	resp := e.do(t, http.MethodPost, "/view/search", form, nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	page := readDoc(t, resp)
	if _, ok := page.Find(`#field-name`).Attr("aria-invalid"); !ok {
		t.Error("name field should be marked invalid")
	}
}

func TestSearchPostRequiresCSRF(t *testing.T) {
	e := setupApp(t, SiteConfig{})
	resp := e.do(t, http.MethodPost, "/view/search", url.Values{"name": {"x"}, "value": {"y"}}, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}

func secondCriterion(t *testing.T, e *testEnv) (string, *goquery.Document) {
	t.Helper()
	_, list := e.get(t, "/view/search")
	id, ok := list.Find("#criteria-list li.criterion[data-id]").Eq(1).Attr("data-id")
	if !ok {
		t.Fatal("no second criterion")
	}
	_, edit := e.get(t, "/view/search/"+id)
	if mode, _ := edit.Find("#criteria").Attr("data-mode"); mode != "editing" {
		t.Fatalf("data-mode = %q, want editing", mode)
	}
	if got, _ := edit.Find("#delete-form button").Attr("data-id"); got != id {
		t.Fatalf("delete control carries %q, want %q", got, id)
	}
	return id, edit
}

// submitDelete submits the delete form the way a browser would: a POST
// to its action carrying every hidden input.
func submitDelete(t *testing.T, e *testEnv, edit *goquery.Document) *http.Response {
	t.Helper()
	form := edit.Find("#delete-form")
	action, ok := form.Attr("action")
	if !ok {
		t.Fatal("delete form has no action")
	}
	values := url.Values{}
	form.Find(`input[type="hidden"]`).Each(func(_ int, in *goquery.Selection) {
		values.Add(in.AttrOr("name", ""), in.AttrOr("value", ""))
	})
	return e.do(t, http.MethodPost, action, values, nil)
}

func TestSearchDeleteRefetches(t *testing.T) {
	e := setupApp(t, SiteConfig{})
	id, edit := secondCriterion(t, e)

	resp := submitDelete(t, e, edit)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	doc := readDoc(t, resp)
	if mode, _ := doc.Find("#criteria").Attr("data-mode"); mode != "listing" {
		t.Errorf("data-mode = %q, want listing", mode)
	}
	if doc.Find(`li.criterion[data-id="`+id+`"]`).Length() != 0 {
		t.Error("deleted criterion is still listed")
	}
	if n := doc.Find("#criteria-list li.criterion[data-id]").Length(); n != 1 {
		t.Errorf("%d criteria left, want 1", n)
	}
}

func TestSearchDeleteNavigates(t *testing.T) {
	e := setupApp(t, SiteConfig{RenderVariant: 1})
	id, edit := secondCriterion(t, e)

	resp := submitDelete(t, e, edit)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/view/search" {
		t.Fatalf("delete = %d %q, want 303 to /view/search", resp.StatusCode, resp.Header.Get("Location"))
	}
	_, doc := e.get(t, "/view/search")
	if doc.Find(`li.criterion[data-id="`+id+`"]`).Length() != 0 {
		t.Error("deleted criterion is still listed")
	}
	if flash := doc.Find(".banner-info").Text(); flash != "Criterion deleted." {
		t.Errorf("flash = %q", flash)
	}
}

func TestSearchDeleteMethod(t *testing.T) {
	e := setupApp(t, SiteConfig{RenderVariant: 1})
	id, edit := secondCriterion(t, e)

	resp := e.do(t, http.MethodDelete, "/view/search/"+id, nil, map[string]string{
		"X-CSRF-Token": csrfFrom(t, edit),
	})
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/view/search" {
		t.Errorf("delete = %d %q, want 303 to /view/search", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestSearchEditMissing(t *testing.T) {
	e := setupApp(t, SiteConfig{})
	resp, doc := e.get(t, "/view/search/missing")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if mode, _ := doc.Find("#criteria").Attr("data-mode"); mode != "listing" {
		t.Errorf("data-mode = %q, want listing", mode)
	}
}

func TestTweets(t *testing.T) {
	e := setupApp(t, SiteConfig{})
	_, list := e.get(t, "/view/search")
	id, _ := list.Find("#criteria-list li.criterion[data-id]").First().Attr("data-id")

	_, doc := e.get(t, "/view/tweets/"+id)
	if n := doc.Find("ol.tweets li.tweet").Length(); n != fakebackend.DefaultPageSize {
		t.Errorf("first page has %d results, want %d", n, fakebackend.DefaultPageSize)
	}
	if doc.Find("li.tweet a[rel~=nofollow]").Length() == 0 {
		t.Error("links in result text should be clickable")
	}
	next, ok := doc.Find("a.next").Attr("href")
	if !ok {
		t.Fatal("first page should link to the next one")
	}
	_, page2 := e.get(t, next)
	if n := page2.Find("ol.tweets li.tweet").Length(); n != 2 {
		t.Errorf("second page has %d results, want 2", n)
	}

	resp, _ := e.get(t, "/view/tweets/missing")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing criterion status = %d, want 404", resp.StatusCode)
	}
}

func TestLogoutClearsUserCookie(t *testing.T) {
	e := setupApp(t, SiteConfig{})
	resp := e.do(t, http.MethodGet, "/auth/logout", nil, nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	cleared := false
	for _, c := range resp.Cookies() {
		if c.Name == backend.UserCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout should expire the uid cookie")
	}
}

func TestEmbeddedStylesheet(t *testing.T) {
	e := setupApp(t, SiteConfig{})
	resp := e.do(t, http.MethodGet, "/public/dashboard.css", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); !strings.HasPrefix(cc, "public") {
		t.Errorf("Cache-Control = %q", cc)
	}
}

func TestParseImageMapPoint(t *testing.T) {
	tests := []struct {
		raw  string
		x, y int
		ok   bool
	}{
		{"10,20", 10, 20, true},
		{"0,0", 0, 0, true},
		{"10", 0, 0, false},
		{"-1,5", 0, 0, false},
		{"a,b", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		x, y, ok := parseImageMapPoint(tt.raw)
		if x != tt.x || y != tt.y || ok != tt.ok {
			t.Errorf("parseImageMapPoint(%q) = %d, %d, %v; want %d, %d, %v", tt.raw, x, y, ok, tt.x, tt.y, tt.ok)
		}
	}
}

func TestTweetsFeed(t *testing.T) {
	e := setupApp(t, SiteConfig{URL: "https://dash.example.com"})
	_, list := e.get(t, "/view/search")
	id, _ := list.Find("#criteria-list li.criterion[data-id]").First().Attr("data-id")

	resp := e.do(t, http.MethodGet, "/view/tweets/"+id+"/feed.xml", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	feed := string(body)
	if got := strings.Count(feed, "<item>"); got != fakebackend.DefaultPageSize {
		t.Errorf("feed has %d items, want %d", got, fakebackend.DefaultPageSize)
	}
	if !strings.Contains(feed, "<link>https://dash.example.com/view/tweets/"+id+"</link>") {
		t.Error("channel link should use the configured site URL")
	}
	if !strings.Contains(feed, "/status/") {
		t.Error("items should link to the post")
	}

	if resp := e.do(t, http.MethodGet, "/view/tweets/missing/feed.xml", nil, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing criterion status = %d, want 404", resp.StatusCode)
	}
}

func TestFeedTitle(t *testing.T) {
	long := strings.Repeat("word ", 40)
	tests := []struct {
		name string
		in   backend.Tweet
		want string
	}{
		{"author", backend.Tweet{Text: "hello\n  world", Author: backend.UserRecord{Username: "ada"}}, "@ada: hello world"},
		{"no author", backend.Tweet{Text: "hi"}, "hi"},
		{"truncated", backend.Tweet{Text: long}, strings.Repeat("word ", 16)[:79] + "…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := feedTitle(tt.in); got != tt.want {
				t.Errorf("feedTitle = %q, want %q", got, tt.want)
			}
		})
	}
}
