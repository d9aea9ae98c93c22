package fakebackend

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/eringen/followdash/backend"
	"github.com/eringen/followdash/format"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = sql.ErrNoRows

// DefaultPageSize is the number of search results per page.
const DefaultPageSize = 10

// Store wraps the SQLite database holding fixture users, follower history,
// search criteria and search results.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path and ensures the
// schema. Use ":memory:" for a throwaway database.
func NewStore(path string) (*Store, error) {
	memory := path == ":memory:"
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if memory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		if _, err := db.Exec(`
			PRAGMA journal_mode=WAL;
			PRAGMA busy_timeout=5000;
			PRAGMA synchronous=NORMAL;
		`); err != nil {
			db.Close()
			return nil, err
		}
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    uid TEXT PRIMARY KEY,
    username TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    profile_image TEXT NOT NULL DEFAULT '',
    followers_count INTEGER NOT NULL DEFAULT 0,
    following_count INTEGER NOT NULL DEFAULT 0,
    fave_count INTEGER NOT NULL DEFAULT 0,
    post_count INTEGER NOT NULL DEFAULT 0,
    listed_count INTEGER NOT NULL DEFAULT 0,
    updated_on TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS daily_states (
    uid TEXT NOT NULL,
    state_on TEXT NOT NULL,
    follower_count INTEGER NOT NULL,
    new_follower_count INTEGER NOT NULL,
    unfollower_count INTEGER NOT NULL,
    PRIMARY KEY (uid, state_on)
);
CREATE TABLE IF NOT EXISTS events (
    uid TEXT NOT NULL,
    event_on TEXT NOT NULL,
    event_type TEXT NOT NULL,
    id TEXT NOT NULL,
    username TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT '',
    profile_image TEXT NOT NULL DEFAULT '',
    followers_count INTEGER NOT NULL DEFAULT 0,
    following_count INTEGER NOT NULL DEFAULT 0,
    post_count INTEGER NOT NULL DEFAULT 0,
    fave_count INTEGER NOT NULL DEFAULT 0,
    event_at TEXT NOT NULL,
    created_at TEXT NOT NULL DEFAULT '',
    lang TEXT NOT NULL DEFAULT '',
    time_zone TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS events_by_day ON events (uid, event_on, event_type);
CREATE TABLE IF NOT EXISTS criteria (
    id TEXT PRIMARY KEY,
    uid TEXT NOT NULL,
    name TEXT NOT NULL,
    value TEXT NOT NULL,
    lang TEXT NOT NULL DEFAULT '',
    latest INTEGER NOT NULL DEFAULT 0,
    has_link INTEGER NOT NULL DEFAULT 0,
    include_rt INTEGER NOT NULL DEFAULT 0,
    post_count_min INTEGER NOT NULL DEFAULT 0,
    post_count_max INTEGER NOT NULL DEFAULT 0,
    fave_count_min INTEGER NOT NULL DEFAULT 0,
    fave_count_max INTEGER NOT NULL DEFAULT 0,
    following_count_min INTEGER NOT NULL DEFAULT 0,
    following_count_max INTEGER NOT NULL DEFAULT 0,
    follower_count_min INTEGER NOT NULL DEFAULT 0,
    follower_count_max INTEGER NOT NULL DEFAULT 0,
    follower_ratio_min REAL NOT NULL DEFAULT 0,
    follower_ratio_max REAL NOT NULL DEFAULT 0,
    executed_on TEXT NOT NULL DEFAULT '',
    since_id INTEGER NOT NULL DEFAULT 0,
    updated_on TEXT NOT NULL DEFAULT '',
    seq INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS tweets (
    id TEXT PRIMARY KEY,
    uid TEXT NOT NULL,
    criteria_id TEXT NOT NULL,
    created_at TEXT NOT NULL,
    text TEXT NOT NULL,
    favorite_count INTEGER NOT NULL DEFAULT 0,
    reply_count INTEGER NOT NULL DEFAULT 0,
    retweet_count INTEGER NOT NULL DEFAULT 0,
    is_rt INTEGER NOT NULL DEFAULT 0,
    author_username TEXT NOT NULL,
    author_name TEXT NOT NULL DEFAULT '',
    author_image TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS tweets_by_criteria ON tweets (uid, criteria_id, id);
`)
	return err
}

// SaveUser upserts the account summary for uid.
func (s *Store) SaveUser(uid string, u backend.UserSummary) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO users (uid, username, name, profile_image, followers_count, following_count, fave_count, post_count, listed_count, updated_on) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uid, u.Username, u.Name, u.ProfileImage, u.FollowerCount, u.FollowingCount, u.FaveCount, u.PostCount, u.ListedCount, u.UpdatedOn)
	return err
}

// User returns the account summary for uid.
func (s *Store) User(uid string) (backend.UserSummary, error) {
	var u backend.UserSummary
	err := s.db.QueryRow(`SELECT username, name, profile_image, followers_count, following_count, fave_count, post_count, listed_count, updated_on FROM users WHERE uid = ?`, uid).
		Scan(&u.Username, &u.Name, &u.ProfileImage, &u.FollowerCount, &u.FollowingCount, &u.FaveCount, &u.PostCount, &u.ListedCount, &u.UpdatedOn)
	return u, err
}

// DailyState is one day of follower history.
type DailyState struct {
	On           string
	Followers    int64
	NewFollowers int64
	Unfollowers  int64
}

// SaveDailyState upserts one day of history for uid.
func (s *Store) SaveDailyState(uid string, d DailyState) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO daily_states (uid, state_on, follower_count, new_follower_count, unfollower_count) VALUES (?, ?, ?, ?, ?)`,
		uid, d.On, d.Followers, d.NewFollowers, d.Unfollowers)
	return err
}

// DailyStatesSince returns history on or after since, oldest first.
func (s *Store) DailyStatesSince(uid, since string) ([]DailyState, error) {
	rows, err := s.db.Query(`SELECT state_on, follower_count, new_follower_count, unfollower_count FROM daily_states WHERE uid = ? AND state_on >= ? ORDER BY state_on`, uid, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailyState
	for rows.Next() {
		var d DailyState
		if err := rows.Scan(&d.On, &d.Followers, &d.NewFollowers, &d.Unfollowers); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// AddEvent records that u followed or unfollowed uid. EventAt and
// EventType must be set.
func (s *Store) AddEvent(uid string, u backend.UserRecord) error {
	on := format.ToShortDate(u.EventAt)
	if _, err := time.Parse(format.ISODate, on); err != nil {
		return errors.New("fakebackend: event_at must be a timestamp")
	}
	_, err := s.db.Exec(`INSERT INTO events (uid, event_on, event_type, id, username, name, description, location, profile_image, followers_count, following_count, post_count, fave_count, event_at, created_at, lang, time_zone) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uid, on, u.EventType, u.ID, u.Username, u.Name, u.Description, u.Location, u.ProfileImage,
		u.FollowerCount, u.FollowingCount, u.PostCount, u.FaveCount, u.EventAt, u.CreatedAt, u.Lang, u.Timezone)
	return err
}

// EventsOn returns the events of one type recorded on day (YYYY-MM-DD),
// sorted by username. limit <= 0 means no limit.
func (s *Store) EventsOn(uid, day, eventType string, limit int) ([]backend.UserRecord, error) {
	q := `SELECT id, username, name, description, location, profile_image, followers_count, following_count, post_count, fave_count, event_at, event_type, created_at, lang, time_zone FROM events WHERE uid = ? AND event_on = ? AND event_type = ? ORDER BY lower(username), event_at DESC`
	args := []any{uid, day, eventType}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]backend.UserRecord, 0)
	for rows.Next() {
		var u backend.UserRecord
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.Description, &u.Location, &u.ProfileImage,
			&u.FollowerCount, &u.FollowingCount, &u.PostCount, &u.FaveCount, &u.EventAt, &u.EventType,
			&u.CreatedAt, &u.Lang, &u.Timezone); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ListCriteria returns uid's criteria in creation order.
func (s *Store) ListCriteria(uid string) ([]backend.SearchCriterion, error) {
	rows, err := s.db.Query(`SELECT `+criterionColumns+` FROM criteria WHERE uid = ? ORDER BY seq`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]backend.SearchCriterion, 0)
	for rows.Next() {
		c, err := scanCriterion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCriterion returns one of uid's criteria.
func (s *Store) GetCriterion(uid, id string) (backend.SearchCriterion, error) {
	return scanCriterion(s.db.QueryRow(`SELECT `+criterionColumns+` FROM criteria WHERE uid = ? AND id = ?`, uid, id))
}

// SaveCriterion inserts c when its id is empty (assigning a new one) and
// updates it otherwise. The execution watermark of an existing criterion
// is kept.
func (s *Store) SaveCriterion(uid string, c backend.SearchCriterion, now time.Time) (backend.SearchCriterion, error) {
	c.UpdatedOn = now.UTC().Format(time.RFC3339)
	if c.ID == "" {
		c.ID = uuid.NewString()
		_, err := s.db.Exec(`INSERT INTO criteria (id, uid, name, value, lang, latest, has_link, include_rt, post_count_min, post_count_max, fave_count_min, fave_count_max, following_count_min, following_count_max, follower_count_min, follower_count_max, follower_ratio_min, follower_ratio_max, executed_on, since_id, updated_on, seq)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM criteria))`,
			c.ID, uid, c.Name, c.Value, c.Lang, boolInt(c.Latest), boolInt(c.HasLink), boolInt(c.IncludeRT),
			c.PostCountMin, c.PostCountMax, c.FaveCountMin, c.FaveCountMax, c.FollowingCountMin, c.FollowingCountMax,
			c.FollowerCountMin, c.FollowerCountMax, c.FollowerRatioMin, c.FollowerRatioMax, c.ExecutedOn, c.SinceID, c.UpdatedOn)
		return c, err
	}
	res, err := s.db.Exec(`UPDATE criteria SET name = ?, value = ?, lang = ?, latest = ?, has_link = ?, include_rt = ?, post_count_min = ?, post_count_max = ?, fave_count_min = ?, fave_count_max = ?, following_count_min = ?, following_count_max = ?, follower_count_min = ?, follower_count_max = ?, follower_ratio_min = ?, follower_ratio_max = ?, updated_on = ? WHERE uid = ? AND id = ?`,
		c.Name, c.Value, c.Lang, boolInt(c.Latest), boolInt(c.HasLink), boolInt(c.IncludeRT),
		c.PostCountMin, c.PostCountMax, c.FaveCountMin, c.FaveCountMax, c.FollowingCountMin, c.FollowingCountMax,
		c.FollowerCountMin, c.FollowerCountMax, c.FollowerRatioMin, c.FollowerRatioMax, c.UpdatedOn, uid, c.ID)
	if err != nil {
		return c, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return c, ErrNotFound
	}
	return s.GetCriterion(uid, c.ID)
}

// MarkExecuted records a search run for criterion id.
func (s *Store) MarkExecuted(uid, id string, at time.Time, sinceID int64) error {
	_, err := s.db.Exec(`UPDATE criteria SET executed_on = ?, since_id = ? WHERE uid = ? AND id = ?`,
		at.UTC().Format(time.RFC3339), sinceID, uid, id)
	return err
}

// DeleteCriterion removes criterion id and its results. It returns
// ErrNotFound when there was nothing to delete.
func (s *Store) DeleteCriterion(uid, id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM criteria WHERE uid = ? AND id = ?`, uid, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec(`DELETE FROM tweets WHERE uid = ? AND criteria_id = ?`, uid, id); err != nil {
		return err
	}
	return tx.Commit()
}

// AddTweet stores a search result.
func (s *Store) AddTweet(uid string, t backend.Tweet) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO tweets (id, uid, criteria_id, created_at, text, favorite_count, reply_count, retweet_count, is_rt, author_username, author_name, author_image) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, uid, t.CriteriaID, t.CreatedAt, t.Text, t.FavoriteCount, t.ReplyCount, t.RetweetCount, boolInt(t.IsRT),
		t.Author.Username, t.Author.Name, t.Author.ProfileImage)
	return err
}

// Tweets returns up to limit results for criterion id, newest id first,
// starting after key. The returned key is empty on the last page.
func (s *Store) Tweets(uid, criteriaID, key string, limit int) ([]backend.Tweet, string, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	q := `SELECT id, criteria_id, created_at, text, favorite_count, reply_count, retweet_count, is_rt, author_username, author_name, author_image FROM tweets WHERE uid = ? AND criteria_id = ?`
	args := []any{uid, criteriaID}
	if key != "" {
		q += ` AND id < ?`
		args = append(args, key)
	}
	q += ` ORDER BY id DESC LIMIT ?`
	// One extra row tells us whether another page exists.
	args = append(args, limit+1)

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	out := make([]backend.Tweet, 0, limit)
	for rows.Next() {
		var t backend.Tweet
		var rt int
		if err := rows.Scan(&t.ID, &t.CriteriaID, &t.CreatedAt, &t.Text, &t.FavoriteCount, &t.ReplyCount, &t.RetweetCount, &rt,
			&t.Author.Username, &t.Author.Name, &t.Author.ProfileImage); err != nil {
			return nil, "", err
		}
		t.IsRT = rt == 1
		t.Key = t.ID
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	next := ""
	if len(out) > limit {
		out = out[:limit]
		next = out[limit-1].Key
	}
	return out, next, nil
}

const criterionColumns = `id, name, value, lang, latest, has_link, include_rt, post_count_min, post_count_max, fave_count_min, fave_count_max, following_count_min, following_count_max, follower_count_min, follower_count_max, follower_ratio_min, follower_ratio_max, executed_on, since_id, updated_on`

type scanner interface {
	Scan(dest ...any) error
}

func scanCriterion(row scanner) (backend.SearchCriterion, error) {
	var c backend.SearchCriterion
	var latest, hasLink, includeRT int
	err := row.Scan(&c.ID, &c.Name, &c.Value, &c.Lang, &latest, &hasLink, &includeRT,
		&c.PostCountMin, &c.PostCountMax, &c.FaveCountMin, &c.FaveCountMax,
		&c.FollowingCountMin, &c.FollowingCountMax, &c.FollowerCountMin, &c.FollowerCountMax,
		&c.FollowerRatioMin, &c.FollowerRatioMax, &c.ExecutedOn, &c.SinceID, &c.UpdatedOn)
	if err != nil {
		return c, err
	}
	c.Latest = latest == 1
	c.HasLink = hasLink == 1
	c.IncludeRT = includeRT == 1
	return c, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// normalizeUID trims the cookie value the way user ids are stored.
func normalizeUID(uid string) string {
	return strings.ToLower(strings.TrimSpace(uid))
}
