// Package backend is the typed client for the follower-tracking backend's
// JSON endpoints, plus the payload types those endpoints return.
package backend

// Event types attached to user records in day views.
const (
	FollowedEventType   = "followed"
	UnfollowedEventType = "unfollowed"
)

// ViewData is the aggregate payload behind the dashboard.
type ViewData struct {
	User                  *UserSummary `json:"user"`
	Meta                  *QueryMeta   `json:"meta"`
	RecentFollowerCount   int64        `json:"recent_follower_count"`
	RecentUnfollowerCount int64        `json:"recent_unfollower_count"`
	FollowerCountSeries   Series       `json:"follower_count_series"`
	FollowedEventSeries   Series       `json:"followed_event_series"`
	UnfollowedEventSeries Series       `json:"unfollowed_event_series"`
	RecentFollowers       []UserRecord `json:"recent_follower_list"`
	RecentUnfollowers     []UserRecord `json:"recent_unfollower_list"`
}

// UserSummary describes the account the dashboard reports on.
type UserSummary struct {
	Username       string `json:"username"`
	Name           string `json:"name"`
	ProfileImage   string `json:"profile_image"`
	FollowerCount  int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
	FaveCount      int64  `json:"fave_count"`
	PostCount      int64  `json:"post_count"`
	ListedCount    int64  `json:"listed_count"`
	UpdatedOn      string `json:"updated_on"`
}

// QueryMeta is the reporting window the backend used for ViewData.
type QueryMeta struct {
	RecentUserPerDayLimit int `json:"recent_users_per_day_limit"`
	NumDaysPeriod         int `json:"num_days_period"`
}

// UserRecord is a snapshot of a user who followed or unfollowed the
// account. Timestamps are kept as the backend sent them (RFC 3339 or
// YYYY-MM-DD) and formatted at render time.
type UserRecord struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Location       string `json:"location"`
	ProfileImage   string `json:"profile_image"`
	FollowerCount  int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
	PostCount      int64  `json:"post_count"`
	FaveCount      int64  `json:"fave_count"`
	EventAt        string `json:"event_at"`
	EventType      string `json:"event_type,omitempty"`
	CreatedAt      string `json:"created_at"`
	Lang           string `json:"lang"`
	Timezone       string `json:"time_zone"`
}

// SearchCriterion is a saved search filter definition.
type SearchCriterion struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Value             string  `json:"value"`
	Lang              string  `json:"lang"`
	Latest            bool    `json:"latest"`
	HasLink           bool    `json:"has_link"`
	IncludeRT         bool    `json:"include_rt"`
	PostCountMin      int     `json:"post_count_min"`
	PostCountMax      int     `json:"post_count_max"`
	FaveCountMin      int     `json:"fave_count_min"`
	FaveCountMax      int     `json:"fave_count_max"`
	FollowingCountMin int     `json:"following_count_min"`
	FollowingCountMax int     `json:"following_count_max"`
	FollowerCountMin  int     `json:"follower_count_min"`
	FollowerCountMax  int     `json:"follower_count_max"`
	FollowerRatioMin  float64 `json:"follower_ratio_min"`
	FollowerRatioMax  float64 `json:"follower_ratio_max"`
	ExecutedOn        string  `json:"executed_on,omitempty"`
	SinceID           int64   `json:"since_id"`
	UpdatedOn         string  `json:"updated_on,omitempty"`
}

// DayData lists the follow events recorded for a single day.
type DayData struct {
	Date        string       `json:"date"`
	Followers   []UserRecord `json:"followers"`
	Unfollowers []UserRecord `json:"unfollowers"`
}

// Tweet is a single search result.
type Tweet struct {
	ID            string     `json:"id"`
	CriteriaID    string     `json:"criteria_id"`
	CreatedAt     string     `json:"created_at"`
	Text          string     `json:"text"`
	FavoriteCount int64      `json:"favorite_count"`
	ReplyCount    int64      `json:"reply_count"`
	RetweetCount  int64      `json:"retweet_count"`
	IsRT          bool       `json:"is_rt"`
	Author        UserRecord `json:"author"`
	Key           string     `json:"key"`
}

// ResultPage is one page of search results. NextKey is empty on the last page.
type ResultPage struct {
	Items   []Tweet `json:"items"`
	NextKey string  `json:"next_key,omitempty"`
}
