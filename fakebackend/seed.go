package fakebackend

import (
	"fmt"
	"time"

	"github.com/eringen/followdash/backend"
	"github.com/eringen/followdash/format"
)

// DemoUID is the user id Seed populates when none is given.
const DemoUID = "demo"

var demoHandles = []string{
	"ada_l", "gracehopper", "linus", "kenthompson", "rob_pike",
	"dmr", "barbara_liskov", "alan_kay", "margaret_h", "donald_knuth",
	"edsger", "john_mccarthy",
}

// Seed fills the store with a deterministic two-week history for uid,
// ending on now. Running it twice on the same store is safe for the
// user, history and tweet tables; events and criteria are appended.
func Seed(s *Store, uid string, now time.Time) error {
	if uid == "" {
		uid = DemoUID
	}
	uid = normalizeUID(uid)
	now = now.UTC()

	const days = 14
	followers := int64(1200)
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		gained := int64(8 + (i*7)%11)
		lost := int64((i * 5) % 6)
		followers += gained - lost
		if err := s.SaveDailyState(uid, DailyState{
			On:           format.ShortDate(day),
			Followers:    followers,
			NewFollowers: gained,
			Unfollowers:  lost,
		}); err != nil {
			return fmt.Errorf("seed daily state: %w", err)
		}
	}

	if err := s.SaveUser(uid, backend.UserSummary{
		Username:       "followdash_demo",
		Name:           "Followdash Demo",
		ProfileImage:   "https://example.com/avatar/demo.png",
		FollowerCount:  followers,
		FollowingCount: 321,
		FaveCount:      4567,
		PostCount:      8910,
		ListedCount:    12,
		UpdatedOn:      now.Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	for d := 0; d < 3; d++ {
		day := now.AddDate(0, 0, -d)
		for i, h := range demoHandles {
			typ := backend.FollowedEventType
			if (i+d)%3 == 0 {
				typ = backend.UnfollowedEventType
			}
			at := day.Add(-time.Duration(i) * time.Minute)
			if at.Day() != day.Day() {
				at = day
			}
			if err := s.AddEvent(uid, demoUser(h, i, typ, at)); err != nil {
				return fmt.Errorf("seed event: %w", err)
			}
		}
	}
	// The same account unfollowing twice in a day shows up as
	// consecutive duplicates in the unfollower list.
	dup := demoUser(demoHandles[0], 0, backend.UnfollowedEventType, now)
	if err := s.AddEvent(uid, dup); err != nil {
		return fmt.Errorf("seed event: %w", err)
	}

	criteria := []backend.SearchCriterion{
		{Name: "Go jobs", Value: "golang hiring", Lang: "en", Latest: true, HasLink: true, FollowerCountMin: 100},
		{Name: "Echo mentions", Value: "labstack echo", Lang: "en", IncludeRT: true},
	}
	for i, c := range criteria {
		saved, err := s.SaveCriterion(uid, c, now)
		if err != nil {
			return fmt.Errorf("seed criterion: %w", err)
		}
		for n := 0; n < 12+i*3; n++ {
			if err := s.AddTweet(uid, demoTweet(saved.ID, i, n, now)); err != nil {
				return fmt.Errorf("seed tweet: %w", err)
			}
		}
		if err := s.MarkExecuted(uid, saved.ID, now.Add(-time.Hour), int64(12+i*3)); err != nil {
			return fmt.Errorf("seed criterion: %w", err)
		}
	}
	return nil
}

func demoUser(handle string, i int, eventType string, at time.Time) backend.UserRecord {
	return backend.UserRecord{
		ID:             fmt.Sprintf("%d", 1000+i),
		Username:       handle,
		Name:           handle,
		Description:    fmt.Sprintf("Writes about systems. More at https://example.com/%s", handle),
		Location:       "Earth",
		ProfileImage:   "https://example.com/avatar/" + handle + ".png",
		FollowerCount:  int64(50 + i*137),
		FollowingCount: int64(20 + i*41),
		PostCount:      int64(300 + i*911),
		FaveCount:      int64(i * 77),
		EventAt:        at.Format(time.RFC3339),
		EventType:      eventType,
		CreatedAt:      at.AddDate(-3, 0, 0).Format(time.RFC3339),
		Lang:           "en",
		Timezone:       "UTC",
	}
}

func demoTweet(criteriaID string, c, n int, now time.Time) backend.Tweet {
	h := demoHandles[n%len(demoHandles)]
	return backend.Tweet{
		ID:            fmt.Sprintf("%d%06d", c+1, n),
		CriteriaID:    criteriaID,
		CreatedAt:     now.Add(-time.Duration(n) * time.Hour).Format(time.RFC3339),
		Text:          fmt.Sprintf("Result %d from @%s, details at https://example.com/post/%d.", n, h, n),
		FavoriteCount: int64(n * 3),
		ReplyCount:    int64(n % 4),
		RetweetCount:  int64(n % 7),
		IsRT:          n%5 == 4,
		Author:        backend.UserRecord{Username: h, Name: h, ProfileImage: "https://example.com/avatar/" + h + ".png"},
	}
}
