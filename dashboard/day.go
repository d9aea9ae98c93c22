package dashboard

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/eringen/followdash/backend"
	"github.com/eringen/followdash/format"
)

// ErrInvalidDate is returned by Day for a date that is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("dashboard: invalid date")

// DayView lists the follow events of a single day.
type DayView struct {
	State       State
	Err         error
	Message     string
	Options     RenderOptions
	Date        string
	Followers   []backend.UserRecord
	Unfollowers []backend.UserRecord
}

// Day loads the drill-down view for isoDate. Only a malformed date is
// returned as an error; backend failures land in the view's Failed state.
func (c *Controller) Day(ctx context.Context, uid, isoDate string) (*DayView, error) {
	if _, err := time.Parse(format.ISODate, isoDate); err != nil {
		return nil, ErrInvalidDate
	}
	v := &DayView{Options: c.opts, Date: isoDate}

	data, err := c.src.Day(ctx, uid, isoDate)
	if err != nil {
		v.State = Failed
		v.Err = err
		v.Message = Message(err)
		c.log.Error("load day", zap.String("date", isoDate), zap.Error(err))
		return v, nil
	}
	v.Followers = data.Followers
	v.Unfollowers = data.Unfollowers
	v.State = Loaded
	return v, nil
}
