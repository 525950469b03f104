package state

import (
	"log/slog"
	"time"

	"github.com/examscores/scorebot/core/logger"
	tghelpers "github.com/examscores/scorebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// UserLane returns a middleware that runs downstream handlers inside the
// sender's lane, so updates from one user are handled strictly one by one.
func UserLane(lanes *Lanes) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || lanes == nil {
				return next(c)
			}
			start := time.Now()
			release := lanes.Acquire(user.ID)
			defer release()
			if waited := time.Since(start); waited > 100*time.Millisecond {
				logger.Debug(tghelpers.BuildContext(c), "tg", "lane.wait",
					slog.Int64("user_id", user.ID),
					slog.Duration("duration", logger.RoundMS(waited)),
				)
			}
			return next(c)
		}
	}
}
