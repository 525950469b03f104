package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/examscores/scorebot/core/config"
	"github.com/examscores/scorebot/core/telegram/middleware"
	"github.com/examscores/scorebot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// MiddlewareOptions tunes DefaultMiddlewares.
type MiddlewareOptions struct {
	// OnLimited answers users that hit the rate limit.
	OnLimited tele.HandlerFunc
	// Lanes, when set, serializes handling of updates per sender.
	Lanes *state.Lanes
}

// DefaultMiddlewares builds the global chain: recover, rate limit, user lane, logger.
// The lane sits after the rate limit so dropped updates never wait for it.
func DefaultMiddlewares(cfg *coreconfig.Config, opts MiddlewareOptions) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}

	if cfg != nil {
		interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond
		if interval > 0 {
			ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
			for _, t := range cfg.RateLimit.ExcludeUpdates {
				ex[strings.ToLower(t)] = struct{}{}
			}
			mws = append(mws, Middleware{
				Name: "rate_limit",
				Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
					Interval:  interval,
					Exclude:   ex,
					OnLimited: opts.OnLimited,
				}),
			})
		}
	}

	if opts.Lanes != nil {
		mws = append(mws, Middleware{Name: "user_lane", Use: state.UserLane(opts.Lanes)})
	}

	mws = append(mws, Middleware{Name: "logger", Use: middleware.LoggerMiddleware})

	return mws
}
