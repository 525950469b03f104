package router

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/examscores/scorebot/core/logger"
	tghelpers "github.com/examscores/scorebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// handled runs fn as handler name and logs one handler.handled summary line.
func handled(c tele.Context, name string, fn tele.HandlerFunc) error {
	start := time.Now()
	ctx := tghelpers.WithHandler(c, name)
	err := fn(c)

	msgs, kb := tghelpers.Counters(c)
	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.String("handler", name),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	}
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
		attrs[0] = slog.String("status", "fail")
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	logger.LogEvent(ctx, logger.TG, level, "handler.handled", attrs...)
	return err
}

func handlerName(endpoint string) string {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(endpoint), "/"))
	if name == "" {
		return "unknown"
	}
	return strings.ReplaceAll(name, " ", "_")
}

// errorCode prefers a Code() method, then the Bot API error code.
func errorCode(err error) string {
	var coder interface{ Code() string }
	if errors.As(err, &coder) {
		if code := strings.TrimSpace(coder.Code()); code != "" {
			return strings.ToUpper(code)
		}
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return "TG_" + strings.ToUpper(strings.ReplaceAll(apiErr.Description, " ", "_"))
	}
	return "INTERNAL"
}
