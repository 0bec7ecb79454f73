package logger

import (
	"fmt"
	"log/slog"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error records err under "error". A nil err yields an empty Attr, which
// slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the signed-in user. Empty ids are dropped.
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// Plan records a subscription plan under "plan". Any fmt.Stringer or string works.
func Plan(plan any) slog.Attr {
	switch p := plan.(type) {
	case nil:
		return slog.Attr{}
	case string:
		return slog.String("plan", p)
	case fmt.Stringer:
		return slog.String("plan", p.String())
	default:
		return slog.Any("plan", p)
	}
}

func StartedAt(t time.Time) slog.Attr {
	return slog.Time("started_at", t)
}

func Remaining(d time.Duration) slog.Attr {
	return slog.Duration("remaining", d)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}
