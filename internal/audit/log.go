// Package audit emits structured events for every command the bot handles,
// enriched with the command correlation id carried in the context.
package audit

import (
	"context"
	"errors"
	"strings"
	"time"

	"labalog.org/internal/obs"
)

type ctxKey string

const commandIDKey ctxKey = "audit_command_id"

// WithCommandID attaches the command correlation id to the context.
func WithCommandID(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, commandIDKey, id)
}

// CommandIDFromContext extracts the command id from context if present.
func CommandIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(commandIDKey).(string); ok {
		return v
	}
	return ""
}

// LogEvent writes one audit log entry with command context.
func LogEvent(ctx context.Context, event string, fields map[string]any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"type":  "audit",
		"event": event,
	}
	if id := CommandIDFromContext(ctx); id != "" {
		entry["command_id"] = id
	}
	if len(fields) > 0 {
		copyFields := make(map[string]any, len(fields))
		for k, v := range fields {
			copyFields[k] = v
		}
		entry["fields"] = copyFields
	} else {
		entry["fields"] = map[string]any{}
	}
	obs.LogEvent(entry)
	return nil
}
