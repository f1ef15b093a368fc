// Package notify fans a new-entry notification out to every registered chat
// except the one that created the entry. Deliveries are independent: one
// unreachable chat never blocks or fails the others, it just gets evicted
// from the roster.
package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"labalog.org/internal/audit"
	"labalog.org/internal/ledger"
	"labalog.org/internal/money"
	"labalog.org/internal/obs"
	"labalog.org/internal/registry"
)

// Messenger is the one-way sending surface of the chat transport.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// Chat identifies the command's origin: the chat to skip during fan-out and
// the display name shown to everyone else.
type Chat struct {
	ID   int64
	Name string
}

type Notifier struct {
	reg     *registry.Registry
	msgr    Messenger
	limiter *rate.Limiter
}

// Option configures Notifier.
type Option func(*Notifier)

// WithLimiter overrides the outgoing send limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(n *Notifier) { n.limiter = l }
}

func New(reg *registry.Registry, msgr Messenger, opts ...Option) *Notifier {
	n := &Notifier{
		reg:  reg,
		msgr: msgr,
		// Telegram allows roughly 30 messages per second bot-wide; stay under.
		limiter: rate.NewLimiter(rate.Limit(25), 5),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// RecordAdded notifies every registered chat except the origin about a new
// entry. Each delivery runs in its own goroutine and all are joined before
// returning; a failed delivery evicts that chat from the roster and the
// roster is re-persisted. Failures are logged, never returned: the add
// already succeeded.
func (n *Notifier) RecordAdded(ctx context.Context, origin Chat, rec ledger.Record) {
	text := fmt.Sprintf("Entry baru dari %s\n#%d %s\n%s | %s | %s",
		origin.Name, rec.No, rec.Date, rec.App, rec.PlanType, money.Format(rec.Profit))
	broadcastID := uuid.NewString()

	var wg sync.WaitGroup
	for _, chatID := range n.reg.Snapshot() {
		if chatID == origin.ID {
			continue
		}
		wg.Add(1)
		go func(chatID int64) {
			defer wg.Done()
			n.deliver(ctx, broadcastID, chatID, text)
		}(chatID)
	}
	wg.Wait()
}

func (n *Notifier) deliver(ctx context.Context, broadcastID string, chatID int64, text string) {
	if err := n.limiter.Wait(ctx); err != nil {
		obs.CountDelivery("failed")
		return
	}
	if err := n.msgr.SendText(ctx, chatID, text); err != nil {
		obs.CountDelivery("failed")
		// unreachable chat: drop it from the roster so the next broadcast
		// does not try again
		if _, perr := n.reg.Remove(chatID); perr != nil {
			_ = audit.LogEvent(ctx, "broadcast.evict_persist_failed", map[string]any{
				"broadcast_id": broadcastID,
				"chat_id":      chatID,
				"error":        perr.Error(),
			})
		} else {
			obs.CountDelivery("evicted")
		}
		_ = audit.LogEvent(ctx, "broadcast.delivery_failed", map[string]any{
			"broadcast_id": broadcastID,
			"chat_id":      chatID,
			"error":        err.Error(),
		})
		return
	}
	obs.CountDelivery("delivered")
}
