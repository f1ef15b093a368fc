// Package bot routes incoming chat messages to ledger operations and formats
// the Indonesian replies. Every command is wrapped with a correlation id,
// metrics and an audit event; errors never escape as process failures, they
// become plain replies.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"labalog.org/internal/audit"
	"labalog.org/internal/dates"
	"labalog.org/internal/ids"
	"labalog.org/internal/ledger"
	"labalog.org/internal/notify"
	"labalog.org/internal/obs"
	"labalog.org/internal/registry"
	"labalog.org/internal/table"
)

// Message is one incoming chat message, already stripped of transport detail.
type Message struct {
	ChatID   int64
	UserID   int64
	UserName string
	Text     string
}

// Handler dispatches commands against the ledger service.
type Handler struct {
	svc      *ledger.Service
	reg      *registry.Registry
	notifier *notify.Notifier
	msgr     notify.Messenger
}

func NewHandler(svc *ledger.Service, reg *registry.Registry, notifier *notify.Notifier, msgr notify.Messenger) *Handler {
	return &Handler{svc: svc, reg: reg, notifier: notifier, msgr: msgr}
}

// Handle parses one message, executes the command and sends the reply.
// Unknown text is ignored. The returned error covers the outgoing send only;
// command failures are reported to the chat, not to the caller.
func (h *Handler) Handle(ctx context.Context, msg Message) error {
	cmd, args := splitCommand(msg.Text)
	if cmd == "" || !knownCommand(cmd) {
		return nil
	}

	ctx = audit.WithCommandID(ctx, ids.New())
	start := time.Now()

	reply, err := h.dispatch(ctx, cmd, args, msg)

	status := "ok"
	if err != nil {
		status = "error"
	}
	obs.ObserveCommand(cmd, status, time.Since(start))
	fields := map[string]any{
		"chat_id": msg.ChatID,
		"user_id": msg.UserID,
		"status":  status,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	_ = audit.LogEvent(ctx, "command."+cmd, fields)

	if reply == "" {
		return nil
	}
	return h.msgr.SendText(ctx, msg.ChatID, reply)
}

// splitCommand separates the keyword from its arguments. The leading slash
// and a trailing @botname mention (group chats) are stripped from the
// keyword; the keyword itself stays case-sensitive.
func splitCommand(text string) (cmd, args string) {
	text = strings.TrimSpace(text)
	cmd, args, _ = strings.Cut(text, " ")
	cmd = strings.TrimPrefix(cmd, "/")
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return cmd, strings.TrimSpace(args)
}

func knownCommand(cmd string) bool {
	switch cmd {
	case "start", "help", "add", "today", "yesterday", "week", "month",
		"list", "summary", "top", "stats", "edit", "delete", "undo":
		return true
	}
	return false
}

func (h *Handler) dispatch(ctx context.Context, cmd, args string, msg Message) (string, error) {
	switch cmd {
	case "start":
		h.register(ctx, msg.ChatID)
		return helpText, nil
	case "help":
		return helpText, nil
	case "add":
		return h.add(ctx, args, msg)
	case "today":
		day := h.svc.Today()
		return h.listOn(ctx, day, fmt.Sprintf("Hari ini (%s)", day), fmt.Sprintf("hari ini (%s)", day))
	case "yesterday":
		day := h.svc.Today().Add(-1)
		return h.listOn(ctx, day, fmt.Sprintf("Kemarin (%s)", day), fmt.Sprintf("kemarin (%s)", day))
	case "week":
		return h.listWindow(ctx, dates.WeekOf(h.svc.Today()), "Minggu ini", "minggu ini")
	case "month":
		return h.listWindow(ctx, dates.MonthOf(h.svc.Today()), "Bulan ini", "bulan ini")
	case "list":
		return h.list(ctx)
	case "summary":
		return h.summary(ctx)
	case "top":
		return h.top(ctx)
	case "stats":
		return h.stats(ctx)
	case "edit":
		return h.edit(ctx, args)
	case "delete":
		return h.delete(ctx, args)
	case "undo":
		return h.undo(ctx, msg.UserID)
	}
	return "", nil
}

// register adds the chat to the broadcast roster. Persistence failures are
// logged and swallowed: the command that triggered registration still runs.
func (h *Handler) register(ctx context.Context, chatID int64) {
	if _, err := h.reg.Register(chatID); err != nil {
		_ = audit.LogEvent(ctx, "registry.persist_failed", map[string]any{
			"chat_id": chatID,
			"error":   err.Error(),
		})
	}
}

func (h *Handler) add(ctx context.Context, args string, msg Message) (string, error) {
	parts := splitPipe(args)
	if len(parts) < 3 {
		return addUsage, errors.New("add: malformed input")
	}
	h.register(ctx, msg.ChatID)

	rec, err := h.svc.Add(ctx, msg.UserID, parts[0], parts[1], parts[2])
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		return addUsage, err
	case err != nil:
		return "❌ Gagal menambahkan data. Error: " + reason(err), err
	}

	h.notifier.RecordAdded(ctx, notify.Chat{ID: msg.ChatID, Name: displayName(msg)}, rec)
	return formatAdded(rec), nil
}

func (h *Handler) listOn(ctx context.Context, day dates.Date, title, empty string) (string, error) {
	l, err := h.svc.ListOn(ctx, day)
	if err != nil {
		return "❌ Gagal mengambil data. Error: " + reason(err), err
	}
	if len(l.Records) == 0 {
		return fmt.Sprintf("Belum ada transaksi %s.", empty), nil
	}
	return formatListing("📌 "+title, l, false), nil
}

func (h *Handler) listWindow(ctx context.Context, w dates.Range, title, empty string) (string, error) {
	l, err := h.svc.ListWindow(ctx, w)
	if err != nil {
		return "❌ Gagal mengambil data. Error: " + reason(err), err
	}
	if len(l.Records) == 0 {
		return fmt.Sprintf("Belum ada transaksi %s (%s s/d %s).", empty, w.From, w.To), nil
	}
	return formatWindow(title, l), nil
}

func (h *Handler) list(ctx context.Context) (string, error) {
	l, err := h.svc.ListAll(ctx)
	if err != nil {
		return "❌ Gagal mengambil data. Error: " + reason(err), err
	}
	if len(l.Records) == 0 {
		return "Belum ada transaksi.", nil
	}
	return formatListing("📋 Semua Transaksi", l, true), nil
}

func (h *Handler) summary(ctx context.Context) (string, error) {
	sum, err := h.svc.SummaryByApp(ctx)
	if err != nil {
		return "❌ Gagal mengambil data. Error: " + reason(err), err
	}
	if len(sum.Groups) == 0 {
		return "Belum ada transaksi.", nil
	}
	return formatSummary(sum), nil
}

func (h *Handler) top(ctx context.Context) (string, error) {
	groups, err := h.svc.TopApps(ctx, 5)
	if err != nil {
		return "❌ Gagal mengambil data. Error: " + reason(err), err
	}
	if len(groups) == 0 {
		return "Belum ada transaksi.", nil
	}
	return formatTop(groups), nil
}

func (h *Handler) stats(ctx context.Context) (string, error) {
	st, err := h.svc.Stats(ctx)
	if err != nil {
		return "❌ Gagal mengambil data. Error: " + reason(err), err
	}
	if st.Count == 0 {
		return "Belum ada transaksi.", nil
	}
	return formatStats(st), nil
}

func (h *Handler) edit(ctx context.Context, args string) (string, error) {
	parts := strings.Fields(args)
	if len(parts) < 3 {
		return editUsage, errors.New("edit: malformed input")
	}
	no, err := strconv.Atoi(parts[0])
	if err != nil {
		return editUsage, fmt.Errorf("edit: bad number %q", parts[0])
	}
	field, err := ledger.ParseField(strings.ToLower(parts[1]))
	if err != nil {
		return fieldUsage, err
	}
	value := strings.Join(parts[2:], " ")

	res, err := h.svc.Edit(ctx, no, field, value)
	var verr *ledger.ValidationError
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return fmt.Sprintf("❌ Entry #%d tidak ditemukan.", no), err
	case errors.As(err, &verr) && verr.Field == string(ledger.FieldProfit):
		return "❌ Nilai laba tidak valid. Gunakan angka positif.", err
	case errors.As(err, &verr):
		return fieldUsage, err
	case err != nil:
		return "❌ Gagal mengedit data. Error: " + reason(err), err
	}
	return fmt.Sprintf("✏️ Berhasil edit entry #%d\n\nField: %s\nDari: %s\nJadi: %s",
		no, res.Field, res.Old, res.New), nil
}

func (h *Handler) delete(ctx context.Context, args string) (string, error) {
	no, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || no <= 0 {
		return "Format salah.\nPakai: /delete <nomor>\nContoh: /delete 3", fmt.Errorf("delete: bad number %q", args)
	}
	res, err := h.svc.Delete(ctx, no)
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return fmt.Sprintf("❌ Entry #%d tidak ditemukan.", no), err
	case err != nil:
		return "❌ Gagal menghapus data. Error: " + reason(err), err
	}
	return fmt.Sprintf("🗑️ Berhasil dihapus #%d\n%s | %s | %s\n\nSisa %d entry (sudah di-renumber)",
		no, res.Removed.App, res.Removed.PlanType, formatIDR(res.Removed.Profit), res.Remaining), nil
}

func (h *Handler) undo(ctx context.Context, userID int64) (string, error) {
	rec, err := h.svc.Undo(ctx, userID)
	switch {
	case errors.Is(err, ledger.ErrNothingToUndo):
		return "Tidak ada entry yang bisa di-undo.", err
	case errors.Is(err, ledger.ErrUndoTargetChanged):
		return "Entry terakhir sudah berubah, undo dibatalkan.", err
	case err != nil:
		return "❌ Gagal undo. Error: " + reason(err), err
	}
	return fmt.Sprintf("↩️ Undo sukses: hapus entry #%d (%s).", rec.No, rec.App), nil
}

// splitPipe splits "App | Jenis | Laba" on pipes, trimming each part and
// dropping empties.
func splitPipe(s string) []string {
	var parts []string
	for _, p := range strings.Split(s, "|") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func displayName(msg Message) string {
	if msg.UserName != "" {
		return msg.UserName
	}
	return strconv.FormatInt(msg.UserID, 10)
}

// reason keeps the missing-table message verbatim, the most common setup
// mistake, and passes everything else through unchanged.
func reason(err error) string {
	if errors.Is(err, table.ErrNotFound) {
		return table.ErrNotFound.Error()
	}
	return err.Error()
}
