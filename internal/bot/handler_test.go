package bot

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"labalog.org/internal/ledger"
	"labalog.org/internal/notify"
	"labalog.org/internal/registry"
	"labalog.org/internal/table/memory"
)

var fixedNow = time.Date(2026, time.August, 5, 10, 30, 0, 0, time.UTC)

type fakeMessenger struct {
	mu   sync.Mutex
	sent map[int64][]string
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{sent: make(map[int64][]string)}
}

func (f *fakeMessenger) SendText(ctx context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[chatID] = append(f.sent[chatID], text)
	return nil
}

func (f *fakeMessenger) last(chatID int64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n := len(f.sent[chatID]); n > 0 {
		return f.sent[chatID][n-1]
	}
	return ""
}

func (f *fakeMessenger) count(chatID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent[chatID])
}

func newTestHandler(t *testing.T) (*Handler, *fakeMessenger, *registry.Registry) {
	t.Helper()
	tbl := memory.NewStore("entries", ledger.Columns)
	svc := ledger.New(tbl, ledger.NewUndoStore(), time.UTC, ledger.WithClock(func() time.Time { return fixedNow }))
	reg := registry.Load(filepath.Join(t.TempDir(), "roster.json"))
	msgr := newFakeMessenger()
	notifier := notify.New(reg, msgr, notify.WithLimiter(rate.NewLimiter(rate.Inf, 1)))
	return NewHandler(svc, reg, notifier, msgr), msgr, reg
}

func send(t *testing.T, h *Handler, chatID, userID int64, text string) {
	t.Helper()
	require.NoError(t, h.Handle(context.Background(), Message{
		ChatID:   chatID,
		UserID:   userID,
		UserName: "Budi",
		Text:     text,
	}))
}

func TestStartRegistersAndReplies(t *testing.T) {
	h, msgr, reg := newTestHandler(t)

	send(t, h, 10, 1, "/start")

	assert.True(t, reg.Contains(10))
	assert.Contains(t, msgr.last(10), "/add Aplikasi | Jenis | Laba")
}

func TestHelpDoesNotRegister(t *testing.T) {
	h, msgr, reg := newTestHandler(t)

	send(t, h, 10, 1, "/help")

	assert.False(t, reg.Contains(10))
	assert.Contains(t, msgr.last(10), "Perintah:")
}

func TestAddRecordsAndBroadcasts(t *testing.T) {
	h, msgr, reg := newTestHandler(t)
	_, err := reg.Register(20)
	require.NoError(t, err)

	send(t, h, 10, 1, "/add Canva | lifetime | 15000")

	reply := msgr.last(10)
	for _, want := range []string{"✅ Tercatat #1", "05/08/2026", "Canva", "lifetime", "15.000"} {
		assert.Contains(t, reply, want)
	}
	assert.True(t, reg.Contains(10), "add must register the chat")
	require.Equal(t, 1, msgr.count(20), "other chat must be notified")
	assert.Contains(t, msgr.last(20), "Budi")
	assert.Equal(t, 1, msgr.count(10), "origin gets the confirmation only, no broadcast copy")
}

func TestAddMalformedInput(t *testing.T) {
	h, msgr, _ := newTestHandler(t)

	for _, text := range []string{
		"/add Canva | lifetime",
		"/add",
		"/add Canva | lifetime | gratis",
		"/add Canva | lifetime | -5",
	} {
		send(t, h, 10, 1, text)
		assert.Contains(t, msgr.last(10), "Format salah", "input %q", text)
	}
}

func TestTodayListsOnlyToday(t *testing.T) {
	h, msgr, _ := newTestHandler(t)

	send(t, h, 10, 1, "/today")
	assert.Contains(t, msgr.last(10), "Belum ada transaksi hari ini (05/08/2026)")

	send(t, h, 10, 1, "/add Canva | lifetime | 15000")
	send(t, h, 10, 1, "/today")

	reply := msgr.last(10)
	assert.Contains(t, reply, "Hari ini (05/08/2026)")
	assert.Contains(t, reply, "#1 Canva | lifetime | ")
	assert.Contains(t, reply, "Total: ")
}

func TestWeekShowsWindowAndPerDay(t *testing.T) {
	h, msgr, _ := newTestHandler(t)
	send(t, h, 10, 1, "/add Canva | lifetime | 15000")
	send(t, h, 10, 1, "/add Netflix | 1 bulan | 5000")

	send(t, h, 10, 1, "/week")

	reply := msgr.last(10)
	assert.Contains(t, reply, "Minggu ini (03/08/2026 s/d 09/08/2026)")
	assert.Contains(t, reply, "Per hari:")
	assert.Contains(t, reply, "05/08/2026: 2x | ")
	assert.Contains(t, reply, "Rata-rata/hari aktif: ")
}

func TestSummaryGroupsByApp(t *testing.T) {
	h, msgr, _ := newTestHandler(t)
	send(t, h, 10, 1, "/add Canva | lifetime | 1000")
	send(t, h, 10, 1, "/add Canva | 1 bulan | 500")
	send(t, h, 10, 1, "/add Netflix | 1 bulan | 2000")

	send(t, h, 10, 1, "/summary")

	reply := msgr.last(10)
	assert.Contains(t, reply, "Ringkasan per Aplikasi")
	assert.Contains(t, reply, "Canva: 2x transaksi")
	assert.Contains(t, reply, "Netflix: 1x transaksi")
	assert.Contains(t, reply, "Grand Total: ")
	// Netflix has the higher total, so it is listed first
	assert.Less(t, strings.Index(reply, "Netflix"), strings.Index(reply, "Canva"))
}

func TestEditFlow(t *testing.T) {
	h, msgr, _ := newTestHandler(t)
	send(t, h, 10, 1, "/add Canva | lifetime | 15000")

	send(t, h, 10, 1, "/edit 1 laba 10000")
	reply := msgr.last(10)
	assert.Contains(t, reply, "✏️ Berhasil edit entry #1")
	assert.Contains(t, reply, "Dari: ")
	assert.Contains(t, reply, "15.000")
	assert.Contains(t, reply, "10.000")

	send(t, h, 10, 1, "/edit 1 warna merah")
	assert.Contains(t, msgr.last(10), "Field tidak valid")

	send(t, h, 10, 1, "/edit 9 laba 5000")
	assert.Contains(t, msgr.last(10), "Entry #9 tidak ditemukan")

	send(t, h, 10, 1, "/edit 1 laba gratis")
	assert.Contains(t, msgr.last(10), "Nilai laba tidak valid")
}

func TestDeleteFlow(t *testing.T) {
	h, msgr, _ := newTestHandler(t)
	send(t, h, 10, 1, "/add Canva | lifetime | 15000")
	send(t, h, 10, 1, "/add Netflix | 1 bulan | 5000")

	send(t, h, 10, 1, "/delete 1")
	reply := msgr.last(10)
	assert.Contains(t, reply, "🗑️ Berhasil dihapus #1")
	assert.Contains(t, reply, "Canva")
	assert.Contains(t, reply, "Sisa 1 entry (sudah di-renumber)")

	send(t, h, 10, 1, "/delete 42")
	assert.Contains(t, msgr.last(10), "Entry #42 tidak ditemukan")
}

func TestUndoFlow(t *testing.T) {
	h, msgr, _ := newTestHandler(t)

	send(t, h, 10, 1, "/undo")
	assert.Contains(t, msgr.last(10), "Tidak ada entry yang bisa di-undo")

	send(t, h, 10, 1, "/add Canva | lifetime | 15000")
	send(t, h, 10, 1, "/undo")
	assert.Contains(t, msgr.last(10), "↩️ Undo sukses")

	send(t, h, 10, 1, "/list")
	assert.Contains(t, msgr.last(10), "Belum ada transaksi")
}

func TestUndoAfterInterleavedDelete(t *testing.T) {
	h, msgr, _ := newTestHandler(t)
	send(t, h, 10, 1, "/add Canva | lifetime | 15000")
	send(t, h, 10, 1, "/add Netflix | 1 bulan | 5000")
	send(t, h, 10, 1, "/delete 2")

	send(t, h, 10, 1, "/undo")
	assert.Contains(t, msgr.last(10), "Entry terakhir sudah berubah, undo dibatalkan")
}

func TestUnknownTextIgnored(t *testing.T) {
	h, msgr, _ := newTestHandler(t)

	for _, text := range []string{"halo bot", "/frobnicate", "", "  "} {
		send(t, h, 10, 1, text)
	}
	assert.Equal(t, 0, msgr.count(10))
}

func TestMentionSuffixStripped(t *testing.T) {
	h, msgr, _ := newTestHandler(t)

	send(t, h, 10, 1, "/help@labalog_bot")
	assert.Contains(t, msgr.last(10), "Perintah:")
}

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		in       string
		cmd, arg string
	}{
		{"/add Canva | lifetime | 15000", "add", "Canva | lifetime | 15000"},
		{"add Canva | x | 1", "add", "Canva | x | 1"},
		{"/undo", "undo", ""},
		{"/help@some_bot extra", "help", "extra"},
		{"  /list  ", "list", ""},
		{"", "", ""},
	}
	for _, c := range cases {
		cmd, arg := splitCommand(c.in)
		assert.Equal(t, c.cmd, cmd, "input %q", c.in)
		assert.Equal(t, c.arg, arg, "input %q", c.in)
	}
}
