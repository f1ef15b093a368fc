package bot

import (
	"fmt"
	"strings"

	"labalog.org/internal/ledger"
	"labalog.org/internal/money"
)

const helpText = `Perintah:
/add Aplikasi | Jenis | Laba
/today - Transaksi hari ini
/yesterday - Transaksi kemarin
/week - Transaksi minggu ini
/month - Transaksi bulan ini
/list - Semua transaksi
/summary - Ringkasan per aplikasi
/top - Top 5 aplikasi
/stats - Statistik lengkap
/edit <nomor> <field> <value>
/undo
/delete <nomor>
/help - Tampilkan bantuan

Contoh:
/add Capcut | 1 bulan | 8000
/edit 3 laba 10000
/delete 3`

const addUsage = `Format salah.
Pakai:
/add Aplikasi | Jenis | Laba
Contoh: /add Canva | lifetime | 15000`

const editUsage = `Format salah.
Pakai: /edit <nomor> <field> <value>
Contoh: /edit 3 laba 10000`

const fieldUsage = `❌ Field tidak valid. Gunakan: aplikasi, jenis, atau laba

Contoh:
/edit 3 aplikasi Canva
/edit 3 jenis lifetime
/edit 3 laba 10000`

func formatIDR(n int64) string {
	return money.Format(n)
}

func formatAdded(rec ledger.Record) string {
	return fmt.Sprintf("✅ Tercatat #%d\n%s\n%s | %s | %s",
		rec.No, rec.Date, rec.App, rec.PlanType, formatIDR(rec.Profit))
}

func formatListing(title string, l ledger.Listing, withDate bool) string {
	var b strings.Builder
	b.WriteString(title)
	for _, r := range l.Records {
		if withDate {
			fmt.Fprintf(&b, "\n#%d %s | %s | %s | %s", r.No, r.Date, r.App, r.PlanType, formatIDR(r.Profit))
		} else {
			fmt.Fprintf(&b, "\n#%d %s | %s | %s", r.No, r.App, r.PlanType, formatIDR(r.Profit))
		}
	}
	fmt.Fprintf(&b, "\n\nTotal: %s", formatIDR(l.Total))
	return b.String()
}

func formatWindow(title string, l ledger.WindowListing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📆 %s (%s s/d %s)", title, l.Window.From, l.Window.To)
	for _, r := range l.Records {
		fmt.Fprintf(&b, "\n#%d %s | %s | %s | %s", r.No, r.Date, r.App, r.PlanType, formatIDR(r.Profit))
	}
	b.WriteString("\n\nPer hari:")
	for _, d := range l.Days {
		fmt.Fprintf(&b, "\n%s: %dx | %s", d.Date, d.Count, formatIDR(d.Total))
	}
	fmt.Fprintf(&b, "\n\nTotal: %s", formatIDR(l.Total))
	fmt.Fprintf(&b, "\nRata-rata/hari aktif: %s", formatIDR(l.AvgPerActiveDay))
	return b.String()
}

func formatSummary(sum ledger.Summary) string {
	var lines []string
	for _, g := range sum.Groups {
		lines = append(lines, fmt.Sprintf("%s: %dx transaksi\nTotal: %s", g.Name, g.Count, formatIDR(g.Total)))
	}
	return fmt.Sprintf("📊 Ringkasan per Aplikasi\n\n%s\n\n━━━━━━━━━━━━━━━\nGrand Total: %s",
		strings.Join(lines, "\n\n"), formatIDR(sum.GrandTotal))
}

func formatTop(groups []ledger.Group) string {
	var b strings.Builder
	b.WriteString("🏆 Top Aplikasi")
	for i, g := range groups {
		fmt.Fprintf(&b, "\n%d. %s: %s (%dx)", i+1, g.Name, formatIDR(g.Total), g.Count)
	}
	return b.String()
}

func formatStats(st ledger.Stats) string {
	var b strings.Builder
	b.WriteString("📈 Statistik")
	fmt.Fprintf(&b, "\nTotal transaksi: %d", st.Count)
	fmt.Fprintf(&b, "\nTotal laba: %s", formatIDR(st.Total))
	fmt.Fprintf(&b, "\nHari aktif: %d", st.ActiveDays)
	fmt.Fprintf(&b, "\nRata-rata/transaksi: %s", formatIDR(st.AvgPerTx))
	fmt.Fprintf(&b, "\nRata-rata/hari aktif: %s", formatIDR(st.AvgPerActiveDay))
	fmt.Fprintf(&b, "\nLaba terbesar: #%d %s (%s)", st.Max.No, st.Max.App, formatIDR(st.Max.Profit))
	fmt.Fprintf(&b, "\nLaba terkecil: #%d %s (%s)", st.Min.No, st.Min.App, formatIDR(st.Min.Profit))
	fmt.Fprintf(&b, "\nAplikasi terlaris: %s (%dx)", st.TopAppByCount.Name, st.TopAppByCount.Count)
	fmt.Fprintf(&b, "\nJenis terlaris: %s (%dx)", st.TopPlanByCount.Name, st.TopPlanByCount.Count)
	fmt.Fprintf(&b, "\nHari terbaik: %s (%s)", st.BestDay.Date, formatIDR(st.BestDay.Total))
	return b.String()
}
