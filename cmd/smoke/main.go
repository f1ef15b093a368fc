// Smoke exercises the full engine offline against a throwaway CSV table:
// add, edit, delete with renumber, undo, summary. No bot token needed.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"labalog.org/internal/ledger"
	"labalog.org/internal/table/csvfile"
)

func main() {
	dir, err := os.MkdirTemp("", "labalog-smoke")
	if err != nil {
		log.Fatalf("tempdir: %v", err)
	}
	defer os.RemoveAll(dir)

	tbl := csvfile.Open(filepath.Join(dir, "entries.csv"), ledger.Columns)
	svc := ledger.New(tbl, ledger.NewUndoStore(), time.UTC)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	const actor = int64(1)
	if _, err := svc.Add(ctx, actor, "Canva", "lifetime", "15000"); err != nil {
		log.Fatalf("add canva: %v", err)
	}
	if _, err := svc.Add(ctx, actor, "Netflix", "1 bulan", "5000"); err != nil {
		log.Fatalf("add netflix: %v", err)
	}
	rec, err := svc.Add(ctx, actor, "Capcut", "1 bulan", "Rp 8.000")
	if err != nil {
		log.Fatalf("add capcut: %v", err)
	}
	if rec.No != 3 || rec.Profit != 8000 {
		log.Fatalf("unexpected third record: %+v", rec)
	}

	if _, err := svc.Edit(ctx, 2, ledger.FieldProfit, "6000"); err != nil {
		log.Fatalf("edit: %v", err)
	}

	res, err := svc.Delete(ctx, 1)
	if err != nil {
		log.Fatalf("delete: %v", err)
	}
	if res.Remaining != 2 {
		log.Fatalf("expected 2 remaining, got %d", res.Remaining)
	}
	all, err := svc.ListAll(ctx)
	if err != nil {
		log.Fatalf("list: %v", err)
	}
	for i, r := range all.Records {
		if r.No != i+1 {
			log.Fatalf("renumber failed: row %d has no %d", i, r.No)
		}
	}
	if all.Total != 14000 {
		log.Fatalf("expected total 14000, got %d", all.Total)
	}

	// the delete renumbered the set, so the remembered add is stale
	if _, err := svc.Undo(ctx, actor); err != ledger.ErrUndoTargetChanged {
		log.Fatalf("expected stale undo after renumber, got %v", err)
	}

	sum, err := svc.SummaryByApp(ctx)
	if err != nil {
		log.Fatalf("summary: %v", err)
	}
	if sum.GrandTotal != all.Total {
		log.Fatalf("grand total %d != listing total %d", sum.GrandTotal, all.Total)
	}

	fmt.Println("✅ labalog smoke test passed")
}
