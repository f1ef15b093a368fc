package pg

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"labalog.org/internal/table"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db, "entries"), mock
}

func TestRows(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`select no, tanggal, aplikasi, jenis, laba from entries order by pos`).
		WillReturnRows(sqlmock.NewRows([]string{"no", "tanggal", "aplikasi", "jenis", "laba"}).
			AddRow("1", "05/08/2026", "Canva", "lifetime", "15000").
			AddRow("2", "05/08/2026", "Capcut", "1 bulan", "8000"))

	rows, err := s.Rows(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Named["Aplikasi"] != "Canva" || rows[0].Cell(0) != "1" {
		t.Fatalf("row mismatch: %+v", rows[0])
	}
	if rows[1].Index != 1 {
		t.Fatalf("index=%d", rows[1].Index)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAppend(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`insert into entries`).
		WithArgs("3", "05/08/2026", "Netflix", "1 bulan", "25000").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Append(context.Background(), map[string]string{
		"No": "3", "Tanggal": "05/08/2026", "Aplikasi": "Netflix", "Jenis": "1 bulan", "Laba": "25000",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateByPosition(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`update entries set laba=\$1 where pos =`).
		WithArgs("9000", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Update(context.Background(), 1, "Laba", "9000"); err != nil {
		t.Fatal(err)
	}

	mock.ExpectExec(`update entries set no=`).
		WithArgs("1", 7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := s.Update(context.Background(), 7, "No", "1"); err == nil {
		t.Fatal("expected out of range error")
	}

	if err := s.Update(context.Background(), 0, "Nope", "x"); err == nil {
		t.Fatal("expected unknown column error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteByPosition(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`delete from entries where pos =`).
		WithArgs(0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Delete(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestMissingRelationIsErrNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`select no, tanggal`).
		WillReturnError(&pgconn.PgError{Code: "42P01", Message: `relation "entries" does not exist`})

	_, err := s.Rows(context.Background())
	if !errors.Is(err, table.ErrNotFound) {
		t.Fatalf("expected table.ErrNotFound, got %v", err)
	}
}
