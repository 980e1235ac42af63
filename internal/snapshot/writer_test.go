package snapshot

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/animus-labs/expense-tracker/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func sample() []domain.Expense {
	return []domain.Expense{
		{ID: 3, Description: "Transport", Amount: "5000.00", Date: day(2025, 3, 8)},
		{ID: 1, Description: "Groceries", Amount: "1500.00", Date: day(2025, 3, 1)},
		{ID: 2, Description: "Internet", Amount: "7550.125", Date: day(2025, 3, 5)},
	}
}

func TestEncodeLinesAndOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sample()); err != nil {
		t.Fatalf("Encode() err=%v", err)
	}
	want := []string{
		Header,
		`1,"Groceries",1500.00,2025-03-01`,
		`2,"Internet",7550.125,2025-03-05`,
		`3,"Transport",5000.00,2025-03-08`,
		"",
	}
	if diff := cmp.Diff(want, strings.Split(buf.String(), "\n")); diff != "" {
		t.Fatalf("Encode() mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeTiesBrokenByID(t *testing.T) {
	same := day(2025, 1, 1)
	in := []domain.Expense{
		{ID: 9, Description: "b", Amount: "1", Date: same},
		{ID: 4, Description: "a", Amount: "2", Date: same},
	}
	var buf bytes.Buffer
	if err := Encode(&buf, in); err != nil {
		t.Fatalf("Encode() err=%v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if !strings.HasPrefix(lines[1], "4,") || !strings.HasPrefix(lines[2], "9,") {
		t.Fatalf("unexpected order: %v", lines)
	}
}

func TestEncodeQuotesLabels(t *testing.T) {
	in := []domain.Expense{
		{ID: 1, Description: `Dinner, "Spice Route"`, Amount: "850.50", Date: day(2025, 2, 1)},
		{ID: 2, Description: "multi\r\nline\nnote", Amount: "1", Date: day(2025, 2, 2)},
	}
	var buf bytes.Buffer
	if err := Encode(&buf, in); err != nil {
		t.Fatalf("Encode() err=%v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), lines)
	}
	if lines[1] != `1,"Dinner, ""Spice Route""",850.50,2025-02-01` {
		t.Fatalf("line=%s", lines[1])
	}
	if lines[2] != `2,"multi line note",1,2025-02-02` {
		t.Fatalf("line=%s", lines[2])
	}
}

func TestEncodeUsesUTCCalendarDay(t *testing.T) {
	pst := time.FixedZone("PST", -8*3600)
	in := []domain.Expense{{ID: 1, Description: "Late", Amount: "10", Date: time.Date(2025, 4, 30, 20, 0, 0, 0, pst)}}
	var buf bytes.Buffer
	if err := Encode(&buf, in); err != nil {
		t.Fatalf("Encode() err=%v", err)
	}
	if !strings.Contains(buf.String(), ",2025-05-01\n") {
		t.Fatalf("expected UTC date, got %q", buf.String())
	}
}

func TestEncodeRejectsNonNumericAmount(t *testing.T) {
	in := []domain.Expense{{ID: 7, Description: "x", Amount: "12,50", Date: day(2025, 1, 1)}}
	if err := Encode(&bytes.Buffer{}, in); err == nil {
		t.Fatalf("Encode() expected error")
	}
}

func TestWriteOverwritesAndIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "expenses.csv")
	if err := os.WriteFile(path, []byte("stale content that is longer than the new snapshot\n"+strings.Repeat("x", 4096)), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := Write(path, sample()); err != nil {
		t.Fatalf("Write() err=%v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := Write(path, sample()); err != nil {
		t.Fatalf("Write() second err=%v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("snapshot not byte-identical across runs")
	}
	if got := strings.Count(string(first), "\n"); got != len(sample())+1 {
		t.Fatalf("line count=%d, want %d", got, len(sample())+1)
	}
	if strings.Contains(string(first), "stale") {
		t.Fatalf("old content survived")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the snapshot in dir, got %d entries", len(entries))
	}
}

func TestWriteFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "expenses.csv")
	bad := []domain.Expense{{ID: 1, Description: "x", Amount: "n/a", Date: day(2025, 1, 1)}}
	if err := Write(path, bad); err == nil {
		t.Fatalf("Write() expected error")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty dir after failed write, got %d entries", len(entries))
	}
}

func TestWriteMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "expenses.csv")
	if err := Write(path, sample()); err == nil {
		t.Fatalf("Write() expected error")
	}
}
