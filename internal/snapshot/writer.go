// Package snapshot serializes expense records into the CSV file the analyzer
// reads.
//
// Format:
//
//	Id,Description,Amount,Date
//	1,"Groceries",1500.00,2025-03-01
//
// The description is always quoted (embedded quotes doubled, line breaks
// folded to spaces so every record stays on one line), the amount is written
// exactly as stored and the date is the UTC calendar day.
package snapshot

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/animus-labs/expense-tracker/internal/domain"
)

const Header = "Id,Description,Amount,Date"

var labelFolder = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// Encode writes the header and one line per expense in ascending date order,
// ties broken by id. The same input always produces the same bytes.
func Encode(w io.Writer, expenses []domain.Expense) error {
	rows := domain.NormalizeAll(expenses)
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].ID < rows[j].ID
	})

	if _, err := io.WriteString(w, Header+"\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range rows {
		if err := e.Amount.Validate(); err != nil {
			return fmt.Errorf("expense %d: %w", e.ID, err)
		}
		line := strconv.FormatInt(e.ID, 10) + "," +
			quote(e.Description) + "," +
			e.Amount.String() + "," +
			e.Date.Format(domain.DateLayout) + "\n"
		if _, err := io.WriteString(w, line); err != nil {
			return fmt.Errorf("write expense %d: %w", e.ID, err)
		}
	}
	return nil
}

// Write replaces the file at path with a fresh snapshot. The content goes to a
// temporary file in the same directory first, so a failed write leaves no
// partial snapshot at path.
func Write(path string, expenses []domain.Expense) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	buf := bufio.NewWriter(tmp)
	if err = Encode(buf, expenses); err != nil {
		return err
	}
	if err = buf.Flush(); err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod snapshot: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func quote(label string) string {
	label = labelFolder.Replace(label)
	return `"` + strings.ReplaceAll(label, `"`, `""`) + `"`
}
