package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"financas/internal/ledger"
)

// sequencesFile keeps each table's next id so ids survive reloads even
// after the highest row was deleted.
const sequencesFile = "sequences"

// CSVStore keeps one CSV file per table and user under a directory:
// <dir>/<user>_<table>.csv.
type CSVStore struct {
	dir string
}

func NewCSVStore(dir string) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &CSVStore{dir: dir}, nil
}

func (s *CSVStore) Close() error { return nil }

// Path returns the file backing table t of user.
func (s *CSVStore) Path(user string, t Table) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.csv", user, t))
}

// Load reads every table of user. Missing files are empty tables.
func (s *CSVStore) Load(ctx context.Context, user string) (*ledger.Book, error) {
	b := ledger.NewBook(user)
	seqs, err := s.readSequences(user)
	if err != nil {
		return nil, err
	}
	for _, t := range Tables {
		header, records, err := readCSV(s.Path(user, t))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", t, err)
		}
		if err := Decode(b, t, header, records, seqs[t]); err != nil {
			return nil, err
		}
	}
	slog.DebugContext(ctx, "Book loaded from CSV", "user", user, "dir", s.dir)
	return b, nil
}

// Save overwrites every table file of user. Each file is written to a
// temporary name first and renamed into place.
func (s *CSVStore) Save(ctx context.Context, user string, b *ledger.Book) error {
	seqs := make([][]string, 0, len(Tables))
	for _, t := range Tables {
		if err := writeCSV(s.Path(user, t), Headers[t], Encode(b, t)); err != nil {
			return fmt.Errorf("write %s: %w", t, err)
		}
		seqs = append(seqs, []string{string(t), strconv.FormatInt(NextID(b, t), 10)})
	}
	if err := writeCSV(s.Path(user, sequencesFile), []string{"table", "next_id"}, seqs); err != nil {
		return fmt.Errorf("write sequences: %w", err)
	}
	slog.InfoContext(ctx, "Book saved to CSV", "user", user, "dir", s.dir)
	return nil
}

// Backup copies the existing files of user into a timestamped directory
// and returns its path. Files that do not exist are skipped.
func (s *CSVStore) Backup(ctx context.Context, user string, now time.Time) (string, error) {
	dst := filepath.Join(s.dir, "backup_import_"+now.Format("20060102_150405"))
	if err := os.MkdirAll(dst, 0755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}
	copied := 0
	for _, t := range append(append([]Table{}, Tables...), sequencesFile) {
		src := s.Path(user, t)
		if err := copyFile(src, filepath.Join(dst, filepath.Base(src))); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("backup %s: %w", t, err)
		}
		copied++
	}
	slog.InfoContext(ctx, "CSV backup created", "user", user, "path", dst, "files", copied)
	return dst, nil
}

func (s *CSVStore) readSequences(user string) (map[Table]int64, error) {
	seqs := make(map[Table]int64)
	_, records, err := readCSV(s.Path(user, sequencesFile))
	if errors.Is(err, os.ErrNotExist) {
		return seqs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sequences: %w", err)
	}
	for _, rec := range records {
		if len(rec) < 2 {
			continue
		}
		n, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("read sequences: %w", err)
		}
		seqs[Table(rec[0])] = n
	}
	return seqs, nil
}

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return header, records, nil
}

func writeCSV(path string, header []string, records [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return err
	}
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
