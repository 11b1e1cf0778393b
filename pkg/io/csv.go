package io

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/osumercury/badgemaker/pkg/badge"
	"github.com/osumercury/badgemaker/pkg/errors"
)

// csvMinColumns is number through text color.
const csvMinColumns = 7

// ParseCSV decodes roster records from r. Blank lines are skipped. A record
// with fewer than seven columns, or a number that is not an integer, is an
// INVALID_INPUT error naming the line.
func ParseCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var recs []Record
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return recs, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read CSV")
		}
		line, _ := cr.FieldPos(0)

		if len(fields) < csvMinColumns {
			return recs, errors.New(errors.ErrCodeInvalidInput, "line %d: invalid number of columns (%d)", line, len(fields))
		}
		num, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return recs, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d: invalid badge number %q", line, fields[0])
		}

		rec := Record{
			Number:              num,
			Primary:             fields[1],
			Secondary:           fields[2],
			Background:          strings.TrimSpace(fields[3]),
			BackgroundColor:     fields[4],
			TextBackgroundColor: fields[5],
			TextColor:           fields[6],
		}
		if len(fields) > csvMinColumns {
			rec.Fit = fields[7]
			rec.Extra = fields[8:]
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// ReadCSV decodes a roster from r and builds the badges.
func ReadCSV(ctx context.Context, r io.Reader, opts ReadOptions) ([]*badge.Badge, error) {
	recs, err := ParseCSV(r)
	if err != nil {
		return nil, err
	}
	return Badges(ctx, recs, opts), nil
}

// ImportCSV reads the CSV file at path. Background paths are resolved against
// the file's directory.
func ImportCSV(ctx context.Context, path string, opts ReadOptions) ([]*badge.Badge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()

	opts.Dir = filepath.Dir(path)
	badges, err := ReadCSV(ctx, f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return badges, nil
}

// WriteCSV encodes recs in the column layout ParseCSV reads.
func WriteCSV(w io.Writer, recs []Record) error {
	cw := csv.NewWriter(w)
	for _, rec := range recs {
		fields := []string{
			strconv.Itoa(rec.Number),
			rec.Primary,
			rec.Secondary,
			rec.Background,
			rec.BackgroundColor,
			rec.TextBackgroundColor,
			rec.TextColor,
			rec.Fit,
		}
		fields = append(fields, rec.Extra...)
		if err := cw.Write(fields); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "write CSV")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write CSV")
	}
	return nil
}

// ExportCSV writes badges to the CSV file at path. Each in-memory background
// is saved next to it as "<number>-<primary>.png" and referenced by that name.
func ExportCSV(path string, badges []*badge.Badge) error {
	dir := filepath.Dir(path)
	recs := make([]Record, len(badges))
	for i, b := range badges {
		var bg string
		if b.Background != nil {
			bg = errors.SafeFilename(b.Name()) + ".png"
			if err := imaging.Save(b.Background, filepath.Join(dir, bg)); err != nil {
				return errors.Wrap(errors.ErrCodeIO, err, "save background %s", bg)
			}
		}
		recs[i] = FromBadge(b, bg)
	}
	return writeFile(path, func(w io.Writer) error { return WriteCSV(w, recs) })
}

func openError(path string, err error) error {
	if os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	return errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
}

// writeFile creates path and closes it, reporting the first error.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "close %s", path)
	}
	return nil
}
