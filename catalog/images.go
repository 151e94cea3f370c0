package catalog

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/franksops/pixport/report"
)

// Image extractor bundle file names.
const (
	ImagesAll      = "images_ALL.csv"
	ImagesFound    = "images_FOUND.csv"
	ImagesNotFound = "images_NOT_FOUND.csv"
)

// ImageRow is one product's gallery URLs, keyed by its codes.
type ImageRow struct {
	Ref    string
	EAN    string
	Images [galleryPositions]string
}

// imageQuery builds the gallery-URL extraction query. Unlike the
// comprehensive search, both modes match codes exactly.
func imageQuery(cdnBase string, mode SearchMode, count int) string {
	keyCols := "p.ean"
	where := "p.ean IN (%s)"
	order := "ORDER BY p.ean"
	if mode == ModeREF {
		keyCols = "p.ref, p.ean"
		where = "p.ref IN (%s)"
		order = "ORDER BY p.ref, p.ean"
	}

	return fmt.Sprintf(`SELECT %s,
  %s
FROM produits_view3 p%s
WHERE `+where+`
  AND p.status = 'on'
%s`, keyCols, galleryColumns(cdnBase), galleryJoins(), placeholders(count), order)
}

// ImagesByCode fetches the gallery URLs for the given codes. In EAN mode a
// single row is kept per EAN (the first by query order); in REF mode one
// reference may yield several rows.
func (s *Store) ImagesByCode(ctx context.Context, codes []string, mode SearchMode) ([]ImageRow, error) {
	codes = CleanCodes(codes)
	if len(codes) == 0 {
		return nil, fmt.Errorf("no valid %s codes provided", mode)
	}

	args := make([]any, len(codes))
	for i, c := range codes {
		args[i] = c
	}

	rows, err := s.db.QueryContext(ctx, imageQuery(s.cdnBase, mode, len(codes)), args...)
	if err != nil {
		return nil, fmt.Errorf("image extraction failed: %w", err)
	}
	defer rows.Close()

	var result []ImageRow
	seen := make(map[string]bool)
	for rows.Next() {
		var r ImageRow
		dest := []any{&r.EAN}
		if mode == ModeREF {
			dest = []any{&r.Ref, &r.EAN}
		}
		for i := range r.Images {
			dest = append(dest, &r.Images[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan image row: %w", err)
		}

		if mode == ModeEAN {
			if seen[r.EAN] {
				continue
			}
			seen[r.EAN] = true
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// ExportImages writes the ALL/FOUND/NOT_FOUND image-URL files into dir.
func (s *Store) ExportImages(ctx context.Context, codes []string, mode SearchMode, dir string) (*ExportSummary, error) {
	codes = CleanCodes(codes)
	rows, err := s.ImagesByCode(ctx, codes, mode)
	if err != nil {
		return nil, err
	}
	return writeImageFiles(dir, codes, rows, mode)
}

// imageHeaders returns the header row for the given mode.
func imageHeaders(mode SearchMode) []string {
	headers := []string{"ean"}
	if mode == ModeREF {
		headers = []string{"ref", "ean"}
	}
	for i := 1; i <= galleryPositions; i++ {
		headers = append(headers, fmt.Sprintf("image_%d", i))
	}
	return headers
}

func (r ImageRow) csvRow(mode SearchMode) []string {
	row := []string{r.EAN}
	if mode == ModeREF {
		row = []string{r.Ref, r.EAN}
	}
	return append(row, r.Images[:]...)
}

func emptyImageRow(code string, mode SearchMode) []string {
	row := make([]string, len(imageHeaders(mode)))
	row[0] = code
	return row
}

// writeImageFiles renders extraction results into the three bundle files.
func writeImageFiles(dir string, codes []string, rows []ImageRow, mode SearchMode) (*ExportSummary, error) {
	byCode := make(map[string][]ImageRow)
	for _, r := range rows {
		key := r.EAN
		if mode == ModeREF {
			key = r.Ref
		}
		byCode[key] = append(byCode[key], r)
	}

	headers := [][]string{imageHeaders(mode)}
	var all, found, notFound [][]string
	summary := &ExportSummary{TotalRows: len(rows)}

	for _, code := range codes {
		matches, ok := byCode[code]
		if !ok {
			row := emptyImageRow(code, mode)
			all = append(all, row)
			notFound = append(notFound, row)
			summary.NotFound++
			continue
		}
		summary.Found++
		for _, m := range matches {
			row := m.csvRow(mode)
			all = append(all, row)
			found = append(found, row)
		}
	}

	files := map[string][][]string{
		ImagesAll:      all,
		ImagesFound:    found,
		ImagesNotFound: notFound,
	}
	for name, fileRows := range files {
		if err := report.WriteCSV(filepath.Join(dir, name), headers, fileRows); err != nil {
			return nil, err
		}
	}
	return summary, nil
}
