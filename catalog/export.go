package catalog

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/franksops/pixport/report"
)

// Export file names inside a bundle directory.
const (
	FileAll      = "ALL_products.csv"
	FileFound    = "FOUND_products.csv"
	FileNotFound = "NOT_FOUND_products.csv"
)

// ExportSummary reports how a code-list export went.
type ExportSummary struct {
	Found     int `json:"found"`
	NotFound  int `json:"not_found"`
	TotalRows int `json:"total_rows"`
}

// ExportComprehensive searches the given codes and writes the three export
// files into dir: ALL (one entry per searched code, found or empty), FOUND
// (matched codes only, possibly several rows per code) and NOT_FOUND (empty
// rows carrying the unmatched codes).
func (s *Store) ExportComprehensive(ctx context.Context, codes []string, mode SearchMode, dir string) (*ExportSummary, error) {
	codes = CleanCodes(codes)
	products, err := s.SearchProducts(ctx, codes, mode)
	if err != nil {
		return nil, err
	}
	return writeExportFiles(dir, codes, products, mode)
}

// groupProducts indexes result rows by the searched code they satisfy. EAN
// rows group under their exact EAN; REF rows group under every input code
// that contains, or is contained in, the row's reference.
func groupProducts(products []Product, codes []string, mode SearchMode) map[string][]Product {
	grouped := make(map[string][]Product)
	for _, p := range products {
		if mode == ModeEAN {
			grouped[p.EAN] = append(grouped[p.EAN], p)
			continue
		}
		for _, code := range codes {
			if refMatches(code, p.ShopSKU) {
				grouped[code] = append(grouped[code], p)
			}
		}
	}
	return grouped
}

// refMatches implements the historical REF matching rule: bidirectional
// substring containment, case-insensitive. "100" matches "1005" and vice
// versa; kept as documented behavior.
func refMatches(input, candidate string) bool {
	in, cand := strings.ToLower(input), strings.ToLower(candidate)
	return strings.Contains(cand, in) || strings.Contains(in, cand)
}

// writeExportFiles renders the grouped results into the three bundle files.
func writeExportFiles(dir string, codes []string, products []Product, mode SearchMode) (*ExportSummary, error) {
	grouped := groupProducts(products, codes, mode)
	headers := [][]string{displayHeaders, technicalMappings}

	var all, found, notFound [][]string
	summary := &ExportSummary{TotalRows: len(products)}

	for _, code := range codes {
		matches, ok := grouped[code]
		if !ok {
			row := emptyRow(code, mode)
			all = append(all, row)
			notFound = append(notFound, row)
			summary.NotFound++
			continue
		}
		summary.Found++
		for i := range matches {
			row := matches[i].Row()
			all = append(all, row)
			found = append(found, row)
		}
	}

	files := map[string][][]string{
		FileAll:      all,
		FileFound:    found,
		FileNotFound: notFound,
	}
	for name, rows := range files {
		if err := report.WriteCSV(filepath.Join(dir, name), headers, rows); err != nil {
			return nil, err
		}
	}
	return summary, nil
}
