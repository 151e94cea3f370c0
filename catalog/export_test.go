package catalog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

func TestWriteExportFiles_EANSplit(t *testing.T) {
	// Searching two EAN codes where only the first matches a product.
	dir := t.TempDir()
	products := []Product{
		{ShopSKU: "SKU-1", Title: "Carafe", EAN: "111"},
	}

	summary, err := writeExportFiles(dir, []string{"111", "222"}, products, ModeEAN)
	if err != nil {
		t.Fatalf("writeExportFiles failed: %v", err)
	}
	if summary.Found != 1 || summary.NotFound != 1 {
		t.Errorf("expected found=1 notFound=1, got %d/%d", summary.Found, summary.NotFound)
	}

	all := readCSV(t, filepath.Join(dir, FileAll))
	// 2 header rows + one populated row + one empty row.
	if len(all) != 4 {
		t.Fatalf("ALL: expected 4 records, got %d", len(all))
	}
	if all[0][1] != "Shop sku" || all[1][1] != "shop_sku" {
		t.Errorf("ALL: expected display + technical header rows, got %v / %v", all[0][:3], all[1][:3])
	}
	if all[2][eanColumn] != "111" || all[2][1] != "SKU-1" {
		t.Errorf("ALL: unexpected matched row: %v", all[2])
	}
	if all[3][eanColumn] != "222" || all[3][1] != "" {
		t.Errorf("ALL: unmatched code must appear as empty row with EAN set: %v", all[3])
	}

	found := readCSV(t, filepath.Join(dir, FileFound))
	if len(found) != 3 || found[2][eanColumn] != "111" {
		t.Errorf("FOUND: expected only the matched row, got %v", found)
	}

	notFound := readCSV(t, filepath.Join(dir, FileNotFound))
	if len(notFound) != 3 || notFound[2][eanColumn] != "222" {
		t.Errorf("NOT_FOUND: expected only the unmatched code, got %v", notFound)
	}
}

func TestWriteExportFiles_REFMultipleRowsPerCode(t *testing.T) {
	dir := t.TempDir()
	products := []Product{
		{ShopSKU: "AB-100", EAN: "1"},
		{ShopSKU: "AB-100-BIS", EAN: "2"},
		{ShopSKU: "CD-200", EAN: "3"},
	}

	summary, err := writeExportFiles(dir, []string{"AB-100", "ZZ-999"}, products, ModeREF)
	if err != nil {
		t.Fatalf("writeExportFiles failed: %v", err)
	}
	if summary.Found != 1 || summary.NotFound != 1 {
		t.Errorf("expected found=1 notFound=1, got %d/%d", summary.Found, summary.NotFound)
	}

	found := readCSV(t, filepath.Join(dir, FileFound))
	// Both AB-100 products match the one searched reference.
	if len(found) != 4 {
		t.Fatalf("FOUND: expected 2 data rows, got %d records", len(found))
	}

	notFound := readCSV(t, filepath.Join(dir, FileNotFound))
	if len(notFound) != 3 || notFound[2][skuColumn] != "ZZ-999" {
		t.Errorf("NOT_FOUND: expected the unmatched reference, got %v", notFound)
	}
}

func TestGroupProducts_REFBidirectional(t *testing.T) {
	products := []Product{{ShopSKU: "1005", EAN: "x"}}
	grouped := groupProducts(products, []string{"100"}, ModeREF)
	if len(grouped["100"]) != 1 {
		t.Errorf("input contained in candidate must match")
	}

	products = []Product{{ShopSKU: "100", EAN: "x"}}
	grouped = groupProducts(products, []string{"1005"}, ModeREF)
	if len(grouped["1005"]) != 1 {
		t.Errorf("candidate contained in input must match")
	}
}
