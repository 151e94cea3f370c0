package catalog

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteImageFiles_EAN(t *testing.T) {
	dir := t.TempDir()
	rows := []ImageRow{
		{EAN: "111", Images: [galleryPositions]string{"https://cdn.example/a.jpg"}},
	}

	summary, err := writeImageFiles(dir, []string{"111", "222"}, rows, ModeEAN)
	if err != nil {
		t.Fatalf("writeImageFiles failed: %v", err)
	}
	if summary.Found != 1 || summary.NotFound != 1 {
		t.Errorf("expected found=1 notFound=1, got %d/%d", summary.Found, summary.NotFound)
	}

	all := readCSV(t, filepath.Join(dir, ImagesAll))
	if len(all) != 3 {
		t.Fatalf("ALL: expected header + 2 rows, got %d", len(all))
	}
	if all[0][0] != "ean" || all[0][1] != "image_1" || len(all[0]) != 11 {
		t.Errorf("unexpected EAN header: %v", all[0])
	}
	if all[1][0] != "111" || all[1][1] != "https://cdn.example/a.jpg" {
		t.Errorf("unexpected matched row: %v", all[1])
	}
	if all[2][0] != "222" || all[2][1] != "" {
		t.Errorf("unexpected unmatched row: %v", all[2])
	}
}

func TestWriteImageFiles_REFHeader(t *testing.T) {
	dir := t.TempDir()
	rows := []ImageRow{
		{Ref: "AB-1", EAN: "111"},
		{Ref: "AB-1", EAN: "112"},
	}

	_, err := writeImageFiles(dir, []string{"AB-1"}, rows, ModeREF)
	if err != nil {
		t.Fatalf("writeImageFiles failed: %v", err)
	}

	found := readCSV(t, filepath.Join(dir, ImagesFound))
	if len(found[0]) != 12 || found[0][0] != "ref" || found[0][1] != "ean" {
		t.Errorf("unexpected REF header: %v", found[0])
	}
	// One reference with two product rows stays two rows.
	if len(found) != 3 {
		t.Errorf("expected 2 data rows for the reference, got %d", len(found)-1)
	}
}

func TestImageQueryShape(t *testing.T) {
	q := imageQuery("https://cdn.example/i", ModeEAN, 2)
	if !strings.Contains(q, "p.ean IN (?,?)") {
		t.Errorf("expected two placeholders, got:\n%s", q)
	}
	if !strings.Contains(q, "CONCAT('https://cdn.example/i/', g1.idimage, '.', g1.ext)") {
		t.Errorf("expected CDN URL construction for position 1, got:\n%s", q)
	}
	if strings.Count(q, "LEFT JOIN produits_gallery") != galleryPositions {
		t.Errorf("expected %d gallery joins", galleryPositions)
	}

	q = imageQuery("https://cdn.example/i", ModeREF, 1)
	if !strings.Contains(q, "p.ref IN (?)") || !strings.Contains(q, "p.ref, p.ean") {
		t.Errorf("unexpected REF query:\n%s", q)
	}
}
