package catalog

import (
	"strings"
	"testing"
)

func TestCharacteristicQuery_LikeLabels(t *testing.T) {
	q, args := characteristicQuery(capacitySpec)
	if strings.Count(q, "dk.valeur LIKE ?") != 4 {
		t.Errorf("expected 4 LIKE conditions, got:\n%s", q)
	}
	if len(args) != 4 || args[0] != "%capacité%" {
		t.Errorf("unexpected label args: %v", args)
	}
	if !strings.Contains(q, "dv.valeur != ''") {
		t.Errorf("spec without min length must still require non-empty values")
	}
	if !strings.Contains(q, "ORDER BY pgc.position LIMIT 1") {
		t.Errorf("expected first-by-position selection, got:\n%s", q)
	}
}

func TestCharacteristicQuery_ExactAndMinLen(t *testing.T) {
	q, args := characteristicQuery(colorSpec)
	if strings.Count(q, "dk.valeur = ?") != 2 {
		t.Errorf("expected 2 exact label conditions, got:\n%s", q)
	}
	if !strings.Contains(q, "LENGTH(dv.valeur) > ?") {
		t.Errorf("expected minimum value length bound, got:\n%s", q)
	}
	if len(args) != 2 {
		t.Errorf("unexpected label args: %v", args)
	}
}

func TestCharacteristicQuery_CompositionLimit(t *testing.T) {
	q, _ := characteristicQuery(compositionSpec)
	if !strings.Contains(q, "LIMIT 3") {
		t.Errorf("composition lookup must fetch up to 3 candidates, got:\n%s", q)
	}
}

func TestProductQueryShape(t *testing.T) {
	q, bind := productQuery("https://cdn.example/i", ModeEAN, 3)
	if !strings.Contains(q, "p.ean IN (?,?,?)") {
		t.Errorf("expected exact EAN match with 3 placeholders, got:\n%s", q)
	}
	args := bind([]string{"1", "2", "3"})
	if len(args) != 3 || args[0] != "1" {
		t.Errorf("unexpected EAN args: %v", args)
	}

	q, bind = productQuery("https://cdn.example/i", ModeREF, 2)
	if !strings.Contains(q, "p.ref LIKE ? OR p.ref LIKE ?") {
		t.Errorf("expected substring REF match, got:\n%s", q)
	}
	args = bind([]string{"AB"})
	if args[0] != "%AB%" {
		t.Errorf("REF args must be wrapped in wildcards: %v", args)
	}

	if strings.Count(q, "LEFT JOIN produits_gallery") != galleryPositions {
		t.Errorf("expected %d gallery joins", galleryPositions)
	}
}
