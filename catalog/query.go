package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// galleryJoins builds the LEFT JOINs denormalizing the gallery positions
// into one row.
func galleryJoins() string {
	var b strings.Builder
	for i := 0; i < galleryPositions; i++ {
		fmt.Fprintf(&b, `
LEFT JOIN produits_gallery g%d ON p.idproduit_group = g%d.idproduit_group AND g%d.position = %d AND g%d.status = 'on'`,
			i+1, i+1, i+1, i, i+1)
	}
	return b.String()
}

// galleryColumns builds the CASE expressions turning each gallery slot into
// a CDN URL, empty when the slot is unused.
func galleryColumns(cdnBase string) string {
	var cols []string
	for i := 1; i <= galleryPositions; i++ {
		cols = append(cols, fmt.Sprintf(
			`CASE WHEN g%d.idimage IS NOT NULL THEN CONCAT('%s/', g%d.idimage, '.', g%d.ext) ELSE '' END`,
			i, cdnBase, i, i))
	}
	return strings.Join(cols, ",\n  ")
}

// productQuery builds the comprehensive search query. EAN codes match
// exactly; REF codes match by substring.
func productQuery(cdnBase string, mode SearchMode, count int) (string, func(codes []string) []any) {
	var b strings.Builder
	b.WriteString(`SELECT
  p.ref,
  CASE
    WHEN p.nom_fr != '' AND p.nom_fr IS NOT NULL THEN p.nom_fr
    WHEN p.keywords != '' AND p.keywords IS NOT NULL THEN p.keywords
    ELSE CONCAT('Produit ', p.idproduit)
  END,
  COALESCE(p.marque_fr, 'Marque inconnue'),
  COALESCE(p.description_fr, ''),
  COALESCE(p.ean, ''),
  `)
	b.WriteString(galleryColumns(cdnBase))
	b.WriteString(`,
  CASE WHEN p.idproduit_group > 0 THEN 'Oui' ELSE 'Non' END,
  COALESCE(p.idproduit_group, 0),
  CASE WHEN p.virtuel = 'oui' THEN 'Service' ELSE 'Produit' END,
  COALESCE(p.poids, 0),
  CASE
    WHEN p.cols IN ('T.U.', 'T.U') THEN 'Taille Unique'
    WHEN p.cols LIKE 'T.%' THEN SUBSTRING(p.cols, 3)
    WHEN p.cols IS NULL OR p.cols = '' THEN ''
    ELSE p.cols
  END
FROM produits_view3 p`)
	b.WriteString(galleryJoins())
	b.WriteString(`
WHERE p.status = 'on'`)

	if mode == ModeEAN {
		b.WriteString(" AND p.ean IN (")
		b.WriteString(placeholders(count))
		b.WriteString(")")
		return b.String(), func(codes []string) []any {
			args := make([]any, len(codes))
			for i, c := range codes {
				args[i] = c
			}
			return args
		}
	}

	conds := make([]string, count)
	for i := range conds {
		conds[i] = "p.ref LIKE ?"
	}
	b.WriteString(" AND (")
	b.WriteString(strings.Join(conds, " OR "))
	b.WriteString(")")
	return b.String(), func(codes []string) []any {
		args := make([]any, len(codes))
		for i, c := range codes {
			args[i] = "%" + c + "%"
		}
		return args
	}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// SearchProducts runs the comprehensive query for the given codes and
// enriches every row with its characteristic lookups.
func (s *Store) SearchProducts(ctx context.Context, codes []string, mode SearchMode) ([]Product, error) {
	codes = CleanCodes(codes)
	if len(codes) == 0 {
		return nil, fmt.Errorf("no valid %s codes provided", mode)
	}

	query, bind := productQuery(s.cdnBase, mode, len(codes))
	rows, err := s.db.QueryContext(ctx, query, bind(codes)...)
	if err != nil {
		return nil, fmt.Errorf("product search failed: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range products {
		s.enrich(ctx, &products[i])
	}
	return products, nil
}

func scanProduct(rows *sql.Rows) (*Product, error) {
	var p Product
	var parcelWeight float64

	dest := []any{&p.ShopSKU, &p.Title, &p.Brand, &p.Description, &p.EAN}
	for i := range p.Images {
		dest = append(dest, &p.Images[i])
	}
	dest = append(dest, &p.IsParent, &p.GroupID, &p.ProductOrService, &parcelWeight, &p.Size)

	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("failed to scan product row: %w", err)
	}
	p.ParcelWeight = fmt.Sprintf("%g", parcelWeight)
	return &p, nil
}

// CleanCodes trims the input list and drops empty entries.
func CleanCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
