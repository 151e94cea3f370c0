package catalog

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
)

// charSpec describes one characteristic lookup against the key/value
// dictionary tables: which localized labels identify the key, how long a
// value must be to count, how many candidates to fetch and the truncation
// budget applied to the winner.
type charSpec struct {
	labelsLike  []string // key label must contain one of these
	labelsExact []string // or equal one of these
	minLen      int      // minimum LENGTH(value), 0 for any non-null
	limit       int      // candidates fetched, ordered by position
	budget      int      // truncation budget in characters, 0 for none
}

var (
	capacitySpec    = charSpec{labelsLike: []string{"capacité", "capacity", "volume", "contenance"}, limit: 1}
	dlcSpec         = charSpec{labelsLike: []string{"DLC"}, limit: 1}
	ddmSpec         = charSpec{labelsLike: []string{"DDM", "durabilité"}, limit: 1}
	weightSpec      = charSpec{labelsLike: []string{"Poids"}, limit: 1}
	dimensionsSpec  = charSpec{labelsLike: []string{"Dimensions"}, limit: 1}
	motifSpec       = charSpec{labelsLike: []string{"Motif"}, limit: 1}
	ingredientsSpec = charSpec{labelsLike: []string{"ngrédient", "ngredient"}, labelsExact: []string{"Ingrédients", "Ingredients"}, minLen: 20, limit: 1, budget: 1000}
	colorSpec       = charSpec{labelsExact: []string{"Couleurs", "Couleur"}, minLen: 20, limit: 1, budget: 500}
	careAdviceSpec  = charSpec{labelsExact: []string{"Conseil d'entretien"}, minLen: 10, limit: 1, budget: 500}
	compositionSpec = charSpec{labelsLike: []string{"Composition"}, minLen: 5, limit: 3, budget: 200}
)

// characteristicQuery builds the dictionary-join lookup for a spec and the
// label arguments it binds. The caller prepends the group ID and appends the
// minimum-length bound when the spec has one.
func characteristicQuery(spec charSpec) (string, []any) {
	var conds []string
	var labelArgs []any

	for _, label := range spec.labelsExact {
		conds = append(conds, "dk.valeur = ?")
		labelArgs = append(labelArgs, label)
	}
	for _, label := range spec.labelsLike {
		conds = append(conds, "dk.valeur LIKE ?")
		labelArgs = append(labelArgs, "%"+label+"%")
	}

	var b strings.Builder
	b.WriteString(`SELECT dv.valeur FROM produits_group_caracteristiques pgc
JOIN caracteristiques c ON pgc.idcaracteristique = c.idcaracteristique
JOIN dictionnaires_langues dk ON c.iddictionnaire_cle = dk.iddictionnaire
JOIN dictionnaires_langues dv ON c.iddictionnaire_valeur = dv.iddictionnaire
WHERE pgc.idproduit_group = ? AND pgc.status = 'on' AND c.status = 'on'
  AND (`)
	b.WriteString(strings.Join(conds, " OR "))
	b.WriteString(`)
  AND dv.valeur IS NOT NULL`)
	if spec.minLen > 0 {
		b.WriteString(" AND LENGTH(dv.valeur) > ?")
	} else {
		b.WriteString(" AND dv.valeur != ''")
	}
	b.WriteString(`
ORDER BY pgc.position LIMIT `)
	b.WriteString(limitLiteral(spec.limit))

	return b.String(), labelArgs
}

func limitLiteral(n int) string {
	switch n {
	case 3:
		return "3"
	default:
		return "1"
	}
}

// characteristic returns the candidate values for one spec, truncated to the
// spec's budget. Lookup failures are best-effort: the export never fails
// because a characteristic couldn't be resolved, it just stays empty.
func (s *Store) characteristic(ctx context.Context, groupID int64, spec charSpec) []string {
	if groupID == 0 {
		return nil
	}

	query, labelArgs := characteristicQuery(spec)
	args := append([]any{groupID}, labelArgs...)
	if spec.minLen > 0 {
		args = append(args, spec.minLen)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Debug("characteristic lookup failed", "group_id", groupID, "error", err)
		return nil
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			slog.Debug("characteristic scan failed", "group_id", groupID, "error", err)
			return values
		}
		if v.Valid {
			values = append(values, truncate(v.String, spec.budget))
		}
	}
	return values
}

// first returns the winning candidate of a lookup, or empty.
func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// enrich fills the characteristic-backed fields of a product. Products
// without a group carry no characteristics.
func (s *Store) enrich(ctx context.Context, p *Product) {
	if p.GroupID == 0 {
		return
	}

	p.Capacity = first(s.characteristic(ctx, p.GroupID, capacitySpec))
	p.Dimensions = first(s.characteristic(ctx, p.GroupID, dimensionsSpec))
	p.NetWeight = first(s.characteristic(ctx, p.GroupID, weightSpec))
	p.Color = first(s.characteristic(ctx, p.GroupID, colorSpec))
	p.Motif = first(s.characteristic(ctx, p.GroupID, motifSpec))
	p.DLC = first(s.characteristic(ctx, p.GroupID, dlcSpec))
	p.DDM = first(s.characteristic(ctx, p.GroupID, ddmSpec))
	p.Ingredients = first(s.characteristic(ctx, p.GroupID, ingredientsSpec))
	p.CareAdvice = first(s.characteristic(ctx, p.GroupID, careAdviceSpec))

	compositions := s.characteristic(ctx, p.GroupID, compositionSpec)
	for i := 0; i < len(p.Composition) && i < len(compositions); i++ {
		p.Composition[i] = compositions[i]
	}
}
