package catalog

import (
	"html"
	"regexp"
	"strings"
)

// SearchMode selects which product code the catalog is searched by.
type SearchMode string

const (
	// ModeEAN matches the EAN barcode exactly.
	ModeEAN SearchMode = "ean"
	// ModeREF matches the shop reference by substring containment, in both
	// directions. That looseness is long-standing documented behavior.
	ModeREF SearchMode = "ref"
)

// galleryPositions is how many gallery slots are denormalized into one
// export row.
const galleryPositions = 10

// Product is one flat export row, read from the denormalizing catalog query
// and enriched with characteristic lookups. Fields not backed by the catalog
// stay empty in the export.
type Product struct {
	ShopSKU     string
	Title       string
	Brand       string
	Description string
	EAN         string
	Color       string
	Images      [galleryPositions]string
	IsParent    string
	GroupID     int64

	Composition [3]string
	CareAdvice  string
	Capacity    string
	Dimensions  string
	DLC         string
	DDM         string
	Ingredients string
	NetWeight   string
	Motif       string

	ProductOrService string
	ParcelWeight     string
	Size             string
}

// displayHeaders is the human-readable header row of the catalog export,
// kept byte-for-byte stable for the downstream marketplace import.
var displayHeaders = []string{
	"Category", "Shop sku", "Titre du produit", "Marque", "Description Longue",
	"EAN", "Couleur commercial", "Image principale", "image secondaire",
	"Image 3", "Image 4", "Image 5", "Image 6", "Image 7", "Image 8",
	"Image 9", "Image_10", "Produit Parent (identification)", "Id de rattachement",
	"Composition 1", "Composition 2", "Composition 3", "Conseil d'entretien",
	"Capacité", "Dimensions", "DLC (Date limite de consommation)",
	"DDM (Date de durabilité minimale)", "Ingrédients", "Poids net du produit",
	"Motif", "Garantie commerciale", "Eco-responsable", "Métrage ? (oui /non)",
	"Produit ou Service", "BZC ( à ne pas remplir )", "Poids du colis (kg)", "Taille unique",
}

// technicalMappings is the machine-stable field-key row written immediately
// under displayHeaders.
var technicalMappings = []string{
	"family_id", "shop_sku", "name", "brand_id", "description",
	"ean", "technical_spec_1_color", "media_1", "media_2",
	"media_3", "media_4", "media_5", "media_6", "media_7", "media_8",
	"media_9", "media_10", "is_parent", "variant_group_code",
	"technical_spec_1_composition", "technical_spec_2_composition", "technical_spec_3_composition", "technical_spec_1_care_advice",
	"technical_spec_1_capacity", "technical_spec_1_dimensions", "technical_spec_1_expiration_date",
	"technical_spec_1_durability_date", "technical_spec_1_ingredients", "technical_spec_1_net_weight",
	"technical_spec_1_pattern", "technical_spec_1_commercial_warranty", "technical_spec_1_eco_responsibility", "is_cloth",
	"is_virtual", "is_bzc", "weight", "size_id",
}

// columns the EAN/REF code lands in when a searched code has no match.
var (
	eanColumn = indexOf(displayHeaders, "EAN")
	skuColumn = indexOf(displayHeaders, "Shop sku")
)

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Row renders the product as one export record, column order matching
// displayHeaders.
func (p *Product) Row() []string {
	return []string{
		"", // Category left blank for the importer
		p.ShopSKU,
		p.Title,
		p.Brand,
		cleanHTML(p.Description),
		p.EAN,
		p.Color,
		p.Images[0], p.Images[1], p.Images[2], p.Images[3], p.Images[4],
		p.Images[5], p.Images[6], p.Images[7], p.Images[8], p.Images[9],
		p.IsParent,
		"", // Id de rattachement
		p.Composition[0], p.Composition[1], p.Composition[2],
		p.CareAdvice,
		p.Capacity,
		p.Dimensions,
		p.DLC,
		p.DDM,
		p.Ingredients,
		p.NetWeight,
		p.Motif,
		"",    // Garantie commerciale
		"Non", // Eco-responsable
		"Non", // Métrage
		p.ProductOrService,
		"", // BZC
		p.ParcelWeight,
		p.Size,
	}
}

// emptyRow is the record written for a searched code with no match: blank
// cells with the code placed in its search column.
func emptyRow(code string, mode SearchMode) []string {
	row := make([]string, len(displayHeaders))
	if mode == ModeEAN {
		row[eanColumn] = code
	} else {
		row[skuColumn] = code
	}
	return row
}

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// cleanHTML strips markup and decodes entities out of rich-text catalog
// values, collapsing the leftover whitespace.
func cleanHTML(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	clean := htmlTagRe.ReplaceAllString(text, "")
	clean = html.UnescapeString(clean)
	return strings.Join(strings.Fields(clean), " ")
}

// truncate flattens line breaks out of value and shortens it to budget
// characters with an ellipsis marker. A zero budget means the value is only
// trimmed, never flattened or shortened.
func truncate(value string, budget int) string {
	value = strings.TrimSpace(value)
	if budget == 0 {
		return value
	}
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "  ", " ")
	if runes := []rune(value); len(runes) > budget {
		return string(runes[:budget]) + "..."
	}
	return value
}
