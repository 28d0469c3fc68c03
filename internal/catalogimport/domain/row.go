package domain

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	productdomain "github.com/smallbiznis/vitrine/internal/product/domain"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical column names. Source headers are mapped onto these through
// headerAliases.
const (
	ColReference       = "reference"
	ColName            = "name"
	ColCategory        = "category"
	ColSubCategory     = "subcategory"
	ColPrice           = "price"
	ColQuantity        = "quantity"
	ColDescription     = "description"
	ColBrand           = "brand"
	ColType            = "type"
	ColCollection      = "collection"
	ColDiscountPrice   = "discount_price"
	ColWeight          = "weight"
	ColWarranty        = "warranty"
	ColMetaTitle       = "meta_title"
	ColMetaDescription = "meta_description"
	ColCharacteristics = "caracteristiques"
	ColImage           = "image"
	ColIsBestseller    = "is_bestseller"
	ColIsFeatured      = "is_featured"
	ColIsNew           = "is_new"
	ColShowInAdSlider  = "show_in_ad_slider"
	ColStatus          = "status"
)

var headerAliases = buildAliases(map[string][]string{
	ColReference:       {"ref", "reference_produit", "sku", "code"},
	ColName:            {"nom", "designation", "libelle", "product_name", "nom_produit"},
	ColCategory:        {"categorie", "category_name", "famille"},
	ColSubCategory:     {"sous_categorie", "souscategorie", "sub_category", "subcategory_name", "sous_famille"},
	ColPrice:           {"prix", "prix_vente", "pu"},
	ColQuantity:        {"quantite", "qte", "qty", "stock"},
	ColDescription:     {"desc"},
	ColBrand:           {"marque", "brand_name"},
	ColType:            {"type_name", "modele"},
	ColCollection:      {"collection_name"},
	ColDiscountPrice:   {"prix_promo", "prix_remise", "promo"},
	ColWeight:          {"poids"},
	ColWarranty:        {"garantie"},
	ColMetaTitle:       {"titre_seo"},
	ColMetaDescription: {"description_seo"},
	ColCharacteristics: {"characteristics", "specs", "fiche_technique"},
	ColImage:           {"image_url", "photo"},
	ColIsBestseller:    {"bestseller", "meilleure_vente"},
	ColIsFeatured:      {"featured", "vedette"},
	ColIsNew:           {"new", "nouveau"},
	ColShowInAdSlider:  {"ad_slider", "slider"},
	ColStatus:          {"statut", "etat"},
})

func buildAliases(aliases map[string][]string) map[string]string {
	out := make(map[string]string)
	for canonical, names := range aliases {
		out[canonical] = canonical
		for _, name := range names {
			out[name] = canonical
		}
	}
	return out
}

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func fold(value string) string {
	folded, _, err := transform.String(foldAccents, value)
	if err != nil {
		return value
	}
	return folded
}

// CanonicalHeader maps a source column title to a canonical column name.
// Unknown headers come back normalized but otherwise unchanged.
func CanonicalHeader(header string) string {
	key := strings.ToLower(fold(strings.TrimSpace(header)))
	key = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '/':
			return '_'
		}
		return r
	}, key)
	key = strings.Trim(key, "_")
	for strings.Contains(key, "__") {
		key = strings.ReplaceAll(key, "__", "_")
	}
	if canonical, ok := headerAliases[key]; ok {
		return canonical
	}
	return key
}

// RawRow is one source record keyed by canonical column name. Number is the
// 1-based line or sheet row, header included.
type RawRow struct {
	Number int
	Cells  map[string]string
}

func (r RawRow) value(col string) string {
	v := strings.TrimSpace(r.Cells[col])
	if isPlaceholder(v) {
		return ""
	}
	return v
}

// Blank reports whether every cell is empty or a placeholder.
func (r RawRow) Blank() bool {
	for col := range r.Cells {
		if r.value(col) != "" {
			return false
		}
	}
	return true
}

// Record is a fully validated import row.
type Record struct {
	Row             int
	Reference       string
	Name            string
	Category        string
	SubCategory     string
	Price           decimal.Decimal
	Quantity        int
	Description     string
	Brand           string
	Type            string
	Collection      string
	DiscountPrice   decimal.NullDecimal
	Weight          string
	Warranty        string
	MetaTitle       string
	MetaDescription string
	Characteristics string
	Image           string
	IsBestseller    *bool
	IsFeatured      *bool
	IsNew           *bool
	ShowInAdSlider  *bool
	// Status is empty when the source leaves it unset.
	Status productdomain.Status
}

type Rejection struct {
	Row       int
	Reference string
	Reason    string
}

func (r Rejection) Error() string {
	return fmt.Sprintf("row %d: %s", r.Row, r.Reason)
}

// RowResult holds exactly one of Record or Rejection.
type RowResult struct {
	Record    *Record
	Rejection *Rejection
}

func (r RowResult) OK() bool { return r.Record != nil }

func reject(raw RawRow, format string, args ...any) RowResult {
	return RowResult{Rejection: &Rejection{
		Row:       raw.Number,
		Reference: raw.value(ColReference),
		Reason:    fmt.Sprintf(format, args...),
	}}
}

// ParseRow validates a raw row into a Record or explains why it cannot be imported.
func ParseRow(raw RawRow) RowResult {
	rec := &Record{
		Row:             raw.Number,
		Reference:       raw.value(ColReference),
		Name:            collapseSpaces(raw.value(ColName)),
		Category:        collapseSpaces(raw.value(ColCategory)),
		SubCategory:     collapseSpaces(raw.value(ColSubCategory)),
		Description:     raw.value(ColDescription),
		Brand:           collapseSpaces(raw.value(ColBrand)),
		Type:            collapseSpaces(raw.value(ColType)),
		Collection:      collapseSpaces(raw.value(ColCollection)),
		Weight:          raw.value(ColWeight),
		Warranty:        raw.value(ColWarranty),
		MetaTitle:       raw.value(ColMetaTitle),
		MetaDescription: raw.value(ColMetaDescription),
		Characteristics: raw.value(ColCharacteristics),
		Image:           raw.value(ColImage),
	}

	for _, required := range []struct{ col, value string }{
		{ColReference, rec.Reference},
		{ColName, rec.Name},
		{ColCategory, rec.Category},
		{ColSubCategory, rec.SubCategory},
	} {
		if required.value == "" {
			return reject(raw, "missing %s", required.col)
		}
	}

	if raw.value(ColPrice) == "" {
		return reject(raw, "missing %s", ColPrice)
	}
	price, err := ParsePrice(raw.value(ColPrice))
	if err != nil {
		return reject(raw, "invalid price %q", raw.Cells[ColPrice])
	}
	rec.Price = price

	if raw.value(ColQuantity) == "" {
		return reject(raw, "missing %s", ColQuantity)
	}
	quantity, err := ParseQuantity(raw.value(ColQuantity))
	if err != nil {
		return reject(raw, "invalid quantity %q", raw.Cells[ColQuantity])
	}
	rec.Quantity = quantity

	if text := raw.value(ColDiscountPrice); text != "" {
		discount, err := ParsePrice(text)
		if err != nil {
			return reject(raw, "invalid discount_price %q", text)
		}
		if !discount.IsZero() {
			rec.DiscountPrice = decimal.NullDecimal{Decimal: discount, Valid: true}
		}
	}

	for _, flag := range []struct {
		col    string
		target **bool
	}{
		{ColIsBestseller, &rec.IsBestseller},
		{ColIsFeatured, &rec.IsFeatured},
		{ColIsNew, &rec.IsNew},
		{ColShowInAdSlider, &rec.ShowInAdSlider},
	} {
		text := raw.value(flag.col)
		if text == "" {
			continue
		}
		value, err := ParseBool(text)
		if err != nil {
			return reject(raw, "invalid %s %q", flag.col, text)
		}
		*flag.target = &value
	}

	if text := raw.value(ColStatus); text != "" {
		status, err := ParseStatus(text)
		if err != nil {
			return reject(raw, "invalid status %q", text)
		}
		rec.Status = status
	}

	return RowResult{Record: rec}
}

func collapseSpaces(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
