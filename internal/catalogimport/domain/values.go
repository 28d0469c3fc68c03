package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	productdomain "github.com/smallbiznis/vitrine/internal/product/domain"
)

var (
	errEmptyValue   = errors.New("empty value")
	errInvalidValue = errors.New("invalid value")
)

var placeholders = map[string]bool{
	"":      true,
	"nan":   true,
	"none":  true,
	"null":  true,
	"n/a":   true,
	"na":    true,
	"#n/a":  true,
	"-":     true,
	"--":    true,
	"undef": true,
}

func isPlaceholder(value string) bool {
	return placeholders[strings.ToLower(strings.TrimSpace(value))]
}

var currencyTokens = []string{"dzd", "da", "eur", "€"}

// ParsePrice accepts "1000", "1000.50", "1 000,50", "1,000.50" and
// "1.000,50" with an optional currency token. A single separator followed by
// exactly three digits groups thousands, so "12.500 DA" is 12500. Negative
// amounts are rejected.
func ParsePrice(text string) (decimal.Decimal, error) {
	cleaned := strings.ToLower(strings.TrimSpace(text))
	for _, token := range currencyTokens {
		cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, token))
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, token))
	}
	cleaned = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\'':
			return -1
		}
		return r
	}, cleaned)
	if cleaned == "" {
		return decimal.Zero, errEmptyValue
	}

	cleaned = normalizeSeparators(cleaned)
	value, err := decimal.NewFromString(cleaned)
	if err != nil || value.IsNegative() {
		return decimal.Zero, errInvalidValue
	}
	return value.Round(2), nil
}

// normalizeSeparators rewrites a number to use "." as the only decimal
// separator. When both separators appear, the last one is the decimal point.
func normalizeSeparators(value string) string {
	comma := strings.LastIndex(value, ",")
	dot := strings.LastIndex(value, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			return strings.Replace(strings.ReplaceAll(value, ".", ""), ",", ".", 1)
		}
		return strings.ReplaceAll(value, ",", "")
	case comma >= 0:
		if strings.Count(value, ",") > 1 || groupsThousands(value, comma) {
			return strings.ReplaceAll(value, ",", "")
		}
		return strings.Replace(value, ",", ".", 1)
	case dot >= 0:
		if strings.Count(value, ".") > 1 || groupsThousands(value, dot) {
			return strings.ReplaceAll(value, ".", "")
		}
	}
	return value
}

// groupsThousands reports whether a lone separator at sep splits off exactly
// three digits after a non-zero integer part, as in "12.500" or "1,000".
func groupsThousands(value string, sep int) bool {
	whole, frac := value[:sep], value[sep+1:]
	if len(frac) != 3 || whole == "" || strings.TrimLeft(whole, "0") == "" {
		return false
	}
	return len(whole) <= 3
}

// ParseQuantity accepts whole non-negative numbers, including "5.0".
func ParseQuantity(text string) (int, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, strings.TrimSpace(text))
	if cleaned == "" {
		return 0, errEmptyValue
	}
	value, err := decimal.NewFromString(strings.Replace(cleaned, ",", ".", 1))
	if err != nil || value.IsNegative() || !value.Equal(value.Truncate(0)) {
		return 0, errInvalidValue
	}
	if !value.LessThan(decimal.NewFromInt(1 << 31)) {
		return 0, errInvalidValue
	}
	return int(value.IntPart()), nil
}

func ParseBool(text string) (bool, error) {
	switch strings.ToLower(fold(strings.TrimSpace(text))) {
	case "1", "true", "yes", "y", "oui", "o", "vrai", "x":
		return true, nil
	case "0", "false", "no", "n", "non", "faux":
		return false, nil
	}
	return false, errInvalidValue
}

var statusAliases = map[string]productdomain.Status{
	"in_stock":         productdomain.StatusInStock,
	"en_stock":         productdomain.StatusInStock,
	"disponible":       productdomain.StatusInStock,
	"out_of_stock":     productdomain.StatusOutOfStock,
	"rupture":          productdomain.StatusOutOfStock,
	"rupture_de_stock": productdomain.StatusOutOfStock,
	"epuise":           productdomain.StatusOutOfStock,
	"indisponible":     productdomain.StatusOutOfStock,
	"preorder":         productdomain.StatusPreorder,
	"precommande":      productdomain.StatusPreorder,
	"sur_commande":     productdomain.StatusPreorder,
	"discontinued":     productdomain.StatusDiscontinued,
	"arrete":           productdomain.StatusDiscontinued,
	"fin_de_serie":     productdomain.StatusDiscontinued,
}

func ParseStatus(text string) (productdomain.Status, error) {
	key := strings.ToLower(fold(collapseSpaces(text)))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if status, ok := statusAliases[key]; ok {
		return status, nil
	}
	return "", errInvalidValue
}
