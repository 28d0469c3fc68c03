package domain

import (
	taxdomain "github.com/smallbiznis/vitrine/internal/taxonomy/domain"
)

// SynonymTable maps normalized spelling variants to a canonical taxonomy
// name. Bump Version whenever entries change so reports stay traceable.
type SynonymTable struct {
	Version string
	entries map[string]string
}

func NewSynonymTable(version string, entries map[string]string) SynonymTable {
	normalized := make(map[string]string, len(entries))
	for variant, canonical := range entries {
		normalized[taxdomain.NormalizeName(variant)] = canonical
	}
	return SynonymTable{Version: version, entries: normalized}
}

// Canonical returns the canonical spelling for name, or name itself with
// whitespace collapsed when no synonym matches.
func (t SynonymTable) Canonical(name string) string {
	if canonical, ok := t.entries[taxdomain.NormalizeName(name)]; ok {
		return canonical
	}
	return collapseSpaces(name)
}

func (t SynonymTable) Len() int { return len(t.entries) }

var DefaultSynonyms = NewSynonymTable("2026.1", map[string]string{
	"ALIMENTATION":        "Alimentations",
	"ALIMENTATIONS PC":    "Alimentations",
	"BLOC ALIMENTATION":   "Alimentations",
	"PROCESSEUR":          "Processeurs",
	"CPU":                 "Processeurs",
	"CARTE MERE":          "Cartes mères",
	"CARTES MERE":         "Cartes mères",
	"CARTE GRAPHIQUE":     "Cartes graphiques",
	"GPU":                 "Cartes graphiques",
	"MEMOIRE":             "Mémoires RAM",
	"MEMOIRE RAM":         "Mémoires RAM",
	"RAM":                 "Mémoires RAM",
	"BOITIER":             "Boîtiers",
	"BOITIERS PC":         "Boîtiers",
	"ECRAN":               "Écrans",
	"MONITEUR":            "Écrans",
	"MONITEURS":           "Écrans",
	"CLAVIER":             "Claviers",
	"DISQUE DUR":          "Disques durs",
	"HDD":                 "Disques durs",
	"REFROIDISSEMENT CPU": "Refroidissement",
	"VENTILATEUR":         "Refroidissement",
	"COMPOSANT":           "Composants",
	"COMPOSANTS PC":       "Composants",
	"PERIPHERIQUE":        "Périphériques",
	"ACCESSOIRE":          "Accessoires",
	"RESEAUX":             "Réseau",
	"IMPRIMANTE":          "Imprimantes",
})
