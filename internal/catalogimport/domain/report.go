package domain

import (
	"sort"
	"time"
)

type RowError struct {
	Row       int    `json:"row"`
	Reference string `json:"reference,omitempty"`
	Reason    string `json:"reason"`
}

// Report summarizes one import. Skipped counts every row listed in Errors.
// A dry run still lists the taxonomy names it would have created.
type Report struct {
	RunID                string     `json:"run_id,omitempty"`
	Source               string     `json:"source"`
	Mode                 Mode       `json:"mode"`
	DryRun               bool       `json:"dry_run"`
	SynonymVersion       string     `json:"synonym_version"`
	TotalRows            int        `json:"total_rows"`
	Created              int        `json:"created"`
	Updated              int        `json:"updated"`
	Skipped              int        `json:"skipped"`
	Errors               []RowError `json:"errors"`
	CreatedCategories    []string   `json:"created_categories"`
	CreatedSubCategories []string   `json:"created_subcategories"`
	CreatedBrands        []string   `json:"created_brands"`
	CreatedTypes         []string   `json:"created_types"`
	CreatedCollections   []string   `json:"created_collections"`
	StartedAt            time.Time  `json:"started_at"`
	FinishedAt           time.Time  `json:"finished_at"`
}

func NewReport(source string, mode Mode, dryRun bool, synonymVersion string) *Report {
	return &Report{
		Source:               source,
		Mode:                 mode,
		DryRun:               dryRun,
		SynonymVersion:       synonymVersion,
		Errors:               []RowError{},
		CreatedCategories:    []string{},
		CreatedSubCategories: []string{},
		CreatedBrands:        []string{},
		CreatedTypes:         []string{},
		CreatedCollections:   []string{},
	}
}

func (r *Report) Reject(row int, reference, reason string) {
	r.Skipped++
	r.Errors = append(r.Errors, RowError{Row: row, Reference: reference, Reason: reason})
}

// Sort orders the created-name lists for stable output.
func (r *Report) Sort() {
	for _, names := range [][]string{
		r.CreatedCategories, r.CreatedSubCategories, r.CreatedBrands,
		r.CreatedTypes, r.CreatedCollections,
	} {
		sort.Strings(names)
	}
}
