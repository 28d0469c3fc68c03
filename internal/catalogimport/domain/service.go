package domain

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/smallbiznis/vitrine/pkg/db/pagination"
)

type Mode string

const (
	// ModeStrict rejects rows whose category or subcategory does not exist.
	ModeStrict Mode = "strict"
	// ModePermissive creates missing categories and subcategories.
	ModePermissive Mode = "permissive"
)

func ParseMode(value string) (Mode, error) {
	switch mode := Mode(strings.ToLower(strings.TrimSpace(value))); mode {
	case ModeStrict, ModePermissive:
		return mode, nil
	}
	return "", ErrInvalidMode
}

type Service interface {
	// Import reads a spreadsheet, CSV or SQL dump and reconciles its rows.
	Import(ctx context.Context, req ImportRequest) (*Report, error)
	// Reconcile upserts already-read rows by reference.
	Reconcile(ctx context.Context, opts Options, rows []RawRow) (*Report, error)
	ListRuns(ctx context.Context, page pagination.Pagination) (*RunListResponse, error)
	GetRun(ctx context.Context, id string) (*RunResponse, error)
}

type Options struct {
	Source    string
	Mode      Mode
	DryRun    bool
	StartedBy string
}

type ImportRequest struct {
	Options
	// Filename selects the reader by extension (.xlsx, .csv, .sql).
	Filename string
	Content  io.Reader
	// Sheet names the worksheet to read; empty means the first sheet.
	Sheet string
}

type RunResponse struct {
	ID          string          `json:"id"`
	Source      string          `json:"source"`
	Mode        Mode            `json:"mode"`
	DryRun      bool            `json:"dry_run"`
	TotalRows   int             `json:"total_rows"`
	CreatedRows int             `json:"created"`
	UpdatedRows int             `json:"updated"`
	SkippedRows int             `json:"skipped"`
	StartedBy   *string         `json:"started_by"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
	Report      json.RawMessage `json:"report,omitempty"`
}

type RunListResponse struct {
	pagination.PageInfo
	Results []RunResponse `json:"results"`
}

var (
	ErrInvalidMode       = errors.New("invalid_import_mode")
	ErrUnsupportedFormat = errors.New("unsupported_import_format")
	ErrEmptySource       = errors.New("empty_import_source")
	ErrMissingColumns    = errors.New("missing_import_columns")
	ErrNotFound          = errors.New("not_found")
	ErrInvalidID         = errors.New("invalid_id")
)

// RequiredColumns must all be present in a source header.
var RequiredColumns = []string{ColReference, ColName, ColCategory, ColSubCategory, ColPrice, ColQuantity}
