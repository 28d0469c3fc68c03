package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vitrine/internal/catalogimport/domain"
	"github.com/smallbiznis/vitrine/internal/catalogimport/source"
	"github.com/smallbiznis/vitrine/internal/clock"
	"github.com/smallbiznis/vitrine/internal/observability/metrics"
	productdomain "github.com/smallbiznis/vitrine/internal/product/domain"
	taxdomain "github.com/smallbiznis/vitrine/internal/taxonomy/domain"
	"github.com/smallbiznis/vitrine/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// errDryRun rolls back the enclosing transaction of a dry run.
var errDryRun = errors.New("dry_run")

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Resolver taxdomain.Resolver
	Products productdomain.Store
	Metrics  *metrics.Metrics    `optional:"true"`
	Synonyms domain.SynonymTable `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	resolver taxdomain.Resolver
	products productdomain.Store
	metrics  *metrics.Metrics
	synonyms domain.SynonymTable
}

func New(p Params) domain.Service {
	synonyms := p.Synonyms
	if synonyms.Len() == 0 {
		synonyms = domain.DefaultSynonyms
	}
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("catalogimport.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		resolver: p.Resolver,
		products: p.Products,
		metrics:  p.Metrics,
		synonyms: synonyms,
	}
}

func (s *Service) Import(ctx context.Context, req domain.ImportRequest) (*domain.Report, error) {
	if req.Content == nil {
		return nil, domain.ErrEmptySource
	}
	rows, err := source.Read(req.Filename, req.Content, req.Sheet)
	if err != nil {
		return nil, err
	}
	if req.Source == "" {
		req.Source = req.Filename
	}
	return s.Reconcile(ctx, req.Options, rows)
}

func (s *Service) Reconcile(ctx context.Context, opts domain.Options, rows []domain.RawRow) (*domain.Report, error) {
	if _, err := domain.ParseMode(string(opts.Mode)); err != nil {
		return nil, err
	}

	report := domain.NewReport(opts.Source, opts.Mode, opts.DryRun, s.synonyms.Version)
	report.StartedAt = s.clock.Now()
	report.TotalRows = len(rows)
	r := &reconciler{Service: s, mode: opts.Mode, report: report, seen: map[string]bool{}}

	err := s.withinRun(ctx, opts.DryRun, func(db *gorm.DB) error {
		for _, raw := range rows {
			if err := r.row(ctx, db, raw); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report.FinishedAt = s.clock.Now()
	report.Sort()
	if err := s.saveRun(ctx, opts, report); err != nil {
		return nil, err
	}

	mode := string(opts.Mode)
	s.metrics.RecordImportRows(ctx, "created", mode, report.Created)
	s.metrics.RecordImportRows(ctx, "updated", mode, report.Updated)
	s.metrics.RecordImportRows(ctx, "skipped", mode, report.Skipped)
	s.log.Info("catalog import finished",
		zap.String("run_id", report.RunID),
		zap.String("source", report.Source),
		zap.String("mode", mode),
		zap.Bool("dry_run", report.DryRun),
		zap.Int("total", report.TotalRows),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
	)
	return report, nil
}

// withinRun hands run a handle on which every row opens its own
// transaction. A dry run wraps all rows in an outer transaction that is
// rolled back, so rows become savepoints and later rows still see what
// earlier rows would have created.
func (s *Service) withinRun(ctx context.Context, dryRun bool, run func(db *gorm.DB) error) error {
	if !dryRun {
		return run(s.db.WithContext(ctx))
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := run(tx); err != nil {
			return err
		}
		return errDryRun
	})
	if errors.Is(err, errDryRun) {
		return nil
	}
	return err
}

func (s *Service) saveRun(ctx context.Context, opts domain.Options, report *domain.Report) error {
	id := s.genID.Generate().Int64()
	report.RunID = strconv.FormatInt(id, 10)

	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	run := &domain.ImportRun{
		ID:          id,
		Source:      truncate(report.Source, 255),
		Mode:        report.Mode,
		DryRun:      report.DryRun,
		TotalRows:   report.TotalRows,
		CreatedRows: report.Created,
		UpdatedRows: report.Updated,
		SkippedRows: report.Skipped,
		Report:      datatypes.JSON(payload),
		StartedBy:   optionalString(opts.StartedBy),
		StartedAt:   report.StartedAt,
		FinishedAt:  report.FinishedAt,
	}
	return s.repo.Create(ctx, s.db, run)
}

func (s *Service) ListRuns(ctx context.Context, page pagination.Pagination) (*domain.RunListResponse, error) {
	items, total, err := s.repo.List(ctx, s.db, page.Offset(), page.Limit())
	if err != nil {
		return nil, err
	}
	results := make([]domain.RunResponse, 0, len(items))
	for i := range items {
		results = append(results, toRunResponse(&items[i], false))
	}
	return &domain.RunListResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Results:  results,
	}, nil
}

func (s *Service) GetRun(ctx context.Context, id string) (*domain.RunResponse, error) {
	runID, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || runID <= 0 {
		return nil, domain.ErrInvalidID
	}
	run, err := s.repo.FindByID(ctx, s.db, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, domain.ErrNotFound
	}
	resp := toRunResponse(run, true)
	return &resp, nil
}

func toRunResponse(run *domain.ImportRun, withReport bool) domain.RunResponse {
	resp := domain.RunResponse{
		ID:          strconv.FormatInt(run.ID, 10),
		Source:      run.Source,
		Mode:        run.Mode,
		DryRun:      run.DryRun,
		TotalRows:   run.TotalRows,
		CreatedRows: run.CreatedRows,
		UpdatedRows: run.UpdatedRows,
		SkippedRows: run.SkippedRows,
		StartedBy:   run.StartedBy,
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
	}
	if withReport && len(run.Report) > 0 {
		resp.Report = json.RawMessage(run.Report)
	}
	return resp
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}

// rowError is a row-level failure that belongs in the report.
type rowError struct {
	reason string
}

func (e *rowError) Error() string { return e.reason }

func rowErrorf(format string, args ...any) error {
	return &rowError{reason: fmt.Sprintf(format, args...)}
}

// reportable lists the domain errors a single bad row can cause. Anything
// else aborts the import.
var reportable = []error{
	taxdomain.ErrInvalidName,
	taxdomain.ErrDuplicateName,
	taxdomain.ErrDuplicateSlug,
	productdomain.ErrInvalidReference,
	productdomain.ErrInvalidName,
	productdomain.ErrInvalidPrice,
	productdomain.ErrInvalidDiscount,
	productdomain.ErrInvalidQuantity,
	productdomain.ErrInvalidStatus,
	productdomain.ErrDuplicateReference,
}

func reasonOf(err error) (string, bool) {
	var re *rowError
	if errors.As(err, &re) {
		return re.reason, true
	}
	for _, target := range reportable {
		if errors.Is(err, target) {
			return err.Error(), true
		}
	}
	return "", false
}
