// Command catalog-import reconciles a product spreadsheet, CSV export or SQL
// dump against the catalog and prints the import report as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vitrine/internal/catalogimport"
	importdomain "github.com/smallbiznis/vitrine/internal/catalogimport/domain"
	"github.com/smallbiznis/vitrine/internal/clock"
	"github.com/smallbiznis/vitrine/internal/config"
	"github.com/smallbiznis/vitrine/internal/migration"
	"github.com/smallbiznis/vitrine/internal/observability"
	"github.com/smallbiznis/vitrine/internal/product"
	"github.com/smallbiznis/vitrine/internal/ratelimit"
	"github.com/smallbiznis/vitrine/internal/taxonomy"
	"github.com/smallbiznis/vitrine/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	snowflakeNode = 2
	lockTTL       = 30 * time.Minute
)

var errImportRunning = errors.New("another catalog import is running")

type options struct {
	File      string
	Mode      string
	DryRun    bool
	Sheet     string
	StartedBy string
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("catalog-import", flag.ContinueOnError)
	fs.StringVar(&opts.File, "file", "", "path to the .xlsx, .csv or .sql source (required)")
	fs.StringVar(&opts.Mode, "mode", "", "strict or permissive (defaults to import.default_mode)")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "reconcile inside a rolled back transaction")
	fs.StringVar(&opts.Sheet, "sheet", "", "worksheet name for .xlsx sources (defaults to the first sheet)")
	fs.StringVar(&opts.StartedBy, "started-by", os.Getenv("USER"), "operator recorded on the import run")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if strings.TrimSpace(opts.File) == "" {
		fs.Usage()
		return options{}, errors.New("-file is required")
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var (
		cfg    config.Config
		log    *zap.Logger
		svc    importdomain.Service
		locker *ratelimit.Locker
	)
	app := fx.New(
		fx.NopLogger,
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		ratelimit.Module,
		taxonomy.Module,
		product.Module,
		catalogimport.Module,
		fx.Populate(&cfg, &log, &svc, &locker),
	)
	if err := app.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	report, runErr := run(ctx, opts, cfg, svc, locker, log)

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Warn("shutdown failed", zap.Error(err))
	}

	if runErr != nil {
		log.Error("catalog import failed", zap.String("file", opts.File), zap.Error(runErr))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, cfg config.Config, svc importdomain.Service, locker *ratelimit.Locker, log *zap.Logger) (*importdomain.Report, error) {
	rawMode := opts.Mode
	if strings.TrimSpace(rawMode) == "" {
		rawMode = cfg.Import.DefaultMode
	}
	mode, err := importdomain.ParseMode(rawMode)
	if err != nil {
		return nil, err
	}

	if locker != nil {
		lease, err := locker.Acquire(ctx, ratelimit.KeyCatalogImport, lockTTL)
		if errors.Is(err, ratelimit.ErrLocked) {
			return nil, errImportRunning
		}
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := lease.Release(ctx); err != nil {
				log.Warn("release import lock failed", zap.Error(err))
			}
		}()
	}

	f, err := os.Open(opts.File)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	report, err := svc.Import(ctx, importdomain.ImportRequest{
		Options: importdomain.Options{
			Source:    filepath.Base(opts.File),
			Mode:      mode,
			DryRun:    opts.DryRun,
			StartedBy: opts.StartedBy,
		},
		Filename: opts.File,
		Content:  f,
		Sheet:    opts.Sheet,
	})
	if err != nil {
		return nil, err
	}

	log.Info("catalog import finished",
		zap.String("file", opts.File),
		zap.String("mode", string(mode)),
		zap.Bool("dry_run", opts.DryRun),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
	)
	return report, nil
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(snowflakeNode)
}
