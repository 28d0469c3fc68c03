package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	importdomain "github.com/smallbiznis/vitrine/internal/catalogimport/domain"
	obslogger "github.com/smallbiznis/vitrine/internal/observability/logger"
	"github.com/smallbiznis/vitrine/internal/ratelimit"
	"go.uber.org/zap"
)

const importLockTTL = 10 * time.Minute

// ImportCatalog reconciles an uploaded spreadsheet, CSV or SQL dump.
// Form fields: file, mode, dry_run, sheet.
func (s *Server) ImportCatalog(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "invalid_file", "file is required"))
		return
	}
	if limit := s.cfg.Media.MaxUploadBytes; limit > 0 && header.Size > limit {
		AbortWithError(c, ErrFileTooLarge)
		return
	}

	mode, err := importdomain.ParseMode(c.DefaultPostForm("mode", s.cfg.Import.DefaultMode))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	dryRun := false
	if raw := strings.TrimSpace(c.PostForm("dry_run")); raw != "" {
		if dryRun, err = strconv.ParseBool(raw); err != nil {
			AbortWithError(c, newValidationError("dry_run", "invalid_dry_run", "must be true or false"))
			return
		}
	}

	startedBy := ""
	if principal, ok := principalFromContext(c); ok {
		startedBy = principal.User.Username
	}

	ctx := c.Request.Context()
	if s.locker != nil {
		lease, err := s.locker.Acquire(ctx, ratelimit.KeyCatalogImport, importLockTTL)
		if errors.Is(err, ratelimit.ErrLocked) {
			AbortWithError(c, ErrImportInProgress)
			return
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}
		defer func() {
			if err := lease.Release(ctx); err != nil {
				s.log.Warn("release import lock failed", zap.Error(err))
			}
		}()
	}

	file, err := header.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer file.Close()

	report, err := s.importSvc.Import(ctx, importdomain.ImportRequest{
		Options: importdomain.Options{
			Source:    header.Filename,
			Mode:      mode,
			DryRun:    dryRun,
			StartedBy: startedBy,
		},
		Filename: header.Filename,
		Content:  file,
		Sheet:    strings.TrimSpace(c.PostForm("sheet")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	obslogger.AddField(c, "import_run_id", report.RunID)
	c.JSON(http.StatusOK, gin.H{"data": report})
}

func (s *Server) ListImportRuns(c *gin.Context) {
	page, err := bindPagination(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.importSvc.ListRuns(c.Request.Context(), page)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetImportRun(c *gin.Context) {
	resp, err := s.importSvc.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
