package structures

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Dhanunjay2704/autostruct/pkg/config"
	"github.com/Dhanunjay2704/autostruct/pkg/errcodes"
	"github.com/Dhanunjay2704/autostruct/pkg/fileutils"
	"github.com/Dhanunjay2704/autostruct/pkg/layout"
	"github.com/Dhanunjay2704/autostruct/pkg/scaffold"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

const (
	RunStatusCompleted      = "completed"
	RunStatusPartialFailure = "partial_failure"
)

type ParseOptions struct {
	Text   string
	Format string
}

type RunOptions struct {
	Text    string
	Format  string
	BaseDir string
	DryRun  bool
}

// RunSummary is the result of one parse-validate-execute run.
type RunSummary struct {
	ID              string             `json:"id"`
	Status          string             `json:"status"`
	DryRun          bool               `json:"dry_run"`
	BaseDir         string             `json:"base_dir"`
	CaseInsensitive bool               `json:"case_insensitive"`
	Results         []scaffold.Outcome `json:"results"`
	Created         int                `json:"created"`
	AlreadyExisted  int                `json:"already_existed"`
	Failed          int                `json:"failed"`
}

type Service struct {
	config          *config.Config
	scaffoldService *scaffold.Service

	// Create-mode runs against the same base directory are serialized so two
	// requests can't interleave their filesystem writes. The parser and
	// validator are pure, so they stay outside the lock.
	mu        sync.Mutex
	baseLocks map[string]*sync.Mutex
}

func NewService(cfg *config.Config) *Service {
	return &Service{
		config:          cfg,
		scaffoldService: scaffold.NewService(),
		baseLocks:       make(map[string]*sync.Mutex),
	}
}

// ParseTree parses and validates input text without executing anything. It
// returns the canonical tree, which is what the parse endpoint and the debug
// tooling show.
func (svc *Service) ParseTree(_ context.Context, opts ParseOptions) (*layout.Tree, error) {
	tree, err := svc.parse(opts.Text, opts.Format)
	if err != nil {
		return nil, err
	}

	err = layout.Validate(tree, layout.ValidateOptions{
		CaseInsensitive: fileutils.DefaultCaseInsensitive(),
	})
	if err != nil {
		return nil, err
	}

	return tree, nil
}

// Run drives one full structure run: parse, validate, then either preview or
// create. Parse and validation failures abort before anything touches the
// disk; per-node execution failures are collected into the summary instead of
// aborting it.
func (svc *Service) Run(ctx context.Context, opts RunOptions) (*RunSummary, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	log := logger.FromContext(ctx).ID(id.String()).Root(logger.Data{
		"format":  opts.Format,
		"dry_run": opts.DryRun,
	})

	baseDir, err := svc.resolveBaseDir(opts.BaseDir)
	if err != nil {
		return nil, err
	}

	tree, err := svc.parse(opts.Text, opts.Format)
	if err != nil {
		return nil, err
	}

	// In create mode duplicate detection follows the target filesystem's
	// actual case behavior; a dry run must not touch the disk, so it uses
	// the platform default instead.
	caseInsensitive := fileutils.DefaultCaseInsensitive()
	if !opts.DryRun {
		caseInsensitive = fileutils.DetectCaseInsensitive(baseDir)
	}

	err = layout.Validate(tree, layout.ValidateOptions{CaseInsensitive: caseInsensitive})
	if err != nil {
		return nil, err
	}

	applyOpts := scaffold.ApplyOptions{BaseDir: baseDir, DryRun: opts.DryRun}

	var report *scaffold.Report
	if opts.DryRun {
		report, err = svc.scaffoldService.Apply(tree, applyOpts)
	} else {
		lock := svc.baseLock(baseDir)
		lock.Lock()
		report, err = svc.scaffoldService.Apply(tree, applyOpts)
		lock.Unlock()
	}
	if err != nil {
		log.Err(err).Error("structure run failed")
		return nil, err
	}

	summary := &RunSummary{
		ID:              id.String(),
		Status:          RunStatusCompleted,
		DryRun:          report.DryRun,
		BaseDir:         report.BaseDir,
		CaseInsensitive: caseInsensitive,
		Results:         report.Outcomes,
		Created:         report.Created,
		AlreadyExisted:  report.Existed,
		Failed:          report.Failed,
	}
	if !report.Ok() {
		summary.Status = RunStatusPartialFailure
	}

	log.Info("structure run finished", logger.Data{
		"status":          summary.Status,
		"base_dir":        summary.BaseDir,
		"nodes":           len(summary.Results),
		"created":         summary.Created,
		"already_existed": summary.AlreadyExisted,
		"failed":          summary.Failed,
	})

	return summary, nil
}

// parse runs the front end plus the configured input, node, and depth limits.
func (svc *Service) parse(text, format string) (*layout.Tree, error) {
	format, err := layout.ParseFormat(format)
	if err != nil {
		return nil, errcodes.ValidationError(err.Error())
	}

	if max := svc.config.MaxInputBytes; max > 0 && len(text) > max {
		return nil, errcodes.ValidationError(fmt.Sprintf("Input is %d bytes, which is larger than the limit of %d bytes.", len(text), max))
	}

	tree, err := layout.Parse(text, format)
	if err != nil {
		return nil, err
	}

	nodes, depth := tree.Stats()
	if max := svc.config.MaxNodes; max > 0 && nodes > max {
		return nil, errcodes.ValidationError(fmt.Sprintf("Structure has %d entries, which is more than the limit of %d.", nodes, max))
	}
	if max := svc.config.MaxDepth; max > 0 && depth > max {
		return nil, errcodes.ValidationError(fmt.Sprintf("Structure is %d levels deep, which is more than the limit of %d.", depth, max))
	}

	return tree, nil
}

// resolveBaseDir cleans the base directory and enforces the allowed-roots
// containment check when roots are configured.
func (svc *Service) resolveBaseDir(baseDir string) (string, error) {
	if !filepath.IsAbs(baseDir) {
		return "", errcodes.ValidationError(fmt.Sprintf("%q must be an absolute path", "base_path"))
	}
	baseDir = filepath.Clean(baseDir)

	if len(svc.config.AllowedRoots) == 0 {
		return baseDir, nil
	}
	for _, root := range svc.config.AllowedRoots {
		if pathWithinRoot(baseDir, root) {
			return baseDir, nil
		}
	}
	return "", errcodes.Forbidden("Creating structures outside the allowed root directories")
}

// pathWithinRoot reports whether path sits at or below root, without
// following symlinks. A ".." escape in the relative path means it does not.
func pathWithinRoot(path, root string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, "../"))
}

func (svc *Service) baseLock(baseDir string) *sync.Mutex {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	lock, ok := svc.baseLocks[baseDir]
	if !ok {
		lock = &sync.Mutex{}
		svc.baseLocks[baseDir] = lock
	}
	return lock
}
