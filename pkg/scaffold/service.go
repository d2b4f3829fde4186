package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Dhanunjay2704/autostruct/pkg/layout"
	"github.com/pkg/errors"
)

// Statuses reported per node by Apply.
const (
	StatusPlanned        = "planned"
	StatusCreated        = "created"
	StatusAlreadyExisted = "already_existed"
	StatusFailed         = "failed"
)

// Outcome is the result of processing a single node.
type Outcome struct {
	Path   string `json:"path"`
	Kind   string `json:"kind"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report summarizes one executor run. Outcomes are in depth-first pre-order,
// one entry per node, in both dry-run and create mode.
type Report struct {
	BaseDir  string    `json:"base_dir"`
	DryRun   bool      `json:"dry_run"`
	Outcomes []Outcome `json:"outcomes"`
	Created  int       `json:"created"`
	Existed  int       `json:"already_existed"`
	Failed   int       `json:"failed"`
}

// Ok reports whether every node was created or already existed.
func (r *Report) Ok() bool {
	return r.Failed == 0
}

// BaseDirError means the base directory did not exist and could not be
// created. Nothing was executed; the run failed as a whole.
type BaseDirError struct {
	Path string
	Err  error
}

func (e *BaseDirError) Error() string {
	return fmt.Sprintf("base directory %s: %v", e.Path, e.Err)
}

func (e *BaseDirError) Unwrap() error {
	return e.Err
}

type ApplyOptions struct {
	BaseDir  string
	DryRun   bool
	DirMode  os.FileMode // defaults to 0755
	FileMode os.FileMode // defaults to 0644
}

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Apply walks a validated tree in depth-first pre-order and either previews
// it (dry run) or materializes it under the base directory.
//
// In create mode each directory is created with Mkdir and each file with
// O_CREATE|O_EXCL, so nothing that already exists is ever truncated or
// overwritten: a pre-existing entry of the right kind is reported as
// already_existed, and one of the wrong kind as failed. A per-node failure
// does not stop the run — later siblings are still processed and nothing is
// rolled back — but every node below a failed directory is reported as failed
// without touching the disk, so the report always covers the whole tree.
func (s *Service) Apply(tree *layout.Tree, opts ApplyOptions) (*Report, error) {
	if opts.DirMode == 0 {
		opts.DirMode = 0755
	}
	if opts.FileMode == 0 {
		opts.FileMode = 0644
	}

	report := &Report{BaseDir: opts.BaseDir, DryRun: opts.DryRun, Outcomes: []Outcome{}}

	if opts.DryRun {
		err := tree.Walk(func(rel string, node *layout.Node) error {
			report.Outcomes = append(report.Outcomes, Outcome{
				Path:   filepath.Join(opts.BaseDir, filepath.FromSlash(rel)),
				Kind:   node.Kind,
				Status: StatusPlanned,
			})
			return nil
		})
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return report, nil
	}

	// The base directory must exist or be creatable before any node is
	// processed; failing here fails the entire run.
	if err := os.MkdirAll(opts.BaseDir, opts.DirMode); err != nil {
		return nil, &BaseDirError{Path: opts.BaseDir, Err: err}
	}

	// Relative path of the nearest ancestor directory that failed, with a
	// trailing slash. Everything under it is reported without disk access.
	failedUnder := ""

	err := tree.Walk(func(rel string, node *layout.Node) error {
		if failedUnder != "" && !strings.HasPrefix(rel, failedUnder) {
			failedUnder = ""
		}

		outcome := Outcome{
			Path: filepath.Join(opts.BaseDir, filepath.FromSlash(rel)),
			Kind: node.Kind,
		}

		switch {
		case failedUnder != "":
			outcome.Status = StatusFailed
			outcome.Error = "parent directory was not created"
		case node.IsDir():
			outcome.Status, outcome.Error = s.createDir(outcome.Path, opts.DirMode)
			if outcome.Status == StatusFailed {
				failedUnder = rel + "/"
			}
		default:
			outcome.Status, outcome.Error = s.createFile(outcome.Path, opts.FileMode)
		}

		switch outcome.Status {
		case StatusCreated:
			report.Created++
		case StatusAlreadyExisted:
			report.Existed++
		case StatusFailed:
			report.Failed++
		}

		report.Outcomes = append(report.Outcomes, outcome)
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return report, nil
}

// createDir creates one directory. A directory already in place is fine;
// anything else in the way is a failure.
func (s *Service) createDir(path string, mode os.FileMode) (status, reason string) {
	err := os.Mkdir(path, mode)
	if err == nil {
		return StatusCreated, ""
	}
	if os.IsExist(err) {
		info, statErr := os.Stat(path)
		if statErr == nil && info.IsDir() {
			return StatusAlreadyExisted, ""
		}
		return StatusFailed, "a file already exists at this path"
	}
	return StatusFailed, err.Error()
}

// createFile creates one empty file. O_EXCL guarantees an existing file is
// never truncated; it is reported as already_existed and skipped.
func (s *Service) createFile(path string, mode os.FileMode) (status, reason string) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, mode)
	if err == nil {
		f.Close()
		return StatusCreated, ""
	}
	if os.IsExist(err) {
		info, statErr := os.Stat(path)
		if statErr == nil && info.IsDir() {
			return StatusFailed, "a directory already exists at this path"
		}
		return StatusAlreadyExisted, ""
	}
	return StatusFailed, err.Error()
}
