package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/studiowebux/liftload/internal/config"
	"github.com/studiowebux/liftload/internal/history"
	"github.com/studiowebux/liftload/internal/report"
)

// HistoryOptions contains options for the history commands
type HistoryOptions struct {
	DataDir string // overrides ~/.liftload
	Limit   int    // list: most recent runs to show, 0 for all
	Yes     bool   // delete: skip the confirmation prompt
	Stdin   io.Reader
	Stdout  io.Writer
}

func (o HistoryOptions) stdout() io.Writer {
	if o.Stdout == nil {
		return os.Stdout
	}
	return o.Stdout
}

func (o HistoryOptions) stdin() io.Reader {
	if o.Stdin == nil {
		return os.Stdin
	}
	return o.Stdin
}

// openHistory opens the history database under dataDir, or ~/.liftload when empty
func openHistory(dataDir string) (*history.Manager, error) {
	var err error
	if dataDir != "" {
		err = config.InitializeAt(dataDir)
	} else {
		err = config.Initialize()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	return history.NewManager(config.DatabasePath)
}

// ListHistory prints the stored runs, most recent first
func ListHistory(opts HistoryOptions) error {
	mgr, err := openHistory(opts.DataDir)
	if err != nil {
		return err
	}
	defer mgr.Close()

	runs, err := mgr.ListRuns(opts.Limit)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(opts.stdout(), report.RenderHistory(runs))
	return err
}

// ShowHistory prints one stored run, looked up by ID or unique ID prefix
func ShowHistory(id string, opts HistoryOptions) error {
	mgr, err := openHistory(opts.DataDir)
	if err != nil {
		return err
	}
	defer mgr.Close()

	run, err := mgr.GetRun(id)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(opts.stdout(), report.RenderRun(run))
	return err
}

// DeleteHistory removes one stored run after confirmation
func DeleteHistory(id string, opts HistoryOptions) error {
	mgr, err := openHistory(opts.DataDir)
	if err != nil {
		return err
	}
	defer mgr.Close()

	run, err := mgr.GetRun(id)
	if err != nil {
		return err
	}

	out := opts.stdout()
	if !opts.Yes {
		if opts.Stdin == nil && !isInteractive() {
			return fmt.Errorf("refusing to delete run %s without confirmation (use --yes)", history.ShortID(run.ID))
		}
		if !confirm(opts.stdin(), out, fmt.Sprintf("Delete run %s?", history.ShortID(run.ID))) {
			return fmt.Errorf("deletion cancelled by user")
		}
	}

	if err := mgr.DeleteRun(run.ID); err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "Deleted run %s\n", run.ID)
	return err
}
