package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dl-alexandre/dsync/internal/api"
	"github.com/dl-alexandre/dsync/internal/auth"
	"github.com/dl-alexandre/dsync/internal/config"
	"github.com/dl-alexandre/dsync/internal/drive"
	"github.com/dl-alexandre/dsync/internal/localfs"
	"github.com/dl-alexandre/dsync/internal/sync"
	"github.com/dl-alexandre/dsync/internal/sync/policy"
	"github.com/dl-alexandre/dsync/internal/sync/profile"
	"github.com/dl-alexandre/dsync/internal/types"
	"github.com/dl-alexandre/dsync/internal/utils"
	"github.com/spf13/cobra"
)

type syncFlags struct {
	mode          string
	concurrency   int
	abortOnError  bool
	preScan       bool
	exportFormats map[string]string
	exclude       []string
}

var runFlags syncFlags

var runCmd = &cobra.Command{
	Use:   "run <source> <dest>",
	Short: "Sync between Drive and a local directory",
	Long: `Sync a Drive folder tree and a local directory. Exactly one endpoint
must carry the "drive:" prefix; bytes flow toward the other side.

  dsync run drive:FOLDER_ID ./local-dir    # download
  dsync run ./local-dir drive:FOLDER_ID    # upload`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context(), "run", args[0], args[1], runFlags)
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull <folder-id> <local-dir>",
	Short: "Download a Drive folder tree into a local directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context(), "pull", sync.RemotePrefix+args[0], args[1], runFlags)
	},
}

var pushCmd = &cobra.Command{
	Use:   "push <local-dir> <folder-id>",
	Short: "Upload a local directory into a Drive folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context(), "push", args[0], sync.RemotePrefix+args[1], runFlags)
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage named sync profiles",
}

var profileSaveCmd = &cobra.Command{
	Use:   "save <name> <source> <dest>",
	Short: "Save a named sync profile",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openProfileDB()
		if err != nil {
			return err
		}
		defer db.Close()

		p := profile.Profile{
			Name:          args[0],
			Source:        args[1],
			Dest:          args[2],
			Mode:          runFlags.mode,
			Concurrency:   runFlags.concurrency,
			AbortOnError:  runFlags.abortOnError,
			ExportFormats: runFlags.exportFormats,
			Exclude:       runFlags.exclude,
			UpdatedAt:     time.Now().Unix(),
		}
		if err := db.Upsert(cmd.Context(), p); err != nil {
			return err
		}

		writer := NewOutputWriter(globalFlags.OutputFormat, globalFlags.Quiet)
		return writer.WriteSuccess("profile save", p)
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sync profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openProfileDB()
		if err != nil {
			return err
		}
		defer db.Close()

		profiles, err := db.List(cmd.Context())
		if err != nil {
			return err
		}

		writer := NewOutputWriter(globalFlags.OutputFormat, globalFlags.Quiet)
		return writer.WriteSuccess("profile list", profileList(profiles))
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved sync profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openProfileDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		writer := NewOutputWriter(globalFlags.OutputFormat, globalFlags.Quiet)
		return writer.WriteSuccess("profile delete", map[string]string{"deleted": args[0]})
	},
}

var profileRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a saved sync profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openProfileDB()
		if err != nil {
			return err
		}
		defer db.Close()

		p, err := db.Get(cmd.Context(), args[0])
		if err != nil {
			return utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
				"no such profile: "+args[0]).Build())
		}

		flags := syncFlags{
			mode:          p.Mode,
			concurrency:   p.Concurrency,
			abortOnError:  p.AbortOnError,
			preScan:       runFlags.preScan,
			exportFormats: p.ExportFormats,
			exclude:       p.Exclude,
		}
		return runSync(cmd.Context(), "profile run", p.Source, p.Dest, flags)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{runCmd, pullCmd, pushCmd, profileSaveCmd, profileRunCmd} {
		cmd.Flags().StringVar(&runFlags.mode, "mode", "",
			"Comparison mode (default, force, skip-existing, size-and-time)")
		cmd.Flags().IntVar(&runFlags.concurrency, "concurrency", 0,
			"Concurrent transfers per batch (0 uses the configured default)")
		cmd.Flags().BoolVar(&runFlags.abortOnError, "abort-on-error", false,
			"Stop scheduling new transfers after the first failure")
		cmd.Flags().BoolVar(&runFlags.preScan, "pre-scan", false,
			"Count items before transferring to enable progress totals")
		cmd.Flags().StringToStringVar(&runFlags.exportFormats, "export-format", nil,
			"Override export format per kind (e.g. document=pdf)")
		cmd.Flags().StringArrayVar(&runFlags.exclude, "exclude", nil,
			"Exclude paths matching this pattern (repeatable)")
	}

	profileCmd.AddCommand(profileSaveCmd, profileListCmd, profileDeleteCmd, profileRunCmd)
	rootCmd.AddCommand(runCmd, pullCmd, pushCmd, profileCmd)
}

// syncResult is the command output envelope for a sync run.
type syncResult struct {
	Source   string         `json:"source"`
	Dest     string         `json:"dest"`
	Mode     string         `json:"mode"`
	DryRun   bool           `json:"dryRun,omitempty"`
	Summary  sync.Summary   `json:"summary"`
	Outcomes []sync.Outcome `json:"outcomes"`
}

func (r syncResult) Headers() []string {
	return []string{"Path", "Result", "Reason", "Size"}
}

func (r syncResult) Rows() [][]string {
	rows := make([][]string, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		result := "skipped"
		if o.Transferred {
			result = "transferred"
		}
		reason := string(o.Reason)
		if o.Err != nil {
			result = "failed"
			reason = truncate(o.Error, 60)
		}
		size := "-"
		if o.Size > 0 {
			size = formatSize(o.Size)
		}
		rows = append(rows, []string{truncate(o.Path, 60), result, reason, size})
	}
	return rows
}

func (r syncResult) EmptyMessage() string {
	return "Nothing to sync."
}

func runSync(ctx context.Context, command, source, dest string, flags syncFlags) error {
	appCfg, err := config.Load()
	if err != nil {
		return err
	}

	mode := flags.mode
	if mode == "" {
		mode = appCfg.DefaultMode
	}
	concurrency := flags.concurrency
	if concurrency == 0 {
		concurrency = appCfg.DefaultConcurrency
	}
	exportFormats := appCfg.ExportFormats
	if len(flags.exportFormats) > 0 {
		exportFormats = flags.exportFormats
	}

	opts := sync.Options{
		Mode:          policy.Mode(mode),
		Concurrency:   concurrency,
		AbortOnError:  flags.abortOnError,
		DryRun:        globalFlags.DryRun,
		PreScan:       flags.preScan || appCfg.PreScan,
		ExportFormats: exportFormats,
		Exclude:       flags.exclude,
		Logger:        logger,
	}
	if globalFlags.OutputFormat == types.OutputFormatTable && !globalFlags.Quiet {
		view := newProgressView()
		opts.ProgressSink = view.Render
		defer view.Done()
	}

	syncCfg, err := sync.NewConfig(opts)
	if err != nil {
		return err
	}

	store, err := newDriveStore(ctx, appCfg)
	if err != nil {
		return err
	}

	engine := sync.New(store, localfs.New(), syncCfg)
	reqCtx := api.NewRequestContext(globalFlags.Profile, globalFlags.DriveID, types.RequestTypeContent)

	outcomes, runErr := engine.Sync(ctx, reqCtx, source, dest)

	writer := NewOutputWriter(globalFlags.OutputFormat, globalFlags.Quiet)
	summary := sync.Summarize(outcomes)
	result := syncResult{
		Source:   source,
		Dest:     dest,
		Mode:     mode,
		DryRun:   globalFlags.DryRun,
		Summary:  summary,
		Outcomes: outcomes,
	}

	if runErr != nil {
		cliErr := utils.NewCLIError(errorCode(runErr), runErr.Error()).
			WithContext("source", source).
			WithContext("dest", dest).
			Build()
		_ = writer.WriteError(command, cliErr)
		return runErr
	}

	if summary.Failed > 0 {
		writer.AddWarning(utils.ErrCodeSyncPartialFailure,
			strconv.Itoa(summary.Failed)+" of "+strconv.Itoa(summary.Total)+" items failed",
			"warning")
	}
	if err := writer.WriteSuccess(command, result); err != nil {
		return err
	}
	if summary.Failed > 0 {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeSyncPartialFailure,
			fmt.Sprintf("%d of %d items failed", summary.Failed, summary.Total)).Build())
	}
	return nil
}

// profileList renders saved profiles as a table.
type profileList []profile.Profile

func (l profileList) Headers() []string {
	return []string{"Name", "Source", "Dest", "Mode", "Concurrency"}
}

func (l profileList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, p := range l {
		rows = append(rows, []string{
			p.Name,
			truncate(p.Source, 40),
			truncate(p.Dest, 40),
			p.Mode,
			strconv.Itoa(p.Concurrency),
		})
	}
	return rows
}

func (l profileList) EmptyMessage() string {
	return "No sync profiles saved. Create one with 'dsync profile save'."
}

func openProfileDB() (*profile.DB, error) {
	path, err := config.GetProfileDBPath()
	if err != nil {
		return nil, err
	}
	return profile.Open(path)
}

func newDriveStore(ctx context.Context, appCfg *config.Config) (drive.Store, error) {
	configDir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}

	manager := auth.NewManager(configDir)
	if warning := manager.GetStorageWarning(); warning != "" {
		logger.Warn(warning)
	}
	setOAuthConfigFromEnv(manager)

	creds, err := manager.GetValidCredentials(ctx, globalFlags.Profile)
	if err != nil {
		return nil, err
	}

	service, err := manager.GetDriveService(ctx, creds)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(service, appCfg.MaxRetries, appCfg.RetryBaseDelay, logger)
	return drive.NewDriveStore(client), nil
}
