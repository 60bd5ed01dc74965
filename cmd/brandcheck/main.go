package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/BurntSushi/toml"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Nomadcxx/brandcheck/internal/cleaner"
	"github.com/Nomadcxx/brandcheck/internal/config"
	"github.com/Nomadcxx/brandcheck/internal/reporter"
	"github.com/Nomadcxx/brandcheck/internal/scanner"
	"github.com/Nomadcxx/brandcheck/internal/session"
	"github.com/Nomadcxx/brandcheck/internal/ui"
)

// Exit codes
const (
	exitOK      = 0
	exitFailed  = 1
	exitPartial = 2
)

var (
	cfgFile    string
	brandRoot  string
	imageRoot  string
	useTUI     bool
	saveReport bool
	quiet      bool
	verbose    bool
	dryRun     bool
	force      bool

	// Version information (set via -ldflags during build)
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "brandcheck",
	Short: "Check image filenames against a brand directory tree",
	Long:  getLongDescription(),
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Match images to brands and copy unmatched files for review",
	Long:  checkLongDescription(),
	Run:   runCheck,
}

var pruneCmd = &cobra.Command{
	Use:   "prune [directory]",
	Short: "Remove empty directories (defaults to the configured image root)",
	Long:  pruneLongDescription(),
	Args:  cobra.MaximumNArgs(1),
	Run:   runPrune,
}

var viewCmd = &cobra.Command{
	Use:   "view <report.json>",
	Short: "View a saved check report in the TUI",
	Args:  cobra.ExactArgs(1),
	Run:   runView,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration file location and contents",
	Run:   runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Run:   runConfigInit,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("brandcheck %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/brandcheck/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug details")

	checkCmd.Flags().StringVarP(&brandRoot, "brand-root", "b", "", "brand directory (<category>/<brand>/)")
	checkCmd.Flags().StringVarP(&imageRoot, "image-root", "i", "", "image directory to check")
	checkCmd.Flags().BoolVar(&useTUI, "tui", false, "show progress in the terminal UI")
	checkCmd.Flags().BoolVar(&saveReport, "report", false, "save a JSON and text report")

	pruneCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be deleted without actually deleting")
	configInitCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCheck(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	if saveReport {
		cfg.Output.SaveReport = true
	}

	req := resolveRequest(cfg, brandRoot, imageRoot)
	s := session.New(cfg)

	if useTUI {
		os.Exit(runCheckTUI(s, req))
	}

	// A started check always runs to completion
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			fmt.Fprintln(os.Stderr, "\nA check cannot be cancelled once started, waiting for it to finish...")
		}
	}()

	outcome, err := runWithPrinter(os.Stdout, func(events chan<- scanner.ScanProgress) (*session.Outcome, error) {
		return s.Run(req, events)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Check failed: %v\n", err)
		os.Exit(exitCodeFor(nil, err))
	}

	printSummary(os.Stdout, outcome)
	if code := exitCodeFor(outcome, nil); code != exitOK {
		os.Exit(code)
	}
}

// runCheckTUI runs the check screen and returns the exit code
func runCheckTUI(s *session.Session, req session.Request) int {
	p := tea.NewProgram(ui.NewCheckModel(s, req), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		return exitFailed
	}
	return finishTUI(os.Stdout, os.Stderr, finalModel)
}

// finishTUI prints the result held by the model the TUI quit from. The
// user may have left from the report viewer rather than the check screen.
func finishTUI(out, errOut io.Writer, final tea.Model) int {
	var (
		outcome *session.Outcome
		runErr  error
	)
	switch m := final.(type) {
	case ui.CheckModel:
		outcome, runErr = m.Outcome(), m.Err()
	case ui.ReportModel:
		outcome = m.Outcome()
	}

	if runErr != nil {
		fmt.Fprintf(errOut, "Check failed: %v\n", runErr)
		return exitCodeFor(nil, runErr)
	}
	if outcome == nil {
		return exitOK
	}
	printSummary(out, outcome)
	return exitCodeFor(outcome, nil)
}

func runPrune(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()

	root := cfg.Paths.ImageRoot
	if len(args) == 1 {
		root = args[0]
	}
	if root == "" {
		fmt.Fprintln(os.Stderr, "No directory given and no image_root configured")
		os.Exit(exitFailed)
	}

	s := session.New(cfg)
	var result cleaner.PruneResult
	_, err := runWithPrinter(os.Stdout, func(events chan<- scanner.ScanProgress) (*session.Outcome, error) {
		var err error
		result, err = s.Prune(root, dryRun, events)
		return nil, err
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Prune failed: %v\n", err)
		os.Exit(exitFailed)
	}

	if len(result.Errors) > 0 {
		fmt.Printf("%d errors during cleanup, see log above\n", len(result.Errors))
		os.Exit(exitPartial)
	}
}

func runView(cmd *cobra.Command, args []string) {
	report, err := reporter.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading report: %v\n", err)
		os.Exit(exitFailed)
	}

	p := tea.NewProgram(ui.NewReportModel(*report), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(exitFailed)
	}
}

func runConfig(cmd *cobra.Command, args []string) {
	path := cfgFile
	if path == "" {
		var err error
		if path, err = config.ConfigPath(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitFailed)
		}
	}

	fmt.Printf("Configuration file: %s\n\n", path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("Config file does not exist, defaults are in use. Create it with:")
		fmt.Println("\n  brandcheck config init")
		fmt.Println()
	}

	cfg := mustLoadConfig()
	fmt.Println("Current configuration:")
	if err := toml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error printing config: %v\n", err)
		os.Exit(exitFailed)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("\n%s\n", ui.FormatStatusWarn(err.Error()))
	}
}

func runConfigInit(cmd *cobra.Command, args []string) {
	path, err := config.Init(cfgFile, force)
	if err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			fmt.Fprintf(os.Stderr, "%v (use --force to overwrite)\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		}
		os.Exit(exitFailed)
	}
	fmt.Printf("Wrote default configuration to %s\n", path)
}

// mustLoadConfig loads the config and applies log level flags, exiting on error
func mustLoadConfig() *config.Config {
	if err := applyLogLevelFlags(quiet, verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitFailed)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(exitFailed)
	}
	return cfg
}

// applyLogLevelFlags sets the process log level from CLI flags. Flags take
// precedence over the config file because session.New only applies the
// config level while the default is still normal.
func applyLogLevelFlags(quiet, verbose bool) error {
	switch {
	case quiet && verbose:
		return fmt.Errorf("--quiet and --verbose cannot be used together")
	case quiet:
		scanner.SetDefaultLogLevel(scanner.LogLevelQuiet)
	case verbose:
		scanner.SetDefaultLogLevel(scanner.LogLevelVerbose)
	}
	return nil
}

// resolveRequest merges CLI roots over configured ones
func resolveRequest(cfg *config.Config, brandFlag, imageFlag string) session.Request {
	req := session.Request{
		BrandRoot: cfg.Paths.BrandRoot,
		ImageRoot: cfg.Paths.ImageRoot,
	}
	if brandFlag != "" {
		req.BrandRoot = brandFlag
	}
	if imageFlag != "" {
		req.ImageRoot = imageFlag
	}
	return req
}

// runWithPrinter runs fn while printing its log events to w
func runWithPrinter(w io.Writer, fn func(chan<- scanner.ScanProgress) (*session.Outcome, error)) (*session.Outcome, error) {
	events := make(chan scanner.ScanProgress, 64)
	printed := make(chan struct{})
	go func() {
		for p := range events {
			printProgress(w, p)
		}
		close(printed)
	}()

	outcome, err := fn(events)
	close(events)
	<-printed
	return outcome, err
}

// printProgress prints log events; bare progress ticks are skipped
func printProgress(w io.Writer, p scanner.ScanProgress) {
	if !p.IsLogLine() {
		return
	}
	fmt.Fprintln(w, ui.FormatSeverity(p.Severity, p.Message))
}

// printSummary prints the counters and completion state of a check
func printSummary(w io.Writer, outcome *session.Outcome) {
	sum := outcome.Summary()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Processed: %d  Matched: %d  Unmatched: %d  Copied: %d\n",
		sum.Processed, sum.Matched, sum.Unmatched, sum.Copied)

	switch outcome.Status {
	case session.StatusAllMatched:
		fmt.Fprintln(w, ui.FormatStatusOK("All images have a matching brand"))
	case session.StatusCopied:
		fmt.Fprintln(w, ui.FormatStatusOK(fmt.Sprintf("Copied %d files to %s", sum.Copied, outcome.Copy.Destination)))
	case session.StatusPartial:
		fmt.Fprintln(w, ui.FormatStatusWarn(fmt.Sprintf("Copied %d files to %s, %d failed",
			sum.Copied, outcome.Copy.Destination, outcome.Copy.FailedCount())))
	}

	if outcome.ReportPath != "" {
		fmt.Fprintf(w, "\nView report with: brandcheck view %s\n", outcome.ReportPath)
	}
}

// exitCodeFor maps a check result to the process exit code
func exitCodeFor(outcome *session.Outcome, err error) int {
	if err != nil {
		return exitFailed
	}
	if outcome != nil && outcome.Status == session.StatusPartial {
		return exitPartial
	}
	return exitOK
}

func getLongDescription() string {
	return ui.FormatASCIIHeader() + "\n\n" +
		"brandcheck reads brand names from a <category>/<brand>/ directory tree and checks that\n" +
		"every image named <prefix>_<brand>_... refers to one of them. Images without a known\n" +
		"brand are copied into <image-root>_未找到品牌图片 for review; originals are never moved."
}

func checkLongDescription() string {
	return "Match every image under the image root against the brand tree and copy the\n" +
		"images with no known brand into <image-root>" + cleaner.QuarantineSuffix + ".\n\n" +
		"Checked extensions: " + strings.Join(scanner.SupportedImageExtensions(), ", ") + "\n" +
		"Other files are skipped and not counted."
}

func pruneLongDescription() string {
	return fmt.Sprintf("Remove directories that are empty, repeating until nothing changes (at most %d passes).\n"+
		"The directory itself is never removed. These files do not keep a directory alive:\n  %s\n"+
		"Add more with prune.extra_ignore_files in the config file.",
		cleaner.MaxPrunePasses, strings.Join(cleaner.IgnorableFiles(), ", "))
}
