package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/flanksource/commons/logger"
	"github.com/flanksource/fixture-refresh/config"
	"github.com/flanksource/fixture-refresh/fixtures"
	"github.com/flanksource/fixture-refresh/internal/files"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	apiKeyFlag  string
	dryRun      bool
	backup      bool
	httpTimeout time.Duration
	rps         float64
)

var refreshCmd = &cobra.Command{
	Use:   "refresh [files...|api-key]",
	Short: "Fetch every fixture URL and rewrite the cached responses",
	Long: `Refresh the cached API responses embedded in test fixture files.

Each file is scanned for fixture blocks: a line holding a quoted URL,
followed by a triple-quoted block with the previously captured response.
Every URL is fetched live, in file order, and the cached body is replaced
with the fresh response (backslashes doubled so the body stays a valid
string literal). The file is rewritten only after the whole pass succeeds.

A 404 keeps the old cached body. Any other HTTP failure, or a block whose
delimiters do not match, aborts the run with the file untouched.

The API key, when configured, is appended to every URL as the api_key
query parameter. It can come from --api-key, the FIXTURE_API_KEY
environment variable, a .fixture-refresh.yaml in the project, or a
single positional argument that is not an existing file.

Examples:
  # Refresh the default fixture file
  fixture-refresh refresh

  # Refresh with an API key (both forms are equivalent)
  fixture-refresh refresh --api-key=wmXzKSbk
  fixture-refresh refresh wmXzKSbk

  # Refresh specific files or globs
  fixture-refresh refresh tests/**/*Test.elm

  # See what would change without writing
  fixture-refresh refresh --dry-run

  # Keep a .bak copy of the original file
  fixture-refresh refresh --backup`,
	Args:         cobra.ArbitraryArgs,
	RunE:         runRefresh,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(refreshCmd)

	refreshCmd.Flags().StringVar(&apiKeyFlag, "api-key", "", "API key appended to every URL as the api_key query parameter")
	refreshCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Fetch and report changes without rewriting any file")
	refreshCmd.Flags().BoolVar(&backup, "backup", false, "Write <file>.bak with the original content before overwriting")
	refreshCmd.Flags().DurationVar(&httpTimeout, "timeout", 0, "Per-request timeout (default 30s)")
	refreshCmd.Flags().Float64Var(&rps, "rps", 0, "Maximum requests per second (default 10)")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	workDir, err := GetWorkingDir()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.NewParser(workDir).LoadConfig()
	if err != nil {
		return err
	}

	fileArgs, positionalKey := splitArgs(args, workDir)
	apiKey := apiKeyFlag
	if apiKey == "" {
		apiKey = positionalKey
	}
	if apiKey == "" {
		apiKey = resolveAPIKey(cfg)
	}
	if len(fileArgs) == 0 {
		fileArgs = cfg.Files
	}

	paths, err := files.FindFixtureFiles(workDir, fileArgs)
	if err != nil {
		return err
	}

	timeout := httpTimeout
	if timeout == 0 {
		if timeout, err = cfg.RequestTimeout(); err != nil {
			return err
		}
	}
	requestRate := rps
	if requestRate == 0 {
		requestRate = cfg.RPS
	}

	refresher := fixtures.NewRefresher(fixtures.RefreshOptions{
		APIKey:  apiKey,
		Indent:  cfg.Indent,
		Timeout: timeout,
		RPS:     requestRate,
		DryRun:  dryRun,
		Backup:  backup,
	})

	logger.Debugf("Refreshing %d fixture file(s) in %s", len(paths), workDir)
	results, err := refresher.RefreshFiles(cmd.Context(), paths)
	if err != nil {
		return err
	}

	output, err := formatOutput(results)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}
	fmt.Print(output)

	if dryRun && results.Summary.Refreshed > 0 {
		fmt.Println(color.YellowString("dry-run: %d block(s) would be refreshed, no files were modified", results.Summary.Refreshed))
	}
	return nil
}

// splitArgs separates file arguments from a bare positional API key:
// a single argument that is neither a glob nor an existing file is
// taken as the key.
func splitArgs(args []string, workDir string) (fileArgs []string, apiKey string) {
	if len(args) != 1 {
		return args, ""
	}
	arg := args[0]
	if strings.ContainsAny(arg, "*?[{") || strings.Contains(arg, string(os.PathSeparator)) {
		return args, ""
	}
	path := arg
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, arg)
	}
	if _, err := os.Stat(path); err == nil {
		return args, ""
	}
	logger.Debugf("Treating argument %q as API key", arg)
	return nil, arg
}

// resolveAPIKey applies the precedence: user config / FIXTURE_API_KEY env
// (via viper), then the project config file.
func resolveAPIKey(cfg *config.Config) string {
	if key := viper.GetString("api_key"); key != "" {
		return key
	}
	return cfg.APIKey
}
