package cmd

import (
	"fmt"

	"github.com/flanksource/fixture-refresh/config"
	"github.com/flanksource/fixture-refresh/fixtures"
	"github.com/flanksource/fixture-refresh/internal/files"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan [files...]",
	Short: "List the fixture blocks in files without fetching anything",
	Long: `Scan fixture files and list every detected fixture block with its URL
and line number. No network requests are made, and no file is modified.

Scanning also validates block structure, so a malformed block (a delimiter
line that does not match the expected indentation and """ marker exactly)
is reported as an error.

Examples:
  # Scan the default fixture file
  fixture-refresh scan

  # Scan specific files or globs
  fixture-refresh scan tests/**/*Test.elm -j`,
	Args:         cobra.ArbitraryArgs,
	RunE:         runScan,
	SilenceUsage: true,
}

// FileBlocks lists the blocks found in one file
type FileBlocks struct {
	Path   string           `json:"path" pretty:"label=File,style=text-blue-600"`
	Blocks []fixtures.Block `json:"blocks" pretty:"blocks,tree"`
}

// ScanReport is the scan command's output
type ScanReport struct {
	Files  []FileBlocks `json:"files" pretty:"files,tree"`
	Blocks int          `json:"blocks" pretty:"label=Total Blocks"`
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	workDir, err := GetWorkingDir()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.NewParser(workDir).LoadConfig()
	if err != nil {
		return err
	}

	fileArgs := args
	if len(fileArgs) == 0 {
		fileArgs = cfg.Files
	}

	paths, err := files.FindFixtureFiles(workDir, fileArgs)
	if err != nil {
		return err
	}

	report := ScanReport{}
	for _, path := range paths {
		doc, err := fixtures.ScanFile(path, fixtures.ScanOptions{Indent: cfg.Indent})
		if err != nil {
			return err
		}
		blocks := lo.Map(doc.Blocks(), func(b *fixtures.Block, _ int) fixtures.Block { return *b })
		report.Files = append(report.Files, FileBlocks{Path: path, Blocks: blocks})
		report.Blocks += len(blocks)
	}

	output, err := formatOutput(report)
	if err != nil {
		return fmt.Errorf("failed to format scan report: %w", err)
	}
	fmt.Print(output)
	return nil
}
