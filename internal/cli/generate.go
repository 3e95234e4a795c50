package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/opdoc-labs/opdoc/internal/generator"
)

func newGenerateCommand() *cobra.Command {
	var config GenerateConfig

	cmd := &cobra.Command{
		Use:   "generate [directory...]",
		Short: "Generate registration files for annotated handlers",
		Long: `Generate scans the given directories (default ".") for functions whose doc
comment carries an //opdoc:operation directive and writes Go files that
register the extracted summary and description at init time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.Dirs = args
			config.Out = cmd.OutOrStdout()
			return RunGenerate(&config)
		},
	}

	cmd.Flags().BoolVar(&config.Colocated, "colocated", false, "Write one generated file next to each annotated source file")
	cmd.Flags().BoolVar(&config.DryRun, "dry-run", false, "Print planned files without writing them")
	cmd.Flags().StringVar(&config.ConfigPath, "config", "", "Path to .opdoc.yml config file")

	return cmd
}

// GenerateConfig holds configuration for the generate command.
type GenerateConfig struct {
	Dirs       []string
	Colocated  bool
	DryRun     bool
	ConfigPath string

	// Out receives progress messages. Defaults to stdout.
	Out io.Writer
}

// RunGenerate extracts annotated handlers and writes their registration
// files.
func RunGenerate(config *GenerateConfig) error {
	if config.Out == nil {
		config.Out = os.Stdout
	}
	if err := loadGenerateConfigFile(config); err != nil {
		return err
	}
	if len(config.Dirs) == 0 {
		config.Dirs = []string{"."}
	}

	ops, err := generator.NewExtractor().ExtractDirectories(config.Dirs)
	if err != nil {
		return err
	}
	if len(ops) == 0 {
		fmt.Fprintln(config.Out, "no annotated handlers found")
		return nil
	}

	emitter := generator.NewEmitter(config.Colocated)
	files, err := emitter.Plan(ops)
	if err != nil {
		return err
	}

	if config.DryRun {
		for _, f := range files {
			fmt.Fprintf(config.Out, "would write %s (%d operations)\n", f.Path, f.Operations)
		}
		return nil
	}

	if err := emitter.Write(files); err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintf(config.Out, "%s %s (%d operations)\n", successColor.Sprint("wrote"), f.Path, f.Operations)
	}
	return nil
}

func loadGenerateConfigFile(config *GenerateConfig) error {
	cfg, err := loadFileConfig(config.ConfigPath)
	if err != nil {
		return err
	}

	if len(config.Dirs) == 0 {
		config.Dirs = cfg.Generate.Source
	}
	if !config.Colocated {
		config.Colocated = cfg.Generate.Colocated
	}
	return nil
}
