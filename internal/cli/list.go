package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/opdoc-labs/opdoc/internal/generator"
)

func newListCommand() *cobra.Command {
	var config ListConfig

	cmd := &cobra.Command{
		Use:   "list [directory...]",
		Short: "List annotated handlers and their extracted documentation",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.Dirs = args
			config.Out = cmd.OutOrStdout()
			return RunList(&config)
		},
	}

	cmd.Flags().BoolVar(&config.Wide, "wide", false, "Print the full description of each handler")

	return cmd
}

// ListConfig holds configuration for the list command.
type ListConfig struct {
	Dirs []string
	Wide bool

	// Out receives the listing. Defaults to stdout.
	Out io.Writer
}

// RunList prints the annotated handlers found under the given directories.
func RunList(config *ListConfig) error {
	if config.Out == nil {
		config.Out = os.Stdout
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

	if config.Wide {
		printWide(config.Out, ops)
		return nil
	}
	return printTable(config.Out, ops)
}

func printTable(out io.Writer, ops []generator.ExtractedOperation) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "OPERATION\tSUMMARY\tLOCATION")
	for _, op := range ops {
		fmt.Fprintf(w, "%s\t%s\t%s:%d\n", op.ID, op.Summary, op.SourceFile, op.Line)
	}
	return w.Flush()
}

func printWide(out io.Writer, ops []generator.ExtractedOperation) {
	for i, op := range ops {
		if i > 0 {
			fmt.Fprintln(out)
		}
		boldColor.Fprintln(out, op.ID)
		fmt.Fprintf(out, "  %s:%d\n", op.SourceFile, op.Line)
		if len(op.Tags) > 0 {
			fmt.Fprintf(out, "  tags: %s\n", strings.Join(op.Tags, ", "))
		}
		if op.Deprecated {
			fmt.Fprintf(out, "  %s\n", warnColor.Sprint("deprecated"))
		}
		if op.Summary != "" {
			fmt.Fprintf(out, "\n  %s\n", op.Summary)
		}
		if op.Description != "" {
			fmt.Fprintln(out)
			for _, line := range strings.Split(op.Description, "\n") {
				fmt.Fprintf(out, "  %s\n", line)
			}
		}
	}
}
