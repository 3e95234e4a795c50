package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/opdoc-labs/opdoc/internal/generator"
	"github.com/opdoc-labs/opdoc/pkg/opdoc"
)

func newOpenAPICommand() *cobra.Command {
	var config OpenAPIConfig

	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Assemble or enrich an OpenAPI document",
		Long: `Without --spec, openapi scans the source tree for route registrations and
annotated handlers and assembles an OpenAPI 3.1 document from scratch.

With --spec, openapi loads the given document and fills in the summary and
description of every operation whose operationId matches an annotated
handler, leaving everything else in the document untouched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config.Out = cmd.OutOrStdout()
			return GenerateOpenAPI(&config)
		},
	}

	cmd.Flags().StringVar(&config.SourcePath, "source", ".", "Directory containing annotated handler source code")
	cmd.Flags().StringSliceVar(&config.RoutePaths, "routes", nil, "Files or directories containing route registrations")
	cmd.Flags().StringVar(&config.SpecPath, "spec", "", "Existing OpenAPI document to enrich instead of assembling one")
	cmd.Flags().StringVar(&config.OutputPath, "output", "openapi.json", "Path to output file or '-' for stdout")
	cmd.Flags().StringVar(&config.Title, "title", "API", "API title")
	cmd.Flags().StringVar(&config.Version, "version", "0.1.0", "API version")
	cmd.Flags().StringVar(&config.Format, "format", "", "Output format: json or yaml (defaults from the output extension)")
	cmd.Flags().StringVar(&config.ConfigPath, "config", "", "Path to .opdoc.yml config file")

	return cmd
}

// OpenAPIConfig holds configuration for the openapi command.
type OpenAPIConfig struct {
	SourcePath string `validate:"required"`
	RoutePaths []string
	SpecPath   string
	OutputPath string `validate:"required"`
	Title      string `validate:"required"`
	Version    string `validate:"required"`
	Format     string `validate:"required,oneof=json yaml yml"`
	ConfigPath string

	// Out receives progress messages and, for "-" output, the document
	// itself. Defaults to stdout.
	Out io.Writer
}

// GenerateOpenAPI assembles or enriches an OpenAPI document based on the
// provided configuration.
func GenerateOpenAPI(config *OpenAPIConfig) error {
	if config.Out == nil {
		config.Out = os.Stdout
	}
	if err := loadOpenAPIConfigFile(config); err != nil {
		return err
	}
	if config.Format == "" {
		config.Format = generator.FormatForPath(config.OutputPath)
	}
	if err := validate.Struct(config); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	ops, err := generator.NewExtractor().ExtractDirectories([]string{config.SourcePath})
	if err != nil {
		return err
	}

	if config.SpecPath != "" {
		return enrichSpec(config, ops)
	}
	return assembleSpec(config, ops)
}

func loadOpenAPIConfigFile(config *OpenAPIConfig) error {
	cfg, err := loadFileConfig(config.ConfigPath)
	if err != nil {
		return err
	}

	// Flags win; values left at their flag default fall back to the file.
	if config.SourcePath == "." && cfg.OpenAPI.Source != "" {
		config.SourcePath = cfg.OpenAPI.Source
	}
	if len(config.RoutePaths) == 0 {
		config.RoutePaths = cfg.OpenAPI.Routes
	}
	if config.SpecPath == "" {
		config.SpecPath = cfg.OpenAPI.Spec
	}
	if config.OutputPath == "openapi.json" && cfg.OpenAPI.Output != "" {
		config.OutputPath = cfg.OpenAPI.Output
	}
	if config.Title == "API" && cfg.OpenAPI.Title != "" {
		config.Title = cfg.OpenAPI.Title
	}
	if config.Version == "0.1.0" && cfg.OpenAPI.Version != "" {
		config.Version = cfg.OpenAPI.Version
	}
	if config.Format == "" {
		config.Format = cfg.OpenAPI.Format
	}
	return nil
}

func enrichSpec(config *OpenAPIConfig, ops []generator.ExtractedOperation) error {
	doc, err := generator.LoadDocument(config.SpecPath)
	if err != nil {
		return err
	}

	registry := opdoc.NewRegistry()
	for _, op := range ops {
		registry.Register(op.ID, opdoc.OperationDoc{
			Summary:     op.Summary,
			Description: op.Description,
			Tags:        op.Tags,
			Deprecated:  op.Deprecated,
		})
	}
	registry.Apply(doc)

	if err := writeOutput(config, func(w io.Writer) error {
		return doc.Encode(w, config.Format)
	}); err != nil {
		return err
	}

	if config.OutputPath != "-" {
		fmt.Fprintf(config.Out, "%s %s (%d operations enriched)\n",
			successColor.Sprint("wrote"), config.OutputPath, doc.EnrichedCount())
	}
	return nil
}

func assembleSpec(config *OpenAPIConfig, ops []generator.ExtractedOperation) error {
	routePaths := config.RoutePaths
	if len(routePaths) == 0 {
		routePaths = []string{config.SourcePath}
	}
	routes, err := generator.NewRouteScanner().ScanPaths(routePaths)
	if err != nil {
		return err
	}
	if len(routes) == 0 {
		fmt.Fprintf(config.Out, "%s no route registrations found, paths section will be empty\n",
			warnColor.Sprint("warning:"))
	}

	spec := generator.BuildSpec(routes, ops, generator.BuildOptions{
		Title:   config.Title,
		Version: config.Version,
	})

	if err := writeOutput(config, func(w io.Writer) error {
		return spec.Encode(w, config.Format)
	}); err != nil {
		return err
	}

	if config.OutputPath != "-" {
		fmt.Fprintf(config.Out, "%s %s (%d paths, %d annotated handlers)\n",
			successColor.Sprint("wrote"), config.OutputPath, len(spec.Paths), len(ops))
	}
	return nil
}

// FileSystem abstracts output file operations for testing.
type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
	Create(name string) (*os.File, error)
}

// DefaultFileSystem implements FileSystem using the os package.
type DefaultFileSystem struct{}

func (fs *DefaultFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (fs *DefaultFileSystem) Create(name string) (*os.File, error) {
	return os.Create(name) // #nosec G304
}

var defaultFileSystem FileSystem = &DefaultFileSystem{}

func writeOutput(config *OpenAPIConfig, encode func(io.Writer) error) error {
	return writeOutputWithFS(config, encode, defaultFileSystem)
}

func writeOutputWithFS(config *OpenAPIConfig, encode func(io.Writer) error, fs FileSystem) error {
	if config.OutputPath == "-" {
		return encode(config.Out)
	}

	outDir := filepath.Dir(config.OutputPath)
	if fi, err := fs.Stat(outDir); err != nil {
		if os.IsNotExist(err) {
			return errors.Errorf("output directory %s does not exist", outDir)
		}
		return err
	} else if !fi.IsDir() {
		return errors.Errorf("output path %s is not a directory", outDir)
	}

	f, err := fs.Create(config.OutputPath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return encode(f)
}
