package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	_ "github.com/swaggo/files"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/opdoc-labs/opdoc/internal/generator"
)

// envPrefix namespaces the serve command's environment variables.
const envPrefix = "OPDOC_"

// ServeConfig is populated from OPDOC_* environment variables; flags
// override individual values.
type ServeConfig struct {
	Addr     string `env:"ADDR" envDefault:":8080" validate:"required"`
	SpecPath string `env:"SPEC_PATH" envDefault:"openapi.json" validate:"required"`
	DocsPath string `env:"DOCS_PATH" envDefault:"/docs/" validate:"required,startswith=/"`
}

func newServeCommand() *cobra.Command {
	var (
		addr     string
		specPath string
		docsPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an OpenAPI document with Swagger UI",
		Long: `Serve exposes an OpenAPI document over HTTP together with an embedded
Swagger UI. Configuration comes from OPDOC_ADDR, OPDOC_SPEC_PATH and
OPDOC_DOCS_PATH; flags override the environment.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var config ServeConfig
			if err := env.ParseWithOptions(&config, env.Options{Prefix: envPrefix}); err != nil {
				return errors.Wrap(err, "parse environment")
			}
			if cmd.Flags().Changed("addr") {
				config.Addr = addr
			}
			if cmd.Flags().Changed("spec") {
				config.SpecPath = specPath
			}
			if cmd.Flags().Changed("docs-path") {
				config.DocsPath = docsPath
			}
			if err := validate.Struct(&config); err != nil {
				return errors.Wrap(err, "invalid serve configuration")
			}
			return RunServe(cmd.Context(), cmd.OutOrStdout(), config)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", `Listen address (default ":8080")`)
	cmd.Flags().StringVar(&specPath, "spec", "", `OpenAPI document to serve (default "openapi.json")`)
	cmd.Flags().StringVar(&docsPath, "docs-path", "", `Mount path of the Swagger UI (default "/docs/")`)

	return cmd
}

// RunServe blocks until the server fails, the context is canceled, or an
// interrupt arrives.
func RunServe(ctx context.Context, out io.Writer, config ServeConfig) error {
	if _, err := os.Stat(config.SpecPath); err != nil {
		return errors.Wrapf(err, "spec %s", config.SpecPath)
	}

	server := &http.Server{
		Addr:              config.Addr,
		Handler:           newServeMux(config),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	fmt.Fprintf(out, "serving %s on %s (docs at %s)\n", config.SpecPath, config.Addr, config.DocsPath)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newServeMux(config ServeConfig) *http.ServeMux {
	format := generator.FormatForPath(config.SpecPath)
	specRoute := "/openapi." + format
	docsPath := config.DocsPath
	if !strings.HasSuffix(docsPath, "/") {
		docsPath += "/"
	}

	mux := http.NewServeMux()
	mux.HandleFunc(specRoute, func(w http.ResponseWriter, r *http.Request) {
		if format == "yaml" {
			w.Header().Set("Content-Type", "application/yaml")
		} else {
			w.Header().Set("Content-Type", "application/json")
		}
		http.ServeFile(w, r, config.SpecPath)
	})
	mux.Handle(docsPath, httpSwagger.Handler(
		httpSwagger.URL(specRoute),
		httpSwagger.DeepLinking(true),
	))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, docsPath, http.StatusFound)
			return
		}
		http.NotFound(w, r)
	})
	return mux
}
