package cli

import (
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory when --config is
// not given.
const DefaultConfigFile = ".opdoc.yml"

var validate = validator.New()

var (
	boldColor    = color.New(color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
)

// fileConfig mirrors the .opdoc.yml layout.
type fileConfig struct {
	Generate struct {
		Source    []string `yaml:"source"`
		Colocated bool     `yaml:"colocated"`
	} `yaml:"generate"`
	OpenAPI struct {
		Source  string   `yaml:"source"`
		Routes  []string `yaml:"routes"`
		Spec    string   `yaml:"spec"`
		Output  string   `yaml:"output"`
		Title   string   `yaml:"title"`
		Version string   `yaml:"version"`
		Format  string   `yaml:"format"`
	} `yaml:"openapi"`
}

// loadFileConfig reads a config file. An explicitly given path must exist;
// the default file is optional.
func loadFileConfig(path string) (*fileConfig, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &fileConfig{}, nil
		}
		return nil, errors.Wrap(err, "read config")
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return &cfg, nil
}
