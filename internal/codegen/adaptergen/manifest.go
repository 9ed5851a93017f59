package adaptergen

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Manifest describes one adapter to generate
type Manifest struct {
	// Service contract: the package holding <Name>Server and its messages
	Service ServiceManifest `mapstructure:"service" validate:"required"`

	// Feature packages searched for internal requests and responses
	Features []PackageManifest `mapstructure:"features" validate:"required,min=1,dive"`

	// Import path of the mediator package
	MediatorImportPath string `mapstructure:"mediator_import_path" validate:"required"`

	Output OutputManifest `mapstructure:"output" validate:"required"`
}

// ServiceManifest locates the service contract
type ServiceManifest struct {
	Name            string `mapstructure:"name" validate:"required"`
	PackageManifest `mapstructure:",squash"`
}

// PackageManifest locates a Go package both on disk and by import path
type PackageManifest struct {
	Dir        string `mapstructure:"dir" validate:"required"`
	ImportPath string `mapstructure:"import_path" validate:"required"`
}

// OutputManifest controls the generated file
type OutputManifest struct {
	File    string `mapstructure:"file" validate:"required"`
	Package string `mapstructure:"package" validate:"required"`

	// Adapter type name; defaults to <Service>Adapter
	Adapter string `mapstructure:"adapter"`

	// Function in the output package turning mediator errors into transport errors
	ErrorMapper string `mapstructure:"error_mapper" validate:"required"`
}

// LoadManifest reads and validates a YAML manifest
func LoadManifest(path string) (*Manifest, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := v.Unmarshal(&m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks required fields and fills defaults
func (m *Manifest) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(m); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var msgs []string
			for _, e := range validationErrors {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("invalid manifest: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid manifest: %w", err)
	}

	if m.Output.Adapter == "" {
		m.Output.Adapter = m.Service.Name + "Adapter"
	}

	return nil
}
