package config

// LoggingConfig configures the daemon's slog handler
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
	Output string `mapstructure:"output" validate:"required,oneof=stdout stderr file"`

	// FilePath is required when Output is "file"
	FilePath string `mapstructure:"file_path"`

	Rotation RotationConfig `mapstructure:"rotation"`

	// IncludeCaller adds the source position to every record
	IncludeCaller bool `mapstructure:"include_caller"`
}

// Rotating reports whether log records go to a lumberjack-rotated file
func (c LoggingConfig) Rotating() bool {
	return c.Output == "file" && c.Rotation.Enabled
}

// RotationConfig mirrors lumberjack's knobs; sizes are in megabytes and ages in days
type RotationConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	MaxSize    int  `mapstructure:"max_size" validate:"min=1"`
	MaxBackups int  `mapstructure:"max_backups" validate:"min=0"`
	MaxAge     int  `mapstructure:"max_age" validate:"min=0"`
	Compress   bool `mapstructure:"compress"`
}
