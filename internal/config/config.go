// Package config handles posekit configuration loading and management.
package config

// Config holds all posekit settings.
type Config struct {
	Pose    PoseConfig    `yaml:"pose"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// PoseConfig holds model evaluation and editing settings.
type PoseConfig struct {
	Frame            int     `yaml:"frame"`             // Frame to resolve
	WeightTolerance  float64 `yaml:"weight_tolerance"`  // Allowed deviation of influence weight sums from 1
	NormalizeWeights bool    `yaml:"normalize_weights"` // Repair bad influence tables instead of failing
	ApplyBillboards  bool    `yaml:"apply_billboards"`
	ViewYaw          float32 `yaml:"view_yaw"`   // Camera yaw in degrees, billboards face it
	ViewPitch        float32 `yaml:"view_pitch"` // Camera pitch in degrees
	UndoDepth        int     `yaml:"undo_depth"`
}

// ExportConfig holds glTF export settings.
type ExportConfig struct {
	Output       string `yaml:"output"` // Empty disables export
	IncludeBones bool   `yaml:"include_bones"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Pose: PoseConfig{
			Frame:            0,
			WeightTolerance:  1e-5,
			NormalizeWeights: false,
			ApplyBillboards:  false,
			ViewYaw:          0,
			ViewPitch:        0,
			UndoDepth:        64,
		},
		Export: ExportConfig{
			Output:       "",
			IncludeBones: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
