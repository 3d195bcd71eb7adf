package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test pose defaults
	if cfg.Pose.WeightTolerance != 1e-5 {
		t.Errorf("expected weight tolerance 1e-5, got %g", cfg.Pose.WeightTolerance)
	}
	if cfg.Pose.UndoDepth != 64 {
		t.Errorf("expected undo depth 64, got %d", cfg.Pose.UndoDepth)
	}
	if cfg.Pose.NormalizeWeights {
		t.Error("expected normalize_weights to be false by default")
	}
	if cfg.Pose.Frame != 0 {
		t.Errorf("expected frame 0, got %d", cfg.Pose.Frame)
	}

	// Test export defaults
	if cfg.Export.Output != "" {
		t.Errorf("expected export disabled by default, got %s", cfg.Export.Output)
	}
	if !cfg.Export.IncludeBones {
		t.Error("expected include_bones to be true by default")
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
pose:
  frame: 12
  weight_tolerance: 0.001
  normalize_weights: true
  apply_billboards: true
  view_yaw: 30
  view_pitch: -15
  undo_depth: 16

export:
  output: "pose.gltf"
  include_bones: false

logging:
  level: "debug"
  log_file: "posekit.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Pose.Frame != 12 {
		t.Errorf("expected frame 12, got %d", cfg.Pose.Frame)
	}
	if cfg.Pose.WeightTolerance != 0.001 {
		t.Errorf("expected weight tolerance 0.001, got %g", cfg.Pose.WeightTolerance)
	}
	if !cfg.Pose.NormalizeWeights || !cfg.Pose.ApplyBillboards {
		t.Error("expected normalize_weights and apply_billboards to be true")
	}
	if cfg.Pose.UndoDepth != 16 {
		t.Errorf("expected undo depth 16, got %d", cfg.Pose.UndoDepth)
	}
	if cfg.Pose.ViewYaw != 30 || cfg.Pose.ViewPitch != -15 {
		t.Errorf("expected view 30/-15, got %g/%g", cfg.Pose.ViewYaw, cfg.Pose.ViewPitch)
	}

	if cfg.Export.Output != "pose.gltf" {
		t.Errorf("expected output pose.gltf, got %s", cfg.Export.Output)
	}
	if cfg.Export.IncludeBones {
		t.Error("expected include_bones to be false")
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "posekit.log" {
		t.Errorf("expected log file 'posekit.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "pose:\n  frame: not a number\n  invalid syntax here\n"},
		{"negative tolerance", "pose:\n  weight_tolerance: -1\n"},
		{"negative undo depth", "pose:\n  undo_depth: -3\n"},
		{"unknown key", "pose:\n  fps: 30\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}
			cfg := Default()
			if err := loadFromFile(cfg, configPath); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
	if filepath.Base(dir) != "posekit" {
		t.Errorf("ConfigDir should end in posekit, got %s", dir)
	}
}

func TestConfigDirHonorsXDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	if got, want := ConfigDir(), filepath.Join(xdg, "posekit"); got != want {
		t.Errorf("ConfigDir() = %s, want %s", got, want)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv(EnvConfig, "")

	// No config file exists - should return empty
	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "posekit.yaml")
	if err := os.WriteFile(configPath, []byte("pose:\n  frame: 3\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find posekit.yaml in current directory")
	}
}

func TestFindConfigFileFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "elsewhere.yaml")
	t.Setenv(EnvConfig, path)
	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("empty file should load, got %v", err)
	}
	if cfg.Pose.UndoDepth != 64 {
		t.Errorf("defaults should survive an empty file, got undo depth %d", cfg.Pose.UndoDepth)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "frame flag",
			setup: func() { *flagFrame = 25 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Pose.Frame != 25 {
					t.Errorf("expected frame 25, got %d", cfg.Pose.Frame)
				}
			},
			teardown: func() { *flagFrame = -1 },
		},
		{
			name:  "undo depth flag",
			setup: func() { *flagUndoDepth = 8 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Pose.UndoDepth != 8 {
					t.Errorf("expected undo depth 8, got %d", cfg.Pose.UndoDepth)
				}
			},
			teardown: func() { *flagUndoDepth = 0 },
		},
		{
			name:  "out flag",
			setup: func() { *flagOut = "out.glb" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Export.Output != "out.glb" {
					t.Errorf("expected output out.glb, got %s", cfg.Export.Output)
				}
			},
			teardown: func() { *flagOut = "" },
		},
		{
			name:  "normalize flag",
			setup: func() { *flagNormalize = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Pose.NormalizeWeights {
					t.Error("expected normalize_weights to be enabled")
				}
			},
			teardown: func() { *flagNormalize = false },
		},
		{
			name:  "view flags",
			setup: func() { *flagViewYaw = 45; *flagViewPitch = -10 },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Pose.ApplyBillboards {
					t.Error("expected a view to turn on billboards")
				}
				if cfg.Pose.ViewYaw != 45 || cfg.Pose.ViewPitch != -10 {
					t.Errorf("expected view 45/-10, got %g/%g", cfg.Pose.ViewYaw, cfg.Pose.ViewPitch)
				}
			},
			teardown: func() { *flagViewYaw = 0; *flagViewPitch = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
pose:
  frame: 4
  undo_depth: 10
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagFrame = 9
	defer func() {
		*flagConfig = ""
		*flagFrame = -1
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Frame should be from flag (9), not file (4)
	if cfg.Pose.Frame != 9 {
		t.Errorf("expected frame 9 from flag, got %d", cfg.Pose.Frame)
	}
	// Undo depth should be from file (10) since no flag override
	if cfg.Pose.UndoDepth != 10 {
		t.Errorf("expected undo depth 10 from file, got %d", cfg.Pose.UndoDepth)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Pose.UndoDepth = 5
	cfg.Export.Output = "x.gltf"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Pose.UndoDepth != 5 || loaded.Export.Output != "x.gltf" {
		t.Errorf("round trip lost values: %+v", loaded)
	}

	cfg.Pose.WeightTolerance = -1
	if err := cfg.SaveTo(path); err == nil {
		t.Error("expected SaveTo to reject an invalid config")
	}
}

func TestSaveRequested(t *testing.T) {
	cfg := Default()
	cfg.Pose.Frame = 7

	if path, err := SaveRequested(cfg); path != "" || err != nil {
		t.Errorf("SaveRequested without flags = %q, %v; want nothing written", path, err)
	}

	target := filepath.Join(t.TempDir(), "out", "posekit.yaml")
	*flagWriteConfig = target
	defer func() { *flagWriteConfig = "" }()
	path, err := SaveRequested(cfg)
	if err != nil {
		t.Fatalf("SaveRequested: %v", err)
	}
	if path != target {
		t.Errorf("SaveRequested wrote %q, want %q", path, target)
	}
	loaded := Default()
	if err := loadFromFile(loaded, target); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Pose.Frame != 7 {
		t.Errorf("expected frame 7 in written config, got %d", loaded.Pose.Frame)
	}
}

func TestSaveRequestedUserDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	*flagSaveConfig = true
	defer func() { *flagSaveConfig = false }()

	path, err := SaveRequested(Default())
	if err != nil {
		t.Fatalf("SaveRequested: %v", err)
	}
	if want := filepath.Join(xdg, "posekit", "config.yaml"); path != want {
		t.Errorf("SaveRequested wrote %q, want %q", path, want)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("saved config missing: %v", err)
	}
}
