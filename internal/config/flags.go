package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagFrame     = flag.Int("frame", -1, "Frame to resolve")
	flagUndoDepth = flag.Int("undo-depth", 0, "Number of edits kept for undo")
	flagOut       = flag.String("out", "", "Write the resolved pose to this glTF file")
	flagNormalize = flag.Bool("normalize", false, "Normalize influence weights that fail validation")
	flagViewYaw   = flag.Float64("view-yaw", 0, "Camera yaw in degrees; turns on billboards")
	flagViewPitch = flag.Float64("view-pitch", 0, "Camera pitch in degrees; turns on billboards")

	flagWriteConfig = flag.String("write-config", "", "Write the effective config to this path and exit")
	flagSaveConfig  = flag.Bool("save-config", false, "Write the effective config to the user config directory and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagFrame >= 0 {
		cfg.Pose.Frame = *flagFrame
	}
	if *flagUndoDepth > 0 {
		cfg.Pose.UndoDepth = *flagUndoDepth
	}
	if *flagOut != "" {
		cfg.Export.Output = *flagOut
	}
	if *flagNormalize {
		cfg.Pose.NormalizeWeights = true
	}
	if *flagViewYaw != 0 || *flagViewPitch != 0 {
		cfg.Pose.ApplyBillboards = true
		cfg.Pose.ViewYaw = float32(*flagViewYaw)
		cfg.Pose.ViewPitch = float32(*flagViewPitch)
	}
}
