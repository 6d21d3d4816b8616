// Package config loads battrack settings from battrack.json and the
// environment using viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/ayusman/battrack/internal/analysis"
	"github.com/ayusman/battrack/internal/detector"
)

// FileName is the config file looked up in the config directory.
const FileName = "battrack.json"

// EnvPrefix prefixes environment overrides, e.g. BATTRACK_SERVER_ADDR.
const EnvPrefix = "BATTRACK"

// Load registers defaults, environment overrides and, if present, the config
// file in configDir. A missing file is not an error.
func Load(configDir string) error {
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

func setDefaults() {
	dataDir := defaultDataDir()

	viper.SetDefault("logLevel", "info")
	viper.SetDefault("dataDir", dataDir)

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.uploadDir", filepath.Join(dataDir, "uploads"))
	viper.SetDefault("server.outputDir", filepath.Join(dataDir, "outputs"))
	viper.SetDefault("server.staticDir", "")

	viper.SetDefault("detector.python", "python3")
	viper.SetDefault("detector.script", filepath.Join("scripts", "yolo_service.py"))
	viper.SetDefault("detector.batConfidence", detector.BatConfidence)
	viper.SetDefault("detector.ballConfidence", detector.BallConfidence)
	viper.SetDefault("detector.stumpConfidence", detector.StumpConfidence)
	viper.SetDefault("detector.poseConfidence", detector.PoseConfidence)
	viper.SetDefault("detector.ballClass", detector.AnyClass)
	viper.SetDefault("detector.stumpClass", 0)
	viper.SetDefault("detector.ballClassNames", detector.BallClassNames)
	viper.SetDefault("detector.stumpClassNames", detector.StumpClassNames)

	viper.SetDefault("models.bat", detector.BatConfig().Model)
	viper.SetDefault("models.ball", detector.BallConfig().Model)
	viper.SetDefault("models.stump", detector.StumpConfig().Model)
	viper.SetDefault("models.pose", detector.PoseConfig().Model)

	viper.SetDefault("analysis.historySize", analysis.DefaultHistorySize)
	viper.SetDefault("analysis.cooldownFrames", analysis.DefaultCooldownFrames)
	viper.SetDefault("analysis.minSpeedKmh", analysis.DefaultMinSpeedKMPH)
	viper.SetDefault("analysis.maxSpeedKmh", analysis.DefaultMaxSpeedKMPH)
	viper.SetDefault("analysis.calibrationFrames", analysis.DefaultCalibrationFrames)
	viper.SetDefault("analysis.defaultPixelsPerMeter", analysis.DefaultPixelsPerMeter)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".battrack"
	}
	return filepath.Join(home, ".battrack")
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// Analysis builds the analysis core configuration.
func Analysis(log zerolog.Logger) analysis.Config {
	cfg := analysis.DefaultConfig()
	cfg.HistorySize = viper.GetInt("analysis.historySize")
	cfg.CooldownFrames = viper.GetInt("analysis.cooldownFrames")
	cfg.MinSpeedKMPH = viper.GetFloat64("analysis.minSpeedKmh")
	cfg.MaxSpeedKMPH = viper.GetFloat64("analysis.maxSpeedKmh")
	cfg.CalibrationFrames = viper.GetInt("analysis.calibrationFrames")
	cfg.DefaultPixelsPerMeter = viper.GetFloat64("analysis.defaultPixelsPerMeter")
	cfg.Logger = log
	return cfg
}

// DetectorSet is the configuration of the four models used per frame.
type DetectorSet struct {
	Bat   detector.Config
	Ball  detector.Config
	Stump detector.Config
	Pose  detector.Config
}

// Detectors builds the per-model detector configurations.
func Detectors() DetectorSet {
	python := viper.GetString("detector.python")
	script := viper.GetString("detector.script")

	model := func(base detector.Config, key string) detector.Config {
		base.Model = viper.GetString("models." + key)
		base.Python = python
		base.Script = script
		return base
	}

	bat := model(detector.BatConfig(), "bat")
	bat.MinConfidence = viper.GetFloat64("detector.batConfidence")

	ball := model(detector.BallConfig(), "ball")
	ball.MinConfidence = viper.GetFloat64("detector.ballConfidence")
	ball.ClassID = viper.GetInt("detector.ballClass")
	ball.ClassNames = viper.GetStringSlice("detector.ballClassNames")

	stump := model(detector.StumpConfig(), "stump")
	stump.MinConfidence = viper.GetFloat64("detector.stumpConfidence")
	stump.ClassID = viper.GetInt("detector.stumpClass")
	stump.ClassNames = viper.GetStringSlice("detector.stumpClassNames")

	pose := model(detector.PoseConfig(), "pose")
	pose.MinConfidence = viper.GetFloat64("detector.poseConfidence")

	return DetectorSet{
		Bat:   bat,
		Ball:  ball,
		Stump: stump,
		Pose:  pose,
	}
}
