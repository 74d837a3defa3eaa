// Package config holds the typed settings of the pipelines and loads them
// from a config file, AIRSENSE_* environment variables (a .env file is read
// first) and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. AIRSENSE_TRAINING_EPOCHS.
const EnvPrefix = "AIRSENSE"

// Columns maps each reading field to its column name. The four sensor
// channels are the network features, in this order.
type Columns struct {
	Temperature   string `mapstructure:"temperature"`
	Pressure      string `mapstructure:"pressure"`
	Humidity      string `mapstructure:"humidity"`
	GasResistance string `mapstructure:"gas_resistance"`
	Tag           string `mapstructure:"tag"`
	Label         string `mapstructure:"label"`
}

// Features returns the feature column names in network input order.
func (c Columns) Features() []string {
	return []string{c.Temperature, c.Pressure, c.Humidity, c.GasResistance}
}

// Training holds the split, scaling and network settings. The relu default
// for Activation follows the reference training run.
type Training struct {
	TestRatio    float64 `mapstructure:"test_ratio"`
	Seed         int64   `mapstructure:"seed"`
	Hidden       []int   `mapstructure:"hidden"`
	Activation   string  `mapstructure:"activation"`
	Optimizer    string  `mapstructure:"optimizer"`
	LearningRate float64 `mapstructure:"learning_rate"`
	Epochs       int     `mapstructure:"epochs"`
	BatchSize    int     `mapstructure:"batch_size"`
}

// Output lists where a training run writes its artifacts. Empty paths are
// skipped.
type Output struct {
	Labeled string `mapstructure:"labeled"`
	PlotDir string `mapstructure:"plot_dir"`
	Model   string `mapstructure:"model"`
	Report  string `mapstructure:"report"`
}

// Logging selects the slog level and handler.
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is the full configuration.
type Config struct {
	Columns  Columns  `mapstructure:"columns"`
	Training Training `mapstructure:"training"`
	Output   Output   `mapstructure:"output"`
	Logging  Logging  `mapstructure:"logging"`
}

// Default returns the settings of the reference training run.
func Default() Config {
	return Config{
		Columns: Columns{
			Temperature:   "Temperature",
			Pressure:      "Pressure",
			Humidity:      "Relative Humidity",
			GasResistance: "Resistance Gassensor",
			Tag:           "Label Tag",
			Label:         "label",
		},
		Training: Training{
			TestRatio:    0.2,
			Seed:         42,
			Hidden:       []int{64, 64},
			Activation:   "relu",
			Optimizer:    "adam",
			LearningRate: 0.001,
			Epochs:       50,
			BatchSize:    32,
		},
		Output: Output{
			PlotDir: ".",
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// SetDefaults registers Default() with v so file, env and flag values
// override it key by key.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("columns.temperature", d.Columns.Temperature)
	v.SetDefault("columns.pressure", d.Columns.Pressure)
	v.SetDefault("columns.humidity", d.Columns.Humidity)
	v.SetDefault("columns.gas_resistance", d.Columns.GasResistance)
	v.SetDefault("columns.tag", d.Columns.Tag)
	v.SetDefault("columns.label", d.Columns.Label)
	v.SetDefault("training.test_ratio", d.Training.TestRatio)
	v.SetDefault("training.seed", d.Training.Seed)
	v.SetDefault("training.hidden", d.Training.Hidden)
	v.SetDefault("training.activation", d.Training.Activation)
	v.SetDefault("training.optimizer", d.Training.Optimizer)
	v.SetDefault("training.learning_rate", d.Training.LearningRate)
	v.SetDefault("training.epochs", d.Training.Epochs)
	v.SetDefault("training.batch_size", d.Training.BatchSize)
	v.SetDefault("output.labeled", d.Output.Labeled)
	v.SetDefault("output.plot_dir", d.Output.PlotDir)
	v.SetDefault("output.model", d.Output.Model)
	v.SetDefault("output.report", d.Output.Report)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// Init prepares v: defaults, environment binding and, when present, the
// config file. cfgFile overrides the search path
// ($HOME/.config/airsense/config.yaml, then ./config.yaml).
func Init(v *viper.Viper, cfgFile string) error {
	if err := loadDotEnv(".env"); err != nil {
		return err
	}

	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "airsense"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// loadDotEnv exports the variables of path. A missing file is fine.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the settings a run cannot start without.
func (c Config) Validate() error {
	for _, name := range append(c.Columns.Features(), c.Columns.Tag, c.Columns.Label) {
		if name == "" {
			return errors.New("every entry of columns must name a column")
		}
	}
	t := c.Training
	if t.TestRatio <= 0 || t.TestRatio >= 1 {
		return fmt.Errorf("training.test_ratio must be between 0 and 1, got %v", t.TestRatio)
	}
	if t.Epochs <= 0 {
		return fmt.Errorf("training.epochs must be positive, got %d", t.Epochs)
	}
	if t.BatchSize <= 0 {
		return fmt.Errorf("training.batch_size must be positive, got %d", t.BatchSize)
	}
	if t.LearningRate <= 0 {
		return fmt.Errorf("training.learning_rate must be positive, got %v", t.LearningRate)
	}
	for _, h := range t.Hidden {
		if h <= 0 {
			return fmt.Errorf("training.hidden sizes must be positive, got %v", t.Hidden)
		}
	}
	switch t.Optimizer {
	case "adam", "sgd":
	default:
		return fmt.Errorf("training.optimizer must be adam or sgd, got %q", t.Optimizer)
	}
	switch t.Activation {
	case "relu", "sigmoid", "tanh":
	default:
		return fmt.Errorf("training.activation must be relu, sigmoid or tanh, got %q", t.Activation)
	}
	return nil
}
