// Package config loads the explicit run configuration of training and
// prediction calls from YAML files and UTIML_* environment variables.
package config

import (
	"io"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cran/utiml/core/model"
	"github.com/cran/utiml/multilabel"
	"github.com/cran/utiml/pkg/errors"
	"github.com/cran/utiml/pkg/log"
	"github.com/cran/utiml/sklearn/dummy"
	"github.com/cran/utiml/sklearn/linear_model"
)

// EnvPrefix prefixes environment overrides, e.g. UTIML_CORES or
// UTIML_ENSEMBLE_MEMBERS.
const EnvPrefix = "UTIML"

// Config is the run configuration.
type Config struct {
	Cores       int      `mapstructure:"cores" yaml:"cores"`
	Seed        *int64   `mapstructure:"seed" yaml:"seed"`
	VoteSchema  string   `mapstructure:"vote_schema" yaml:"vote_schema"`
	Probability bool     `mapstructure:"probability" yaml:"probability"`
	LogLevel    string   `mapstructure:"log_level" yaml:"log_level"`
	Ensemble    Ensemble `mapstructure:"ensemble" yaml:"ensemble"`
	Learner     Learner  `mapstructure:"learner" yaml:"learner"`
}

// Ensemble configures TrainEnsemble.
type Ensemble struct {
	Members     int     `mapstructure:"members" yaml:"members"`
	Subsample   float64 `mapstructure:"subsample" yaml:"subsample"`
	AttrSpace   float64 `mapstructure:"attr_space" yaml:"attr_space"`
	Replacement bool    `mapstructure:"replacement" yaml:"replacement"`
	Kind        string  `mapstructure:"kind" yaml:"kind"`
}

// Learner selects and configures the base learner.
type Learner struct {
	Name         string  `mapstructure:"name" yaml:"name"`
	C            float64 `mapstructure:"c" yaml:"c"`
	MaxIter      int     `mapstructure:"max_iter" yaml:"max_iter"`
	Tol          float64 `mapstructure:"tol" yaml:"tol"`
	LearningRate float64 `mapstructure:"learning_rate" yaml:"learning_rate"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Cores:      1,
		VoteSchema: string(multilabel.VoteMaj),
		LogLevel:   "warn",
		Ensemble: Ensemble{
			Members:     10,
			Subsample:   0.75,
			AttrSpace:   0.5,
			Replacement: true,
			Kind:        string(multilabel.KindBinary),
		},
		Learner: Learner{
			Name:         "logistic",
			C:            1.0,
			MaxIter:      100,
			Tol:          1e-4,
			LearningRate: 1.0,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("cores", d.Cores)
	v.SetDefault("vote_schema", d.VoteSchema)
	v.SetDefault("probability", d.Probability)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("ensemble.members", d.Ensemble.Members)
	v.SetDefault("ensemble.subsample", d.Ensemble.Subsample)
	v.SetDefault("ensemble.attr_space", d.Ensemble.AttrSpace)
	v.SetDefault("ensemble.replacement", d.Ensemble.Replacement)
	v.SetDefault("ensemble.kind", d.Ensemble.Kind)
	v.SetDefault("learner.name", d.Learner.Name)
	v.SetDefault("learner.c", d.Learner.C)
	v.SetDefault("learner.max_iter", d.Learner.MaxIter)
	v.SetDefault("learner.tol", d.Learner.Tol)
	v.SetDefault("learner.learning_rate", d.Learner.LearningRate)
}

// Load reads path (YAML, may be empty to use defaults only), applies
// UTIML_* environment overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// seed has no default, so it is only seen through an explicit binding
	if err := v.BindEnv("seed"); err != nil {
		return nil, errors.Wrap(err, "config: bind seed")
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "config: read %s", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "config: decode")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode strictly decodes YAML from r over the defaults. Unknown keys are
// an error. Environment variables are not consulted.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "config: decode yaml")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Encode writes cfg as YAML.
func (c *Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "config: encode yaml")
	}
	return enc.Close()
}

// Validate checks every section without starting any work.
func (c *Config) Validate() error {
	if _, err := c.Settings(); err != nil {
		return err
	}
	if _, err := c.EnsembleConfig(); err != nil {
		return err
	}
	if _, err := c.BaseLearner(); err != nil {
		return err
	}
	if _, err := log.ToLogLevel(c.LogLevel); err != nil {
		return errors.NewValidationError("log_level", err.Error(), c.LogLevel)
	}
	return nil
}

// Settings converts the call-level fields into multilabel settings.
func (c *Config) Settings() (multilabel.Settings, error) {
	schema, err := multilabel.ParseVoteSchema(c.VoteSchema)
	if err != nil {
		return multilabel.Settings{}, err
	}
	s := multilabel.DefaultSettings()
	s.Cores = c.Cores
	s.VoteSchema = schema
	s.Probability = c.Probability
	if c.Seed != nil {
		multilabel.WithSeed(*c.Seed)(&s)
	}
	if err := s.Validate(); err != nil {
		return multilabel.Settings{}, err
	}
	return s, nil
}

// Options returns the settings as options for multilabel calls. Extra
// options are applied after them.
func (c *Config) Options(extra ...multilabel.Option) ([]multilabel.Option, error) {
	s, err := c.Settings()
	if err != nil {
		return nil, err
	}
	return append([]multilabel.Option{multilabel.WithSettings(s)}, extra...), nil
}

// EnsembleConfig converts the ensemble section.
func (c *Config) EnsembleConfig() (multilabel.EnsembleConfig, error) {
	kind, err := multilabel.ParseKind(c.Ensemble.Kind)
	if err != nil {
		return multilabel.EnsembleConfig{}, err
	}
	ec := multilabel.EnsembleConfig{
		Members:           c.Ensemble.Members,
		SubsampleFraction: c.Ensemble.Subsample,
		AttrFraction:      c.Ensemble.AttrSpace,
		Replacement:       c.Ensemble.Replacement,
		Kind:              kind,
	}
	if err := ec.Validate(); err != nil {
		return multilabel.EnsembleConfig{}, err
	}
	return ec, nil
}

// BaseLearner builds the configured base learner: "logistic" or "prior".
func (c *Config) BaseLearner() (model.BaseLearner, error) {
	switch strings.ToLower(c.Learner.Name) {
	case "logistic":
		lr := linear_model.NewLogisticRegression()
		err := lr.SetParams(map[string]interface{}{
			"C":             c.Learner.C,
			"max_iter":      c.Learner.MaxIter,
			"tol":           c.Learner.Tol,
			"learning_rate": c.Learner.LearningRate,
		})
		if err != nil {
			return nil, err
		}
		return lr, nil
	case "prior":
		return dummy.NewPriorClassifier(), nil
	default:
		return nil, errors.NewValidationError("learner.name", "unknown base learner", c.Learner.Name)
	}
}

// SetupLogging installs the JSON logger at the configured level.
func (c *Config) SetupLogging() error {
	return log.SetupLogger(c.LogLevel)
}
