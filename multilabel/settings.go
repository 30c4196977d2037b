package multilabel

import (
	"github.com/cran/utiml/core/parallel"
	"github.com/cran/utiml/pkg/errors"
	"github.com/cran/utiml/pkg/log"
)

// Settings is the explicit configuration of a training or prediction call.
// There is no process-wide default state: every call starts from
// DefaultSettings and applies its options.
type Settings struct {
	// Cores is the number of executor workers. Must be at least 1.
	Cores int
	// Seed makes the call reproducible. parallel.Unseeded disables reseeding.
	Seed parallel.Seed
	// VoteSchema merges ensemble members at prediction time.
	VoteSchema VoteSchema
	// Probability selects scores instead of bipartitions as the primary view
	// of returned predictions.
	Probability bool
	// Labels restricts the labels trained by TrainBinary. Empty means all.
	Labels []string
	// Logger overrides the component logger from the log provider.
	Logger log.Logger
}

// Option modifies Settings.
type Option func(*Settings)

// DefaultSettings returns the settings used when no option is given:
// one core, unseeded, majority voting and bipartition output.
func DefaultSettings() Settings {
	return Settings{
		Cores:      1,
		Seed:       parallel.Unseeded,
		VoteSchema: VoteMaj,
	}
}

// WithCores sets the number of workers.
func WithCores(cores int) Option {
	return func(s *Settings) {
		s.Cores = cores
	}
}

// WithSeed makes the call reproducible under seed.
func WithSeed(seed int64) Option {
	return func(s *Settings) {
		s.Seed = parallel.SeedOf(seed)
	}
}

// WithVoteSchema sets the ensemble vote schema.
func WithVoteSchema(schema VoteSchema) Option {
	return func(s *Settings) {
		s.VoteSchema = schema
	}
}

// WithProbability selects scores as the primary prediction view.
func WithProbability(probability bool) Option {
	return func(s *Settings) {
		s.Probability = probability
	}
}

// WithLabels restricts binary relevance training to the named labels.
func WithLabels(labels ...string) Option {
	return func(s *Settings) {
		s.Labels = append([]string(nil), labels...)
	}
}

// WithLogger routes the call's logs to logger.
func WithLogger(logger log.Logger) Option {
	return func(s *Settings) {
		s.Logger = logger
	}
}

// WithSettings replaces all settings at once, typically from config.Config.
func WithSettings(settings Settings) Option {
	return func(s *Settings) {
		*s = settings
		s.Labels = append([]string(nil), settings.Labels...)
	}
}

func newSettings(opts []Option) Settings {
	s := DefaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Validate checks the settings before any work starts.
func (s Settings) Validate() error {
	if s.Cores < 1 {
		return errors.NewValidationError("cores", "must be at least 1", s.Cores)
	}
	if !s.VoteSchema.valid() {
		return errors.NewValidationError("vote_schema", "unsupported vote schema", string(s.VoteSchema))
	}
	return nil
}

func (s Settings) logger(component string) log.Logger {
	if s.Logger != nil {
		return s.Logger.With(log.ComponentKey, component)
	}
	return log.GetLoggerWithName(component)
}

// seedField returns the seed for log records, or "none".
func (s Settings) seedField() interface{} {
	if v, ok := s.Seed.Value(); ok {
		return v
	}
	return "none"
}
