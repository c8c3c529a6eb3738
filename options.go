package statebox

type config struct {
	clock Clock
}

type Option func(*config)

// WithClock replaces the wall clock used for log entry stamps. All boxes
// of one lineage should share a clock; branches and merges inherit the
// ancestor's clock automatically.
func WithClock(c Clock) Option {
	return func(cfg *config) {
		cfg.clock = c
	}
}

func newConfig(opts []Option) config {
	cfg := config{clock: defaultClock}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}
