package discriminator

// Config holds the construction settings shared by all discriminator
// constructors.
type Config struct {
	Bands int   // PQMF sub-band count q
	Seed  int64 // seed for weight initialization
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the defaults: four PQMF bands, seed 1.
func DefaultConfig() Config {
	return Config{
		Bands: 4,
		Seed:  1,
	}
}

// WithBands sets the PQMF sub-band count. It must match the channel
// count of the band tensors fed to Evaluate.
func WithBands(q int) Option {
	return func(cfg *Config) {
		if q > 0 {
			cfg.Bands = q
		}
	}
}

// WithSeed sets the weight initialization seed.
func WithSeed(seed int64) Option {
	return func(cfg *Config) {
		cfg.Seed = seed
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
