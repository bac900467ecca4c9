package config

import (
	"github.com/bmatcuk/doublestar/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/treerings/pkg/errors"
)

var (
	vizTypes  = []any{"circles", "nodelink", "radial"}
	formats   = []any{"svg", "png", "pdf", "json"}
	encodings = []any{"type", "number-of-changes", "last-change"}
)

// Validate checks every section and wraps the first failure as an
// [errors.ErrCodeInvalidConfig] error.
func (c *Config) Validate() error {
	sections := []struct {
		name string
		v    validation.Validatable
	}{
		{"layout", &c.Layout},
		{"render", &c.Render},
		{"input", &c.Input},
		{"cache", &c.Cache},
		{"store", &c.Store},
		{"server", &c.Server},
	}
	for _, s := range sections {
		if err := s.v.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "[%s]", s.name)
		}
	}
	return nil
}

// Validate validates the layout configuration.
func (c *LayoutConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Width, validation.Required, validation.Min(1.0)),
		validation.Field(&c.Height, validation.Required, validation.Min(1.0)),
		validation.Field(&c.HeightRatio, validation.Required, validation.Min(0.1), validation.Max(10.0)),
		validation.Field(&c.MaxDepth, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxNodes, validation.Required, validation.Min(1)),
		validation.Field(&c.Iterations, validation.Required, validation.Min(1), validation.Max(100000)),
	)
}

// Validate validates the render configuration.
func (c *RenderConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.VizType, validation.Required, validation.In(vizTypes...)),
		validation.Field(&c.Formats, validation.Required, validation.Each(validation.In(formats...))),
		validation.Field(&c.MinCircleRadius, validation.Min(0.0)),
		validation.Field(&c.ColorEncoding, validation.Required, validation.In(encodings...)),
	)
}

// Validate checks that every exclude pattern is a valid doublestar glob.
func (c *InputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Exclude, validation.Each(validation.By(validGlob))),
	)
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(CacheFile, CacheRedis, CacheNone)),
		validation.Field(&c.RedisURL, validation.When(c.Backend == CacheRedis, validation.Required)),
		validation.Field(&c.TTL, validation.By(nonNegative)),
	)
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(StoreMemory, StoreFile, StoreMongo)),
		validation.Field(&c.MongoURI, validation.When(c.Backend == StoreMongo, validation.Required)),
	)
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.RequestTimeout, validation.By(nonNegative)),
	)
}

func validGlob(value any) error {
	s, _ := value.(string)
	if !doublestar.ValidatePattern(s) {
		return validation.NewError("validation_glob", "must be a valid glob pattern")
	}
	return nil
}

func nonNegative(value any) error {
	if d, ok := value.(Duration); ok && d.Duration < 0 {
		return validation.NewError("validation_duration", "must not be negative")
	}
	return nil
}
