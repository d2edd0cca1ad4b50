// Package config loads planeclip settings from TOML and resolves them into
// the explicit values the clip pipelines take. Nothing here is global: the
// caller resolves a Config once and passes the resulting Settings around.
package config

import (
	"bytes"
	"io"
	"math"
	"os"

	"github.com/chazu/planeclip/pkg/clip"
	"github.com/chazu/planeclip/pkg/geom"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// Config mirrors the TOML file.
type Config struct {
	// AbsoluteTolerance is the host document tolerance in model units.
	AbsoluteTolerance float64 `toml:"absolute_tolerance"`
	// Tolerance is the quantization grid size. Zero means
	// AbsoluteTolerance / 10.
	Tolerance float64 `toml:"tolerance"`
	// ArcTolerance is the maximum deviation of round joins, in grid units.
	ArcTolerance float64 `toml:"arc_tolerance"`
	MiterLimit   float64 `toml:"miter_limit"`

	FillRule     string   `toml:"fill_rule"`
	Side         string   `toml:"side"`
	OpenFillet   []string `toml:"open_fillet"`
	ClosedFillet []string `toml:"closed_fillet"`

	// RequireInput turns "nothing to do" into an error.
	RequireInput bool `toml:"require_input"`

	Plane   *PlaneConfig  `toml:"plane,omitempty"`
	Preview PreviewConfig `toml:"preview"`
}

// PlaneConfig is an explicit working plane. When absent the plane is fitted
// to the input.
type PlaneConfig struct {
	Origin [3]float64 `toml:"origin"`
	XAxis  [3]float64 `toml:"x_axis"`
	YAxis  [3]float64 `toml:"y_axis"`
}

// PreviewConfig controls mesh previews of offset results.
type PreviewConfig struct {
	Thickness  float64 `toml:"thickness"`
	Resolution int     `toml:"resolution"`
	// Stack raises each successive layer by Thickness.
	Stack bool `toml:"stack"`
}

// Settings are the resolved, typed values handed to the pipelines.
type Settings struct {
	Tolerance     float64
	ArcTolerance  float64
	MiterLimit    float64
	FillRule      clip.FillRule
	Side          clip.Side
	OpenFillets   []clip.OpenFillet
	ClosedFillets []clip.ClosedFillet
	// Plane is the zero Plane when the input should be fitted.
	Plane        geom.Plane
	RequireInput bool
	Preview      PreviewConfig
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		AbsoluteTolerance: 0.01,
		ArcTolerance:      0.25,
		MiterLimit:        2,
		FillRule:          "evenodd",
		Side:              "both",
		OpenFillet:        []string{"butt"},
		ClosedFillet:      []string{"square"},
		Preview: PreviewConfig{
			Thickness:  1,
			Resolution: 64,
		},
	}
}

// Load reads a TOML file over the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "config")
	}
	defer f.Close()
	cfg, err := Decode(f)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes TOML bytes over the defaults.
func Parse(data []byte) (Config, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads TOML from r over the defaults. Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, errors.Errorf("unknown keys:\n%s", strict.String())
		}
		return Config{}, errors.Wrap(err, "decode")
	}
	return cfg, nil
}

// Marshal encodes the configuration as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate reports the first invalid value.
func (c Config) Validate() error {
	_, err := c.Resolve()
	return err
}

// Resolve validates the configuration and converts it to Settings.
func (c Config) Resolve() (Settings, error) {
	var s Settings

	if err := clip.ValidateTolerance(c.AbsoluteTolerance); err != nil {
		return s, errors.Wrap(err, "absolute_tolerance")
	}
	s.Tolerance = c.Tolerance
	if s.Tolerance == 0 {
		s.Tolerance = c.AbsoluteTolerance / 10
	}
	if err := clip.ValidateTolerance(s.Tolerance); err != nil {
		return s, errors.Wrap(err, "tolerance")
	}

	if !nonNegative(c.ArcTolerance) {
		return s, errors.Errorf("arc_tolerance must be >= 0, got %v", c.ArcTolerance)
	}
	if !nonNegative(c.MiterLimit) {
		return s, errors.Errorf("miter_limit must be >= 0, got %v", c.MiterLimit)
	}
	s.ArcTolerance = c.ArcTolerance
	s.MiterLimit = c.MiterLimit

	var err error
	if s.FillRule, err = clip.ParseFillRule(c.FillRule); err != nil {
		return s, errors.Wrap(err, "fill_rule")
	}
	if s.Side, err = clip.ParseSide(c.Side); err != nil {
		return s, errors.Wrap(err, "side")
	}
	for i, name := range c.OpenFillet {
		f, err := clip.ParseOpenFillet(name)
		if err != nil {
			return s, errors.Wrapf(err, "open_fillet[%d]", i)
		}
		s.OpenFillets = append(s.OpenFillets, f)
	}
	for i, name := range c.ClosedFillet {
		f, err := clip.ParseClosedFillet(name)
		if err != nil {
			return s, errors.Wrapf(err, "closed_fillet[%d]", i)
		}
		s.ClosedFillets = append(s.ClosedFillets, f)
	}

	if c.Plane != nil {
		pln, err := geom.NewPlane(vec(c.Plane.Origin), vec(c.Plane.XAxis), vec(c.Plane.YAxis))
		if err != nil {
			return s, errors.Wrap(err, "plane")
		}
		s.Plane = pln
	}

	if !(c.Preview.Thickness > 0) || math.IsInf(c.Preview.Thickness, 0) {
		return s, errors.Errorf("preview.thickness must be positive, got %v", c.Preview.Thickness)
	}
	if c.Preview.Resolution < 8 {
		return s, errors.Errorf("preview.resolution must be at least 8, got %d", c.Preview.Resolution)
	}
	s.Preview = c.Preview
	s.RequireInput = c.RequireInput
	return s, nil
}

// PipelineOptions returns the clip.Pipeline options these settings imply.
func (s Settings) PipelineOptions() []clip.Option {
	var opts []clip.Option
	if s.RequireInput {
		opts = append(opts, clip.WithRequireInput())
	}
	return opts
}

// OffsetOptions builds offset options for the given distances.
func (s Settings) OffsetOptions(distances []float64) clip.OffsetOptions {
	return clip.OffsetOptions{
		OpenFillets:   s.OpenFillets,
		ClosedFillets: s.ClosedFillets,
		Plane:         s.Plane,
		Tolerance:     s.Tolerance,
		Distances:     distances,
		MiterLimit:    s.MiterLimit,
		ArcTolerance:  s.ArcTolerance,
		Side:          s.Side,
	}
}

// BooleanOptions builds boolean options.
func (s Settings) BooleanOptions() clip.BooleanOptions {
	return clip.BooleanOptions{
		Plane:     s.Plane,
		Tolerance: s.Tolerance,
		FillRule:  s.FillRule,
	}
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

func vec(a [3]float64) r3.Vec {
	return r3.Vec{X: a[0], Y: a[1], Z: a[2]}
}
