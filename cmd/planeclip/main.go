// Command planeclip offsets, clips and previews planar polylines.
//
// Input geometry is read from GeoJSON in working-plane coordinates, results
// are written as GeoJSON or DXF, and scripts written in the planeclip Lisp
// dialect can chain every operation.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chazu/planeclip/pkg/clip"
	"github.com/chazu/planeclip/pkg/config"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options are the persistent flags shared by every subcommand.
type options struct {
	configPath string
	verbose    bool
	format     string
	out        string

	cfg config.Config
	app *App
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "planeclip",
		Short:         "Offset, clip and preview planar polylines",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup(cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", "", "TOML configuration file")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "log pipeline details to stderr")
	pf.StringVarP(&o.format, "format", "f", "geojson", "output format: geojson or dxf")
	pf.StringVarP(&o.out, "out", "o", "", "output file (stdout when empty; required for dxf)")

	root.AddCommand(
		newOffsetCmd(o),
		newBooleanCmd(o),
		newMinkowskiCmd(o),
		newInsideCmd(o),
		newRunCmd(o),
		newPreviewCmd(o),
		newConfigCmd(o),
	)
	return root
}

// setup loads the configuration, installs the logger and builds the App.
func (o *options) setup(stderr io.Writer) error {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	clip.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return err
		}
	}
	settings, err := cfg.Resolve()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	clip.Logger().Debug("settings resolved",
		"tolerance", settings.Tolerance,
		"fill", settings.FillRule,
		"side", settings.Side,
		"plane", settings.Plane.IsValid())

	o.cfg = cfg
	o.app = NewApp(settings)
	return nil
}
