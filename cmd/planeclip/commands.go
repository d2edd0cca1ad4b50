package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/chazu/planeclip/pkg/clip"
	"github.com/chazu/planeclip/pkg/export"
	"github.com/chazu/planeclip/pkg/geom"
	"github.com/chazu/planeclip/pkg/tessellate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newOffsetCmd(o *options) *cobra.Command {
	var (
		distances []float64
		side      string
	)
	cmd := &cobra.Command{
		Use:   "offset FILE...",
		Short: "Offset polylines by one or more distances",
		Long: `Offset every polyline in the input files by each distance.
Closed polylines are offset on both sides; open polylines get the
configured end treatment. Each distance becomes one output layer.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := o.app
			plane := a.inputPlane()
			pls, err := readInputs(cmd, args, plane)
			if err != nil {
				return err
			}

			opts := a.settings.OffsetOptions(distances)
			opts.Plane = plane
			if side != "" {
				if opts.Side, err = clip.ParseSide(side); err != nil {
					return err
				}
			}
			res, err := a.pipeline.Offset(pls, opts)
			if err != nil {
				return err
			}
			return o.write(cmd, offsetLayers(res, distances), plane)
		},
	}
	cmd.Flags().Float64SliceVarP(&distances, "distance", "d", nil, "offset distance, repeatable")
	cmd.Flags().StringVar(&side, "side", "", "keep both, outside or inside results")
	_ = cmd.MarkFlagRequired("distance")
	return cmd
}

func newBooleanCmd(o *options) *cobra.Command {
	var (
		subjects []string
		clips    []string
		fill     string
	)
	cmd := &cobra.Command{
		Use:       "boolean OPERATION",
		Short:     "Combine subject and clip polylines",
		Long:      `OPERATION is one of intersection, union, difference, xor or massunion.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"intersection", "union", "difference", "xor", "massunion"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a := o.app
			op, err := clip.ParseOperation(args[0])
			if err != nil {
				return err
			}
			plane := a.inputPlane()
			subj, err := readInputs(cmd, subjects, plane)
			if err != nil {
				return err
			}
			clp, err := readInputs(cmd, clips, plane)
			if err != nil {
				return err
			}

			opts := a.settings.BooleanOptions()
			opts.Plane = plane
			if fill != "" {
				if opts.FillRule, err = clip.ParseFillRule(fill); err != nil {
					return err
				}
			}
			out, err := a.pipeline.Boolean(op, subj, clp, opts)
			if err != nil {
				return err
			}
			return o.write(cmd, []export.Layer{{Name: op.String(), Polylines: out}}, plane)
		},
	}
	cmd.Flags().StringSliceVarP(&subjects, "subject", "s", nil, "subject input file, repeatable")
	cmd.Flags().StringSliceVarP(&clips, "clip", "k", nil, "clip input file, repeatable")
	cmd.Flags().StringVar(&fill, "fill", "", "fill rule: evenodd or nonzero")
	return cmd
}

func newMinkowskiCmd(o *options) *cobra.Command {
	var diff bool
	cmd := &cobra.Command{
		Use:   "minkowski PATTERN PATH",
		Short: "Minkowski sum or difference of two polylines",
		Long: `Sweep the first polyline of PATTERN along the first polyline of PATH,
or subtract it with --diff.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := o.app
			plane := a.inputPlane()
			pattern, err := readFirst(cmd, args[0], plane)
			if err != nil {
				return err
			}
			path, err := readFirst(cmd, args[1], plane)
			if err != nil {
				return err
			}

			run, name := a.pipeline.MinkowskiSum, "minkowski sum"
			if diff {
				run, name = a.pipeline.MinkowskiDiff, "minkowski difference"
			}
			out, err := run(pattern, path, plane, a.settings.Tolerance)
			if err != nil {
				return err
			}
			return o.write(cmd, []export.Layer{{Name: name, Polylines: out}}, plane)
		},
	}
	cmd.Flags().BoolVar(&diff, "diff", false, "compute the Minkowski difference")
	return cmd
}

func newInsideCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inside X Y FILE",
		Short: "Classify a point against every closed polyline in FILE",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := o.app
			var st [2]float64
			for i := range st {
				v, err := strconv.ParseFloat(args[i], 64)
				if err != nil {
					return errors.Wrapf(err, "coordinate %d", i+1)
				}
				st[i] = v
			}
			plane := a.inputPlane()
			pls, err := readInputs(cmd, args[2:], plane)
			if err != nil {
				return err
			}
			pt := plane.PointAt(st[0], st[1])
			for i, pl := range pls {
				if !pl.IsClosed() {
					continue
				}
				where, err := a.pipeline.PointInPolygon(pt, pl, plane, a.settings.Tolerance)
				if err != nil {
					return errors.Wrapf(err, "polyline %d", i)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i, where)
			}
			return nil
		},
	}
}

func newRunCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run SCRIPT",
		Short: "Evaluate a script and write its outputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			result := o.app.Evaluate(source, false)
			if err := report(cmd.ErrOrStderr(), result); err != nil {
				return err
			}
			plane := geom.WorldXY()
			if len(result.Layers) > 0 {
				if plane, err = o.app.plane(result.Layers); err != nil {
					return err
				}
			}
			return o.write(cmd, result.Layers, plane)
		},
	}
}

func newPreviewCmd(o *options) *cobra.Command {
	var (
		thickness  float64
		resolution int
		stack      bool
	)
	cmd := &cobra.Command{
		Use:   "preview SCRIPT",
		Short: "Evaluate a script and write its outputs as extruded meshes",
		Long: `Evaluate a script, extrude every output into a slab and write the
meshes as JSON in world coordinates.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pv := &o.app.settings.Preview
			if cmd.Flags().Changed("thickness") {
				pv.Thickness = thickness
			}
			if cmd.Flags().Changed("resolution") {
				pv.Resolution = resolution
			}
			if cmd.Flags().Changed("stack") {
				pv.Stack = stack
			}
			if !(pv.Thickness > 0) || pv.Resolution < 8 {
				return fmt.Errorf("preview: invalid thickness %v or resolution %d", pv.Thickness, pv.Resolution)
			}

			source, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			result := o.app.Evaluate(source, true)
			if err := report(cmd.ErrOrStderr(), result); err != nil {
				return err
			}
			return o.output(cmd, func(w io.Writer) error {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			})
		},
	}
	cmd.Flags().Float64Var(&thickness, "thickness", 0, "slab thickness")
	cmd.Flags().IntVar(&resolution, "resolution", 0, "marching cubes cells along the longest side")
	cmd.Flags().BoolVar(&stack, "stack", false, "raise each output by one thickness")
	return cmd
}

func newConfigCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := o.cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// offsetLayers flattens an offset result into one layer per distance.
func offsetLayers(res *clip.OffsetResult, distances []float64) []export.Layer {
	tl := tessellate.FromOffset(res, distances)
	layers := make([]export.Layer, len(tl))
	for i, l := range tl {
		pls := make([]geom.Polyline, 0, len(l.Contours)+len(l.Holes))
		pls = append(pls, l.Contours...)
		pls = append(pls, l.Holes...)
		layers[i] = export.Layer{Name: l.Name, Polylines: pls}
	}
	return layers
}

// report prints warnings and returns an error when the script failed.
func report(w io.Writer, result EvalResult) error {
	for _, e := range result.Warnings {
		fmt.Fprintf(w, "warning: %s\n", e.Message)
	}
	if len(result.Errors) == 0 {
		return nil
	}
	for _, e := range result.Errors {
		if e.Line > 0 {
			fmt.Fprintf(w, "error: line %d: %s\n", e.Line, e.Message)
		} else {
			fmt.Fprintf(w, "error: %s\n", e.Message)
		}
	}
	return fmt.Errorf("script failed with %d error(s)", len(result.Errors))
}

// write encodes layers in the selected format.
func (o *options) write(cmd *cobra.Command, layers []export.Layer, plane geom.Plane) error {
	switch o.format {
	case "geojson":
		return o.output(cmd, func(w io.Writer) error {
			return export.WriteGeoJSON(w, layers, plane)
		})
	case "dxf":
		if o.out == "" {
			return errors.New("dxf output requires --out")
		}
		return export.WriteDXF(o.out, layers, plane)
	}
	return fmt.Errorf("unknown format %q, expected geojson or dxf", o.format)
}

// output runs fn against --out, or stdout when it is empty.
func (o *options) output(cmd *cobra.Command, fn func(io.Writer) error) error {
	if o.out == "" {
		return fn(cmd.OutOrStdout())
	}
	f, err := os.Create(o.out)
	if err != nil {
		return errors.Wrap(err, "output")
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// open returns the named file, or stdin for "-".
func open(cmd *cobra.Command, name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "input")
	}
	return f, nil
}

func readSource(cmd *cobra.Command, name string) (string, error) {
	r, err := open(cmd, name)
	if err != nil {
		return "", err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", name)
	}
	return string(data), nil
}

// readInputs reads every GeoJSON file onto plane. Polylines that fail
// validation are dropped with a warning.
func readInputs(cmd *cobra.Command, names []string, plane geom.Plane) ([]geom.Polyline, error) {
	var all []geom.Polyline
	for _, name := range names {
		r, err := open(cmd, name)
		if err != nil {
			return nil, err
		}
		pls, err := export.ReadGeoJSON(r, plane)
		r.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", name)
		}
		all = append(all, pls...)
	}

	usable, findings := geom.ValidateAll(all)
	for _, f := range findings {
		clip.Logger().Warn("input", "finding", f.Error())
	}
	return usable, nil
}

func readFirst(cmd *cobra.Command, name string, plane geom.Plane) (geom.Polyline, error) {
	pls, err := readInputs(cmd, []string{name}, plane)
	if err != nil {
		return nil, err
	}
	if len(pls) == 0 {
		return nil, fmt.Errorf("%s: no usable polyline", name)
	}
	return pls[0], nil
}
