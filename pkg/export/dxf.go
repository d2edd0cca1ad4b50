package export

import (
	"strings"

	"github.com/chazu/planeclip/pkg/clip"
	"github.com/chazu/planeclip/pkg/geom"
	"github.com/pkg/errors"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/entity"
)

var roleColors = map[Role]color.ColorNumber{
	RoleContour: color.Red,
	RoleHole:    color.Blue,
	RoleOpen:    color.Green,
}

// DXFLayerName is the drawing layer a polyline of the given role in the
// given result layer is written to.
func DXFLayerName(layer string, role Role) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':', ';', '*', '?', '"', '<', '>', '|', '=', '`':
			return '_'
		}
		return r
	}, layer)
	if name == "" {
		name = "result"
	}
	return name + "_" + role.String()
}

// WriteDXF writes every polyline as an LWPOLYLINE in plane coordinates.
// Each layer and role pair gets its own drawing layer.
func WriteDXF(path string, layers []Layer, plane geom.Plane) error {
	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0

	created := make(map[string]bool)
	for _, l := range layers {
		for i, pl := range l.Polylines {
			if len(pl) < 2 {
				continue
			}
			role := Classify(pl, plane)
			name := DXFLayerName(l.Name, role)
			if !created[name] {
				if _, err := d.AddLayer(name, roleColors[role], dxf.DefaultLineType, true); err != nil {
					return errors.Wrapf(err, "dxf: add layer %s", name)
				}
				created[name] = true
			} else if err := d.ChangeLayer(name); err != nil {
				return errors.Wrapf(err, "dxf: change layer %s", name)
			}

			pts := local(pl, plane)
			if role != RoleOpen {
				pts = pts[:len(pts)-1]
			}
			lwp := entity.NewLwPolyline(len(pts))
			for j, p := range pts {
				lwp.Vertices[j] = []float64{p[0], p[1]}
			}
			if role != RoleOpen {
				lwp.Close()
			}
			d.AddEntity(lwp)
			clip.Logger().Debug("export: dxf polyline", "layer", name, "index", i, "vertices", len(pts))
		}
	}

	if err := d.SaveAs(path); err != nil {
		return errors.Wrapf(err, "dxf: save %s", path)
	}
	return nil
}
