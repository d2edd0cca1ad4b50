package export

import (
	"fmt"
	"io"

	"github.com/chazu/planeclip/pkg/clip"
	"github.com/chazu/planeclip/pkg/geom"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

// featureNamespace seeds the name-based feature IDs so that exporting the
// same result twice yields the same IDs.
var featureNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("planeclip/feature"))

// FeatureID returns the stable ID of polyline index in layer.
func FeatureID(layer string, index int) string {
	return uuid.NewSHA1(featureNamespace, []byte(fmt.Sprintf("%s/%d", layer, index))).String()
}

// GeoJSON converts layers into a feature collection in plane coordinates.
// Closed polylines become single-ring polygons that keep their winding, so
// holes stay clockwise; open polylines become line strings. Every feature
// carries its layer, role, index and area.
func GeoJSON(layers []Layer, plane geom.Plane) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, l := range layers {
		for i, pl := range l.Polylines {
			if len(pl) == 0 {
				continue
			}
			role := Classify(pl, plane)

			var g orb.Geometry
			if role == RoleOpen {
				g = orb.LineString(local(pl, plane))
			} else {
				g = orb.Polygon{ring(pl, plane)}
			}
			feature := geojson.NewFeature(g)
			feature.ID = FeatureID(l.Name, i)
			feature.Properties["layer"] = l.Name
			feature.Properties["role"] = role.String()
			feature.Properties["index"] = i
			feature.Properties["area"] = Area(pl, plane)
			fc.Append(feature)
		}
	}
	return fc
}

// WriteGeoJSON encodes layers as a GeoJSON feature collection.
func WriteGeoJSON(w io.Writer, layers []Layer, plane geom.Plane) error {
	data, err := GeoJSON(layers, plane).MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "geojson: marshal")
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "geojson: write")
	}
	return nil
}

// ReadGeoJSON reads polylines from a feature collection or a bare
// geometry and lifts them onto plane. Polygon rings become closed
// polylines, line strings open ones. Points are skipped.
func ReadGeoJSON(r io.Reader, plane geom.Plane) ([]geom.Polyline, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "geojson: read")
	}

	var geometries []orb.Geometry
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err == nil {
		for _, f := range fc.Features {
			geometries = append(geometries, f.Geometry)
		}
	} else {
		g, gerr := geojson.UnmarshalGeometry(data)
		if gerr != nil {
			return nil, errors.Wrap(err, "geojson: decode")
		}
		geometries = append(geometries, g.Geometry())
	}

	var out []geom.Polyline
	for _, g := range geometries {
		out = appendGeometry(out, g, plane)
	}
	return out, nil
}

func appendGeometry(out []geom.Polyline, g orb.Geometry, plane geom.Plane) []geom.Polyline {
	switch g := g.(type) {
	case orb.LineString:
		out = append(out, lift(g, plane))
	case orb.MultiLineString:
		for _, ls := range g {
			out = append(out, lift(ls, plane))
		}
	case orb.Ring:
		out = append(out, lift(g, plane).Closed())
	case orb.Polygon:
		for _, r := range g {
			out = append(out, lift(r, plane).Closed())
		}
	case orb.MultiPolygon:
		for _, p := range g {
			for _, r := range p {
				out = append(out, lift(r, plane).Closed())
			}
		}
	case orb.Collection:
		for _, c := range g {
			out = appendGeometry(out, c, plane)
		}
	case nil:
	default:
		clip.Logger().Debug("export: skipping geometry", "type", g.GeoJSONType())
	}
	return out
}
