// Package geo adapts the map widget's drawings to the property location
// fields the backend stores.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// ErrInvalidGeometry is returned for drawings that are not a usable
// point or polygon.
var ErrInvalidGeometry = errors.New("invalid geometry")

// PolygonEditor is the narrow surface the location tab needs from a
// map drawing widget.
type PolygonEditor interface {
	Draw(data []byte) error
	Coordinates() []orb.Point
	Shape() Shape
	Clear()
}

// Shape is a property location: a marker, an outline, or both.
type Shape struct {
	Point   *orb.Point
	Polygon orb.Polygon
}

// Empty reports whether nothing has been drawn.
func (s Shape) Empty() bool {
	return s.Point == nil && len(s.Polygon) == 0
}

// Center is the marker when set, else the polygon centroid.
func (s Shape) Center() (orb.Point, bool) {
	if s.Point != nil {
		return *s.Point, true
	}
	if len(s.Polygon) == 0 {
		return orb.Point{}, false
	}
	c, _ := planar.CentroidArea(s.Polygon)
	return c, true
}

// Fields encodes the shape as the latitude, longitude and polygon form
// fields. polygon is a GeoJSON geometry object.
func (s Shape) Fields() (map[string]string, error) {
	out := map[string]string{}
	if c, ok := s.Center(); ok {
		out["latitude"] = formatCoord(c.Lat())
		out["longitude"] = formatCoord(c.Lon())
	}
	if len(s.Polygon) > 0 {
		data, err := json.Marshal(geojson.NewGeometry(s.Polygon))
		if err != nil {
			return nil, fmt.Errorf("encoding polygon: %w", err)
		}
		out["polygon"] = string(data)
	}
	return out, nil
}

// FeatureCollection renders the shape for the map widget.
func (s Shape) FeatureCollection() ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	if len(s.Polygon) > 0 {
		fc.Append(geojson.NewFeature(s.Polygon))
	}
	if s.Point != nil {
		fc.Append(geojson.NewFeature(*s.Point))
	}
	return json.Marshal(fc)
}

// Editor is the default PolygonEditor. It is not safe for concurrent use.
type Editor struct {
	shape Shape
}

// NewEditor returns an empty editor.
func NewEditor() *Editor {
	return &Editor{}
}

// Draw replaces the current shape with the drawing in data, which may be a
// GeoJSON geometry, feature or feature collection. A collection may carry
// one polygon and one point.
func (e *Editor) Draw(data []byte) error {
	geoms, err := decode(data)
	if err != nil {
		return err
	}

	var shape Shape
	for _, g := range geoms {
		if g == nil {
			continue
		}
		switch g := g.(type) {
		case orb.Point:
			if err := checkPoint(g); err != nil {
				return err
			}
			p := g
			shape.Point = &p
		case orb.Polygon:
			poly, err := normalize(g)
			if err != nil {
				return err
			}
			shape.Polygon = poly
		case orb.MultiPolygon:
			if len(g) != 1 {
				return fmt.Errorf("%w: expected a single polygon, got %d", ErrInvalidGeometry, len(g))
			}
			poly, err := normalize(g[0])
			if err != nil {
				return err
			}
			shape.Polygon = poly
		default:
			return fmt.Errorf("%w: unsupported type %s", ErrInvalidGeometry, g.GeoJSONType())
		}
	}
	if shape.Empty() {
		return fmt.Errorf("%w: nothing drawn", ErrInvalidGeometry)
	}
	e.shape = shape
	return nil
}

// Load restores a shape from stored field values. Empty values are skipped.
func (e *Editor) Load(latitude, longitude, polygon string) error {
	var shape Shape
	if latitude != "" && longitude != "" {
		lat, err := strconv.ParseFloat(strings.TrimSpace(latitude), 64)
		if err != nil {
			return fmt.Errorf("%w: latitude %q", ErrInvalidGeometry, latitude)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(longitude), 64)
		if err != nil {
			return fmt.Errorf("%w: longitude %q", ErrInvalidGeometry, longitude)
		}
		p := orb.Point{lon, lat}
		if err := checkPoint(p); err != nil {
			return err
		}
		shape.Point = &p
	}
	if strings.TrimSpace(polygon) != "" {
		g, err := geojson.UnmarshalGeometry([]byte(polygon))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
		}
		poly, ok := g.Geometry().(orb.Polygon)
		if !ok {
			return fmt.Errorf("%w: stored polygon is %s", ErrInvalidGeometry, g.Type)
		}
		if shape.Polygon, err = normalize(poly); err != nil {
			return err
		}
	}
	e.shape = shape
	return nil
}

// Coordinates returns the outer ring of the polygon, or the marker alone.
func (e *Editor) Coordinates() []orb.Point {
	if len(e.shape.Polygon) > 0 {
		ring := e.shape.Polygon[0]
		out := make([]orb.Point, len(ring))
		copy(out, ring)
		return out
	}
	if e.shape.Point != nil {
		return []orb.Point{*e.shape.Point}
	}
	return nil
}

// Shape returns the current shape.
func (e *Editor) Shape() Shape {
	return e.shape
}

// Clear discards the current shape.
func (e *Editor) Clear() {
	e.shape = Shape{}
}

// FromItem reads the location fields of a backend record.
func FromItem(item map[string]any) (Shape, error) {
	e := NewEditor()
	polygon := ""
	switch v := item["polygon"].(type) {
	case string:
		polygon = v
	case map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return Shape{}, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
		}
		polygon = string(data)
	}
	if err := e.Load(scalar(item["latitude"]), scalar(item["longitude"]), polygon); err != nil {
		return Shape{}, err
	}
	return e.Shape(), nil
}

func decode(data []byte) ([]orb.Geometry, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}

	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
		}
		out := make([]orb.Geometry, 0, len(fc.Features))
		for _, f := range fc.Features {
			if f.Geometry != nil {
				out = append(out, f.Geometry)
			}
		}
		return out, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
		}
		if f.Geometry == nil {
			return nil, fmt.Errorf("%w: feature without geometry", ErrInvalidGeometry)
		}
		return []orb.Geometry{f.Geometry}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrInvalidGeometry)
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
		}
		return []orb.Geometry{g.Geometry()}, nil
	}
}

// normalize closes open rings and rejects degenerate ones.
func normalize(poly orb.Polygon) (orb.Polygon, error) {
	if len(poly) == 0 {
		return nil, fmt.Errorf("%w: polygon has no rings", ErrInvalidGeometry)
	}
	out := make(orb.Polygon, 0, len(poly))
	for _, ring := range poly {
		for _, p := range ring {
			if err := checkPoint(p); err != nil {
				return nil, err
			}
		}
		r := make(orb.Ring, len(ring))
		copy(r, ring)
		if len(r) > 0 && !r.Closed() {
			r = append(r, r[0])
		}
		if len(r) < 4 {
			return nil, fmt.Errorf("%w: ring needs at least 3 distinct points", ErrInvalidGeometry)
		}
		out = append(out, r)
	}
	if planar.Area(out) == 0 {
		return nil, fmt.Errorf("%w: polygon has no area", ErrInvalidGeometry)
	}
	return out, nil
}

func checkPoint(p orb.Point) error {
	if p.Lon() < -180 || p.Lon() > 180 || p.Lat() < -90 || p.Lat() > 90 {
		return fmt.Errorf("%w: coordinate %v out of range", ErrInvalidGeometry, p)
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func scalar(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return formatCoord(v)
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
