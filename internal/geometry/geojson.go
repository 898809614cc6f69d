package geometry

import (
	"fmt"

	"github.com/paulmach/orb/geojson"
)

func decodeGeoJSON(data []byte) ([]Region, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing geojson: %w", err)
	}

	regions := make([]Region, 0, len(fc.Features))
	for i, f := range fc.Features {
		mp := toMultiPolygon(f.Geometry)
		if mp == nil {
			continue
		}
		props, err := propertiesFrom(f.Properties)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		regions = append(regions, Region{Properties: props, Geometry: mp})
	}
	return regions, nil
}
