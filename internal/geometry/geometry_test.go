package geometry

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
)

func TestLoadGeoJSON(t *testing.T) {
	ds, err := Load(filepath.Join("testdata", "sample.geojson"), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (point feature skipped)", ds.Len())
	}

	ids := []int{}
	for _, r := range ds.Regions() {
		ids = append(ids, r.ID)
	}
	if ids[0] != 1 || ids[1] != 12 || ids[2] != 13 {
		t.Errorf("regions not sorted by id: %v", ids)
	}

	tokyo, ok := ds.Get(13)
	if !ok {
		t.Fatal("Get(13) missing")
	}
	if tokyo.Name != "Tokyo To" || tokyo.NameJa != "東京都" {
		t.Errorf("tokyo properties = %+v", tokyo.Properties)
	}

	hokkaido, _ := ds.Get(1)
	if len(hokkaido.Geometry) != 2 {
		t.Errorf("hokkaido has %d polygons, want 2", len(hokkaido.Geometry))
	}
}

func TestLoadTopoJSON(t *testing.T) {
	ds, err := Load(filepath.Join("testdata", "sample.topojson"), DefaultObjectKey)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ds.Len())
	}

	tokyo, _ := ds.Get(13)
	wantTokyo := orb.Ring{{140, 35}, {140, 36}, {139, 36}, {139, 35}, {140, 35}}
	if !tokyo.Geometry[0][0].Equal(wantTokyo) {
		t.Errorf("tokyo ring = %v, want %v", tokyo.Geometry[0][0], wantTokyo)
	}

	chiba, _ := ds.Get(12)
	wantChiba := orb.Ring{{140, 36}, {140, 35}, {141, 35}, {141, 36}, {140, 36}}
	if !chiba.Geometry[0][0].Equal(wantChiba) {
		t.Errorf("chiba ring = %v, want %v", chiba.Geometry[0][0], wantChiba)
	}
}

func TestTopoJSONSingleObjectFallback(t *testing.T) {
	ds, err := Load(filepath.Join("testdata", "sample.topojson"), "prefectures")
	if err != nil {
		t.Fatalf("Load with unknown key and a single object: %v", err)
	}
	if ds.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ds.Len())
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"unsupported", `{"type":"Feature"}`, ErrUnsupportedFormat},
		{"empty collection", `{"type":"FeatureCollection","features":[]}`, ErrNoFeatures},
		{"missing object", `{"type":"Topology","objects":{"a":{},"b":{}},"arcs":[]}`, ErrObjectNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), "japan")
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeMissingID(t *testing.T) {
	data := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"nam":"x"},
		"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}]}`
	if _, err := Decode([]byte(data), ""); err == nil {
		t.Error("expected an error for a feature without id")
	}
}

func TestLocate(t *testing.T) {
	ds, err := Load(filepath.Join("testdata", "sample.geojson"), "")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		p      orb.Point
		wantID int
		found  bool
	}{
		{orb.Point{139.5, 35.5}, 13, true},
		{orb.Point{140.5, 35.5}, 12, true},
		{orb.Point{139.75, 42.25}, 1, true},
		{orb.Point{150, 30}, 0, false},
	}
	for _, tt := range tests {
		r, ok := ds.Locate(tt.p)
		if ok != tt.found || r.ID != tt.wantID {
			t.Errorf("Locate(%v) = (%d, %v), want (%d, %v)", tt.p, r.ID, ok, tt.wantID, tt.found)
		}
	}
}

func TestNewDatasetMergesDuplicates(t *testing.T) {
	sq := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}
	ds, err := NewDataset([]Region{
		{Properties: Properties{ID: 2}, Geometry: orb.MultiPolygon{sq}},
		{Properties: Properties{ID: 2}, Geometry: orb.MultiPolygon{sq}},
	})
	if err != nil {
		t.Fatal(err)
	}
	r, _ := ds.Get(2)
	if ds.Len() != 1 || len(r.Geometry) != 2 {
		t.Errorf("got %d regions, %d polygons; want 1 region, 2 polygons", ds.Len(), len(r.Geometry))
	}
}

func TestBound(t *testing.T) {
	ds, err := Load(filepath.Join("testdata", "sample.geojson"), "")
	if err != nil {
		t.Fatal(err)
	}
	b := ds.Bound()
	if b.Min != (orb.Point{139, 35}) || b.Max != (orb.Point{145, 45}) {
		t.Errorf("Bound() = %v", b)
	}
}
