package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestServer(t *testing.T, geometryFile string) *Server {
	t.Helper()
	srv, err := New(Config{
		Host:         "localhost",
		Port:         "0",
		DataDir:      t.TempDir(),
		GeometryFile: geometryFile,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv
}

func sampleGeometry() string {
	return filepath.Join("..", "geometry", "testdata", "sample.geojson")
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, sampleGeometry())
	rec := get(t, srv, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Status   string `json:"status"`
		Geometry bool   `json:"geometry"`
	}
	decode(t, rec, &body)
	if body.Status != "ok" || !body.Geometry {
		t.Errorf("health = %+v", body)
	}
	if links := rec.Header().Values("Link"); len(links) == 0 {
		t.Error("expected Link headers on /health")
	}
}

func TestPrefectureCatalog(t *testing.T) {
	srv := newTestServer(t, sampleGeometry())

	var list []struct {
		ID     int    `json:"id"`
		NameJa string `json:"nam_ja"`
		Group  string `json:"group"`
	}
	decode(t, get(t, srv, "/api/v1/prefectures"), &list)
	if len(list) != 3 || list[0].ID != 1 || list[2].ID != 13 {
		t.Fatalf("prefectures = %+v", list)
	}

	rec := get(t, srv, "/api/v1/prefectures/13")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET 13 status = %d", rec.Code)
	}
	links := strings.Join(rec.Header().Values("Link"), ", ")
	for _, want := range []string{`</api/v1/map/click/13>; rel="select"; method="POST"; title="Toggle selection"`, `rel="self"`, `rel="collection"`} {
		if !strings.Contains(links, want) {
			t.Errorf("Link headers %q missing %q", links, want)
		}
	}

	for _, id := range []string{"48", "99", "2"} {
		if rec := get(t, srv, "/api/v1/prefectures/"+id); rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", id, rec.Code)
		}
	}

	var located struct {
		ID int `json:"id"`
	}
	decode(t, get(t, srv, "/api/v1/prefectures/locate?lon=140.5&lat=35.5"), &located)
	if located.ID != 12 {
		t.Errorf("locate = %d, want 12", located.ID)
	}
	if rec := get(t, srv, "/api/v1/prefectures/locate?lon=100&lat=10"); rec.Code != http.StatusNotFound {
		t.Errorf("locate miss status = %d, want 404", rec.Code)
	}

	var set struct {
		Default struct {
			Fill string `json:"fill"`
		} `json:"default"`
	}
	decode(t, get(t, srv, "/api/v1/prefectures/13/style?selected=true"), &set)
	if set.Default.Fill != "#7c3aed" {
		t.Errorf("selected fill = %s", set.Default.Fill)
	}
	decode(t, get(t, srv, "/api/v1/prefectures/13/style"), &set)
	if set.Default.Fill != "#fca5a5" {
		t.Errorf("grouped fill = %s", set.Default.Fill)
	}

	var groups []struct {
		Name string `json:"name"`
	}
	decode(t, get(t, srv, "/api/v1/groups"), &groups)
	if len(groups) != 8 {
		t.Errorf("got %d groups", len(groups))
	}
}

func TestCatalogDatabase(t *testing.T) {
	srv := newTestServer(t, sampleGeometry())

	var tables struct {
		Tables []struct {
			Name string `json:"name"`
			Rows int    `json:"rows"`
		} `json:"tables"`
	}
	decode(t, get(t, srv, "/api/v1/tables"), &tables)
	found := false
	for _, tb := range tables.Tables {
		if tb.Name == "prefectures" {
			found = true
			if tb.Rows != 3 {
				t.Errorf("prefectures rows = %d, want 3", tb.Rows)
			}
		}
	}
	if !found {
		t.Errorf("tables = %+v", tables.Tables)
	}

	post := func(q string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]string{"query": q})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(string(body)))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		return rec
	}

	rec := post("SELECT name_ja FROM prefectures WHERE id = 13")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "東京都") {
		t.Errorf("query = %d %s", rec.Code, rec.Body.String())
	}
	if rec := post("DELETE FROM prefectures"); rec.Code != http.StatusBadRequest {
		t.Errorf("DELETE status = %d, want 400", rec.Code)
	}
}

func TestMissingGeometry(t *testing.T) {
	srv := newTestServer(t, filepath.Join(t.TempDir(), "missing.topojson"))

	var body struct {
		Geometry bool `json:"geometry"`
	}
	decode(t, get(t, srv, "/health"), &body)
	if body.Geometry {
		t.Error("geometry should be reported missing")
	}
	if rec := get(t, srv, "/api/v1/prefectures/13"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if rec := get(t, srv, "/"); !strings.Contains(rec.Body.String(), "Geometry unavailable") {
		t.Error("page should render the empty state")
	}
}

func TestStaticAndOpenAPI(t *testing.T) {
	srv := newTestServer(t, sampleGeometry())

	rec := get(t, srv, "/static/map.css")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), ".prefecture") {
		t.Errorf("map.css status = %d", rec.Code)
	}

	spec := srv.OpenAPI()
	for _, path := range []string{"/api/v1/map/click/{id}", "/api/v1/prefectures/{id}/style", "/api/v1/query"} {
		if _, ok := spec.Paths[path]; !ok {
			t.Errorf("OpenAPI missing %s", path)
		}
	}
}

func TestWebDirReload(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "templates", "index.html")
	write := func(path, body string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(index, `{{define "index"}}first{{end}}`)
	write(filepath.Join(dir, "templates", "fragments", "map.html"), `{{define "map"}}{{end}}`)

	srv, err := New(Config{
		DataDir:      t.TempDir(),
		WebDir:       dir,
		GeometryFile: sampleGeometry(),
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { srv.Close() })

	if got := get(t, srv, "/").Body.String(); got != "first" {
		t.Fatalf("page = %q", got)
	}
	write(index, `{{define "index"}}second{{end}}`)
	if got := get(t, srv, "/").Body.String(); got != "second" {
		t.Errorf("page after edit = %q", got)
	}
	write(index, `{{define "index"}}{{.Broken`)
	if got := get(t, srv, "/").Body.String(); got != "second" {
		t.Errorf("page after bad edit = %q, want last good template", got)
	}
}
