package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type InfoHandler struct {
	dataDir      string
	geometryFile string
	prefectures  int
	dbOK         bool
}

func NewInfoHandler(dataDir, geometryFile string, prefectures int, dbOK bool) *InfoHandler {
	return &InfoHandler{dataDir: dataDir, geometryFile: geometryFile, prefectures: prefectures, dbOK: dbOK}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name         string   `json:"name" doc:"Service name"`
	Version      string   `json:"version" doc:"Service version"`
	DataDir      string   `json:"data_dir" doc:"Data directory path"`
	GeometryFile string   `json:"geometry_file" doc:"Prefecture geometry source"`
	Prefectures  int      `json:"prefectures" doc:"Number of loaded prefectures"`
	DB           bool     `json:"db" doc:"Whether the catalog database is available"`
	Features     []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	features := []string{"choropleth", "topojson", "geojson", "datastar"}
	if h.dbOK {
		features = append(features, "duckdb")
	}
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:         "plat-japanmap",
		Version:      Version,
		DataDir:      h.dataDir,
		GeometryFile: h.geometryFile,
		Prefectures:  h.prefectures,
		DB:           h.dbOK,
		Features:     features,
	}}, nil
}
