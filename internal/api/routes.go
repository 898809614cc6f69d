// Package api defines the Huma REST routes and handlers.
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-japanmap/internal/humastar"
	"github.com/joeblew999/plat-japanmap/internal/service"
	"github.com/joeblew999/plat-japanmap/internal/session"
	"github.com/joeblew999/plat-japanmap/internal/style"
)

// Version is reported by /health and /api/v1/info.
const Version = "0.1.0"

// Services holds the service dependencies for API handlers.
type Services struct {
	Regions  *service.RegionService
	Sessions *session.Store
}

// Types

type IDInput struct {
	ID int `path:"id" minimum:"1" doc:"Prefecture id (JIS X 0401)" example:"13"`
}

type LocateInput struct {
	Lon float64 `query:"lon" required:"true" minimum:"-180" maximum:"180" doc:"Longitude" example:"139.69"`
	Lat float64 `query:"lat" required:"true" minimum:"-90" maximum:"90" doc:"Latitude" example:"35.69"`
}

type StyleInput struct {
	IDInput
	Selected bool `query:"selected" doc:"Resolve as if the prefecture were selected"`
	Flat     bool `query:"flat" doc:"Ignore region group coloring"`
}

// RegionBody is one prefecture with its map actions.
type RegionBody struct {
	service.RegionInfo
}

var regionActions = []humastar.ActionDef{
	{Rel: "select", Pattern: "/api/v1/map/click/%v", Method: "POST", Title: "Toggle selection"},
	{Rel: "hover", Pattern: "/api/v1/map/hover/%v", Method: "POST", Title: "Show tooltip"},
	{Rel: "style", Pattern: "/api/v1/prefectures/%v/style", Method: "GET", Title: "Resolved style"},
}

func (b RegionBody) Actions() []humastar.Action {
	return humastar.ActionsFor(b.ID, regionActions)
}

type RegionOutput struct {
	Body RegionBody
}

type RegionsOutput struct {
	Body []service.RegionInfo
}

type StyleOutput struct {
	Body style.Set
}

type GroupsOutput struct {
	Body []service.GroupInfo
}

type HealthBody struct {
	Status   string `json:"status" doc:"Health status" example:"ok"`
	Version  string `json:"version" doc:"API version" example:"0.1.0"`
	Geometry bool   `json:"geometry" doc:"Whether prefecture geometry loaded"`
	Sessions int    `json:"sessions" doc:"Live map sessions"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterRoutes registers every REST route on api.
func RegisterRoutes(api huma.API, svc *Services) {
	huma.AutoRegister(api, NewAPIHandler(svc))
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterPrefectures registers the prefecture catalog routes.
func (h *APIHandler) RegisterPrefectures(api huma.API) {
	huma.Get(api, "/api/v1/prefectures", h.GetPrefectures, huma.OperationTags("prefectures"))
	huma.Get(api, "/api/v1/prefectures/locate", h.LocatePrefecture, huma.OperationTags("prefectures"))
	huma.Get(api, "/api/v1/prefectures/{id}", h.GetPrefecture, huma.OperationTags("prefectures"))
	huma.Get(api, "/api/v1/prefectures/{id}/style", h.GetPrefectureStyle, huma.OperationTags("prefectures"))
}

// RegisterGroups registers region group routes.
func (h *APIHandler) RegisterGroups(api huma.API) {
	huma.Get(api, "/api/v1/groups", h.GetGroups, huma.OperationTags("groups"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	body := HealthBody{Status: "ok", Version: Version}
	if h.svc != nil && h.svc.Regions != nil {
		body.Geometry = h.svc.Regions.Available()
	}
	if h.svc != nil && h.svc.Sessions != nil {
		body.Sessions = h.svc.Sessions.Len()
	}
	return &struct{ Body HealthBody }{Body: body}, nil
}

func (h *APIHandler) GetPrefectures(ctx context.Context, input *struct{}) (*RegionsOutput, error) {
	if h.svc == nil || h.svc.Regions == nil {
		return &RegionsOutput{Body: []service.RegionInfo{}}, nil
	}
	return &RegionsOutput{Body: h.svc.Regions.List()}, nil
}

func (h *APIHandler) GetPrefecture(ctx context.Context, input *IDInput) (*RegionOutput, error) {
	if err := h.requireGeometry(); err != nil {
		return nil, err
	}
	info, ok := h.svc.Regions.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("prefecture not found")
	}
	return &RegionOutput{Body: RegionBody{info}}, nil
}

func (h *APIHandler) LocatePrefecture(ctx context.Context, input *LocateInput) (*RegionOutput, error) {
	if err := h.requireGeometry(); err != nil {
		return nil, err
	}
	info, ok := h.svc.Regions.Locate(input.Lon, input.Lat)
	if !ok {
		return nil, huma.Error404NotFound("no prefecture at this point")
	}
	return &RegionOutput{Body: RegionBody{info}}, nil
}

func (h *APIHandler) GetPrefectureStyle(ctx context.Context, input *StyleInput) (*StyleOutput, error) {
	if err := h.requireGeometry(); err != nil {
		return nil, err
	}
	set, ok := h.svc.Regions.Style(input.ID, input.Selected, !input.Flat)
	if !ok {
		return nil, huma.Error404NotFound("prefecture not found")
	}
	return &StyleOutput{Body: set}, nil
}

func (h *APIHandler) GetGroups(ctx context.Context, input *struct{}) (*GroupsOutput, error) {
	if h.svc == nil || h.svc.Regions == nil {
		return &GroupsOutput{Body: []service.GroupInfo{}}, nil
	}
	return &GroupsOutput{Body: h.svc.Regions.Groups()}, nil
}

func (h *APIHandler) requireGeometry() error {
	if h.svc == nil || h.svc.Regions == nil || !h.svc.Regions.Available() {
		return huma.Error503ServiceUnavailable("prefecture geometry not loaded")
	}
	return nil
}
