// Package mapui serves the interactive prefecture map as Datastar SSE
// fragments. Every browser session owns one page; handlers mutate it and
// stream back the fragments that changed.
package mapui

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-japanmap/internal/humastar"
	"github.com/joeblew999/plat-japanmap/internal/page"
	"github.com/joeblew999/plat-japanmap/internal/service"
	"github.com/joeblew999/plat-japanmap/internal/session"
	"github.com/joeblew999/plat-japanmap/internal/templates"
	"github.com/joeblew999/plat-japanmap/internal/widget"
)

// SessionInput reads the session cookie issued by the page route.
type SessionInput struct {
	Session string `cookie:"japanmap_session" doc:"Map session id, issued by GET /"`
}

// RegionInput addresses one prefecture.
type RegionInput struct {
	SessionInput
	ID int `path:"id" minimum:"1" doc:"Prefecture id" example:"13"`
}

// SignalsInput carries Datastar signals for a session.
type SignalsInput struct {
	SessionInput
	humastar.SignalsInput
}

// Handler holds the map SSE handlers.
type Handler struct {
	humastar.Handler
	sessions *session.Store
	bus      *service.EventBus
	logger   *slog.Logger
}

// NewHandler creates the map handler.
func NewHandler(sessions *session.Store, bus *service.EventBus, renderer *templates.Renderer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Handler:  humastar.Handler{Renderer: renderer},
		sessions: sessions,
		bus:      bus,
		logger:   logger,
	}
}

// RegisterRoutes registers the map SSE routes.
func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/map", h.GetMap, huma.OperationTags("map"))
	huma.Get(api, "/api/v1/map/events", h.Events, huma.OperationTags("map"))
	huma.Post(api, "/api/v1/map/resize", h.Resize, huma.OperationTags("map"))
	huma.Post(api, "/api/v1/map/click/{id}", h.Click, huma.OperationTags("map"))
	huma.Post(api, "/api/v1/map/hover/{id}", h.Hover, huma.OperationTags("map"))
	huma.Post(api, "/api/v1/map/leave", h.Leave, huma.OperationTags("map"))
	huma.Post(api, "/api/v1/map/zoom", h.Zoom, huma.OperationTags("map"))
	huma.Post(api, "/api/v1/map/pan", h.Pan, huma.OperationTags("map"))
	huma.Post(api, "/api/v1/map/groups/toggle", h.ToggleGroups, huma.OperationTags("map"))
	huma.Post(api, "/api/v1/map/clear", h.Clear, huma.OperationTags("map"))
}

// ServePage renders the full page shell and issues the session cookie.
func (h *Handler) ServePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	id := session.ID(w, r)

	var data pageData
	h.sessions.With(id, func(p *page.Page) { data = newPageData(p.View()) })

	var buf bytes.Buffer
	if err := h.Renderer.RenderToBuffer(&buf, "index", data); err != nil {
		h.logger.Error("render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// GetMap streams every fragment of the session's page.
func (h *Handler) GetMap(ctx context.Context, input *SessionInput) (*huma.StreamResponse, error) {
	if !session.Valid(input.Session) {
		return nil, errNoSession()
	}
	var (
		frags []humastar.Fragment
		err   error
	)
	h.sessions.With(input.Session, func(p *page.Page) { frags, err = h.render(p.View(), partAll) })
	if err != nil {
		return nil, huma.Error500InternalServerError("render map", err)
	}
	return h.StreamFragments(frags...), nil
}

// Events streams fragment updates for changes made to the session from any
// tab until the client disconnects.
func (h *Handler) Events(ctx context.Context, input *SessionInput) (*huma.StreamResponse, error) {
	if !session.Valid(input.Session) {
		return nil, errNoSession()
	}
	return &huma.StreamResponse{
		Body: func(hctx huma.Context) {
			sse := humastar.NewSSE(hctx)
			sub := h.bus.Subscribe(input.Session)
			defer sub.Close()

			for {
				select {
				case <-hctx.Context().Done():
					return
				case e := <-sub.C:
					var (
						frags []humastar.Fragment
						err   error
					)
					h.sessions.With(e.Session, func(p *page.Page) { frags, err = h.render(p.View(), actionParts[e.Action]) })
					if err != nil {
						h.logger.Error("render map event", "session", e.Session, "action", e.Action, "error", err)
						err = sse.Error("map update failed")
					} else {
						err = sse.ReplaceAll(frags)
					}
					if err != nil {
						return
					}
				}
			}
		},
	}, nil
}

// Resize reports the container size from the width and height signals.
func (h *Handler) Resize(ctx context.Context, input *SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.Parse()
	if err != nil {
		return nil, err
	}
	if err := signals.Require("width", "height"); err != nil {
		return nil, err
	}
	return h.update(input.Session, "resize", 0, func(p *page.Page) error {
		p.Resize(signals.Float("width"), signals.Float("height"))
		return nil
	})
}

// Click toggles a prefecture's selection.
func (h *Handler) Click(ctx context.Context, input *RegionInput) (*huma.StreamResponse, error) {
	return h.update(input.Session, "click", input.ID, func(p *page.Page) error {
		return p.Click(input.ID)
	})
}

// Hover shows the tooltip for a prefecture.
func (h *Handler) Hover(ctx context.Context, input *RegionInput) (*huma.StreamResponse, error) {
	return h.update(input.Session, "hover", input.ID, func(p *page.Page) error {
		return p.Hover(input.ID)
	})
}

// Leave hides the tooltip.
func (h *Handler) Leave(ctx context.Context, input *SessionInput) (*huma.StreamResponse, error) {
	return h.update(input.Session, "leave", 0, func(p *page.Page) error {
		p.Leave()
		return nil
	})
}

// Zoom multiplies the zoom level by the zoom signal.
func (h *Handler) Zoom(ctx context.Context, input *SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.Parse()
	if err != nil {
		return nil, err
	}
	factor := signals.Float("zoom")
	if factor <= 0 {
		return nil, huma.Error400BadRequest("zoom signal must be a positive factor")
	}
	return h.update(input.Session, "zoom", 0, func(p *page.Page) error {
		p.Zoom(factor)
		return nil
	})
}

// Pan moves the view by the panX and panY signals, in viewport pixels.
func (h *Handler) Pan(ctx context.Context, input *SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.Parse()
	if err != nil {
		return nil, err
	}
	if err := signals.Require("panX", "panY"); err != nil {
		return nil, err
	}
	return h.update(input.Session, "pan", 0, func(p *page.Page) error {
		p.Pan(signals.Float("panX"), signals.Float("panY"))
		return nil
	})
}

// ToggleGroups switches between grouped and flat coloring.
func (h *Handler) ToggleGroups(ctx context.Context, input *SessionInput) (*huma.StreamResponse, error) {
	return h.update(input.Session, "groups", 0, func(p *page.Page) error {
		p.ToggleGrouping()
		return nil
	})
}

// Clear empties the selection.
func (h *Handler) Clear(ctx context.Context, input *SessionInput) (*huma.StreamResponse, error) {
	return h.update(input.Session, "clear", 0, func(p *page.Page) error {
		p.Clear()
		return nil
	})
}

// update applies fn to the session's page, publishes the change and streams
// the affected fragments.
func (h *Handler) update(sess, action string, id int, fn func(p *page.Page) error) (*huma.StreamResponse, error) {
	if !session.Valid(sess) {
		return nil, errNoSession()
	}

	var (
		frags     []humastar.Fragment
		updateErr error
		renderErr error
	)
	h.sessions.With(sess, func(p *page.Page) {
		if updateErr = fn(p); updateErr != nil {
			return
		}
		frags, renderErr = h.render(p.View(), actionParts[action])
	})
	switch {
	case errors.Is(updateErr, widget.ErrUnknownRegion):
		return nil, huma.Error404NotFound(updateErr.Error())
	case updateErr != nil:
		return nil, huma.Error500InternalServerError("map update failed", updateErr)
	case renderErr != nil:
		return nil, huma.Error500InternalServerError("render map", renderErr)
	}

	h.logger.Debug("map event", "session", sess, "action", action, "id", id)
	h.bus.Publish(service.Event{Session: sess, Action: action, ID: id})
	return h.StreamFragments(frags...), nil
}

// render builds the fragments selected by parts, in page order.
func (h *Handler) render(v page.View, parts part) ([]humastar.Fragment, error) {
	steps := []struct {
		part     part
		selector string
		name     string
		data     func() any
	}{
		{partMap, selectorMap, "map", func() any { return newMapData(v) }},
		{partTooltip, selectorTooltip, "tooltip", func() any { return v }},
		{partControls, selectorControls, "controls", func() any { return v }},
		{partLegend, selectorLegend, "legend", func() any { return newLegendData(v) }},
	}

	var frags []humastar.Fragment
	for _, s := range steps {
		if parts&s.part == 0 {
			continue
		}
		f, err := h.Fragment(s.selector, s.name, s.data())
		if err != nil {
			return nil, err
		}
		frags = append(frags, f)
	}
	return frags, nil
}

func errNoSession() error {
	return huma.Error400BadRequest("missing or malformed session cookie, load / first")
}
