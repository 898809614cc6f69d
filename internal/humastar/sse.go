// Package humastar connects Huma operations to Datastar server-sent events.
//
// Huma validates the request and documents the operation. Handlers return a
// [huma.StreamResponse] whose body writes Datastar patch events. Fragments
// are rendered before the stream opens, so lookup and render failures still
// reach the client as ordinary Huma error responses.
//
//	func (h *MapHandler) Clear(ctx context.Context, in *SessionInput) (*huma.StreamResponse, error) {
//	    f, err := h.Fragment("#map-controls", "controls", view)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return h.StreamFragments(f), nil
//	}
package humastar

import (
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/joeblew999/plat-japanmap/internal/templates"
)

// Fragment is rendered HTML bound for the element matching Selector. The
// HTML carries its own root element, so it replaces the target outright.
type Fragment struct {
	Selector string
	HTML     string
}

// Handler is an embeddable base for handlers that answer with fragments.
type Handler struct {
	Renderer *templates.Renderer
}

// Fragment renders template name with data for selector.
func (h *Handler) Fragment(selector, name string, data any) (Fragment, error) {
	html, err := h.Renderer.Render(name, data)
	if err != nil {
		return Fragment{}, fmt.Errorf("render %s: %w", name, err)
	}
	return Fragment{Selector: selector, HTML: html}, nil
}

// Stream wraps fn as a Huma streaming body.
func (h *Handler) Stream(fn func(sse SSE)) *huma.StreamResponse {
	return &huma.StreamResponse{
		Body: func(hctx huma.Context) {
			fn(NewSSE(hctx))
		},
	}
}

// StreamFragments streams frags in order and ends the response.
func (h *Handler) StreamFragments(frags ...Fragment) *huma.StreamResponse {
	return h.Stream(func(sse SSE) {
		sse.ReplaceAll(frags)
	})
}

// SSE is a Datastar event writer bound to one Huma request.
type SSE struct {
	*datastar.ServerSentEventGenerator
}

// NewSSE starts a Datastar event stream on the request behind ctx.
func NewSSE(ctx huma.Context) SSE {
	r, w := humago.Unwrap(ctx)
	return SSE{datastar.NewSSE(w, r)}
}

// Replace swaps the element at selector for html.
func (s SSE) Replace(html, selector string) error {
	return s.PatchElements(html,
		datastar.WithSelector(selector),
		datastar.WithModeOuter(),
	)
}

// ReplaceAll replaces every fragment, stopping at the first write error
// (usually a closed connection).
func (s SSE) ReplaceAll(frags []Fragment) error {
	for _, f := range frags {
		if err := s.Replace(f.HTML, f.Selector); err != nil {
			return err
		}
	}
	return nil
}

// Error sets the page's error signal.
func (s SSE) Error(msg string) error {
	return s.MarshalAndPatchSignals(map[string]any{"error": msg})
}
