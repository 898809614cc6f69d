package api

import (
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-japanmap/internal/humastar"
)

// links maps operation paths to their RFC 8288 Link header values.
// Enables restish hypermedia navigation via `restish links <url>`.
var links = map[string][]string{
	"/health": {
		`</api/v1/info>; rel="info"`,
		`</api/v1/prefectures>; rel="prefectures"`,
		`</api/v1/groups>; rel="groups"`,
	},
	"/api/v1/info": {
		`</health>; rel="health"`,
		`</api/v1/prefectures>; rel="prefectures"`,
	},
	"/api/v1/prefectures": {
		`</api/v1/groups>; rel="groups"`,
		`</api/v1/prefectures/locate{?lon,lat}>; rel="search"`,
	},
	"/api/v1/prefectures/{id}": {
		`</api/v1/prefectures>; rel="collection"`,
	},
	"/api/v1/prefectures/locate": {
		`</api/v1/prefectures>; rel="collection"`,
	},
	"/api/v1/prefectures/{id}/style": {
		`</api/v1/prefectures>; rel="collection"`,
	},
	"/api/v1/groups": {
		`</api/v1/prefectures>; rel="prefectures"`,
	},
	"/api/v1/tables": {
		`</api/v1/query>; rel="query"`,
	},
}

// LinkTransformer returns a Huma Transformer that injects RFC 8288 Link
// headers, plus one per action for bodies implementing humastar.Actor.
func LinkTransformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}

		for _, link := range links[op.Path] {
			ctx.AppendHeader("Link", link)
		}

		// Item endpoints get a self link
		if strings.Contains(op.Path, "{") {
			ctx.AppendHeader("Link", fmt.Sprintf(`<%s>; rel="self"`, ctx.URL().Path))
		}

		if actor, ok := v.(humastar.Actor); ok {
			for _, a := range actor.Actions() {
				ctx.AppendHeader("Link", a.LinkHeader())
			}
		}

		return v, nil
	}
}
