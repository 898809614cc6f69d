package humastar

import (
	"encoding/json"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// Signals is the flat JSON object Datastar posts with every action.
type Signals map[string]any

// ParseSignals decodes a request body. An empty body yields no signals.
func ParseSignals(body []byte) (Signals, error) {
	if len(body) == 0 {
		return Signals{}, nil
	}
	var s Signals
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, err
	}
	return s, nil
}

// Float returns a numeric signal, or 0 when absent or not a number.
func (s Signals) Float(key string) float64 {
	f, _ := s[key].(float64)
	return f
}

// Has reports whether key was sent, even with a zero value.
func (s Signals) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Require returns a 400 listing the keys that were not sent.
func (s Signals) Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if !s.Has(k) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return huma.Error400BadRequest("missing signals: " + strings.Join(missing, ", "))
	}
	return nil
}

// SignalsInput takes the raw body so Huma skips schema validation; Datastar
// sends every signal on the page, not just the ones an operation reads.
type SignalsInput struct {
	RawBody []byte
}

// Parse decodes the body, reporting malformed JSON as a 400.
func (i *SignalsInput) Parse() (Signals, error) {
	s, err := ParseSignals(i.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid signals: " + err.Error())
	}
	return s, nil
}
