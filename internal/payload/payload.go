// Package payload models the open, untyped request payload and resolves the
// project identifier out of it. Upstream no-code platforms send inconsistent
// field casing, so the identifier is matched against an ordered alias list
// instead of a schema.
package payload

import (
	"encoding/json"
	"fmt"
	"strings"

	serrors "github.com/aniketsandhanwootz-wq/wootz-summary/internal/errors"
)

// identifierAliases is consulted in priority order; the first key present
// with a non-empty value wins.
var identifierAliases = []string{
	"projectId",
	"ProjectID",
	"projectID",
	"project_id",
	"rowId",
	"rowID",
	"RowID",
	"Row ID",
	"row_id",
	"id",
}

// Fields is a flat mapping of request field names to string values. All
// fields other than the identifier are passed through opaquely.
type Fields map[string]string

// FromJSON parses a JSON object body into Fields, flattening non-string
// scalar values and re-serializing nested values.
func FromJSON(body []byte) (Fields, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing JSON body: %w", err)
	}
	f := make(Fields, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			f[k] = ""
		case string:
			f[k] = val
		case float64, bool:
			f[k] = fmt.Sprint(val)
		default:
			// Objects and arrays are kept as JSON text.
			b, err := json.Marshal(val)
			if err != nil {
				return nil, fmt.Errorf("serializing field %q: %w", k, err)
			}
			f[k] = string(b)
		}
	}
	return f, nil
}

// Get returns the trimmed value for key, or "" if absent.
func (f Fields) Get(key string) string {
	return strings.TrimSpace(f[key])
}

// Identifier resolves the project identifier from the alias list.
func (f Fields) Identifier() (string, error) {
	for _, alias := range identifierAliases {
		if v := f.Get(alias); v != "" {
			return v, nil
		}
	}
	return "", serrors.ErrMissingIdentifier
}

// IsIdentifierKey reports whether key is one of the accepted identifier
// aliases.
func IsIdentifierKey(key string) bool {
	for _, alias := range identifierAliases {
		if key == alias {
			return true
		}
	}
	return false
}

// IdentifierAliases returns the accepted alias list, for error hints and
// documentation payloads.
func IdentifierAliases() []string {
	out := make([]string, len(identifierAliases))
	copy(out, identifierAliases)
	return out
}

// Snapshot serializes the payload for audit storage alongside the record.
// encoding/json sorts map keys, so snapshots are stable across requests.
func (f Fields) Snapshot() string {
	b, err := json.Marshal(f)
	if err != nil {
		return ""
	}
	return string(b)
}
