package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// vendorIDPrefix tags analysis identifiers minted by the competitors backend.
const vendorIDPrefix = "comp_"

// NormalizeID returns the prefix-free string form of an analysis identifier.
// Backend payloads carry ids as strings, JSON numbers or integers; cache keys
// and backend lookups must share one key space, so this is applied at every
// boundary. Pure, total and idempotent.
func NormalizeID(v any) string {
	var id string
	switch t := v.(type) {
	case string:
		id = t
	case json.Number:
		id = t.String()
	case float64:
		// JSON decoding yields float64 for numeric ids.
		id = strconv.FormatInt(int64(t), 10)
	case int:
		id = strconv.Itoa(t)
	case int64:
		id = strconv.FormatInt(t, 10)
	case nil:
		return ""
	default:
		id = fmt.Sprintf("%v", t)
	}

	return strings.TrimPrefix(id, vendorIDPrefix)
}
