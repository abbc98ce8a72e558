package content

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Percentage is a skill level. Admin forms post it as either a number or a
// numeric string; both decode to the rounded integer value.
type Percentage int

func (p *Percentage) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*p = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
		if s == "" {
			*p = 0
			return nil
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return &json.UnmarshalTypeError{Value: jsonKind(strings.TrimSpace(string(b))), Type: reflect.TypeOf(*p)}
	}
	if math.Abs(f) > math.MaxInt32 {
		f = math.Copysign(math.MaxInt32, f)
	}
	*p = Percentage(math.Round(f))
	return nil
}

func jsonKind(s string) string {
	switch {
	case s == "true" || s == "false":
		return "bool"
	case strings.HasPrefix(s, "{"):
		return "object"
	case strings.HasPrefix(s, "["):
		return "array"
	case strings.HasPrefix(s, `"`):
		return "string"
	default:
		return "number"
	}
}
