package content

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aTrapDeer/portfolio-backend/internal/validation"
)

const maxBodyBytes = 1 << 20

var ErrInvalidBody = errors.New("invalid request body")

// readFields reads a JSON object body and returns its top-level members.
func readFields(w http.ResponseWriter, r *http.Request) ([]byte, map[string]json.RawMessage, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, ErrInvalidBody
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, nil, ErrInvalidBody
	}
	return body, fields, nil
}

// merge overlays the supplied top-level fields on the stored record. A
// supplied array or object replaces the stored value as a whole.
func merge[T any](existing *T, fields map[string]json.RawMessage) (*T, error) {
	current, err := json.Marshal(existing)
	if err != nil {
		return nil, err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(current, &doc); err != nil {
		return nil, err
	}
	for k, v := range fields {
		doc[k] = v
	}

	merged, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	out := new(T)
	if err := decodeRecord(merged, out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeRecord decodes a JSON object into out. A value of the wrong type is
// reported as a field error.
func decodeRecord(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		if errs, ok := validation.FromDecodeError(body, err); ok {
			return errs
		}
		return ErrInvalidBody
	}
	return nil
}
