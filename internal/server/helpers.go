package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON writes a JSON response with the given status code. A value that
// cannot be encoded produces a 500 instead of a truncated body.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		buf.Reset()
		json.NewEncoder(&buf).Encode(ErrorResponse{Error: "failed to encode response: " + err.Error(), Code: "encode_error"})
		statusCode = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(buf.Bytes())
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode writes a JSON error response with an error code.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// PathParam extracts a path parameter from the URL path.
// For /api/charts/{name}, calling PathParam(r, "/api/charts/", "") extracts {name}.
func PathParam(r *http.Request, prefix, suffix string) string {
	path := r.URL.Path
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := path[len(prefix):]
	if suffix != "" {
		idx := strings.Index(rest, suffix)
		if idx < 0 {
			return rest
		}
		return rest[:idx]
	}
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return rest[:idx]
	}
	return rest
}

// ParseSelection reads the segments query parameter. Absent means every
// segment (nil); present but empty means none (empty slice).
//
// A single value is a comma separated list with spaces trimmed. When the
// parameter repeats, as an HTML form sends it, each non-empty value is taken
// verbatim, so names containing commas or edge spaces can be selected that way.
func ParseSelection(r *http.Request) []string {
	values, ok := r.URL.Query()["segments"]
	if !ok {
		return nil
	}
	segments := []string{}
	if len(values) > 1 {
		for _, v := range values {
			if v != "" {
				segments = append(segments, v)
			}
		}
		return segments
	}
	for _, part := range strings.Split(values[0], ",") {
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// SelectionQuery encodes segments so that ParseSelection returns them
// unchanged. A lone plain name stays a single value; anything else is sent
// as repeated values behind an empty one.
func SelectionQuery(segments []string) string {
	if len(segments) == 1 {
		name := segments[0]
		if name != "" && !strings.Contains(name, ",") && strings.TrimSpace(name) == name {
			return url.Values{"segments": {name}}.Encode()
		}
	}
	return url.Values{"segments": append([]string{""}, segments...)}.Encode()
}
