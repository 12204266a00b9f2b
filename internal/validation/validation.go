// Package validation checks raw write payloads before they reach the services.
//
// Every function takes the decoded JSON object of a request body and returns
// either a normalized payload or an *Error describing the first violated
// constraint. Fields are checked in declaration order and presence is checked
// before type and range, so a given payload always yields the same message.
package validation

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/canteen/canteen/internal/model"
)

// Error is a validation failure for a single field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// stringRule describes the constraints of a string field.
type stringRule struct {
	required bool
	min      int
	max      int
}

// checkString validates field as a string.
// The second return value reports whether the field was present.
func checkString(payload map[string]any, field string, rule stringRule) (string, bool, *Error) {
	raw, ok := payload[field]
	if !ok {
		if rule.required {
			return "", false, newError(field, "%q is required", field)
		}
		return "", false, nil
	}

	s, ok := raw.(string)
	if !ok {
		return "", true, newError(field, "%q must be a string", field)
	}
	if s == "" {
		return "", true, newError(field, "%q is not allowed to be empty", field)
	}

	length := utf8.RuneCountInString(s)
	if rule.min > 0 && length < rule.min {
		return "", true, newError(field, "%q length must be at least %d characters long", field, rule.min)
	}
	if rule.max > 0 && length > rule.max {
		return "", true, newError(field, "%q length must be less than or equal to %d characters long", field, rule.max)
	}

	return s, true, nil
}

// numberRule describes the constraints of a numeric field.
type numberRule struct {
	required bool
	integer  bool
	min      float64
	max      float64
}

// checkNumber validates field as a number. Numeric strings are converted.
func checkNumber(payload map[string]any, field string, rule numberRule) (float64, bool, *Error) {
	raw, ok := payload[field]
	if !ok {
		if rule.required {
			return 0, false, newError(field, "%q is required", field)
		}
		return 0, false, nil
	}

	var (
		n   float64
		err error
	)
	switch v := raw.(type) {
	case json.Number:
		n, err = v.Float64()
	case float64:
		n = v
	case string:
		n, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		err = strconv.ErrSyntax
	}
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, true, newError(field, "%q must be a number", field)
	}

	if rule.integer && n != math.Trunc(n) {
		return 0, true, newError(field, "%q must be an integer", field)
	}
	if n < rule.min {
		return 0, true, newError(field, "%q must be larger than or equal to %s", field, formatNumber(rule.min))
	}
	if n > rule.max {
		return 0, true, newError(field, "%q must be less than or equal to %s", field, formatNumber(rule.max))
	}

	return n, true, nil
}

// checkStringArray validates field as an array of non-empty strings.
func checkStringArray(payload map[string]any, field string, required bool) ([]string, *Error) {
	raw, ok := payload[field]
	if !ok {
		if required {
			return nil, newError(field, "%q is required", field)
		}
		return nil, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, newError(field, "%q must be an array", field)
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		name := fmt.Sprintf("%s[%d]", field, i)
		s, ok := item.(string)
		if !ok {
			return nil, newError(field, "%q must be a string", name)
		}
		if s == "" {
			return nil, newError(field, "%q is not allowed to be empty", name)
		}
		out = append(out, s)
	}

	return out, nil
}

// checkReferences ensures every id has the identifier shape.
// It runs after the schema checks and reports the first offending value.
func checkReferences(field string, ids []string) *Error {
	for _, id := range ids {
		if !model.IsValidID(id) {
			return newError(field, "%s is not a valid Id", id)
		}
	}
	return nil
}

// checkUnknown rejects keys that are not part of the schema.
func checkUnknown(payload map[string]any, known ...string) *Error {
	var unknown []string
	for key := range payload {
		if !slices.Contains(known, key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return newError(unknown[0], "%q is not allowed", unknown[0])
}

// isBase64 matches padded standard base64 without line breaks.
func isBase64(s string) bool {
	if len(s)%4 != 0 || strings.ContainsAny(s, "\r\n") {
		return false
	}
	_, err := base64.StdEncoding.Strict().DecodeString(s)
	return err == nil
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
