package usecase

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/satriahrh/scorelink/domain"
	"github.com/satriahrh/scorelink/domain/entities"
)

// ExtractScore pulls the score lines out of a raw completion. Models tend to
// wrap the JSON answer in prose or code fences, so the text is searched for
// balanced object spans first and the whole text is only used when none exist.
func ExtractScore(raw string) (entities.Score, error) {
	candidates := objectSpans(raw)
	if len(candidates) == 0 {
		candidates = []string{raw}
	}

	for _, candidate := range candidates {
		obj, ok := parseObject(candidate)
		if !ok {
			continue
		}

		lines, found := firstArray(obj)
		if !found {
			return nil, domain.NewError(domain.ErrNoArrayFound, "No array found in response")
		}
		return lines, nil
	}

	return nil, domain.NewError(domain.ErrInvalidResponseFormat, "Invalid response format: no JSON object in response")
}

// objectSpans returns every closed top-level {...} span in order. Braces
// inside JSON string literals do not count.
func objectSpans(text string) []string {
	var spans []string
	depth, start := 0, -1
	inString, escaped := false, false

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			// quotes in the surrounding prose are not string delimiters
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				spans = append(spans, text[start:i+1])
			}
		}
	}
	return spans
}

// parseObject parses candidate as a JSON object. Truncated or otherwise
// malformed text is rejected as is.
func parseObject(candidate string) (gjson.Result, bool) {
	if !gjson.Valid(candidate) {
		return gjson.Result{}, false
	}
	result := gjson.Parse(candidate)
	return result, result.IsObject()
}

// firstArray walks the object's values in document order and converts the
// first array it meets into score lines. Elements are not flattened. With a
// repeated key every occurrence is visited, so an array under the first
// occurrence still counts.
func firstArray(obj gjson.Result) (entities.Score, bool) {
	var (
		lines entities.Score
		found bool
	)
	obj.ForEach(func(_, value gjson.Result) bool {
		if !value.IsArray() {
			return true
		}
		found = true
		lines = entities.Score{}
		value.ForEach(func(_, elem gjson.Result) bool {
			lines = append(lines, lineText(elem))
			return true
		})
		return false
	})
	return lines, found
}

// lineText renders one array element as text
func lineText(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Null:
		return ""
	case gjson.Number:
		// 1.0 and 1e2 print as 1 and 100
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case gjson.JSON:
		if !v.IsArray() {
			return v.Raw
		}
		var parts []string
		v.ForEach(func(_, elem gjson.Result) bool {
			parts = append(parts, lineText(elem))
			return true
		})
		return strings.Join(parts, ",")
	default:
		return v.Raw
	}
}
