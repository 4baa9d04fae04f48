package scenes

import (
	"regexp"
	"strings"
)

var (
	trailingComma  = regexp.MustCompile(`,\s*([}\]])`)
	adjoinedArrays = regexp.MustCompile(`\]\s*,\s*\[`)
)

// RepairJSON applies a best-effort structural repair pass to near-JSON text:
// markdown code fences are stripped, surrounding prose is trimmed away,
// trailing commas are removed, and unclosed brackets are balanced. It does not
// attempt to fix damage inside string values.
func RepairJSON(raw string) string {
	cleaned := stripCodeFences(raw)
	cleaned = trimToJSONBounds(cleaned)
	cleaned = trailingComma.ReplaceAllString(cleaned, "$1")
	if strings.HasPrefix(cleaned, "[") {
		// Several arrays emitted back-to-back are a continuation artifact,
		// not sibling values; merge them into one array.
		cleaned = adjoinedArrays.ReplaceAllString(cleaned, ", ")
	}
	return balanceBrackets(cleaned)
}

func stripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if !strings.Contains(cleaned, "```") {
		return cleaned
	}
	cleaned = strings.ReplaceAll(cleaned, "```json", " ")
	cleaned = strings.ReplaceAll(cleaned, "```", " ")
	return strings.TrimSpace(cleaned)
}

// trimToJSONBounds drops any prose before the first opening bracket and after
// the last closing bracket.
func trimToJSONBounds(raw string) string {
	start := len(raw)
	if idx := strings.IndexAny(raw, "{["); idx >= 0 {
		start = idx
	}
	end := -1
	if idx := strings.LastIndexAny(raw, "}]"); idx >= 0 {
		end = idx
	}
	if start >= len(raw) {
		return raw
	}
	if end < start {
		// No closing bracket at all; keep the tail so balancing can close it.
		return raw[start:]
	}
	return raw[start : end+1]
}

func balanceBrackets(raw string) string {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var builder strings.Builder
	builder.WriteString(raw)
	if inString {
		builder.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			builder.WriteByte('}')
		} else {
			builder.WriteByte(']')
		}
	}
	return builder.String()
}
