package survey

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/goccy/go-json"
)

// parse decodes raw into a generic tree of map[string]any, []any, string,
// json.Number, bool and nil values.
func parse(raw []byte) (map[string]any, *Issue) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &Issue{Kind: MalformedInput, Message: "input is empty"}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, syntaxIssue(err)
	}
	var trailing any
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		offset := dec.InputOffset()
		if err != nil {
			return nil, syntaxIssue(err)
		}
		return nil, &Issue{Kind: MalformedInput, Offset: offset, Message: "unexpected data after the top-level JSON value"}
	}

	root, ok := tree.(map[string]any)
	if !ok {
		return nil, &Issue{Kind: MalformedInput, Message: "survey definition must be a JSON object, got " + typeName(tree)}
	}
	return root, nil
}

func syntaxIssue(err error) *Issue {
	issue := &Issue{Kind: MalformedInput}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		issue.Offset = syntaxErr.Offset
	}
	msg := err.Error()
	msg = strings.TrimPrefix(msg, "json: ")
	issue.Message = "invalid JSON: " + msg
	return issue
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return "unknown"
	}
}
