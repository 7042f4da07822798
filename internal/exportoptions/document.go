// Package exportoptions synthesizes the export document consumed by
// `xcodebuild -exportArchive -exportOptionsPlist`.
//
// The document is a nested key/value structure whose values are strings,
// booleans, nested documents or lists of documents. It is built from the
// user-supplied export options (inline or a plist on disk) merged with the
// build configuration, which always wins over the user document.
package exportoptions

import (
	"bytes"
	"fmt"
	"os"

	"howett.net/plist"
)

// Document is an export options document. Nested documents are stored as
// map[string]any so values decoded from YAML or plist can be used directly.
type Document map[string]any

// String returns the string value at key, or "" if absent or not a string.
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Sub returns the nested document at key, or nil.
func (d Document) Sub(key string) Document {
	switch v := d[key].(type) {
	case map[string]any:
		return Document(v)
	case Document:
		return v
	default:
		return nil
	}
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return Document(cloneValue(map[string]any(d)).(map[string]any))
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case Document:
		return cloneValue(map[string]any(t))
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

// Marshal encodes the document as an XML property list.
func (d Document) Marshal() ([]byte, error) {
	return plist.MarshalIndent(map[string]any(d), plist.XMLFormat, "\t")
}

// WriteFile writes the document to path, replacing any existing file.
func (d Document) WriteFile(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return fmt.Errorf("marshal export options: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Parse decodes a property list (XML, binary or OpenStep) whose root is a dictionary.
func Parse(data []byte) (Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty property list")
	}
	var root map[string]any
	if _, err := plist.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("property list root is not a dictionary")
	}
	return Document(root), nil
}

// ReadFile loads a property list document from disk.
func ReadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
