// Package reconcile implements the nested-entity reconciliation core: loose
// input normalization, skill tag resolution against the global catalog, and
// per-collection child synchronization policies.
package reconcile

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedContainer reports that a collection field could not be parsed
// into a list at all. Callers decide whether that fails the request (strict
// collections) or leaves the collection untouched (lenient collections).
var ErrMalformedContainer = errors.New("collection field is not a list")

// ErrNullCollection reports an explicit JSON null where a collection was
// expected. Null is distinct from absent: absent leaves the collection
// untouched, null is rejected.
var ErrNullCollection = errors.New("This field may not be null.")

// Field is a loosely-typed request field. Multipart forms deliver child
// collections as JSON-encoded strings while JSON bodies deliver them natively;
// Field captures both, and whether the field was present at all. Absent and
// empty are distinct: absent leaves a collection untouched, an empty list
// clears replace-policy collections.
type Field struct {
	raw json.RawMessage
	set bool
}

// FieldFromRaw builds a Field from a raw JSON value (native arrays, numbers,
// or double-encoded strings).
func FieldFromRaw(raw json.RawMessage) Field {
	if len(raw) == 0 {
		return Field{}
	}
	return Field{raw: raw, set: true}
}

// FieldFromForm builds a Field from a multipart form value. The value is kept
// verbatim; parse functions handle both JSON payloads and bare scalars.
func FieldFromForm(value string, present bool) Field {
	if !present {
		return Field{}
	}
	return Field{raw: json.RawMessage(value), set: true}
}

// Supplied reports whether the field was present in the request.
func (f Field) Supplied() bool {
	return f.set
}

// unwrap peels one layer of string encoding: a JSON string containing a JSON
// document becomes that document. Returns the innermost raw value.
func (f Field) unwrap() json.RawMessage {
	raw := f.raw
	for i := 0; i < 2; i++ {
		// Unmarshal treats null as a no-op for any destination; screen it
		// out so a literal null survives to the parse functions.
		if isNull(raw) {
			return raw
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return raw
		}
		raw = json.RawMessage(s)
	}
	return raw
}

// isNull reports a literal JSON null.
func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

// LinkItem is a normalized link entry.
type LinkItem struct {
	URL   string
	Text  string
	Order int
}

// ParseLinks normalizes a links collection. Items that are not objects, or
// whose url is empty after trimming, are dropped rather than failing the
// batch; order defaults to the list index. A container that cannot be parsed
// into a list returns ErrMalformedContainer; lenient callers treat that as
// the field being absent.
func ParseLinks(f Field) ([]LinkItem, error) {
	if !f.set {
		return nil, nil
	}

	raw := f.unwrap()
	if isNull(raw) {
		return nil, ErrMalformedContainer
	}
	var rawItems []json.RawMessage
	if err := json.Unmarshal(raw, &rawItems); err != nil {
		return nil, ErrMalformedContainer
	}

	items := make([]LinkItem, 0, len(rawItems))
	for i, rawItem := range rawItems {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(rawItem, &obj); err != nil {
			// Items occasionally arrive double-encoded too.
			var s string
			if err := json.Unmarshal(rawItem, &s); err != nil {
				continue
			}
			if err := json.Unmarshal([]byte(s), &obj); err != nil {
				continue
			}
		}

		url := stringField(obj, "url")
		if strings.TrimSpace(url) == "" {
			continue
		}

		order, ok := intField(obj, "order")
		if !ok {
			order = i
		}

		items = append(items, LinkItem{
			URL:   strings.TrimSpace(url),
			Text:  strings.TrimSpace(stringField(obj, "text")),
			Order: order,
		})
	}
	return items, nil
}

// Tag input kinds.
const (
	TagByID   = "id"
	TagByName = "name"
)

// TagInput is one entry of a skills collection: either a reference to an
// existing catalog row by ID or a free-text name to resolve or create.
type TagInput struct {
	Kind string
	ID   uint
	Name string
}

// ParseTags normalizes a skills collection. Accepted shapes: a JSON array of
// ints and/or strings, a JSON-encoded string of such an array, a
// comma-separated scalar, or a single scalar. Digit-only values are ID
// references; other strings are names (trimmed, empty dropped). Any other
// item type, and any non-list JSON container (object, boolean, null), fails
// the whole batch.
func ParseTags(f Field) ([]TagInput, error) {
	if !f.set {
		return nil, nil
	}

	raw := f.unwrap()
	if isNull(raw) {
		return nil, ErrNullCollection
	}

	var rawItems []json.RawMessage
	if err := json.Unmarshal(raw, &rawItems); err != nil {
		// Not a list. A lone number is an ID reference; any other JSON
		// value is never a tag input. Only values that are not valid JSON
		// fall through to comma splitting.
		var num float64
		if numErr := json.Unmarshal(raw, &num); numErr == nil {
			if num < 0 || num != math.Trunc(num) {
				return nil, fmt.Errorf("invalid skill format: %s", strings.TrimSpace(string(raw)))
			}
			return []TagInput{{Kind: TagByID, ID: uint(num)}}, nil
		}
		if json.Valid(raw) {
			return nil, fmt.Errorf("invalid skill format: %s", strings.TrimSpace(string(raw)))
		}
		return tagsFromScalar(string(raw))
	}

	inputs := make([]TagInput, 0, len(rawItems))
	for _, rawItem := range rawItems {
		var num float64
		if err := json.Unmarshal(rawItem, &num); err == nil {
			if num < 0 || num != math.Trunc(num) {
				return nil, fmt.Errorf("invalid skill format: %s", strings.TrimSpace(string(rawItem)))
			}
			inputs = append(inputs, TagInput{Kind: TagByID, ID: uint(num)})
			continue
		}

		var s string
		if err := json.Unmarshal(rawItem, &s); err != nil {
			return nil, fmt.Errorf("invalid skill format: %s", strings.TrimSpace(string(rawItem)))
		}
		if input, ok := tagFromString(s); ok {
			inputs = append(inputs, input)
		}
	}
	return inputs, nil
}

func tagsFromScalar(value string) ([]TagInput, error) {
	var inputs []TagInput
	for _, part := range strings.Split(value, ",") {
		if input, ok := tagFromString(part); ok {
			inputs = append(inputs, input)
		}
	}
	return inputs, nil
}

// tagFromString classifies one scalar: digits resolve by ID, anything else is
// a name. Empty-after-trim values are dropped.
func tagFromString(s string) (TagInput, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TagInput{}, false
	}
	if id, err := strconv.ParseUint(s, 10, 32); err == nil {
		return TagInput{Kind: TagByID, ID: uint(id)}, true
	}
	return TagInput{Kind: TagByName, Name: s}, true
}

// ImageMeta is per-upload metadata, aligned positionally with uploaded files.
type ImageMeta struct {
	Caption string
}

// ParseImagesMeta normalizes the images metadata collection. Always lenient:
// a malformed container or item yields empty metadata, never an error.
func ParseImagesMeta(f Field) []ImageMeta {
	if !f.set {
		return nil
	}

	var rawItems []json.RawMessage
	if err := json.Unmarshal(f.unwrap(), &rawItems); err != nil {
		return nil
	}

	metas := make([]ImageMeta, len(rawItems))
	for i, rawItem := range rawItems {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(rawItem, &obj); err != nil {
			continue
		}
		metas[i] = ImageMeta{Caption: strings.TrimSpace(stringField(obj, "caption"))}
	}
	return metas
}

func stringField(obj map[string]json.RawMessage, key string) string {
	raw, ok := obj[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// intField reads an integer field tolerantly: JSON numbers are truncated,
// digit strings parsed, anything else reports absent.
func intField(obj map[string]json.RawMessage, key string) (int, bool) {
	raw, ok := obj[key]
	if !ok {
		return 0, false
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return int(num), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, convErr := strconv.Atoi(strings.TrimSpace(s)); convErr == nil {
			return n, true
		}
	}
	return 0, true
}
