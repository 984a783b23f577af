package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLinks(t *testing.T) {
	t.Run("absent field yields nothing", func(t *testing.T) {
		items, err := ParseLinks(Field{})
		require.NoError(t, err)
		assert.Nil(t, items)
	})

	t.Run("native array", func(t *testing.T) {
		f := FieldFromRaw(json.RawMessage(`[{"url":"http://a.com","text":"A","order":2}]`))
		items, err := ParseLinks(f)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, LinkItem{URL: "http://a.com", Text: "A", Order: 2}, items[0])
	})

	t.Run("JSON-encoded string from multipart form", func(t *testing.T) {
		f := FieldFromForm(`[{"url":"http://a.com","text":"A"}]`, true)
		items, err := ParseLinks(f)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "http://a.com", items[0].URL)
	})

	t.Run("url and text are trimmed", func(t *testing.T) {
		f := FieldFromRaw(json.RawMessage(`[{"url":" http://x.com ","text":" X "}]`))
		items, err := ParseLinks(f)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "http://x.com", items[0].URL)
		assert.Equal(t, "X", items[0].Text)
		assert.Equal(t, 0, items[0].Order)
	})

	t.Run("order defaults to list index", func(t *testing.T) {
		f := FieldFromRaw(json.RawMessage(`[{"url":"http://a.com"},{"url":"http://b.com"}]`))
		items, err := ParseLinks(f)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, 0, items[0].Order)
		assert.Equal(t, 1, items[1].Order)
	})

	t.Run("empty url items are dropped, not errored", func(t *testing.T) {
		f := FieldFromRaw(json.RawMessage(`[{"url":"  "},{"url":"http://b.com"},{"text":"no url"}]`))
		items, err := ParseLinks(f)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "http://b.com", items[0].URL)
	})

	t.Run("non-object items are dropped", func(t *testing.T) {
		f := FieldFromRaw(json.RawMessage(`[42, "garbage", {"url":"http://ok.com"}]`))
		items, err := ParseLinks(f)
		require.NoError(t, err)
		require.Len(t, items, 1)
	})

	t.Run("non-integer order falls back to zero", func(t *testing.T) {
		f := FieldFromRaw(json.RawMessage(`[{"url":"http://a.com","order":"oops"}]`))
		items, err := ParseLinks(f)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 0, items[0].Order)
	})

	t.Run("empty list is supplied and empty", func(t *testing.T) {
		f := FieldFromRaw(json.RawMessage(`[]`))
		items, err := ParseLinks(f)
		require.NoError(t, err)
		assert.True(t, f.Supplied())
		assert.Empty(t, items)
	})

	t.Run("malformed container", func(t *testing.T) {
		f := FieldFromForm(`{not json`, true)
		_, err := ParseLinks(f)
		assert.ErrorIs(t, err, ErrMalformedContainer)
	})

	t.Run("object instead of list", func(t *testing.T) {
		f := FieldFromRaw(json.RawMessage(`{"url":"http://a.com"}`))
		_, err := ParseLinks(f)
		assert.ErrorIs(t, err, ErrMalformedContainer)
	})

	t.Run("null container is malformed", func(t *testing.T) {
		f := FieldFromRaw(json.RawMessage(`null`))
		_, err := ParseLinks(f)
		assert.ErrorIs(t, err, ErrMalformedContainer)
	})
}

func TestParseTags(t *testing.T) {
	t.Run("absent field yields nothing", func(t *testing.T) {
		inputs, err := ParseTags(Field{})
		require.NoError(t, err)
		assert.Nil(t, inputs)
	})

	t.Run("mixed ints and strings", func(t *testing.T) {
		f := FieldFromRaw(json.RawMessage(`[1, "React", 3]`))
		inputs, err := ParseTags(f)
		require.NoError(t, err)
		require.Len(t, inputs, 3)
		assert.Equal(t, TagInput{Kind: TagByID, ID: 1}, inputs[0])
		assert.Equal(t, TagInput{Kind: TagByName, Name: "React"}, inputs[1])
		assert.Equal(t, TagInput{Kind: TagByID, ID: 3}, inputs[2])
	})

	t.Run("digit strings resolve by ID", func(t *testing.T) {
		f := FieldFromRaw(json.RawMessage(`["7"]`))
		inputs, err := ParseTags(f)
		require.NoError(t, err)
		require.Len(t, inputs, 1)
		assert.Equal(t, TagInput{Kind: TagByID, ID: 7}, inputs[0])
	})

	t.Run("comma-separated scalar", func(t *testing.T) {
		f := FieldFromForm(`React, Python ,3`, true)
		inputs, err := ParseTags(f)
		require.NoError(t, err)
		require.Len(t, inputs, 3)
		assert.Equal(t, "React", inputs[0].Name)
		assert.Equal(t, "Python", inputs[1].Name)
		assert.Equal(t, TagInput{Kind: TagByID, ID: 3}, inputs[2])
	})

	t.Run("JSON-encoded string array", func(t *testing.T) {
		f := FieldFromForm(`[1, "Go"]`, true)
		inputs, err := ParseTags(f)
		require.NoError(t, err)
		require.Len(t, inputs, 2)
	})

	t.Run("names are trimmed and empties dropped", func(t *testing.T) {
		f := FieldFromRaw(json.RawMessage(`["  Go  ", "   ", ""]`))
		inputs, err := ParseTags(f)
		require.NoError(t, err)
		require.Len(t, inputs, 1)
		assert.Equal(t, "Go", inputs[0].Name)
	})

	t.Run("single scalar", func(t *testing.T) {
		f := FieldFromForm(`5`, true)
		inputs, err := ParseTags(f)
		require.NoError(t, err)
		require.Len(t, inputs, 1)
		assert.Equal(t, TagInput{Kind: TagByID, ID: 5}, inputs[0])
	})

	t.Run("invalid item type fails the batch", func(t *testing.T) {
		f := FieldFromRaw(json.RawMessage(`[{"name":"Go"}]`))
		_, err := ParseTags(f)
		assert.Error(t, err)
	})

	t.Run("object container fails the batch", func(t *testing.T) {
		f := FieldFromRaw(json.RawMessage(`{"name":"Go"}`))
		_, err := ParseTags(f)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid skill format")
	})

	t.Run("boolean container fails the batch", func(t *testing.T) {
		f := FieldFromRaw(json.RawMessage(`true`))
		_, err := ParseTags(f)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid skill format")
	})

	t.Run("null is rejected, not treated as empty", func(t *testing.T) {
		f := FieldFromRaw(json.RawMessage(`null`))
		_, err := ParseTags(f)
		assert.ErrorIs(t, err, ErrNullCollection)
	})

	t.Run("lone JSON number is an ID reference", func(t *testing.T) {
		f := FieldFromRaw(json.RawMessage(`3`))
		inputs, err := ParseTags(f)
		require.NoError(t, err)
		require.Len(t, inputs, 1)
		assert.Equal(t, TagInput{Kind: TagByID, ID: 3}, inputs[0])
	})

	t.Run("negative number fails the batch", func(t *testing.T) {
		f := FieldFromRaw(json.RawMessage(`[-1]`))
		_, err := ParseTags(f)
		assert.Error(t, err)
	})
}

func TestParseImagesMeta(t *testing.T) {
	t.Run("captions align positionally", func(t *testing.T) {
		f := FieldFromForm(`[{"caption":"first"},{"caption":"second"}]`, true)
		metas := ParseImagesMeta(f)
		require.Len(t, metas, 2)
		assert.Equal(t, "first", metas[0].Caption)
		assert.Equal(t, "second", metas[1].Caption)
	})

	t.Run("malformed container is ignored", func(t *testing.T) {
		f := FieldFromForm(`{broken`, true)
		assert.Nil(t, ParseImagesMeta(f))
	})

	t.Run("non-object items keep empty captions", func(t *testing.T) {
		f := FieldFromRaw(json.RawMessage(`["x", {"caption":"ok"}]`))
		metas := ParseImagesMeta(f)
		require.Len(t, metas, 2)
		assert.Equal(t, "", metas[0].Caption)
		assert.Equal(t, "ok", metas[1].Caption)
	})
}
