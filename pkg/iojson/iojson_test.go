package iojson

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLine(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteLine(&buf, map[string]any{"id": "a", "completed": true}))
	require.NoError(t, WriteLine(&buf, map[string]any{"id": "b"}))

	assert.Equal(t, "{\"completed\":true,\"id\":\"a\"}\n{\"id\":\"b\"}\n", buf.String())

	err := WriteLine(&buf, make(chan int))
	require.Error(t, err)
}

func TestWriteWith(t *testing.T) {
	var out, errOut bytes.Buffer

	require.NoError(t, WriteWith(&out, &errOut, map[string]bool{"valid": true}))
	assert.Equal(t, "{\n  \"valid\": true\n}\n", out.String())
	assert.Empty(t, errOut.String())

	out.Reset()
	require.NoError(t, WriteWith(&out, &errOut, make(chan int)))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "json_error")
}

func TestMarshalError(t *testing.T) {
	got := MarshalError(`bad "input"`, map[string]any{"field": "date"})

	var decoded Error
	require.NoError(t, json.Unmarshal([]byte(got), &decoded))
	assert.Equal(t, `bad "input"`, decoded.Message)
	assert.Equal(t, "date", decoded.Data["field"])

	assert.True(t, json.Valid([]byte(jsonError("msg", errors.New(`quote "x"`)))))
}

func TestFileReader(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "in.json")
		require.NoError(t, os.WriteFile(path, []byte(`[1,2,3]`), 0o644))

		var fr FileReader[[]int]
		fr.SetFile(path)
		got, err := fr.Read()
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, got)
		assert.Equal(t, path, fr.Source())
	})

	t.Run("stdin", func(t *testing.T) {
		fr := FileReader[json.RawMessage]{Stdin: strings.NewReader(` [{"id":"a"}] `)}
		got, err := fr.Read()
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"a"}]`, string(got))
		assert.Equal(t, "stdin", fr.Source())
	})

	t.Run("missing file", func(t *testing.T) {
		var fr FileReader[[]int]
		fr.SetFile(filepath.Join(t.TempDir(), "nope.json"))
		_, err := fr.Read()
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid json", func(t *testing.T) {
		fr := FileReader[[]int]{Stdin: strings.NewReader(`{`)}
		_, err := fr.Read()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode JSON")
	})
}
