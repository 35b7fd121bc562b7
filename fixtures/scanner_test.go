package fixtures

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indent16 = "                "

func block(url, data string) string {
	return indent16 + `"` + url + `"` + "\n" +
		indent16 + Marker + "\n" +
		indent16 + data + "\n" +
		indent16 + Marker + "\n"
}

func TestScan(t *testing.T) {
	input := "module DecodeTest exposing (..)\n" +
		"\n" +
		block("http://example.com/a", "old-data") +
		"        , someOtherLine\n"

	doc, err := Scan(strings.NewReader(input), "DecodeTest.elm", ScanOptions{})
	require.NoError(t, err)

	blocks := doc.Blocks()
	require.Len(t, blocks, 1)
	assert.Equal(t, "http://example.com/a", blocks[0].URL)
	assert.Equal(t, 3, blocks[0].Line)
	assert.Equal(t, indent16+"old-data\n", blocks[0].Data)

	// untouched documents render byte-identical
	assert.Equal(t, input, string(doc.Bytes()))
}

func TestScanNoBlocks(t *testing.T) {
	input := "module DecodeTest exposing (..)\n\nimport Json.Decode\n"

	doc, err := Scan(strings.NewReader(input), "DecodeTest.elm", ScanOptions{})
	require.NoError(t, err)
	assert.Empty(t, doc.Blocks())
	assert.Equal(t, input, string(doc.Bytes()))
}

func TestScanMultipleBlocks(t *testing.T) {
	input := block("http://example.com/a", "a-data") +
		"middle\n" +
		block("http://example.com/b?filter=1", "b-data")

	doc, err := Scan(strings.NewReader(input), "DecodeTest.elm", ScanOptions{})
	require.NoError(t, err)

	blocks := doc.Blocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, "http://example.com/a", blocks[0].URL)
	assert.Equal(t, "http://example.com/b?filter=1", blocks[1].URL)
	assert.Equal(t, 6, blocks[1].Line)
}

func TestScanMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   string
	}{
		{
			name: "bad opening delimiter",
			input: indent16 + `"http://example.com/a"` + "\n" +
				indent16 + `""` + "\n" +
				indent16 + "old-data\n" +
				indent16 + Marker + "\n",
			err: "expected opening",
		},
		{
			name: "bad closing delimiter",
			input: indent16 + `"http://example.com/a"` + "\n" +
				indent16 + Marker + "\n" +
				indent16 + "old-data\n" +
				indent16 + `"" "` + "\n",
			err: "expected closing",
		},
		{
			name: "misindented opening delimiter",
			input: indent16 + `"http://example.com/a"` + "\n" +
				"        " + Marker + "\n" +
				indent16 + "old-data\n" +
				indent16 + Marker + "\n",
			err: "expected opening",
		},
		{
			name:  "truncated block",
			input: indent16 + `"http://example.com/a"` + "\n" + indent16 + Marker + "\n",
			err:   "truncated",
		},
		{
			name: "closing delimiter missing trailing newline",
			input: indent16 + `"http://example.com/a"` + "\n" +
				indent16 + Marker + "\n" +
				indent16 + "old-data\n" +
				indent16 + Marker,
			err: "expected closing",
		},
		{
			name:  "URL literal not closed",
			input: indent16 + `"http://example.com/a` + "\n" + indent16 + Marker + "\n" + indent16 + "x\n" + indent16 + Marker + "\n",
			err:   "not a closed string literal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Scan(strings.NewReader(tt.input), "DecodeTest.elm", ScanOptions{})
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.Contains(t, err.Error(), tt.err)
			assert.Contains(t, err.Error(), "DecodeTest.elm:")
		})
	}
}

func TestScanCustomIndent(t *testing.T) {
	indent8 := "        "
	input := indent8 + `"http://example.com/a"` + "\n" +
		indent8 + Marker + "\n" +
		indent8 + "old-data\n" +
		indent8 + Marker + "\n"

	doc, err := Scan(strings.NewReader(input), "f.elm", ScanOptions{Indent: 8})
	require.NoError(t, err)
	require.Len(t, doc.Blocks(), 1)
	assert.Equal(t, "http://example.com/a", doc.Blocks()[0].URL)

	// 16-space scan of the same content sees no blocks
	doc16, err := Scan(strings.NewReader(input), "f.elm", ScanOptions{})
	require.NoError(t, err)
	assert.Empty(t, doc16.Blocks())
}

func TestEscape(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"no backslashes", "no backslashes"},
		{`new\data`, `new\\data`},
		{`\\`, `\\\\`},
		{`_p~iF~ps|U`, `_p~iF~ps|U`},
		{`a\b\c`, `a\\b\\c`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Escape(tt.input))
	}

	// doubling: n backslashes in, 2n out, nothing else altered
	in := `\x\y\`
	out := Escape(in)
	assert.Equal(t, 2*strings.Count(in, `\`), strings.Count(out, `\`))
	assert.Equal(t, strings.ReplaceAll(in, `\`, ""), strings.ReplaceAll(out, `\`, ""))
}
