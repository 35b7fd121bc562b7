package fixtures

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultIndent is the column fixture blocks sit at in the reference
// test files.
const DefaultIndent = 16

// ScanOptions configures document scanning
type ScanOptions struct {
	// Indent is the exact number of leading spaces on every line of a
	// fixture block (default 16)
	Indent int
}

func (o ScanOptions) indentWidth() int {
	if o.Indent <= 0 {
		return DefaultIndent
	}
	return o.Indent
}

// ScanFile reads and scans path into a Document.
func ScanFile(path string, opts ScanOptions) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture file: %w", err)
	}
	return Scan(bytes.NewReader(data), path, opts)
}

// Scan parses a fixture document into literal lines and fixture blocks,
// validating every block's structure. A malformed block returns an error
// naming the offending line; no partial document is returned.
func Scan(r io.Reader, path string, opts ScanOptions) (*Document, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	indent := strings.Repeat(" ", opts.indentWidth())
	urlPrefix := indent + `"http`
	delimiter := indent + Marker + "\n"

	doc := &Document{Path: path}
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !strings.HasPrefix(line, urlPrefix) {
			doc.Segments = append(doc.Segments, Segment{Literal: line})
			continue
		}

		// lines[i] starts a fixture block: URL, opening delimiter,
		// cached data, closing delimiter
		lineNum := i + 1
		content := strings.TrimSuffix(line, "\n")
		if !strings.HasSuffix(content, `"`) {
			return nil, fmt.Errorf("%s:%d: fixture URL is not a closed string literal: %q", path, lineNum, content)
		}
		url := content[len(indent)+1 : len(content)-1]

		if i+3 >= len(lines) {
			return nil, fmt.Errorf("%s:%d: fixture block for %s is truncated", path, lineNum, url)
		}
		open, data, closing := lines[i+1], lines[i+2], lines[i+3]
		if open != delimiter {
			return nil, fmt.Errorf("%s:%d: expected opening %s delimiter, got %q", path, lineNum+1, Marker, strings.TrimSuffix(open, "\n"))
		}
		if closing != delimiter {
			return nil, fmt.Errorf("%s:%d: expected closing %s delimiter, got %q", path, lineNum+3, Marker, strings.TrimSuffix(closing, "\n"))
		}

		doc.Segments = append(doc.Segments, Segment{Block: &Block{
			URL:     url,
			Line:    lineNum,
			URLLine: line,
			Open:    open,
			Data:    data,
			Close:   closing,
		}})
		i += 3
	}
	return doc, nil
}

// readLines splits into lines with their endings preserved, so the last
// line keeps (or lacks) its newline exactly as in the input.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// Escape doubles every backslash so the fetched body can sit inside a
// triple-quoted string literal. Encoded polylines are full of them.
func Escape(body string) string {
	return strings.ReplaceAll(body, `\`, `\\`)
}
