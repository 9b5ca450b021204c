// package playlist implements parsing, writing, and batch splitting of
// extended M3U playlist files.
//
// The format handled here is the author's local variant: an optional #EXTM3U
// header, #EXTINF:<duration>,<artist> - <title> metadata lines, and one
// location line per entry (a Spotify URL/URI or a file path).
package playlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"spotbatch/internal/shared"
)

const header = "#EXTM3U"

// Entry is a single track reference from a playlist file.
// Immutable once parsed.
type Entry struct {
	Location string // URI, URL, or file path line
	Artist   string
	Title    string
	Duration int    // seconds, 0 when unknown
	Metadata string // raw text after the EXTINF comma, preserved verbatim
}

// String renders the entry the way it appears in failure logs: the
// artist/title pair when known, otherwise the raw location.
func (e Entry) String() string {
	if e.Metadata != "" {
		return e.Metadata
	}
	return e.Location
}

// SearchMetadata returns the artist/title pair to search the catalog with.
// Falls back to parsing an "Artist - Title" filename stem when the entry
// carries no EXTINF metadata. Returns ok=false when nothing usable exists.
func (e Entry) SearchMetadata() (artist, title string, ok bool) {
	if e.Artist != "" && e.Title != "" {
		return e.Artist, e.Title, true
	}

	stem := strings.TrimSuffix(filepath.Base(e.Location), filepath.Ext(e.Location))
	if stem == "" || stem == "." {
		return "", "", false
	}

	if artist, title, found := strings.Cut(stem, " - "); found {
		return strings.TrimSpace(artist), strings.TrimSpace(title), true
	}

	return "", stem, true
}

// Parse reads an extended M3U playlist and returns its entries in file order.
// A location line with no preceding EXTINF still yields an entry; an EXTINF
// line with no following location is dropped, matching the source format.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	var pending *Entry

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "" || line == header:
			continue
		case strings.HasPrefix(line, "#EXTINF:"):
			entry, err := parseEXTINF(line)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", shared.ErrParse, lineNo, err)
			}
			pending = &entry
		case strings.HasPrefix(line, "#"):
			// Other directives and comments are skipped.
			continue
		default:
			if pending != nil {
				pending.Location = line
				entries = append(entries, *pending)
				pending = nil
			} else {
				entries = append(entries, Entry{Location: line})
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read playlist: %w", err)
	}

	return entries, nil
}

// ParseFile opens and parses the playlist at path.
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open playlist: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// parseEXTINF parses "#EXTINF:duration,artist - title" into an Entry.
func parseEXTINF(line string) (Entry, error) {
	meta, rest, found := strings.Cut(strings.TrimPrefix(line, "#EXTINF:"), ",")
	if !found {
		return Entry{}, fmt.Errorf("EXTINF missing comma: %q", line)
	}

	duration, err := strconv.Atoi(strings.TrimSpace(meta))
	if err != nil {
		return Entry{}, fmt.Errorf("EXTINF duration %q is not an integer", meta)
	}

	entry := Entry{Duration: duration, Metadata: strings.TrimSpace(rest)}
	if artist, title, found := strings.Cut(entry.Metadata, " - "); found {
		entry.Artist = strings.TrimSpace(artist)
		entry.Title = strings.TrimSpace(title)
	} else {
		entry.Title = entry.Metadata
	}

	return entry, nil
}

// Write renders entries as an extended M3U document.
func Write(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintln(bw, header); err != nil {
		return fmt.Errorf("failed to write playlist: %w", err)
	}

	for _, entry := range entries {
		if entry.Metadata != "" {
			if _, err := fmt.Fprintf(bw, "#EXTINF:%d,%s\n", entry.Duration, entry.Metadata); err != nil {
				return fmt.Errorf("failed to write playlist: %w", err)
			}
		}
		if _, err := fmt.Fprintln(bw, entry.Location); err != nil {
			return fmt.Errorf("failed to write playlist: %w", err)
		}
	}

	return bw.Flush()
}

// WriteFile writes entries as an M3U file at path, creating parent directories.
func WriteFile(path string, entries []Entry) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create playlist file: %w", err)
	}

	if err := Write(f, entries); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
