// package formatter renders playlist tracks and comparisons as text, Markdown, CSV or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/pldiff/internal/models"
	"github.com/desertthunder/pldiff/internal/shared"
)

// Format names an output rendering.
type Format string

const (
	Text     Format = "text"
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
)

// ParseFormat validates name against the formats allowed for a command.
func ParseFormat(name string, allowed ...Format) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	if f == "" {
		f = Text
	}
	for _, a := range allowed {
		if f == a {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, name)
}

// TracksToCSV converts a playlist to CSV with columns: Index, ID, Title, Artists, Album, Duration, URI, URL
func TracksToCSV(pl *models.PlaylistTracks) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Index", "ID", "Title", "Artists", "Album", "Duration", "URI", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range pl.Tracks {
		record := []string{
			strconv.Itoa(track.Index),
			track.ID,
			track.Title,
			track.ArtistNames(),
			track.Album.Title,
			strconv.Itoa(track.DurationMS),
			track.URI,
			track.ExternalURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// TracksToMarkdown converts a playlist to a Markdown table linking every track.
func TracksToMarkdown(pl *models.PlaylistTracks) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Playlist %s\n\n", pl.ID)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(pl.Tracks))

	buf.WriteString("| # | Title | Artists | Album | Duration |\n")
	buf.WriteString("|---|---|---|---|---|\n")
	for _, track := range pl.Tracks {
		fmt.Fprintf(&buf, "| %d | [%s](%s) | %s | %s | %s |\n",
			track.Index+1,
			escapeCell(track.Title),
			track.ExternalURL,
			escapeCell(track.ArtistNames()),
			escapeCell(track.Album.Title),
			shared.FormatDuration(track.DurationMS),
		)
	}

	return buf.Bytes()
}

// TracksToText converts a playlist to plain text, one track per line.
func TracksToText(pl *models.PlaylistTracks) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", pl.ID)
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(pl.Tracks))

	for _, track := range pl.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s [%s]\n",
			track.Index+1, track.ArtistNames(), track.Title, shared.FormatDuration(track.DurationMS))
	}

	return buf.Bytes()
}

// DiffToText renders a comparison for the terminal: shared tracks in the success color,
// tracks found on one side only in the error color.
func DiffToText(cmp *models.Comparison, p *Palette) []byte {
	var buf bytes.Buffer

	left := cmp.Left.ByID()
	right := cmp.Right.ByID()

	fmt.Fprintln(&buf, p.Title(fmt.Sprintf("Comparing %s (%d tracks) with %s (%d tracks)",
		cmp.Left.ID, len(cmp.Left.Tracks), cmp.Right.ID, len(cmp.Right.Tracks))))
	buf.WriteString("\n")

	section := func(title string, ids []string, lookup map[string]models.CanonicalTrack, paint func(string) string) {
		fmt.Fprintf(&buf, "%s (%d)\n", p.Title(title), len(ids))
		for _, id := range ids {
			fmt.Fprintf(&buf, "  %s\n", paint(trackLine(lookup[id])))
		}
		buf.WriteString("\n")
	}

	section("In both", cmp.Diff.Intersection, left, p.OK)
	section("Only in "+cmp.Left.ID, cmp.Diff.OnlyLeft, left, p.Err)
	section("Only in "+cmp.Right.ID, cmp.Diff.OnlyRight, right, p.Err)

	duplicates := func(side string, ids []string, lookup map[string]models.CanonicalTrack, clusters []models.DuplicateCluster) {
		if len(ids) == 0 && len(clusters) == 0 {
			return
		}
		fmt.Fprintf(&buf, "%s\n", p.Title("Duplicates in "+side))
		for _, id := range ids {
			fmt.Fprintf(&buf, "  %s\n", p.Warn(trackLine(lookup[id])))
		}
		for _, c := range clusters {
			fmt.Fprintf(&buf, "  %s\n", p.Help("possible duplicates:"))
			for _, t := range c.Tracks {
				fmt.Fprintf(&buf, "    %s\n", p.Warn(trackLine(t)))
			}
		}
		buf.WriteString("\n")
	}

	duplicates(cmp.Left.ID, cmp.Diff.LeftDuplicates, left, cmp.Diff.LeftPossibleDuplicates)
	duplicates(cmp.Right.ID, cmp.Diff.RightDuplicates, right, cmp.Diff.RightPossibleDuplicates)

	return buf.Bytes()
}

// DiffToMarkdown renders a comparison as Markdown sections with linked tracks.
func DiffToMarkdown(cmp *models.Comparison) []byte {
	var buf bytes.Buffer

	left := cmp.Left.ByID()
	right := cmp.Right.ByID()

	fmt.Fprintf(&buf, "# %s vs %s\n\n", cmp.Left.ID, cmp.Right.ID)
	fmt.Fprintf(&buf, "**Run**: %s\n\n", cmp.RunID)

	section := func(title string, ids []string, lookup map[string]models.CanonicalTrack) {
		fmt.Fprintf(&buf, "## %s (%d)\n\n", title, len(ids))
		for _, id := range ids {
			t := lookup[id]
			fmt.Fprintf(&buf, "- [%s](%s) - %s\n", t.Title, t.ExternalURL, t.ArtistNames())
		}
		buf.WriteString("\n")
	}

	section("In both", cmp.Diff.Intersection, left)
	section("Only in "+cmp.Left.ID, cmp.Diff.OnlyLeft, left)
	section("Only in "+cmp.Right.ID, cmp.Diff.OnlyRight, right)

	clusters := func(side string, cs []models.DuplicateCluster) {
		if len(cs) == 0 {
			return
		}
		fmt.Fprintf(&buf, "## Possible duplicates in %s\n\n", side)
		for _, c := range cs {
			titles := make([]string, 0, len(c.Tracks))
			for _, t := range c.Tracks {
				titles = append(titles, fmt.Sprintf("[%s](%s)", t.Title, t.ExternalURL))
			}
			fmt.Fprintf(&buf, "- %s\n", strings.Join(titles, ", "))
		}
		buf.WriteString("\n")
	}

	clusters(cmp.Left.ID, cmp.Diff.LeftPossibleDuplicates)
	clusters(cmp.Right.ID, cmp.Diff.RightPossibleDuplicates)

	return buf.Bytes()
}

// WriteTracks renders a playlist in format f to w.
func WriteTracks(w io.Writer, pl *models.PlaylistTracks, f Format) error {
	var (
		data []byte
		err  error
	)

	switch f {
	case CSV:
		data, err = TracksToCSV(pl)
	case JSON:
		data, err = shared.MarshalJSON(pl, true)
	case Markdown:
		data = TracksToMarkdown(pl)
	case Text, "":
		data = TracksToText(pl)
	default:
		return fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, f)
	}
	if err != nil {
		return err
	}

	_, err = w.Write(data)
	return err
}

// WriteDiff renders a comparison in format f to w. The palette only applies to text output.
func WriteDiff(w io.Writer, cmp *models.Comparison, f Format, p *Palette) error {
	var (
		data []byte
		err  error
	)

	switch f {
	case JSON:
		data, err = shared.MarshalJSON(cmp, true)
	case Markdown:
		data = DiffToMarkdown(cmp)
	case Text, "":
		data = DiffToText(cmp, p)
	default:
		return fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, f)
	}
	if err != nil {
		return err
	}

	_, err = w.Write(data)
	return err
}

// WriteFile writes rendered output to path.
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func trackLine(t models.CanonicalTrack) string {
	artists := t.ArtistNames()
	if artists == "" {
		return fmt.Sprintf("%s (%s)", t.Title, t.ID)
	}
	return fmt.Sprintf("%s - %s (%s)", artists, t.Title, t.ID)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
