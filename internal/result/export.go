package result

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/transcripta/capsearch/pkg/types"
)

// Export formats supported by Export
const (
	FormatCSV   = "csv"
	FormatPlain = "plain"
	FormatJSON  = "json"
)

// Export serializes a search response to the writer in the given format
func Export(w io.Writer, resp *types.SearchResponse, format string) error {
	switch format {
	case FormatCSV:
		return exportCSV(w, resp)
	case FormatPlain:
		return exportPlain(w, resp)
	case FormatJSON:
		return exportJSON(w, resp)
	default:
		return fmt.Errorf("unsupported export format %q (want csv, plain or json)", format)
	}
}

func exportCSV(w io.Writer, resp *types.SearchResponse) error {
	cw := csv.NewWriter(w)
	header := []string{"title", "video_id", "timestamp", "timestamp_seconds", "score", "text", "external_url"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range resp.Results {
		record := []string{
			r.Title,
			r.VideoID,
			r.Timestamp,
			strconv.Itoa(r.TimestampSeconds),
			strconv.Itoa(r.Score),
			r.Text,
			r.ExternalURL,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func exportPlain(w io.Writer, resp *types.SearchResponse) error {
	if _, err := fmt.Fprintf(w, "Query: %s\nStatus: %s\nResults: %d\n\n", resp.Query, resp.Status, resp.Count); err != nil {
		return err
	}
	for i, r := range resp.Results {
		_, err := fmt.Fprintf(w, "%d. %s [%s]\n   %s\n   %s\n   %s\n\n",
			i+1, r.Title, r.Timestamp, r.Text, r.Explanation, r.ExternalURL)
		if err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(w io.Writer, resp *types.SearchResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
