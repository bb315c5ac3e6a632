package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/dkropachev/autocatalog/internal/cli"
	"github.com/dkropachev/autocatalog/internal/engine"
	"github.com/dkropachev/autocatalog/internal/model"
)

// backlogLine is one exported chat message in a backlog file. Plain text
// lines (no leading '{') are accepted too and get a synthetic source.
type backlogLine struct {
	Text      string `json:"text"`
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	Timestamp int64  `json:"ts"`
}

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>",
		Short: "Classify and store a backlog of chat messages",
		Long: `Ingest a backlog file with one message per line, either as JSON
({"chat_id":-100,"message_id":1,"text":"...","ts":1712345678}) or as plain
text. Messages that do not look like listings are skipped; duplicates are
dropped by fingerprint.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			lines, err := readLines(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			bar := progressbar.Default(int64(len(lines)), "ingesting")

			var inserted, duplicates, rejected int
			for i, line := range lines {
				msg := parseBacklogLine(line, int64(i))

				res, err := a.catalog.Ingest(ctx, msg)
				if err != nil {
					return fmt.Errorf("line %d: %w", i+1, err)
				}

				switch res.Status {
				case engine.IngestInserted:
					inserted++
				case engine.IngestDuplicate:
					duplicates++
				case engine.IngestRejected:
					rejected++
				}
				_ = bar.Add(1)
			}

			fmt.Println(cli.FormatInfo(fmt.Sprintf(
				"Ingested %d listings (%d duplicates, %d rejected) from %d lines",
				inserted, duplicates, rejected, len(lines))))
			return nil
		},
	}
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open backlog file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read backlog file: %w", err)
	}
	return lines, nil
}

func parseBacklogLine(line string, lineNo int64) model.InboundMessage {
	if strings.HasPrefix(line, "{") {
		var bl backlogLine
		if err := json.Unmarshal([]byte(line), &bl); err == nil && bl.Text != "" {
			receivedAt := time.Now()
			if bl.Timestamp > 0 {
				receivedAt = time.Unix(bl.Timestamp, 0)
			}
			return model.InboundMessage{
				Source:     model.SourceRef{ChatID: bl.ChatID, MessageID: bl.MessageID},
				Text:       bl.Text,
				ReceivedAt: receivedAt,
			}
		}
	}

	// Plain text fallback: the line number stands in for a message id.
	return model.InboundMessage{
		Source:     model.SourceRef{MessageID: lineNo + 1},
		Text:       line,
		ReceivedAt: time.Now(),
	}
}
