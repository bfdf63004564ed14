package cmd

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"paisometer/internal/models"
	"paisometer/internal/pipeline"
)

var listenCmd = &cobra.Command{
	Use:   "listen [file]",
	Short: "Ingest notifications, one JSON object per line",
	Long: `Reads notifications as JSON lines from a file, or from stdin when no
file is given, and runs each through the filter, parser, duplicate gate and
pending queue. Fields: source_app, title, text, big_text, sub_text,
text_lines, ongoing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runListen,
}

func init() {
	RootCmd.AddCommand(listenCmd)
}

func runListen(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd.OutOrStdout(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	counts := make(map[pipeline.Outcome]int)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var n models.Notification
		if err := json.Unmarshal([]byte(line), &n); err != nil {
			a.log.Warn().Err(err).Msg("skipping malformed notification line")
			continue
		}

		res := a.ingestor.Handle(ctx, n)
		counts[res.Outcome]++
		if res.Outcome != pipeline.Queued {
			continue
		}
		a.out.Parsed(*res.Txn)
		if res.Prompt {
			a.out.Info("categorize: paisometer categorize %s <category>", res.Txn.ID)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	a.out.Success("queued %d, duplicates %d, ignored %d",
		counts[pipeline.Queued],
		counts[pipeline.Duplicate],
		counts[pipeline.Filtered]+counts[pipeline.Empty]+counts[pipeline.NoMatch])
	if n := counts[pipeline.QueueFailed]; n > 0 {
		a.out.Warning("%d transactions could not be queued", n)
	}
	return nil
}
