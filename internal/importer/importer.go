package importer

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"paisometer/internal/models"
	"paisometer/internal/pipeline"
)

// SourceApp is the package backed-up messages are attributed to: the stock
// SMS provider, which the notification filter always accepts.
const SourceApp = "com.android.mms"

// Handler is the ingest entry point each message is replayed through.
type Handler interface {
	Handle(ctx context.Context, n models.Notification) pipeline.Result
}

// Options filters which messages of a backup are imported.
type Options struct {
	Sender string // exact address match, empty for all
	From   string // YYYY-MM-DD, empty for all
}

// Summary counts what happened to the messages of one backup.
type Summary struct {
	Messages int                        `json:"messages"`
	Skipped  int                        `json:"skipped"`
	Outcomes map[pipeline.Outcome]int   `json:"outcomes"`
	Queued   []models.ParsedTransaction `json:"queued"`
}

// Importer replays an SMS backup through the ingest pipeline
type Importer struct {
	handler Handler
	log     zerolog.Logger
}

// New creates a new Importer instance
func New(handler Handler, log zerolog.Logger) *Importer {
	return &Importer{
		handler: handler,
		log:     log.With().Str("component", "import").Logger(),
	}
}

// ImportFile reads an SMS backup XML file and replays each matching message
// with its own date. Exact repeats inside the file are skipped.
func (im *Importer) ImportFile(ctx context.Context, filePath string, opts Options) (Summary, error) {
	xmlFile, err := os.ReadFile(filePath)
	if err != nil {
		return Summary{}, fmt.Errorf("error reading file: %w", err)
	}

	var backup models.SMSBackup
	if err := xml.Unmarshal(xmlFile, &backup); err != nil {
		return Summary{}, fmt.Errorf("error parsing XML: %w", err)
	}

	return im.Import(ctx, backup, opts)
}

// Import replays an already decoded backup.
func (im *Importer) Import(ctx context.Context, backup models.SMSBackup, opts Options) (Summary, error) {
	var startDate time.Time
	if opts.From != "" {
		var err error
		startDate, err = time.ParseInLocation("2006-01-02", opts.From, time.Local)
		if err != nil {
			return Summary{}, fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}
	}

	summary := Summary{
		Outcomes: make(map[pipeline.Outcome]int),
		Queued:   []models.ParsedTransaction{},
	}
	seen := make(map[string]bool)

	for _, sms := range backup.SMS {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if opts.Sender != "" && sms.Address != opts.Sender {
			continue
		}

		signature := fmt.Sprintf("%s|%s|%s", sms.Date, sms.Address, sms.Body)
		if seen[signature] {
			summary.Skipped++
			continue
		}
		seen[signature] = true

		dateMs, err := strconv.ParseInt(sms.Date, 10, 64)
		if err != nil {
			im.log.Debug().Str("date", sms.Date).Msg("skipping message with unreadable date")
			summary.Skipped++
			continue
		}
		sentAt := time.UnixMilli(dateMs)
		if !startDate.IsZero() && sentAt.Before(startDate) {
			continue
		}

		summary.Messages++
		// The address is metadata, not message text: only the body is parsed.
		res := im.handler.Handle(ctx, models.Notification{
			SourceApp: SourceApp,
			Text:      sms.Body,
			ReplayAt:  sentAt,
		})
		summary.Outcomes[res.Outcome]++
		if res.Outcome == pipeline.Queued && res.Txn != nil {
			summary.Queued = append(summary.Queued, *res.Txn)
		}
	}

	im.log.Info().
		Int("messages", summary.Messages).
		Int("queued", summary.Outcomes[pipeline.Queued]).
		Int("skipped", summary.Skipped).
		Msg("backup imported")
	return summary, nil
}
