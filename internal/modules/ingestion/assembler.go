package ingestion

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/aristath/turnips/internal/domain"
)

// AssemblerOptions configures an Assembler.
type AssemblerOptions struct {
	// Verbose logs skipped rows at warn level instead of debug.
	Verbose bool
}

// Report summarizes one assembly pass.
type Report struct {
	Rows     int             `json:"rows"`
	Blank    int             `json:"blank"`
	Parsed   int             `json:"parsed"`
	Skipped  int             `json:"skipped"`
	Weeks    int             `json:"weeks"` // distinct weeks with at least one record
	Failures []*ParseFailure `json:"failures,omitempty"`
}

// Assembler walks a batch of raw rows, tracking the week index implied by
// blank separator rows, and collects the rows that parse into records.
type Assembler struct {
	parser *Parser
	opts   AssemblerOptions
	log    zerolog.Logger
}

// NewAssembler creates an assembler.
func NewAssembler(parser *Parser, log zerolog.Logger, opts AssemblerOptions) *Assembler {
	return &Assembler{
		parser: parser,
		opts:   opts,
		log:    log.With().Str("component", "assembler").Logger(),
	}
}

// Assemble parses rows in order and returns the usable records.
func (a *Assembler) Assemble(rows [][]string, layout Layout) []domain.WeeklyRecord {
	records, _ := a.AssembleWithReport(rows, layout)
	return records
}

// AssembleWithReport is Assemble plus a summary of what was kept and dropped.
// The week index starts at 0 and increments on every fully blank row.
func (a *Assembler) AssembleWithReport(rows [][]string, layout Layout) ([]domain.WeeklyRecord, Report) {
	records := make([]domain.WeeklyRecord, 0, len(rows))
	report := Report{Rows: len(rows)}
	weekIndex := 0

	for i, row := range rows {
		if IsBlankRow(row) {
			weekIndex++
			report.Blank++
			continue
		}

		record, err := a.parser.Parse(row, weekIndex, layout)
		if err != nil {
			var failure *ParseFailure
			if !errors.As(err, &failure) {
				failure = newParseFailure(row, weekIndex, err)
			}
			report.Skipped++
			report.Failures = append(report.Failures, failure)
			a.skipEvent().
				Int("row_number", i).
				Int("week_index", weekIndex).
				Strs("row", row).
				Str("reason", failure.Reason).
				Msg("Unusable row, skipping")
			continue
		}

		records = append(records, record)
	}

	report.Parsed = len(records)
	report.Weeks = countWeeks(records)

	a.log.Info().
		Str("layout", layout.String()).
		Int("rows", report.Rows).
		Int("records", report.Parsed).
		Int("skipped", report.Skipped).
		Int("weeks", report.Weeks).
		Msg("Assembled weekly records")

	return records, report
}

func (a *Assembler) skipEvent() *zerolog.Event {
	if a.opts.Verbose {
		return a.log.Warn()
	}
	return a.log.Debug()
}

// IsBlankRow reports whether every cell of row is the empty string. A row with
// no cells is blank; whitespace is content.
func IsBlankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

func countWeeks(records []domain.WeeklyRecord) int {
	weeks := make(map[int]struct{})
	for _, r := range records {
		weeks[r.WeekIndex] = struct{}{}
	}
	return len(weeks)
}
