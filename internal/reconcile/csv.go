package reconcile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentaltoll-backend/internal/domain"
)

const (
	ColumnLaneTxnID  = "Lane Txn ID"
	ColumnPlate      = "Tag/Plate #"
	ColumnAgency     = "Agency"
	ColumnEntryPlaza = "Entry Plaza"
	ColumnExitPlaza  = "Exit Plaza"
	ColumnClass      = "Class"
	ColumnDate       = "Date"
	ColumnExitTime   = "Exit Time"
	ColumnAmount     = "Amount"

	paymentLocation = "PAYMENT"
)

var requiredColumns = []string{ColumnDate, ColumnExitTime, ColumnAmount}

var timestampLayouts = []string{
	"01/02/2006 03:04:05 PM",
	"1/2/2006 3:04:05 PM",
	"01/02/2006 03:04 PM",
	"1/2/2006 3:04 PM",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// SkippedRow records a data row that could not be turned into a toll.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type ParseResult struct {
	Tolls    []*domain.Toll
	Payments int
	Skipped  []SkippedRow
}

// ParseTimestamp parses "Date Exit Time" in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.Join(strings.Fields(value), " ")
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

// ParseTollCSV reads a toll provider export in a single pass. Rows with a
// bad timestamp are skipped and reported, payment rows are dropped.
func ParseTollCSV(r io.Reader, loc *time.Location) (*ParseResult, error) {
	if loc == nil {
		loc = time.UTC
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty toll file", domain.ErrInvalidInput)
	}
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("%w: reading header: %v", domain.ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("reading toll file: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		index[name] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", domain.ErrInvalidInput, col)
		}
	}

	result := &ParseResult{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, fmt.Errorf("reading toll file: %w", err)
			}
			result.Skipped = append(result.Skipped, SkippedRow{Line: perr.Line, Reason: perr.Err.Error()})
			continue
		}
		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}

		field := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		location := field(ColumnExitPlaza)
		if location == "" {
			location = field(ColumnEntryPlaza)
		}
		if location == paymentLocation {
			result.Payments++
			continue
		}

		at, err := ParseTimestamp(field(ColumnDate)+" "+field(ColumnExitTime), loc)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedRow{Line: line, Reason: err.Error()})
			continue
		}

		laneID := field(ColumnLaneTxnID)
		id := laneID
		if id == "" {
			id = uuid.NewString()
		}

		result.Tolls = append(result.Tolls, &domain.Toll{
			ID:            id,
			LaneTxnID:     laneID,
			TransactionAt: at,
			Location:      location,
			Amount:        ParseAmount(field(ColumnAmount)),
			Plate:         field(ColumnPlate),
			Agency:        field(ColumnAgency),
			Class:         field(ColumnClass),
			Status:        domain.TollStatusUnmatched,
		})
	}
	return result, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
