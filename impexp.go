package portivue

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/portivue/portivue/date"
)

// csvHeader is the canonical column set for ledger interchange. Export
// writes it, import requires it (column order included), so a round trip
// is always lossless for the fields that matter to valuation.
var csvHeader = []string{
	"date", "type", "account_id", "instrument_id", "broker_id",
	"quantity", "unit_price", "currency", "fee", "note",
}

// ExportActivities writes a ledger as CSV in canonical column order.
// IDs are not exported: they are storage-assigned and meaningless outside
// the store that minted them.
func ExportActivities(w io.Writer, acts []Activity) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, a := range acts {
		rec := []string{
			a.Date.String(),
			string(a.Type),
			a.AccountID,
			a.InstrumentID,
			a.BrokerID,
			formatCSVFloat(a.Quantity),
			formatCSVFloat(a.UnitPrice),
			a.CurrencyCode,
			formatCSVFloat(a.FeeAmount),
			a.Note,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportActivities parses a CSV ledger previously produced by
// ExportActivities (or hand-written to the same header). Every row is
// validated; the first bad row aborts the import with its line number so
// nothing partial ever comes back.
func ImportActivities(r io.Reader) ([]Activity, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	if err := checkCSVHeader(header); err != nil {
		return nil, err
	}

	var acts []Activity
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		a, err := parseCSVActivity(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		acts = append(acts, a)
	}
	return acts, nil
}

func checkCSVHeader(got []string) error {
	if len(got) != len(csvHeader) {
		return fmt.Errorf("csv header has %d columns, want %d (%s)", len(got), len(csvHeader), strings.Join(csvHeader, ","))
	}
	for i, want := range csvHeader {
		if strings.TrimSpace(strings.ToLower(got[i])) != want {
			return fmt.Errorf("csv column %d is %q, want %q", i+1, got[i], want)
		}
	}
	return nil
}

func parseCSVActivity(rec []string) (Activity, error) {
	var a Activity
	day, err := date.Parse(rec[0])
	if err != nil {
		return a, err
	}
	typ, err := ParseActivityType(rec[1])
	if err != nil {
		return a, err
	}
	a = Activity{
		Type:         typ,
		AccountID:    rec[2],
		InstrumentID: rec[3],
		BrokerID:     rec[4],
		Date:         day,
		CurrencyCode: strings.TrimSpace(rec[7]),
		Note:         rec[9],
	}
	if a.Quantity, err = parseCSVFloat(rec[5]); err != nil {
		return a, fmt.Errorf("quantity: %w", err)
	}
	if a.UnitPrice, err = parseCSVFloat(rec[6]); err != nil {
		return a, fmt.Errorf("unit_price: %w", err)
	}
	if a.FeeAmount, err = parseCSVFloat(rec[8]); err != nil {
		return a, fmt.Errorf("fee: %w", err)
	}
	if err := a.Validate(); err != nil {
		return a, err
	}
	return a, nil
}

func parseCSVFloat(s string) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return ParseAmount(s)
}

func formatCSVFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
