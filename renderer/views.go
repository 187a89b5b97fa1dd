package renderer

import (
	"fmt"
	"strconv"

	"github.com/portivue/portivue"
)

// PositionsView is the formatted positions report.
type PositionsView struct {
	BaseCurrency string
	Rows         []PositionRow
	TotalBase    string
}

type PositionRow struct {
	Account    string
	Instrument string
	Quantity   string
	AvgCost    string
	LastPrice  string
	ValueCcy   string
	ValueBase  string
	Unrealized string
}

// NewPositionsView formats position rows for display. Amount columns use the
// instrument currency; the base column and total use the reporting currency.
func NewPositionsView(rows []portivue.Position) *PositionsView {
	v := &PositionsView{}
	var total float64
	for _, p := range rows {
		v.BaseCurrency = p.BaseCurrency
		total += p.MarketValueBase

		name := p.Name
		if name == "" {
			name = p.Symbol
		}
		if name == "" {
			name = p.InstrumentID
		}
		v.Rows = append(v.Rows, PositionRow{
			Account:    p.AccountName,
			Instrument: name,
			Quantity:   formatQuantity(p.Quantity),
			AvgCost:    portivue.FormatAmount(p.AvgCostCcy, p.Currency),
			LastPrice:  portivue.FormatAmount(p.LastPriceCcy, p.Currency),
			ValueCcy:   portivue.FormatAmount(p.MarketValueCcy, p.Currency),
			ValueBase:  portivue.FormatAmount(p.MarketValueBase, p.BaseCurrency),
			Unrealized: portivue.FormatAmount(p.UnrealizedBase, p.BaseCurrency),
		})
	}
	if v.BaseCurrency != "" {
		v.TotalBase = portivue.FormatAmount(total, v.BaseCurrency)
	}
	return v
}

// BalancesView is the formatted account balances report.
type BalancesView struct {
	AsOf         string
	BaseCurrency string
	Rows         []BalanceRow
	TotalBase    string
}

type BalanceRow struct {
	Account       string
	Type          string
	Native        string
	Base          string
	Rate          string
	NoteworthyGap bool
}

// NewBalancesView formats balance rows. An account whose rate was unknown
// shows a dash instead of a misleading zero, and is flagged.
func NewBalancesView(rows []portivue.Balance) *BalancesView {
	v := &BalancesView{}
	var total float64
	for _, b := range rows {
		v.AsOf = b.AsOf.String()
		v.BaseCurrency = b.BaseCurrency
		total += b.Base

		row := BalanceRow{
			Account: b.AccountName,
			Type:    string(b.AccountType),
			Native:  portivue.FormatAmount(b.Native, b.AccountCurrency),
		}
		if b.RateKnown {
			row.Base = portivue.FormatAmount(b.Base, b.BaseCurrency)
			row.Rate = strconv.FormatFloat(b.Rate, 'g', 6, 64)
		} else {
			row.Base = "—"
			row.Rate = "?"
			row.NoteworthyGap = true
		}
		v.Rows = append(v.Rows, row)
	}
	if v.BaseCurrency != "" {
		v.TotalBase = portivue.FormatAmount(total, v.BaseCurrency)
	}
	return v
}

// HistoryView is the formatted net worth series.
type HistoryView struct {
	BaseCurrency string
	Rows         []HistoryRow
}

type HistoryRow struct {
	Date        string
	MarketValue string
	Cash        string
	NetWorth    string
}

func NewHistoryView(series []portivue.HistoryPoint, baseCurrency string) *HistoryView {
	v := &HistoryView{BaseCurrency: baseCurrency}
	for _, p := range series {
		v.Rows = append(v.Rows, HistoryRow{
			Date:        p.Date.String(),
			MarketValue: portivue.FormatAmount(p.MarketValue, baseCurrency),
			Cash:        portivue.FormatAmount(p.CashBalance, baseCurrency),
			NetWorth:    portivue.FormatAmount(p.NetWorth, baseCurrency),
		})
	}
	return v
}

// ActivitiesView is the formatted transaction log.
type ActivitiesView struct {
	Rows []ActivityRow
}

type ActivityRow struct {
	Date       string
	Type       string
	Account    string
	Instrument string
	Detail     string
	Note       string
}

func NewActivitiesView(acts []portivue.Activity, accountNames map[string]string) *ActivitiesView {
	v := &ActivitiesView{}
	for _, a := range acts {
		account := a.AccountID
		if name, ok := accountNames[a.AccountID]; ok {
			account = name
		}
		var detail string
		if a.Type.IsTrade() {
			detail = fmt.Sprintf("%s × %s", formatQuantity(a.Quantity),
				portivue.FormatAmount(a.UnitPrice, a.CurrencyCode))
		} else {
			detail = portivue.FormatAmount(a.CashAmount(), a.CurrencyCode)
		}
		v.Rows = append(v.Rows, ActivityRow{
			Date:       a.Date.String(),
			Type:       string(a.Type),
			Account:    account,
			Instrument: a.InstrumentID,
			Detail:     detail,
			Note:       a.Note,
		})
	}
	return v
}

// formatQuantity trims the noise off a float quantity: whole numbers print
// without decimals, fractional ones with up to 6 significant decimals.
func formatQuantity(q float64) string {
	s := strconv.FormatFloat(q, 'f', -1, 64)
	if len(s) > 12 {
		s = strconv.FormatFloat(q, 'f', 6, 64)
	}
	return s
}
