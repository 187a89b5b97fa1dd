package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/portivue/portivue"
	"github.com/portivue/portivue/date"
)

type txCmd struct {
	typ        string
	account    string
	instrument string
	broker     string
	day        string
	quantity   string
	price      string
	amount     string
	currency   string
	fee        string
	note       string
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "append an activity to the ledger" }
func (*txCmd) Usage() string {
	return `pv tx -t <type> -a <account> [flags]

  Appends one activity to the ledger. Buy and Sell need -i, -q and -p;
  Dividend, Interest and Fee need -amount.

Usage Examples:
$ pv tx -t Buy -a brokerage -i AAPL.US -q 10 -p 227.50 -c USD -fee 1.00
$ pv tx -t Dividend -a brokerage -i AAPL.US -amount 24.00 -c USD
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "t", "", "Activity type: Buy, Sell, Dividend, Interest or Fee.")
	f.StringVar(&c.account, "a", "", "Account the activity belongs to.")
	f.StringVar(&c.instrument, "i", "", "Instrument identifier (required for trades).")
	f.StringVar(&c.broker, "b", "", "Broker identifier.")
	f.StringVar(&c.day, "d", "", "Activity date (YYYY-MM-DD). Defaults to today.")
	f.StringVar(&c.quantity, "q", "", "Quantity (trades).")
	f.StringVar(&c.price, "p", "", "Per-unit price (trades).")
	f.StringVar(&c.amount, "amount", "", "Cash amount (dividend, interest, fee).")
	f.StringVar(&c.currency, "c", "", "Currency of the activity.")
	f.StringVar(&c.fee, "fee", "", "Fee amount, in the activity currency.")
	f.StringVar(&c.note, "note", "", "Free-form note.")
}

func (c *txCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := c.activity()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	app, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer app.Close()

	stored, err := app.store.Append(ctx, app.scope, a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error appending activity: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Recorded %s %s on %s (id %s)\n", stored.Type, stored.AccountID, stored.Date, stored.ID)
	return subcommands.ExitSuccess
}

// activity builds and validates the activity from the flags.
func (c *txCmd) activity() (portivue.Activity, error) {
	typ, err := portivue.ParseActivityType(c.typ)
	if err != nil {
		return portivue.Activity{}, err
	}

	day := date.Today()
	if c.day != "" {
		if day, err = date.Parse(c.day); err != nil {
			return portivue.Activity{}, fmt.Errorf("parsing -d: %w", err)
		}
	}

	a := portivue.Activity{
		Type:         typ,
		AccountID:    c.account,
		InstrumentID: c.instrument,
		BrokerID:     c.broker,
		Date:         day,
		CurrencyCode: c.currency,
		Note:         c.note,
	}

	if typ.IsTrade() {
		if c.amount != "" {
			return portivue.Activity{}, fmt.Errorf("-amount does not apply to %s, use -q and -p", typ)
		}
		if a.Quantity, err = portivue.ParseAmount(c.quantity); err != nil {
			return portivue.Activity{}, fmt.Errorf("parsing -q: %w", err)
		}
		if a.UnitPrice, err = portivue.ParseAmount(c.price); err != nil {
			return portivue.Activity{}, fmt.Errorf("parsing -p: %w", err)
		}
	} else {
		if c.amount == "" {
			return portivue.Activity{}, fmt.Errorf("%s requires -amount", typ)
		}
		if a.UnitPrice, err = portivue.ParseAmount(c.amount); err != nil {
			return portivue.Activity{}, fmt.Errorf("parsing -amount: %w", err)
		}
	}
	if c.fee != "" {
		if a.FeeAmount, err = portivue.ParseAmount(c.fee); err != nil {
			return portivue.Activity{}, fmt.Errorf("parsing -fee: %w", err)
		}
	}

	if err := a.Validate(); err != nil {
		return portivue.Activity{}, err
	}
	return a, nil
}
