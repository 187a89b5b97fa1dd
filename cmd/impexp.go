package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/portivue/portivue"
)

type importCmd struct {
	file   string
	dryRun bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import ledger activities from a CSV file" }
func (*importCmd) Usage() string {
	return `pv import -i <file> [-n]

  Reads activities from a CSV file (the format written by 'pv export') and
  appends them to the ledger. The whole file is validated before anything
  is written.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "i", "", "Input file.")
	f.BoolVar(&c.dryRun, "n", false, "Validate only, write nothing.")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "-i argument is required")
		return subcommands.ExitUsageError
	}

	r, err := os.Open(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open file %q: %v\n", c.file, err)
		return subcommands.ExitFailure
	}
	defer r.Close()

	acts, err := portivue.ImportActivities(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing %q: %v\n", c.file, err)
		return subcommands.ExitFailure
	}
	if c.dryRun {
		fmt.Printf("%d activities valid, nothing written\n", len(acts))
		return subcommands.ExitSuccess
	}

	app, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer app.Close()

	for i, a := range acts {
		if _, err := app.store.Append(ctx, app.scope, a); err != nil {
			fmt.Fprintf(os.Stderr, "Error appending row %d: %v\n", i+1, err)
			return subcommands.ExitFailure
		}
	}
	fmt.Printf("Imported %d activities from %s\n", len(acts), c.file)
	return subcommands.ExitSuccess
}

type exportCmd struct {
	file string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the ledger to CSV" }
func (*exportCmd) Usage() string {
	return `pv export [-o <file>]

  Writes the full ledger as CSV, oldest first. Without -o the CSV goes to
  standard output.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "o", "", "Output file. Defaults to stdout.")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer app.Close()

	acts, err := app.store.Activities(ctx, app.scope)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	out := os.Stdout
	if c.file != "" {
		out, err = os.Create(c.file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot create file %q: %v\n", c.file, err)
			return subcommands.ExitFailure
		}
		defer out.Close()
	}

	if err := portivue.ExportActivities(out, acts); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.file != "" {
		fmt.Printf("Exported %d activities to %s\n", len(acts), c.file)
	}
	return subcommands.ExitSuccess
}
