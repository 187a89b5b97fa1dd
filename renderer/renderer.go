// Package renderer turns valuation reports into markdown. Each report has an
// embedded template; the data side is a view struct with every number already
// formatted, so the templates stay purely structural.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templates embed.FS

// renderTemplate renders a main template, optionally wiring named partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		if file != "" {
			content, err = fs.ReadFile(templates, "templates/"+file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}

// RenderPositions renders the positions report to markdown.
func RenderPositions(v *PositionsView) string {
	return renderTemplate("positions", "positions.md", nil, v)
}

// RenderBalances renders the account balances report to markdown.
func RenderBalances(v *BalancesView) string {
	return renderTemplate("balances", "balances.md", nil, v)
}

// RenderHistory renders the net worth history to markdown.
func RenderHistory(v *HistoryView) string {
	return renderTemplate("history", "history.md", nil, v)
}

// RenderActivities renders the transaction log to markdown.
func RenderActivities(v *ActivitiesView) string {
	return renderTemplate("activities", "activities.md", nil, v)
}
