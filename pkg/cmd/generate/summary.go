package generate

import (
	"io"
	"text/template"

	"github.com/compat-todo/compat-todo/internal/pipeline"
)

type printableSummary struct {
	Source   string
	Products int
	Issues   int
	Skipped  int
	Pages    []printablePage
}

type printablePage struct {
	Label string
	Count int
	File  string
}

var summaryTemplate = `Source: {{.Source}} | Games: {{.Products}} | Issues: {{.Issues}} | Without game code: {{.Skipped}}
{{printf "%-36s | %-6s | %-30s" "PAGE" "GAMES" "FILE"}}{{range .Pages}}
{{printf "%-36s | %-6d | %-30s" .Label .Count .File}}{{end}}
`

func getPrintableSummary(res *pipeline.Result) printableSummary {
	ps := printableSummary{
		Source:   res.Source,
		Products: res.Totals.Products,
		Issues:   res.Totals.Issues,
		Skipped:  res.Totals.Skipped,
	}
	for _, page := range res.Pages {
		ps.Pages = append(ps.Pages, printablePage{Label: page.Label, Count: page.Count, File: page.File})
	}
	return ps
}

func printSummary(w io.Writer, res *pipeline.Result) error {
	tmpl, err := template.New("summary").Parse(summaryTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, getPrintableSummary(res))
}
