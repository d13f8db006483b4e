package web

import (
	"embed"
	"fmt"
	"html/template"

	"datefilter/internal/view"
)

//go:embed templates/*.html
var templateFiles embed.FS

var templateFuncs = template.FuncMap{
	"rowClass": func(i int) string {
		if i%2 == 0 {
			return "row-even"
		}
		return "row-odd"
	},
	"placeholder": func() string { return view.PlaceholderText },
	"formatSize":  formatSize,
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFiles, "templates/*.html")
}
