package export

import (
	"bytes"
	"html/template"
)

// pageTemplate is the print shell wrapped around stored document HTML before
// it goes to the headless browser. A4 with 20mm margins.
const pageTemplate = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width,initial-scale=1" />
  <title>{{.Title}}</title>
  <style>
    @page { size: A4; margin: 20mm; }
    body { font-family: system-ui, -apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; }
    h1, h2, h3 { margin: 0 0 12px; }
    h2.ch-clause-title { border-bottom: 1px solid #ddd; padding-bottom: 4px; }
    p, li { line-height: 1.45; }
    .ch-clause-body { margin-bottom: 16px; }
  </style>
</head>
<body>{{.Body | safeHTML}}</body>
</html>`

var pageShell = template.Must(template.New("page").Funcs(template.FuncMap{
	"safeHTML": func(s string) template.HTML { return template.HTML(s) },
}).Parse(pageTemplate))

type pageData struct {
	Title string
	Body  string
}

// RenderPage wraps document HTML in the print shell.
func RenderPage(title, body string) (string, error) {
	var buf bytes.Buffer
	if err := pageShell.Execute(&buf, pageData{Title: title, Body: body}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
