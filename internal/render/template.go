package render

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// templateFuncs provides utility functions for templates.
var templateFuncs = sprig.TxtFuncMap()

// mustTemplate parses a render template at package init.
func mustTemplate(name, tmplStr string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFuncs).Parse(tmplStr))
}

func execute(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("(render error: %s)", err)
	}
	return buf.String()
}
