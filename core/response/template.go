package response

import (
	"bytes"
	"html/template"
	"net/http"
)

// Template creates a text/html response from an html/template with 200 OK
// status. Output is buffered so a failed execution leaves the response
// untouched and surfaces as an error instead of a truncated page.
func Template(tmpl *template.Template, data any) Response {
	return TemplateName(tmpl, "", data)
}

// TemplateName renders a named template from a template collection (e.g. from
// ParseFS or ParseGlob). An empty name executes the root template.
func TemplateName(tmpl *template.Template, name string, data any) Response {
	return TemplateNameWithStatus(tmpl, name, data, http.StatusOK)
}

// TemplateNameWithStatus renders a named template with a custom status code.
func TemplateNameWithStatus(tmpl *template.Template, name string, data any, status int) Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if tmpl == nil {
			return ErrInternalServerError.WithMessage("template is nil")
		}

		var buf bytes.Buffer
		var err error
		if name != "" {
			err = tmpl.ExecuteTemplate(&buf, name, data)
		} else {
			err = tmpl.Execute(&buf, data)
		}
		if err != nil {
			return err
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		_, writeErr := w.Write(buf.Bytes())
		return writeErr
	}
}
