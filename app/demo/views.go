package demo

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/oakframe/oak/core/dispatch"
	"github.com/oakframe/oak/core/response"
)

//go:embed views/*.html
var viewsFS embed.FS

var views = template.Must(template.ParseFS(viewsFS, "views/*.html"))

// pageData is the payload every view template receives. Flashes are drained
// from the session at render time, so each message survives exactly one page.
type pageData struct {
	Title     string
	Flashes   map[string]any
	IsGuest   bool
	UserEmail string
	Data      any
}

func newPageData(ctx *dispatch.Context, title string, data any) pageData {
	pd := pageData{
		Title:   title,
		Flashes: ctx.Session().GetAllFlashes(true),
		IsGuest: ctx.User().IsGuest(),
		Data:    data,
	}
	if identity := ctx.User().Identity(); identity != nil {
		if u, ok := identity.(interface{ Email() string }); ok {
			pd.UserEmail = u.Email()
		}
	}
	return pd
}

func render(ctx *dispatch.Context, name, title string, data any) response.Response {
	return response.TemplateName(views, name, newPageData(ctx, title, data))
}

func renderErrorPage(ctx *dispatch.Context, err response.HTTPError) response.Response {
	data := newPageData(ctx, fmt.Sprintf("Error %d", err.Status), err)
	return response.TemplateNameWithStatus(views, "error", data, err.Status)
}
