package demo

import "github.com/oakframe/oak/core/dispatch"

// SiteController serves the public pages.
type SiteController struct{}

// DefaultAction implements dispatch.Controller.
func (c *SiteController) DefaultAction() string { return "index" }

// Actions implements dispatch.Controller.
func (c *SiteController) Actions() []dispatch.Action {
	return []dispatch.Action{
		{ID: "index", Handler: c.index},
	}
}

func (c *SiteController) index(ctx *dispatch.Context, _ dispatch.Args) (any, error) {
	return render(ctx, "index", "Home", nil), nil
}
