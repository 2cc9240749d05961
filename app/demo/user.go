package demo

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/oakframe/oak/core/auth"
	"github.com/oakframe/oak/core/dispatch"
	"github.com/oakframe/oak/core/response"
)

// UserController handles registration, login, logout, and the profile page.
type UserController struct {
	users    auth.Store
	remember time.Duration
}

// DefaultAction implements dispatch.Controller.
func (c *UserController) DefaultAction() string { return "login" }

// Actions implements dispatch.Controller.
func (c *UserController) Actions() []dispatch.Action {
	return []dispatch.Action{
		{ID: "login", Handler: c.login},
		{ID: "logout", Handler: c.logout},
		{ID: "register", Handler: c.register},
		{ID: "profile", Handler: c.profile},
	}
}

func (c *UserController) login(ctx *dispatch.Context, _ dispatch.Args) (any, error) {
	user := ctx.User()
	if !user.IsGuest() {
		ctx.Session().SetFlash("login-warning", "You are already logged in.", true)
		return response.Redirect("/?r=site/index"), nil
	}

	r := ctx.Request()
	if r.Method == http.MethodPost {
		email := strings.TrimSpace(r.PostFormValue("email"))
		password := r.PostFormValue("password")

		found, err := c.users.FindByCredentials(ctx, email, password)
		if err != nil {
			return nil, err
		}
		if found != nil {
			var remember time.Duration
			if r.PostFormValue("remember") != "" {
				remember = c.remember
			}
			user.Login(found, remember)
			ctx.Session().SetFlash("login-success", "Logged in successfully.", true)
			return response.Redirect("/?r=site/index"), nil
		}
		// the flash is drained into this same response, so the form page
		// shows the error without a redirect round-trip
		ctx.Session().SetFlash("login-danger", "Invalid email or password.", true)
	}

	return render(ctx, "login", "Log in", nil), nil
}

func (c *UserController) logout(ctx *dispatch.Context, _ dispatch.Args) (any, error) {
	user := ctx.User()
	if user.IsGuest() {
		ctx.Session().SetFlash("logout-warning", "You are not logged in.", true)
		return response.Redirect("/?r=site/index"), nil
	}

	// the destroyed session transparently reopens for the farewell flash
	if user.Logout(true) {
		ctx.Session().SetFlash("logout-success", "You have been logged out.", true)
	} else {
		ctx.Session().SetFlash("logout-danger", "Logout failed.", true)
	}
	return response.Redirect("/?r=site/index"), nil
}

func (c *UserController) register(ctx *dispatch.Context, _ dispatch.Args) (any, error) {
	user := ctx.User()
	if !user.IsGuest() {
		ctx.Session().SetFlash("register-warning", "You are already logged in.", true)
		return response.Redirect("/?r=site/index"), nil
	}

	r := ctx.Request()
	if r.Method == http.MethodPost {
		email := strings.TrimSpace(r.PostFormValue("email"))
		password := r.PostFormValue("password")
		repeat := r.PostFormValue("repeat_password")

		switch {
		case email == "" || password == "" || repeat == "":
			ctx.Session().SetFlash("register-danger", "Please fill in all fields.", true)
		case password != repeat:
			ctx.Session().SetFlash("register-danger", "Passwords do not match.", true)
		default:
			_, err := c.users.Insert(ctx, email, password)
			if err != nil {
				if errors.Is(err, auth.ErrIdentityExists) {
					ctx.Session().SetFlash("register-danger", "This email is already registered.", true)
					return response.Redirect("/?r=user/register"), nil
				}
				return nil, err
			}
			// no automatic login: the new account proves itself at the
			// login form first
			ctx.Session().SetFlash("register-success", "Your account has been created. Please log in.", true)
			return response.Redirect("/?r=user/login"), nil
		}
	}

	return render(ctx, "register", "Register", nil), nil
}

func (c *UserController) profile(ctx *dispatch.Context, _ dispatch.Args) (any, error) {
	user := ctx.User()
	if user.IsGuest() {
		ctx.Session().SetFlash("login-warning", "Please log in to view your profile.", true)
		return response.Redirect("/?r=user/login"), nil
	}

	apiToken := ""
	if u, ok := user.Identity().(interface{ APIToken() string }); ok {
		apiToken = u.APIToken()
	}
	return render(ctx, "profile", "Your profile", apiToken), nil
}
