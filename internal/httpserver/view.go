package httpserver

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/middleware/session"
)

// View is the document every page handler returns. The HTML layer renders
// Template with Data and shows Flashes once.
type View struct {
	Template  string    `json:"template"`
	Customer  *ViewUser `json:"customer,omitempty"`
	Flashes   []Flash   `json:"flashes"`
	CSRFToken string    `json:"csrf_token,omitempty"`
	Data      any       `json:"data,omitempty"`
}

type ViewUser struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func render(c echo.Context, template string, data any) error {
	v := View{
		Template: template,
		Flashes:  takeFlashes(c),
		Data:     data,
	}
	if s := session.FromContext(c); s.LoggedIn() {
		v.Customer = &ViewUser{ID: s.CustomerID, Name: s.CustomerName}
	}
	if tok, ok := c.Get(echomw.DefaultCSRFConfig.ContextKey).(string); ok {
		v.CSRFToken = tok
	}
	return c.JSON(http.StatusOK, v)
}

func redirect(c echo.Context, to string) error {
	return c.Redirect(http.StatusSeeOther, to)
}

func loginURL(next string) string {
	return "/login?next=" + url.QueryEscape(next)
}

// localPath accepts only same-site paths such as "/carrinho". Anything with a
// scheme, a host or a protocol-relative prefix is refused.
func localPath(p string) (string, bool) {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "", false
	}
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	return u.RequestURI(), true
}

// backURL is the referring page when it is on this site, else "/".
func backURL(c echo.Context) string {
	ref := c.Request().Referer()
	if ref == "" {
		return "/"
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "/"
	}
	if u.Host != "" && !strings.EqualFold(u.Host, c.Request().Host) {
		return "/"
	}
	if p, ok := localPath(u.RequestURI()); ok {
		return p
	}
	return "/"
}

// requireLogin sends anonymous visitors to the login form, remembering where they were going.
func requireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !session.FromContext(c).LoggedIn() {
			addFlash(c, "error", "Você precisa estar logado para acessar esta página.")
			return redirect(c, loginURL(c.Request().URL.Path))
		}
		return next(c)
	}
}
