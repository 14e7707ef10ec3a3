package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/session"
)

type Deps struct {
	CatalogHandler  *CatalogHTTP
	CartHandler     *CartHTTP
	AccountHandler  *AccountHTTP
	CheckoutHandler *CheckoutHTTP
	OrderHandler    *OrderHTTP
	Sessions        *session.Manager
	DB              *gorm.DB
	CookieSecure    bool
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context(), d.DB); err != nil {
			logging.FromContext(c.Request().Context()).Error("ready_check_failed", "status", 503, "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	site := e.Group("",
		d.Sessions.Middleware(),
		echomw.CSRFWithConfig(echomw.CSRFConfig{
			TokenLookup:    "header:" + echo.HeaderXCSRFToken + ",form:csrf_token",
			CookieName:     "_csrf",
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSecure:   d.CookieSecure,
			CookieSameSite: http.SameSiteLaxMode,
		}),
	)

	site.GET("/", d.CatalogHandler.Index)
	site.GET("/produto/:id", d.CatalogHandler.GetProduct)
	site.GET("/busca", d.CatalogHandler.Search)
	site.GET("/nossa-historia", d.CatalogHandler.About)
	site.GET("/assinaturas", d.CatalogHandler.Subscriptions)

	site.POST("/adicionar-ao-carrinho", d.CartHandler.AddToCart)
	site.GET("/carrinho", d.CartHandler.ViewCart)

	site.GET("/cadastro", d.AccountHandler.RegisterForm)
	site.POST("/cadastro", d.AccountHandler.Register)
	site.GET("/login", d.AccountHandler.LoginForm)
	site.POST("/login", d.AccountHandler.Login)
	site.GET("/logout", d.AccountHandler.Logout)

	site.POST(checkoutPath, d.CheckoutHandler.Checkout)

	member := site.Group("", requireLogin)
	member.GET("/adicionar-endereco", d.AccountHandler.AddressForm)
	member.POST("/adicionar-endereco", d.AccountHandler.AddAddress)
	member.GET("/meus-pedidos", d.OrderHandler.ListOrders)
}
