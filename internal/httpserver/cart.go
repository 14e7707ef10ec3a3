package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/session"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/util"
)

type CartHTTP struct {
	Catalog *service.CatalogService
	Carts   cart.Store
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	productID := strings.TrimSpace(c.FormValue("produto_id"))
	if productID == "" {
		l.Warn("add_to_cart_error", "status", 400, "reason", "missing produto_id")
		addFlash(c, "error", "Erro: ID do produto não encontrado.")
		return redirect(c, backURL(c))
	}
	quantity := util.ParseIntDefault(c.FormValue("quantidade"), 1)
	if quantity > cart.MaxQuantity {
		quantity = cart.MaxQuantity
	}

	sid := session.FromContext(c).ID
	crt, err := h.Carts.Load(ctx, sid)
	if err != nil {
		l.Error("add_to_cart_error", "status", 500, "reason", "cannot load cart", "error", err)
		addFlash(c, "error", "Não foi possível atualizar a cesta.")
		return redirect(c, backURL(c))
	}

	crt.Add(productID, quantity)

	if err := h.Carts.Save(ctx, sid, crt); err != nil {
		l.Error("add_to_cart_error", "status", 500, "reason", "cannot save cart", "error", err)
		addFlash(c, "error", "Não foi possível atualizar a cesta.")
		return redirect(c, backURL(c))
	}

	l.Info("add_to_cart_success", "product_id", productID, "quantity", crt.Quantity(productID))
	addFlash(c, "success", "Produto adicionado à Cesta!")

	if c.FormValue("action") == "buy_now" {
		return redirect(c, "/carrinho")
	}
	return redirect(c, backURL(c))
}

func (h *CartHTTP) ViewCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.view")

	crt, err := h.Carts.Load(ctx, session.FromContext(c).ID)
	if err != nil {
		l.Error("view_cart_error", "status", 500, "reason", "cannot load cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load cart")
	}

	view, err := h.Catalog.ViewCart(ctx, crt)
	if err != nil {
		l.Error("view_cart_error", "status", 500, "reason", "cannot price cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load cart")
	}

	return render(c, "carrinho", view)
}
