package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/session"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/util"
)

type CheckoutHTTP struct {
	Svc   *service.CheckoutService
	Carts cart.Store
}

func (h *CheckoutHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout")

	sess := session.FromContext(c)
	if !sess.LoggedIn() {
		addFlash(c, "error", "Você precisa estar logado para finalizar a compra.")
		return redirect(c, loginURL(checkoutPath))
	}

	crt, err := h.Carts.Load(ctx, sess.ID)
	if err != nil {
		l.Error("checkout_error", "status", 500, "reason", "cannot load cart", "error", err)
		addFlash(c, "error", "Erro ao finalizar o pedido.")
		return redirect(c, "/carrinho")
	}

	addressID := util.ParseIntDefault(c.FormValue("endereco_id"), 0)
	if addressID < 0 {
		addressID = 0
	}

	res := h.Svc.Checkout(ctx, service.CheckoutInput{
		CustomerID: sess.CustomerID,
		AddressID:  uint(addressID),
	}, crt)

	switch res.Kind {
	case service.CheckoutNotAuthenticated:
		addFlash(c, "error", "Você precisa estar logado para finalizar a compra.")
		return redirect(c, loginURL(checkoutPath))
	case service.CheckoutEmptyCart:
		addFlash(c, "error", "Seu carrinho está vazio.")
		return redirect(c, "/carrinho")
	case service.CheckoutAddressRequired:
		addFlash(c, "error", "Você precisa adicionar um endereço antes de finalizar o pedido.")
		return redirect(c, "/adicionar-endereco")
	case service.CheckoutAddressNotFound:
		l.Warn("checkout_error", "status", 404, "reason", "address does not belong to customer", "address_id", addressID)
		addFlash(c, "error", "Endereço não encontrado.")
		return redirect(c, "/carrinho")
	case service.CheckoutFailed:
		l.Error("checkout_error", "status", 500, "reason", "order not created", "error", res.Err)
		addFlash(c, "error", "Erro ao finalizar o pedido. Tente novamente.")
		return redirect(c, "/carrinho")
	}

	// The order is committed. A failure here only leaves stale items in the cart.
	if err := h.Carts.Save(ctx, sess.ID, crt); err != nil {
		l.Error("checkout_error", "reason", "order placed but cart not cleared", "order_id", res.Order.ID, "error", err)
	}

	addFlash(c, "success", "Pedido efetuado com sucesso!")
	return redirect(c, "/meus-pedidos")
}
