package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/session"
	"github.com/Skotchmaster/storefront/internal/service"
)

func (h *AccountHTTP) AddressForm(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.address_form")

	addrs, err := h.Svc.Addresses(ctx, session.FromContext(c).CustomerID)
	if err != nil {
		l.Error("list_addresses_error", "status", 500, "reason", "cannot load addresses", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load addresses")
	}
	return render(c, "endereco", map[string]any{"addresses": addrs})
}

func (h *AccountHTTP) AddAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.add_address")

	addr, err := h.Svc.AddAddress(ctx, session.FromContext(c).CustomerID, service.AddressInput{
		Street:     c.FormValue("rua"),
		Number:     c.FormValue("numero"),
		Complement: c.FormValue("complemento"),
		District:   c.FormValue("bairro"),
		City:       c.FormValue("cidade"),
		State:      c.FormValue("estado"),
		PostalCode: c.FormValue("cep"),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("add_address_error", "status", 400, "reason", "invalid address", "error", err)
			addFlash(c, "error", "Erro ao salvar endereço: verifique os campos (UF com 2 letras, CEP com 8 dígitos).")
		case errors.Is(err, service.ErrNotFound):
			l.Warn("add_address_error", "status", 404, "reason", "customer not found", "error", err)
			addFlash(c, "error", "Erro ao salvar endereço: cliente não encontrado.")
		default:
			l.Error("add_address_error", "status", 500, "reason", "cannot save address", "error", err)
			addFlash(c, "error", "Erro ao salvar endereço.")
		}
		return redirect(c, "/adicionar-endereco")
	}

	l.Info("add_address_success", "address_id", addr.ID)
	addFlash(c, "success", "Endereço salvo com sucesso!")
	return redirect(c, "/carrinho")
}
