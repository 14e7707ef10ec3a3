package httpserver

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/session"
	"github.com/Skotchmaster/storefront/internal/service"
)

const checkoutPath = "/finalizar-pedido"

type AccountHTTP struct {
	Svc      *service.AccountService
	Sessions *session.Manager
}

func (h *AccountHTTP) RegisterForm(c echo.Context) error {
	return render(c, "cadastro", nil)
}

func (h *AccountHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.register")

	customer, err := h.Svc.Register(ctx, service.RegisterInput{
		Name:       c.FormValue("nome"),
		Email:      c.FormValue("email"),
		NationalID: c.FormValue("cpf"),
		Password:   c.FormValue("senha"),
		Phone:      c.FormValue("telefone"),
	})
	if err != nil {
		var msg string
		switch {
		case errors.Is(err, service.ErrValidation):
			msg = "Erro: Todos os campos (exceto telefone) são obrigatórios."
		case errors.Is(err, service.ErrEmailTaken):
			msg = "Este email já está em uso."
		case errors.Is(err, service.ErrNationalIDTaken):
			msg = "Este CPF já está em uso."
		case errors.Is(err, service.ErrConflict):
			msg = "Email ou CPF já está em uso."
		default:
			l.Error("register_error", "status", 500, "reason", "cannot create customer", "error", err)
			addFlash(c, "error", "Erro ao cadastrar. Tente novamente.")
			return redirect(c, "/cadastro")
		}
		l.Warn("register_error", "status", 400, "reason", msg, "error", err)
		addFlash(c, "error", msg)
		return redirect(c, "/cadastro")
	}

	l.Info("register_success", "customer_id", customer.ID)
	addFlash(c, "success", "Conta criada com sucesso! Faça o login.")
	return redirect(c, "/login")
}

func (h *AccountHTTP) LoginForm(c echo.Context) error {
	if session.FromContext(c).LoggedIn() {
		return redirect(c, "/")
	}
	return render(c, "login", map[string]any{"next": c.QueryParam("next")})
}

func (h *AccountHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.login")

	if session.FromContext(c).LoggedIn() {
		return redirect(c, "/")
	}

	next := c.FormValue("next")
	back := "/login"
	if next != "" {
		back = loginURL(next)
	}

	customer, err := h.Svc.Authenticate(ctx, c.FormValue("email"), c.FormValue("senha"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("login_error", "status", 400, "reason", "missing credentials")
			addFlash(c, "error", "Email e senha são obrigatórios.")
		case errors.Is(err, service.ErrInvalidCredentials):
			l.Warn("login_error", "status", 401, "reason", "invalid credentials")
			addFlash(c, "error", "Email ou senha inválidos.")
		default:
			l.Error("login_error", "status", 500, "reason", "cannot authenticate", "error", err)
			addFlash(c, "error", "Erro ao efetuar login. Tente novamente.")
		}
		return redirect(c, back)
	}

	if err := h.Sessions.Login(c, customer.ID, customer.Name); err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot write session", "error", err)
		addFlash(c, "error", "Erro ao efetuar login. Tente novamente.")
		return redirect(c, back)
	}

	l.Info("login_success", "customer_id", customer.ID)
	addFlash(c, "success", "Login efetuado com sucesso!")
	return redirect(c, afterLogin(next))
}

// afterLogin picks the landing page. A login forced by checkout goes to the cart
// so the customer can review it before confirming.
func afterLogin(next string) string {
	if next == checkoutPath {
		return "/carrinho"
	}
	if p, ok := localPath(next); ok {
		return p
	}
	return "/"
}

func (h *AccountHTTP) Logout(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "account.logout")

	if err := h.Sessions.Logout(c); err != nil {
		l.Error("logout_error", "status", 500, "reason", "cannot write session", "error", err)
	}
	addFlash(c, "success", "Você saiu da sua conta.")
	return redirect(c, "/login")
}
