package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/dbtest"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/middleware/session"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
)

const csrfToken = "test-csrf-token"

type testEnv struct {
	t        *testing.T
	e        *echo.Echo
	db       *gorm.DB
	carts    *cart.MemoryStore
	sessions *session.Manager
	account  *service.AccountService
	cartH    *CartHTTP
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := dbtest.New(t)
	r := &repo.GormRepo{DB: db}
	rec := &events.Recorder{}
	carts := cart.NewMemoryStore()
	sessions := session.NewManager([]byte("test-session-secret"), false)

	account := &service.AccountService{Repo: r, Events: rec}
	catalog := &service.CatalogService{Repo: r}
	cartH := &CartHTTP{Catalog: catalog, Carts: carts}

	e := echo.New()
	Register(e, &Deps{
		CatalogHandler:  &CatalogHTTP{Svc: catalog},
		CartHandler:     cartH,
		AccountHandler:  &AccountHTTP{Svc: account, Sessions: sessions},
		CheckoutHandler: &CheckoutHTTP{Svc: &service.CheckoutService{Repo: r, Events: rec}, Carts: carts},
		OrderHandler:    &OrderHTTP{Svc: &service.OrderService{Repo: r}},
		Sessions:        sessions,
		DB:              db,
	})

	return &testEnv{t: t, e: e, db: db, carts: carts, sessions: sessions, account: account, cartH: cartH}
}

// do sends a request through the full router. POSTs carry a valid CSRF pair.
func (env *testEnv) do(method, path string, form url.Values, sess *session.Session, extra ...*http.Cookie) *httptest.ResponseRecorder {
	env.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if method == http.MethodPost {
		req.AddCookie(&http.Cookie{Name: "_csrf", Value: csrfToken})
		req.Header.Set(echo.HeaderXCSRFToken, csrfToken)
	}
	if sess != nil {
		token, err := session.Sign(sess, env.sessions.Secret)
		require.NoError(env.t, err)
		req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: token})
	}
	for _, ck := range extra {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) product(name, price string) models.Product {
	env.t.Helper()
	p := models.Product{Name: name, Price: decimal.RequireFromString(price)}
	require.NoError(env.t, env.db.Create(&p).Error)
	return p
}

func (env *testEnv) customer(withAddress bool) *session.Session {
	env.t.Helper()
	ctx := context.Background()
	c, err := env.account.Register(ctx, service.RegisterInput{
		Name: "Ana", Email: "ana@example.com", NationalID: "12345678900", Password: "secret",
	})
	require.NoError(env.t, err)
	if withAddress {
		_, err := env.account.AddAddress(ctx, c.ID, service.AddressInput{
			Street: "Rua A", Number: "1", District: "Centro", City: "Recife", State: "PE", PostalCode: "50000000",
		})
		require.NoError(env.t, err)
	}
	return &session.Session{ID: "sid-" + strconv.FormatUint(uint64(c.ID), 10), CustomerID: c.ID, CustomerName: c.Name}
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) View {
	t.Helper()
	var v View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func idStr(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/live", nil, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/ready", nil, nil).Code)
}

func TestIndex_ListsProducts(t *testing.T) {
	env := newTestEnv(t)
	env.product("A", "10.00")
	env.product("B", "5.00")

	rec := env.do(http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	v := decodeView(t, rec)
	assert.Equal(t, "home", v.Template)
	assert.NotEmpty(t, v.CSRFToken)
	data := v.Data.(map[string]any)
	assert.Len(t, data["products"], 2)
	assert.NotNil(t, cookieByName(rec, session.DefaultCookieName), "first visit starts a session")
}

func TestIndex_Paged(t *testing.T) {
	env := newTestEnv(t)
	for _, n := range []string{"a", "b", "c"} {
		env.product(n, "1.00")
	}

	rec := env.do(http.MethodGet, "/?page=2&size=2", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeView(t, rec).Data.(map[string]any)
	assert.Len(t, data["products"], 1)
	meta := data["meta"].(map[string]any)
	assert.EqualValues(t, 3, meta["total"])
	assert.Equal(t, true, meta["has_prev"])
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)
	p := env.product("Café", "24.90")

	rec := env.do(http.MethodGet, "/produto/"+idStr(p.ID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeView(t, rec).Data.(map[string]any)
	assert.Equal(t, "Café", data["product"].(map[string]any)["name"])

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/produto/abc", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/produto/999", nil, nil).Code)
}

func TestGetProduct_Direct(t *testing.T) {
	env := newTestEnv(t)
	p := env.product("Chá", "5.00")
	h := &CatalogHTTP{Svc: &service.CatalogService{Repo: &repo.GormRepo{DB: env.db}}}

	rec := httptest.NewRecorder()
	c := env.e.NewContext(httptest.NewRequest(http.MethodGet, "/produto/"+idStr(p.ID), nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(idStr(p.ID))

	require.NoError(t, h.GetProduct(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "produto", decodeView(t, rec).Template)
}

func TestAddToCart_MergesQuantities(t *testing.T) {
	env := newTestEnv(t)
	p := env.product("A", "10.00")
	sess := &session.Session{ID: "anon-1"}

	rec := env.do(http.MethodPost, "/adicionar-ao-carrinho", url.Values{"produto_id": {idStr(p.ID)}, "quantidade": {"2"}}, sess)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	rec = env.do(http.MethodPost, "/adicionar-ao-carrinho", url.Values{"produto_id": {idStr(p.ID)}, "quantidade": {"3"}, "action": {"buy_now"}}, sess)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/carrinho", rec.Header().Get(echo.HeaderLocation))

	crt, err := env.carts.Load(context.Background(), "anon-1")
	require.NoError(t, err)
	assert.Equal(t, 5, crt.Quantity(idStr(p.ID)))

	rec = env.do(http.MethodGet, "/carrinho", nil, sess)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeView(t, rec).Data.(map[string]any)
	assert.Len(t, data["lines"], 1)
	total, err := decimal.NewFromString(data["total"].(string))
	require.NoError(t, err)
	assert.Equal(t, "50.00", total.StringFixed(2))
}

func TestAddToCart_HugeQuantityStaysCheckoutable(t *testing.T) {
	env := newTestEnv(t)
	p := env.product("A", "1.00")
	sess := &session.Session{ID: "anon-big"}

	for _, q := range []string{"9223372036854775807", "1"} {
		rec := env.do(http.MethodPost, "/adicionar-ao-carrinho", url.Values{"produto_id": {idStr(p.ID)}, "quantidade": {q}}, sess)
		require.Equal(t, http.StatusSeeOther, rec.Code)
	}

	crt, err := env.carts.Load(context.Background(), "anon-big")
	require.NoError(t, err)
	assert.Equal(t, cart.MaxQuantity, crt.Quantity(idStr(p.ID)))

	rec := env.do(http.MethodGet, "/carrinho", nil, sess)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeView(t, rec).Data.(map[string]any)
	total, err := decimal.NewFromString(data["total"].(string))
	require.NoError(t, err)
	assert.Equal(t, "9999.00", total.StringFixed(2))
}

func TestAddToCart_DefaultsQuantityAndRedirectsBack(t *testing.T) {
	env := newTestEnv(t)
	p := env.product("A", "10.00")
	sess := &session.Session{ID: "anon-2"}

	req := httptest.NewRequest(http.MethodPost, "/adicionar-ao-carrinho", strings.NewReader(url.Values{"produto_id": {idStr(p.ID)}}.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set("Referer", "http://example.com/produto/"+idStr(p.ID))
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	require.NoError(t, env.sessions.Save(c, sess))

	require.NoError(t, env.cartH.AddToCart(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/produto/"+idStr(p.ID), rec.Header().Get(echo.HeaderLocation))

	crt, err := env.carts.Load(context.Background(), "anon-2")
	require.NoError(t, err)
	assert.Equal(t, 1, crt.Quantity(idStr(p.ID)))
}

func TestAddToCart_MissingProductID(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/adicionar-ao-carrinho", url.Values{"quantidade": {"2"}}, &session.Session{ID: "anon-3"})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	flash := cookieByName(rec, flashCookie)
	require.NotNil(t, flash)

	crt, err := env.carts.Load(context.Background(), "anon-3")
	require.NoError(t, err)
	assert.True(t, crt.IsEmpty())
}

func TestPost_RequiresCSRFToken(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/adicionar-ao-carrinho", strings.NewReader("produto_id=1"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	assert.GreaterOrEqual(t, rec.Code, 400)
	assert.Less(t, rec.Code, 500)
}

func TestFlash_ShownOnce(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/assinaturas", nil, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	flash := cookieByName(rec, flashCookie)
	require.NotNil(t, flash)

	rec = env.do(http.MethodGet, "/nossa-historia", nil, nil, flash)
	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeView(t, rec)
	require.Len(t, v.Flashes, 1)
	assert.Equal(t, "Em breve...", v.Flashes[0].Message)
	assert.Equal(t, "info", v.Flashes[0].Category)

	expired := cookieByName(rec, flashCookie)
	require.NotNil(t, expired)
	assert.Less(t, expired.MaxAge, 0)
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	form := url.Values{"nome": {"Ana"}, "email": {"ana@example.com"}, "cpf": {"123.456.789-00"}, "senha": {"secret"}}

	rec := env.do(http.MethodPost, "/cadastro", form, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	rec = env.do(http.MethodPost, "/cadastro", form, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/cadastro", rec.Header().Get(echo.HeaderLocation))

	var n int64
	require.NoError(t, env.db.Model(&models.Customer{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestLogin_NextCheckoutGoesToCart(t *testing.T) {
	env := newTestEnv(t)
	env.customer(false)

	rec := env.do(http.MethodPost, "/login", url.Values{
		"email": {"ana@example.com"}, "senha": {"secret"}, "next": {"/finalizar-pedido"},
	}, &session.Session{ID: "anon-9"})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/carrinho", rec.Header().Get(echo.HeaderLocation))

	ck := cookieByName(rec, session.DefaultCookieName)
	require.NotNil(t, ck)
	sess, err := session.Parse(ck.Value, env.sessions.Secret)
	require.NoError(t, err)
	assert.True(t, sess.LoggedIn())
	assert.Equal(t, "anon-9", sess.ID, "the cart session survives login")
}

func TestLogin_Failure(t *testing.T) {
	env := newTestEnv(t)
	env.customer(false)

	rec := env.do(http.MethodPost, "/login", url.Values{
		"email": {"ana@example.com"}, "senha": {"wrong"}, "next": {"/meus-pedidos"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fmeus-pedidos", rec.Header().Get(echo.HeaderLocation))
	require.NotNil(t, cookieByName(rec, flashCookie))
}

func TestLoginForm_BouncesLoggedInUser(t *testing.T) {
	env := newTestEnv(t)
	sess := env.customer(false)

	rec := env.do(http.MethodGet, "/login", nil, sess)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	rec = env.do(http.MethodGet, "/login?next=/meus-pedidos", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/meus-pedidos", decodeView(t, rec).Data.(map[string]any)["next"])
}

func TestLogout_KeepsCart(t *testing.T) {
	env := newTestEnv(t)
	sess := env.customer(false)
	crt := cart.New()
	crt.Add("1", 1)
	require.NoError(t, env.carts.Save(context.Background(), sess.ID, crt))

	rec := env.do(http.MethodGet, "/logout", nil, sess)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	ck := cookieByName(rec, session.DefaultCookieName)
	require.NotNil(t, ck)
	after, err := session.Parse(ck.Value, env.sessions.Secret)
	require.NoError(t, err)
	assert.False(t, after.LoggedIn())
	assert.Equal(t, sess.ID, after.ID)

	kept, err := env.carts.Load(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.False(t, kept.IsEmpty())
}

func TestMemberPages_RequireLogin(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/meus-pedidos", "/adicionar-endereco"} {
		rec := env.do(http.MethodGet, path, nil, nil)
		require.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, loginURL(path), rec.Header().Get(echo.HeaderLocation))
	}
}

func TestAddAddress(t *testing.T) {
	env := newTestEnv(t)
	sess := env.customer(false)

	rec := env.do(http.MethodPost, "/adicionar-endereco", url.Values{
		"rua": {"Rua A"}, "numero": {"1"}, "bairro": {"Centro"}, "cidade": {"Recife"}, "estado": {"pe"}, "cep": {"50000-000"},
	}, sess)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/carrinho", rec.Header().Get(echo.HeaderLocation))

	rec = env.do(http.MethodPost, "/adicionar-endereco", url.Values{"rua": {"Rua B"}}, sess)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/adicionar-endereco", rec.Header().Get(echo.HeaderLocation))

	rec = env.do(http.MethodGet, "/adicionar-endereco", nil, sess)
	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeView(t, rec)
	require.NotNil(t, v.Customer)
	addrs := v.Data.(map[string]any)["addresses"].([]any)
	require.Len(t, addrs, 1)
	assert.Equal(t, "PE", addrs[0].(map[string]any)["state"])
}

func TestCheckout_Anonymous(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/finalizar-pedido", url.Values{}, &session.Session{ID: "anon"})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Ffinalizar-pedido", rec.Header().Get(echo.HeaderLocation))
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := newTestEnv(t)
	sess := env.customer(true)

	rec := env.do(http.MethodPost, "/finalizar-pedido", url.Values{}, sess)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/carrinho", rec.Header().Get(echo.HeaderLocation))
}

func TestCheckout_NoAddressKeepsCart(t *testing.T) {
	env := newTestEnv(t)
	sess := env.customer(false)
	p := env.product("A", "10.00")
	crt := cart.New()
	crt.Add(idStr(p.ID), 2)
	require.NoError(t, env.carts.Save(context.Background(), sess.ID, crt))

	rec := env.do(http.MethodPost, "/finalizar-pedido", url.Values{}, sess)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/adicionar-endereco", rec.Header().Get(echo.HeaderLocation))

	kept, err := env.carts.Load(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, kept.Quantity(idStr(p.ID)))

	var n int64
	require.NoError(t, env.db.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCheckout_PlacesOrderAndClearsCart(t *testing.T) {
	env := newTestEnv(t)
	sess := env.customer(true)
	a := env.product("A", "10.00")
	b := env.product("B", "5.00")
	crt := cart.New()
	crt.Add(idStr(a.ID), 2)
	crt.Add(idStr(b.ID), 1)
	require.NoError(t, env.carts.Save(context.Background(), sess.ID, crt))

	rec := env.do(http.MethodPost, "/finalizar-pedido", url.Values{}, sess)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/meus-pedidos", rec.Header().Get(echo.HeaderLocation))

	after, err := env.carts.Load(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.True(t, after.IsEmpty())

	rec = env.do(http.MethodGet, "/meus-pedidos", nil, sess)
	require.Equal(t, http.StatusOK, rec.Code)
	orders := decodeView(t, rec).Data.(map[string]any)["orders"].([]any)
	require.Len(t, orders, 1)
	order := orders[0].(map[string]any)
	total, err := decimal.NewFromString(order["total"].(string))
	require.NoError(t, err)
	assert.Equal(t, "25.00", total.StringFixed(2))
	assert.Len(t, order["items"], 2)
	assert.Equal(t, models.OrderStatusProcessing, order["status"])
}

func TestSearch_Unavailable(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/busca?q=cafe", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAfterLogin(t *testing.T) {
	assert.Equal(t, "/carrinho", afterLogin("/finalizar-pedido"))
	assert.Equal(t, "/meus-pedidos", afterLogin("/meus-pedidos"))
	assert.Equal(t, "/", afterLogin(""))
	assert.Equal(t, "/", afterLogin("https://evil.example/"))
	assert.Equal(t, "/", afterLogin("//evil.example/x"))
}
