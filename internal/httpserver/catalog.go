package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) Index(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.index")

	pageParam, sizeParam := c.QueryParam("page"), c.QueryParam("size")
	if pageParam == "" && sizeParam == "" {
		products, err := h.Svc.ListProducts(ctx)
		if err != nil {
			l.Error("list_products_error", "status", 500, "reason", "cannot load products", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot load products")
		}
		return render(c, "home", map[string]any{"products": products})
	}

	page := util.ParseIntDefault(pageParam, 1)
	size := util.ParseIntDefault(sizeParam, util.DefaultPageSize)
	res, err := h.Svc.ListProductsPage(ctx, page, size)
	if err != nil {
		l.Error("list_products_error", "status", 500, "reason", "cannot load products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load products")
	}
	return render(c, "home", map[string]any{"products": res.Items, "meta": res.Meta})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		l.Warn("get_product_error", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	product, err := h.Svc.GetProduct(ctx, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_product_error", "status", 404, "reason", "product not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("get_product_error", "status", 500, "reason", "cannot get product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}

	return render(c, "produto", map[string]any{"product": product})
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search")

	q := c.QueryParam("q")
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	res, err := h.Svc.SearchProducts(ctx, q, page, size)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSearchUnavailable):
			l.Warn("search_error", "status", 503, "reason", "search is not configured")
			return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not available")
		case errors.Is(err, service.ErrValidation):
			l.Warn("search_error", "status", 400, "reason", "empty query", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "query is required")
		default:
			l.Error("search_error", "status", 500, "reason", "search failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
		}
	}

	return render(c, "busca", map[string]any{"query": q, "products": res.Items, "meta": res.Meta})
}

func (h *CatalogHTTP) About(c echo.Context) error {
	return render(c, "historia", nil)
}

func (h *CatalogHTTP) Subscriptions(c echo.Context) error {
	addFlash(c, "info", "Em breve...")
	return redirect(c, "/")
}
