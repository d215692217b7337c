package chart

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ehr/trialviz/internal/engine"
	"github.com/ehr/trialviz/internal/platform/auth"
	"github.com/ehr/trialviz/internal/provider"
	"github.com/ehr/trialviz/pkg/pagination"
)

type Handler struct {
	registry *Registry
	metadata *MetadataBuilder
}

func NewHandler(registry *Registry, metadata *MetadataBuilder) *Handler {
	return &Handler{registry: registry, metadata: metadata}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Read endpoints: admin, analyst, reviewer
	read := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleAnalyst, auth.RoleReviewer))
	read.GET("/metadata", h.GetMetadata)
	read.POST("/:domain/charts/:family", h.GetChart)
	read.POST("/:domain/charts/:family/selection", h.GetSelection)
	read.POST("/:domain/options", h.GetOptions)
	read.POST("/:domain/filters", h.GetFilters)
	read.POST("/:domain/details", h.GetDetails)
}

// httpError maps service errors onto HTTP statuses.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownDomain):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrUnsupportedFamily),
		errors.Is(err, ErrInvalidSettings),
		errors.Is(err, engine.ErrUnknownAttribute),
		errors.Is(err, engine.ErrInvalidFilter),
		errors.Is(err, engine.ErrInvalidCountType),
		errors.Is(err, engine.ErrInvalidReducer):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, provider.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// familyParam accepts "column-range" as well as "COLUMN_RANGE".
func familyParam(c echo.Context) engine.Family {
	return engine.Family(strings.ToUpper(strings.ReplaceAll(c.Param("family"), "-", "_")))
}

func (h *Handler) service(c echo.Context) (DomainService, error) {
	svc, err := h.registry.Get(c.Param("domain"))
	if err != nil {
		return nil, httpError(err)
	}
	return svc, nil
}

func (h *Handler) GetMetadata(c echo.Context) error {
	var datasets []string
	for _, d := range c.QueryParams()["dataset"] {
		for _, part := range strings.Split(d, ",") {
			if part = strings.TrimSpace(part); part != "" {
				datasets = append(datasets, part)
			}
		}
	}
	return c.JSON(http.StatusOK, h.metadata.Build(c.Request().Context(), datasets))
}

func (h *Handler) GetChart(c echo.Context) error {
	svc, err := h.service(c)
	if err != nil {
		return err
	}
	var req ChartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Family = familyParam(c)
	charts, err := svc.Chart(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, charts)
}

func (h *Handler) GetSelection(c echo.Context) error {
	svc, err := h.service(c)
	if err != nil {
		return err
	}
	var req SelectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Family = familyParam(c)
	detail, err := svc.Selection(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) GetOptions(c echo.Context) error {
	svc, err := h.service(c)
	if err != nil {
		return err
	}
	var req Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	opts, err := svc.Options(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, opts)
}

func (h *Handler) GetFilters(c echo.Context) error {
	svc, err := h.service(c)
	if err != nil {
		return err
	}
	var req Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	filters, err := svc.AvailableFilters(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, filters)
}

// GetDetails pages with limit/offset from the body, falling back to the
// query string.
func (h *Handler) GetDetails(c echo.Context) error {
	svc, err := h.service(c)
	if err != nil {
		return err
	}
	var req DetailsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Limit == 0 && req.Offset == 0 {
		pg := pagination.FromContext(c)
		req.Limit, req.Offset = pg.Limit, pg.Offset
	}
	resp, err := svc.Details(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}
