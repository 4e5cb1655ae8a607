// Package echo provides the read-only JSON viewer API over the medicine
// store.
package echo

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fwojciec/meddict"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// DefaultLimit caps list responses when no limit is given.
const DefaultLimit = 20

// MaxLimit is the largest page size a client can request.
const MaxLimit = 100

// Server serves stored medicines over HTTP.
type Server struct {
	e *echo.Echo

	medicines meddict.MedicineService
	extractor meddict.Extractor
}

// NewServer creates a Server backed by the given store and extractor.
// The extractor is used by the validate endpoint to re-extract stored pages.
func NewServer(medicines meddict.MedicineService, extractor meddict.Extractor) *Server {
	s := &Server{
		e:         echo.New(),
		medicines: medicines,
		extractor: extractor,
	}
	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.Use(middleware.Recover())

	s.e.GET("/health", s.handleHealth)

	api := s.e.Group("/api")
	api.GET("/medicines", s.handleListMedicines)
	api.GET("/medicines/search", s.handleSearchMedicines)
	api.GET("/medicines/:id", s.handleGetMedicine)
	api.GET("/medicines/:id/validate", s.handleValidateMedicine)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

// Start listens on addr and serves until Shutdown is called.
func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListMedicines(c echo.Context) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return s.jsonError(c, err)
	}

	meds, total, err := s.medicines.FindMedicines(c.Request().Context(), filter)
	if err != nil {
		return s.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, newListResponse(meds, total, filter))
}

func (s *Server) handleSearchMedicines(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return s.jsonError(c, meddict.Errorf(meddict.EINVALID, "query parameter q required"))
	}

	filter, err := filterFromQuery(c)
	if err != nil {
		return s.jsonError(c, err)
	}
	filter.Name = &q

	meds, total, err := s.medicines.FindMedicines(c.Request().Context(), filter)
	if err != nil {
		return s.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, newListResponse(meds, total, filter))
}

func (s *Server) handleGetMedicine(c echo.Context) error {
	m, err := s.medicines.FindMedicineByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// handleValidateMedicine re-extracts the stored page and scores the fresh
// extraction against the stored record. A low score means the extractor and
// the stored data disagree, typically after an extractor change.
func (s *Server) handleValidateMedicine(c echo.Context) error {
	m, err := s.medicines.FindMedicineByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.jsonError(c, err)
	}
	if m.RawHTML == "" {
		return s.jsonError(c, meddict.Errorf(meddict.EINVALID, "medicine %s has no stored page to re-extract", m.ID))
	}

	rec, _ := s.extractor.Extract(m.RawHTML, m.URL)
	result, err := meddict.Score(rec, &m.Record, meddict.DefaultValidationFields())
	if err != nil {
		return s.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// filterFromQuery builds a MedicineFilter from the request's query
// parameters. Unknown parameters are ignored.
func filterFromQuery(c echo.Context) (meddict.MedicineFilter, error) {
	var filter meddict.MedicineFilter

	if v := c.QueryParam("category"); v != "" {
		filter.Category = &v
	}
	if v := c.QueryParam("company"); v != "" {
		filter.Company = &v
	}
	if v := c.QueryParam("name"); v != "" {
		filter.Name = &v
	}
	if v := c.QueryParam("minCompleteness"); v != "" {
		mc, err := strconv.ParseFloat(v, 64)
		if err != nil || mc < 0 || mc > 1 {
			return filter, meddict.Errorf(meddict.EINVALID, "minCompleteness must be a number between 0 and 1")
		}
		filter.MinCompleteness = &mc
	}

	filter.Limit = DefaultLimit
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return filter, meddict.Errorf(meddict.EINVALID, "limit must be a positive integer")
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}
		filter.Limit = limit
	}
	if v := c.QueryParam("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, meddict.Errorf(meddict.EINVALID, "offset must be a non-negative integer")
		}
		filter.Offset = offset
	}

	return filter, nil
}

// listResponse is the envelope for list endpoints.
type listResponse struct {
	Data []*meddict.Medicine `json:"data"`
	Meta listMeta            `json:"meta"`
}

type listMeta struct {
	Total  int `json:"total"`
	Count  int `json:"count"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func newListResponse(meds []*meddict.Medicine, total int, filter meddict.MedicineFilter) *listResponse {
	if meds == nil {
		meds = []*meddict.Medicine{}
	}
	return &listResponse{
		Data: meds,
		Meta: listMeta{
			Total:  total,
			Count:  len(meds),
			Limit:  filter.Limit,
			Offset: filter.Offset,
		},
	}
}

// errorResponse is the envelope for error replies.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// jsonError renders err with the HTTP status its application code maps to.
func (s *Server) jsonError(c echo.Context, err error) error {
	code := meddict.ErrorCode(err)
	return c.JSON(statusFromCode(code), &errorResponse{
		Error: errorDetail{Code: code, Message: meddict.ErrorMessage(err)},
	})
}

func statusFromCode(code string) int {
	switch code {
	case meddict.ENOTFOUND:
		return http.StatusNotFound
	case meddict.EINVALID:
		return http.StatusBadRequest
	case meddict.EUNAVAILABLE:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
