package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avolkov/streamtube/internal/search"
	"github.com/avolkov/streamtube/internal/service"
)

type SearchHTTP struct {
	Index *search.Index
}

func (h *SearchHTTP) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return fmt.Errorf("%w: query is required", service.ErrValidation)
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := search.Paginate(page, size)

	total, users, err := h.Index.Search(c.Request().Context(), q, from, size)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, echo.Map{
		"total": total,
		"users": users,
	}, "search results")
}
