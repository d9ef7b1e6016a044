// Package response renders the JSON envelope shared by every endpoint.
package response

import (
	"net/http"
	"strconv"

	"cargodesk/internal/services"

	"github.com/labstack/echo/v4"
)

type Envelope struct {
	Success    bool                 `json:"success"`
	Data       interface{}          `json:"data,omitempty"`
	Pagination *services.Pagination `json:"pagination,omitempty"`
	Error      *ErrorBody           `json:"error,omitempty"`
}

type ErrorBody struct {
	Message    string            `json:"message"`
	StatusCode int               `json:"statusCode"`
	Fields     map[string]string `json:"fields,omitempty"`
}

func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func Paginated(c echo.Context, data interface{}, p services.Pagination) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: &p})
}

func Fail(c echo.Context, status int, message string, fields map[string]string) error {
	return c.JSON(status, Envelope{Error: &ErrorBody{Message: message, StatusCode: status, Fields: fields}})
}

// PageFromQuery reads page and limit query parameters. Malformed values
// fall back to the defaults.
func PageFromQuery(c echo.Context) services.Page {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return services.NewPage(page, limit)
}
