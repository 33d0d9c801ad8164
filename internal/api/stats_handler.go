package api

import (
	"net/http"

	"gostat/app"
	"gostat/domain/dataset"
	"gostat/internal/errors"
	"gostat/internal/logging"

	"github.com/gin-gonic/gin"
)

var handlerLogger = logging.New("StatsHandler")

// StatsHandler serves filtered statistics for one resource
type StatsHandler struct {
	service *app.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(service *app.StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// GetStats treats every query parameter as a filter column. Repeating a
// parameter adds acceptable values for that column.
func (h *StatsHandler) GetStats(c *gin.Context) {
	spec := FilterSpecFromQuery(c.Request.URL.Query())

	summary, err := h.service.Query(c.Request.Context(), spec)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// FilterSpecFromQuery converts query parameters into a filter specification,
// keeping repeated values in request order
func FilterSpecFromQuery(query map[string][]string) dataset.FilterSpec {
	spec := make(dataset.FilterSpec, len(query))
	for key, values := range query {
		spec[key] = append([]string(nil), values...)
	}
	return spec
}

// respondError writes an error payload with the status mapped from its code
func respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	body := gin.H{"message": err.Error(), "code": errors.GetCode(err)}

	if appErr, ok := errors.As(err); ok {
		body["message"] = appErr.Message
		if appErr.Field != "" {
			body["column"] = appErr.Field
		}
	}
	if status >= http.StatusInternalServerError {
		handlerLogger.Error("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		body["message"] = "internal error"
	}

	c.AbortWithStatusJSON(status, body)
}
