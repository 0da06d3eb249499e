package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-tasks-admin/internal/admin"
)

type indexResponse struct {
	Resources []admin.Description `json:"resources"`
}

func (h *handlerImpl) HandleIndex(c *gin.Context) {
	all := h.registry.All()
	response := indexResponse{
		Resources: make([]admin.Description, len(all)),
	}
	for i, reg := range all {
		response.Resources[i] = reg.Describe()
	}
	c.JSON(http.StatusOK, response)
}

const maxListLimit = 1000

var errInvalidLimit = errors.New("limit must be between 1 and 1000")

type listRecordsQuery struct {
	Offset uint32  `form:"offset"`
	Limit  *uint32 `form:"limit"`
}

type listRecordsResponse struct {
	Resource    string                       `json:"resource"`
	ListDisplay []string                     `json:"list_display"`
	Offset      uint32                       `json:"offset"`
	Limit       uint32                       `json:"limit"`
	Total       int64                        `json:"total"`
	Records     []map[string]json.RawMessage `json:"records"`
}

func (h *handlerImpl) HandleListRecords(c *gin.Context) {
	reg := registrationFromContext(c)

	var query listRecordsQuery
	err := c.ShouldBindQuery(&query)
	if err == nil && query.Limit != nil && (*query.Limit == 0 || *query.Limit > maxListLimit) {
		err = errInvalidLimit
	}
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind query")
		abort(c, newBadRequestError(errInvalidQuery.Error()))
		return
	}

	limit := reg.Options.ListPerPage
	if query.Limit != nil {
		limit = *query.Limit
	}

	records, err := reg.Resource.List(c, admin.Page{
		Offset: query.Offset,
		Limit:  limit,
	})
	if err != nil {
		h.abortWithResourceError(c, reg, err, "failed to list records")
		return
	}

	total, err := reg.Resource.Count(c)
	if err != nil {
		h.abortWithResourceError(c, reg, err, "failed to count records")
		return
	}

	response := listRecordsResponse{
		Resource:    reg.Resource.Name(),
		ListDisplay: reg.Options.ListDisplay,
		Offset:      query.Offset,
		Limit:       limit,
		Total:       total,
		Records:     make([]map[string]json.RawMessage, len(records)),
	}
	for i, record := range records {
		response.Records[i], err = reg.Project(record)
		if err != nil {
			h.abortWithResourceError(c, reg, err, "failed to project record")
			return
		}
	}
	h.logger.Debug().
		Str("resource", response.Resource).
		Int("count", len(records)).
		Int64("total", total).
		Msg("listed records")

	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleCreateRecord(c *gin.Context) {
	reg := registrationFromContext(c)

	body, err := c.GetRawData()
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to read request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	record, err := reg.Resource.Create(c, body)
	if err != nil {
		h.abortWithResourceError(c, reg, err, "failed to create record")
		return
	}

	h.logger.Info().
		Str("resource", reg.Resource.Name()).
		Msg("created record")
	c.JSON(http.StatusCreated, record)
}

func (h *handlerImpl) HandleGetRecord(c *gin.Context) {
	reg := registrationFromContext(c)

	record, err := reg.Resource.Get(c, c.Param("id"))
	if err != nil {
		h.abortWithResourceError(c, reg, err, "failed to get record")
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *handlerImpl) HandleUpdateRecord(c *gin.Context) {
	reg := registrationFromContext(c)
	id := c.Param("id")

	body, err := c.GetRawData()
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to read request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	record, err := reg.Resource.Update(c, id, body)
	if err != nil {
		h.abortWithResourceError(c, reg, err, "failed to update record")
		return
	}

	h.logger.Info().
		Str("resource", reg.Resource.Name()).
		Str("id", id).
		Msg("updated record")
	c.JSON(http.StatusOK, record)
}

func (h *handlerImpl) HandleDeleteRecord(c *gin.Context) {
	reg := registrationFromContext(c)
	id := c.Param("id")

	err := reg.Resource.Delete(c, id)
	if err != nil {
		h.abortWithResourceError(c, reg, err, "failed to delete record")
		return
	}

	h.logger.Info().
		Str("resource", reg.Resource.Name()).
		Str("id", id).
		Msg("deleted record")
	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlerImpl) abortWithResourceError(c *gin.Context, reg *admin.Registration, err error, msg string) {
	h.logger.Error().
		Err(err).
		Str("resource", reg.Resource.Name()).
		Msg(msg)

	switch {
	case errors.Is(err, admin.ErrRecordNotFound):
		abort(c, newNotFoundError(admin.ErrRecordNotFound.Error()))
	case errors.Is(err, admin.ErrInvalidRecord):
		abort(c, newBadRequestError(err.Error()))
	default:
		abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}
