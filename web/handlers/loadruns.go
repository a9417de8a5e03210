package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"shiftinsight.com/shiftinsight/config"
	"shiftinsight.com/shiftinsight/web/common"
)

const defaultPageSize = 50

func (ep *Endpoint) List(c *gin.Context) {
	params := ListLoadRunsParams{Limit: defaultPageSize}
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	runs, total, err := ep.service.ListLoadRuns(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		config.LogError(ep.log, "handlers", "List", "list load runs", params, err)
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	items := make([]LoadRunDTO, 0, len(runs))
	for i := range runs {
		items = append(items, NewLoadRunDTO(&runs[i]))
	}
	c.JSON(http.StatusOK, common.NewSearchResponse(items, total, params.Limit, params.Offset))
}

func (ep *Endpoint) Get(c *gin.Context) {
	id := c.Param("id")
	if err := uuid.Validate(id); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid id"))
		return
	}

	run, err := ep.service.GetLoadRun(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Load run not found"))
		return
	}
	if err != nil {
		config.LogError(ep.log, "handlers", "Get", "get load run", id, err)
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(NewLoadRunDTO(run)))
}
