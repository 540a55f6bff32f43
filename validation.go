package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"bitbucket.org/mmdatafocus/factory_backend/workflow"
)

type validationCheckRequest struct {
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

type validationExceptionItem struct {
	OrderNo       string                   `json:"order_no"`
	ExceptionType models.ValidationResult  `json:"exception_type"`
	Worklogs      []models.EmployeeWorklog `json:"worklogs"`
}

type validationNormalItem struct {
	OrderNo  string                   `json:"order_no"`
	Worklogs []models.EmployeeWorklog `json:"worklogs"`
}

type validationCheckResponse struct {
	TotalProductionRecords int                       `json:"total_production_records"`
	TotalWorklogRecords    int                       `json:"total_worklog_records"`
	ExceptionCount         int                       `json:"exception_count"`
	NormalCount            int                       `json:"normal_count"`
	Exceptions             []validationExceptionItem `json:"exceptions"`
	Normal                 []validationNormalItem    `json:"normal"`
}

func validationCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		var req validationCheckRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": utils.ProcessValidationErrors(err)})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date and end_date are required"})
			return
		}

		result, err := workflow.ProcessValidationWorkflow(c.Request.Context(), config.GetDB(), logger, req.StartDate, req.EndDate)
		if err != nil {
			if errors.Is(err, workflow.ErrInvalidRange) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "validation failed"})
			return
		}

		resp := validationCheckResponse{
			TotalProductionRecords: result.TotalProduction,
			TotalWorklogRecords:    result.TotalWorklog,
			ExceptionCount:         result.ExceptionCount(),
			NormalCount:            result.NormalCount(),
			Exceptions:             make([]validationExceptionItem, 0, len(result.Exceptions)),
			Normal:                 make([]validationNormalItem, 0, len(result.Normal)),
		}
		for key, worklogs := range result.Exceptions {
			resp.Exceptions = append(resp.Exceptions, validationExceptionItem{
				OrderNo:       key.OrderNo,
				ExceptionType: key.Type,
				Worklogs:      worklogs,
			})
		}
		for orderNo, worklogs := range result.Normal {
			resp.Normal = append(resp.Normal, validationNormalItem{
				OrderNo:  orderNo,
				Worklogs: worklogs,
			})
		}

		c.JSON(http.StatusOK, resp)
	}
}
