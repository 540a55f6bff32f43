package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/models"
)

func pageParams(c *gin.Context) (int, int) {
	page := 1
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	pageSize := models.SearchLimitDefault
	if v := c.Query("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			pageSize = n
		}
	}
	return page, pageSize
}

func dateParam(c *gin.Context, name string) (*time.Time, bool) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, v, models.TZUTCPlus8); err == nil {
			return &t, true
		}
	}
	return nil, false
}

func listProductionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := pageParams(c)
		startDate, ok := dateParam(c, "start_date")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
			return
		}
		endDate, ok := dateParam(c, "end_date")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
			return
		}

		total, records, err := models.ListProductionInfos(c.Request.Context(), config.GetDB(), models.ProductionInfoQuery{
			OrderNo:   strings.TrimSpace(c.Query("order_no")),
			StartDate: startDate,
			EndDate:   endDate,
			Page:      page,
			PageSize:  pageSize,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"total":     total,
			"page":      page,
			"page_size": pageSize,
			"items":     records,
		})
	}
}

func productionByOrderNoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderNo := c.Param("order_no")

		var records []models.ProductionInfo
		err := config.GetDB().WithContext(c.Request.Context()).
			Where("order_no = ?", orderNo).
			Order("created_at DESC").
			Find(&records).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		if len(records) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"order_no": orderNo, "items": records})
	}
}

func listWorklogHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := pageParams(c)
		startDate, ok := dateParam(c, "start_date")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
			return
		}
		endDate, ok := dateParam(c, "end_date")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
			return
		}

		total, records, err := models.ListEmployeeWorklogs(c.Request.Context(), config.GetDB(), models.EmployeeWorklogQuery{
			OrderNo:    strings.TrimSpace(c.Query("order_no")),
			EmployeeId: strings.TrimSpace(c.Query("employee_id")),
			StartDate:  startDate,
			EndDate:    endDate,
			Page:       page,
			PageSize:   pageSize,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"total":     total,
			"page":      page,
			"page_size": pageSize,
			"items":     records,
		})
	}
}

func worklogByOrderNoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderNo := c.Param("order_no")

		records, err := models.EmployeeWorklogsByOrderNo(c.Request.Context(), config.GetDB(), orderNo)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		if len(records) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"order_no": orderNo, "items": records})
	}
}
