package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/littlewanderers/frontdesk/internal/app/service/pricing"
	"github.com/littlewanderers/frontdesk/internal/app/service/statistics"
	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/pkg/apperr"
	"github.com/littlewanderers/frontdesk/pkg/response"
	"github.com/littlewanderers/frontdesk/pkg/types"
)

type CheckinLister interface {
	List(ctx context.Context, filters types.Filters, limit, offset int) ([]models.Checkin, int64, error)
}

type StatisticsProvider interface {
	GetDailyStatistic(ctx context.Context, request *statistics.StatisticRequest) (*statistics.StatisticResponse, error)
}

type PricingReport interface {
	Gaps(ctx context.Context, now time.Time, maxMonths int) ([]pricing.Gap, error)
}

type ListCheckinsRequest struct {
	Filters []*types.CommonFilter `json:"filters"`
	From    int                   `json:"from"`
	Size    int                   `json:"size"`
}

type ListCheckinsResponse struct {
	Items []models.Checkin `json:"items"`
	Total int64            `json:"total"`
}

// @Summary      List check-ins (Admin)
// @Description  Retrieves a paginated and filterable list of check-ins, newest first.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        X-Staff-Key header string true "Staff device key"
// @Param        request body ListCheckinsRequest true "Filters and pagination"
// @Success      200  {object}  handlers.RespListCheckins
// @Router       /api/v1/admin/checkins [post]
func ApiListCheckins(lister CheckinLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListCheckinsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			envelopeError(c, apperr.Input(err.Error()))
			return
		}
		items, total, err := lister.List(c.Request.Context(), req.Filters, req.Size, req.From)
		if err != nil {
			envelopeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&ListCheckinsResponse{Items: items, Total: total}))
	}
}

// @Summary      Get statistics (Admin)
// @Description  Retrieves daily admission, visit and membership statistics.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        X-Staff-Key header string true "Staff device key"
// @Param        request body statistics.StatisticRequest true "Statistic request parameters"
// @Success      200  {object}  handlers.RespStatistic
// @Router       /api/v1/admin/statistics [post]
func ApiGetStatistic(stats StatisticsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.StatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			envelopeError(c, apperr.Input(err.Error()))
			return
		}
		if err := req.Validate(); err != nil {
			envelopeError(c, apperr.Input(err.Error()))
			return
		}
		res, err := stats.GetDailyStatistic(c.Request.Context(), &req)
		if err != nil {
			envelopeError(c, apperr.Dependency("statistics", err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Pricing catalog gaps (Admin)
// @Description  Lists role/age ranges no active pricing rule covers. Check-ins in these ranges fail with 422.
// @Tags         Admin
// @Produce      json
// @Param        X-Staff-Key header string true "Staff device key"
// @Param        max_months query int false "Age horizon in months"
// @Success      200  {object}  handlers.RespPricingGaps
// @Router       /api/v1/admin/pricing/gaps [get]
func ApiPricingGaps(report PricingReport) gin.HandlerFunc {
	return func(c *gin.Context) {
		maxMonths := pricing.DefaultGapHorizonMonths
		if v := c.Query("max_months"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				envelopeError(c, apperr.Input("invalid max_months"))
				return
			}
			maxMonths = n
		}
		gaps, err := report.Gaps(c.Request.Context(), time.Now(), maxMonths)
		if err != nil {
			envelopeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(gaps))
	}
}
