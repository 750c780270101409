package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/littlewanderers/frontdesk/internal/app/service/visit"
	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/pkg/apperr"
)

type VisitDesk interface {
	Scan(ctx context.Context, householdID string, checkinIDs []string) (*visit.ScanResult, error)
	Close(ctx context.Context, visitID, method string, ref *string) (*models.Visit, error)
}

type VisitCheckout interface {
	VisitCheckout(ctx context.Context, visitID string) (string, error)
}

type VisitScanRequest struct {
	HouseholdID string   `json:"household_id"`
	CheckinIDs  []string `json:"checkin_ids"`
}

type VisitCloseRequest struct {
	VisitID       string  `json:"visit_id"`
	PaymentMethod string  `json:"payment_method"`
	PaymentRef    *string `json:"payment_ref"`
}

type CheckoutURLResponse struct {
	URL string `json:"url"`
}

// textError writes the plain-text error body the desk screens expect.
func textError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.String(apperr.HTTPStatus(err), err.Error())
}

// @Summary      Scan check-ins into a visit
// @Description  Adds check-ins to the household's open visit, creating it if needed, and returns the recomputed subtotal.
// @Tags         Desk
// @Accept       json
// @Produce      json
// @Param        X-Staff-Key header string true "Staff device key"
// @Param        request body VisitScanRequest true "Household and check-ins"
// @Success      200  {object}  visit.ScanResult
// @Failure      400  {string}  string
// @Failure      500  {string}  string
// @Router       /api/v1/visits/scan [post]
func ApiVisitScan(desk VisitDesk) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VisitScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, "invalid json")
			return
		}
		res, err := desk.Scan(c.Request.Context(), req.HouseholdID, req.CheckinIDs)
		if err != nil {
			textError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// @Summary      Close a visit
// @Description  Marks the visit paid at the desk. Closing an already paid visit succeeds.
// @Tags         Desk
// @Accept       json
// @Produce      plain
// @Param        X-Staff-Key header string true "Staff device key"
// @Param        request body VisitCloseRequest true "Visit and payment"
// @Success      200  {string}  string "Visit closed"
// @Failure      400  {string}  string
// @Failure      404  {string}  string
// @Failure      500  {string}  string
// @Router       /api/v1/visits/close [post]
func ApiVisitClose(desk VisitDesk) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VisitCloseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, "invalid json")
			return
		}
		if _, err := desk.Close(c.Request.Context(), req.VisitID, req.PaymentMethod, req.PaymentRef); err != nil {
			textError(c, err)
			return
		}
		c.String(http.StatusOK, "Visit closed")
	}
}

// @Summary      Pay a visit online
// @Description  Creates a Square payment link for the open visit's subtotal.
// @Tags         Desk
// @Produce      json
// @Param        X-Staff-Key header string true "Staff device key"
// @Param        id path string true "Visit id"
// @Success      200  {object}  handlers.CheckoutURLResponse
// @Failure      400  {string}  string
// @Failure      404  {string}  string
// @Failure      500  {string}  string
// @Router       /api/v1/visits/{id}/checkout [post]
func ApiVisitCheckout(checkout VisitCheckout) gin.HandlerFunc {
	return func(c *gin.Context) {
		url, err := checkout.VisitCheckout(c.Request.Context(), c.Param("id"))
		if err != nil {
			textError(c, err)
			return
		}
		c.JSON(http.StatusOK, CheckoutURLResponse{URL: url})
	}
}
