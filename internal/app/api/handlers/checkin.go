package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/littlewanderers/frontdesk/internal/app/service/checkin"
	"github.com/littlewanderers/frontdesk/pkg/apperr"
)

type CheckinRecorder interface {
	Record(ctx context.Context, personID, source string) (*checkin.Result, error)
}

type CheckinRequest struct {
	PersonID string `json:"person_id"`
	Source   string `json:"source"`
}

// CheckinResponse is the desk's view of a scan. Error is set when OK is false.
type CheckinResponse struct {
	OK                bool       `json:"ok"`
	Error             string     `json:"error,omitempty"`
	CheckinID         string     `json:"checkin_id,omitempty"`
	MembershipApplied bool       `json:"membership_applied"`
	PriceCents        int64      `json:"price_cents"`
	FirstName         string     `json:"first_name,omitempty"`
	LastName          string     `json:"last_name,omitempty"`
	Birthdate         *time.Time `json:"birthdate,omitempty"`
}

// @Summary      Check in a person
// @Description  Prices one admission for the scanned person and records it. Members are admitted at 0.
// @Tags         Desk
// @Accept       json
// @Produce      json
// @Param        X-Staff-Key header string true "Staff device key"
// @Param        request body CheckinRequest true "Scanned person"
// @Success      200  {object}  handlers.CheckinResponse
// @Failure      400  {object}  handlers.CheckinResponse
// @Failure      404  {object}  handlers.CheckinResponse
// @Failure      422  {object}  handlers.CheckinResponse
// @Failure      500  {object}  handlers.CheckinResponse
// @Router       /api/v1/checkin [post]
func ApiCheckin(rec CheckinRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckinRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, CheckinResponse{Error: "invalid json"})
			return
		}
		res, err := rec.Record(c.Request.Context(), req.PersonID, req.Source)
		if err != nil {
			_ = c.Error(err)
			c.JSON(apperr.HTTPStatus(err), CheckinResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, CheckinResponse{
			OK:                true,
			CheckinID:         res.CheckinID,
			MembershipApplied: res.MembershipApplied,
			PriceCents:        res.PriceCents,
			FirstName:         res.FirstName,
			LastName:          res.LastName,
			Birthdate:         res.Birthdate,
		})
	}
}
