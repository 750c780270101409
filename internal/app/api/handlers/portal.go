package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/littlewanderers/frontdesk/internal/app/service/household"
	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/pkg/apperr"
	"github.com/littlewanderers/frontdesk/pkg/logctx"
	"github.com/littlewanderers/frontdesk/pkg/response"
	"github.com/littlewanderers/frontdesk/pkg/types"
)

type SubscriptionCheckout interface {
	Subscribe(ctx context.Context, userID, email string) (string, error)
}

type HouseholdDirectory interface {
	Ensure(ctx context.Context, ownerUserID string) (*models.Household, error)
	ForOwner(ctx context.Context, ownerUserID string) (*models.Household, error)
	People(ctx context.Context, householdID string) ([]models.Person, error)
	AddPerson(ctx context.Context, householdID string, in household.PersonInput) (*models.Person, error)
	RemovePerson(ctx context.Context, householdID, personID string) error
	Badge(ctx context.Context, householdID, personID string, size int) ([]byte, error)
}

type MembershipDesk interface {
	Get(ctx context.Context, owner types.MembershipOwner) (*models.Membership, error)
	Pause(ctx context.Context, householdID string) (*models.Membership, error)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MembershipStatusResponse struct {
	HouseholdID string                 `json:"household_id"`
	Status      types.MembershipStatus `json:"status"`
	Active      bool                   `json:"active"`
	RenewsAt    *time.Time             `json:"renews_at"`
}

// membershipNone is reported for households that never subscribed.
const membershipNone types.MembershipStatus = "none"

func envelopeError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(apperr.HTTPStatus(err), response.FromError(err))
}

// ownHousehold returns the newest household of the caller, mapping "none yet"
// to an input error.
func ownHousehold(c *gin.Context, dir HouseholdDirectory) (*models.Household, error) {
	hh, err := dir.ForOwner(c.Request.Context(), c.GetString(logctx.GinUserIDKey))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Input("no household")
	}
	return hh, err
}

// @Summary      Start membership checkout
// @Description  Creates a Square subscription checkout for the caller's household.
// @Tags         Portal
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.CheckoutURLResponse
// @Failure      400  {object}  handlers.ErrorResponse
// @Failure      401  {object}  handlers.ErrorResponse
// @Failure      500  {object}  handlers.ErrorResponse
// @Router       /api/v1/checkout/subscribe [post]
func ApiSubscribe(checkout SubscriptionCheckout) gin.HandlerFunc {
	return func(c *gin.Context) {
		url, err := checkout.Subscribe(c.Request.Context(), c.GetString(logctx.GinUserIDKey), c.GetString(logctx.GinEmailKey))
		if err != nil {
			_ = c.Error(err)
			c.JSON(apperr.HTTPStatus(err), ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, CheckoutURLResponse{URL: url})
	}
}

// @Summary      Get membership
// @Description  Returns the membership status of the caller's household.
// @Tags         Portal
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespMembershipStatus
// @Router       /api/v1/membership [get]
func ApiGetMembership(dir HouseholdDirectory, memberships MembershipDesk) gin.HandlerFunc {
	return func(c *gin.Context) {
		hh, err := ownHousehold(c, dir)
		if err != nil {
			envelopeError(c, err)
			return
		}
		out := MembershipStatusResponse{HouseholdID: hh.ID, Status: membershipNone}
		m, err := memberships.Get(c.Request.Context(), types.OwnedByHousehold(hh.ID))
		switch {
		case errors.Is(err, apperr.ErrNotFound):
		case err != nil:
			envelopeError(c, err)
			return
		default:
			out.Status = m.Status
			out.RenewsAt = m.RenewsAt
			out.Active = m.Active(time.Now())
		}
		c.JSON(http.StatusOK, response.OKT(out))
	}
}

// @Summary      Pause membership
// @Description  Pauses the caller's household membership. The renewal date is kept.
// @Tags         Portal
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespMembershipStatus
// @Router       /api/v1/membership/pause [post]
func ApiPauseMembership(dir HouseholdDirectory, memberships MembershipDesk) gin.HandlerFunc {
	return func(c *gin.Context) {
		hh, err := ownHousehold(c, dir)
		if err != nil {
			envelopeError(c, err)
			return
		}
		m, err := memberships.Pause(c.Request.Context(), hh.ID)
		if err != nil {
			envelopeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(MembershipStatusResponse{
			HouseholdID: hh.ID,
			Status:      m.Status,
			RenewsAt:    m.RenewsAt,
		}))
	}
}

// @Summary      List people
// @Description  Lists the people of the caller's household, creating the household on first use.
// @Tags         Portal
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespPeople
// @Router       /api/v1/household/people [get]
func ApiListPeople(dir HouseholdDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		hh, err := dir.Ensure(c.Request.Context(), c.GetString(logctx.GinUserIDKey))
		if err != nil {
			envelopeError(c, err)
			return
		}
		people, err := dir.People(c.Request.Context(), hh.ID)
		if err != nil {
			envelopeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(people))
	}
}

// @Summary      Add person
// @Description  Adds an adult or child to the caller's household.
// @Tags         Portal
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body household.PersonInput true "Person"
// @Success      200  {object}  handlers.RespPerson
// @Router       /api/v1/household/people [post]
func ApiAddPerson(dir HouseholdDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in household.PersonInput
		if err := c.ShouldBindJSON(&in); err != nil {
			envelopeError(c, apperr.Input("invalid json"))
			return
		}
		hh, err := dir.Ensure(c.Request.Context(), c.GetString(logctx.GinUserIDKey))
		if err != nil {
			envelopeError(c, err)
			return
		}
		p, err := dir.AddPerson(c.Request.Context(), hh.ID, in)
		if err != nil {
			envelopeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(p))
	}
}

// @Summary      Remove person
// @Tags         Portal
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Person id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/household/people/{id} [delete]
func ApiRemovePerson(dir HouseholdDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		hh, err := ownHousehold(c, dir)
		if err != nil {
			envelopeError(c, err)
			return
		}
		if err := dir.RemovePerson(c.Request.Context(), hh.ID, c.Param("id")); err != nil {
			envelopeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      Person QR badge
// @Description  PNG QR code encoding the person id, scanned at the desk.
// @Tags         Portal
// @Produce      png
// @Security     BearerAuth
// @Param        id path string true "Person id"
// @Param        size query int false "Edge length in pixels"
// @Success      200  {file}  binary
// @Router       /api/v1/household/people/{id}/qr [get]
func ApiPersonBadge(dir HouseholdDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		hh, err := ownHousehold(c, dir)
		if err != nil {
			envelopeError(c, err)
			return
		}
		size := household.DefaultBadgeSize
		if v := c.Query("size"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				envelopeError(c, apperr.Input("invalid size"))
				return
			}
			size = n
		}
		png, err := dir.Badge(c.Request.Context(), hh.ID, c.Param("id"), size)
		if err != nil {
			envelopeError(c, err)
			return
		}
		c.Header("Cache-Control", "private, max-age=86400")
		c.Data(http.StatusOK, "image/png", png)
	}
}
