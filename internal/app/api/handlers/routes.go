package handlers

import (
	"github.com/gin-gonic/gin"
)

// DeskRoutes are the staff-authenticated front-desk endpoints.
type DeskRoutes struct {
	Checkins CheckinRecorder
	Visits   VisitDesk
	Checkout VisitCheckout
	Feed     gin.HandlerFunc
}

func RegisterDeskRoutes(r gin.IRouter, d DeskRoutes) {
	r.POST("/checkin", ApiCheckin(d.Checkins))
	r.POST("/visits/scan", ApiVisitScan(d.Visits))
	r.POST("/visits/close", ApiVisitClose(d.Visits))
	r.POST("/visits/:id/checkout", ApiVisitCheckout(d.Checkout))
	if d.Feed != nil {
		r.GET("/staff/feed", d.Feed)
	}
}

// PortalRoutes are the household owner's endpoints behind the portal JWT.
type PortalRoutes struct {
	Checkout    SubscriptionCheckout
	Households  HouseholdDirectory
	Memberships MembershipDesk
}

func RegisterPortalRoutes(r gin.IRouter, p PortalRoutes) {
	r.POST("/checkout/subscribe", ApiSubscribe(p.Checkout))
	r.GET("/membership", ApiGetMembership(p.Households, p.Memberships))
	r.POST("/membership/pause", ApiPauseMembership(p.Households, p.Memberships))
	r.GET("/household/people", ApiListPeople(p.Households))
	r.POST("/household/people", ApiAddPerson(p.Households))
	r.DELETE("/household/people/:id", ApiRemovePerson(p.Households))
	r.GET("/household/people/:id/qr", ApiPersonBadge(p.Households))
}

// AdminRoutes are reporting endpoints for staff.
type AdminRoutes struct {
	Checkins   CheckinLister
	Statistics StatisticsProvider
	Pricing    PricingReport
}

func RegisterAdminRoutes(r gin.IRouter, a AdminRoutes) {
	r.POST("/checkins", ApiListCheckins(a.Checkins))
	r.POST("/statistics", ApiGetStatistic(a.Statistics))
	r.GET("/pricing/gaps", ApiPricingGaps(a.Pricing))
}

func RegisterWebhookRoutes(r gin.IRouter, h WebhookReconciler) {
	r.POST("/square", ApiSquareWebhook(h))
}
