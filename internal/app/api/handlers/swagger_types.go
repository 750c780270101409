package handlers

import (
	"github.com/littlewanderers/frontdesk/internal/app/service/pricing"
	"github.com/littlewanderers/frontdesk/internal/app/service/statistics"
	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespListCheckins wraps ListCheckinsResponse in the standard envelope.
type RespListCheckins struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ListCheckinsResponse     `json:"data"`
}

// RespStatistic wraps StatisticResponse in the standard envelope.
type RespStatistic struct {
	Code    response.APIResponseCode     `json:"code"`
	Message string                       `json:"message"`
	Data    statistics.StatisticResponse `json:"data"`
}

type RespPricingGaps struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []pricing.Gap            `json:"data"`
}

type RespMembershipStatus struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    MembershipStatusResponse `json:"data"`
}

type RespPeople struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.Person          `json:"data"`
}

type RespPerson struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Person            `json:"data"`
}
