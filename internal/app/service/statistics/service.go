package statistics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/pkg/types"
)

type StatisticType string

const (
	// Admissions
	StatisticTypeDailyCheckinCount           StatisticType = "daily_checkin_count"
	StatisticTypeDailyMembershipCheckinCount StatisticType = "daily_membership_checkin_count"
	StatisticTypeDailyAdmissionCents         StatisticType = "daily_admission_cents"

	// Visits
	StatisticTypeDailyVisitCount   StatisticType = "daily_visit_count"
	StatisticTypeDailyRevenueCents StatisticType = "daily_revenue_cents"

	// Memberships
	StatisticTypeDailyNewMembershipCount     StatisticType = "daily_new_membership_count"
	StatisticTypeTotalActiveMembershipCount StatisticType = "total_active_membership_count"
)

var statisticTypes = []StatisticType{
	StatisticTypeDailyCheckinCount,
	StatisticTypeDailyMembershipCheckinCount,
	StatisticTypeDailyAdmissionCents,
	StatisticTypeDailyVisitCount,
	StatisticTypeDailyRevenueCents,
	StatisticTypeDailyNewMembershipCount,
	StatisticTypeTotalActiveMembershipCount,
}

// StatisticFilterType is a column a statistic request may filter on.
type StatisticFilterType string

const (
	StatisticFilterTypeCreatedAt         StatisticFilterType = "created_at"
	StatisticFilterTypeSource            StatisticFilterType = "source"
	StatisticFilterTypeMembershipApplied StatisticFilterType = "membership_applied"
	StatisticFilterTypePaymentMethod     StatisticFilterType = "payment_method"
)

var checkinStatistics = []StatisticType{
	StatisticTypeDailyCheckinCount,
	StatisticTypeDailyMembershipCheckinCount,
	StatisticTypeDailyAdmissionCents,
}

// validFilters lists, per filter column, the statistics it narrows. A request
// filtering on a column a statistic does not have yields no data for it.
var validFilters = map[StatisticFilterType][]StatisticType{
	StatisticFilterTypeCreatedAt:         statisticTypes,
	StatisticFilterTypeSource:            checkinStatistics,
	StatisticFilterTypeMembershipApplied: checkinStatistics,
	StatisticFilterTypePaymentMethod:     {StatisticTypeDailyVisitCount, StatisticTypeDailyRevenueCents},
}

type StatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type StatisticRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	DataItems []*StatisticDataItem  `json:"data_items"`
}

// Validate rejects unknown statistics and filters outside the allowlist.
func (r *StatisticRequest) Validate() error {
	if r == nil || len(r.DataItems) == 0 {
		return fmt.Errorf("data_items required")
	}
	for _, di := range r.DataItems {
		if di == nil || !lo.Contains(statisticTypes, di.ID) {
			return fmt.Errorf("invalid data item id: %v", lo.FromPtr(di).ID)
		}
	}
	allowed := lo.MapEntries(validFilters, func(k StatisticFilterType, _ []StatisticType) (string, bool) {
		return string(k), true
	})
	for _, f := range r.Filters {
		if err := f.Validate(allowed); err != nil {
			return err
		}
	}
	return nil
}

// applies reports whether every filter of the request exists on the statistic.
func (r *StatisticRequest) applies(statisticType StatisticType) bool {
	for _, f := range r.Filters {
		if !lo.Contains(validFilters[StatisticFilterType(f.Field)], statisticType) {
			return false
		}
	}
	return true
}

func (r *StatisticRequest) Build(builder clause.Builder) {
	types.Filters(r.Filters).Build(builder)
}

type StatisticResponseDataItem struct {
	Date  string `json:"date"`
	Label string `json:"label,omitempty"`
	Value int64  `json:"value"`
}

type StatisticResponse struct {
	DataItems map[StatisticType][]StatisticResponseDataItem `json:"data_items"`
}

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Service { return &Service{db: db, now: time.Now} }

// day renders a timestamp column as YYYY-MM-DD (UTC, as stored).
func (s *Service) day(column string) string {
	if s.db.Dialector.Name() == "sqlite" {
		return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s)", column)
	}
	return fmt.Sprintf("TO_CHAR(%s, 'YYYY-MM-DD')", column)
}

func (s *Service) getDailyCheckins(ctx context.Context, request *StatisticRequest, value string, scope func(*gorm.DB) *gorm.DB) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	day := s.day("created_at")
	q := s.db.WithContext(ctx).Table(models.Checkin{}.TableName()).
		Select(day + " as date, " + value + " as value").
		Where(request).
		Scopes(scope).
		Group(day).
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func noScope(db *gorm.DB) *gorm.DB { return db }

func (s *Service) getDailyVisitCount(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	day := s.day("created_at")
	q := s.db.WithContext(ctx).Table(models.Visit{}.TableName()).
		Select(day + " as date, count(*) as value").
		Where(request).
		Group(day).
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// getDailyRevenue sums paid visits by the day they were closed, per payment method.
func (s *Service) getDailyRevenue(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	day := s.day("closed_at")
	q := s.db.WithContext(ctx).Table(models.Visit{}.TableName()).
		Select(day+" as date, COALESCE(payment_method, '') as label, COALESCE(SUM(subtotal_cents), 0) as value").
		Where("payment_status = ?", types.PaymentStatusPaid).
		Where(request).
		Group(day).
		Group("payment_method").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyNewMembershipCount(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	day := s.day("created_at")
	q := s.db.WithContext(ctx).Table(models.Membership{}.TableName()).
		Select(day + " as date, count(*) as value").
		Where(request).
		Group(day).
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getTotalActiveMembershipCount(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	now := s.now().UTC()
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Membership{}).
		Where(request).
		Where("status = ?", types.MembershipStatusActive).
		Where("(renews_at IS NULL OR renews_at > ?)", now).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	return []StatisticResponseDataItem{{Date: now.Format(time.DateOnly), Value: count}}, nil
}

func (s *Service) getStatistic(ctx context.Context, request *StatisticRequest, dataItem *StatisticDataItem) ([]StatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailyCheckinCount:
		return s.getDailyCheckins(ctx, request, "count(*)", noScope)
	case StatisticTypeDailyMembershipCheckinCount:
		return s.getDailyCheckins(ctx, request, "count(*)", func(db *gorm.DB) *gorm.DB {
			return db.Where("membership_applied = ?", true)
		})
	case StatisticTypeDailyAdmissionCents:
		return s.getDailyCheckins(ctx, request, "COALESCE(SUM(price_cents), 0)", noScope)
	case StatisticTypeDailyVisitCount:
		return s.getDailyVisitCount(ctx, request)
	case StatisticTypeDailyRevenueCents:
		return s.getDailyRevenue(ctx, request)
	case StatisticTypeDailyNewMembershipCount:
		return s.getDailyNewMembershipCount(ctx, request)
	case StatisticTypeTotalActiveMembershipCount:
		return s.getTotalActiveMembershipCount(ctx, request)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

// GetDailyStatistic computes every requested statistic concurrently.
func (s *Service) GetDailyStatistic(ctx context.Context, request *StatisticRequest) (*StatisticResponse, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []StatisticResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *StatisticDataItem) {
			defer wg.Done()
			if !request.applies(di.ID) {
				resChan <- &lo.Entry[StatisticType, []StatisticResponseDataItem]{Key: di.ID, Value: nil}
				return
			}
			res, err := s.getStatistic(ctx, request, di)
			if err != nil {
				errChan <- fmt.Errorf("%s: %w", di.ID, err)
				return
			}
			resChan <- &lo.Entry[StatisticType, []StatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	wg.Wait()
	close(errChan)
	close(resChan)

	if err := <-errChan; err != nil {
		return nil, err
	}
	results := make(map[StatisticType][]StatisticResponseDataItem, len(request.DataItems))
	for entry := range resChan {
		results[entry.Key] = entry.Value
	}
	return &StatisticResponse{DataItems: results}, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
