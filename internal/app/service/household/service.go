package household

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/littlewanderers/frontdesk/internal/models"
	"github.com/littlewanderers/frontdesk/internal/repository"
	"github.com/littlewanderers/frontdesk/pkg/apperr"
	"github.com/littlewanderers/frontdesk/pkg/logctx"
	"github.com/littlewanderers/frontdesk/pkg/tool"
	"github.com/littlewanderers/frontdesk/pkg/types"
)

type Service struct {
	households repository.HouseholdRepository
	people     repository.PersonRepository
	log        *zap.SugaredLogger
}

func New(households repository.HouseholdRepository, people repository.PersonRepository, log *zap.SugaredLogger) *Service {
	return &Service{households: households, people: people, log: log}
}

// Ensure returns the caller's household, creating it on first use.
func (s *Service) Ensure(ctx context.Context, ownerUserID string) (*models.Household, error) {
	if ownerUserID == "" {
		return nil, apperr.Input("owner user id required")
	}
	h, err := s.households.Ensure(ctx, ownerUserID)
	if err != nil {
		return nil, apperr.Dependency("ensure household", err)
	}
	return h, nil
}

// ForOwner returns the newest household of the account without creating one.
func (s *Service) ForOwner(ctx context.Context, ownerUserID string) (*models.Household, error) {
	h, err := s.households.GetByOwner(ctx, ownerUserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("household")
	}
	if err != nil {
		return nil, apperr.Dependency("get household", err)
	}
	return h, nil
}

func (s *Service) People(ctx context.Context, householdID string) ([]models.Person, error) {
	people, err := s.people.ListByHousehold(ctx, householdID)
	if err != nil {
		return nil, apperr.Dependency("list people", err)
	}
	return people, nil
}

type PersonInput struct {
	Role      types.Role `json:"role"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	// Birthdate is YYYY-MM-DD or empty.
	Birthdate string `json:"birthdate"`
}

func (in PersonInput) toModel(householdID string) (*models.Person, error) {
	if !in.Role.Valid() {
		return nil, apperr.Input("role must be adult or child")
	}
	first := strings.TrimSpace(in.FirstName)
	if first == "" {
		return nil, apperr.Input("first_name required")
	}
	p := &models.Person{
		ID:          tool.GenerateUUIDV7(),
		HouseholdID: householdID,
		Role:        in.Role,
		FirstName:   first,
		LastName:    strings.TrimSpace(in.LastName),
	}
	if in.Birthdate != "" {
		b, err := time.Parse(time.DateOnly, in.Birthdate)
		if err != nil {
			return nil, apperr.Input("birthdate must be YYYY-MM-DD")
		}
		p.Birthdate = &b
	}
	return p, nil
}

func (s *Service) AddPerson(ctx context.Context, householdID string, in PersonInput) (*models.Person, error) {
	p, err := in.toModel(householdID)
	if err != nil {
		return nil, err
	}
	if err := s.people.Create(ctx, p); err != nil {
		return nil, apperr.Dependency("create person", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("person_added", "household_id", householdID, "person_id", p.ID, "role", p.Role)
	return p, nil
}

func (s *Service) RemovePerson(ctx context.Context, householdID, personID string) error {
	deleted, err := s.people.Delete(ctx, householdID, personID)
	if err != nil {
		return apperr.Dependency("delete person", err)
	}
	if !deleted {
		return apperr.NotFound("person")
	}
	return nil
}

// Person returns a person by id. A non-empty householdID scopes the lookup so
// portal users cannot read other households.
func (s *Service) Person(ctx context.Context, householdID, personID string) (*models.Person, error) {
	if !tool.IsUUID(personID) {
		return nil, apperr.NotFound("person")
	}
	p, err := s.people.GetByID(ctx, personID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("person")
	}
	if err != nil {
		return nil, apperr.Dependency("get person", err)
	}
	if householdID != "" && p.HouseholdID != householdID {
		return nil, apperr.NotFound("person")
	}
	return p, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
