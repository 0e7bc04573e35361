package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"arcevents_backend/internals/features/accounts/dto"
	"arcevents_backend/internals/features/accounts/model"
	helper "arcevents_backend/internals/helpers"
	"arcevents_backend/internals/helpers/apperror"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type Store interface {
	CreateAdmin(ctx context.Context, a *model.AdminModel) error
	FindAdminByUsername(ctx context.Context, username string) (*model.AdminModel, error)
	FindAdminByID(ctx context.Context, id uuid.UUID) (*model.AdminModel, error)

	CreateController(ctx context.Context, c *model.ControllerModel) error
	FindControllerByUsername(ctx context.Context, username string) (*model.ControllerModel, error)
	FindControllerByID(ctx context.Context, id uuid.UUID) (*model.ControllerModel, error)
	ListControllers(ctx context.Context, active bool) ([]model.ControllerModel, error)
	SaveController(ctx context.Context, c *model.ControllerModel) error
}

type AccountService struct {
	store Store
	cost  int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAccountService(store Store) *AccountService {
	return &AccountService{store: store, cost: bcrypt.DefaultCost}
}

// WithCost overrides the bcrypt cost (tests use bcrypt.MinCost).
func (s *AccountService) WithCost(cost int) *AccountService {
	s.cost = cost
	return s
}

func NormalizeUsername(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}

/* ====================== ADMIN ====================== */

func (s *AccountService) CreateAdmin(ctx context.Context, req dto.AdminCreateRequest) (*model.AdminModel, error) {
	req.Username = NormalizeUsername(req.Username)
	if err := helper.ValidateStruct(req); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, apperror.Internal("hash password", err)
	}
	a := &model.AdminModel{
		AdminID:           uuid.New(),
		AdminUsername:     req.Username,
		AdminPasswordHash: string(hash),
	}
	if err := s.store.CreateAdmin(ctx, a); err != nil {
		return nil, err
	}
	log.Info().Str("admin_id", a.AdminID.String()).Msg("admin created")
	return a, nil
}

func (s *AccountService) VerifyAdmin(ctx context.Context, username, password string) (*model.AdminModel, error) {
	a, err := s.store.FindAdminByUsername(ctx, NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.burnCompare(password)
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.AdminPasswordHash), []byte(password)) != nil {
		return nil, apperror.ErrInvalidCredentials
	}
	return a, nil
}

/* ====================== CONTROLLER ====================== */

func (s *AccountService) Signup(ctx context.Context, req dto.ControllerSignupRequest) (*model.ControllerModel, error) {
	req.Username = NormalizeUsername(req.Username)
	req.RequestedEventID = strings.TrimSpace(req.RequestedEventID)
	if err := helper.ValidateStruct(req); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, apperror.Internal("hash password", err)
	}
	c := &model.ControllerModel{
		ControllerID:              uuid.New(),
		ControllerUsername:        req.Username,
		ControllerPasswordHash:    string(hash),
		ControllerIsActive:        false,
		ControllerApprovedEvents:  pq.StringArray{},
		ControllerRequestedEvents: pq.StringArray{},
	}
	if req.RequestedEventID != "" {
		c.ControllerRequestedEvents = pq.StringArray{strings.ToLower(req.RequestedEventID)}
	}
	if err := s.store.CreateController(ctx, c); err != nil {
		return nil, err
	}
	log.Info().Str("controller_id", c.ControllerID.String()).Msg("controller signed up, pending approval")
	return c, nil
}

// VerifyController: a correct password on an inactive account is Forbidden, not InvalidCredentials.
func (s *AccountService) VerifyController(ctx context.Context, username, password string) (*model.ControllerModel, error) {
	c, err := s.store.FindControllerByUsername(ctx, NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.burnCompare(password)
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(c.ControllerPasswordHash), []byte(password)) != nil {
		return nil, apperror.ErrInvalidCredentials
	}
	if !c.ControllerIsActive {
		return nil, apperror.Forbidden("controller account is not approved")
	}
	return c, nil
}

func (s *AccountService) ApproveController(ctx context.Context, adminID, controllerID uuid.UUID, events []uuid.UUID, mode model.ApprovalMode) (*model.ControllerModel, error) {
	c, err := s.store.FindControllerByID(ctx, controllerID)
	if err != nil {
		return nil, err
	}
	c.ControllerApprovedEvents = model.MergeApprovedEvents(c.ControllerApprovedEvents, events, mode)
	c.ControllerRequestedEvents = withoutApproved(c.ControllerRequestedEvents, c.ControllerApprovedEvents)
	c.ControllerIsActive = true
	by := adminID
	c.ControllerApprovedByAdmin = &by

	if err := s.store.SaveController(ctx, c); err != nil {
		return nil, err
	}
	log.Info().
		Str("admin_id", adminID.String()).
		Str("controller_id", controllerID.String()).
		Str("mode", string(mode)).
		Int("approved_events", len(c.ControllerApprovedEvents)).
		Msg("controller approved")
	return c, nil
}

// RevokeController deactivates and clears the scope. Takes effect on the controller's next request.
func (s *AccountService) RevokeController(ctx context.Context, adminID, controllerID uuid.UUID) (*model.ControllerModel, error) {
	c, err := s.store.FindControllerByID(ctx, controllerID)
	if err != nil {
		return nil, err
	}
	c.ControllerIsActive = false
	c.ControllerApprovedEvents = pq.StringArray{}
	if err := s.store.SaveController(ctx, c); err != nil {
		return nil, err
	}
	log.Info().Str("admin_id", adminID.String()).Str("controller_id", controllerID.String()).Msg("controller revoked")
	return c, nil
}

func (s *AccountService) ListActiveControllers(ctx context.Context) ([]model.ControllerModel, error) {
	return s.store.ListControllers(ctx, true)
}

func (s *AccountService) ListPendingControllers(ctx context.Context) ([]model.ControllerModel, error) {
	return s.store.ListControllers(ctx, false)
}

// burnCompare keeps unknown-user logins as slow as wrong-password ones.
func (s *AccountService) burnCompare(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("arcevents-dummy-password"), s.cost)
	})
	_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
}

func withoutApproved(requested, approved pq.StringArray) pq.StringArray {
	in := make(map[string]struct{}, len(approved))
	for _, id := range approved {
		in[strings.ToLower(id)] = struct{}{}
	}
	out := pq.StringArray{}
	for _, id := range requested {
		if _, ok := in[strings.ToLower(id)]; !ok {
			out = append(out, id)
		}
	}
	return out
}
