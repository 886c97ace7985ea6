package engine_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory implementation of every engine store interface.
// Conditional writes are evaluated under one lock, matching the guarantees
// of the MongoDB stores.
type memStore struct {
	mu        sync.Mutex
	campaigns map[primitive.ObjectID]models.Campaign
	questions map[primitive.ObjectID]models.Question
	managers  map[primitive.ObjectID]models.CampaignManager
	users     map[string]models.User

	transitions int
	failBatch   bool
}

func newMemStore() *memStore {
	return &memStore{
		campaigns: make(map[primitive.ObjectID]models.Campaign),
		questions: make(map[primitive.ObjectID]models.Question),
		managers:  make(map[primitive.ObjectID]models.CampaignManager),
		users:     make(map[string]models.User),
	}
}

func (s *memStore) addUser(role models.Role, email string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := models.User{ID: primitive.NewObjectID(), Email: email, Role: role, Active: true}
	s.users[email] = u
	return u
}

func (s *memStore) addCampaign(creator primitive.ObjectID, status models.CampaignStatus) models.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := models.Campaign{
		ID:         primitive.NewObjectID(),
		Title:      "Survey",
		CreatorID:  creator,
		Status:     status,
		Visibility: models.VisibilityPrivate,
	}
	s.campaigns[c.ID] = c
	return c
}

func (s *memStore) addQuestion(campaignID primitive.ObjectID, order int) models.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := models.Question{ID: primitive.NewObjectID(), CampaignID: campaignID, Text: "Q", Type: models.QuestionShortText, Order: order}
	s.questions[q.ID] = q
	return q
}

func (s *memStore) campaign(id primitive.ObjectID) models.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.campaigns[id]
}

// CampaignStore

func (s *memStore) LoadWithMembership(_ context.Context, id primitive.ObjectID) (models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return models.Campaign{}, apperr.NotFound("campaign not found")
	}
	c.Questions = nil
	for _, q := range s.questions {
		if q.CampaignID == id {
			c.Questions = append(c.Questions, q)
		}
	}
	sort.Slice(c.Questions, func(i, j int) bool { return c.Questions[i].Order < c.Questions[j].Order })
	c.Managers = nil
	for _, m := range s.managers {
		if m.CampaignID == id {
			c.Managers = append(c.Managers, m)
		}
	}
	return c, nil
}

func (s *memStore) TransitionStatus(_ context.Context, id primitive.ObjectID, expected, next models.CampaignStatus, change models.StatusChange) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok || c.Status != expected {
		return false, nil
	}
	if change.ShareableLink != nil && c.ShareableLink != nil {
		return false, nil
	}
	c.Status = next
	if change.ShareableLink != nil {
		c.ShareableLink = change.ShareableLink
	}
	if change.ClosedAt != nil {
		c.ClosedAt = change.ClosedAt
	}
	c.UpdatedAt = change.UpdatedAt
	s.campaigns[id] = c
	s.transitions++
	return true, nil
}

func (s *memStore) SetAllowManagerViewRespondentDetails(_ context.Context, id primitive.ObjectID, allow bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return apperr.NotFound("campaign not found")
	}
	c.AllowManagerViewRespondentDetails = allow
	s.campaigns[id] = c
	return nil
}

// ManagerStore

func (s *memStore) GetByCampaignAndUser(_ context.Context, campaignID, userID primitive.ObjectID) (*models.CampaignManager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.managers {
		if m.CampaignID == campaignID && m.UserID == userID {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (s *memStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.CampaignManager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.managers[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *memStore) Insert(_ context.Context, m models.CampaignManager) (models.CampaignManager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, have := range s.managers {
		if have.CampaignID == m.CampaignID && have.UserID == m.UserID {
			return models.CampaignManager{}, apperr.Conflict("user is already a manager for this campaign")
		}
	}
	m.ID = primitive.NewObjectID()
	s.managers[m.ID] = m
	return m, nil
}

func (s *memStore) SetAccepted(_ context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.managers[id]
	if !ok || m.AcceptedAt != nil {
		return false, nil
	}
	m.AcceptedAt = &at
	s.managers[id] = m
	return true, nil
}

func (s *memStore) UpdatePermissions(_ context.Context, id primitive.ObjectID, perms []models.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.managers[id]
	if !ok {
		return apperr.NotFound("manager not found")
	}
	m.Permissions = perms
	s.managers[id] = m
	return nil
}

func (s *memStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.managers, id)
	return nil
}

// QuestionStore

func (s *memStore) BatchSetOrder(_ context.Context, campaignID primitive.ObjectID, orders []models.QuestionOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failBatch {
		return apperr.InvalidState("batch rejected")
	}
	for _, o := range orders {
		q := s.questions[o.ID]
		q.Order = o.Order
		s.questions[o.ID] = q
	}
	return nil
}

// UserStore

func (s *memStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
