package preference

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/xid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("preference: not found")

// updatableFields is the whitelist of submission keys Update will persist.
var updatableFields = map[string]bool{
	"match_threshold": true, "healthcare": true, "dental": true, "vision": true,
	"life_insurance": true, "equity": true, "bonuses": true, "retirement": true,
	"fulltime": true, "remote": true, "open_source": true, "expected_salary": true,
	"potential_availability": true, "work_hours": true, "valid_us_worker": true,
	"vacation_days": true, "willing_to_relocate": true,
	"locations": true, "industries": true, "experience_levels": true,
	"position_titles": true, "settings": true, "dress_codes": true,
	"company_types": true, "perks": true, "practices": true, "skills": true,
}

// Store defines persistence for per-user preferences.
type Store interface {
	ByUser(ctx context.Context, userID string) (*Preference, error)
	CreateDefault(ctx context.Context, userID string) (*Preference, error)
	Update(ctx context.Context, userID string, fields map[string]interface{}) (*Preference, error)
}

// MongoStore implements Store on a preferences collection keyed by userId.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(col *mongo.Collection) *MongoStore {
	return &MongoStore{col: col}
}

func (s *MongoStore) ByUser(ctx context.Context, userID string) (*Preference, error) {
	var p Preference
	if err := s.col.FindOne(ctx, bson.M{"userId": userID}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *MongoStore) CreateDefault(ctx context.Context, userID string) (*Preference, error) {
	p := Default(userID)
	p.ID = xid.New().String()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.col.InsertOne(ctx, p); err != nil {
		return nil, fmt.Errorf("insert preference: %w", err)
	}
	return p, nil
}

func (s *MongoStore) Update(ctx context.Context, userID string, fields map[string]interface{}) (*Preference, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range fields {
		if updatableFields[k] {
			set[k] = v
		}
	}
	res, err := s.col.UpdateOne(ctx, bson.M{"userId": userID}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("update preference: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return s.ByUser(ctx, userID)
}

// MemoryStore is an in-memory Store for unit tests. Field application goes
// through bson round-tripping so it matches the Mongo update semantics.
type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[string]*Preference
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[string]*Preference)}
}

func (m *MemoryStore) ByUser(ctx context.Context, userID string) (*Preference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.prefs[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryStore) CreateDefault(ctx context.Context, userID string) (*Preference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := Default(userID)
	p.ID = xid.New().String()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	m.prefs[userID] = p
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) Update(ctx context.Context, userID string, fields map[string]interface{}) (*Preference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.prefs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	raw, err := bson.Marshal(p)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for k, v := range fields {
		if updatableFields[k] {
			doc[k] = v
		}
	}
	doc["updatedAt"] = time.Now().UTC()
	raw, err = bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var updated Preference
	if err := bson.Unmarshal(raw, &updated); err != nil {
		return nil, err
	}
	m.prefs[userID] = &updated
	cp := updated
	return &cp, nil
}
