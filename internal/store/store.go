package store

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ecosort/internal/classify"
	"ecosort/internal/db"
)

var (
	// ErrInvalidInput indicates an empty name or class after trimming.
	ErrInvalidInput = errors.New("name and class must not be empty")

	// ErrUnknownUser indicates the given ID has no record.
	ErrUnknownUser = errors.New("unknown user")

	// ErrUnknownCategory indicates a category with no point value.
	ErrUnknownCategory = errors.New("unknown waste category")
)

// Store owns user profiles, the current-user pointer, and progress records.
// All mutations are persisted durably before returning; read-modify-write of
// a single user's record is serialized with a per-user lock.
type Store struct {
	db *db.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	now   func() time.Time
	newID func() string
}

// New creates a store backed by the given database.
func New(database *db.DB) *Store {
	return &Store{
		db:    database,
		locks: make(map[string]*sync.Mutex),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// userLock returns the mutex serializing updates to one user's record.
func (s *Store) userLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// loadRecord reads a user record. A missing key yields (nil, nil); a corrupt
// value is logged and treated as missing rather than surfaced as a failure.
func (s *Store) loadRecord(id string) (*Record, error) {
	value, ok, err := s.db.Get(db.UserKey(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var rec Record
	if err := json.Unmarshal([]byte(value), &rec); err != nil {
		log.Printf("store: corrupt record for user %s: %v", id, err)
		return nil, nil
	}
	return &rec, nil
}

func (s *Store) saveRecord(rec *Record) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Put(db.UserKey(rec.Profile.ID), string(value))
}

// Register creates a new profile with a zeroed progress record and makes it
// the current user. Both writes land in one transaction.
func (s *Store) Register(name, class string) (*Profile, error) {
	name = strings.TrimSpace(name)
	class = strings.TrimSpace(class)
	if name == "" || class == "" {
		return nil, ErrInvalidInput
	}

	rec := &Record{
		Profile: Profile{
			ID:        s.newID(),
			Name:      name,
			Class:     class,
			CreatedAt: s.now(),
		},
	}

	value, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	err = s.db.PutAll(map[string]string{
		db.UserKey(rec.Profile.ID): string(value),
		db.KeyCurrentUser:          rec.Profile.ID,
	})
	if err != nil {
		return nil, err
	}

	profile := rec.Profile
	return &profile, nil
}

// SwitchUser makes an existing profile the current user.
func (s *Store) SwitchUser(id string) (*Profile, error) {
	rec, err := s.loadRecord(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrUnknownUser
	}

	if err := s.db.Put(db.KeyCurrentUser, id); err != nil {
		return nil, err
	}

	profile := rec.Profile
	return &profile, nil
}

// UpdateProfile updates identity metadata in place. Progress is untouched.
func (s *Store) UpdateProfile(id, name, class string) (*Profile, error) {
	name = strings.TrimSpace(name)
	class = strings.TrimSpace(class)
	if name == "" || class == "" {
		return nil, ErrInvalidInput
	}

	lock := s.userLock(id)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.loadRecord(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrUnknownUser
	}

	rec.Profile.Name = name
	rec.Profile.Class = class
	if err := s.saveRecord(rec); err != nil {
		return nil, err
	}

	profile := rec.Profile
	return &profile, nil
}

// CurrentUser resolves the current-user pointer to a full record. No current
// user, or a pointer at a missing record, yields (nil, nil).
func (s *Store) CurrentUser() (*Record, error) {
	id, ok, err := s.db.Get(db.KeyCurrentUser)
	if err != nil {
		return nil, err
	}
	if !ok || id == "" {
		return nil, nil
	}
	return s.loadRecord(id)
}

// Logout clears the current-user pointer.
func (s *Store) Logout() error {
	return s.db.Delete(db.KeyCurrentUser)
}

// Users lists all registered profiles.
func (s *Store) Users() ([]*Profile, error) {
	values, err := s.db.List(db.UserKeyPrefix)
	if err != nil {
		return nil, err
	}

	var profiles []*Profile
	for key, value := range values {
		var rec Record
		if err := json.Unmarshal([]byte(value), &rec); err != nil {
			log.Printf("store: corrupt record at %s: %v", key, err)
			continue
		}
		profile := rec.Profile
		profiles = append(profiles, &profile)
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
	})
	return profiles, nil
}

// AddEvent applies a classification result to a user's progress: points are
// added (saturating), the badge tier is recomputed from the new total, and
// the event is appended to history. All of it lands in one durable write.
// Not idempotent: every call is a new scan event.
func (s *Store) AddEvent(userID string, category classify.Category, confidence float64) (Progress, error) {
	info, ok := classify.InfoFor(category)
	if !ok {
		return Progress{}, ErrUnknownCategory
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.loadRecord(userID)
	if err != nil {
		return Progress{}, err
	}
	if rec == nil {
		return Progress{}, ErrUnknownUser
	}

	if rec.Points > math.MaxUint64-info.Points {
		rec.Points = math.MaxUint64
	} else {
		rec.Points += info.Points
	}

	// Tier is always recomputed from points so it stays consistent even
	// if history is replayed. It never regresses.
	if tier := TierFor(rec.Points); tier > rec.BadgeTier {
		rec.BadgeTier = tier
	}

	rec.History = append(rec.History, Event{
		Category:   category,
		Confidence: confidence,
		Timestamp:  s.now(),
	})

	if err := s.saveRecord(rec); err != nil {
		return Progress{}, err
	}
	return Progress{Points: rec.Points, BadgeTier: rec.BadgeTier}, nil
}

// AddCurrentEvent applies a classification result to the current user.
func (s *Store) AddCurrentEvent(category classify.Category, confidence float64) (Progress, error) {
	id, ok, err := s.db.Get(db.KeyCurrentUser)
	if err != nil {
		return Progress{}, err
	}
	if !ok || id == "" {
		return Progress{}, ErrUnknownUser
	}
	return s.AddEvent(id, category, confidence)
}

// TierFor maps a point total to a badge tier.
func TierFor(points uint64) uint {
	switch {
	case points >= 200:
		return 3
	case points >= 100:
		return 2
	case points >= 50:
		return 1
	default:
		return 0
	}
}

// History returns a user's scan history in chronological order.
func (s *Store) History(userID string) ([]Event, error) {
	rec, err := s.loadRecord(userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrUnknownUser
	}
	return rec.History, nil
}

// Leaderboard returns the top n profiles by points.
func (s *Store) Leaderboard(n int) ([]LeaderboardEntry, error) {
	values, err := s.db.List(db.UserKeyPrefix)
	if err != nil {
		return nil, err
	}

	var entries []LeaderboardEntry
	for key, value := range values {
		var rec Record
		if err := json.Unmarshal([]byte(value), &rec); err != nil {
			log.Printf("store: corrupt record at %s: %v", key, err)
			continue
		}
		entries = append(entries, LeaderboardEntry{
			ID:        rec.Profile.ID,
			Name:      rec.Profile.Name,
			Class:     rec.Profile.Class,
			Points:    rec.Points,
			BadgeTier: rec.BadgeTier,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].Name < entries[j].Name
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// PruneHistory drops history events older than cutoff from every user
// record. Points and badge tiers are untouched. Returns the number of
// events removed.
func (s *Store) PruneHistory(cutoff time.Time) (int, error) {
	profiles, err := s.Users()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, p := range profiles {
		lock := s.userLock(p.ID)
		lock.Lock()

		rec, err := s.loadRecord(p.ID)
		if err != nil {
			lock.Unlock()
			return removed, err
		}
		if rec == nil {
			lock.Unlock()
			continue
		}

		kept := rec.History[:0]
		for _, ev := range rec.History {
			if !ev.Timestamp.Before(cutoff) {
				kept = append(kept, ev)
			}
		}
		dropped := len(rec.History) - len(kept)
		if dropped > 0 {
			rec.History = kept
			if err := s.saveRecord(rec); err != nil {
				lock.Unlock()
				return removed, err
			}
			removed += dropped
		}
		lock.Unlock()
	}
	return removed, nil
}
