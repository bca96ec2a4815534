package fakeapi

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken      = errors.New("email has already been taken")
	ErrBadCredentials  = errors.New("invalid login credentials")
	ErrUserNotFound    = errors.New("user not found")
	ErrChannelNotFound = errors.New("channel not found")
	ErrAlreadyMember   = errors.New("user is already a member")
	ErrNotMember       = errors.New("not a member of the channel")
)

type userRecord struct {
	user         models.User
	passwordHash []byte
}

// Store is the in-memory state of the fake API. Ids are assigned
// sequentially starting at 1.
type Store struct {
	mu sync.Mutex

	now func() time.Time

	users    map[int64]*userRecord
	byEmail  map[string]int64
	channels []*models.Channel
	messages map[int64][]models.Message

	nextUser    int64
	nextChannel int64
	nextMessage int64
}

func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:      now,
		users:    make(map[int64]*userRecord),
		byEmail:  make(map[string]int64),
		messages: make(map[int64][]models.Message),
	}
}

// CreateUser registers a user with a bcrypt-hashed password.
func (s *Store) CreateUser(email, password, name string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	// hashing is slow; keep it outside the lock
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return models.User{}, ErrEmailTaken
	}

	s.nextUser++
	u := models.User{ID: s.nextUser, Email: email, UID: email, Name: name}
	s.users[u.ID] = &userRecord{user: u, passwordHash: hash}
	s.byEmail[email] = u.ID
	return u, nil
}

// Authenticate checks an email/password pair.
func (s *Store) Authenticate(email, password string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	id, ok := s.byEmail[email]
	var rec userRecord
	if ok {
		rec = *s.users[id]
	}
	s.mu.Unlock()

	if !ok {
		return models.User{}, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(password)); err != nil {
		return models.User{}, ErrBadCredentials
	}
	return rec.user, nil
}

func (s *Store) User(id int64) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return models.User{}, false
	}
	return rec.user, true
}

// Users returns every user ordered by id.
func (s *Store) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.User, 0, len(s.users))
	for _, rec := range s.users {
		out = append(out, rec.user)
	}
	slices.SortFunc(out, func(a, b models.User) int { return int(a.ID - b.ID) })
	return out
}

// Channels returns the channels userID belongs to, newest first.
func (s *Store) Channels(userID int64) []models.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Channel{}
	for i := len(s.channels) - 1; i >= 0; i-- {
		if s.channels[i].HasMember(userID) {
			out = append(out, cloneChannel(s.channels[i]))
		}
	}
	return out
}

// Channel returns a channel userID is a member of.
func (s *Store) Channel(userID, channelID int64) (models.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, err := s.channelLocked(userID, channelID)
	if err != nil {
		return models.Channel{}, err
	}
	return cloneChannel(ch), nil
}

// CreateChannel creates a channel owned by ownerID. Unknown member ids are
// ignored; the owner is always a member.
func (s *Store) CreateChannel(ownerID int64, name string, memberIDs []int64) models.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := []int64{ownerID}
	for _, id := range memberIDs {
		if _, ok := s.users[id]; ok && !slices.Contains(members, id) {
			members = append(members, id)
		}
	}

	s.nextChannel++
	ch := &models.Channel{
		ID:        s.nextChannel,
		Name:      name,
		UserIDs:   members,
		OwnerID:   ownerID,
		CreatedAt: s.now().UTC(),
	}
	s.channels = append(s.channels, ch)
	return cloneChannel(ch)
}

// AddMember adds memberID to a channel userID belongs to.
func (s *Store) AddMember(userID, channelID, memberID int64) (models.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, err := s.channelLocked(userID, channelID)
	if err != nil {
		return models.Channel{}, err
	}
	if _, ok := s.users[memberID]; !ok {
		return models.Channel{}, ErrUserNotFound
	}
	if ch.HasMember(memberID) {
		return models.Channel{}, ErrAlreadyMember
	}
	ch.UserIDs = append(ch.UserIDs, memberID)
	return cloneChannel(ch), nil
}

// Messages returns the history of a channel, oldest first.
func (s *Store) Messages(userID, channelID int64) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.channelLocked(userID, channelID); err != nil {
		return nil, err
	}
	return slices.Clone(s.messages[channelID]), nil
}

// PostMessage appends a message authored by userID.
func (s *Store) PostMessage(userID, channelID int64, content string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.channelLocked(userID, channelID); err != nil {
		return models.Message{}, err
	}

	s.nextMessage++
	author := s.users[userID].user
	m := models.Message{
		ID:        s.nextMessage,
		ChannelID: channelID,
		UserID:    userID,
		User:      &author,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	s.messages[channelID] = append(s.messages[channelID], m)
	return m, nil
}

// channelLocked finds a channel and checks that userID belongs to it.
func (s *Store) channelLocked(userID, channelID int64) (*models.Channel, error) {
	for _, ch := range s.channels {
		if ch.ID != channelID {
			continue
		}
		if !ch.HasMember(userID) {
			return nil, ErrNotMember
		}
		return ch, nil
	}
	return nil, ErrChannelNotFound
}

func cloneChannel(ch *models.Channel) models.Channel {
	c := *ch
	c.UserIDs = slices.Clone(ch.UserIDs)
	return c
}
