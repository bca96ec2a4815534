package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/logging"
)

// ---- fake client ----

// fakeClient implements client.Client. Result fields drive behaviour,
// Last* fields record arguments, calls counts invocations per method.
type fakeClient struct {
	mu    sync.Mutex
	calls map[string]int

	SignInCreds *models.Credentials
	SignInUser  *models.User
	SignInErr   error
	SignUpErr   error

	ValidateUser *models.User
	ValidateErr  error

	CurrentUserRet *models.User
	CurrentUserErr error

	UsersRet []models.User
	UsersErr error

	ChannelsFn func(ctx context.Context) ([]models.Channel, error)
	ChannelRet *models.Channel
	ChannelErr error

	CreateChannelRet *models.Channel
	CreateChannelErr error
	AddMemberErr     error

	MessagesFn       func(ctx context.Context, channelID int64) ([]models.Message, error)
	CreateMessageRet *models.Message
	CreateMessageErr error

	LastCreateChannelName string
	LastCreateChannelIDs  []int64
	AddedMembers          []int64
	LastMessageChannel    int64
	LastMessageContent    string
}

var alice = models.User{ID: 1, Email: "alice@example.com", UID: "alice@example.com"}

func futureCreds() models.Credentials {
	return models.Credentials{
		AccessToken: "tok",
		Client:      "cli",
		UID:         alice.UID,
		Expiry:      strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10),
	}
}

func newFakeClient() *fakeClient {
	creds := futureCreds()
	user := alice
	return &fakeClient{
		calls:        map[string]int{},
		SignInCreds:  &creds,
		SignInUser:   &user,
		ValidateUser: &user,
	}
}

func (f *fakeClient) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeClient) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeClient) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeClient) SignIn(ctx context.Context, email, password string) (*models.Credentials, *models.User, error) {
	f.record("SignIn")
	if f.SignInErr != nil {
		return nil, nil, f.SignInErr
	}
	return f.SignInCreds, f.SignInUser, nil
}

func (f *fakeClient) SignUp(ctx context.Context, email, password, confirmation string) (*models.Credentials, *models.User, error) {
	f.record("SignUp")
	if f.SignUpErr != nil {
		return nil, nil, f.SignUpErr
	}
	return f.SignInCreds, f.SignInUser, nil
}

func (f *fakeClient) ValidateToken(ctx context.Context, creds models.Credentials) (*models.User, error) {
	f.record("ValidateToken")
	return f.ValidateUser, f.ValidateErr
}

func (f *fakeClient) CurrentUser(ctx context.Context, creds models.Credentials) (*models.User, error) {
	f.record("CurrentUser")
	return f.CurrentUserRet, f.CurrentUserErr
}

func (f *fakeClient) ListUsers(ctx context.Context, creds models.Credentials) ([]models.User, error) {
	f.record("ListUsers")
	return f.UsersRet, f.UsersErr
}

func (f *fakeClient) ListChannels(ctx context.Context, creds models.Credentials) ([]models.Channel, error) {
	f.record("ListChannels")
	if f.ChannelsFn == nil {
		return nil, nil
	}
	return f.ChannelsFn(ctx)
}

func (f *fakeClient) GetChannel(ctx context.Context, creds models.Credentials, id int64) (*models.Channel, error) {
	f.record("GetChannel")
	return f.ChannelRet, f.ChannelErr
}

func (f *fakeClient) CreateChannel(ctx context.Context, creds models.Credentials, name string, userIDs []int64) (*models.Channel, error) {
	f.record("CreateChannel")
	f.mu.Lock()
	f.LastCreateChannelName = name
	f.LastCreateChannelIDs = append([]int64(nil), userIDs...)
	f.mu.Unlock()
	return f.CreateChannelRet, f.CreateChannelErr
}

func (f *fakeClient) AddMember(ctx context.Context, creds models.Credentials, channelID, memberID int64) (*models.Channel, error) {
	f.record("AddMember")
	f.mu.Lock()
	f.AddedMembers = append(f.AddedMembers, memberID)
	f.mu.Unlock()
	if f.AddMemberErr != nil {
		return nil, f.AddMemberErr
	}
	return &models.Channel{ID: channelID, UserIDs: []int64{alice.ID, memberID}}, nil
}

func (f *fakeClient) ListMessages(ctx context.Context, creds models.Credentials, channelID int64) ([]models.Message, error) {
	f.record("ListMessages")
	if f.MessagesFn == nil {
		return nil, nil
	}
	return f.MessagesFn(ctx, channelID)
}

func (f *fakeClient) CreateMessage(ctx context.Context, creds models.Credentials, channelID int64, content string) (*models.Message, error) {
	f.record("CreateMessage")
	f.mu.Lock()
	f.LastMessageChannel = channelID
	f.LastMessageContent = content
	f.mu.Unlock()
	return f.CreateMessageRet, f.CreateMessageErr
}

// ---- fake credential store ----

type fakeStore struct {
	mu sync.Mutex

	Saved    *models.Credentials
	LoadErr  error
	SaveErr  error
	ClearErr error
	Clears   int
}

func (s *fakeStore) Load(ctx context.Context) (*models.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if s.Saved == nil {
		return nil, nil
	}
	c := *s.Saved
	return &c, nil
}

func (s *fakeStore) Save(ctx context.Context, c models.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Saved = &c
	return nil
}

func (s *fakeStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Clears++
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.Saved = nil
	return nil
}

// ---- wiring ----

type harness struct {
	client    *fakeClient
	store     *fakeStore
	session   *Session
	users     *Users
	messages  *Messages
	selection *Selection
	channels  *Channels
	events    *eventLog
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) record(_ context.Context, e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) All() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.events...)
}

func newHarness(fc *fakeClient) *harness {
	h := &harness{client: fc, store: &fakeStore{}, events: &eventLog{}}
	log := logging.Nop()
	h.session = NewSession(fc, h.store, log)
	h.session.Subscribe(h.events.record)
	h.messages = NewMessages(h.session, fc, log)
	h.selection = NewSelection(h.messages)
	h.channels = NewChannels(h.session, fc, h.selection, log)
	h.users = NewUsers(h.session, fc, log)
	return h
}

func nopLogger() logging.Logger { return logging.Nop() }
