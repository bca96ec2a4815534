package models

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentials_JSONUsesHeaderNames(t *testing.T) {
	c := Credentials{AccessToken: "tok", Client: "cli", UID: "a@b.c", Expiry: "1700000000"}

	b, err := json.Marshal(c)
	require.NoError(t, err)

	var m map[string]string
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, map[string]string{
		"access-token": "tok",
		"client":       "cli",
		"uid":          "a@b.c",
		"expiry":       "1700000000",
	}, m)
}

func TestCredentials_FromHeaderAndApply(t *testing.T) {
	in := http.Header{}
	in.Set("access-token", "tok")
	in.Set("client", "cli")
	in.Set("uid", "a@b.c")
	in.Set("expiry", "42")

	c := CredentialsFromHeader(in)
	assert.Equal(t, Credentials{AccessToken: "tok", Client: "cli", UID: "a@b.c", Expiry: "42"}, c)
	assert.True(t, c.Valid())

	out := http.Header{}
	c.Apply(out)
	assert.Equal(t, "tok", out.Get("access-token"))
	assert.Equal(t, "cli", out.Get("client"))
	assert.Equal(t, "a@b.c", out.Get("uid"))
	assert.Equal(t, "42", out.Get("expiry"))
	assert.Equal(t, "Bearer", out.Get("token-type"))
}

func TestCredentials_Expired(t *testing.T) {
	now := time.Unix(1_000_000, 0)

	tests := []struct {
		name   string
		expiry string
		want   bool
	}{
		{name: "future", expiry: strconv.FormatInt(now.Add(time.Hour).Unix(), 10), want: false},
		{name: "past", expiry: strconv.FormatInt(now.Add(-time.Second).Unix(), 10), want: true},
		{name: "exactly now", expiry: strconv.FormatInt(now.Unix(), 10), want: false},
		{name: "missing", expiry: "", want: true},
		{name: "garbage", expiry: "tomorrow", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Credentials{AccessToken: "tok", Expiry: tt.expiry}
			assert.Equal(t, tt.want, c.Expired(now))
		})
	}
}

func TestCredentials_ValidRequiresToken(t *testing.T) {
	assert.False(t, Credentials{Client: "c", UID: "u"}.Valid())
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "alice", User{Email: "alice@example.com"}.DisplayName())
	assert.Equal(t, "Alice L.", User{Email: "alice@example.com", Name: "Alice L."}.DisplayName())
	assert.Equal(t, "bob", User{Email: "bob"}.DisplayName())
	assert.Equal(t, "", User{}.DisplayName())
}

func TestChannel_HasMember(t *testing.T) {
	ch := Channel{ID: 1, UserIDs: []int64{3, 5}}
	assert.True(t, ch.HasMember(5))
	assert.False(t, ch.HasMember(4))
}

func TestMessage_DecodeAndAuthor(t *testing.T) {
	raw := `{"id":42,"channel_id":7,"user_id":3,"content":"hi","created_at":"2026-10-18T10:00:00Z","user":{"id":3,"email":"carol@example.com"}}`

	var m Message
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	assert.Equal(t, int64(42), m.ID)
	assert.Equal(t, int64(7), m.ChannelID)
	assert.Equal(t, "hi", m.Content)
	assert.Equal(t, time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC), m.CreatedAt)
	assert.Equal(t, "carol", m.Author())
	assert.Equal(t, "", Message{}.Author())
}
