package models

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
)

// Credentials is the token-auth credential set returned by sign-in and
// sign-up. It is opaque bearer material and is always replaced as a whole.
//
// The JSON form is the record persisted by the credential store.
type Credentials struct {
	AccessToken string `json:"access-token"`
	UID         string `json:"uid"`
	Expiry      string `json:"expiry"`
	Client      string `json:"client"`
}

// CredentialsFromHeader extracts a credential set from response headers.
func CredentialsFromHeader(h http.Header) Credentials {
	return Credentials{
		AccessToken: h.Get(common.HeaderAccessToken),
		Client:      h.Get(common.HeaderClient),
		UID:         h.Get(common.HeaderUID),
		Expiry:      h.Get(common.HeaderExpiry),
	}
}

// Valid reports whether the set carries a token at all.
func (c Credentials) Valid() bool {
	return c.AccessToken != ""
}

// ExpiresAt parses Expiry as unix seconds.
func (c Credentials) ExpiresAt() (time.Time, bool) {
	secs, err := strconv.ParseInt(strings.TrimSpace(c.Expiry), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(secs, 0), true
}

// Expired reports whether the set is past its expiry at now. A missing or
// unparsable expiry counts as expired.
func (c Credentials) Expired(now time.Time) bool {
	exp, ok := c.ExpiresAt()
	if !ok {
		return true
	}
	return now.After(exp)
}

// Apply sets the auth headers on an outgoing request header.
func (c Credentials) Apply(h http.Header) {
	h.Set(common.HeaderAccessToken, c.AccessToken)
	h.Set(common.HeaderClient, c.Client)
	h.Set(common.HeaderUID, c.UID)
	h.Set(common.HeaderExpiry, c.Expiry)
	h.Set(common.HeaderTokenType, common.TokenTypeBearer)
}
