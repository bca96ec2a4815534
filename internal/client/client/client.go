package client

import (
	"context"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
)

// Client is the contract of the remote chat API. Authenticated calls take
// the credential set explicitly; the client itself holds no session.
type Client interface {
	SignIn(ctx context.Context, email, password string) (*models.Credentials, *models.User, error)
	SignUp(ctx context.Context, email, password, confirmation string) (*models.Credentials, *models.User, error)
	ValidateToken(ctx context.Context, creds models.Credentials) (*models.User, error)
	CurrentUser(ctx context.Context, creds models.Credentials) (*models.User, error)

	ListUsers(ctx context.Context, creds models.Credentials) ([]models.User, error)

	ListChannels(ctx context.Context, creds models.Credentials) ([]models.Channel, error)
	GetChannel(ctx context.Context, creds models.Credentials, id int64) (*models.Channel, error)
	CreateChannel(ctx context.Context, creds models.Credentials, name string, userIDs []int64) (*models.Channel, error)
	AddMember(ctx context.Context, creds models.Credentials, channelID, memberID int64) (*models.Channel, error)

	ListMessages(ctx context.Context, creds models.Credentials, channelID int64) ([]models.Message, error)
	CreateMessage(ctx context.Context, creds models.Credentials, channelID int64, content string) (*models.Message, error)
}
