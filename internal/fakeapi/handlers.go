package fakeapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/fakeapi/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minPasswordLen = 6

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Name                 string `json:"name"`
}

type createChannelRequest struct {
	Name    string  `json:"name"`
	UserIDs []int64 `json:"user_ids"`
}

type addMemberRequest struct {
	ID       int64 `json:"id"`
	MemberID int64 `json:"member_id"`
}

type createMessageRequest struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// SignIn handles POST /auth/sign_in.
func (s *Server) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"Malformed request"}})
		return
	}

	user, err := s.store.Authenticate(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"errors":  []string{"Invalid login credentials. Please try again."},
		})
		return
	}

	if err := s.issueCredentials(c, user); err != nil {
		s.logger.Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"errors": []string{"Sign in failed"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

// SignUp handles POST /auth. Validation failures come back the way a
// devise registration does: {"status":"error","errors":{"full_messages":[...]}}.
func (s *Server) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"Malformed request"}})
		return
	}

	var problems []string
	if !strings.Contains(req.Email, "@") {
		problems = append(problems, "Email is not an email")
	}
	if len(req.Password) < minPasswordLen {
		problems = append(problems, "Password is too short (minimum is 6 characters)")
	}
	if req.Password != req.PasswordConfirmation {
		problems = append(problems, "Password confirmation doesn't match Password")
	}
	if len(problems) > 0 {
		signUpFailed(c, problems)
		return
	}

	user, err := s.store.CreateUser(req.Email, req.Password, req.Name)
	if errors.Is(err, ErrEmailTaken) {
		signUpFailed(c, []string{"Email has already been taken"})
		return
	}
	if err != nil {
		s.logger.Error("failed to create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"errors": []string{"Sign up failed"}})
		return
	}

	if err := s.issueCredentials(c, user); err != nil {
		s.logger.Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"errors": []string{"Sign up failed"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": user})
}

func signUpFailed(c *gin.Context, messages []string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"status": "error",
		"errors": gin.H{"full_messages": messages},
	})
}

// issueCredentials mints a fresh client id and token and writes the
// credential headers.
func (s *Server) issueCredentials(c *gin.Context, user models.User) error {
	client := uuid.NewString()
	token, expiresAt, err := auth.GenerateToken(user.ID, client, s.secret, s.tokenTTL, s.now())
	if err != nil {
		return err
	}

	c.Header(common.HeaderAccessToken, token)
	c.Header(common.HeaderClient, client)
	c.Header(common.HeaderUID, user.UID)
	c.Header(common.HeaderExpiry, strconv.FormatInt(expiresAt.Unix(), 10))
	c.Header(common.HeaderTokenType, common.TokenTypeBearer)
	return nil
}

// ValidateToken handles GET /auth/validate_token.
func (s *Server) ValidateToken(c *gin.Context) {
	user, ok := s.store.User(currentUserID(c))
	if !ok {
		abortUnauthorized(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

// CurrentUser handles GET /users/current.
func (s *Server) CurrentUser(c *gin.Context) {
	user, ok := s.store.User(currentUserID(c))
	if !ok {
		abortUnauthorized(c)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers handles GET /users.
func (s *Server) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Users())
}

// ListChannels handles GET /channels.
func (s *Server) ListChannels(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Channels(currentUserID(c)))
}

// GetChannel handles GET /channels/:id.
func (s *Server) GetChannel(c *gin.Context) {
	id, ok := channelIDParam(c)
	if !ok {
		return
	}

	ch, err := s.store.Channel(currentUserID(c), id)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}

// CreateChannel handles POST /channels.
func (s *Server) CreateChannel(c *gin.Context) {
	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"Malformed request"}})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []string{"Name can't be blank"}})
		return
	}

	ch := s.store.CreateChannel(currentUserID(c), name, req.UserIDs)
	c.JSON(http.StatusOK, ch)
}

// AddMember handles POST /channel/add_member.
func (s *Server) AddMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"Malformed request"}})
		return
	}

	ch, err := s.store.AddMember(currentUserID(c), req.ID, req.MemberID)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}

// ListMessages handles GET /channels/:id/messages.
func (s *Server) ListMessages(c *gin.Context) {
	id, ok := channelIDParam(c)
	if !ok {
		return
	}

	msgs, err := s.store.Messages(currentUserID(c), id)
	if err != nil {
		s.storeError(c, err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	c.JSON(http.StatusOK, msgs)
}

// CreateMessage handles POST /channels/:id/messages.
func (s *Server) CreateMessage(c *gin.Context) {
	id, ok := channelIDParam(c)
	if !ok {
		return
	}

	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"Malformed request"}})
		return
	}
	if strings.TrimSpace(req.Message.Content) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []string{"Content can't be blank"}})
		return
	}

	m, err := s.store.PostMessage(currentUserID(c), id, req.Message.Content)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func channelIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"errors": []string{"Channel not found"}})
		return 0, false
	}
	return id, true
}

func (s *Server) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrChannelNotFound):
		c.JSON(http.StatusNotFound, gin.H{"errors": []string{"Channel not found"}})
	case errors.Is(err, ErrNotMember):
		c.JSON(http.StatusForbidden, gin.H{"errors": []string{"You are not a member of this channel"}})
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []string{"User not found"}})
	case errors.Is(err, ErrAlreadyMember):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []string{"User is already a member"}})
	default:
		s.logger.Error("store failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
