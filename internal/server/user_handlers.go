package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/conduit-dev/conduit/internal/auth"
	"github.com/conduit-dev/conduit/internal/models"
)

// RegisterRequest represents the registration request
type RegisterRequest struct {
	User struct {
		Username string `json:"username" validate:"required,max=64,username"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8,max=72"`
	} `json:"user"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	User struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	} `json:"user"`
}

// UpdateUserRequest represents a partial profile update
type UpdateUserRequest struct {
	User struct {
		Email    *string `json:"email" validate:"omitnil,email"`
		Username *string `json:"username" validate:"omitnil,min=1,max=64,username"`
		Password *string `json:"password" validate:"omitnil,min=8,max=72"`
		Bio      *string `json:"bio" validate:"omitnil,max=1024"`
		Image    *string `json:"image" validate:"omitnil,max=2048"`
	} `json:"user"`
}

// UserResponse is the {"user": {...}} envelope every endpoint returns
type UserResponse struct {
	User UserDetail `json:"user"`
}

// UserDetail represents the authenticated user
type UserDetail struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`
}

func newUserResponse(user *models.User, token string) UserResponse {
	return UserResponse{User: UserDetail{
		Email:    user.Email,
		Token:    token,
		Username: user.Username,
		Bio:      user.Bio,
		Image:    user.Image,
	}}
}

// bindUser decodes and validates the request body. It writes the 422 response
// and returns false when the body is unusable.
func (s *Server) bindUser(c *gin.Context, req any, inner func() any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondValidation(c, fieldErrors{"body": {"is invalid"}})
		return false
	}
	if err := s.validator.Struct(inner()); err != nil {
		respondValidation(c, translateValidation(err))
		return false
	}
	return true
}

// checkTaken reports email/username collisions with users other than exceptID
func (s *Server) checkTaken(email, username, exceptID string) (fieldErrors, error) {
	errs := fieldErrors{}

	check := func(column, value string) error {
		if value == "" {
			return nil
		}
		var count int64
		q := s.db.Model(&models.User{}).Where(column+" = ?", value)
		if exceptID != "" {
			q = q.Where("id <> ?", exceptID)
		}
		if err := q.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			errs.add(column, "has already been taken")
		}
		return nil
	}

	if err := check("email", email); err != nil {
		return nil, err
	}
	if err := check("username", username); err != nil {
		return nil, err
	}
	return errs, nil
}

// takenOnConflict maps a unique index violation, from a user that registered
// between checkTaken and the write, to the fields now taken. ok is false for
// any other error.
func (s *Server) takenOnConflict(err error, email, username, exceptID string) (fieldErrors, bool) {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, false
	}

	taken, checkErr := s.checkTaken(email, username, exceptID)
	if checkErr != nil || len(taken) == 0 {
		// the driver does not name the index; blame what was submitted
		taken = fieldErrors{}
		if email != "" {
			taken.add("email", "has already been taken")
		}
		if username != "" {
			taken.add("username", "has already been taken")
		}
	}
	return taken, true
}

func (s *Server) internalError(c *gin.Context, err error, message string) {
	s.logger.Error().Err(err).Msg(message)
	c.JSON(http.StatusInternalServerError, gin.H{"errors": gin.H{"server": []string{"encountered an error"}}})
}

// register handles POST /api/users
func (s *Server) register(c *gin.Context) {
	var req RegisterRequest
	if !s.bindUser(c, &req, func() any { return &req.User }) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.User.Email))

	taken, err := s.checkTaken(email, req.User.Username, "")
	if err != nil {
		s.internalError(c, err, "Failed to check existing users")
		return
	}
	if len(taken) > 0 {
		respondValidation(c, taken)
		return
	}

	passwordHash, err := auth.HashPassword(req.User.Password)
	if err != nil {
		s.internalError(c, err, "Failed to hash password")
		return
	}

	user := &models.User{
		Email:        email,
		Username:     req.User.Username,
		PasswordHash: passwordHash,
	}
	if err := s.db.Create(user).Error; err != nil {
		if taken, ok := s.takenOnConflict(err, email, req.User.Username, ""); ok {
			respondValidation(c, taken)
			return
		}
		s.internalError(c, err, "Failed to create user")
		return
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		s.internalError(c, err, "Failed to generate token")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User registered")

	c.JSON(http.StatusCreated, newUserResponse(user, token))
}

// login handles POST /api/users/login
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if !s.bindUser(c, &req, func() any { return &req.User }) {
		return
	}

	invalid := fieldErrors{"email or password": {"is invalid"}}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(req.User.Email))
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondValidation(c, invalid)
			return
		}
		s.internalError(c, err, "Failed to find user")
		return
	}

	if err := auth.VerifyPassword(req.User.Password, user.PasswordHash); err != nil {
		respondValidation(c, invalid)
		return
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		s.internalError(c, err, "Failed to generate token")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User logged in")

	c.JSON(http.StatusOK, newUserResponse(&user, token))
}

// getCurrentUser handles GET /api/user
func (s *Server) getCurrentUser(c *gin.Context) {
	sessionData, ok := GetSessionData(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": gin.H{"token": []string{"is missing"}}})
		return
	}

	var user models.User
	if err := models.FindByID(s.db, sessionData.UserID, &user); err != nil {
		s.internalError(c, err, "Failed to find user")
		return
	}

	c.JSON(http.StatusOK, newUserResponse(&user, sessionData.Token))
}

// updateCurrentUser handles PUT /api/user
func (s *Server) updateCurrentUser(c *gin.Context) {
	sessionData, ok := GetSessionData(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": gin.H{"token": []string{"is missing"}}})
		return
	}

	var req UpdateUserRequest
	if !s.bindUser(c, &req, func() any { return &req.User }) {
		return
	}

	var user models.User
	if err := models.FindByID(s.db, sessionData.UserID, &user); err != nil {
		s.internalError(c, err, "Failed to find user")
		return
	}

	var email, username string
	if req.User.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*req.User.Email))
	}
	if req.User.Username != nil {
		username = *req.User.Username
	}

	taken, err := s.checkTaken(email, username, user.ID)
	if err != nil {
		s.internalError(c, err, "Failed to check existing users")
		return
	}
	if len(taken) > 0 {
		respondValidation(c, taken)
		return
	}

	if email != "" {
		user.Email = email
	}
	if username != "" {
		user.Username = username
	}
	if req.User.Bio != nil {
		user.Bio = *req.User.Bio
	}
	if req.User.Image != nil {
		user.Image = *req.User.Image
	}
	if req.User.Password != nil {
		hash, err := auth.HashPassword(*req.User.Password)
		if err != nil {
			s.internalError(c, err, "Failed to hash password")
			return
		}
		user.PasswordHash = hash
	}

	if err := s.db.Save(&user).Error; err != nil {
		if taken, ok := s.takenOnConflict(err, email, username, user.ID); ok {
			respondValidation(c, taken)
			return
		}
		s.internalError(c, err, "Failed to update user")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("User updated")

	c.JSON(http.StatusOK, newUserResponse(&user, sessionData.Token))
}
