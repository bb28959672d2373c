package httpapi

import (
	"net/http"
	"net/mail"
	"strconv"

	"github.com/dsavelev/userpost/internal/common"
	"github.com/dsavelev/userpost/internal/server/auth"
	"github.com/dsavelev/userpost/internal/server/models"
	"github.com/dsavelev/userpost/internal/server/services"
	"github.com/labstack/echo/v4"
)

const (
	maxPostTitleLen   = 100
	maxPostContentLen = 500
)

type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

type postResponse struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
	UserID  int64  `json:"user_id"`
}

func toPostResponse(p *models.Post) postResponse {
	return postResponse{ID: p.ID, Title: p.Title, Content: p.Content, UserID: p.UserID}
}

func toPostResponses(posts []*models.Post) []postResponse {
	result := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		result = append(result, toPostResponse(p))
	}
	return result
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

type registerUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) registerUser(c echo.Context) error {
	var req registerUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if !validEmail(req.Email) {
		return badRequest(c, "invalid email")
	}
	if req.Password == "" {
		return badRequest(c, "password is required")
	}
	if len(req.Password) > auth.MaxPasswordBytes {
		return badRequest(c, "password is too long")
	}

	user, err := s.users.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, toUserResponse(user))
}

func (s *Server) listUsers(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	users, err := s.users.ListUsers(c.Request().Context(), page, pageSize)
	if err != nil {
		return writeError(c, err)
	}

	result := make([]userResponse, 0, len(users))
	for _, u := range users {
		result = append(result, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) getUser(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid user id")
	}

	user, err := s.users.GetUser(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

type updateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (s *Server) updateUser(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid user id")
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Email != nil && !validEmail(*req.Email) {
		return badRequest(c, "invalid email")
	}

	user, err := s.users.UpdateUser(c.Request().Context(), id, services.UpdateUserParams{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (s *Server) deleteUser(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid user id")
	}

	if err := s.users.DeleteUser(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) currentUser(c echo.Context) error {
	user, ok := c.Get(currentUserKey).(*models.User)
	if !ok {
		return writeError(c, common.ErrorUnauthorized)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email and password are required")
	}

	pair, err := s.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.RefreshToken == "" {
		return badRequest(c, "refresh_token is required")
	}

	pair, err := s.users.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return writeError(c, err)
	}

	// the refresh token is not re-sent; the client keeps the one it has
	return c.JSON(http.StatusOK, tokenPairResponse{
		AccessToken: pair.AccessToken,
		TokenType:   pair.TokenType,
	})
}

func (s *Server) logout(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := s.users.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "logged out"})
}

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *Server) createPost(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid user id")
	}

	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Title == "" {
		return badRequest(c, "title is required")
	}
	if len(req.Title) > maxPostTitleLen {
		return badRequest(c, "title is too long")
	}
	if len(req.Content) > maxPostContentLen {
		return badRequest(c, "content is too long")
	}

	post, err := s.posts.CreatePost(c.Request().Context(), id, req.Title, req.Content)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, toPostResponse(post))
}

func (s *Server) listPosts(c echo.Context) error {
	posts, err := s.posts.ListPosts(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPostResponses(posts))
}

func (s *Server) listUserPosts(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid user id")
	}

	posts, err := s.posts.ListUserPosts(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPostResponses(posts))
}
