package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"star_studio/internal/logging"
	"star_studio/internal/middleware"
	"star_studio/internal/model"
	"star_studio/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAccountService struct {
	mock.Mock
}

func (m *mockAccountService) Register(ctx context.Context, in service.RegisterInput) (*model.User, *model.Token, error) {
	args := m.Called(ctx, in)
	user, _ := args.Get(0).(*model.User)
	token, _ := args.Get(1).(*model.Token)
	return user, token, args.Error(2)
}

func (m *mockAccountService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *mockAccountService) Login(ctx context.Context, email, password string) (*model.User, *model.Token, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*model.User)
	token, _ := args.Get(1).(*model.Token)
	return user, token, args.Error(2)
}

func (m *mockAccountService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) (*model.User, error) {
	args := m.Called(ctx, userID, oldPassword, newPassword)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *mockAccountService) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *mockAccountService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *mockAccountService) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAccountService) AuthenticateToken(ctx context.Context, key string) (*model.User, error) {
	args := m.Called(ctx, key)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

const testToken = "18e7cc5c43e17aa50b38bcb5b1639a37f0a99486"

var demoUser = &model.User{
	ID:           27,
	Username:     "demouser2",
	Email:        "demouser2@gmail.com",
	PasswordHash: "$2a$10$secret-hash",
	PhoneNumber:  9087654321,
}

func setupRouter(svc *mockAccountService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	logger := logging.Discard()
	h := NewAccountHandler(svc, logger)
	h.RegisterAccountRoutes(r, middleware.TokenAuthMiddleware(svc, logger))
	return r
}

func serve(r http.Handler, method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Token "+testToken)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func expectAuthenticated(svc *mockAccountService) {
	svc.On("AuthenticateToken", mock.Anything, testToken).Return(demoUser, nil)
}

func TestRegister(t *testing.T) {
	svc := new(mockAccountService)
	r := setupRouter(svc)

	in := service.RegisterInput{
		Username:        "demouser2",
		Email:           "demouser2@gmail.com",
		Password:        "demouser2345",
		ConfirmPassword: "demouser2345",
		PhoneNumber:     9087654321,
	}
	svc.On("Register", mock.Anything, in).Return(demoUser, &model.Token{Key: testToken, UserID: 27}, nil)

	w := serve(r, http.MethodPost, "/register/", `{
		"username": "demouser2",
		"email": "demouser2@gmail.com",
		"password": "demouser2345",
		"confirm_password": "demouser2345",
		"phone_number": 9087654321
	}`, false)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{
		"user": {"id": 27, "username": "demouser2", "email": "demouser2@gmail.com", "phone_number": 9087654321},
		"token": "`+testToken+`"
	}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")
	svc.AssertExpectations(t)
}

func TestRegister_BindingErrors(t *testing.T) {
	svc := new(mockAccountService)
	r := setupRouter(svc)

	for _, body := range []string{
		`not json`,
		`{"username": "u", "email": "bad", "password": "p", "confirm_password": "p", "phone_number": 1}`,
		`{"username": "u", "email": "u@example.com", "password": "p", "confirm_password": "p"}`,
	} {
		w := serve(r, http.MethodPost, "/register/", body, false)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegister_ServiceErrors(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
		field  string
	}{
		{"mismatch", &service.FieldError{Field: "password", Message: "Password fields didn't match.", Kind: service.ErrValidation}, http.StatusBadRequest, "password"},
		{"duplicate email", &service.FieldError{Field: "email", Message: "This field must be unique.", Kind: service.ErrUniqueness}, http.StatusConflict, "email"},
		{"internal", errors.New("db down"), http.StatusInternalServerError, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(mockAccountService)
			r := setupRouter(svc)
			svc.On("Register", mock.Anything, mock.Anything).Return(nil, nil, tc.err)

			w := serve(r, http.MethodPost, "/register/", `{
				"username": "u", "email": "u@example.com", "password": "a",
				"confirm_password": "b", "phone_number": 1
			}`, false)

			assert.Equal(t, tc.status, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.field, body["field"])
			assert.NotContains(t, body["error"], "db down")
		})
	}
}

func TestLogin_IsUnauthenticated(t *testing.T) {
	svc := new(mockAccountService)
	r := setupRouter(svc)
	svc.On("Login", mock.Anything, "demouser2@gmail.com", "demouser2345").
		Return(demoUser, &model.Token{Key: testToken, UserID: 27}, nil)

	w := serve(r, http.MethodPost, "/login/", `{"email": "demouser2@gmail.com", "password": "demouser2345"}`, false)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"user_id": 27, "name": "demouser2", "email": "demouser2@gmail.com",
		"phone_number": 9087654321, "token": "`+testToken+`"
	}`, w.Body.String())
	svc.AssertNotCalled(t, "AuthenticateToken", mock.Anything, mock.Anything)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := new(mockAccountService)
	r := setupRouter(svc)
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil, service.ErrInvalidCredentials)

	w := serve(r, http.MethodPost, "/login/", `{"email": "ghost@gmail.com", "password": "x"}`, false)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error": "invalid email or password"}`, w.Body.String())
}

func TestListUsers_OmitsPasswordHash(t *testing.T) {
	svc := new(mockAccountService)
	r := setupRouter(svc)
	expectAuthenticated(svc)
	svc.On("ListUsers", mock.Anything).Return([]model.User{
		*demoUser,
		{ID: 28, Username: "mina", Email: "mina@gmail.com", PasswordHash: "$2a$10$other", PhoneNumber: 9086765432},
	}, nil)

	w := serve(r, http.MethodGet, "/users/list/", "", true)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"id": 27, "username": "demouser2", "email": "demouser2@gmail.com", "phone_number": 9087654321},
		{"id": 28, "username": "mina", "email": "mina@gmail.com", "phone_number": 9086765432}
	]`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "$2a$")
}

func TestListUsers_RequiresToken(t *testing.T) {
	svc := new(mockAccountService)
	r := setupRouter(svc)

	w := serve(r, http.MethodGet, "/users/list/", "", false)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "ListUsers", mock.Anything)
}

func TestChangePassword(t *testing.T) {
	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			svc := new(mockAccountService)
			r := setupRouter(svc)
			expectAuthenticated(svc)
			svc.On("ChangePassword", mock.Anything, int64(27), "demouser123", "demouser@123").Return(demoUser, nil)

			w := serve(r, method, "/change-password/", `{"old_password": "demouser123", "new_password": "demouser@123"}`, true)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"status_code": 200, "message": "Password updated successfully"}`, w.Body.String())
			assert.NotContains(t, w.Body.String(), "demouser@123")
		})
	}
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	svc := new(mockAccountService)
	r := setupRouter(svc)
	expectAuthenticated(svc)
	svc.On("ChangePassword", mock.Anything, int64(27), "bad", "new").
		Return(nil, &service.FieldError{Field: "old_password", Message: "Wrong password.", Kind: service.ErrInvalidCredentials})

	w := serve(r, http.MethodPut, "/change-password/", `{"old_password": "bad", "new_password": "new"}`, true)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "Wrong password.", "field": "old_password"}`, w.Body.String())
}

func TestChangePassword_RequiresToken(t *testing.T) {
	svc := new(mockAccountService)
	r := setupRouter(svc)

	w := serve(r, http.MethodPut, "/change-password/", `{"old_password": "a", "new_password": "b"}`, false)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteUser(t *testing.T) {
	svc := new(mockAccountService)
	r := setupRouter(svc)
	expectAuthenticated(svc)
	svc.On("DeleteUser", mock.Anything, int64(28)).Return(nil)

	w := serve(r, http.MethodDelete, "/delete-user/28/", "", true)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	svc.AssertExpectations(t)
}

func TestDeleteUser_NotFound(t *testing.T) {
	svc := new(mockAccountService)
	r := setupRouter(svc)
	expectAuthenticated(svc)
	svc.On("DeleteUser", mock.Anything, int64(99)).Return(service.ErrUserNotFound)

	w := serve(r, http.MethodDelete, "/delete-user/99/", "", true)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteUser_InvalidID(t *testing.T) {
	svc := new(mockAccountService)
	r := setupRouter(svc)
	expectAuthenticated(svc)

	w := serve(r, http.MethodDelete, "/delete-user/abc/", "", true)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
}
