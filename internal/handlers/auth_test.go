package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"regexp"
	"testing"

	"devconnector/internal/middleware"
	"devconnector/internal/models"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var resetLinkRe = regexp.MustCompile(`resetpassword/([A-Za-z0-9_-]+)`)

func TestRegister_SetsCookieAndReturnsToken(t *testing.T) {
	f := newAuthFixture(t)

	rec := httptest.NewRecorder()
	f.handler.Register(rec, jsonRequest(t, http.MethodPost, "/api/v1/auth/register", registerRequest{
		Name: "John", Email: "john@gmail.com", Password: "123456",
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Token)

	c := cookieNamed(rec, middleware.TokenCookie)
	require.NotNil(t, c)
	assert.Equal(t, env.Token, c.Value)
	assert.True(t, c.HttpOnly)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "John", "john@gmail.com")

	rec := httptest.NewRecorder()
	f.handler.Register(rec, jsonRequest(t, http.MethodPost, "/api/v1/auth/register", registerRequest{
		Name: "Other", Email: "john@gmail.com", Password: "123456",
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already exists", decodeEnvelope(t, rec).Error)
}

func TestRegister_AdminRoleRejected(t *testing.T) {
	f := newAuthFixture(t)

	rec := httptest.NewRecorder()
	f.handler.Register(rec, jsonRequest(t, http.MethodPost, "/api/v1/auth/register", registerRequest{
		Name: "Eve", Email: "eve@gmail.com", Password: "123456", Role: models.RoleAdmin,
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_BadJSON(t *testing.T) {
	f := newAuthFixture(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString("{"))
	f.handler.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON", decodeEnvelope(t, rec).Error)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "John", "john@gmail.com")

	t.Run("ok", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.Login(rec, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", loginRequest{Email: "john@gmail.com", Password: "123456"}))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, decodeEnvelope(t, rec).Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.Login(rec, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", loginRequest{Email: "john@gmail.com", Password: "nope!!"}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, cookieNamed(rec, middleware.TokenCookie))
	})

	t.Run("unknown email looks the same", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.Login(rec, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", loginRequest{Email: "ghost@gmail.com", Password: "123456"}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", decodeEnvelope(t, rec).Error)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.Login(rec, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", loginRequest{}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Email & Password Required", decodeEnvelope(t, rec).Error)
	})
}

func TestLogout_ClearsCookie(t *testing.T) {
	f := newAuthFixture(t)

	rec := httptest.NewRecorder()
	f.handler.Logout(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/logout", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	c := cookieNamed(rec, middleware.TokenCookie)
	require.NotNil(t, c)
	assert.Equal(t, "none", c.Value)
}

func TestGetMe(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "John", "john@gmail.com")

	rec := httptest.NewRecorder()
	f.handler.GetMe(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil), u))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"email":"john@gmail.com"`)

	rec = httptest.NewRecorder()
	f.handler.GetMe(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateDetails(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "John", "john@gmail.com")
	name := "Johnny"

	rec := httptest.NewRecorder()
	req := jsonRequest(t, http.MethodPut, "/api/v1/auth/updatedetails", models.UpdateDetailsRequest{Name: &name})
	f.handler.UpdateDetails(rec, asUser(req, u))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"name":"Johnny"`)
}

func TestForgotAndResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "John", "john@gmail.com")

	rec := httptest.NewRecorder()
	f.handler.ForgotPassword(rec, jsonRequest(t, http.MethodPost, "/api/v1/auth/forgotpassword", forgotPasswordRequest{Email: "john@gmail.com"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"Reset Password Email sent"`, string(decodeEnvelope(t, rec).Data))

	require.Len(t, f.mailer.sent, 1)
	assert.Contains(t, f.mailer.sent[0], "https://devconnector.test/api/v1/auth/resetpassword/")
	m := resetLinkRe.FindStringSubmatch(f.mailer.sent[0])
	require.Len(t, m, 2)

	reset := func(token string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := jsonRequest(t, http.MethodPut, "/api/v1/auth/resetpassword/"+token, resetPasswordRequest{Password: "654321"})
		f.handler.ResetPassword(rec, mux.SetURLVars(req, map[string]string{"resettoken": token}))
		return rec
	}

	rec = reset(m[1])
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, cookieNamed(rec, middleware.TokenCookie))

	// Токен одноразовый.
	rec = reset(m[1])
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid token", decodeEnvelope(t, rec).Error)

	rec = httptest.NewRecorder()
	f.handler.Login(rec, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", loginRequest{Email: "john@gmail.com", Password: "654321"}))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	rec := httptest.NewRecorder()
	f.handler.ForgotPassword(rec, jsonRequest(t, http.MethodPost, "/api/v1/auth/forgotpassword", forgotPasswordRequest{Email: "ghost@gmail.com"}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User Not Found with the given email", decodeEnvelope(t, rec).Error)
	assert.Empty(t, f.mailer.sent)
}

func TestForgotPassword_MailFailureRollsBack(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "John", "john@gmail.com")
	f.mailer.err = errBoom

	rec := httptest.NewRecorder()
	f.handler.ForgotPassword(rec, jsonRequest(t, http.MethodPost, "/api/v1/auth/forgotpassword", forgotPasswordRequest{Email: "john@gmail.com"}))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Sending Reset Password Email Failed", decodeEnvelope(t, rec).Error)

	stored, err := f.users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ResetToken)
	assert.Nil(t, stored.ResetTokenExpiry)
}

func TestResetLinkBase_FromRequest(t *testing.T) {
	h := &AuthHandler{}

	req := httptest.NewRequest(http.MethodPost, "http://api.local:5000/api/v1/auth/forgotpassword", nil)
	assert.Equal(t, "http://api.local:5000/api/v1/auth/resetpassword", h.resetLinkBase(req))

	req.Header.Set("X-Forwarded-Proto", "https, http")
	assert.Equal(t, "https://api.local:5000/api/v1/auth/resetpassword", h.resetLinkBase(req))
}

func TestUpdatePassword(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "John", "john@gmail.com")

	call := func(current string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := jsonRequest(t, http.MethodPut, "/api/v1/auth/updatepassword", updatePasswordRequest{CurrentPassword: current, NewPassword: "abcdef"})
		f.handler.UpdatePassword(rec, asUser(req, u))
		return rec
	}

	rec := call("wrong1")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Password is incorrect", decodeEnvelope(t, rec).Error)

	rec = call("123456")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeEnvelope(t, rec).Token)
}

func multipartAvatar(t *testing.T, field, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/v1/auth/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadAvatar(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "John", "john@gmail.com")

	rec := httptest.NewRecorder()
	f.handler.UploadAvatar(rec, asUser(multipartAvatar(t, "avatar", "Me.PNG", "image/png", []byte("png")), u))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	want := "avatar_" + u.ID.String() + ".png"
	assert.Equal(t, `"`+want+`"`, string(decodeEnvelope(t, rec).Data))
	assert.Equal(t, []string{want}, f.storage.keys)

	stored, err := f.users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, want, stored.Avatar)
}

func TestUploadAvatar_Rejects(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "John", "john@gmail.com")

	tests := []struct {
		name string
		req  *http.Request
		want string
	}{
		{"no file", multipartAvatar(t, "", "", "", nil), "No file uploaded"},
		{"not an image", multipartAvatar(t, "avatar", "a.txt", "text/plain", []byte("hi")), "Please upload an image file"},
		{"too big", multipartAvatar(t, "avatar", "a.png", "image/png", bytes.Repeat([]byte("x"), 2000)), "Image size must be less than 1000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			f.handler.UploadAvatar(rec, asUser(tt.req, u))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, decodeEnvelope(t, rec).Error)
		})
	}
	assert.Empty(t, f.storage.keys)
}

func TestListUsers_Paginates(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "A", "a@gmail.com")
	f.register(t, "B", "b@gmail.com")
	f.register(t, "C", "c@gmail.com")

	rec := httptest.NewRecorder()
	f.handler.ListUsers(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users?page=1&limit=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Count)
	assert.Equal(t, 2, *env.Count)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, &models.PageRef{Page: 2, Limit: 2}, env.Pagination.Next)
	assert.Nil(t, env.Pagination.Prev)
}

func TestDeleteUser(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "John", "john@gmail.com")

	del := func(id string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/"+id, nil)
		f.handler.DeleteUser(rec, mux.SetURLVars(req, map[string]string{"id": id}))
		return rec
	}

	assert.Equal(t, http.StatusOK, del(u.ID.String()).Code)
	assert.Equal(t, http.StatusNotFound, del(u.ID.String()).Code)
	assert.Equal(t, http.StatusNotFound, del("not-a-uuid").Code)
}
