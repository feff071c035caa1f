package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timecircuits/internal/service"
)

func TestAuthHandlers_SignUpAndSignIn(t *testing.T) {
	auth := &mockAuth{signUpID: 42, genTokenToken: "tok123", parseID: 1}
	r := newTestRouter(&service.Service{Authorization: auth})

	w := do(r, http.MethodPost, "/auth/sign-up", `{"username":"doc","password":"88mph"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.EqualValues(t, 42, m["id"])
	assert.Equal(t, "doc", auth.lastSignUpUsername)

	w = do(r, http.MethodPost, "/auth/sign-in", `{"username":"doc","password":"88mph"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, "tok123", m["token"])

	w = do(r, http.MethodPost, "/auth/sign-in", `{"username":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlers_Failures(t *testing.T) {
	auth := &mockAuth{signUpErr: errors.New("username taken"), genTokenErr: errors.New("bad password")}
	r := newTestRouter(&service.Service{Authorization: auth})

	w := do(r, http.MethodPost, "/auth/sign-up", `{"username":"doc","password":"88mph"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "username taken")

	auth.signUpErr = service.ErrOperatorTaken
	w = do(r, http.MethodPost, "/auth/sign-up", `{"username":"doc","password":"88mph"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/auth/sign-in", `{"username":"doc","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid credentials")
}
