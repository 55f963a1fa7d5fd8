package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestKindOfUnwrapsChains(t *testing.T) {
	base := E(KindNotFound, "booking not found")
	wrapped := fmt.Errorf("handler: %w", base)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.True(t, errors.Is(wrapped, E(KindNotFound, "anything")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindInternal, "failed to load booking", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestRespondMapsKindsToStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
	}{
		{NotFound("booking"), http.StatusNotFound},
		{Forbidden("not yours"), http.StatusForbidden},
		{InvalidState("bad transition"), http.StatusConflict},
		{E(KindDuplicateAssignment, "already assigned"), http.StatusConflict},
		{E(KindIncompletePriceQuote, "missing quote"), http.StatusConflict},
		{E(KindValidation, "unknown service"), http.StatusBadRequest},
		{E(KindPaymentVerificationFailed, "bad signature"), http.StatusBadRequest},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Respond(c, tc.err)
		assert.Equal(t, tc.status, w.Code, "for %v", tc.err)
	}
}

func TestRespondHidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Respond(c, Wrap(KindInternal, "failed to load booking", errors.New("pq: relation missing")))

	assert.NotContains(t, w.Body.String(), "pq:")
	assert.Contains(t, w.Body.String(), string(KindInternal))
}
