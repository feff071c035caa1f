package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := New()
	b := New()

	a.Travels.WithLabelValues("long").Inc()
	assert.Contains(t, scrape(t, a), `timecircuits_travels_total{kind="long"} 1`)
	assert.NotContains(t, scrape(t, b), `timecircuits_travels_total{kind="long"}`)
}

func TestHandlerServesMetrics(t *testing.T) {
	r := New()
	r.KeypadCommands.WithLabelValues("date", "valid").Inc()
	r.Rollovers.Inc()

	body := scrape(t, r)
	assert.True(t, strings.Contains(body, `timecircuits_keypad_commands_total{result="valid",shape="date"} 1`))
	assert.True(t, strings.Contains(body, "timecircuits_rollovers_total 1"))
}
