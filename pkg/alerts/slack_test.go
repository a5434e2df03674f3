package alerts_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/practicehq/planbudget/pkg/alerts"
)

type slackCapture struct {
	Channel     string `json:"channel"`
	Attachments []struct {
		Color  string `json:"color"`
		Title  string `json:"title"`
		Fields []struct {
			Title string `json:"title"`
			Value string `json:"value"`
		} `json:"fields"`
		Footer string `json:"footer"`
	} `json:"attachments"`
}

func TestSlackNotifier_Send(t *testing.T) {
	var got slackCapture
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	n := alerts.NewSlackNotifier(srv.URL, "#plan-budgets")
	alert := sampleAlert()
	alert.Level = alerts.AlertCritical
	alert.CriticalItems = []string{"A1", "C3"}
	require.NoError(t, n.Send(t.Context(), alert))

	assert.Equal(t, "#plan-budgets", got.Channel)
	require.Len(t, got.Attachments, 1)
	att := got.Attachments[0]
	assert.Equal(t, "#ff0000", att.Color)
	assert.Equal(t, "Plan budget critical", att.Title)
	assert.Equal(t, "planbudget", att.Footer)

	var criticalField string
	for _, f := range att.Fields {
		if f.Title == "Critical items" {
			criticalField = f.Value
		}
	}
	assert.Equal(t, "A1, C3", criticalField)
}

func TestSlackNotifier_LevelColors(t *testing.T) {
	cases := []struct {
		level alerts.AlertLevel
		color string
	}{
		{alerts.AlertWarning, "#ff9900"},
		{alerts.AlertCritical, "#ff0000"},
		{alerts.AlertExceeded, "#cc0000"},
	}

	for _, tc := range cases {
		t.Run(string(tc.level), func(t *testing.T) {
			var got slackCapture
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				require.NoError(t, json.Unmarshal(body, &got))
				w.WriteHeader(http.StatusOK)
			}))
			t.Cleanup(srv.Close)

			n := alerts.NewSlackNotifier(srv.URL, "")
			alert := sampleAlert()
			alert.Level = tc.level
			require.NoError(t, n.Send(t.Context(), alert))
			require.Len(t, got.Attachments, 1)
			assert.Equal(t, tc.color, got.Attachments[0].Color)
		})
	}
}

func TestSlackNotifier_NonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	n := alerts.NewSlackNotifier(srv.URL, "")
	err := n.Send(t.Context(), sampleAlert())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSlackNotifier_Name(t *testing.T) {
	assert.Equal(t, "slack", alerts.NewSlackNotifier("http://example.com", "").Name())
}
