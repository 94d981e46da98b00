package services

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurora/models"
)

func TestParseEventText_Success(t *testing.T) {
	ai := repliesWith(`{"title": "Cita médico", "description": "Revisión anual",
		"location": "Clínica Centro", "start_time": "2026-03-03T10:00:00Z",
		"end_time": "2026-03-03T10:30:00Z", "all_day": false, "priority": 3,
		"category_hint": "Health"}`)

	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	res := ParseEventText(context.Background(), ai, "médico mañana a las 10", now, time.UTC)
	require.True(t, res.Success)
	assert.True(t, res.UsedAI)
	require.NotNil(t, res.Event)
	assert.Equal(t, "Cita médico", res.Event.Title)
	assert.Equal(t, "Health", res.Event.CategoryHint)
	assert.Equal(t, 3, res.Event.Priority)
	assert.True(t, res.Event.StartTime.Equal(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, 30*time.Minute, res.Event.EndTime.Sub(res.Event.StartTime))
}

func TestParseEventText_NaiveTimestampsReadInLocation(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	ai := repliesWith(`{"title": "Cena", "start_time": "2026-03-06T21:00:00", "end_time": "2026-03-06T23:00:00"}`)

	res := ParseEventText(context.Background(), ai, "cena el viernes", time.Now(), madrid)
	require.True(t, res.Success)
	assert.Equal(t, madrid, res.Event.StartTime.Location())
	assert.Equal(t, 21, res.Event.StartTime.Hour())
}

func TestParseEventText_EndBeforeStartGetsAnHour(t *testing.T) {
	ai := repliesWith(`{"title": "Gym", "start_time": "2026-03-03T18:00:00Z", "end_time": "2026-03-03T17:00:00Z"}`)

	res := ParseEventText(context.Background(), ai, "gym", time.Now(), time.UTC)
	require.True(t, res.Success)
	assert.Equal(t, time.Hour, res.Event.EndTime.Sub(res.Event.StartTime))
}

func TestParseEventText_PriorityClamped(t *testing.T) {
	cases := []struct {
		raw  int
		want int
	}{
		{9, models.PriorityMax},
		{0, models.PriorityMin},
		{-2, models.PriorityMin},
	}
	for _, tc := range cases {
		ai := repliesWith(`{"title": "x", "start_time": "2026-03-03T09:00:00Z", "end_time": "2026-03-03T10:00:00Z", "priority": ` + strconv.Itoa(tc.raw) + `}`)
		res := ParseEventText(context.Background(), ai, "x", time.Now(), time.UTC)
		require.True(t, res.Success)
		assert.Equal(t, tc.want, res.Event.Priority)
	}
}

func TestParseEventText_AIFailure(t *testing.T) {
	res := ParseEventText(context.Background(), brokenAI(), "comida con Ana", time.Now(), time.UTC)
	assert.False(t, res.Success)
	assert.False(t, res.UsedAI)
	assert.Nil(t, res.Event)
	assert.NotEmpty(t, res.Message)
}

func TestParseEventText_UnusableReply(t *testing.T) {
	cases := map[string]string{
		"prose":         "I could not find a date in that text.",
		"missing title": `{"start_time": "2026-03-03T09:00:00Z"}`,
		"missing start": `{"title": "x"}`,
		"bad timestamp": `{"title": "x", "start_time": "someday"}`,
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			res := ParseEventText(context.Background(), repliesWith(reply), "texto", time.Now(), time.UTC)
			assert.False(t, res.Success)
			assert.NotEmpty(t, res.Message)
		})
	}
}

func TestParseEventText_EmptyText(t *testing.T) {
	called := false
	ai := testAI(doerFunc(func(*http.Request) (*http.Response, error) {
		called = true
		return jsonResponse(http.StatusOK, completionBody("{}")), nil
	}))

	res := ParseEventText(context.Background(), ai, "   ", time.Now(), time.UTC)
	assert.False(t, res.Success)
	assert.False(t, called, "blank input should not reach the model")
}
