package structured

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanzheng/ragserver/internal/chat"
)

type scriptedModel struct {
	replies  []string
	err      error
	calls    int
	lastUser string
}

func (m *scriptedModel) Generate(_ context.Context, _ string, userMessage string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.lastUser = userMessage
	reply := m.replies[m.calls%len(m.replies)]
	m.calls++
	return reply, nil
}

func TestActorFilms(t *testing.T) {
	model := &scriptedModel{replies: []string{
		`{"actor": "Tom Hanks", "movies": ["Forrest Gump", "Cast Away"]}`,
	}}
	svc := NewService(model, nil)

	got, err := svc.ActorFilms(context.Background(), "Tom Hanks", 0)
	require.NoError(t, err)
	assert.Equal(t, "Tom Hanks", got.Actor)
	assert.Equal(t, []string{"Forrest Gump", "Cast Away"}, got.Movies)
	assert.Equal(t, 1, model.calls)
}

func TestActorFilmsCountInPrompt(t *testing.T) {
	model := &scriptedModel{replies: []string{
		`{"actor": "Tom Hanks", "movies": ["Big", "Philadelphia", "Apollo 13"]}`,
	}}
	svc := NewService(model, nil)

	_, err := svc.ActorFilms(context.Background(), "Tom Hanks", 3)
	require.NoError(t, err)
	assert.Contains(t, model.lastUser, "List 3 well-known movies")
}

func TestActorFilmsDefaultCount(t *testing.T) {
	model := &scriptedModel{replies: []string{
		`{"actor": "Tom Hanks", "movies": []}`,
	}}
	svc := NewService(model, nil)

	_, err := svc.ActorFilms(context.Background(), "Tom Hanks", 0)
	require.NoError(t, err)
	assert.Contains(t, model.lastUser, "List 5 well-known movies")
}

func TestActorFilmsBlankActor(t *testing.T) {
	svc := NewService(&scriptedModel{}, nil)
	_, err := svc.ActorFilms(context.Background(), "  ", 5)
	assert.ErrorIs(t, err, chat.ErrBlankMessage)
}

func TestWeather(t *testing.T) {
	model := &scriptedModel{replies: []string{
		`{"city": "Beijing", "month": "January", "averageTemperature": -3.5, "description": "cold and dry"}`,
	}}
	svc := NewService(model, nil)

	got, err := svc.Weather(context.Background(), "Beijing", "January")
	require.NoError(t, err)
	assert.Equal(t, "Beijing", got.City)
	assert.InDelta(t, -3.5, got.AverageTemperature, 1e-9)
}

func TestWeatherBlankInput(t *testing.T) {
	svc := NewService(&scriptedModel{}, nil)

	_, err := svc.Weather(context.Background(), "", "January")
	assert.ErrorIs(t, err, chat.ErrBlankMessage)

	_, err = svc.Weather(context.Background(), "Beijing", " ")
	assert.ErrorIs(t, err, chat.ErrBlankMessage)
}

func TestGenerateRetriesOnMalformedJSON(t *testing.T) {
	model := &scriptedModel{replies: []string{
		"sorry, here is the data you asked for",
		`{"actor": "A", "movies": []}`,
	}}
	svc := NewService(model, nil)

	got, err := svc.ActorFilms(context.Background(), "A", 0)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Actor)
	assert.Equal(t, 2, model.calls)
}

func TestGenerateGivesUpAfterThreeAttempts(t *testing.T) {
	model := &scriptedModel{replies: []string{"not json"}}
	svc := NewService(model, nil)

	_, err := svc.ActorFilms(context.Background(), "A", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedOutput)
	assert.Equal(t, 3, model.calls)
}

func TestGenerateModelFailureNotRetried(t *testing.T) {
	boom := errors.New("model offline")
	model := &scriptedModel{err: boom}
	svc := NewService(model, nil)

	_, err := svc.ActorFilms(context.Background(), "A", 0)
	assert.ErrorIs(t, err, boom)
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare json", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fenced with language", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  {\"a\": 1}\n", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFences(tt.input))
		})
	}
}
