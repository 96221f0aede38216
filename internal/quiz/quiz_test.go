package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuiz_JSONShape(t *testing.T) {
	raw := `{
		"quizTitle": "Kinematics Warm-up",
		"questions": [
			{"question": "SI unit of velocity?", "options": ["m/s", "m/s^2"], "correctAnswer": "m/s"}
		]
	}`

	var q Quiz
	require.NoError(t, json.Unmarshal([]byte(raw), &q))
	assert.Equal(t, "Kinematics Warm-up", q.Title)
	require.Len(t, q.Questions, 1)
	assert.Equal(t, "m/s", q.Questions[0].CorrectAnswer)
	assert.NoError(t, q.Validate())
}

func TestQuiz_Validate(t *testing.T) {
	tests := []struct {
		name    string
		quiz    Quiz
		wantErr bool
	}{
		{
			name: "valid",
			quiz: Quiz{Questions: []Question{{Question: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4"}}},
		},
		{
			name:    "no questions",
			quiz:    Quiz{Title: "Empty"},
			wantErr: true,
		},
		{
			name:    "missing text",
			quiz:    Quiz{Questions: []Question{{Options: []string{"a", "b"}, CorrectAnswer: "a"}}},
			wantErr: true,
		},
		{
			name:    "single option",
			quiz:    Quiz{Questions: []Question{{Question: "q", Options: []string{"a"}, CorrectAnswer: "a"}}},
			wantErr: true,
		},
		{
			name:    "duplicate options",
			quiz:    Quiz{Questions: []Question{{Question: "q", Options: []string{"a", "a"}, CorrectAnswer: "a"}}},
			wantErr: true,
		},
		{
			name:    "answer not an option",
			quiz:    Quiz{Questions: []Question{{Question: "q", Options: []string{"a", "b"}, CorrectAnswer: "c"}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.quiz.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
