package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuestion(t *testing.T) {
	now := time.Now()
	answer := "Brasília"
	q := NewQuestion("q-1", "room-1", "What is the capital of Brazil?", &answer, now)

	assert.Equal(t, "q-1", q.ID)
	assert.Equal(t, "room-1", q.RoomID)
	assert.Equal(t, "What is the capital of Brazil?", q.Question)
	require.NotNil(t, q.Answer)
	assert.Equal(t, "Brasília", *q.Answer)
}

func TestNewQuestion_NilAnswer(t *testing.T) {
	q := NewQuestion("q-1", "room-1", "Pergunta?", nil, time.Now())
	assert.Nil(t, q.Answer)
	assert.NoError(t, ValidateQuestion(q))
}

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name    string
		q       *Question
		wantErr error
		errMsg  string
	}{
		{name: "nil", q: nil, errMsg: "nil"},
		{name: "missing ID", q: &Question{RoomID: "r", Question: "q"}, errMsg: "ID"},
		{name: "missing RoomID", q: &Question{ID: "q", Question: "q"}, errMsg: "RoomID"},
		{name: "blank question", q: &Question{ID: "q", RoomID: "r", Question: " \n"}, wantErr: ErrEmptyQuestion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuestion(tt.q)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}
