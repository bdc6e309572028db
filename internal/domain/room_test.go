package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoom(t *testing.T) {
	now := time.Now()
	room := NewRoom("room-1", "  Biologia 101 ", " fotossíntese ", now)

	assert.Equal(t, "room-1", room.ID)
	assert.Equal(t, "Biologia 101", room.Name)
	assert.Equal(t, "fotossíntese", room.Description)
	assert.Equal(t, now, room.CreatedAt)
}

func TestValidateRoom(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		room    *Room
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid room",
			room:    &Room{ID: "room-1", Name: "Biologia", CreatedAt: now},
			wantErr: false,
		},
		{
			name:    "missing ID",
			room:    &Room{Name: "Biologia", CreatedAt: now},
			wantErr: true,
			errMsg:  "ID",
		},
		{
			name:    "blank Name",
			room:    &Room{ID: "room-1", Name: "   ", CreatedAt: now},
			wantErr: true,
			errMsg:  "room name is required",
		},
		{
			name:    "nil room",
			room:    nil,
			wantErr: true,
			errMsg:  "nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRoom(tt.room)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
