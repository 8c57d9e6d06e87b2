package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     error
	}{
		{"valid", "sekret-pw1", nil},
		{"too short", "pw1", ErrPasswordTooShort},
		{"letters only", "justletters", ErrPasswordNotAlphanumeric},
		{"digits only", "1234567890", ErrPasswordNotAlphanumeric},
		{"exactly minimum", "abcdefg1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPassword(tt.password)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}
