package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPassword(t *testing.T) {
	assert.Error(t, Password("short"))
	assert.Error(t, Password(strings.Repeat("x", 129)))
	assert.NoError(t, Password("longenoughpassword"))
}

func TestUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid", "owner", false},
		{"valid with separators", "site_owner-1", false},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", 31), true},
		{"illegal characters", "owner!", true},
		{"leading underscore", "_owner", true},
		{"trailing hyphen", "owner-", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Username(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("owner@example.com"))
	assert.Error(t, Email("not-an-email"))
	assert.Error(t, Email("owner@"))
	assert.Error(t, Email(strings.Repeat("a", 250)+"@example.com"))
}
