package common

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"refresh token size", 32},
		{"small", 4},
		{"zero", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := MakeRandHexString(tt.size)
			require.NoError(t, err)
			assert.Len(t, s, tt.size*2)
			_, err = hex.DecodeString(s)
			assert.NoError(t, err)
		})
	}
}

func TestMakeRandHexString_Distinct(t *testing.T) {
	a, err := MakeRandHexString(32)
	require.NoError(t, err)
	b, err := MakeRandHexString(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGenerateRandByteArray(t *testing.T) {
	buf := GenerateRandByteArray(24)
	assert.Len(t, buf, 24)
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte("SecurePass456")
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}

	WipeByteArray(nil)
}
