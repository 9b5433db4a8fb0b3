package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_GetCountryCode(t *testing.T) {
	testCases := []struct {
		phoneNumber     string
		wantCountryCode string
	}{
		{"+14155551234", "1"},
		{"+447911123456", "44"},
		{"+5511987654321", "55"},
		{"", "0"},
		{"not-a-number", "0"},
	}

	for _, tc := range testCases {
		t.Run(tc.phoneNumber, func(t *testing.T) {
			assert.Equal(t, tc.wantCountryCode, GetCountryCode(tc.phoneNumber))
		})
	}
}
