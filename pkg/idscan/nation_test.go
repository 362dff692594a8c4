package idscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountriesLoaded(t *testing.T) {
	list, err := Countries()
	require.NoError(t, err)
	require.Len(t, list, 249)
	assert.Equal(t, "ABW", list[0].Alpha3)
	assert.Equal(t, "ZWE", list[len(list)-1].Alpha3)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].Alpha3, list[i].Alpha3, "reference list must stay in alpha-3 order")
	}
}

func TestParseCountriesRejectsBadRecords(t *testing.T) {
	_, err := parseCountries([]byte("countries:\n  - alpha_3: \"XX\"\n    name: \"Nowhere\"\n"))
	assert.Error(t, err)
	_, err = parseCountries([]byte("countries: []\n"))
	assert.Error(t, err)
}

func TestDetectNation(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		nation string
		conf   float64
	}{
		{"usa literal", "DRIVER LICENSE USA DOB 03/15/1990", "USA", 0.95},
		{"united states", "UNITED STATES OF AMERICA", "USA", 0.95},
		{"usa wins over earlier country", "FRANCE USA", "USA", 0.95},
		{"alpha-3 code", "REPUBLIQUE FRANCAISE FRA", "FRA", 0.85},
		{"full name", "BUNDESREPUBLIK GERMANY", "DEU", 0.85},
		{"first in reference order", "PASSPORT FRA DEU", "DEU", 0.85},
		// "KINGDOM" contains DOM, which precedes ESP.
		{"crude substring", "KINGDOM OF SPAIN ESP", "DOM", 0.85},
		{"month name collides with code", "BIRTH 15 MAR 1990", "MAR", 0.85},
		{"no token", "DOB 15/03/1990", "", 0},
		{"empty", "", "", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			nation, conf := DetectNation(tc.text)
			assert.Equal(t, tc.nation, nation)
			assert.Equal(t, tc.conf, conf)
		})
	}
}
