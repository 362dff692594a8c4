package idscan

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleReviewFlag(t *testing.T) {
	cases := []struct {
		nation, birth string
		review        bool
	}{
		{"FRA", "15/03/1990", false},
		{"FRA", "", true},
		{"", "15/03/1990", true},
		{"", "", true},
	}
	for _, tc := range cases {
		res := Assemble(tc.nation, 0.85, tc.birth, 0.90)
		assert.Equal(t, tc.review, res.NeedsHumanReview, "nation=%q birth=%q", tc.nation, tc.birth)
		assert.Equal(t, tc.nation == "", res.Nation == nil)
		assert.Equal(t, tc.birth == "", res.Birth == nil)
	}
}

func TestSanitizeSample(t *testing.T) {
	line := "DOB 15/03/1990\nID 0123456789\n"
	text := strings.Repeat(line, 20)
	got := SanitizeSample(text)

	assert.Len(t, []rune(got), SampleLength)
	assert.NotContains(t, got, "\n")
	assert.False(t, strings.ContainsAny(got, "0123456789"))
	assert.True(t, strings.HasPrefix(got, "DOB XX/XX/XXXX ID XXXXXXXXXX "))

	assert.Equal(t, "AB X", SanitizeSample("AB\n7"))
}

func TestExtractSampleCards(t *testing.T) {
	res := extractAt("...DOB 15/03/1990...", false, refNow)
	assert.Nil(t, res.Nation)
	assert.Equal(t, 0.0, res.NationConfidence)
	require.NotNil(t, res.Birth)
	assert.Equal(t, "15/03/1990", *res.Birth)
	assert.Equal(t, "DD/MM/YYYY", res.BirthFormat)
	assert.Equal(t, 0.90, res.BirthConfidence)
	assert.True(t, res.NeedsHumanReview)
	assert.Nil(t, res.Debug)

	res = extractAt("UNITED STATES OF AMERICA DOB 03/15/1990", false, refNow)
	require.NotNil(t, res.Nation)
	assert.Equal(t, "USA", *res.Nation)
	assert.Equal(t, 0.95, res.NationConfidence)
	require.NotNil(t, res.Birth)
	assert.Equal(t, "03/15/1990", *res.Birth)
	assert.Equal(t, "MM/DD/YYYY", res.BirthFormat)
	assert.False(t, res.NeedsHumanReview)

	res = extractAt("CARD NO 12-34-5678", false, refNow)
	assert.Nil(t, res.Birth)
	assert.Equal(t, 0.0, res.BirthConfidence)
	assert.True(t, res.NeedsHumanReview)
}

func TestExtractDebugJSON(t *testing.T) {
	res := extractAt("UNITED STATES\nDOB 03/15/1990", true, refNow)
	b, err := json.Marshal(Report{ScanResult: &res})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "USA", m["nation"])
	assert.Equal(t, []any{"03/15/1990"}, m["raw_matches"])
	assert.Equal(t, "UNITED STATES DOB XX/XX/XXXX", m["ocr_text_sample_sanitized"])
	assert.NotContains(t, m, "errors")
}

func TestReportJSONShapes(t *testing.T) {
	b, err := json.Marshal(ErrorReport(UnreadableMessage))
	require.NoError(t, err)
	assert.JSONEq(t, `{"errors":["File not found or unreadable."]}`, string(b))

	res := Assemble("", 0, "", 0)
	b, err = json.Marshal(Report{ScanResult: &res})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"nation": null,
		"nation_confidence": 0,
		"birth": null,
		"birth_format": "DD/MM/YYYY",
		"birth_confidence": 0,
		"needs_human_review": true
	}`, string(b))

	res = extractAt("NOTHING", true, refNow)
	b, err = json.Marshal(Report{ScanResult: &res})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"raw_matches":[]`)
}
