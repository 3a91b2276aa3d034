package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealflow-studio/engine/internal/models"
	appErr "github.com/dealflow-studio/engine/pkg/errors"
)

func TestNumberTextDecoding(t *testing.T) {
	cases := []struct {
		body    string
		want    *string
		cleared bool
		invalid bool
	}{
		{`{}`, nil, false, false},
		{`{"v":null}`, nil, true, false},
		{`{"v":""}`, nil, true, false},
		{`{"v":"  "}`, nil, true, false},
		{`{"v":1000000}`, ptr("1000000"), false, false},
		{`{"v":1e6}`, ptr("1000000"), false, false},
		{`{"v":2.5}`, ptr("2.5"), false, false},
		{`{"v":12345678901234567891}`, ptr("12345678901234567891"), false, false},
		{`{"v":"12345678901234567891"}`, ptr("12345678901234567891"), false, false},
		{`{"v":1.25e2}`, ptr("125"), false, false},
		{`{"v":25E-3}`, ptr("0.025"), false, false},
		{`{"v":-3.5e1}`, ptr("-35"), false, false},
		{`{"v":1e400}`, nil, false, true},
		{`{"v":"1,000,000"}`, ptr("1000000"), false, false},
		{`{"v":" 250000 "}`, ptr("250000"), false, false},
		{`{"v":"abc"}`, nil, false, true},
		{`{"v":"1.2.3"}`, nil, false, true},
		{`{"v":true}`, nil, false, true},
		{`{"v":[1]}`, nil, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.body, func(t *testing.T) {
			var out struct {
				V NumberText `json:"v"`
			}
			require.NoError(t, json.Unmarshal([]byte(tc.body), &out))
			got, err := out.V.Text("arrMin")
			if tc.invalid {
				require.Error(t, err)
				ae, _ := appErr.As(err)
				assert.Equal(t, "arrMin must be a number", ae.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.cleared, out.V.Cleared())
		})
	}
}

func TestNumberTextLengthCap(t *testing.T) {
	digits := strings.Repeat("9", MaxNumberLength)
	for _, body := range []string{
		`{"v":"` + digits + `"}`,
		`{"v":` + digits + `}`,
	} {
		var out struct {
			V NumberText `json:"v"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &out))
		got, err := out.V.Text("arrMin")
		require.NoError(t, err)
		assert.Equal(t, digits, *got)
	}

	for _, body := range []string{
		`{"v":"` + digits + `1"}`,
		`{"v":` + digits + `1}`,
		`{"v":1e32}`,
	} {
		t.Run(body, func(t *testing.T) {
			var out struct {
				V NumberText `json:"v"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &out))
			_, err := out.V.Text("arrMin")
			ae, ok := appErr.As(err)
			require.True(t, ok)
			assert.Equal(t, appErr.CodeInvalid, ae.Code)
			assert.Equal(t, "arrMin", ae.Field)
			assert.Equal(t, "arrMin must be at most 32 characters", ae.Message)
		})
	}
}

func TestNumberTextInt(t *testing.T) {
	v, err := Num("12").Int("teamMin")
	require.NoError(t, err)
	assert.Equal(t, 12, *v)

	_, err = Num("12.5").Int("teamMin")
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	none, err := NumberText{}.Int("teamMin")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestPipelineRequestInput(t *testing.T) {
	var req PipelineRequest
	body := `{"name":"FinTech","arrMin":"1000000","arrMax":5000000,"teamMin":"","teamMax":40}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	in, err := req.Input()
	require.NoError(t, err)
	assert.Equal(t, "1000000", *in.ArrMin)
	assert.Equal(t, "5000000", *in.ArrMax)
	assert.Nil(t, in.TeamMin)
	assert.Equal(t, 40, *in.TeamMax)

	req.TeamMin = Num("lots")
	_, err = req.Input()
	ae, ok := appErr.As(err)
	require.True(t, ok)
	assert.Equal(t, "teamMin", ae.Field)
}

func TestCompanyUpdateRequestPatch(t *testing.T) {
	var req CompanyUpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"status":"passed","arr":null,"notes":"not a fit"}`), &req))

	patch, err := req.Patch()
	require.NoError(t, err)
	assert.Equal(t, models.StatusPassed, *patch.Status)
	assert.True(t, patch.ClearArr)
	assert.False(t, patch.ClearTeamSize)
	assert.Equal(t, map[string]any{"status": "passed", "arr": nil, "notes": "not a fit"}, patch.Columns())
}

func TestCompanyUpdateRequestTrimsAndClearsText(t *testing.T) {
	var req CompanyUpdateRequest
	body := `{"location":"  Berlin  ","website":"   ","notes":"","description":" Robotics "}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	patch, err := req.Patch()
	require.NoError(t, err)
	assert.Equal(t, "Berlin", *patch.Location)
	assert.True(t, patch.ClearWebsite)
	assert.True(t, patch.ClearNotes)
	assert.False(t, patch.ClearLocation)
	assert.Equal(t, map[string]any{
		"location":    "Berlin",
		"description": "Robotics",
		"website":     nil,
		"notes":       nil,
	}, patch.Columns())
}

func TestCompanyCreateRequestBlankOptionalText(t *testing.T) {
	var req CompanyCreateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Acme","website":"  ","status":""}`), &req))

	in, err := req.Input()
	require.NoError(t, err)
	assert.Nil(t, in.Website)
	assert.Nil(t, in.Status)
}

func ptr[T any](v T) *T { return &v }
