package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	stsCSV = `match_id,match_name,market,selection,odds,bookmaker
E1,Legia vs Lech,over/under 2.5,over 2.5,2.5,sts
E2,Only Here,btts,yes,1.9,sts
`
	fortunaCSV = `match_id,match_name,market,selection,odds,bookmaker
E1,Legia vs Lech,under 2.5 goals,under 2.5,2.6,fortuna
`
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDetect_Text(t *testing.T) {
	a := writeFile(t, "sts.csv", stsCSV)
	b := writeFile(t, "fortuna.csv", fortunaCSV)

	out, err := run(t, "detect", "--feed", "sts="+a, "--feed", "fortuna="+b)
	require.NoError(t, err)
	assert.Contains(t, out, "Shared events: 1")
	assert.Contains(t, out, "E1 | Legia vs Lech | Over/Under 2.5 | +12.16%")
	assert.Contains(t, out, "sts: OVER @ 2.5")
	assert.Contains(t, out, "fortuna: UNDER @ 2.6")
}

func TestDetect_JSONWithoutTax(t *testing.T) {
	a := writeFile(t, "sts.csv", stsCSV)
	b := writeFile(t, "fortuna.csv", fortunaCSV)

	out, err := run(t, "detect", "--feed", "sts="+a, "--feed", "fortuna="+b, "--tax", "0", "--format", "json")
	require.NoError(t, err)

	var got struct {
		Surebets []struct {
			MatchID   string  `json:"match_id"`
			Submarket string  `json:"submarket"`
			Profit    float64 `json:"profit"`
		} `json:"surebets"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Surebets, 1)
	assert.Equal(t, "E1", got.Surebets[0].MatchID)
	assert.Equal(t, "over_under:2.5", got.Surebets[0].Submarket)
	assert.Equal(t, 27.45, got.Surebets[0].Profit)
}

func TestDetect_MinProfitFiltersEverything(t *testing.T) {
	a := writeFile(t, "sts.csv", stsCSV)
	b := writeFile(t, "fortuna.csv", fortunaCSV)

	out, err := run(t, "detect", "--feed", "sts="+a, "--feed", "fortuna="+b, "--min-profit", "20", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"surebets": []`)
}

func TestDetect_FromConfig(t *testing.T) {
	a := writeFile(t, "sts.csv", stsCSV)
	b := writeFile(t, "fortuna.csv", fortunaCSV)
	cfg := writeFile(t, "config.yaml", `engine:
  tax_rate: 0
feeds:
  - name: sts
    type: csv
    path: `+a+`
  - name: fortuna
    type: csv
    path: `+b+`
`)

	out, err := run(t, "detect", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "+27.45%")

	// Flags win over the config engine section.
	out, err = run(t, "detect", "--config", cfg, "--tax", "0.12")
	require.NoError(t, err)
	assert.Contains(t, out, "+12.16%")
}

func TestDetect_Errors(t *testing.T) {
	a := writeFile(t, "sts.csv", stsCSV)

	_, err := run(t, "detect", "--feed", "sts="+a)
	assert.ErrorContains(t, err, "at least two feeds")

	_, err = run(t, "detect", "--feed", "sts", "--feed", "b="+a)
	assert.ErrorContains(t, err, "expected name=path")

	_, err = run(t, "detect", "--feed", "a="+a, "--feed", "b="+a, "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, err = run(t, "detect", "--feed", "a="+a, "--feed", "b="+a, "--tax", "1")
	assert.ErrorContains(t, err, "tax rate")

	_, err = run(t, "detect", "--feed", "a="+a, "--feed", "b="+filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	good := writeFile(t, "good.yaml", "routing:\n  free_max: 2\n  premium_min: 3\n")
	out, err := run(t, "config", "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "ok (0 feeds, tax 12.00%)")
	assert.Contains(t, out, "warning: profits in (2.00, 3.00)")

	bad := writeFile(t, "bad.yaml", "engine:\n  tax_rate: 1.5\n")
	_, err = run(t, "config", "validate", bad)
	assert.ErrorContains(t, err, "invalid config")

	_, err = run(t, "config", "validate")
	assert.Error(t, err)
}

func TestConfigShow_MasksSecrets(t *testing.T) {
	path := writeFile(t, "c.yaml", "telegram:\n  bot_token: secret-token\n")
	out, err := run(t, "config", "show", path)
	require.NoError(t, err)
	assert.NotContains(t, out, "secret-token")
	assert.Regexp(t, `bot_token: ['"]\*\*\*['"]`, out)
	assert.Contains(t, out, "tax_rate: 0.12")
}
