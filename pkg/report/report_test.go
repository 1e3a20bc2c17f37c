package report_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/puppetcheck/pkg/diag"
	"github.com/dkoosis/puppetcheck/pkg/report"
)

func TestRender_EmitsSingleSection_When_OnlyOneListPopulated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fill func(s *diag.Store)
		want string
	}{
		{
			name: "errors",
			fill: func(s *diag.Store) { s.Error("foo", "i had an error") },
			want: "\033[31mThe following files have errors:\033[0m\n-- foo:\ni had an error\n",
		},
		{
			name: "warnings",
			fill: func(s *diag.Store) { s.Warning("foo", "i had a warning") },
			want: "\n\033[33mThe following files have warnings:\033[0m\n-- foo:\ni had a warning\n",
		},
		{
			name: "clean",
			fill: func(s *diag.Store) { s.Clean("foo") },
			want: "\n\033[32mThe following files have no errors or warnings:\033[0m\n-- foo\n",
		},
		{
			name: "ignored",
			fill: func(s *diag.Store) { s.Ignore("foo") },
			want: "\n\033[34mThe following files have unrecognized formats and therefore were not processed:\033[0m\n-- foo\n",
		},
		{
			name: "nothing",
			fill: func(*diag.Store) {},
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := diag.NewStore(diag.Settings{})
			tc.fill(store)
			assert.Equal(t, tc.want, report.New(report.Options{Color: true}).Render(store))
		})
	}
}

func TestRender_OrdersSectionsAndJoinsEntries(t *testing.T) {
	t.Parallel()

	store := diag.NewStore(diag.Settings{})
	store.Ignore("README.md")
	store.Clean("a.pp")
	store.Warning("b.rb", "b.rb:1:1: C: style")
	store.Error("c.json", "unexpected end of JSON input")
	store.Error("d.yaml", "did not find expected key")
	store.Clean("e.pp")

	var buf bytes.Buffer
	require.NoError(t, report.New(report.Options{}).Write(&buf, store))

	want := "The following files have errors:\n" +
		"-- c.json:\nunexpected end of JSON input\n\n-- d.yaml:\ndid not find expected key\n" +
		"\nThe following files have warnings:\n" +
		"-- b.rb:\nb.rb:1:1: C: style\n" +
		"\nThe following files have no errors or warnings:\n" +
		"-- a.pp\n-- e.pp\n" +
		"\nThe following files have unrecognized formats and therefore were not processed:\n" +
		"-- README.md\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteSARIF_MapsSeverities(t *testing.T) {
	t.Parallel()

	store := diag.NewStore(diag.Settings{})
	store.Error("c.json", "bad json")
	store.Warning("b.rb", "style")
	store.Clean("a.pp")
	store.Ignore("README.md")

	var buf bytes.Buffer
	require.NoError(t, report.WriteSARIF(&buf, store, "dev"))

	var log struct {
		Runs []struct {
			Results []struct {
				RuleID  string `json:"ruleId"`
				Level   string `json:"level"`
				Message struct {
					Text string `json:"text"`
				} `json:"message"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &log))
	require.Len(t, log.Runs, 1)
	results := log.Runs[0].Results
	require.Len(t, results, 3)
	assert.Equal(t, "error", results[0].Level)
	assert.Equal(t, "bad json", results[0].Message.Text)
	assert.Equal(t, "warning", results[1].Level)
	assert.Equal(t, "note", results[2].Level)
	assert.Equal(t, "a.pp has no errors or warnings", results[2].Message.Text)
}
