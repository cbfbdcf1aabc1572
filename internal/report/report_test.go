package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/abhisek/qgen/internal/audit"
	"github.com/abhisek/qgen/internal/question"
	"github.com/abhisek/qgen/internal/supervisor"
)

func sampleResult(t *testing.T) *supervisor.Result {
	t.Helper()
	sc, err := question.NewSingleChoice("Which is prime?", question.Basic,
		[4]string{"4", "6", "7", "9"}, "C", "7 is prime.", []string{"primes"})
	require.NoError(t, err)
	fi, err := question.NewOpenEnded(question.FillIn, "2^10 = ____", question.Hard, "1024", "Double ten times.", []string{"powers"})
	require.NoError(t, err)

	log := []supervisor.Outcome{
		{Round: 1, Index: 0, Question: sc, Accepted: true, Verdict: audit.Verdict{IsValid: true, Score: 92, Summary: "good"}},
		{Round: 1, Index: 1, Question: fi, Verdict: audit.Verdict{IsValid: false, Score: 40, Issues: []string{"answer is wrong"}}},
		{Round: 2, Index: 0, Question: fi, Verdict: audit.ParseFailure(errors.New("bad json"), "junk")},
	}
	res := supervisor.Aggregate(2, []question.Question{sc}, log, 2)
	res.Rounds = []supervisor.RoundReport{
		{Number: 1, Requested: 2, Generated: 2, Accepted: 1},
		{Number: 2, Requested: 1, Generated: 1},
	}
	return res
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleResult(t)))
	out := buf.String()

	for _, want := range []string{
		"partial_success",
		"accepted 1/2",
		"rounds 2",
		"degraded 1",
		"Which is prime?",
		"C. 7",
		"Rejected",
		"answer is wrong",
		audit.ParseFailureIssue,
	} {
		assert.Contains(t, out, want)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult(t), "run-1"))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "run-1", doc.RunID)
	assert.Equal(t, supervisor.StatusPartialSuccess, doc.Outcome)
	assert.Equal(t, 2, doc.GenerationAttempts)
	require.Len(t, doc.Questions, 1)
	assert.Equal(t, []string{"A. 4", "B. 6", "C. 7", "D. 9"}, doc.Questions[0].Options)
	require.Len(t, doc.AuditResults, 3)
	assert.Equal(t, "2^10 = ____", doc.AuditResults[1].Question)
	assert.True(t, doc.AuditResults[2].Verdict.Degraded)
	assert.Equal(t, supervisor.Summary{Total: 3, Accepted: 1, Rejected: 2, Degraded: 1}, doc.Summary)
}

func TestWorkbook(t *testing.T) {
	f, err := Workbook(sampleResult(t))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{QuestionsSheet, AuditSheet}, f.GetSheetList())

	rows, err := f.GetRows(QuestionsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Question", rows[0][3])
	assert.Equal(t, "Which is prime?", rows[1][3])
	assert.Equal(t, "C", rows[1][5])

	rows, err = f.GetRows(AuditSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "40", rows[2][5])
	assert.Equal(t, "answer is wrong", rows[2][6])
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteWorkbook(path, sampleResult(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(AuditSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}
