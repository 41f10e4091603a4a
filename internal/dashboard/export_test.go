package dashboard

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gokatarajesh/lgs-tracker/internal/curriculum"
)

func TestExportWorkbook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed("u1", curriculum.Math, 15, 5, 0, f.now.Add(-2*time.Hour))
	f.seed("u1", curriculum.Turkish, 18, 2, 0, f.now.Add(-time.Hour))
	f.seed("u2", curriculum.Science, 20, 0, 0, f.now)
	_, err := f.svc.RecordExam(ctx, "u1", lgsExamDoc(16))
	require.NoError(t, err)

	rep, err := f.svc.Export(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rep.Tests, 2)
	assert.Equal(t, curriculum.Turkish, rep.Tests[0].Subject)
	require.Len(t, rep.Exams, 1)

	var buf bytes.Buffer
	require.NoError(t, f.svc.WriteWorkbook(&buf, rep))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()
	assert.Equal(t, []string{TestsSheet, ExamsSheet}, book.GetSheetList())

	tests, err := book.GetRows(TestsSheet)
	require.NoError(t, err)
	require.Len(t, tests, 3)
	assert.Equal(t, "Subject", tests[0][1])
	assert.Equal(t, []string{"2025-03-10 17:00", curriculum.Turkish, "18", "2", "0", "17.5", "90", "high"}, tests[1][:8])

	exams, err := book.GetRows(ExamsSheet)
	require.NoError(t, err)
	require.Len(t, exams, 2)
	assert.Equal(t, "Türkçe Net", exams[0][3])
	assert.Equal(t, "Composite", exams[0][len(exams[0])-1])
	assert.Equal(t, "15", exams[1][3])
	assert.Equal(t, "111.7", exams[1][len(exams[1])-1])
}

func TestExportHandler(t *testing.T) {
	h, f := newHandlers(t)
	f.seed("u1", curriculum.Math, 15, 5, 0, f.now.Add(-time.Hour))

	rec := serve(h.Export, http.MethodGet, "/v1/export.xlsx", "", "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "lgs-report.xlsx")

	book, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows(TestsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rec = serve(h.Export, http.MethodGet, "/v1/export.xlsx", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
