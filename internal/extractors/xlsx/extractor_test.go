package xlsx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Model"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Max PSI"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "P-100"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 120))

	_, err := f.NewSheet("Empty")
	require.NoError(t, err)

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestExtractor_Metadata(t *testing.T) {
	e := New()
	assert.Equal(t, "xlsx", e.Name())
	assert.Contains(t, e.SupportedExtensions(), ".xlsx")
	assert.Contains(t, e.SupportedMIMETypes(), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

func TestExtract_Rows(t *testing.T) {
	out, err := New().Extract(context.Background(), &domain.RawFile{FileName: "specs.xlsx", Content: buildWorkbook(t)})
	require.NoError(t, err)
	assert.Equal(t, "## Sheet: Sheet1\nModel\tMax PSI\nP-100\t120", out)
}

func TestExtract_NotAWorkbook(t *testing.T) {
	_, err := New().Extract(context.Background(), &domain.RawFile{Content: []byte("nope")})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestExtract_Nil(t *testing.T) {
	_, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
