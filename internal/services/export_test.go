package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCatalogExporter_WriteXLSX(t *testing.T) {
	var buf bytes.Buffer

	n, err := NewCatalogExporter(sampleCatalog()).WriteXLSX(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Products")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "Title", rows[0][1])
	assert.Equal(t, "Mascara", rows[1][1])
	assert.Equal(t, "beauty", rows[1][2])
	assert.Equal(t, "Mystery", rows[4][1])
}
