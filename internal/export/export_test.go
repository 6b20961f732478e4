package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhishek8211/energyiq/internal/calc"
	"github.com/Abhishek8211/energyiq/internal/device"
)

func sampleResult() calc.Result {
	devices := []device.Device{
		device.New("a", device.AC, 1, 1500, 4),
		device.New("b", device.Fan, 2, 75, 8),
	}
	r := calc.Compute(devices, 8, "₹", "india")
	r.Timestamp = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return r
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4, "header + 2 devices + total")

	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "AC", rows[1][0])
	assert.Equal(t, "1500", rows[1][2])
	assert.Equal(t, "180", rows[1][5])
	assert.Equal(t, "Fan", rows[2][0])
	assert.Equal(t, "TOTAL", rows[3][0])
	assert.Equal(t, "100", rows[3][7])
}

func TestWriteCSVEmptyResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, calc.Compute(nil, 8, "₹", "india")))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2, "header + total")
	assert.Equal(t, "0", rows[1][5])
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleResult()))
	out := buf.String()

	assert.Contains(t, out, "ENERGY CONSUMPTION REPORT")
	assert.Contains(t, out, "india")
	assert.Contains(t, out, "AC")
	assert.Contains(t, out, "Fan")
	assert.Contains(t, out, "Monthly cost:   ₹1,728.00")
	assert.Contains(t, out, "4h/day")
}

func TestShareBar(t *testing.T) {
	tests := []struct {
		pct        float64
		wantFilled int
	}{
		{0, 0},
		{50, 10},
		{100, 20},
		{120, 20},
	}
	for _, tt := range tests {
		bar := shareBar(tt.pct)
		assert.Equal(t, tt.wantFilled, strings.Count(bar, "█"), "pct %v", tt.pct)
		assert.Equal(t, 20-tt.wantFilled, strings.Count(bar, "░"), "pct %v", tt.pct)
	}
}
