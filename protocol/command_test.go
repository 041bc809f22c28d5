package protocol

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendPowerCommand(t *testing.T) {
	require.Equal(t, "p50 00 99 25\r", string(AppendPowerCommand(nil, []uint8{50, 0, 99, 25})))
	require.Equal(t, "p05 150\r", string(AppendPowerCommand(nil, []uint8{5, 150})))
	require.Equal(t, "p\r", string(AppendPowerCommand(nil, nil)))
}

func TestParsePowerCommand(t *testing.T) {
	values, err := ParsePowerCommand([]byte("p10 20 30 40\r"))
	require.NoError(t, err)
	require.Equal(t, []int{10, 20, 30, 40}, values)

	_, err = ParsePowerCommand([]byte("x10\r"))
	require.ErrorIs(t, err, ErrNotPowerCommand)

	_, err = ParsePowerCommand([]byte("p10  20\r"))
	require.ErrorIs(t, err, ErrBadToken)
}

func TestPowerCommandRoundTrip(t *testing.T) {
	line := AppendPowerCommand(nil, []uint8{1, 2, 200})
	values, err := ParsePowerCommand(line)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 200}, values)
}

func TestScanLines(t *testing.T) {
	scanner := bufio.NewScanner(bytes.NewReader([]byte("10\r\n20\r30\r\n\r\n40")))
	scanner.Split(ScanLines)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	require.Equal(t, []string{"10", "20", "30", "", "40"}, lines)
}
