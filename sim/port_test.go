package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"escctl/core"
)

func TestPortDeliversCommands(t *testing.T) {
	p, err := NewPort(core.Config{})
	require.NoError(t, err)
	defer p.Close()

	n, err := p.Write([]byte("p10 20 30 40\r"))
	require.NoError(t, err)
	require.Equal(t, 13, n)

	require.Eventually(t, func() bool {
		w := p.Widths()
		return w[0] == 10 && w[3] == 40
	}, 2*time.Second, 5*time.Millisecond)
}

func TestPortReadsEcho(t *testing.T) {
	p, err := NewPort(core.Config{ManualOverride: true})
	require.NoError(t, err)
	defer p.Close()

	p.SetButtons(1 << 5)

	buf := make([]byte, 16)
	got := ""
	for len(got) < 4 {
		n, err := p.Read(buf)
		require.NoError(t, err)
		got += string(buf[:n])
	}
	require.Equal(t, "10\r\n", got[:4])
}

func TestPortClose(t *testing.T) {
	p, err := NewPort(core.Config{})
	require.NoError(t, err)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	_, err = p.Write([]byte("p1\r"))
	require.ErrorIs(t, err, ErrPortClosed)

	_, err = p.Read(make([]byte, 4))
	require.Error(t, err)
}
