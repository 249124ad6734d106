package apps

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reelcap/reelcap/internal/geometry"
)

func TestDisplayName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Chrome", displayName("chrome"))
	require.Equal(t, "Firefox", displayName("Firefox"))
	require.Equal(t, "X-terminal-emulator", displayName("x-terminal-emulator"))
	require.Equal(t, "", displayName(""))
}

func TestNames(t *testing.T) {
	t.Parallel()

	applications := []Application{
		{Name: "Chrome"},
		{Name: "Terminal"},
		{Name: "Slack"},
	}
	require.Equal(t, []string{"Chrome", "Terminal", "Slack"}, Names(applications))
	require.Empty(t, Names(nil))
}

func TestApplicationString(t *testing.T) {
	t.Parallel()

	app := Application{
		Name: "Chrome",
		PID:  4242,
		Windows: []Window{
			{Title: "Inbox", Frame: geometry.Rect{W: 1280, H: 800, Space: geometry.SpaceGlobal}},
		},
	}
	require.Equal(t, "Chrome (pid 4242, 1 windows)", app.String())
}
