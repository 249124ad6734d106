package geometry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseArea_CustomRect(t *testing.T) {
	t.Parallel()

	area, err := ParseArea("0:0:1280:720")
	require.NoError(t, err)
	require.Equal(t, Custom(0, 0, 1280, 720), area)

	area, err = ParseArea("100:50:640:480")
	require.NoError(t, err)
	require.Equal(t, Custom(100, 50, 640, 480), area)
}

func TestParseArea_Centered(t *testing.T) {
	t.Parallel()

	area, err := ParseArea("center:800:600")
	require.NoError(t, err)
	require.Equal(t, Centered(800, 600), area)

	// Keyword matching is case-insensitive.
	area, err = ParseArea("CENTER:320:240")
	require.NoError(t, err)
	require.Equal(t, Centered(320, 240), area)
}

func TestParseArea_Invalid(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"1280x720",
		"0:0:1280",
		"0:0:1280:720:extra",
		"-10:0:1280:720",
		"0:0:-1280:720",
		"a:b:c:d",
		"center:800",
		"center:0:600",
		"center:800:0",
		"middle:800:600",
	}
	for _, in := range cases {
		_, err := ParseArea(in)
		require.Error(t, err, "input %q", in)

		var gerr *Error
		require.True(t, errors.As(err, &gerr), "input %q", in)
		require.Equal(t, ErrInvalidFormat, gerr.Kind, "input %q", in)
		require.Contains(t, gerr.Error(), "x:y:w:h", "the message should show the accepted grammars")
	}
}

func TestResolve_FullScreen(t *testing.T) {
	t.Parallel()

	frame := Rect{X: 0, Y: 0, W: 1920, H: 1080, Space: SpaceLocal}
	require.Equal(t, frame, Resolve(FullScreen(), frame))
}

func TestResolve_Centered(t *testing.T) {
	t.Parallel()

	frame := Rect{X: 0, Y: 0, W: 1920, H: 1080, Space: SpaceLocal}
	got := Resolve(Centered(800, 600), frame)

	require.Equal(t, Rect{X: 560, Y: 240, W: 800, H: 600, Space: SpaceLocal}, got)
	require.True(t, frame.Contains(got))

	// The centering error must stay within a pixel on each axis.
	leftGap, rightGap := got.X-frame.X, (frame.X+frame.W)-(got.X+got.W)
	require.LessOrEqual(t, abs(leftGap-rightGap), 1)
	topGap, bottomGap := got.Y-frame.Y, (frame.Y+frame.H)-(got.Y+got.H)
	require.LessOrEqual(t, abs(topGap-bottomGap), 1)
}

func TestResolve_CenteredOddSizes(t *testing.T) {
	t.Parallel()

	frame := Rect{W: 1367, H: 769, Space: SpaceLocal}
	got := Resolve(Centered(801, 601), frame)

	require.True(t, frame.Contains(got))
	require.Equal(t, 801, got.W)
	require.Equal(t, 601, got.H)
}

func TestValidate_OutOfBounds(t *testing.T) {
	t.Parallel()

	frame := Rect{W: 1920, H: 1080, Space: SpaceLocal}

	cases := []Area{
		Custom(1800, 0, 640, 480),  // runs off the right edge
		Custom(0, 1000, 640, 480),  // runs off the bottom edge
		Custom(0, 0, 3840, 2160),   // bigger than the screen
		Centered(2000, 600),        // centered but wider than the screen
	}
	for _, area := range cases {
		err := Validate(area, frame)
		require.Error(t, err, "area %s", area)

		var gerr *Error
		require.True(t, errors.As(err, &gerr))
		require.Equal(t, ErrOutOfBounds, gerr.Kind)
		require.Contains(t, gerr.Error(), "1920x1080", "the message should name the screen size")
	}
}

func TestValidate_EmptyRect(t *testing.T) {
	t.Parallel()

	frame := Rect{W: 1920, H: 1080, Space: SpaceLocal}
	err := Validate(Custom(0, 0, 0, 100), frame)
	require.Error(t, err)

	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	require.Equal(t, ErrTooSmall, gerr.Kind)
}

func TestValidate_SmallAreaIsAdvisoryOnly(t *testing.T) {
	t.Parallel()

	frame := Rect{W: 1920, H: 1080, Space: SpaceLocal}
	require.NoError(t, Validate(Custom(0, 0, 50, 50), frame))
}

func TestValidate_ExactFit(t *testing.T) {
	t.Parallel()

	frame := Rect{W: 1920, H: 1080, Space: SpaceLocal}
	require.NoError(t, Validate(Custom(0, 0, 1920, 1080), frame))
	require.NoError(t, Validate(Custom(1280, 600, 640, 480), frame))
}

func TestRect_SpaceConversions(t *testing.T) {
	t.Parallel()

	global := Rect{X: 2000, Y: 100, W: 640, H: 480, Space: SpaceGlobal}

	local := global.ToLocal(1920, 0)
	require.Equal(t, Rect{X: 80, Y: 100, W: 640, H: 480, Space: SpaceLocal}, local)

	// Round trip restores the original rectangle.
	require.Equal(t, global, local.ToGlobal(1920, 0))

	// Converting within the same space is a no-op.
	require.Equal(t, local, local.ToLocal(1920, 0))
	require.Equal(t, global, global.ToGlobal(1920, 0))
}

func TestRect_Center(t *testing.T) {
	t.Parallel()

	x, y := Rect{X: 100, Y: 200, W: 640, H: 480}.Center()
	require.Equal(t, 420, x)
	require.Equal(t, 440, y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
