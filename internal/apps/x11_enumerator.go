package apps

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/reelcap/reelcap/internal/geometry"
	"github.com/reelcap/reelcap/internal/logger"
)

// X11Enumerator discovers running applications by walking the X11 window
// tree and grouping windows by their WM_CLASS.
type X11Enumerator struct {
	conn *xgb.Conn
	root xproto.Window
}

// NewX11Enumerator connects to the X server and returns an application
// enumerator. Callers own the connection and must Close it.
func NewX11Enumerator() (*X11Enumerator, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	setup := xproto.Setup(conn)
	root := setup.DefaultScreen(conn).Root

	return &X11Enumerator{conn: conn, root: root}, nil
}

// Close closes the X server connection.
func (e *X11Enumerator) Close() {
	e.conn.Close()
}

// ListApplications walks the window tree and groups titled windows into
// applications by window class, preserving enumeration order.
func (e *X11Enumerator) ListApplications() ([]Application, error) {
	tree, err := xproto.QueryTree(e.conn, e.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query window tree: %w", err)
	}

	order := make([]string, 0)
	byClass := make(map[string]*Application)

	for _, child := range tree.Children {
		class := e.windowClass(child)
		if class == "" {
			continue
		}

		win, ok := e.windowInfo(child)
		if !ok {
			continue
		}

		app, exists := byClass[class]
		if !exists {
			app = &Application{
				ID:   class,
				Name: displayName(class),
				PID:  e.windowPID(child),
			}
			byClass[class] = app
			order = append(order, class)
		}
		app.Windows = append(app.Windows, win)
	}

	applications := make([]Application, 0, len(order))
	for _, class := range order {
		applications = append(applications, *byClass[class])
	}

	logger.WithComponent("apps").Debug().
		Int("count", len(applications)).
		Msg("Enumerated applications")

	return applications, nil
}

// ApplicationNamed returns the application whose display name exactly
// matches name. Matching is case-sensitive.
func (e *X11Enumerator) ApplicationNamed(name string) (Application, error) {
	applications, err := e.ListApplications()
	if err != nil {
		return Application{}, err
	}
	for _, app := range applications {
		if app.Name == name {
			return app, nil
		}
	}
	return Application{}, fmt.Errorf("%q: %w", name, ErrNotFound)
}

// windowInfo collects a window's title, geometry and visibility.
func (e *X11Enumerator) windowInfo(win xproto.Window) (Window, bool) {
	geom, err := xproto.GetGeometry(e.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return Window{}, false
	}

	// Window geometry is relative to the parent; translate to root space
	// so the frame lands in the global coordinate arrangement.
	x, y := int(geom.X), int(geom.Y)
	if trans, err := xproto.TranslateCoordinates(e.conn, win, e.root, 0, 0).Reply(); err == nil {
		x, y = int(trans.DstX), int(trans.DstY)
	}

	onScreen := false
	if attrs, err := xproto.GetWindowAttributes(e.conn, win).Reply(); err == nil {
		onScreen = attrs.MapState == xproto.MapStateViewable
	}

	return Window{
		Title: e.windowTitle(win),
		Frame: geometry.Rect{
			X:     x,
			Y:     y,
			W:     int(geom.Width),
			H:     int(geom.Height),
			Space: geometry.SpaceGlobal,
		},
		OnScreen: onScreen,
	}, true
}

// windowTitle reads _NET_WM_NAME, falling back to WM_NAME.
func (e *X11Enumerator) windowTitle(win xproto.Window) string {
	if title, err := e.getStringProperty(win, "_NET_WM_NAME"); err == nil && title != "" {
		return title
	}
	if title, err := e.getStringProperty(win, "WM_NAME"); err == nil {
		return title
	}
	return ""
}

// windowClass reads the class half of WM_CLASS (instance\0class\0).
func (e *X11Enumerator) windowClass(win xproto.Window) string {
	raw, err := e.getStringProperty(win, "WM_CLASS")
	if err != nil {
		return ""
	}
	parts := strings.Split(raw, "\x00")
	if len(parts) >= 2 && parts[1] != "" {
		return parts[1]
	}
	return parts[0]
}

// windowPID reads _NET_WM_PID.
func (e *X11Enumerator) windowPID(win xproto.Window) int {
	pidAtom, err := e.getAtom("_NET_WM_PID")
	if err != nil {
		return 0
	}
	reply, err := xproto.GetProperty(
		e.conn,
		false,
		win,
		pidAtom,
		xproto.AtomCardinal,
		0,
		1,
	).Reply()
	if err != nil || len(reply.Value) < 4 {
		return 0
	}
	return int(uint32(reply.Value[0]) |
		uint32(reply.Value[1])<<8 |
		uint32(reply.Value[2])<<16 |
		uint32(reply.Value[3])<<24)
}

// getAtom gets an atom ID by name
func (e *X11Enumerator) getAtom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(e.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Atom, nil
}

// getStringProperty gets a property value as a string
func (e *X11Enumerator) getStringProperty(win xproto.Window, atomName string) (string, error) {
	atom, err := e.getAtom(atomName)
	if err != nil {
		return "", err
	}

	reply, err := xproto.GetProperty(
		e.conn,
		false,
		win,
		atom,
		xproto.GetPropertyTypeAny,
		0,
		(1<<32)-1,
	).Reply()
	if err != nil {
		return "", err
	}
	if reply.ValueLen == 0 {
		return "", fmt.Errorf("empty property")
	}
	return string(reply.Value), nil
}

// displayName normalizes a window class into a user-facing name.
func displayName(class string) string {
	if class == "" {
		return class
	}
	return strings.ToUpper(class[:1]) + class[1:]
}
