package polysoup

import (
	"testing"

	"github.com/akmonengine/polysoup/contact"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventCapture struct {
	events []Event
}

func (ec *eventCapture) capture(event Event) {
	ec.events = append(ec.events, event)
}

func (ec *eventCapture) reset() {
	ec.events = ec.events[:0]
}

func (ec *eventCapture) count(eventType EventType) int {
	n := 0
	for _, e := range ec.events {
		if e.Type() == eventType {
			n++
		}
	}
	return n
}

func touching(p Pair) Result {
	return Result{Pair: p, Contacts: []contact.FaceContact{{Face: 0}}}
}

func TestEvents_Subscribe(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}

	events.Subscribe(CONTACT_ENTER, capture.capture)
	events.Subscribe(CONTACT_ENTER, capture.capture)

	assert.Len(t, events.listeners[CONTACT_ENTER], 2)
}

func TestEvents_ZeroValue(t *testing.T) {
	var events Events
	capture := &eventCapture{}
	events.Subscribe(CONTACT_EXIT, capture.capture)

	p := Pair{Convex: unitCube(t, mgl64.Vec3{}), Static: &StaticBody{}}
	require.NotPanics(t, func() {
		events.recordResults([]Result{touching(p)})
		events.flush()
		events.recordResults(nil)
		events.flush()
	})
	assert.Equal(t, 1, capture.count(CONTACT_EXIT))
}

func TestEvents_EnterStayExit(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	for _, eventType := range []EventType{CONTACT_ENTER, CONTACT_STAY, CONTACT_EXIT} {
		events.Subscribe(eventType, capture.capture)
	}

	p := Pair{Convex: unitCube(t, mgl64.Vec3{}), Static: &StaticBody{}}

	frames := []struct {
		name    string
		results []Result
		want    EventType
	}{
		{"enter", []Result{touching(p)}, CONTACT_ENTER},
		{"stay", []Result{touching(p)}, CONTACT_STAY},
		{"exit", []Result{{Pair: p}}, CONTACT_EXIT},
		{"enter again", []Result{touching(p)}, CONTACT_ENTER},
	}

	for _, frame := range frames {
		capture.reset()
		events.recordResults(frame.results)
		events.flush()

		if assert.Len(t, capture.events, 1, frame.name) {
			assert.Equal(t, frame.want, capture.events[0].Type(), frame.name)
		}
	}
}

func TestEvents_Rejected(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	events.Subscribe(PAIR_REJECTED, capture.capture)
	events.Subscribe(CONTACT_ENTER, capture.capture)

	p := Pair{Convex: unitCube(t, mgl64.Vec3{}), Static: &StaticBody{}}
	events.recordResults([]Result{{Pair: p, Err: errors.New("boom")}})
	events.flush()

	assert.Equal(t, 1, capture.count(PAIR_REJECTED))
	assert.Zero(t, capture.count(CONTACT_ENTER))
}

func TestEvents_ForgetSkipsExit(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	events.Subscribe(CONTACT_EXIT, capture.capture)

	p := Pair{Convex: unitCube(t, mgl64.Vec3{}), Static: &StaticBody{}}
	events.recordResults([]Result{touching(p)})
	events.flush()

	events.forget(p.Convex)
	events.flush()

	assert.Empty(t, capture.events, "exit events for a removed convex")
}

func TestEvents_Flush_ClearsBuffer(t *testing.T) {
	events := NewEvents()
	p := Pair{Convex: unitCube(t, mgl64.Vec3{}), Static: &StaticBody{}}

	events.recordResults([]Result{touching(p)})
	require.Len(t, events.buffer, 1)
	events.flush()
	assert.Empty(t, events.buffer)
}

func TestScene_ContactEvents(t *testing.T) {
	scene, _ := newTestScene(t, nil)
	_, err := scene.AddStatic(createGround(t))
	require.NoError(t, err)

	cube := unitCube(t, mgl64.Vec3{0, 0, 0.505})
	scene.AddConvex(cube)

	capture := &eventCapture{}
	for _, eventType := range []EventType{CONTACT_ENTER, CONTACT_STAY, CONTACT_EXIT} {
		scene.Events.Subscribe(eventType, capture.capture)
	}

	for _, step := range []struct {
		z    float64
		want EventType
	}{
		{0.505, CONTACT_ENTER},
		{0.505, CONTACT_STAY},
		{5, CONTACT_EXIT},
	} {
		capture.reset()
		cube.Transform.Position = mgl64.Vec3{0, 0, step.z}
		_, err := scene.Collide(1.0 / 60)
		require.NoError(t, err)
		assert.Equal(t, 1, capture.count(step.want), "z=%v: got %v", step.z, capture.events)
	}
}
