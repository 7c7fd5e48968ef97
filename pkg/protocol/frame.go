// Package protocol defines the wire types shared between the kiosk
// coordination layer and the sensing/shop services. The JSON shapes match
// what the sensing service emits on both the poll endpoint and the push
// channel, so the same decoder serves both transports.
package protocol

import "encoding/json"

// Action is a discrete command derived from continuous gesture state.
// The sensing service emits a non-none value only on a semantic edge;
// steady-state frames carry ActionNone.
type Action string

const (
	ActionNone        Action = "none"
	ActionNavLeft     Action = "nav_left"
	ActionNavRight    Action = "nav_right"
	ActionDetail      Action = "detail"
	ActionDetailClose Action = "detail_close"
	ActionCapture     Action = "capture"
)

// Gesture names reported by the sensing service.
type Gesture string

const (
	GestureNone     Gesture = "none"
	GesturePointing Gesture = "pointing"
	GestureSwiping  Gesture = "swiping"
	GestureFist     Gesture = "fist"
	GestureOpenHand Gesture = "open_hand"
	GestureThumbsUp Gesture = "thumbs_up"
)

// GestureFrame is one periodic snapshot of sensed hand/face state.
// HandX is normalized to [0,1] and undefined when HandDetected is false.
// The hold-progress values are produced by the sensing service's own
// timers; clients must not reconstruct them locally.
type GestureFrame struct {
	HandDetected bool    `json:"hand_detected"`
	HandX        float64 `json:"hand_x"`
	HandY        float64 `json:"hand_y"`
	FingersOpen  int     `json:"fingers_open"`

	GestureName Gesture `json:"gesture_name"`
	IsThumbsUp  bool    `json:"is_thumbs_up"`
	IsOpenHand  bool    `json:"is_open_hand"`
	IsFist      bool    `json:"is_fist"`

	ThumbsUpProgress float64 `json:"thumbs_up_progress"`
	OpenHandProgress float64 `json:"open_hand_progress"`

	FaceDetected bool `json:"face_detected"`
	FaceCount    int  `json:"face_count"`

	LightModeHint bool    `json:"light_mode"`
	TimeUntilDark float64 `json:"time_until_dark"`

	Action Action `json:"action"`
}

// UnmarshalJSON decodes a frame and normalizes the legacy "idle" action
// value (emitted by older sensing services) to ActionNone.
func (f *GestureFrame) UnmarshalJSON(data []byte) error {
	type alias GestureFrame
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Action == "idle" || a.Action == "" {
		a.Action = ActionNone
	}
	*f = GestureFrame(a)
	return nil
}
