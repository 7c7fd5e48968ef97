package protocol

import (
	"encoding/json"
	"testing"
)

func TestMessage_FrameRoundTrip(t *testing.T) {
	frame := GestureFrame{
		HandDetected:     true,
		HandX:            0.42,
		GestureName:      GestureThumbsUp,
		IsThumbsUp:       true,
		ThumbsUpProgress: 0.6,
		Action:           ActionNavLeft,
	}

	msg, err := NewMessage(TypeFrame, frame)
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if msg.Timestamp == 0 {
		t.Error("timestamp not set")
	}

	data, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	parsed, err := ParseMessage(data)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if parsed.Type != TypeFrame {
		t.Fatalf("type: got %q, want frame", parsed.Type)
	}

	got, err := parsed.GetFrame()
	if err != nil {
		t.Fatalf("GetFrame: %v", err)
	}
	if got.HandX != 0.42 || got.Action != ActionNavLeft {
		t.Errorf("frame mismatch: %+v", got)
	}
}

func TestMessage_GetFrameRejectsWrongType(t *testing.T) {
	msg, err := NewMessage(TypePing, nil)
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if _, err := msg.GetFrame(); err == nil {
		t.Error("GetFrame accepted a ping message")
	}
}

func TestMessage_StatusPayload(t *testing.T) {
	msg, err := NewMessage(TypeStatus, StatusData{Signal: false, Message: "camera lost"})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}

	status, err := msg.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.Signal {
		t.Error("signal: got true, want false")
	}
	if status.Message != "camera lost" {
		t.Errorf("message: got %q", status.Message)
	}
}

func TestGestureFrame_NormalizesLegacyIdle(t *testing.T) {
	cases := map[string]string{
		"idle":    `{"hand_detected":false,"action":"idle"}`,
		"missing": `{"hand_detected":false}`,
		"empty":   `{"hand_detected":false,"action":""}`,
	}
	for name, payload := range cases {
		var frame GestureFrame
		if err := json.Unmarshal([]byte(payload), &frame); err != nil {
			t.Fatalf("%s: unmarshal: %v", name, err)
		}
		if frame.Action != ActionNone {
			t.Errorf("%s: action %q, want none", name, frame.Action)
		}
	}
}

func TestGestureFrame_PreservesRealActions(t *testing.T) {
	var frame GestureFrame
	err := json.Unmarshal([]byte(`{"action":"capture","is_fist":false}`), &frame)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if frame.Action != ActionCapture {
		t.Errorf("action: got %q, want capture", frame.Action)
	}
}
