package thermal_test

import (
	"testing"

	"thermatiff/internal/thermal"
)

func TestParseCamera(t *testing.T) {
	cases := []struct {
		input   string
		want    thermal.Camera
		wantErr bool
	}{
		{input: "dji", want: thermal.CameraDJI},
		{input: "FLIR", want: thermal.CameraFLIR},
		{input: "  flir  ", want: thermal.CameraFLIR},
		{input: "seek", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := thermal.ParseCamera(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseCamera(%q) expected error, got %q", tc.input, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseCamera(%q) returned error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseCamera(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNewFrameRejectsInvalidDimensions(t *testing.T) {
	if _, err := thermal.NewFrame(0, 12); err == nil {
		t.Fatal("expected error for zero width")
	}
	if _, err := thermal.NewFrame(16, -1); err == nil {
		t.Fatal("expected error for negative height")
	}
}

func TestFrameAt(t *testing.T) {
	frame, err := thermal.NewFrame(3, 2)
	if err != nil {
		t.Fatalf("NewFrame returned error: %v", err)
	}
	frame.Pix[1*3+2] = 37.5
	if got := frame.At(2, 1); got != 37.5 {
		t.Fatalf("At(2,1) = %v, want 37.5", got)
	}
	if got := frame.At(0, 0); got != 0 {
		t.Fatalf("At(0,0) = %v, want 0", got)
	}
}

func TestFrameValidate(t *testing.T) {
	frame, err := thermal.NewFrame(4, 4)
	if err != nil {
		t.Fatalf("NewFrame returned error: %v", err)
	}
	if err := frame.Validate(); err != nil {
		t.Fatalf("Validate returned error for well-formed frame: %v", err)
	}

	frame.Pix = frame.Pix[:10]
	if err := frame.Validate(); err == nil {
		t.Fatal("expected error for truncated sample slice")
	}
}
