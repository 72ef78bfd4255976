// internal/control/loop_test.go
package control

import "testing"

func gain(num, den int64) Proportional {
	return Proportional{KpNum: num, KpDen: den}
}

func TestNewLoop_Midpoints(t *testing.T) {
	l, err := NewLoop[int32, int16](0, 3000, -1000, 1000, gain(1, 1), nil, "ctl")
	if err != nil {
		t.Fatal(err)
	}
	if l.Setpoint() != 1500 {
		t.Fatalf("setpoint = %d, want 1500", l.Setpoint())
	}
	if l.Output() != 0 {
		t.Fatalf("output = %d, want 0", l.Output())
	}
	if l.Error() != 0 {
		t.Fatalf("error = %d, want 0", l.Error())
	}
}

func TestNewLoop_Validation(t *testing.T) {
	if _, err := NewLoop[int16, int16](10, 0, 0, 10, gain(1, 1), nil, ""); err == nil {
		t.Fatalf("expected error for inverted setpoint range")
	}
	if _, err := NewLoop[int16, int16](0, 10, 10, 0, gain(1, 1), nil, ""); err == nil {
		t.Fatalf("expected error for inverted output range")
	}
	if _, err := NewLoop[int16, int16](0, 10, 0, 10, nil, nil, ""); err == nil {
		t.Fatalf("expected error without updater")
	}
}

func TestSetSetpoint_Saturates(t *testing.T) {
	l, _ := NewLoop[int16, int16](-100, 100, -10, 10, gain(1, 1), nil, "")

	cases := []struct {
		name string
		in   int16
		want int16
		ok   bool
	}{
		{"inside", 42, 42, true},
		{"max", 100, 100, true},
		{"above", 101, 100, false},
		{"below", -300, -100, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := l.SetSetpoint(tc.in); got != tc.ok {
				t.Fatalf("SetSetpoint(%d) = %v, want %v", tc.in, got, tc.ok)
			}
			if l.Setpoint() != tc.want {
				t.Fatalf("setpoint = %d, want %d", l.Setpoint(), tc.want)
			}
		})
	}

	if l.SetOutput(11) || l.Output() != 10 {
		t.Fatalf("SetOutput must clamp to max, got %d", l.Output())
	}
	if !l.SetOutput(-3) || l.Output() != -3 {
		t.Fatalf("SetOutput in range, got %d", l.Output())
	}
}

func TestStep_ProportionalAndSaturation(t *testing.T) {
	l, _ := NewLoop[int32, int16](0, 10000, -1000, 1000, gain(1, 2), nil, "")
	l.SetSetpoint(2000)

	if out := l.Step(1000); out != 500 {
		t.Fatalf("out = %d, want 500", out)
	}
	if l.Error() != 1000 {
		t.Fatalf("error = %d, want 1000", l.Error())
	}

	// large error saturates instead of wrapping the int16 output
	l.SetSetpoint(10000)
	if out := l.Step(0); out != 1000 {
		t.Fatalf("out = %d, want saturated 1000", out)
	}
	l.SetSetpoint(0)
	if out := l.Step(10000); out != -1000 {
		t.Fatalf("out = %d, want saturated -1000", out)
	}
}

func TestStep_FeedForward(t *testing.T) {
	u := Proportional{FFNum: 1000, FFDen: 12000, KpNum: 1, KpDen: 10}
	l, _ := NewLoop[int32, int16](0, 12000, 0, 1000, u, nil, "")
	l.SetSetpoint(6000)

	// on target: feed-forward alone
	if out := l.Step(6000); out != 500 {
		t.Fatalf("out = %d, want 500", out)
	}
	// 1000 rpm short adds 100
	if out := l.Step(5000); out != 600 {
		t.Fatalf("out = %d, want 600", out)
	}
}

func TestStep_UpdaterFunc(t *testing.T) {
	var gotSP, gotErr int64
	u := UpdaterFunc(func(sp, err int64) int64 {
		gotSP, gotErr = sp, err
		return 7
	})
	l, _ := NewLoop[int8, int8](-100, 100, -10, 10, u, nil, "")
	l.SetSetpoint(-100)

	// int8 error of -200 must not wrap
	if out := l.Step(100); out != 7 {
		t.Fatalf("out = %d", out)
	}
	if gotSP != -100 || gotErr != -200 {
		t.Fatalf("updater saw sp=%d err=%d", gotSP, gotErr)
	}
}

func TestReset(t *testing.T) {
	l, _ := NewLoop[int16, int16](0, 100, 0, 100, gain(1, 1), nil, "")
	l.SetSetpoint(80)
	l.Step(0)

	l.Reset(20)
	if l.Setpoint() != 20 || l.Output() != 50 || l.Error() != 0 {
		t.Fatalf("after reset sp=%d out=%d err=%d", l.Setpoint(), l.Output(), l.Error())
	}
}
