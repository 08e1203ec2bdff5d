// types/lamp_test.go

package types

import "testing"

func TestLampModePeriods(t *testing.T) {
	if LampOff.PeriodMs() != 0 || LampSolid.PeriodMs() != 0 {
		t.Fatal("static modes must report a zero period")
	}
	if LampBlink1Hz.PeriodMs() != 500 ||
		LampBlink2Hz.PeriodMs() != 250 ||
		LampBlink4Hz.PeriodMs() != 125 {
		t.Fatal("blink periods changed unexpectedly")
	}
	if LampOff.Blinking() || LampSolid.Blinking() || !LampBlink4Hz.Blinking() {
		t.Fatal("Blinking disagrees with PeriodMs")
	}
}

func TestLampModeValid(t *testing.T) {
	for m := LampOff; m <= LampBlink4Hz; m++ {
		if !m.Valid() {
			t.Fatal("declared mode reported invalid:", m.String())
		}
	}
	if LampMode(5).Valid() || LampMode(255).Valid() {
		t.Fatal("out-of-range mode reported valid")
	}
}

func TestLampModeNames(t *testing.T) {
	if LampOff.String() != "off" ||
		LampSolid.String() != "solid" ||
		LampBlink1Hz.String() != "blink_1hz" ||
		LampBlink2Hz.String() != "blink_2hz" ||
		LampBlink4Hz.String() != "blink_4hz" {
		t.Fatal("lamp mode wire names changed unexpectedly")
	}
	for m := LampOff; m <= LampBlink4Hz; m++ {
		got, ok := ParseLampMode(m.String())
		if !ok || got != m {
			t.Fatal("ParseLampMode does not round-trip:", m.String())
		}
	}
	if _, ok := ParseLampMode("strobe"); ok {
		t.Fatal("ParseLampMode accepted an unknown name")
	}
}

func TestPlayerIDNames(t *testing.T) {
	if Player1.String() != "p1" || Player2.String() != "p2" {
		t.Fatal("player capability names changed unexpectedly")
	}
	if p, ok := ParsePlayerID("p1"); !ok || p != Player1 {
		t.Fatal("ParsePlayerID failed for p1")
	}
	if p, ok := ParsePlayerID("p2"); !ok || p != Player2 {
		t.Fatal("ParsePlayerID failed for p2")
	}
	if _, ok := ParsePlayerID("p3"); ok {
		t.Fatal("ParsePlayerID accepted an unknown player")
	}
}
