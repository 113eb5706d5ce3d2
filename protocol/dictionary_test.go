package protocol

import "testing"

func TestDictionaryCodesUnique(t *testing.T) {
	seen := make(map[MessageCode]string)
	for _, e := range Dictionary {
		if prev, ok := seen[e.Code]; ok {
			t.Errorf("code %d assigned to both %s and %s", e.Code, prev, e.Name)
		}
		seen[e.Code] = e.Name
		if e.Name == "" {
			t.Errorf("code %d has no name", e.Code)
		}
	}
}

func TestReservedCodes(t *testing.T) {
	reserved := 0
	for _, e := range Dictionary {
		if e.Code.IsReserved() {
			reserved++
		}
	}
	if reserved != 3 {
		t.Errorf("Expected 3 reserved codes, got %d", reserved)
	}

	for _, c := range []MessageCode{0, 10, 35} {
		if !c.IsReserved() {
			t.Errorf("Expected %d to be reserved", c)
		}
	}
	for _, c := range []MessageCode{ACK, HANDSHAKE, CONNECTED, PATCH, MUTATION, BOOLEAN_OUTPUT, SERVO, DIGITAL_WRITE, BOOLEAN_INPUT} {
		if c.IsReserved() {
			t.Errorf("%s must not use a reserved code", c)
		}
	}
}

func TestSettingsAliasesPatch(t *testing.T) {
	if SETTINGS != PATCH {
		t.Errorf("SETTINGS = %d, want %d", SETTINGS, PATCH)
	}
}

func TestCodeNames(t *testing.T) {
	if SERVO.String() != "SERVO" {
		t.Errorf("Expected SERVO, got %s", SERVO.String())
	}
	if MessageCode(200).String() != "CODE_200" {
		t.Errorf("Expected CODE_200, got %s", MessageCode(200).String())
	}
}
