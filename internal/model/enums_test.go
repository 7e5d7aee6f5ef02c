package model

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusSubmitted, StatusUnderReview, true},
		{StatusSubmitted, StatusHired, true},
		{StatusSubmitted, StatusWithdrawn, true},
		{StatusUnderReview, StatusSubmitted, false},
		{StatusUnderReview, StatusShortlisted, true},
		{StatusShortlisted, StatusUnderReview, false},
		{StatusShortlisted, StatusHired, true},
		{StatusRejected, StatusHired, false},
		{StatusHired, StatusWithdrawn, false},
		{StatusWithdrawn, StatusSubmitted, false},
		{"unknown", StatusHired, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v，期望 %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestIsTerminalStatus(t *testing.T) {
	for _, s := range []string{StatusRejected, StatusHired, StatusWithdrawn} {
		if !IsTerminalStatus(s) {
			t.Errorf("%s 应为终态", s)
		}
	}
	for _, s := range []string{StatusSubmitted, StatusUnderReview, StatusShortlisted, "bogus"} {
		if IsTerminalStatus(s) {
			t.Errorf("%s 不应为终态", s)
		}
	}
}

func TestEnumValidation(t *testing.T) {
	if !IsValidWorkField("backend") || IsValidWorkField("position") {
		t.Error("work_field 校验错误")
	}
	if !IsValidEmploymentType("internship") || IsValidEmploymentType("freelance") {
		t.Error("employment_type 校验错误")
	}
	if !IsValidLocation("chiang-mai") || IsValidLocation("tokyo") {
		t.Error("location 校验错误")
	}
}

func TestLocationLabel(t *testing.T) {
	if got := LocationLabel("phra-nakhon-si-ayutthaya"); got != "Phra Nakhon Si Ayutthaya" {
		t.Errorf("LocationLabel = %q", got)
	}
}
