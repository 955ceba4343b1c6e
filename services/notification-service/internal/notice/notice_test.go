package notice

import (
	"strings"
	"testing"
)

func TestStatusLabel(t *testing.T) {
	cases := map[string]string{
		"for_mediation":    "For Mediation",
		"for_conciliation": "For Conciliation",
		"settled":          "Settled",
		"referred":         "Referred",
		"":                 "",
	}
	for in, want := range cases {
		if got := StatusLabel(in); got != want {
			t.Fatalf("StatusLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHearingScheduledRendering(t *testing.T) {
	n := HearingScheduled{
		CaseNumber:  "KP-2026-AB12CD34",
		CaseTitle:   "Boundary dispute",
		Complainant: "Juan Dela Cruz",
		SessionType: "mediation",
		Date:        "2026-03-20",
		Time:        "09:00",
		Label:       "9:00 AM",
	}
	if got := n.Subject(); !strings.Contains(got, "KP-2026-AB12CD34") {
		t.Fatalf("subject missing case number: %q", got)
	}
	body := n.Body()
	for _, want := range []string{"Juan Dela Cruz", "mediation", "2026-03-20", "9:00 AM"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
	// Display label wins over the canonical slot value.
	if strings.Contains(body, "09:00") {
		t.Fatalf("body should use the display label, got:\n%s", body)
	}
}

func TestHearingScheduledFallsBackToSlotValue(t *testing.T) {
	n := HearingScheduled{CaseNumber: "KP-2026-X", Date: "2026-03-20", Time: "09:00"}
	if !strings.Contains(n.Body(), "09:00") {
		t.Fatalf("body should fall back to slot value: %s", n.Body())
	}
}

func TestStatusChangedRendering(t *testing.T) {
	n := StatusChanged{
		CaseNumber:  "KP-2026-AB12CD34",
		CaseTitle:   "Boundary dispute",
		Complainant: "Juan Dela Cruz",
		OldStatus:   "for_mediation",
		NewStatus:   "settled",
	}
	if got := n.Subject(); !strings.Contains(got, "Settled") {
		t.Fatalf("subject should show the new status label: %q", got)
	}
	body := n.Body()
	if !strings.Contains(body, "For Mediation") || !strings.Contains(body, "Settled") {
		t.Fatalf("body should show both status labels:\n%s", body)
	}
}
