package source

import (
	"testing"
)

func TestParseCareersTargets(t *testing.T) {
	targets := ParseCareersTargets([]string{
		"Acme=https://acme.example/careers",
		" Globex = https://globex.example/jobs ",
		"missing-url",
		"=https://nameless.example",
		"",
	})

	if len(targets) != 2 {
		t.Fatalf("expected 2 valid targets, got %d: %+v", len(targets), targets)
	}
	if targets[0].Company != "Acme" || targets[0].ListURL != "https://acme.example/careers" {
		t.Errorf("first target %+v", targets[0])
	}
	if targets[1].Company != "Globex" {
		t.Errorf("second target %+v", targets[1])
	}
}

func TestLooksLikeJobLink(t *testing.T) {
	yes := []string{"/jobs/123", "/careers/backend", "https://x.example/open-positions", "/vacancies/9"}
	no := []string{"/about", "/privacy", "mailto:hr@example.com"}

	for _, h := range yes {
		if !looksLikeJobLink(h) {
			t.Errorf("%q should look like a job link", h)
		}
	}
	for _, h := range no {
		if looksLikeJobLink(h) {
			t.Errorf("%q should not look like a job link", h)
		}
	}
}

func TestCareersAdapterUnconfigured(t *testing.T) {
	a := NewCareersAdapter(nil, 0, false)
	if a.Configured() {
		t.Fatal("adapter without targets reports configured")
	}
}
