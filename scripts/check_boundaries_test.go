package main

import "testing"

func TestServicesRespectLayerBoundaries(t *testing.T) {
	violations := collectViolations("../contexts")
	for _, v := range violations {
		t.Errorf("%s:%d imports %q (%s)", v.File, v.Line, v.Import, v.Rule)
	}
}

func TestDomainRejectsThirdPartyImports(t *testing.T) {
	prefix := "soundtik/contexts/campaign-promotion/wizard-service"
	if got := validateDomainImport("x.go", 1, "github.com/google/uuid", prefix); len(got) == 0 {
		t.Fatalf("expected third-party import in domain to be rejected")
	}
	if got := validateDomainImport("x.go", 1, "encoding/json", prefix); len(got) != 0 {
		t.Fatalf("expected stdlib import in domain to pass, got %+v", got)
	}
	if got := validateApplicationImport("x.go", 1, "soundtik/contracts/gen/events/v1", prefix); len(got) != 0 {
		t.Fatalf("expected contracts import in application to pass, got %+v", got)
	}
	if got := validateApplicationImport("x.go", 1, prefix+"/adapters/memory", prefix); len(got) == 0 {
		t.Fatalf("expected adapter import in application to be rejected")
	}
}
