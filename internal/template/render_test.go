package template

import (
	"testing"
	"time"

	"github.com/pulsewatch/backend/internal/model"
)

func TestRenderBody(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	decision := model.AlertDecision{
		Alert: model.Alert{
			ID:        "a-1",
			CheckName: "api",
			CheckType: "http",
			Location:  "us-east",
			Status:    model.StatusDown,
			Severity:  "critical",
			Error:     "connection refused",
			Timestamp: ts,
		},
		IncidentID: "inc-1",
		Correlation: model.CorrelationDecision{
			Correlated:    true,
			CorrelationID: "cor-1",
			Reason:        model.ReasonSameCheck,
			MemberCount:   3,
		},
		Runbook: &model.AlertRunbook{Title: "API down", Content: "restart the pod"},
	}

	body := `{"text":"{{alert.check_name}} is {{alert.status}} ({{alert.severity}}) at {{alert.location}}: {{alert.error}}. incident={{incident.id}} correlation={{correlation.id}}/{{correlation.members}} runbook={{runbook.title}}"}`
	got := RenderBody(body, decision)
	want := `{"text":"api is down (critical) at us-east: connection refused. incident=inc-1 correlation=cor-1/3 runbook=API down"}`
	if got != want {
		t.Fatalf("RenderBody() = %q, want %q", got, want)
	}
}

func TestRenderBodyWithoutRunbook(t *testing.T) {
	got := RenderBody("runbook: {{runbook.title}}{{runbook.content}}", model.AlertDecision{})
	if got != "runbook: " {
		t.Fatalf("RenderBody() = %q, want empty runbook variables", got)
	}
}

func TestRenderRecoveryBody(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	resolved := started.Add(90 * time.Second)
	duration := int64(90)
	incident := model.Incident{
		ID:              "inc-1",
		StartedAt:       started,
		ResolvedAt:      &resolved,
		DurationSeconds: &duration,
	}

	got := RenderRecoveryBody("{{alert.check_name}} recovered after {{incident.duration_seconds}}s ({{incident.status}})", model.Check{Name: "api"}, incident)
	want := "api recovered after 90s (resolved)"
	if got != want {
		t.Fatalf("RenderRecoveryBody() = %q, want %q", got, want)
	}
}

func TestRenderRecoveryBodyOpenIncident(t *testing.T) {
	got := RenderRecoveryBody("resolved_at={{incident.resolved_at}} duration={{incident.duration_seconds}}", model.Check{}, model.Incident{ID: "inc-1"})
	if got != "resolved_at= duration=" {
		t.Fatalf("RenderRecoveryBody() = %q, want empty placeholders", got)
	}
}
