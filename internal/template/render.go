// Package template provides webhook body template rendering.
//
// 지원하는 변수 형식:
//
//	{{alert.id}}, {{alert.check_name}}, {{alert.check_type}},
//	{{alert.location}}, {{alert.status}}, {{alert.severity}},
//	{{alert.error}}, {{alert.timestamp}}
//
//	{{incident.id}}, {{incident.status}}, {{incident.started_at}},
//	{{incident.resolved_at}}, {{incident.duration_seconds}}
//
//	{{correlation.id}}, {{correlation.reason}}, {{correlation.members}}
//
//	{{runbook.title}}, {{runbook.content}}
package template

import (
	"strconv"
	"strings"
	"time"

	"github.com/pulsewatch/backend/internal/model"
)

// RenderBody - webhook body 템플릿의 변수를 실제 값으로 치환.
// decision에 없는 항목(runbook 미매칭 등)의 변수는 빈 문자열이 된다.
func RenderBody(body string, decision model.AlertDecision) string {
	pairs := []string{
		"{{alert.id}}", decision.Alert.ID,
		"{{alert.check_name}}", decision.Alert.CheckName,
		"{{alert.check_type}}", decision.Alert.CheckType,
		"{{alert.location}}", decision.Alert.Location,
		"{{alert.status}}", decision.Alert.Status,
		"{{alert.severity}}", decision.Alert.Severity,
		"{{alert.error}}", decision.Alert.Error,
		"{{alert.timestamp}}", decision.Alert.Timestamp.Format(time.RFC3339),
		"{{incident.id}}", decision.IncidentID,
		"{{correlation.id}}", decision.Correlation.CorrelationID,
		"{{correlation.reason}}", decision.Correlation.Reason,
		"{{correlation.members}}", strconv.Itoa(decision.Correlation.MemberCount),
	}

	if decision.Runbook != nil {
		pairs = append(pairs,
			"{{runbook.title}}", decision.Runbook.Title,
			"{{runbook.content}}", decision.Runbook.Content,
		)
	} else {
		pairs = append(pairs,
			"{{runbook.title}}", "",
			"{{runbook.content}}", "",
		)
	}

	return strings.NewReplacer(pairs...).Replace(body)
}

// RenderRecoveryBody - 인시던트 해소 알림용 치환
func RenderRecoveryBody(body string, check model.Check, incident model.Incident) string {
	resolvedAt := ""
	if incident.ResolvedAt != nil {
		resolvedAt = incident.ResolvedAt.Format(time.RFC3339)
	}
	duration := ""
	if incident.DurationSeconds != nil {
		duration = strconv.FormatInt(*incident.DurationSeconds, 10)
	}

	return strings.NewReplacer(
		"{{alert.check_name}}", check.Name,
		"{{alert.check_type}}", check.Type,
		"{{alert.status}}", model.StatusUp,
		"{{incident.id}}", incident.ID,
		"{{incident.status}}", "resolved",
		"{{incident.started_at}}", incident.StartedAt.Format(time.RFC3339),
		"{{incident.resolved_at}}", resolvedAt,
		"{{incident.duration_seconds}}", duration,
	).Replace(body)
}
