package model

import "time"

// AlertRunbook - 알림에 첨부할 대응 가이드.
// CheckType/Severity가 "all"(또는 빈 값)이면 모든 값에 적용된다.
type AlertRunbook struct {
	ID        string `json:"id"`
	OrgID     string `json:"org_id"`
	Title     string `json:"title"`
	CheckType string `json:"check_type"` // "all" 또는 특정 타입 (http, dns, ...)
	Severity  string `json:"severity"`   // "all"/빈 값 또는 특정 심각도

	// Content: 대응 절차 본문. 이 엔진은 내용을 해석하지 않는다.
	Content string `json:"content"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunbookRequest - runbook 생성/수정 요청 구조체
type RunbookRequest struct {
	Title     string `json:"title" binding:"required"`
	CheckType string `json:"check_type"`
	Severity  string `json:"severity"`
	Content   string `json:"content" binding:"required"`
}
