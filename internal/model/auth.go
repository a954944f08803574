package model

// AuthUser - 액세스 토큰에서 복원된 호출 주체.
// 사용자/조직 CRUD는 외부 모듈 소유이며 여기서는 토큰 검증만 한다.
type AuthUser struct {
	Subject string
	OrgID   string
}
