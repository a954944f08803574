package service

import "testing"

func TestErrorSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{
			name: "identical-strings",
			a:    "connection refused",
			b:    "connection refused",
			want: 100,
		},
		{
			name: "one-token-differs",
			a:    "connection timeout error",
			b:    "connection timeout issue",
			want: 67, // 2*2/(3+3)*100 = 66.7 → 67
		},
		{
			name: "no-overlap",
			a:    "dns lookup failed",
			b:    "certificate expired yesterday",
			want: 0,
		},
		{
			name: "empty-left",
			a:    "",
			b:    "connection refused",
			want: 0,
		},
		{
			name: "both-empty",
			a:    "",
			b:    "",
			want: 100, // 동일 문자열은 토큰화 전에 100으로 처리
		},
		{
			name: "short-tokens-ignored",
			a:    "db is up",
			b:    "db is ok",
			want: 0, // "is"/"up"/"ok"는 2글자라 버려지고 "db"도 2글자
		},
		{
			name: "case-insensitive",
			a:    "Connection Timeout",
			b:    "connection timeout",
			want: 100,
		},
		{
			name: "duplicates-collapse",
			a:    "timeout timeout timeout",
			b:    "timeout",
			want: 100, // 중복 제거 후 양쪽 모두 {timeout}
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorSimilarity(tt.a, tt.b); got != tt.want {
				t.Fatalf("ErrorSimilarity(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
