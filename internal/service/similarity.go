package service

import (
	"math"
	"strings"
)

// ErrorSimilarity - 두 에러 텍스트의 유사도를 0–100으로 계산한다.
// 편집 거리 대신 단어 집합에 대한 Dice 계수를 쓴다:
// 소문자화 → 공백 분리 → 2글자 초과 토큰만 유지 → 중복 제거 후
// 2×|교집합| / (|A|+|B|) × 100 을 반올림.
func ErrorSimilarity(a, b string) int {
	if a == b {
		return 100
	}

	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			intersection++
		}
	}

	score := 2.0 * float64(intersection) / float64(len(setA)+len(setB)) * 100.0
	return int(math.Round(score))
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Fields(strings.ToLower(s)) {
		if len(token) > 2 {
			set[token] = struct{}{}
		}
	}
	return set
}
