// Assertion 평가 로직
// 선언된 assertion 하나를 관측값에 대해 채점하는 순수 함수.
// 실패 모드가 없다: 알 수 없는 입력은 에러 대신 실패한 assertion으로
// 평가된다 (알림 쪽으로 fail-safe).

package service

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pulsewatch/backend/internal/model"
)

// Assertion type 값
const (
	AssertResponseTime   = "responseTime"
	AssertStatusCode     = "statusCode"
	AssertBodyContains   = "bodyContains"
	AssertHeaderContains = "headerContains"
)

// Assertion operator 값
const (
	OpLessThan    = "lessThan"
	OpGreaterThan = "greaterThan"
	OpEquals      = "equals"
	OpContains    = "contains"
)

// Observation - 프로브가 돌려준 관측값 중 assertion 평가에 쓰이는 부분
type Observation struct {
	ResponseTimeMS float64
	StatusCode     int
	Body           string
	Headers        map[string]string
}

// actualValue - assertion type에 따라 선택된 실제 값.
// 숫자/문자 중 하나의 태그만 유효하다.
type actualValue struct {
	isText bool
	num    float64
	text   string
}

func (v actualValue) String() string {
	if v.isText {
		return v.text
	}
	return strconv.FormatFloat(v.num, 'f', -1, 64)
}

// EvaluateAssertion - assertion 하나를 채점한다
func EvaluateAssertion(a model.Assertion, obs Observation) model.AssertionResult {
	actual := selectActual(a.Type, obs)
	return model.AssertionResult{
		Type:     a.Type,
		Operator: a.Operator,
		Expected: a.Value,
		Actual:   actual.String(),
		Passed:   applyOperator(a.Operator, actual, a.Value),
	}
}

// EvaluateAssertions - 체크에 선언된 assertion 전체를 채점하고
// 통과/실패 수를 센다
func EvaluateAssertions(assertions []model.Assertion, obs Observation) (results []model.AssertionResult, passed, failed int) {
	for _, a := range assertions {
		r := EvaluateAssertion(a, obs)
		results = append(results, r)
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}
	return results, passed, failed
}

// selectActual - type에 따른 실제 값 선택. 알 수 없는 type이면 숫자 0.
func selectActual(assertionType string, obs Observation) actualValue {
	switch assertionType {
	case AssertResponseTime:
		return actualValue{num: obs.ResponseTimeMS}
	case AssertStatusCode:
		return actualValue{num: float64(obs.StatusCode)}
	case AssertBodyContains:
		return actualValue{isText: true, text: obs.Body}
	case AssertHeaderContains:
		return actualValue{isText: true, text: joinHeaders(obs.Headers)}
	default:
		return actualValue{}
	}
}

// joinHeaders - 헤더 맵을 "Name: Value" 쌍의 콤마 결합 문자열로 직렬화.
// 맵 순회 순서에 의존하지 않도록 키를 정렬한다.
func joinHeaders(headers map[string]string) string {
	if len(headers) == 0 {
		return ""
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+": "+headers[k])
	}
	return strings.Join(pairs, ",")
}

// applyOperator - operator 적용. 알 수 없는 operator는 실패.
func applyOperator(operator string, actual actualValue, expected string) bool {
	switch operator {
	case OpLessThan, OpGreaterThan:
		actualNum, ok := coerceNumber(actual)
		if !ok {
			return false
		}
		expectedNum, err := strconv.ParseFloat(strings.TrimSpace(expected), 64)
		if err != nil {
			return false
		}
		if operator == OpLessThan {
			return actualNum < expectedNum
		}
		return actualNum > expectedNum

	case OpEquals:
		if actual.isText {
			return actual.text == expected
		}
		expectedNum, err := strconv.ParseFloat(strings.TrimSpace(expected), 64)
		if err != nil {
			return false
		}
		return actual.num == expectedNum

	case OpContains:
		return strings.Contains(actual.String(), expected)

	default:
		return false
	}
}

func coerceNumber(v actualValue) (float64, bool) {
	if !v.isText {
		return v.num, true
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
