// Package tags derives normalized category labels from listing text by
// substring matching against fixed vocabularies. The lookup is closed and
// static: region names, Seoul district names, and property-type terms.
package tags

import "strings"

var regions = []string{
	"서울", "부산", "대구", "인천", "광주", "대전", "울산", "세종",
}

var districts = []string{
	"강남구", "강서구", "송파구", "서초구", "강동구", "마포구",
	"용산구", "중구", "종로구", "성동구", "동작구", "관악구",
	"영등포구", "금천구", "구로구", "양천구", "노원구", "도봉구",
	"강북구", "성북구", "중랑구", "동대문구", "광진구", "서대문구",
	"은평구",
}

var propertyTypes = []string{
	"아파트", "오피스텔", "상가", "주택", "빌라", "연립주택",
	"단독주택", "토지", "건물", "사무실", "점포", "공장",
	"창고", "펜션", "리조트",
}

// Extract returns the deduplicated set of vocabulary terms contained in
// text. Pure and deterministic; the result is always non-nil and always a
// subset of the three vocabularies.
func Extract(text string) []string {
	found := []string{}
	if text == "" {
		return found
	}

	seen := make(map[string]bool)
	for _, vocab := range [][]string{regions, districts, propertyTypes} {
		for _, term := range vocab {
			if seen[term] {
				continue
			}
			if strings.Contains(text, term) {
				found = append(found, term)
				seen[term] = true
			}
		}
	}
	return found
}

// Contains reports whether tag is a vocabulary term.
func Contains(tag string) bool {
	for _, vocab := range [][]string{regions, districts, propertyTypes} {
		for _, term := range vocab {
			if term == tag {
				return true
			}
		}
	}
	return false
}
