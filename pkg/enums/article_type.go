package enums

import "fmt"

// ArticleType distinguishes owned stock from sub-leased stock.
type ArticleType string

const (
	ArticleTypeOwn      ArticleType = "propio"
	ArticleTypeSublease ArticleType = "subarriendo"
)

var validArticleTypes = []ArticleType{
	ArticleTypeOwn,
	ArticleTypeSublease,
}

// String implements fmt.Stringer.
func (a ArticleType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ArticleType.
func (a ArticleType) IsValid() bool {
	for _, candidate := range validArticleTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseArticleType converts raw input into an ArticleType.
func ParseArticleType(value string) (ArticleType, error) {
	for _, candidate := range validArticleTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid article type %q", value)
}
