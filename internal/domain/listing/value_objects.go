package listing

import (
	"errors"
	"strings"
)

var (
	ErrInvalidISBN      = errors.New("invalid ISBN")
	ErrEmptyTitle       = errors.New("title cannot be empty")
	ErrInvalidCondition = errors.New("invalid condition grade")
)

type Condition string

const (
	ConditionLikeNew    Condition = "like_new"
	ConditionGood       Condition = "good"
	ConditionAcceptable Condition = "acceptable"
	ConditionPoor       Condition = "poor"
)

func NewCondition(s string) (Condition, error) {
	c := Condition(s)
	switch c {
	case ConditionLikeNew, ConditionGood, ConditionAcceptable, ConditionPoor:
		return c, nil
	default:
		return "", ErrInvalidCondition
	}
}

func (c Condition) String() string {
	return string(c)
}

// BookInfo is the bibliographic snapshot a listing carries. It is frozen at
// publish time and never tracks later catalog edits.
type BookInfo struct {
	isbn      string
	title     string
	author    string
	condition Condition
}

func NewBookInfo(isbn, title, author string, condition Condition) (BookInfo, error) {
	isbn = strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
	if len(isbn) != 10 && len(isbn) != 13 {
		return BookInfo{}, ErrInvalidISBN
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return BookInfo{}, ErrEmptyTitle
	}

	return BookInfo{
		isbn:      isbn,
		title:     title,
		author:    strings.TrimSpace(author),
		condition: condition,
	}, nil
}

func (b BookInfo) ISBN() string         { return b.isbn }
func (b BookInfo) Title() string        { return b.title }
func (b BookInfo) Author() string       { return b.author }
func (b BookInfo) Condition() Condition { return b.condition }
