package journey

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorsAccumulate(t *testing.T) {
	q := &Question{
		FieldName: "email",
		Variant:   Text{},
		Validators: []Validator{
			Required("enter an email"),
			MatchesPattern(regexp.MustCompile(`@`), "enter a real email"),
			MaxLength(5, "too long"),
		},
	}

	errs := q.Variant.Validate(q, Form{"email": {"abcdefgh"}}, AnswerSet{})
	require.Len(t, errs, 2, "every failing validator reports, none short-circuits")
	assert.Equal(t, "enter a real email", errs[0].Message)
	assert.Equal(t, "too long", errs[1].Message)
}

func TestRequired(t *testing.T) {
	v := Required("required")
	assert.NotNil(t, v.Validate("f", Form{}, AnswerSet{}))
	assert.NotNil(t, v.Validate("f", Form{"f": {"   "}}, AnswerSet{}), "whitespace-only input is empty")
	assert.Nil(t, v.Validate("f", Form{"f": {"x"}}, AnswerSet{}))
}

func TestMatchesPatternIgnoresEmpty(t *testing.T) {
	v := MatchesPattern(regexp.MustCompile(`^\d+$`), "digits only")
	assert.Nil(t, v.Validate("f", Form{}, AnswerSet{}), "emptiness is Required's concern")
	assert.NotNil(t, v.Validate("f", Form{"f": {"abc"}}, AnswerSet{}))
}

func TestMaxLengthCountsRunes(t *testing.T) {
	v := MaxLength(3, "too long")
	assert.Nil(t, v.Validate("f", Form{"f": {"äöü"}}, AnswerSet{}))
	assert.NotNil(t, v.Validate("f", Form{"f": {"äöüä"}}, AnswerSet{}))
}

func TestIntInRange(t *testing.T) {
	v := IntInRange(1, 10, "between 1 and 10")
	assert.Nil(t, v.Validate("f", Form{"f": {"5"}}, AnswerSet{}))
	assert.Nil(t, v.Validate("f", Form{}, AnswerSet{}))
	assert.NotNil(t, v.Validate("f", Form{"f": {"11"}}, AnswerSet{}))
	assert.NotNil(t, v.Validate("f", Form{"f": {"abc"}}, AnswerSet{}))
}

func TestDiffersFromField(t *testing.T) {
	v := DiffersFromField("localAuthority", "must differ")
	answers := AnswerSet{"localAuthority": "northbank"}
	assert.NotNil(t, v.Validate("decidingAuthority", Form{"decidingAuthority": {"northbank"}}, answers))
	assert.Nil(t, v.Validate("decidingAuthority", Form{"decidingAuthority": {"harrowvale"}}, answers))
	assert.Nil(t, v.Validate("decidingAuthority", Form{}, answers))
}

func TestSubRequired(t *testing.T) {
	detail := SubQuestion{Name: "detail"}
	v := SubRequired("other", detail, "give details")

	fe := v.Validate("category", Form{"category": {"other"}}, AnswerSet{})
	require.NotNil(t, fe)
	assert.Equal(t, "category_detail", fe.Field, "the error lands on the sub-field")

	assert.Nil(t, v.Validate("category", Form{"category": {"other"}, "category_detail": {"x"}}, AnswerSet{}))
	assert.Nil(t, v.Validate("category", Form{"category": {"standard"}}, AnswerSet{}))
}

func TestRequiredOption(t *testing.T) {
	v := RequiredOption("pick one")
	assert.NotNil(t, v.Validate("f", Form{}, AnswerSet{}))
	assert.NotNil(t, v.Validate("f", Form{"f": {""}}, AnswerSet{}))
	assert.Nil(t, v.Validate("f", Form{"f": {"", "a"}}, AnswerSet{}))
}
