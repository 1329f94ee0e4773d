package journey

// Variant is the fixed capability set every question kind implements. Shapes
// are composed by delegation: a variant embeds helpers, never another variant,
// so a new kind cannot silently change an unrelated one.
type Variant interface {
	// PrepareForRender builds the render model for the question against the
	// current answer set. It must not mutate the answer set.
	PrepareForRender(q *Question, answers AnswerSet) RenderModel

	// ExtractAnswer parses raw field-name-keyed input into one or more
	// field→value pairs and applies them to the in-memory answer set so
	// later questions in the same request see the new value.
	ExtractAnswer(q *Question, form Form, answers AnswerSet) Edited

	// Validate runs the attached validators plus any structural checks the
	// variant owns, accumulating every failure.
	Validate(q *Question, form Form, answers AnswerSet) []FieldError

	// Summarize produces the task-list row for the question. Choice variants
	// show the option's display text, not its storage value.
	Summarize(q *Question, answers AnswerSet) Summary
}

// Question is one addressable unit of data entry.
type Question struct {
	// FieldName is the unique key into the answer set. Uniqueness across the
	// whole journey is checked at build time.
	FieldName string
	// Title is the prompt shown to the user and the task-list row key.
	Title string
	// Hint is optional secondary prompt text.
	Hint string
	// Variant supplies the capability set for this question's input kind.
	Variant Variant
	// Validators run on every save, all of them, in order.
	Validators []Validator
	// When overrides the owning section's activation condition. Nil inherits.
	When Condition
}

// SubQuestion links a choice option to its conditional input. The descriptor
// replaces runtime key assembly: the storage key is derived in one place.
type SubQuestion struct {
	// Name distinguishes this sub-input under its parent field.
	Name string
	// Title is the sub-input's prompt.
	Title string
}

// Key returns the answer-set key the sub-answer is stored under.
func (s SubQuestion) Key(parentField string) string {
	return parentField + "_" + s.Name
}

// Option is one selectable choice. Value is what gets stored; Label is what
// gets displayed. A non-nil Sub is rendered only while the option is selected
// and its answer is cleared when the option is deselected.
type Option struct {
	Value string
	Label string
	Sub   *SubQuestion
}

// RenderModel is what the view collaborator receives for one question. No
// rendering format is implied; the transport layer serializes it as it needs.
type RenderModel struct {
	Field     string              `json:"field"`
	Title     string              `json:"title"`
	Hint      string              `json:"hint,omitempty"`
	Kind      string              `json:"kind"`
	Value     any                 `json:"value,omitempty"`
	Options   []OptionState       `json:"options,omitempty"`
	Inputs    []InputState        `json:"inputs,omitempty"`
	Records   []Record            `json:"records,omitempty"`
	Errors    []FieldError        `json:"errors,omitempty"`
	Submitted map[string][]string `json:"submitted,omitempty"`
	BackLink  string              `json:"backLink,omitempty"`
	NextLink  string              `json:"nextLink,omitempty"`
}

// OptionState is one choice option with its selection state and, when the
// option is selected, the previously entered conditional sub-answer.
type OptionState struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
	SubKey   string `json:"subKey,omitempty"`
	SubTitle string `json:"subTitle,omitempty"`
	SubValue string `json:"subValue,omitempty"`
}

// InputState is one named input of a composite or date variant with its
// current value.
type InputState struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// active reports whether the question applies under the current answers,
// falling back to the owning section's condition.
func (q *Question) active(section *Section, answers AnswerSet) bool {
	if q.When != nil {
		return q.When(answers)
	}
	return section.activeCondition()(answers)
}
