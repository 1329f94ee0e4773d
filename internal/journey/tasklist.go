package journey

// SectionTasks is one task-list group: the section name and a row per active
// question with its current display value and change link.
type SectionTasks struct {
	Section string    `json:"section"`
	Rows    []TaskRow `json:"rows"`
}

// TaskRow is a Summary plus the row's completeness state.
type TaskRow struct {
	Summary
	Answered bool `json:"answered"`
}

// TaskList builds the check-your-answers view from the live answer set.
// Inactive sections and questions are entirely absent, so a section gated by
// an earlier answer disappears the moment that answer changes.
func (j *Journey) TaskList() []SectionTasks {
	var out []SectionTasks
	for i := range j.def.Sections {
		section := &j.def.Sections[i]
		if !section.activeCondition()(j.Answers) {
			continue
		}
		var rows []TaskRow
		for _, q := range section.Questions {
			if !q.active(section, j.Answers) {
				continue
			}
			summary := q.Variant.Summarize(q, j.Answers)
			summary.ChangeLink = Position{Section: section, Question: q}.URL(j)
			rows = append(rows, TaskRow{Summary: summary, Answered: summary.Value != ""})
		}
		if len(rows) > 0 {
			out = append(out, SectionTasks{Section: section.Name, Rows: rows})
		}
	}
	return out
}
