package pipelines

import (
	"github.com/yungbote/hrgen/internal/modules/hrcontent/flatten"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/generator"
	s "github.com/yungbote/hrgen/internal/modules/hrcontent/schema"
)

var interviewTiers = []string{"entry_level", "mid_level", "senior_level"}

func InterviewSchema() s.Node {
	tier := func(label string) s.Node {
		return s.Object("",
			s.Required("questions", s.ArrayOf(s.Object("",
				s.Required("interview_question", s.String("Specific question tailored to assess skills relevant to the job title.")),
				s.Required("model_answer", s.String("Provide a comprehensive, detailed, and realistic example of how a strong candidate might respond.")),
				s.Required("example", s.String("Offer a specific, practical scenario illustrating the model answer in action.")),
				s.Required("what_hiring_managers_should_pay_attention_to", s.StringList("Highlight key points and red flags hiring managers should evaluate when listening to the candidate's response.")),
			), "List of interview questions for "+label+" candidates.")),
		)
	}
	return s.Object("",
		s.Required("job_title", s.Object("",
			s.Required("entry_level", tier("entry-level")),
			s.Required("mid_level", tier("mid-level")),
			s.Required("senior_level", tier("senior-level")),
		)),
	)
}

// The question count per tier is up to the model, so these groups are
// variable width and the header comes from the flattened document.
func interviewLayout() flatten.Layout {
	groups := []flatten.ColumnGroup{
		{Policy: flatten.Constant, Column: "job_title", FromTitle: true},
		{Policy: flatten.Constant, Column: "link"},
	}
	for _, t := range interviewTiers {
		groups = append(groups, flatten.ColumnGroup{
			Policy: flatten.VariableWidthUnpadded,
			Path:   "job_title." + t + ".questions",
			SubFields: []flatten.SubField{
				{Name: "interview_question", Column: t + "_%d_interview_question", Default: flatten.NA},
				{Name: "model_answer", Column: t + "_%d_model_answer", Default: flatten.NA},
				{Name: "example", Column: t + "_%d_example", Default: flatten.NA},
				{Name: "what_hiring_managers_should_pay_attention_to", Column: t + "_%d_pay_attention_to", Bullets: true},
			},
		})
	}
	return flatten.Layout{Groups: groups}
}

func interview() Definition {
	return Definition{
		Name:        Interview,
		Description: "Interview question bank per title and seniority tier.",
		Generation: generator.Spec{
			SchemaName:      "job_interview_schema",
			Schema:          InterviewSchema(),
			System:          interviewSystem,
			UserTemplate:    "job_title: %s",
			Temperature:     temperature(1),
			MaxOutputTokens: 16383,
		},
		Layout:        interviewLayout(),
		Worksheet:     "Python (interview)",
		TemplateDocID: "10TYSRLcjeYudPNx3QzWSXwL2q4gTIcWzsaKFiKzjnHs",
		DocSuffix:     "Interview Questions Template",
		LinkColumn:    "link",
	}
}

const interviewSystem = `
Create a comprehensive interview questions template for a specific job title provided by the user. This template is designed for recruiters or hiring managers to assess candidates' skills, abilities, and suitability for the specified role. The focus will be on both technical expertise and relevant soft skills, providing real-world context and emphasizing measurable outcomes.

# Template Structure

- **Job Title Hierarchy**: Organize questions based on job title levels such as entry-level, mid-level, and senior-level.

- **Types of Questions**: Suggest and include questions for technical skills, behavioral insights, and soft-skill evaluation.

# Components of Each Question

1. **Interview Question**: Specific question tailored to assess skills relevant to the job title.

2. **Model Answer**: Provide a comprehensive, detailed, and realistic example of how a strong candidate might respond.

3. **Example**: Offer a specific, practical scenario illustrating the model answer in action.

4. **What Hiring Managers Should Pay Attention To**: Highlight key points and red flags hiring managers should evaluate when listening to the candidate's response.

# Additional Guidelines

- Maintain a professional, clear, and concise tone.
- Ensure questions are optimal for how hiring managers might search for them as resources.

# Output Format

Organize the output in a structured bullet-point format for easy readability and quick reference. Where applicable, provide additional context or examples using placeholders.

# Examples

*Example for Entry-Level Position:*

- **Question**: "Describe a situation where you had to quickly learn new skills to complete a task."

- **Model Answer**: "A strong candidate might explain how they identified the necessary skills, resources used (such as online courses or mentorship), steps taken to acquire these skills, and the outcome of their efforts."

- **Example**: "For instance, I had to learn a new software tool within two weeks to assist my team in a project."

- **What Hiring Managers Should Pay Attention To**: Listen for adaptability, the initiative to seek resources, and problem-solving abilities.

*Example for Senior-Level Position (Include more detailed scenarios):*

- **Question**: "How do you manage conflicts within your team?"

- **Model Answer**: "A strong candidate could describe implementing structured conflict-resolution strategies, involving identifying the root cause and mediating a resolution."

- **Example**: "In a software development project, there were differing opinions on the implementation strategy, which I addressed by facilitating a team meeting to discuss compromises."

- **What Hiring Managers Should Pay Attention To**: Notice leadership abilities, communication skills, and effectiveness in resolving conflicts.

# Notes

Ensure the template remains adaptable to different job titles by using placeholders where specific context might change. Tailor each question and associated details to the hierarchical level and specific requirements of the role while maintaining domain relevance, practicality and at least 2 questions per hierarchical level. Return the response in json format.`
