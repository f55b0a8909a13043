package pipelines

import (
	"github.com/yungbote/hrgen/internal/modules/hrcontent/flatten"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/generator"
	s "github.com/yungbote/hrgen/internal/modules/hrcontent/schema"
)

func ResumeSchema() s.Node {
	three := func(desc string) s.Node { return s.StringList(desc).AtLeast(3) }
	return s.Object("",
		s.Required("job_title_and_role_significance", s.String("Overview of the significance and demand of job title role mentioned by the user.")),
		s.Required("summary", s.String("A compelling summary should highlight your key skills, experience, and measurable achievements in the field. It serves as your elevator pitch to grab the employer's attention according to the job title mentioned by the user")),
		s.Required("skills_to_add", s.Object("Skills categories for job title mentioned by the user.",
			s.Required("technical_skills", three("List of technical skills relevant to job title mentioned by the user.")),
			s.Required("soft_skills", three("List of soft skills relevant to job title mentioned by the user.")),
		)),
		s.Required("kpis_and_okrs", s.Object("Key Performance Indicators (KPIs) and Objectives and Key Results (OKRs) for job title mentioned by the user.",
			s.Required("kpis", three("Top 3 Important KPIs for a job title mentioned by the user.")),
			s.Required("okrs", three("Top 3 OKRs for a job title mentioned by the user.")),
		)),
		s.Required("experience", s.Object("Examples of how to present experience related to your job title.",
			s.Required("right_example", three("Correct examples of describing experience of job title mentioned by the user.")),
			s.Required("wrong_example", three("Incorrect examples of experience of job title mentioned by the user.")),
		)),
		s.Required("education", s.Object("Education details for a particular job title mentioned by the user.",
			s.Required("degree_name", s.String("The degree or certification obtained.")),
			s.Required("institution", s.String("Name of the educational institution.")),
			s.Required("year", s.String("Year of graduation or completion.")),
			s.Required("relevant_coursework", s.StringList("Courses relevant to job title mentioned by the user.")),
		)),
		s.Required("project", s.Object("Project details for a particular job title mentioned by the user.",
			s.Required("project_name", s.String("Write the project name relevant to the job title mentioned by the user")),
			s.Required("role", s.String("Describe your role in the project")),
			s.Required("tools", s.StringList("List relevant tools or technologies used in this project.")),
			s.Required("outcome", s.StringList("Highlight measurable results or impact relevant to job title mentioned by the user.")),
		)),
	)
}

func resumeLayout() flatten.Layout {
	single := func(col, path string) flatten.ColumnGroup {
		return flatten.ColumnGroup{Policy: flatten.SingleFieldWithDefault, Column: col, Path: path, Default: flatten.NA}
	}
	bullets := func(col, path string) flatten.ColumnGroup {
		return flatten.ColumnGroup{Policy: flatten.BulletList, Column: col, Path: path}
	}
	return flatten.Layout{Groups: []flatten.ColumnGroup{
		{Policy: flatten.Constant, Column: "job_title", FromTitle: true},
		single("job_title_and_role_significance", "job_title_and_role_significance"),
		single("summary", "summary"),
		bullets("technical_skills", "skills_to_add.technical_skills"),
		bullets("soft_skills", "skills_to_add.soft_skills"),
		bullets("kpis_lst", "kpis_and_okrs.kpis"),
		bullets("okrs_lst", "kpis_and_okrs.okrs"),
		bullets("exp_right_ex", "experience.right_example"),
		bullets("exp_wrong_ex", "experience.wrong_example"),
		single("edu_degree_name", "education.degree_name"),
		single("edu_institution", "education.institution"),
		single("edu_year", "education.year"),
		bullets("edu_relevant_coursework", "education.relevant_coursework"),
		single("project_name", "project.project_name"),
		single("project_role", "project.role"),
		bullets("project_tools", "project.tools"),
		bullets("project_outcome", "project.outcome"),
	}}
}

func resume() Definition {
	return Definition{
		Name:        Resume,
		Description: "Resume template article per title; rows only.",
		Generation: generator.Spec{
			SchemaName:      "job_title_mentioned_by_the_user",
			Schema:          ResumeSchema(),
			System:          resumeSystem,
			UserTemplate:    "job title: %s",
			Temperature:     temperature(1),
			MaxOutputTokens: 2048,
		},
		Layout:    resumeLayout(),
		Worksheet: "Python (resume)",
	}
}

const resumeSystem = `
Your job is to write a resume template article divided into separate sections.  Return the response in JSON format.

1. The first section talks briefly about the job title and its related attributes:

Provide a brief description of the role's significance in the industry and relevant statistics (e.g., projected growth, average salary).
When you are mentioning the statistics for project growth and average salary, mentioned that these statistics are for 2025.
End the section with a new line: 'Now, we will guide you on how to write a great resume for [Job Title].'

Example:
[Job Title] professionals are essential for [brief description of the role's significance, e.g., driving business success, creating impactful designs, or leading technical innovations]. The demand for [Job Title] roles is projected to grow/shrink by [insert percentage trend in Middle East region], and the average salary ranges from [insert salary range according to Middle East region].
A well-crafted resume is the first step toward showcasing your skills, achievements, and experience to potential employers. Now, we will guide you on how to write an impressive resume tailored for a [Job Title] role.

2. Provide an example of a strong summary that highlights key skills, achievements, and career goals.

3. What Skills to Add to Your [Job Title] Resume

Categorize skills into two sections:
Technical Skills: Job-specific tools, software, or certifications.
Soft Skills: Transferable skills like communication, problem-solving, or time management.

4. What are [Job Title] KPIs and OKRs, and How Do They Fit Your Resume?

What are top 3 KPIs of this job title?
What are top 3 OKRs of this job title?

5. How to Describe Your [Job Title] Experience

Provide examples of how to format the experience section using quantifiable achievements.
Use bullet points starting with action verbs and emphasize measurable outcomes.
Include 3 'Right' and 'Wrong' examples to illustrate the difference.

6. How to Present Your Education as a [Job Title]

Include relevant degrees, certifications, and training programs.

Example structure:
Degree/Certification Name: [Insert degree or certification name]
Institution: [Insert institution name]
Year: [Insert graduation or completion year]
Relevant Coursework (optional): [List key courses if relevant to the role].

7. How to Highlight Your Projects as a [Job Title]
Describe key projects you've worked on that demonstrate your expertise and impact.
Include the project name, your role, tools/technologies used, and quantifiable outcomes.

Example structure:
Project Name: [Insert project name]
Role: [Describe your role in the project]
Tools/Technologies: [List relevant tools or technologies used]
Outcome: [Highlight measurable results or impact].`
