package pipelines

import (
	"github.com/yungbote/hrgen/internal/modules/hrcontent/flatten"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/generator"
	s "github.com/yungbote/hrgen/internal/modules/hrcontent/schema"
)

func JobDescriptionSchema() s.Node {
	return s.Object("",
		s.Required("job_title", s.String("The title of the job position.")),
		s.Required("job_description", s.String("A detailed description of the job role and its importance.")),
		s.Required("key_responsibilities", s.StringList("A list of key responsibilities associated with the job role.")),
		s.Required("skills", s.StringList("A list of skills required for the job position.")),
		s.Required("kpis", s.String("Key performance indicators for evaluating the job performance.")),
		s.Required("kpis_focus", s.ArrayOf(s.Object("",
			s.Required("focus_area", s.String("The focus area for KPI.")),
			s.Required("description", s.String("Description of the KPI focus area.")),
		), "A list outlining the focus areas for key performance indicators.")),
		s.Required("team_structure", s.Object("The structure of the team for the job position.",
			s.Required("reports_to", s.String("The position that the job role reports to.")),
			s.Required("collaborates_with", s.String("Teams or individuals that the job role collaborates with.")),
			s.Required("leads", s.String("Positions or teams that the job role is responsible for leading.")),
		)),
		s.Required("tools", s.StringList("A list of tools and software used in the job role.")),
		s.Required("qualification", s.String("Educational qualifications and experience required for the role.")),
	)
}

func jobDescriptionLayout() flatten.Layout {
	single := func(col, path string) flatten.ColumnGroup {
		return flatten.ColumnGroup{Policy: flatten.SingleFieldWithDefault, Column: col, Path: path, Default: flatten.NA}
	}
	blank := func(col string) flatten.ColumnGroup {
		return flatten.ColumnGroup{Policy: flatten.Constant, Column: col}
	}
	text := func(col, path string) flatten.ColumnGroup {
		return flatten.ColumnGroup{Policy: flatten.JoinedText, Column: col, Path: path}
	}
	html := func(col, path string) flatten.ColumnGroup {
		return flatten.ColumnGroup{Policy: flatten.BulletList, Column: col, Path: path}
	}
	return flatten.Layout{Groups: []flatten.ColumnGroup{
		single("job_title", "job_title"),
		blank("slug"),
		blank("collection_id"),
		blank("locale_id"),
		blank("item_id"),
		blank("created_on"),
		blank("updated_on"),
		blank("published_on"),
		single("job_description", "job_description"),
		text("key_responsibilities_text", "key_responsibilities"),
		html("key_responsibilities_html", "key_responsibilities"),
		text("skills_text", "skills"),
		html("skills_html", "skills"),
		single("kpis", "kpis"),
		{
			Policy: flatten.FixedWidthPadded,
			Path:   "kpis_focus",
			Slots:  3,
			SubFields: []flatten.SubField{
				{Name: "focus_area", Column: "kpis_focus_%d", Default: "KPI"},
				{Name: "description", Column: "description_%d", Default: flatten.NA},
			},
		},
		single("reports_to", "team_structure.reports_to"),
		single("collaborates_with", "team_structure.collaborates_with"),
		single("leads", "team_structure.leads"),
		text("tools_text", "tools"),
		html("tools_html", "tools"),
		single("qualification", "qualification"),
		blank("link"),
	}}
}

func jobDescription() Definition {
	return Definition{
		Name:        JobDescription,
		Description: "Job description per title, replicated into the JD template document.",
		Generation: generator.Spec{
			SchemaName:      "job_description",
			Schema:          JobDescriptionSchema(),
			System:          jobDescriptionSystem,
			UserTemplate:    "%s",
			Examples:        []generator.Message{{Role: "user", Content: "HR Manager"}, {Role: "assistant", Content: jobDescriptionExample}},
			Temperature:     temperature(0),
			MaxOutputTokens: 4048,
		},
		Layout:        jobDescriptionLayout(),
		Worksheet:     "Python",
		TemplateDocID: "1vhd0lkcFT0qOzAhM3ya9Ix3rc6N6hj1NlTvH4CPFc7c",
		DocSuffix:     "JD Template",
		Substitute:    true,
		LinkColumn:    "link",
	}
}

const jobDescriptionSystem = `
Create a JSON-formatted job description with the Job title as the focal point.

# Questions and Answers

**Question: What does a job title provided by the user do?**
Answer: Provide a concise overview of the Job title role, including its contribution to company goals and unique value. This description should be 2-3 sentences, highlighting the job title's importance.

**Question: Key responsibilities of a job title provided by the user**
Answer: List 6-10 main responsibilities for the Job title, action-oriented and relevant to the job's core functions. Structure as bullet points for easy reading.

**Question: Skills required for a job title provided by the user**
Answer: List essential skills. Include both technical skills specific to the role and soft skills like teamwork.

**Question: What are the KPIs for the job title?**
Answer: In a paragraph of 40-45 words.

**Question: what are the 3 Key Performance Indicators for the job title
Answers: In a list, nested inside kpis_focus key.

**Question: What is the team structure, and who does the Job title reports to, collaborates with and leads?**
Answer: In json object, provide your answer corresponding to keys reports_to, collaborates_with and leads

**Question: Are there any specific tools or software required for the Job title role?**
Answer: List of tools in an array.

**Question: What is the qualification for the job title?**
Answer: Mention the education and experience required.

{
    "job_title": "SEO Manager",
    "job_description": "The SEO Manager plays a pivotal role in driving organic traffic and enhancing the online visibility of the company's digital assets. This position is crucial in achieving company growth objectives by optimizing website content and collaborating with various teams to implement effective SEO strategies.",
    "key_responsibilities": [
        "Develop and execute successful SEO strategies.",
        "Conduct keyword research to guide content teams.",
        "Review technical SEO issues and recommend fixes.",
        "Optimize website content, landing pages, and paid search copy.",
        "Monitor SEO performance metrics to forecast trends.",
        "Collaborate with web developers and marketing teams.",
        "Direct off-page optimization projects (e.g., link-building).",
        "Collect data and report on traffic, rankings, and other SEO aspects.",
        "Stay up to date with the latest SEO and digital marketing trends."
    ],
    "skills": [
        "Strong understanding of SEO, SEM, and digital marketing.",
        "Proficient in SEO tools like Google Analytics, Ahrefs, and SEMrush.",
        "Excellent analytical, problem-solving, and decision-making skills.",
        "Effective communication and collaboration skills.",
        "Ability to work with cross-functional teams."
    ],
    "kpis": "The SEO Manager's performance is evaluated through measurable improvements in organic search rankings, increased website traffic and conversions, and successful implementation of SEO strategies.",
    "kpis_focus": [
        {"focus_area": "Website Traffic", "description": "Maintain or increase organic site traffic."},
        {"focus_area": "Search Rankings", "description": "Improvement in search engine ranking positions."},
        {"focus_area": "Lead Generation", "description": "Enhance lead conversion rates through organic channels."}
    ],
    "team_structure": {
        "reports_to": "Digital Marketing Director",
        "collaborates_with": "Content Team, Web Developers",
        "leads": "SEO Specialists"
    },
    "tools": ["Google Analytics", "Google Search Console", "SEMrush", "Ahrefs", "Moz"],
    "qualification": "Bachelor's degree in Marketing, Business, or a related field, with 3-5 years of proven experience in SEO management."
}`

const jobDescriptionExample = `{"job_title":"HR Manager","job_description":"The HR Manager is integral to fostering a positive workplace environment by managing employee relations, recruitment, and compliance with HR policies. This role supports company growth by nurturing talent and aligning human resources practices with organizational goals.","key_responsibilities":["Oversee the hiring process from recruitment to onboarding.","Implement HR strategies that support company objectives.","Manage employee relations, including conflict resolution and performance management.","Ensure compliance with employment laws and regulations.","Develop training programs for employee development.","Collaborate with department heads on workforce planning needs.","Administer compensation and benefits programs."],"skills":["Strong understanding of HR principles and employment law.","Proficient in human resources software like Workday or SAP SuccessFactors.","Excellent communication and interpersonal skills.","Strong leadership abilities."],"kpis":"The performance of the HR Manager is measured through successful talent acquisition, reduction in employee turnover rates, enhancement of staff satisfaction, and effectively addressing workplace issues within established timelines.","kpis_focus":[{"focus_area":"Talent Acquisition","description":"Efficient filling of job vacancies as per target timeframes."},{"focus_area":"Employee Turnover","description":"Reduction in turnover rates year-over-year."},{"focus_area":"Employee Satisfaction","description":"Improvement in staff satisfaction survey scores"}],"team_structure":{"reports_to":"Director of Human Resources","collaborates_with":"Department Managers, Recruitment Teams","leads":"HR Coordinators"},"tools":["Workday","SAP SuccessFactors","ADP Workforce Now"],"qualification":"Bachelor's degree in Human Resources Management or related field; 5-7 years experience managing HR functions."}`
