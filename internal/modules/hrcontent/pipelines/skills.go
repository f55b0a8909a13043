package pipelines

import (
	"fmt"

	"github.com/yungbote/hrgen/internal/modules/hrcontent/flatten"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/generator"
	s "github.com/yungbote/hrgen/internal/modules/hrcontent/schema"
)

var (
	skillTiers       = []string{"beginner", "intermediate", "advanced"}
	topSkillSections = []string{"technical_skills", "soft_skills", "industry_trends", "future_requirements"}
)

const (
	skillsPerTier      = 4
	topSkillsPerList   = 5
	influencerCount    = 5
	learningResources  = 2
	skillProgression   = "skill_progression"
	skillsProgressionP = "skills_progression"
)

func SkillsSchema() s.Node {
	tier := s.Object("",
		s.Required("skills", s.StringList("").AtLeast(skillsPerTier)),
		s.Required("examples_with_action_steps", s.StringList("").AtLeast(skillsPerTier)),
	)
	return s.Object("",
		s.Required("introduction", s.Object("",
			s.Required("overview", s.String("")),
			s.Required("impact_on_success", s.String("")),
			s.Required("adaptation_importance", s.String("")),
		)),
		s.Required(skillProgression, s.Object("",
			s.Required("beginner", tier),
			s.Required("intermediate", tier),
			s.Required("advanced", tier),
		)),
		s.Required("top_skills_2025", s.Object("",
			s.Required("technical_skills", s.StringList("")),
			s.Required("soft_skills", s.StringList("")),
			s.Required("industry_trends", s.StringList("")),
			s.Required("future_requirements", s.StringList("")),
		)),
		s.Required("top_influencers", s.ArrayOf(s.Object("",
			s.Required("name", s.String("")),
			s.Required("expertise", s.String("")),
			s.Required("why_follow", s.String("")),
		), "").AtLeast(1)),
		s.Required("learning_resources", s.ArrayOf(s.Object("",
			s.Required("course_link", s.String("")),
			s.Required("why_recommended", s.String("")),
		), "").AtLeast(1)),
	)
}

// SkillsColumns is the declared output table after "profession", in the
// order the sheet was first created with.
func SkillsColumns() []string {
	cols := []string{
		"introduction_overview",
		"introduction_impact_on_success",
		"introduction_adaptation_importance",
	}
	for _, t := range skillTiers {
		for i := 0; i < skillsPerTier; i++ {
			base := fmt.Sprintf("%s_%s_%d_", skillsProgressionP, t, i)
			cols = append(cols, base+"name", base+"examples_with_action_steps")
		}
	}
	for _, sec := range topSkillSections {
		for i := 0; i < topSkillsPerList; i++ {
			cols = append(cols, fmt.Sprintf("top_skills_2025_%s_%d", sec, i))
		}
	}
	for i := 0; i < influencerCount; i++ {
		for _, f := range []string{"name", "expertise", "why_follow"} {
			cols = append(cols, fmt.Sprintf("top_influencers_%d_%s", i, f))
		}
	}
	for i := 0; i < learningResources; i++ {
		for _, f := range []string{"course_link", "why_recommended"} {
			cols = append(cols, fmt.Sprintf("learning_resources_%d_%s", i, f))
		}
	}
	return cols
}

func skillsLayout() flatten.Layout {
	return flatten.Layout{Groups: []flatten.ColumnGroup{
		{Policy: flatten.Constant, Column: "profession", FromTitle: true},
		{
			Policy:  flatten.TreeProjection,
			Columns: SkillsColumns(),
			Pairing: &flatten.Pairing{
				Section: skillProgression,
				Prefix:  skillsProgressionP,
				Names:   "skills",
				With:    "examples_with_action_steps",
				NameKey: "name",
			},
		},
	}}
}

func skills() Definition {
	return Definition{
		Name:        Skills,
		Description: "Skills guide per profession; rows plus a CSV copy of the table.",
		Generation: generator.Spec{
			SchemaName:      "skills_schema",
			Schema:          SkillsSchema(),
			System:          skillsSystem,
			UserTemplate:    "profession: %s",
			Temperature:     temperature(1),
			MaxOutputTokens: 4096,
		},
		Layout:     skillsLayout(),
		Worksheet:  "Python (Skills)",
		MirrorPath: "skills.csv",
	}
}

const skillsSystem = `
Create a comprehensive skills guide for a specific profession. The focus should be on current and future skill requirements, career progression, and learning resources.

# Template Structure
The response should be organized in a clear JSON format with the following sections:

1. Introduction
- Overview of why skills matter in this profession
- Impact on success and innovation
- Industry adaptation importance

2. Skill Progression
- Beginner level skills with examples with actionable steps
- Intermediate level skills with examples with actionable steps
- Advanced level skills with examples with actionable steps

3. Top Skills for 2025
- Technical skills specific to the profession
- Essential soft skills
- Industry trends and their impact
- Future skill requirements

4. Top Influencers
- List of 5 influential professionals
- Their areas of expertise
- Reasons to follow them

5. Learning Resources
- List of link of minimum 1 and maximum 2 top courses
- Types of courses/certifications offered
- Specialization areas
- Why they are recommended

Return the response in JSON format with snake_case naming convention.`
