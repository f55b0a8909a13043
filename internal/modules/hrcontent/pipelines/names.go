package pipelines

type Name string

const (
	JobDescription Name = "jobdesc"
	Interview      Name = "interview"
	Resume         Name = "resume"
	Skills         Name = "skills"
)
