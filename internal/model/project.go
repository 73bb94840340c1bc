package model

// MaxProjectStatements caps how many statements one project may group.
const MaxProjectStatements = 9

// LinkStatus is the processing outcome of one statement within a project.
type LinkStatus string

const (
	LinkSuccess LinkStatus = "success"
	LinkSkipped LinkStatus = "skipped"
	LinkError   LinkStatus = "error"
)

// ProjectStatus is the aggregate status of a project over its statements.
type ProjectStatus string

const (
	ProjectDraft                 ProjectStatus = "draft"
	ProjectProcessing            ProjectStatus = "processing"
	ProjectCompleted             ProjectStatus = "completed"
	ProjectCompletedWithWarnings ProjectStatus = "completed_with_warnings"
	ProjectFailed                ProjectStatus = "failed"
)

// StatementLink ties a statement to a project in upload order.
// A statement belongs to at most one link.
type StatementLink struct {
	StatementID    string
	UploadOrder    int
	SourceFilename string
	Status         LinkStatus
	Message        string
	Warning        bool // balance or skip-ratio warning on a successful statement
}

// Project groups 1..MaxProjectStatements statements for one analysis run.
type Project struct {
	ID     string
	Name   string
	Status ProjectStatus
	Links  []StatementLink
}
