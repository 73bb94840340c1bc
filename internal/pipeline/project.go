package pipeline

import "github.com/ipincome-dev/ipincome/internal/model"

// FoldStatus computes a project's status from its statement links. The fold
// is total over the link outcomes:
//
//	processing              while any link has no outcome yet
//	failed                  when every link errored
//	completed_with_warnings when any link errored or carries a warning
//	completed               otherwise
//
// Skipped links count as outcomes but never as errors or warnings.
func FoldStatus(links []model.StatementLink) model.ProjectStatus {
	if len(links) == 0 {
		return model.ProjectDraft
	}

	errored := 0
	warned := 0
	for _, l := range links {
		switch l.Status {
		case model.LinkError:
			errored++
		case model.LinkSuccess:
			if l.Warning {
				warned++
			}
		case model.LinkSkipped:
			// counts as an outcome, nothing more
		default:
			return model.ProjectProcessing
		}
	}

	if errored == len(links) {
		return model.ProjectFailed
	}
	if errored > 0 || warned > 0 {
		return model.ProjectCompletedWithWarnings
	}
	return model.ProjectCompleted
}
