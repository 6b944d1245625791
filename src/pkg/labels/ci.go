package labels

import "github.com/gh-nvat/pr-lifecycle-bot/src/pkg/models"

// failingConclusions are the check run conclusions that mark CI as failing
var failingConclusions = map[string]bool{
	"failure":         true,
	"timed_out":       true,
	"action_required": true,
	"startup_failure": true,
}

// HasFailingCI reports whether any completed check run failed
func HasFailingCI(runs []models.CheckRun) bool {
	for _, run := range runs {
		if failingConclusions[run.Conclusion] {
			return true
		}
	}
	return false
}
