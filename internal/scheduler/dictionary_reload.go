package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/aristath/statement-mapper/internal/modules/matching"
)

// DictionaryReloadJob re-reads the component dictionary from disk so
// rule edits land without a restart. Resolution in flight keeps the
// table it started with.
type DictionaryReloadJob struct {
	log         zerolog.Logger
	coordinator *matching.Coordinator
}

// NewDictionaryReloadJob creates a dictionary reload job.
func NewDictionaryReloadJob(coordinator *matching.Coordinator, log zerolog.Logger) *DictionaryReloadJob {
	return &DictionaryReloadJob{
		log:         log.With().Str("job", "dictionary_reload").Logger(),
		coordinator: coordinator,
	}
}

// Name returns the job name
func (j *DictionaryReloadJob) Name() string {
	return "dictionary_reload"
}

// Run reloads the dictionary.
func (j *DictionaryReloadJob) Run() error {
	return j.coordinator.Reload()
}
