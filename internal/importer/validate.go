package importer

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/reqplan/internal/domain"
)

// Validate reports structural problems in a decomposition. None of them
// prevent rendering; callers print them as warnings.
func Validate(schema *DecompositionSchema) []error {
	var errs []error
	seen := make(map[string]string)

	checkID := func(id, path string) {
		id = strings.TrimSpace(id)
		if id == "" {
			return
		}
		if prev, dup := seen[id]; dup {
			errs = append(errs, fmt.Errorf("%s.id %q duplicates %s", path, id, prev))
			return
		}
		seen[id] = path
	}

	for i, e := range schema.Epics {
		ePath := fmt.Sprintf("epics[%d]", i)
		checkID(e.ID, ePath)
		errs = append(errs, validateItem(ePath, e.Title, e.Priority, e.EstimatedHours)...)

		for j, s := range e.Stories {
			sPath := fmt.Sprintf("%s.stories[%d]", ePath, j)
			checkID(s.ID, sPath)
			errs = append(errs, validateItem(sPath, s.Title, s.Priority, s.EstimatedHours)...)

			for k, st := range s.Subtasks {
				stPath := fmt.Sprintf("%s.subtasks[%d]", sPath, k)
				checkID(st.ID, stPath)
				errs = append(errs, validateItem(stPath, st.Title, st.Priority, st.EstimatedHours)...)
			}
		}
	}

	if v := schema.TotalEstimatedHours.Value; v != nil && *v < 0 {
		errs = append(errs, fmt.Errorf("total_estimated_hours: negative value %v treated as absent", *v))
	}

	return errs
}

func validateItem(path, title, priority string, hours FlexFloat) []error {
	var errs []error
	if strings.TrimSpace(title) == "" {
		errs = append(errs, fmt.Errorf("%s.title is required", path))
	}
	if priority != "" && !domain.ValidPriorities[normalizePriority(priority)] {
		errs = append(errs, fmt.Errorf("%s.priority: invalid value %q", path, priority))
	}
	if hours.Value != nil && *hours.Value < 0 {
		errs = append(errs, fmt.Errorf("%s.estimated_hours: negative value %v treated as absent", path, *hours.Value))
	}
	return errs
}
