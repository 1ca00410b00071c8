package jobservice

import (
	"strconv"

	"github.com/reactome/gsa-orchestrator/internal/model"
)

// CommonFlags reads the common-scoped parameters that steer the system
// rather than the analysis itself ("want_report", "want_email",
// "recipient"), per spec.md §4.2's "Common parameters influence system
// behavior... and never the scientific result."
func CommonFlags(params []model.Parameter) (wantReport, wantEmail bool, recipient string) {
	for _, p := range params {
		switch p.Name {
		case "want_report":
			wantReport, _ = strconv.ParseBool(p.Value)
		case "want_email":
			wantEmail, _ = strconv.ParseBool(p.Value)
		case "recipient":
			recipient = p.Value
		}
	}
	return wantReport, wantEmail, recipient
}
