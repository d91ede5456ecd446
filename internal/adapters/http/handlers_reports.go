package httpadapter

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kirillkom/hris-onboarding/internal/infrastructure/export/xlsx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (rt *Router) exportOnboarding(w http.ResponseWriter, r *http.Request) {
	records, err := rt.onboarding.ListOnboarding(r.Context())
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}

	now := rt.now()
	var buf bytes.Buffer
	if err := xlsx.WriteOnboardingOverview(&buf, records, now); err != nil {
		rt.writeDomainError(w, r, fmt.Errorf("export onboarding overview: %w", err))
		return
	}

	filename := fmt.Sprintf("onboarding-%s.xlsx", now.Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
