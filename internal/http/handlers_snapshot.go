package http

import (
	"fmt"
	"html/template"
	"net/http"
	"sync/atomic"

	applog "agencia/internal/log"
)

// handleRecordSnapshot stores the monthly totals posted by the snapshot form
// or by an API client. Recording a month that already exists replaces it.
func (s *Server) handleRecordSnapshot(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		s.logger.WarnContext(r.Context(), "Parse snapshot body error",
			applog.FieldError, err,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}

	snap, err := SnapshotInputFrom(parser).Snapshot()
	if err != nil {
		if !isValidationError(err) {
			BadRequestError("Dados inválidos").Write(w)
			return
		}
		msg := validationMessage(err)
		if parser.IsJSON() {
			NewHTMXResponse().
				Status(http.StatusUnprocessableEntity).
				BodyJSON(map[string]string{"error": msg}).
				Write(w)
			return
		}
		UnprocessableEntityError(msg).Write(w)
		return
	}

	ref, err := s.snapshots.Record(r.Context(), snap)
	if err != nil {
		if isValidationError(err) {
			UnprocessableEntityError(validationMessage(err)).Write(w)
			return
		}
		s.structured.LogError(r.Context(), "Failed to record snapshot", err,
			applog.ComponentSnapshot, applog.OpRecord,
			applog.NewFields().WithPeriod(snap.Year, snap.Month))
		InternalServerError("Erro ao salvar o mês").Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.snapshotsRecorded, 1)
	s.structured.LogSnapshotRecorded(r.Context(), snap.Year, snap.Month,
		snap.Income.Cents, snap.Expenses.Cents, snap.Assets.Cents, ref)

	if parser.IsJSON() {
		NewHTMXResponse().
			Status(http.StatusCreated).
			BodyJSON(map[string]interface{}{
				"ref":      ref,
				"year":     snap.Year,
				"month":    snap.Month,
				"income":   snap.Income.Units(),
				"expenses": snap.Expenses.Units(),
				"assets":   snap.Assets.Units(),
				"balance":  snap.Balance.Units(),
			}).
			Write(w)
		return
	}

	loc := s.localeFor(r)
	msg := fmt.Sprintf("%s/%d registrado: receitas %s, despesas %s, patrimônio %s",
		loc.MonthLabel(snap.Month), snap.Year,
		loc.FormatCents(snap.Income.Cents),
		loc.FormatCents(snap.Expenses.Cents),
		loc.FormatCents(snap.Assets.Cents))

	NewHTMXResponse().
		TriggerSnapshotRecorded(snap.Year, snap.Month).
		TriggerChartRefresh(snap.Year).
		TriggerFormReset().
		TriggerSuccessNotification(msg).
		BodyHTML(`<div class="success">` + template.HTMLEscapeString(msg) + `</div>`).
		Write(w)
}
