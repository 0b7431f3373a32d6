package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/abarroteria/internal/application/simulation"
	"github.com/jhoicas/abarroteria/internal/domain/entity"
)

// SimulationRequest body de POST /api/simulations; todo es opcional.
type SimulationRequest struct {
	HorizonDays  int    `json:"horizon_days" validate:"min=0,max=366"`
	Seed         *int64 `json:"seed"`
	StartDate    string `json:"start_date"`
	ItemsPerSale int    `json:"items_per_sale" validate:"min=0"`
}

// SimulationResponse resumen de una semana simulada.
type SimulationResponse struct {
	RunID       string                   `json:"run_id"`
	Start       string                   `json:"start"`
	End         string                   `json:"end"`
	Processed   int                      `json:"processed"`
	Failed      int                      `json:"failed"`
	Skipped     int                      `json:"skipped"`
	SalesTotal  decimal.Decimal          `json:"sales_total"`
	BuysTotal   decimal.Decimal          `json:"purchases_total"`
	Seasonal    int                      `json:"seasonal_products"`
	Discounted  int                      `json:"discounted_products"`
	Adjustments []AdjustmentNoteResponse `json:"adjustments"`
}

// SimulationFromResult convierte el resultado de la semana.
func SimulationFromResult(r *simulation.WeekResult) SimulationResponse {
	out := SimulationResponse{
		RunID:       r.RunID.String(),
		Start:       entity.FormatDate(r.Start),
		End:         entity.FormatDate(r.End),
		Processed:   r.Summary.Processed,
		Failed:      r.Summary.Failed,
		Skipped:     r.Summary.Skipped,
		SalesTotal:  decimal.Zero,
		BuysTotal:   decimal.Zero,
		Adjustments: NotesFromAdjustments(r.Adjustments),
	}
	if r.Report != nil {
		out.SalesTotal = r.Report.TotalOf(entity.MovementSale)
		out.BuysTotal = r.Report.TotalOf(entity.MovementPurchase)
		out.Seasonal = len(r.Report.Seasonal)
		out.Discounted = len(r.Report.Discounted)
	}
	return out
}
