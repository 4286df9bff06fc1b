package api

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/usecase"
	xhttp "TradeGate/pkg/http"
	xlogger "TradeGate/pkg/logger"
)

// ControlHandler is the operator surface: engine state, recent decisions,
// manual candidate injection, outcome reporting, and the kill switch.
type ControlHandler struct {
	logger *xlogger.Logger
	engine *usecase.Engine
}

func NewControlHandler(logger *xlogger.Logger, engine *usecase.Engine) *ControlHandler {
	return &ControlHandler{logger: logger, engine: engine}
}

func (h *ControlHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/engine/state", h.State)
	g.GET("/decisions", h.Decisions)
	g.POST("/signals", h.Signal)
	g.POST("/outcomes", h.Outcome)
	g.POST("/engine/force-stop", h.ForceStop)
	g.POST("/engine/resume", h.Resume)
	g.POST("/engine/session/open", h.OpenSession)
	g.POST("/engine/session/close", h.CloseSession)
}

func (h *ControlHandler) State(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.engine.Snapshot())
}

func (h *ControlHandler) Decisions(c echo.Context) error {
	n := 50
	if raw := c.QueryParam("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
				Code: "ERR_LIMIT", Field: "limit", Message: "limit must be a positive integer",
			}})
		}
		n = v
	}
	rows := h.engine.RecentDecisions(n)
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *ControlHandler) Signal(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	cand := models.SignalCandidate{
		Instrument: req.Instrument,
		Strategy:   req.Strategy,
		Direction:  models.Direction(req.Direction),
		Entry:      req.Entry,
		Stop:       req.Stop,
		Target:     req.Target,
		Oscillator: req.Oscillator,
		Ts:         time.Now(),
	}
	if err := h.engine.Submit(cand); err != nil {
		h.logger.Error("candidate submit failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ConflictError("candidate queue full"))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "queued"})
}

func (h *ControlHandler) Outcome(c echo.Context) error {
	req := &models.OutcomeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	out := models.TradeOutcome{
		Instrument:   req.Instrument,
		Direction:    models.Direction(req.Direction),
		Result:       models.TradeResult(req.Result),
		RiskMultiple: req.RiskMultiple,
		Ts:           time.Now(),
	}
	if err := h.engine.SubmitOutcome(out); err != nil {
		h.logger.Error("outcome submit failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ConflictError("outcome queue full"))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "queued"})
}

func (h *ControlHandler) ForceStop(c echo.Context) error {
	req := &models.ForceStopRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	h.engine.ForceStop(req.Reason)
	h.logger.Warn("manual stop requested", xlogger.String("reason", req.Reason))
	return xhttp.SuccessResponse(c, map[string]string{"status": "stopped"})
}

func (h *ControlHandler) Resume(c echo.Context) error {
	if !h.engine.Resume() {
		return xhttp.ConflictResponse(c, "no manual stop to resume")
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "resumed"})
}

func (h *ControlHandler) OpenSession(c echo.Context) error {
	h.engine.OpenSession()
	return xhttp.SuccessResponse(c, map[string]string{"status": "session-open"})
}

func (h *ControlHandler) CloseSession(c echo.Context) error {
	h.engine.CloseSession()
	return xhttp.SuccessResponse(c, map[string]string{"status": "session-closed"})
}
