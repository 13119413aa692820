package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/onursal82-hash/Vortexbot/internal/ledger"
	"github.com/onursal82-hash/Vortexbot/internal/service"
	"github.com/onursal82-hash/Vortexbot/internal/util"
)

// DashboardHandler handles the aggregate read views
type DashboardHandler struct {
	strategyService *service.StrategyService
	ledger          *ledger.Ledger
	startedAt       time.Time
}

func NewDashboardHandler(strategyService *service.StrategyService, led *ledger.Ledger) *DashboardHandler {
	return &DashboardHandler{
		strategyService: strategyService,
		ledger:          led,
		startedAt:       time.Now(),
	}
}

// Dashboard handles GET /api/dashboard
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	util.SendSuccess(c, h.strategyService.Dashboard(workspaceID(c)))
}

// Health handles GET /health
func (h *DashboardHandler) Health(c *gin.Context) {
	_, lastUpdated := h.ledger.TickerSnapshot()

	payload := gin.H{
		"status":      "ok",
		"uptime":      time.Since(h.startedAt).Round(time.Second).String(),
		"active_bots": h.ledger.ActiveBotCount(),
	}
	if !lastUpdated.IsZero() {
		payload["market_updated_at"] = lastUpdated.Format(time.RFC3339)
	}

	c.JSON(200, payload)
}
