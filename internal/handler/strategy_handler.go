package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/onursal82-hash/Vortexbot/internal/model"
	"github.com/onursal82-hash/Vortexbot/internal/service"
	"github.com/onursal82-hash/Vortexbot/internal/util"
)

// StrategyHandler handles the bot lifecycle endpoints
type StrategyHandler struct {
	strategyService *service.StrategyService
}

func NewStrategyHandler(strategyService *service.StrategyService) *StrategyHandler {
	return &StrategyHandler{strategyService: strategyService}
}

func workspaceID(c *gin.Context) string {
	return c.GetString("workspace_id")
}

// CreateBot handles POST /api/bots
func (h *StrategyHandler) CreateBot(c *gin.Context) {
	var req model.CreateBotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.SendError(c, util.ErrValidation(err.Error()))
		return
	}

	bot, err := h.strategyService.CreateBot(c.Request.Context(), workspaceID(c), &req)
	if err != nil {
		util.SendError(c, err)
		return
	}

	util.SendCreated(c, bot, "Bot created")
}

// OpenStrategy handles POST /api/strategy/open
func (h *StrategyHandler) OpenStrategy(c *gin.Context) {
	var req model.OpenStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.SendError(c, util.ErrValidation(err.Error()))
		return
	}

	bot, err := h.strategyService.OpenStrategy(c.Request.Context(), workspaceID(c), &req)
	if err != nil {
		util.SendError(c, err)
		return
	}

	util.SendCreated(c, bot, "Strategy opened")
}

// GetBot handles GET /api/bots/:symbol
func (h *StrategyHandler) GetBot(c *gin.Context) {
	bot, logs, err := h.strategyService.BotDetails(workspaceID(c), c.Param("symbol"))
	if err != nil {
		util.SendError(c, err)
		return
	}

	util.SendSuccess(c, gin.H{
		"bot":  bot,
		"logs": logs,
	})
}

// StopBot handles POST /api/bots/:symbol/stop
func (h *StrategyHandler) StopBot(c *gin.Context) {
	if err := h.strategyService.StopBot(workspaceID(c), c.Param("symbol")); err != nil {
		util.SendError(c, err)
		return
	}

	util.SendSuccessWithMessage(c, nil, "Bot stopped")
}

// PanicSell handles POST /api/bots/:symbol/panic
func (h *StrategyHandler) PanicSell(c *gin.Context) {
	if err := h.strategyService.PanicSell(workspaceID(c), c.Param("symbol")); err != nil {
		util.SendError(c, err)
		return
	}

	util.SendSuccessWithMessage(c, nil, "Position closed")
}

// ListMarkets handles GET /api/markets
func (h *StrategyHandler) ListMarkets(c *gin.Context) {
	markets, err := h.strategyService.ListMarkets(c.Request.Context())
	if err != nil {
		util.SendError(c, err)
		return
	}

	util.SendSuccess(c, markets)
}

// TradeHistory handles GET /api/history
func (h *StrategyHandler) TradeHistory(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.strategyService.TradeHistory(limit)
	if err != nil {
		util.SendError(c, util.ErrInternalServer("Failed to read trade history"))
		return
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}

	util.SendSuccess(c, entries)
}
