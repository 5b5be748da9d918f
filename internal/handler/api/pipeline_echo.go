// Package api exposes the pipeline over HTTP: training, backtesting,
// model management and bar retrieval on the Echo router, plus a cached
// reporting surface on net/http.
package api

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	models "TradeForge/internal/domain/models"
	domrepo "TradeForge/internal/domain/repository"
	"TradeForge/internal/repository"
	"TradeForge/internal/usecase"
	xhttp "TradeForge/pkg/http"
	xlogger "TradeForge/pkg/logger"
	"TradeForge/pkg/queue"
)

// PipelineEchoHandler implements the Echo-based HTTP surface.
type PipelineEchoHandler struct {
	logger   *xlogger.Logger
	train    *usecase.TrainUseCase
	backtest *usecase.BacktestUseCase
	bars     *usecase.BarsUseCase
	jobs     queue.QueueService
}

func NewPipelineEchoHandler(logger *xlogger.Logger, train *usecase.TrainUseCase, backtest *usecase.BacktestUseCase, bars *usecase.BarsUseCase) *PipelineEchoHandler {
	return &PipelineEchoHandler{logger: logger, train: train, backtest: backtest, bars: bars}
}

// SetJobQueue enables async training via the job queue.
func (h *PipelineEchoHandler) SetJobQueue(q queue.QueueService) { h.jobs = q }

func (h *PipelineEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.POST("/train", h.Train)
	g.POST("/backtest", h.Backtest)
	g.GET("/bars", h.Bars)
	g.GET("/models", h.ListModels)
	g.POST("/models/load", h.LoadModel)
	g.DELETE("/models/:name", h.DeleteModel)
}

func (h *PipelineEchoHandler) Train(c echo.Context) error {
	req := &models.TrainRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if req.Async && h.jobs != nil {
		if err := h.jobs.PublishMessage(c.Request().Context(), usecase.TrainJobType, req); err != nil {
			h.logger.Error("train enqueue error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		return xhttp.SuccessResponse(c, map[string]interface{}{
			"queued": true,
			"symbol": req.Symbol,
			"model":  req.Model,
		})
	}

	res, err := h.train.Train(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("train usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PipelineEchoHandler) Backtest(c echo.Context) error {
	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.backtest.Run(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("backtest usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PipelineEchoHandler) Bars(c echo.Context) error {
	symbol := c.QueryParam("symbol")
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol required")
	}
	tf := domrepo.NormalizeTimeframe(c.QueryParam("tf"))
	now := time.Now().UTC()
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), now.AddDate(0, 0, -90))
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), now)
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 10000)

	res, err := h.bars.GetBars(c.Request().Context(), usecase.GetBarsParams{
		Symbol:    symbol,
		From:      from,
		To:        to,
		Timeframe: tf,
		Limit:     limit,
	})
	if err != nil {
		h.logger.Error("bars usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PipelineEchoHandler) ListModels(c echo.Context) error {
	infos, err := h.train.ListModels(c.Request().Context())
	if err != nil {
		h.logger.Error("list models error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, infos)
}

func (h *PipelineEchoHandler) LoadModel(c echo.Context) error {
	req := &models.ModelRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	info, err := h.train.LoadModel(c.Request().Context(), req.Name, req.Version)
	if err != nil {
		if errors.Is(err, repository.ErrModelNotFound) {
			return xhttp.NotFoundResponse(c, err.Error())
		}
		h.logger.Error("load model error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, info)
}

func (h *PipelineEchoHandler) DeleteModel(c echo.Context) error {
	name := c.Param("name")
	if name == "" {
		return xhttp.BadRequestResponse(c, "name required")
	}
	if err := h.train.DeleteModel(c.Request().Context(), name); err != nil {
		h.logger.Error("delete model error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.NoContentResponse(c)
}
