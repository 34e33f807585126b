package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/fasthttp/router"
	"github.com/nimasrn/ledger-reconciler/internal/model"
	"github.com/nimasrn/ledger-reconciler/internal/pairing"
	"github.com/nimasrn/ledger-reconciler/internal/repository"
	"github.com/nimasrn/ledger-reconciler/internal/services"
	xhttp "github.com/nimasrn/ledger-reconciler/pkg/http"
)

type PairingService interface {
	Run(ctx context.Context) (pairing.Result, error)
	RunSelfTransfers(ctx context.Context) (int, error)
	RunStatementPayments(ctx context.Context) (int, error)
	ListLinks(ctx context.Context, f repository.LinkFilter) ([]model.TransactionLink, int64, error)
}

type PairingHandler struct {
	svc PairingService
}

func RegisterPairingRoutes(e *router.Group, h *PairingHandler) {
	e.POST("/pairing/runs", h.TriggerRun)
	e.POST("/pairing/runs/self-transfers", h.TriggerSelfTransfers)
	e.POST("/pairing/runs/statement-payments", h.TriggerStatementPayments)
	e.GET("/links", h.ListLinks)
}

func NewPairingHandler(svc PairingService) *PairingHandler {
	return &PairingHandler{
		svc: svc,
	}
}

type passResponse struct {
	Paired int `json:"paired"`
}

type listLinksResponse struct {
	Items []model.TransactionLink `json:"items"`
	Total int64                   `json:"total"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *PairingHandler) TriggerRun(ctx *xhttp.RequestCtx) {
	res, err := h.svc.Run(ctx)
	if err != nil {
		writeRunError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, res)
}

func (h *PairingHandler) TriggerSelfTransfers(ctx *xhttp.RequestCtx) {
	n, err := h.svc.RunSelfTransfers(ctx)
	if err != nil {
		writeRunError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, passResponse{Paired: n})
}

func (h *PairingHandler) TriggerStatementPayments(ctx *xhttp.RequestCtx) {
	n, err := h.svc.RunStatementPayments(ctx)
	if err != nil {
		writeRunError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, passResponse{Paired: n})
}

func (h *PairingHandler) ListLinks(ctx *xhttp.RequestCtx) {
	var f repository.LinkFilter

	if v := query(ctx, "link_type"); v != "" {
		lt := model.LinkType(v)
		if !lt.Valid() {
			writeError(ctx, xhttp.StatusBadRequest, "unknown link_type: "+v)
			return
		}
		f.LinkType = &lt
	}
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Offset = n
		}
	}

	items, total, err := h.svc.ListLinks(ctx, f)
	if err != nil {
		writeError(ctx, xhttp.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []model.TransactionLink{}
	}
	writeJSON(ctx, xhttp.StatusOK, listLinksResponse{Items: items, Total: total})
}

func writeRunError(ctx *xhttp.RequestCtx, err error) {
	if errors.Is(err, services.ErrRunInProgress) {
		writeError(ctx, xhttp.StatusConflict, err.Error())
		return
	}
	writeError(ctx, xhttp.StatusInternalServerError, err.Error())
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}
