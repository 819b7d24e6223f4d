package projections

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"onda/internal/application/listutil"
	"onda/internal/domain/surfer"
)

// Counter counts the rows of one table.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// TableCounter names a counted table for the dashboard cards.
type TableCounter struct {
	Name    string
	Label   string
	Counter Counter
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	Tables   []TableCounter
	Surfers  listutil.Fetcher
	Schedule GetScheduleDeps
}

// TableCount is one dashboard card.
type TableCount struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// StatusCount is the number of surfers holding one status value.
type StatusCount struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// GetDashboardResult carries the dashboard data.
type GetDashboardResult struct {
	Tables          []TableCount      `json:"tables"`
	SurferInscricao []StatusCount     `json:"surfer_inscricao"`
	SurferPagamento []StatusCount     `json:"surfer_pagamento"`
	Schedule        GetScheduleResult `json:"schedule"`
}

// QueryGetDashboard counts every table concurrently and breaks surfers down by status.
// PRE: none
// POST: Tables keeps the order of deps.Tables; null surfer statuses count under their defaults
func QueryGetDashboard(ctx context.Context, deps GetDashboardDeps) (GetDashboardResult, error) {
	result := GetDashboardResult{Tables: make([]TableCount, len(deps.Tables))}

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range deps.Tables {
		g.Go(func() error {
			n, err := t.Counter.Count(gctx)
			if err != nil {
				return fmt.Errorf("count %s: %w", t.Name, err)
			}
			result.Tables[i] = TableCount{Name: t.Name, Label: t.Label, Count: n}
			return nil
		})
	}

	if deps.Surfers != nil {
		g.Go(func() error {
			rows, err := deps.Surfers.FetchAll(gctx)
			if err != nil {
				return fmt.Errorf("fetch surfers: %w", err)
			}
			inscricao, pagamento := surferStatusCounts(rows)
			result.SurferInscricao, result.SurferPagamento = inscricao, pagamento
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return GetDashboardResult{}, err
	}
	result.Schedule = QueryGetSchedule(deps.Schedule)
	return result, nil
}

func surferStatusCounts(rows []listutil.Record) ([]StatusCount, []StatusCount) {
	byInscricao := make(map[string]int, len(surfer.ValidInscricao))
	byPagamento := make(map[string]int, len(surfer.ValidPagamento))
	for _, r := range rows {
		ins, _ := r.Get(surfer.ColumnStatusInscricao)
		pag, _ := r.Get(surfer.ColumnStatusPagamento)
		byInscricao[surfer.EffectiveInscricao(ins)]++
		byPagamento[surfer.EffectivePagamento(pag)]++
	}

	inscricao := make([]StatusCount, 0, len(surfer.ValidInscricao))
	for _, v := range surfer.ValidInscricao {
		inscricao = append(inscricao, StatusCount{Value: v, Label: surfer.InscricaoLabel(v), Count: byInscricao[v]})
	}
	pagamento := make([]StatusCount, 0, len(surfer.ValidPagamento))
	for _, v := range surfer.ValidPagamento {
		pagamento = append(pagamento, StatusCount{Value: v, Label: surfer.PagamentoLabel(v), Count: byPagamento[v]})
	}
	return inscricao, pagamento
}
