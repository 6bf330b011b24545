package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chessql/internal/query"
	"chessql/internal/server/core"
	"chessql/internal/server/storage"
)

// QueryOptions scopes and pages a query
type QueryOptions struct {
	PageNo    int
	Limit     int
	Offset    *int
	Reference string
	AccountID *int64
	Platform  string
}

// QueryResult is one page of a query's rows
type QueryResult struct {
	Query      string              `json:"query"`
	SQL        string              `json:"sql"`
	Clauses    []string            `json:"clauses,omitempty"`
	Context    query.PlayerContext `json:"context"`
	Ignored    []string            `json:"ignored,omitempty"`
	MoveSearch bool                `json:"moveSearch,omitempty"`
	Results    []storage.Row       `json:"results"`
	Count      int                 `json:"count"`
	TotalCount int                 `json:"total_count"`
	core.Pagination
}

// Rewrite translates ChessQL text without running it
func (s *Service) Rewrite(text, reference string) query.Result {
	if reference == "" {
		return s.rewriter.Rewrite(text)
	}
	return query.NewRewriter(reference).Rewrite(text)
}

// ExecuteQuery runs a ChessQL query or a /pattern/ move search and returns the
// requested page
func (s *Service) ExecuteQuery(ctx context.Context, text string, opts QueryOptions) (*QueryResult, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	text = strings.TrimSpace(text)
	res := &QueryResult{Query: text}

	var args []any
	if query.IsMoveSearch(text) {
		res.MoveSearch = true
		res.SQL = query.MoveSearchSQL
		args = append(args, query.LikePattern(text))
	} else {
		if err := query.CheckReadOnly(text); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadOnly, err)
		}
		rewritten := s.Rewrite(text, opts.Reference)
		res.SQL = rewritten.SQL
		res.Clauses = rewritten.ClauseStrings()
		res.Context = rewritten.Context
		res.Ignored = rewritten.Ignored
	}

	scoped, err := query.ApplyScope(res.SQL, query.Scope{AccountID: opts.AccountID, Platform: opts.Platform})
	if err != nil {
		return nil, err
	}
	res.SQL = scoped

	rows, err := s.store.ExecuteQuery(ctx, res.SQL, args...)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	res.TotalCount = len(rows)
	res.Pagination = Paginate(res.TotalCount, opts.PageNo, opts.Limit, opts.Offset)

	start := min(res.Offset, len(rows))
	end := start + min(res.Limit, len(rows)-start)
	res.Results = rows[start:end]
	if res.Results == nil {
		res.Results = []storage.Row{}
	}
	res.Count = len(res.Results)

	s.log.Debug().
		Str("sql", res.SQL).
		Int("total", res.TotalCount).
		Int("page", res.PageNo).
		Msg("query executed")
	return res, nil
}

// Paginate resolves page metadata. An explicit offset wins over pageNo.
// Pages past the end resolve to an offset just beyond total.
func Paginate(total, pageNo, limit int, offset *int) core.Pagination {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	if pageNo <= 0 {
		pageNo = 1
	}

	p := core.Pagination{Limit: limit}
	if offset != nil && *offset >= 0 {
		p.Offset = *offset
		p.PageNo = *offset/limit + 1
	} else {
		p.Offset = min(pageNo-1, total/limit+1) * limit
		p.PageNo = pageNo
	}

	if total > 0 {
		p.TotalPages = (total-1)/limit + 1
	}
	p.HasNext = p.PageNo < p.TotalPages
	p.HasPrev = p.PageNo > 1
	return p
}
