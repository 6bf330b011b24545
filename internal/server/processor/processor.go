package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chessql/internal/query"
	"chessql/internal/server/core"
	"chessql/internal/server/service"
	"chessql/internal/server/storage"

	"github.com/rs/zerolog"
)

// Processor handles command execution and coordinates between the service
// and the replay queue
type Processor struct {
	svc   *service.Service
	queue *ReplayQueue
	log   zerolog.Logger
}

// New creates a processor. The queue is the one the service analyzes with;
// the processor owns its shutdown.
func New(svc *service.Service, queue *ReplayQueue, log zerolog.Logger) *Processor {
	return &Processor{
		svc:   svc,
		queue: queue,
		log:   log,
	}
}

// Workers returns the replay pool size, 0 without a queue
func (p *Processor) Workers() int {
	if p.queue == nil {
		return 0
	}
	return p.queue.Workers()
}

// Close stops the replay workers
func (p *Processor) Close() error {
	if p.queue == nil {
		return nil
	}
	return p.queue.Shutdown(5 * time.Second)
}

func (p *Processor) Execute(ctx context.Context, cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdIngest:
		return p.handleIngest(ctx, cmd)
	case CmdQuery:
		return p.handleQuery(ctx, cmd)
	case CmdGetGame:
		return p.handleGetGame(ctx, cmd)
	case CmdGetCaptures:
		return p.handleGetCaptures(ctx, cmd)
	case CmdDeleteGame:
		return p.handleDeleteGame(ctx, cmd)
	case CmdStats:
		return p.handleStats(ctx)
	case CmdExamples:
		return ProcessorResponse{Success: true, Data: query.Examples()}
	case CmdListAccounts:
		return p.handleListAccounts(ctx)
	case CmdCreateAccount:
		return p.handleCreateAccount(ctx, cmd)
	case CmdDeleteAccount:
		return p.handleDeleteAccount(ctx, cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// handleIngest parses posted PGN and stores new games
func (p *Processor) handleIngest(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.IngestRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	report, err := p.svc.IngestPGN(ctx, args.PGN, service.IngestOptions{
		Account:  args.Account,
		Platform: args.Platform,
	})
	if err != nil {
		return p.failure("ingest failed", err, core.ErrAccountNotFound)
	}
	if report.Parsed == 0 {
		return p.errorResponse("no games found in PGN", core.ErrInvalidRequest)
	}

	p.log.Info().
		Str("user", cmd.UserID).
		Str("batch", report.BatchID).
		Int("inserted", report.Inserted).
		Msg("games posted")

	return ProcessorResponse{
		Success: true,
		Data:    report,
	}
}

// handleQuery rewrites and runs a ChessQL query
func (p *Processor) handleQuery(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.QueryRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	if strings.TrimSpace(args.Query) == "" {
		return p.errorResponse("query is empty", core.ErrInvalidRequest)
	}

	res, err := p.svc.ExecuteQuery(ctx, args.Query, service.QueryOptions{
		PageNo:    args.PageNo,
		Limit:     args.Limit,
		Offset:    args.Offset,
		Reference: args.Reference,
		AccountID: args.AccountID,
		Platform:  args.Platform,
	})
	if err != nil {
		return p.failure("query failed", err, core.ErrAccountNotFound)
	}

	return ProcessorResponse{
		Success: true,
		Data:    res,
	}
}

func (p *Processor) handleGetGame(ctx context.Context, cmd Command) ProcessorResponse {
	detail, err := p.svc.GetGame(ctx, cmd.GameID)
	if err != nil {
		return p.failure("game not found", err, core.ErrGameNotFound)
	}
	return ProcessorResponse{
		Success: true,
		Data:    detail,
	}
}

func (p *Processor) handleGetCaptures(ctx context.Context, cmd Command) ProcessorResponse {
	captures, err := p.svc.GetCaptures(ctx, cmd.GameID)
	if err != nil {
		return p.failure("game not found", err, core.ErrGameNotFound)
	}
	if captures == nil {
		captures = []storage.CaptureRecord{}
	}
	return ProcessorResponse{
		Success: true,
		Data:    captures,
	}
}

func (p *Processor) handleDeleteGame(ctx context.Context, cmd Command) ProcessorResponse {
	if err := p.svc.DeleteGame(ctx, cmd.GameID); err != nil {
		return p.failure("game not found", err, core.ErrGameNotFound)
	}
	p.log.Info().Str("user", cmd.UserID).Int64("game", cmd.GameID).Msg("game deleted")
	return ProcessorResponse{Success: true}
}

func (p *Processor) handleStats(ctx context.Context) ProcessorResponse {
	stats, err := p.svc.Stats(ctx)
	if err != nil {
		return p.failure("failed to read stats", err, core.ErrInternalError)
	}
	return ProcessorResponse{
		Success: true,
		Data:    stats,
	}
}

func (p *Processor) handleListAccounts(ctx context.Context) ProcessorResponse {
	accounts, err := p.svc.ListAccounts(ctx)
	if err != nil {
		return p.failure("failed to list accounts", err, core.ErrAccountNotFound)
	}
	return ProcessorResponse{
		Success: true,
		Data:    accounts,
	}
}

func (p *Processor) handleCreateAccount(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.AccountRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	acc, err := p.svc.CreateAccount(ctx, args.Username, args.Platform)
	if err != nil {
		return p.failure("failed to create account", err, core.ErrAccountNotFound)
	}
	return ProcessorResponse{
		Success: true,
		Data:    acc,
	}
}

func (p *Processor) handleDeleteAccount(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.AccountRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	deleted, err := p.svc.DeleteAccount(ctx, args.Username, args.Platform)
	if err != nil {
		return p.failure("account not found", err, core.ErrAccountNotFound)
	}
	return ProcessorResponse{
		Success: true,
		Data: map[string]any{
			"username":     strings.ToLower(args.Username),
			"platform":     args.Platform,
			"gamesDeleted": deleted,
		},
	}
}

// failure maps a service error to an error code. notFound is the code
// reported for storage.ErrNotFound.
func (p *Processor) failure(msg string, err error, notFound string) ProcessorResponse {
	code := core.ErrInternalError
	switch {
	case errors.Is(err, service.ErrStorageDisabled):
		code = core.ErrStorageDisabled
		msg = "storage disabled"
	case errors.Is(err, storage.ErrNotFound):
		code = notFound
	case errors.Is(err, storage.ErrAccountExists):
		code = core.ErrAccountExists
		msg = "account already exists"
	case errors.Is(err, service.ErrReadOnly):
		code = core.ErrQueryNotReadOnly
		msg = "only read-only queries are allowed"
	case errors.Is(err, query.ErrUnknownPlatform):
		code = core.ErrInvalidRequest
		msg = "unknown platform"
	case errors.Is(err, service.ErrQueryFailed):
		code = core.ErrQueryFailed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = core.ErrInternalError
		msg = "request cancelled"
	}

	if code == core.ErrInternalError {
		p.log.Error().Err(err).Msg(msg)
	}

	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error:   msg,
			Code:    code,
			Details: err.Error(),
		},
	}
}

func (p *Processor) errorResponse(msg string, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: msg,
			Code:  code,
		},
	}
}

// String names a command type for logs
func (t CommandType) String() string {
	names := [...]string{"ingest", "query", "get_game", "get_captures", "delete_game", "stats", "examples", "list_accounts", "create_account", "delete_account"}
	if int(t) < 0 || int(t) >= len(names) {
		return fmt.Sprintf("command(%d)", int(t))
	}
	return names[t]
}
