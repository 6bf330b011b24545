package processor

import (
	"chessql/internal/server/core"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdIngest CommandType = iota
	CmdQuery
	CmdGetGame
	CmdGetCaptures
	CmdDeleteGame
	CmdStats
	CmdExamples
	CmdListAccounts
	CmdCreateAccount
	CmdDeleteAccount
)

// Command is a unified structure for all processor operations
type Command struct {
	Type   CommandType
	UserID string
	GameID int64 // For game-specific commands
	Args   any   // Command-specific arguments
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

func NewIngestCommand(req core.IngestRequest) Command {
	return Command{
		Type: CmdIngest,
		Args: req,
	}
}

func NewQueryCommand(req core.QueryRequest) Command {
	return Command{
		Type: CmdQuery,
		Args: req,
	}
}

func NewGetGameCommand(gameID int64) Command {
	return Command{
		Type:   CmdGetGame,
		GameID: gameID,
	}
}

func NewGetCapturesCommand(gameID int64) Command {
	return Command{
		Type:   CmdGetCaptures,
		GameID: gameID,
	}
}

func NewDeleteGameCommand(gameID int64) Command {
	return Command{
		Type:   CmdDeleteGame,
		GameID: gameID,
	}
}

func NewStatsCommand() Command {
	return Command{Type: CmdStats}
}

func NewExamplesCommand() Command {
	return Command{Type: CmdExamples}
}

func NewListAccountsCommand() Command {
	return Command{Type: CmdListAccounts}
}

func NewCreateAccountCommand(req core.AccountRequest) Command {
	return Command{
		Type: CmdCreateAccount,
		Args: req,
	}
}

func NewDeleteAccountCommand(req core.AccountRequest) Command {
	return Command{
		Type: CmdDeleteAccount,
		Args: req,
	}
}
