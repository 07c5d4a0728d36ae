package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmstock/internal/domain/models"
	"github.com/mamadbah2/farmstock/internal/forecast"
	"github.com/mamadbah2/farmstock/internal/service/forecasting"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

const helpMessage = "Commands:\n" +
	"/forecast [days] - reorder suggestions\n" +
	"/lowstock - items at or below their alert level\n" +
	"/reorder <inventory-id> [days] - draft a purchase order"

// Dispatcher executes parsed commands and returns the reply text.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface on top of the forecasting service.
type Service struct {
	forecaster forecasting.Forecaster
	logger     *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(forecaster forecasting.Forecaster, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		forecaster: forecaster,
		logger:     logger,
	}
}

// HandleCommand runs the command and formats the reply.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Any("args", cmd.Args))

	switch cmd.Type {
	case models.CommandForecast:
		horizon, err := s.horizonArg(cmd.Args, 0)
		if err != nil {
			return "", err
		}
		run, err := s.forecaster.Run(ctx, horizon)
		if err != nil {
			return "", err
		}
		return forecasting.FormatAlert(run), nil
	case models.CommandLowStock:
		records, err := s.forecaster.LowStock(ctx)
		if err != nil {
			return "", err
		}
		return formatLowStock(records), nil
	case models.CommandReorder:
		if len(cmd.Args) == 0 {
			return "", ErrInvalidArguments
		}
		horizon, err := s.horizonArg(cmd.Args, 1)
		if err != nil {
			return "", err
		}
		draft, err := s.forecaster.DraftOrder(ctx, cmd.Args[0], horizon)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Draft order %s: %d x %s for %s (%s priority).",
			draft.ID, draft.Quantity, draft.ProductName, draft.FarmName, draft.Priority), nil
	case models.CommandHelp:
		return helpMessage, nil
	default:
		return "", ErrUnsupportedCommand
	}
}

// ReplyForError turns a dispatch error into a message the sender can act on.
func ReplyForError(err error) string {
	switch {
	case errors.Is(err, ErrInvalidArguments):
		return "I could not read that command.\n" + helpMessage
	case errors.Is(err, ErrUnsupportedCommand):
		return "Unknown command.\n" + helpMessage
	case errors.Is(err, forecasting.ErrSuggestionNotFound):
		return "That item does not need a reorder right now."
	case errors.Is(err, forecasting.ErrUnsupportedHorizon):
		return "Forecast period not supported."
	case errors.Is(err, forecast.ErrInvalidArgument):
		return "Forecast period must be a positive number of days."
	default:
		return "Something went wrong, please try again later."
	}
}

func (s *Service) horizonArg(args []string, idx int) (int, error) {
	if idx >= len(args) {
		return s.forecaster.DefaultHorizon(), nil
	}
	days, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(args[idx]), "d"))
	if err != nil {
		return 0, ErrInvalidArguments
	}
	return days, nil
}

func formatLowStock(records []models.InventoryRecord) string {
	if len(records) == 0 {
		return "No item is at or below its alert level."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d item(s) at or below alert level:", len(records))
	for _, r := range records {
		fmt.Fprintf(&b, "\n- %s @ %s: %g %s (alert %g)", r.ProductName, r.FarmName, r.CurrentStock, r.Unit, r.Threshold())
	}
	return b.String()
}
