package models

import "strings"

// CommandType enumerates supported bot commands.
type CommandType string

const (
	CommandForecast CommandType = "forecast"
	CommandLowStock CommandType = "lowstock"
	CommandReorder  CommandType = "reorder"
	CommandHelp     CommandType = "help"
	CommandUnknown  CommandType = "unknown"
)

// Command represents a parsed instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// IsSlashCommand reports whether the text is written as an explicit /command.
func IsSlashCommand(message string) bool {
	return strings.HasPrefix(strings.TrimSpace(message), "/")
}

// ParseCommand derives a Command instance from free-form text messages.
// Only the command word is case-insensitive; arguments such as inventory ids keep their case.
func ParseCommand(message string) Command {
	tokens := strings.Fields(message)
	cmd := Command{Raw: message}

	if len(tokens) == 0 {
		cmd.Type = CommandUnknown
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	switch head {
	case string(CommandForecast), "stock":
		cmd.Type = CommandForecast
	case string(CommandLowStock), "low":
		cmd.Type = CommandLowStock
	case string(CommandReorder), "order":
		cmd.Type = CommandReorder
	case string(CommandHelp), "aide":
		cmd.Type = CommandHelp
	default:
		cmd.Type = CommandUnknown
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
