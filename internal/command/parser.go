package command

import "strings"

// ParseResult holds the parsed command name and arguments from a chat line.
type ParseResult struct {
	// Command is the first word after the prefix, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the raw text after the command.
	RawArgs string
}

// Parse strips prefix from line and splits the rest into a command and
// arguments.
//
// Postcondition: ok is false when line does not start with prefix or nothing
// follows it.
func Parse(prefix, line string) (result ParseResult, ok bool) {
	line = strings.TrimSpace(line)
	rest, found := strings.CutPrefix(line, prefix)
	if !found || prefix == "" {
		return ParseResult{}, false
	}
	result = Split(rest)
	return result, result.Command != ""
}

// Split separates a prefix-free line into a lowercased command word and its
// arguments.
func Split(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	spaceIdx := strings.IndexAny(line, " \t")
	if spaceIdx < 0 {
		return ParseResult{Command: strings.ToLower(line)}
	}

	rest := strings.TrimSpace(line[spaceIdx+1:])
	var args []string
	if rest != "" {
		args = strings.Fields(rest)
	}
	return ParseResult{
		Command: strings.ToLower(line[:spaceIdx]),
		Args:    args,
		RawArgs: rest,
	}
}
