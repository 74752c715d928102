package command

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const defaultRollMax = 100

func help(x *Executor, _ *Call) string {
	groups := x.general.CommandsByCategory()
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("These are the commands supported by our chat bot.\n")
	for _, category := range names {
		fmt.Fprintf(&b, "%s commands:\n", category)
		for _, cmd := range groups[category] {
			fmt.Fprintf(&b, "%s%s - %s\n", x.opts.Prefix, cmd.Name, cmd.Help)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Use %smulti help for match commands.", x.opts.Prefix)
	return b.String()
}

func ping(*Executor, *Call) string { return "PONG" }

func roll(x *Executor, c *Call) string {
	limit := defaultRollMax
	if len(c.Args) > 0 {
		n, err := strconv.Atoi(c.Args[0])
		if err != nil || n < 0 {
			return fmt.Sprintf("Usage: %sroll [max]", x.opts.Prefix)
		}
		limit = n
	}
	return fmt.Sprintf("%s rolled %d point(s)", c.Player.Name, x.roller.Points(limit))
}
