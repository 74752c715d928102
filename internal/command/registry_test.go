package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/jeenyuhs/Ragnarok/internal/game/session"
)

func noop(*Executor, *Call) string { return "" }

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r)
	assert.Len(t, r.Commands(), len(BuiltinCommands()))
}

func TestResolve_CanonicalName(t *testing.T) {
	cmd, ok := DefaultRegistry().Resolve("ping")
	require.True(t, ok)
	assert.Equal(t, "ping", cmd.Name)
	assert.Equal(t, CategoryGeneral, cmd.Category)
}

func TestResolve_Alias(t *testing.T) {
	r := MultiRegistry()

	cmd, ok := r.Resolve("ab")
	require.True(t, ok)
	assert.Equal(t, "abort", cmd.Name)

	cmd, ok = r.Resolve("wc")
	require.True(t, ok)
	assert.Equal(t, "win", cmd.Name)
}

func TestResolve_NotFound(t *testing.T) {
	_, ok := DefaultRegistry().Resolve("teleport")
	assert.False(t, ok)
	_, ok = MultiRegistry().Resolve("ping")
	assert.False(t, ok, "top-level commands are not multi subcommands")
}

func TestMultiRegistry_HasEverySubcommand(t *testing.T) {
	r := MultiRegistry()
	for _, name := range []string{"help", "start", "abort", "win", "move", "size", "invite"} {
		_, ok := r.Resolve(name)
		assert.True(t, ok, name)
	}
}

func TestNewRegistry_DuplicateName(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "ping", Run: noop},
		{Name: "ping", Run: noop},
	})
	assert.Error(t, err)
}

func TestNewRegistry_AliasCollidesWithName(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "start", Run: noop},
		{Name: "begin", Aliases: []string{"start"}, Run: noop},
	})
	assert.Error(t, err)
}

func TestNewRegistry_DuplicateAlias(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "abort", Aliases: []string{"ab"}, Run: noop},
		{Name: "abandon", Aliases: []string{"ab"}, Run: noop},
	})
	assert.Error(t, err)
}

func TestNewRegistry_MissingHandler(t *testing.T) {
	_, err := NewRegistry([]Command{{Name: "ping"}})
	assert.Error(t, err)
}

func TestCommands_SortedByName(t *testing.T) {
	cmds := MultiRegistry().Commands()
	for i := 1; i < len(cmds); i++ {
		assert.Less(t, cmds[i-1].Name, cmds[i].Name)
	}
}

func TestCommandsByCategory_SkipsHidden(t *testing.T) {
	r, err := NewRegistry([]Command{
		{Name: "ping", Category: CategoryGeneral, Run: noop},
		{Name: "secret", Category: CategoryGeneral, Hidden: true, Run: noop},
	})
	require.NoError(t, err)

	groups := r.CommandsByCategory()
	require.Len(t, groups[CategoryGeneral], 1)
	assert.Equal(t, "ping", groups[CategoryGeneral][0].Name)
}

func TestCommand_Permits(t *testing.T) {
	user := session.NewPlayer(session.Identity{ID: 2, Name: "u", Privileges: session.Normal | session.Verified}, session.ClientInfo{}, now)
	admin := session.NewPlayer(session.Identity{ID: 3, Name: "a", Privileges: session.Verified | session.Admin}, session.ClientInfo{}, now)

	open := Command{Name: "ping"}
	staff := Command{Name: "kick", Privileges: session.Moderator | session.Admin}

	assert.True(t, open.Permits(user))
	assert.False(t, staff.Permits(user))
	assert.True(t, staff.Permits(admin))
}

func TestPropertyEveryAliasResolvesToItsCommand(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		names := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{3,8}`), 1, 10, rapid.ID[string]).Draw(t, "names")
		cmds := make([]Command, len(names))
		for i, n := range names {
			cmds[i] = Command{Name: n, Aliases: []string{"_" + n}, Run: noop}
		}
		r, err := NewRegistry(cmds)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, n := range names {
			cmd, ok := r.Resolve("_" + n)
			if !ok || cmd.Name != n {
				t.Fatalf("alias _%s did not resolve to %s", n, n)
			}
		}
	})
}
