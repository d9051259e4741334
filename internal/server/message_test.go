package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samifarahneto/gamecartas/internal/holdem"
	"github.com/samifarahneto/gamecartas/internal/randutil"
)

func startedTable(t *testing.T) *holdem.Table {
	t.Helper()
	tbl := holdem.NewTableWithRand(holdem.DefaultConfig(), randutil.New(21))
	for _, nick := range []string{"alice", "bob", "carol"} {
		require.NoError(t, tbl.AddSeat(nick))
	}
	require.NoError(t, tbl.StartHand())
	return tbl
}

func TestBuildStateFrameIdleTable(t *testing.T) {
	tbl := holdem.NewTable(holdem.DefaultConfig())
	require.NoError(t, tbl.AddSeat("alice"))

	frame := BuildStateFrame(tbl, []string{"alice"}, "alice")

	assert.False(t, frame.Started)
	assert.Empty(t, frame.Hole)
	assert.Empty(t, frame.Community)
	assert.Nil(t, frame.ToAct)
	assert.Nil(t, frame.CallAmount)
	assert.Nil(t, frame.MinRaise)
	assert.NotNil(t, frame.RecentActions, "recentActions must encode as [], not null")
}

func TestBuildStateFrameActorFields(t *testing.T) {
	tbl := startedTable(t)
	players := []string{"alice", "bob", "carol"}

	// alice is dealer and first to act three-handed.
	actor := BuildStateFrame(tbl, players, "alice")
	require.NotNil(t, actor.ToAct)
	assert.Equal(t, "alice", *actor.ToAct)
	require.NotNil(t, actor.CallAmount)
	assert.Equal(t, 10, *actor.CallAmount)
	require.NotNil(t, actor.MinRaise)
	assert.Equal(t, 10, *actor.MinRaise)

	// Other recipients see whose turn it is, but not the actor-only amounts.
	bystander := BuildStateFrame(tbl, players, "bob")
	require.NotNil(t, bystander.ToAct)
	assert.Equal(t, "alice", *bystander.ToAct)
	assert.Nil(t, bystander.CallAmount)
	assert.Nil(t, bystander.MinRaise)
}

func TestBuildStateFrameHoleVisibility(t *testing.T) {
	tbl := startedTable(t)
	players := []string{"alice", "bob", "carol"}

	af := BuildStateFrame(tbl, players, "alice")
	bf := BuildStateFrame(tbl, players, "bob")

	assert.Len(t, af.Hole, 2)
	assert.Len(t, bf.Hole, 2)
	assert.NotEqual(t, af.Hole, bf.Hole)
	assert.Empty(t, af.AllHoles)
	assert.Nil(t, af.Winners)

	// A recipient who is not seated gets no hole cards.
	watcher := BuildStateFrame(tbl, players, "watcher")
	assert.Empty(t, watcher.Hole)
}

func TestBuildStateFrameShowdownReveals(t *testing.T) {
	tbl := startedTable(t)

	// Fold to one seat to reach showdown.
	for tbl.ToAct() != "" {
		require.True(t, tbl.Apply(tbl.ToAct(), holdem.ActionFold, 0))
		tbl.AutoAdvance()
	}
	require.Equal(t, holdem.Showdown, tbl.Street())

	frame := BuildStateFrame(tbl, []string{"alice", "bob", "carol"}, "alice")
	assert.NotEmpty(t, frame.Winners)
	assert.NotEmpty(t, frame.AllHoles)
}

func TestStateFrameWireFieldNames(t *testing.T) {
	tbl := startedTable(t)
	frame := BuildStateFrame(tbl, []string{"alice", "bob", "carol"}, "alice")

	b, err := json.Marshal(frame)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &raw))

	for _, key := range []string{
		"type", "players", "started", "community", "hole", "pot", "street",
		"toAct", "winners", "recentActions", "callAmount", "stacks",
		"dealer", "sb", "bb", "minRaise", "allHoles",
	} {
		assert.Contains(t, raw, key)
	}
	assert.Equal(t, json.RawMessage(`"state"`), raw["type"])
}

func TestCardEncodingOnWire(t *testing.T) {
	tbl := startedTable(t)
	frame := BuildStateFrame(tbl, []string{"alice", "bob", "carol"}, "alice")

	b, err := json.Marshal(frame)
	require.NoError(t, err)

	var decoded struct {
		Hole []string `json:"hole"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Len(t, decoded.Hole, 2)
	for _, code := range decoded.Hole {
		assert.Len(t, code, 2, "cards encode as two-character strings")
	}
}
