package roster

import (
	"testing"

	"artyserver/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupFallsBackToDefault(t *testing.T) {
	spec := Lookup("no-such-character")
	assert.Equal(t, DefaultCharacter, spec.ID)
}

func TestNewGamePlayerInitialState(t *testing.T) {
	c := &models.Client{ID: "c1", Name: "Alice", Character: "juggernaut"}

	p := NewGamePlayer(c)
	spec := Lookup("juggernaut")

	assert.Equal(t, "c1", p.ID)
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, spec.MaxHealth, p.Health)
	assert.Equal(t, spec.MaxHealth, p.MaxHealth)
	assert.Equal(t, spec.DamageMult, p.DamageMult)
	assert.True(t, p.Alive)
	assert.Empty(t, p.Effects)
}

func TestNewGamePlayerCopiesLoadout(t *testing.T) {
	c := &models.Client{ID: "c1", Character: "striker"}

	p := NewGamePlayer(c)
	require.Contains(t, p.Inventory, ItemHeal)

	// インベントリはカタログのコピーで、消費してもカタログ側は減らない
	p.Inventory[ItemHeal]--
	assert.Equal(t, Lookup("striker").Loadout[ItemHeal], p.Inventory[ItemHeal]+1)

	other := NewGamePlayer(&models.Client{ID: "c2", Character: "striker"})
	assert.Equal(t, Lookup("striker").Loadout[ItemHeal], other.Inventory[ItemHeal])
}

func TestUnlimitedWeapon(t *testing.T) {
	p := NewGamePlayer(&models.Client{ID: "c1", Character: "scout"})
	assert.Equal(t, -1, p.Inventory[ItemBazooka])
}
