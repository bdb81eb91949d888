package scripted

import (
	"sync"
	"time"

	"longtake/internal/scene"
)

// Library maps section and clip names to scripted players.
type Library struct {
	mu      sync.RWMutex
	scenes  map[string]*Player
	bridges map[string]*Player
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{
		scenes:  make(map[string]*Player),
		bridges: make(map[string]*Player),
	}
}

// AddScene registers (and returns) a scene player.
func (l *Library) AddScene(name string, player *Player) *Player {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scenes[name] = player
	return player
}

// AddBridge registers (and returns) a bridge clip player.
func (l *Library) AddBridge(clip string, player *Player) *Player {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bridges[clip] = player
	return player
}

// Scene implements scene.Library. Unregistered names resolve to nil.
func (l *Library) Scene(name string) scene.Player {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if player, ok := l.scenes[name]; ok {
		return player
	}
	return nil
}

// Bridge implements scene.Library. Unregistered clips resolve to nil.
func (l *Library) Bridge(clip string) scene.Player {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if player, ok := l.bridges[clip]; ok {
		return player
	}
	return nil
}

// ScenePlayer returns the concrete scripted player for test assertions.
func (l *Library) ScenePlayer(name string) *Player {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.scenes[name]
}

// BridgePlayer returns the concrete scripted player for test assertions.
func (l *Library) BridgePlayer(clip string) *Player {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bridges[clip]
}

// Tick advances every playing player by wall, used by the headless driver.
func (l *Library) Tick(wall time.Duration) {
	l.mu.RLock()
	players := make([]*Player, 0, len(l.scenes)+len(l.bridges))
	for _, p := range l.scenes {
		players = append(players, p)
	}
	for _, p := range l.bridges {
		players = append(players, p)
	}
	l.mu.RUnlock()

	for _, p := range players {
		p.Advance(wall)
	}
}
