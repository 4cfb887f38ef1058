package rooms

import (
	"sync"
)

// Registry — общий для процесса каталог живых комнат.
// Поиск частый, создание редкое — поэтому RWMutex.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*LiveRoom
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*LiveRoom),
	}
}

// EnsureLiveRoom возвращает живую комнату, создавая ее при первом
// обращении. На гонке первых подписчиков создается ровно одна.
func (reg *Registry) EnsureLiveRoom(roomID string) *LiveRoom {
	reg.mu.RLock()
	room, ok := reg.rooms[roomID]
	reg.mu.RUnlock()
	if ok {
		return room
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if room, ok := reg.rooms[roomID]; ok {
		return room
	}

	room = newLiveRoom(roomID)
	reg.rooms[roomID] = room
	return room
}

// Get возвращает живую комнату, если она уже создана
func (reg *Registry) Get(roomID string) (*LiveRoom, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[roomID]
	return room, ok
}

// Publish рассылает сообщение подписчикам комнаты. Если живой комнаты
// нет (никто не подключен) — это не ошибка, сообщение уже в базе.
func (reg *Registry) Publish(roomID string, msg ChatMessage) int {
	room, ok := reg.Get(roomID)
	if !ok {
		return 0
	}
	return room.Publish(msg)
}

// Subscribers возвращает число живых подписок комнаты
func (reg *Registry) Subscribers(roomID string) int {
	room, ok := reg.Get(roomID)
	if !ok {
		return 0
	}
	return room.Subscribers()
}
