package rooms

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// SendBuffer — емкость канала подписчика. Переполнение означает,
// что подписчик отстал: новые сообщения для него отбрасываются,
// остальных это не задерживает.
const SendBuffer = 1000

// ChatMessage — денормализованное сообщение для живой доставки и истории
type ChatMessage struct {
	ID        string      `json:"id"`
	RoomID    string      `json:"room_id"`
	UserID    string      `json:"user_id"`
	UserName  string      `json:"user_name"`
	UserImage string      `json:"user_image,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	Message   string      `json:"message"`
	Uploads   []UploadRef `json:"uploads,omitempty"`
}

type UploadRef struct {
	ID       string `json:"id"`
	Filename string `json:"filename,omitempty"`
	URL      string `json:"url"`
}

// LiveRoom — широковещательная точка комнаты в памяти.
// Живет до конца процесса, подписчики приходят и уходят.
type LiveRoom struct {
	RoomID string

	mu   sync.RWMutex
	subs map[uuid.UUID]*Subscription

	// сериализует пары persist+publish, чтобы порядок рассылки
	// совпадал с порядком коммитов
	sendMu sync.Mutex
}

// Subscription — приемный конец подписки на LiveRoom
type Subscription struct {
	ID uuid.UUID
	C  <-chan ChatMessage

	ch      chan ChatMessage
	room    *LiveRoom
	dropped atomic.Int64
	once    sync.Once
}

func newLiveRoom(roomID string) *LiveRoom {
	return &LiveRoom{
		RoomID: roomID,
		subs:   make(map[uuid.UUID]*Subscription),
	}
}

// Subscribe создает новую подписку на комнату
func (r *LiveRoom) Subscribe() *Subscription {
	sub := &Subscription{
		ID:   uuid.New(),
		ch:   make(chan ChatMessage, SendBuffer),
		room: r,
	}
	sub.C = sub.ch

	r.mu.Lock()
	r.subs[sub.ID] = sub
	r.mu.Unlock()

	return sub
}

// Publish доставляет сообщение всем текущим подпискам без блокировки:
// у отставшего подписчика сообщение пропадает и растет счетчик пропусков.
// Возвращает число подписчиков, получивших сообщение.
func (r *LiveRoom) Publish(msg ChatMessage) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for _, sub := range r.subs {
		select {
		case sub.ch <- msg:
			delivered++
		default:
			sub.dropped.Add(1)
		}
	}
	return delivered
}

// Subscribers возвращает число живых подписок
func (r *LiveRoom) Subscribers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Lagged возвращает и сбрасывает число сообщений, пропущенных из-за
// переполнения. Пропуск — не ошибка потока: клиент добирает историю.
func (s *Subscription) Lagged() int64 {
	return s.dropped.Swap(0)
}

// Close отписывает от комнаты и закрывает приемный канал.
// Безопасно вызывать повторно.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.room.mu.Lock()
		delete(s.room.subs, s.ID)
		// под write-lock publish не идет, закрывать безопасно
		close(s.ch)
		s.room.mu.Unlock()
	})
}
