package rooms

import (
	"log"

	"github.com/google/uuid"
	"github.com/thereayou/talkroom/internal/database"
	"github.com/thereayou/talkroom/internal/models"
)

// Manager связывает хранилище и живые комнаты: вход в комнату,
// отправка и история идут через него.
type Manager struct {
	db       *database.Database
	registry *Registry
}

func NewManager(db *database.Database) *Manager {
	return &Manager{
		db:       db,
		registry: NewRegistry(),
	}
}

func (m *Manager) Registry() *Registry {
	return m.registry
}

// JoinRoom проверяет доступ и подписывает на живую комнату.
// Историю подписка не реплеит — клиент сначала забирает ее страницами.
func (m *Manager) JoinRoom(roomID string, userID uuid.UUID) (*Subscription, error) {
	if _, err := m.db.GetRoom(roomID, userID); err != nil {
		return nil, err
	}

	live := m.registry.EnsureLiveRoom(roomID)
	return live.Subscribe(), nil
}

// SendMessage сохраняет сообщение и рассылает его подписчикам.
// Сначала коммит, потом publish: подписчик не должен увидеть
// сообщение, которого нет в базе. Неудача доставки после коммита
// не ошибка отправки.
func (m *Manager) SendMessage(roomID string, userID uuid.UUID, userName, userImage, text string, uploadIDs []string) (string, error) {
	// отклоненная отправка не должна оставлять живую комнату в реестре,
	// доступ атомарно перепроверяется внутри транзакции записи
	if _, err := m.db.GetRoom(roomID, userID); err != nil {
		return "", err
	}

	live := m.registry.EnsureLiveRoom(roomID)

	live.sendMu.Lock()
	defer live.sendMu.Unlock()

	message, err := m.db.SendMessage(roomID, userID, text, uploadIDs)
	if err != nil {
		return "", err
	}

	msg := ChatMessage{
		ID:        message.ID,
		RoomID:    roomID,
		UserID:    userID.String(),
		UserName:  userName,
		UserImage: userImage,
		CreatedAt: message.CreatedAt,
		Message:   message.Content,
		Uploads:   uploadRefs(message.Uploads),
	}

	if delivered := live.Publish(msg); delivered == 0 {
		log.Printf("room %s: message %s committed, no live subscribers", roomID, message.ID)
	}

	return message.ID, nil
}

// GetRoomMessages возвращает страницу истории и курсор следующей
// страницы. Короткая страница означает конец — курсор 0.
func (m *Manager) GetRoomMessages(roomID string, userID uuid.UUID, page int) ([]ChatMessage, int, error) {
	messages, err := m.db.GetMessagesForRoom(roomID, userID, page)
	if err != nil {
		return nil, 0, err
	}

	nextPage := 0
	if len(messages) == database.MaxFetch {
		nextPage = page + 1
	}

	result := make([]ChatMessage, len(messages))
	for i, msg := range messages {
		result[i] = ChatMessage{
			ID:        msg.ID,
			RoomID:    msg.RoomID,
			UserID:    msg.UserID.String(),
			UserName:  msg.User.Username,
			UserImage: msg.User.AvatarURL,
			CreatedAt: msg.CreatedAt,
			Message:   msg.Content,
			Uploads:   uploadRefs(msg.Uploads),
		}
	}

	return result, nextPage, nil
}

func uploadRefs(uploads []models.Upload) []UploadRef {
	if len(uploads) == 0 {
		return nil
	}
	refs := make([]UploadRef, len(uploads))
	for i, u := range uploads {
		refs[i] = UploadRef{
			ID:       u.ID,
			Filename: u.Filename,
			URL:      u.URL,
		}
	}
	return refs
}
