// Package engine реализует конечный автомат диалога выдачи писем.
// На каждого пользователя заводится одна сессия с текущим состоянием,
// собранными полями и не более чем одним живым артефактом. Каждый выход
// из Idle повторно проходит гейткипер; вторая проверка выполняется
// непосредственно перед отправкой и главнее первой.
//
// Движок не знает про конкретный чат-транспорт: на входящее событие он
// возвращает список транспортно-нейтральных ответов (текст, меню, фото,
// кнопки подтверждения, пейвол), которые транспорт отрисовывает сам.
package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/grishankov/letter-issuer/internal/models"
)

// State состояние сессии диалога.
type State int

const (
	StateIdle State = iota
	StateAwaitingPayment
	StateCAName
	StateCAEmail
	StateCAConfirm
	StateInternName
	StateInternConfirm
	StateOfferName
	StateOfferEmail
	StateOfferDate
	StateOfferConfirm
)

// String возвращает имя состояния для логов.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingPayment:
		return "awaiting_payment"
	case StateCAName:
		return "ca_name"
	case StateCAEmail:
		return "ca_email"
	case StateCAConfirm:
		return "ca_confirm"
	case StateInternName:
		return "intern_name"
	case StateInternConfirm:
		return "intern_confirm"
	case StateOfferName:
		return "offer_name"
	case StateOfferEmail:
		return "offer_email"
	case StateOfferDate:
		return "offer_date"
	case StateOfferConfirm:
		return "offer_confirm"
	default:
		return "unknown"
	}
}

// EventKind вид входящего события от транспорта.
type EventKind int

const (
	EventStart        EventKind = iota // Команда начала работы
	EventRefresh                       // Принудительное обновление статуса
	EventCancel                        // Универсальная отмена
	EventMenuSelect                    // Выбор пункта главного меню
	EventText                          // Свободный текст
	EventConfirmSend                   // Кнопка "отправить" на подтверждении
	EventCancelFinal                   // Кнопка "отмена" на подтверждении
	EventCheckPayment                  // Кнопка "я оплатил"
)

// Event входящее событие одного пользователя.
type Event struct {
	Kind EventKind
	Text string // Текст сообщения или подпись выбранного пункта меню
}

// ReplyKind вид ответа движка.
type ReplyKind int

const (
	ReplyText    ReplyKind = iota // Обычный текст
	ReplyMenu                     // Главное меню с видами писем
	ReplyPhoto                    // Фото превью письма
	ReplyConfirm                  // Текст с кнопками подтверждения
	ReplyPaywall                  // Пейвол с платёжной ссылкой
)

// Button кнопка в ответе.
type Button struct {
	Label  string `json:"label"`
	Action string `json:"action,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Reply один ответ пользователю.
type Reply struct {
	Kind      ReplyKind `json:"kind"`
	Text      string    `json:"text,omitempty"`
	PhotoPath string    `json:"photo_path,omitempty"`
	Buttons   []Button  `json:"buttons,omitempty"`
}

// Подписи пунктов главного меню. По ним же транспорт сообщает выбор.
const (
	MenuCampusAmbassador = "Campus Ambassador Letter"
	MenuInternship       = "Internship Acceptance Letter"
	MenuOffer            = "Offer Letter"
)

var menuKinds = map[string]models.LetterKind{
	MenuCampusAmbassador: models.LetterCampusAmbassador,
	MenuInternship:       models.LetterInternship,
	MenuOffer:            models.LetterOffer,
}

// Gatekeeper проверяет право пользователя на работу с сервисом.
type Gatekeeper interface {
	Check(ctx context.Context, userID int64, username string) models.Decision
	Refresh(userID int64) error
}

// StudentDirectory ищет студентов в клиентской таблице.
type StudentDirectory interface {
	FindStudent(ctx context.Context, name string) (*models.Student, error)
}

// Artifacts управляет жизненным циклом сгенерированных файлов.
type Artifacts interface {
	Create(ctx context.Context, kind models.LetterKind, fields models.LetterFields) (*models.Artifact, error)
	Release(a *models.Artifact)
}

// Dispatcher отправляет письмо по электронной почте.
type Dispatcher interface {
	Send(ctx context.Context, kind models.LetterKind, fields models.LetterFields, attachmentPath string) error
}

// Recorder записывает исход отправки; сбой записи не влияет на результат.
type Recorder interface {
	Record(kind models.LetterKind, recipientName, recipientEmail, sentBy, outcome string) bool
}

// PaymentLinks создаёт платёжные ссылки для пейвола.
type PaymentLinks interface {
	CreateLink(ctx context.Context, userID int64) (string, error)
}

// session сессия одного пользователя: состояние, поля и артефакт.
type session struct {
	state    State
	kind     models.LetterKind
	fields   models.LetterFields
	artifact *models.Artifact
}

// Engine конечный автомат диалога.
type Engine struct {
	mu       sync.Mutex
	sessions map[int64]*session

	gatekeeper Gatekeeper
	students   StudentDirectory
	artifacts  Artifacts
	dispatcher Dispatcher
	recorder   Recorder
	payments   PaymentLinks
	log        *slog.Logger
}

// New создает новый экземпляр Engine.
func New(gatekeeper Gatekeeper, students StudentDirectory, artifacts Artifacts,
	dispatcher Dispatcher, recorder Recorder, payments PaymentLinks, log *slog.Logger) *Engine {
	return &Engine{
		sessions:   make(map[int64]*session),
		gatekeeper: gatekeeper,
		students:   students,
		artifacts:  artifacts,
		dispatcher: dispatcher,
		recorder:   recorder,
		payments:   payments,
		log:        log,
	}
}

// StateOf возвращает текущее состояние сессии пользователя.
func (e *Engine) StateOf(userID int64) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if sess, ok := e.sessions[userID]; ok {
		return sess.state
	}
	return StateIdle
}

// Handle обрабатывает одно входящее событие и возвращает ответы.
// Транспорт обязан сериализовать события одного пользователя; мьютекс
// защищает карту сессий между пользователями и гарантирует, что в один
// момент выполняется ровно один переход.
func (e *Engine) Handle(ctx context.Context, userID int64, username string, ev Event) []Reply {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.sessions[userID]
	if !ok {
		sess = &session{state: StateIdle}
		e.sessions[userID] = sess
	}

	log := e.log.With(slog.Int64("user_id", userID), slog.String("state", sess.state.String()))

	// Универсальная отмена действует из любого состояния.
	if ev.Kind == EventCancel {
		return e.cancel(ctx, sess, userID, username)
	}

	switch sess.state {
	case StateIdle:
		return e.handleIdle(ctx, sess, userID, username, ev)
	case StateAwaitingPayment:
		return e.handleAwaitingPayment(ctx, sess, userID, username, ev)
	case StateCAName, StateCAEmail, StateInternName, StateOfferName, StateOfferEmail, StateOfferDate:
		return e.handleCollect(ctx, sess, userID, ev)
	case StateCAConfirm, StateInternConfirm, StateOfferConfirm:
		return e.handleConfirm(ctx, sess, userID, username, ev)
	default:
		log.Error("session in unknown state, resetting")
		e.reset(sess)
		return e.menuReplies()
	}
}
