package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/grishankov/letter-issuer/internal/lib/letterdates"
	"github.com/grishankov/letter-issuer/internal/lib/sl"
	"github.com/grishankov/letter-issuer/internal/models"
	"github.com/grishankov/letter-issuer/internal/sheets"
)

// handleIdle обрабатывает события в состоянии покоя: показ меню и старт
// потоков. Любой выход из Idle проходит через гейткипер.
func (e *Engine) handleIdle(ctx context.Context, sess *session, userID int64, username string, ev Event) []Reply {
	switch ev.Kind {
	case EventRefresh:
		if err := e.gatekeeper.Refresh(userID); err != nil {
			e.log.Warn("failed to refresh cached status", slog.Int64("user_id", userID), sl.Err(err))
		}
		replies := []Reply{{Kind: ReplyText, Text: "Refreshing your status..."}}
		allowed, gateReplies := e.gate(ctx, sess, userID, username)
		replies = append(replies, gateReplies...)
		if allowed {
			replies = append(replies, e.menuReplies()...)
		}
		return replies

	case EventMenuSelect:
		kind, ok := menuKinds[strings.TrimSpace(ev.Text)]
		if !ok {
			return []Reply{{Kind: ReplyText, Text: "Unknown option. Please choose an action from the menu."}}
		}
		allowed, gateReplies := e.gate(ctx, sess, userID, username)
		if !allowed {
			return gateReplies
		}
		return e.startFlow(sess, kind)

	default:
		// /start, свободный текст, повторное "я оплатил" и прочее
		// сводятся к показу меню после проверки доступа.
		allowed, gateReplies := e.gate(ctx, sess, userID, username)
		if !allowed {
			return gateReplies
		}
		replies := gateReplies
		return append(replies, e.menuReplies()...)
	}
}

// handleAwaitingPayment обрабатывает события за пейволом.
func (e *Engine) handleAwaitingPayment(ctx context.Context, sess *session, userID int64, username string, ev Event) []Reply {
	switch ev.Kind {
	case EventCheckPayment, EventRefresh:
		if err := e.gatekeeper.Refresh(userID); err != nil {
			e.log.Warn("failed to refresh cached status", slog.Int64("user_id", userID), sl.Err(err))
		}
		decision := e.gatekeeper.Check(ctx, userID, username)
		if !decision.Allow {
			if decision.Reason == models.DenyReasonTransient {
				return []Reply{{Kind: ReplyText, Text: "There was an error checking your account status. Please try again later."}}
			}
			return []Reply{{Kind: ReplyText, Text: "Your payment has not been confirmed yet. Please complete the payment and try again in a minute."}}
		}
		sess.state = StateIdle
		text := "Payment confirmed! Your subscription is active."
		if decision.Record != nil && !decision.Record.ExpiryDate.IsZero() {
			text = fmt.Sprintf("Payment confirmed! Your subscription is active until %s.",
				decision.Record.ExpiryDate.Format(models.ExpiryLayout))
		}
		replies := []Reply{{Kind: ReplyText, Text: text}}
		return append(replies, e.menuReplies()...)

	case EventStart:
		allowed, gateReplies := e.gate(ctx, sess, userID, username)
		if !allowed {
			return gateReplies
		}
		replies := gateReplies
		return append(replies, e.menuReplies()...)

	default:
		return []Reply{{Kind: ReplyText, Text: "Please complete the payment first, then press the check button."}}
	}
}

// handleCollect обрабатывает состояния сбора полей письма.
func (e *Engine) handleCollect(ctx context.Context, sess *session, userID int64, ev Event) []Reply {
	if ev.Kind != EventText {
		return []Reply{{Kind: ReplyText, Text: e.prompt(sess.state)}}
	}
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return []Reply{{Kind: ReplyText, Text: e.prompt(sess.state)}}
	}

	switch sess.state {
	case StateCAName:
		sess.fields.Name = text
		sess.state = StateCAEmail
		return []Reply{{Kind: ReplyText, Text: "Got it. What is their email address?"}}

	case StateCAEmail:
		sess.fields.Email = text
		return e.enterConfirm(ctx, sess, userID)

	case StateInternName:
		return e.lookupStudent(ctx, sess, userID, text)

	case StateOfferName:
		sess.fields.Name = text
		sess.state = StateOfferEmail
		return []Reply{{Kind: ReplyText, Text: "Got it. What is the candidate's email address?"}}

	case StateOfferEmail:
		sess.fields.Email = text
		sess.state = StateOfferDate
		return []Reply{{Kind: ReplyText, Text: "What is the training start date? (e.g., DD-MM-YYYY)"}}

	case StateOfferDate:
		sess.fields.TrainingDate = text
		return e.enterConfirm(ctx, sess, userID)

	default:
		return e.menuReplies()
	}
}

// lookupStudent ищет студента в справочнике и при успехе сразу переходит
// к подтверждению с данными из найденной записи.
func (e *Engine) lookupStudent(ctx context.Context, sess *session, userID int64, name string) []Reply {
	student, err := e.students.FindStudent(ctx, name)
	if err != nil {
		if errors.Is(err, sheets.ErrStudentNotFound) {
			e.reset(sess)
			replies := []Reply{{Kind: ReplyText,
				Text: fmt.Sprintf("Could not find a student named %q. Please check the spelling and start over.", name)}}
			return append(replies, e.menuReplies()...)
		}
		e.log.Error("failed to look up student", slog.Int64("user_id", userID), sl.Err(err))
		e.reset(sess)
		replies := []Reply{{Kind: ReplyText, Text: "There was an error looking up the student. Please try again later."}}
		return append(replies, e.menuReplies()...)
	}

	sess.fields = models.LetterFields{
		Name:   student.Name,
		Email:  student.Email,
		Domain: student.Domain,
		Month:  student.Month,
	}
	return e.enterConfirm(ctx, sess, userID)
}

// enterConfirm генерирует артефакт и переводит сессию в подтверждение.
// Перед генерацией освобождается предыдущий артефакт: у сессии в любой
// момент не больше одного живого набора файлов.
func (e *Engine) enterConfirm(ctx context.Context, sess *session, userID int64) []Reply {
	if sess.artifact != nil {
		e.artifacts.Release(sess.artifact)
		sess.artifact = nil
	}

	art, err := e.artifacts.Create(ctx, sess.kind, sess.fields)
	if err != nil {
		if sess.kind == models.LetterOffer && errors.Is(err, letterdates.ErrInvalidDate) {
			sess.state = StateOfferDate
			return []Reply{{Kind: ReplyText, Text: "Invalid date format. Please use DD-MM-YYYY."}}
		}
		e.log.Error("failed to generate letter preview", slog.Int64("user_id", userID),
			slog.String("kind", string(sess.kind)), sl.Err(err))
		e.reset(sess)
		replies := []Reply{{Kind: ReplyText, Text: "An error occurred while generating the preview. Please start over."}}
		return append(replies, e.menuReplies()...)
	}

	sess.artifact = art
	switch sess.kind {
	case models.LetterCampusAmbassador:
		sess.state = StateCAConfirm
	case models.LetterInternship:
		sess.state = StateInternConfirm
	case models.LetterOffer:
		sess.state = StateOfferConfirm
	}

	return []Reply{
		{Kind: ReplyPhoto, PhotoPath: art.PreviewPath},
		{
			Kind: ReplyConfirm,
			Text: fmt.Sprintf("This is a preview of the %s. Shall I send the full letter to %s?",
				sess.kind.Title(), sess.fields.Email),
			Buttons: []Button{
				{Label: "Yes, Send It", Action: "confirm_send"},
				{Label: "Cancel", Action: "cancel_final"},
			},
		},
	}
}

// handleConfirm обрабатывает состояния подтверждения отправки.
func (e *Engine) handleConfirm(ctx context.Context, sess *session, userID int64, username string, ev Event) []Reply {
	switch ev.Kind {
	case EventConfirmSend:
		return e.finalize(ctx, sess, userID, username)
	case EventCancelFinal:
		e.reset(sess)
		replies := []Reply{{Kind: ReplyText, Text: "Operation cancelled."}}
		return append(replies, e.menuReplies()...)
	default:
		return []Reply{{Kind: ReplyText, Text: "Please confirm or cancel sending the letter."}}
	}
}

// finalize повторно проверяет доступ и отправляет письмо. Независимо от
// исхода отправки артефакт освобождается, а сессия возвращается в Idle.
func (e *Engine) finalize(ctx context.Context, sess *session, userID int64, username string) []Reply {
	// Вторая проверка: статус мог измениться за время диалога, и она
	// важнее первой.
	decision := e.gatekeeper.Check(ctx, userID, username)
	if !decision.Allow {
		e.artifacts.Release(sess.artifact)
		sess.artifact = nil
		kind := sess.kind
		sess.fields = models.LetterFields{}
		sess.state = StateAwaitingPayment
		e.log.Info("send blocked by entitlement re-check",
			slog.Int64("user_id", userID), slog.String("kind", string(kind)),
			slog.String("reason", string(decision.Reason)))
		if decision.Reason == models.DenyReasonTransient {
			return []Reply{{Kind: ReplyText, Text: "There was an error checking your account status. The letter was not sent."}}
		}
		replies := []Reply{{Kind: ReplyText, Text: "Your subscription is no longer active. The letter was not sent."}}
		return append(replies, e.paywallReplies(ctx, userID)...)
	}

	replies := []Reply{{Kind: ReplyText, Text: "Processing and sending the letter..."}}

	kind := sess.kind
	fields := sess.fields
	// Письма без собственного направления отправляются с фиксированным.
	switch kind {
	case models.LetterCampusAmbassador:
		fields.Domain = "Community"
	case models.LetterOffer:
		fields.Domain = "General"
	}

	err := e.dispatcher.Send(ctx, kind, fields, sess.artifact.DocumentPath)
	if err != nil {
		e.log.Error("failed to dispatch letter", slog.Int64("user_id", userID),
			slog.String("kind", string(kind)), sl.Err(err))
		e.recorder.Record(kind, fields.Name, fields.Email, username, models.OutcomeFailed)
		replies = append(replies, Reply{Kind: ReplyText,
			Text: fmt.Sprintf("Failed to send the letter to %s. Please try again later.", fields.Email)})
	} else {
		e.recorder.Record(kind, fields.Name, fields.Email, username, models.OutcomeSent)
		replies = append(replies, Reply{Kind: ReplyText,
			Text: fmt.Sprintf("Success! The %s has been sent to %s.", kind.Title(), fields.Name)})
	}

	e.reset(sess)
	return append(replies, e.menuReplies()...)
}

// cancel обрабатывает универсальную отмену из любого состояния.
func (e *Engine) cancel(ctx context.Context, sess *session, userID int64, username string) []Reply {
	e.reset(sess)
	replies := []Reply{{Kind: ReplyText, Text: "Operation cancelled."}}
	allowed, gateReplies := e.gate(ctx, sess, userID, username)
	replies = append(replies, gateReplies...)
	if allowed {
		replies = append(replies, e.menuReplies()...)
	}
	return replies
}

// gate проверяет доступ при выходе из Idle. При отказе переводит сессию
// за пейвол или оставляет в Idle на временной ошибке.
func (e *Engine) gate(ctx context.Context, sess *session, userID int64, username string) (bool, []Reply) {
	decision := e.gatekeeper.Check(ctx, userID, username)
	if decision.Allow {
		return true, nil
	}

	var replies []Reply
	if decision.NewUser {
		replies = append(replies, Reply{Kind: ReplyText,
			Text: "Welcome! Your account has been registered."})
	}

	switch decision.Reason {
	case models.DenyReasonPaywall:
		paywall := e.paywallReplies(ctx, userID)
		if paywall == nil {
			// Без ссылки пейвол не имеет смысла, остаёмся в Idle.
			sess.state = StateIdle
			return false, append(replies, Reply{Kind: ReplyText,
				Text: "Could not create a payment link right now. Please try again later."})
		}
		sess.state = StateAwaitingPayment
		return false, append(replies, paywall...)
	default:
		sess.state = StateIdle
		return false, append(replies, Reply{Kind: ReplyText,
			Text: "There was an error checking your account status. Please try again later."})
	}
}

// paywallReplies строит пейвол с платёжной ссылкой. Возвращает nil, если
// ссылку создать не удалось.
func (e *Engine) paywallReplies(ctx context.Context, userID int64) []Reply {
	link, err := e.payments.CreateLink(ctx, userID)
	if err != nil {
		e.log.Error("failed to create payment link", slog.Int64("user_id", userID), sl.Err(err))
		return nil
	}
	return []Reply{{
		Kind: ReplyPaywall,
		Text: "Your access has expired. Please use the button below to make a one-time payment for 30 days of full access.",
		Buttons: []Button{
			{Label: "Pay Now", URL: link},
			{Label: "I've Paid, Check My Status", Action: "check_payment"},
		},
	}}
}

// startFlow начинает сбор полей выбранного вида письма.
func (e *Engine) startFlow(sess *session, kind models.LetterKind) []Reply {
	sess.kind = kind
	sess.fields = models.LetterFields{}
	switch kind {
	case models.LetterCampusAmbassador:
		sess.state = StateCAName
	case models.LetterInternship:
		sess.state = StateInternName
	case models.LetterOffer:
		sess.state = StateOfferName
	}
	return []Reply{{Kind: ReplyText, Text: e.prompt(sess.state)}}
}

// prompt возвращает вопрос текущего состояния сбора.
func (e *Engine) prompt(state State) string {
	switch state {
	case StateCAName:
		return "What is the full name of the campus ambassador?"
	case StateCAEmail:
		return "What is their email address?"
	case StateInternName:
		return "What is the full name of the student, exactly as registered?"
	case StateOfferName:
		return "What is the full name of the candidate?"
	case StateOfferEmail:
		return "What is the candidate's email address?"
	case StateOfferDate:
		return "What is the training start date? (e.g., DD-MM-YYYY)"
	default:
		return "Please choose an action from the menu."
	}
}

// reset освобождает артефакт и возвращает сессию в Idle.
func (e *Engine) reset(sess *session) {
	if sess.artifact != nil {
		e.artifacts.Release(sess.artifact)
		sess.artifact = nil
	}
	sess.fields = models.LetterFields{}
	sess.state = StateIdle
}

// menuReplies строит главное меню.
func (e *Engine) menuReplies() []Reply {
	return []Reply{{
		Kind: ReplyMenu,
		Text: "Please choose an action:",
		Buttons: []Button{
			{Label: MenuCampusAmbassador, Action: "menu_select"},
			{Label: MenuInternship, Action: "menu_select"},
			{Label: MenuOffer, Action: "menu_select"},
		},
	}}
}
