// Package assistant answers natural-language questions about the catalog
// and the event calendar. It only reads; every mutation stays behind the
// regular endpoints.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/avpro-events/avpro-backend/internal/dashboard"
	"github.com/avpro-events/avpro-backend/pkg/db/models"
	pkgerrors "github.com/avpro-events/avpro-backend/pkg/errors"
	"github.com/avpro-events/avpro-backend/pkg/logger"
	"github.com/avpro-events/avpro-backend/pkg/openai"
)

const (
	assistantName = "AV Pro Assistant"

	// Fixed responses so the UI never shows a raw provider failure.
	unavailableAnswer = "El asistente AV Pro no está disponible en este momento: falta configurar la clave del proveedor de IA."
	failureAnswer     = "Lo siento, no pude procesar tu pregunta en este momento. Inténtalo de nuevo en unos minutos."
)

type chatClient interface {
	Chat(ctx context.Context, req openai.ChatRequest) (string, error)
}

type articleLister interface {
	ListAll(ctx context.Context) ([]models.Article, error)
}

type summarizer interface {
	Summary(ctx context.Context) (*dashboard.Summary, error)
}

type eventLister interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
}

// Answer is the assistant's reply to one question.
type Answer struct {
	Reply     string `json:"respuesta"`
	Generated bool   `json:"generada"`
}

// Service exposes the assistant chat operation.
type Service interface {
	Ask(ctx context.Context, question string) (*Answer, error)
}

type service struct {
	client    chatClient
	articles  articleLister
	events    eventLister
	dashboard summarizer
	logg      *logger.Logger
}

// NewService constructs the assistant. A nil client means no provider key is
// configured; questions then get the fixed unavailability answer.
func NewService(client chatClient, articles articleLister, events eventLister, summaries summarizer, logg *logger.Logger) (Service, error) {
	if articles == nil {
		return nil, fmt.Errorf("article lister required")
	}
	if events == nil {
		return nil, fmt.Errorf("event lister required")
	}
	if summaries == nil {
		return nil, fmt.Errorf("dashboard summarizer required")
	}
	return &service{
		client:    client,
		articles:  articles,
		events:    events,
		dashboard: summaries,
		logg:      logg,
	}, nil
}

// Ask grounds the question on current inventory and calendar data and asks
// the provider for an answer.
func (s *service) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "question is required")
	}
	if s.client == nil {
		return &Answer{Reply: unavailableAnswer, Generated: false}, nil
	}

	businessContext, err := s.buildContext(ctx)
	if err != nil {
		return nil, err
	}

	reply, err := s.client.Chat(ctx, openai.ChatRequest{
		Messages: []openai.Message{
			{Role: "system", Content: systemPrompt(businessContext)},
			{Role: "user", Content: question},
		},
		Temperature: 0.2,
	})
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "assistant provider call failed", err)
		}
		return &Answer{Reply: failureAnswer, Generated: false}, nil
	}
	return &Answer{Reply: reply, Generated: true}, nil
}

// buildContext serializes a compact snapshot: articles, events without their
// line items, and the dashboard aggregates.
func (s *service) buildContext(ctx context.Context) (string, error) {
	articles, err := s.articles.ListAll(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list articles for assistant")
	}
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list events for assistant")
	}
	summary, err := s.dashboard.Summary(ctx)
	if err != nil {
		return "", err
	}

	type contextArticle struct {
		Code         string `json:"codigo"`
		Description  string `json:"descripcion"`
		Type         string `json:"tipo"`
		TotalQty     int    `json:"cantidad_total"`
		AvailableQty int    `json:"cantidad_disponible"`
		Status       string `json:"estado"`
	}
	type contextEvent struct {
		Code        string `json:"codigo_evento"`
		Date        string `json:"fecha"`
		Description string `json:"descripcion"`
		Venue       string `json:"salon"`
		Company     string `json:"compania"`
		GrossTotal  string `json:"total_general"`
	}

	snapshot := struct {
		Articles []contextArticle   `json:"articulos"`
		Events   []contextEvent     `json:"eventos"`
		Summary  *dashboard.Summary `json:"resumen"`
	}{
		Articles: make([]contextArticle, 0, len(articles)),
		Events:   make([]contextEvent, 0, len(events)),
		Summary:  summary,
	}

	for _, article := range articles {
		snapshot.Articles = append(snapshot.Articles, contextArticle{
			Code:         article.Code,
			Description:  article.Description,
			Type:         article.Type.String(),
			TotalQty:     article.TotalQty,
			AvailableQty: article.AvailableQty,
			Status:       article.Status.String(),
		})
	}
	for _, event := range events {
		snapshot.Events = append(snapshot.Events, contextEvent{
			Code:        event.Code,
			Date:        event.Date.Format("2006-01-02"),
			Description: event.Description,
			Venue:       event.Venue,
			Company:     event.Company,
			GrossTotal:  event.GrossTotal.String(),
		})
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal assistant context")
	}
	return string(raw), nil
}

func systemPrompt(businessContext string) string {
	return fmt.Sprintf(
		"Eres %s, el asistente del sistema de inventario y eventos de una empresa de alquiler audiovisual. "+
			"Responde en el idioma de la pregunta, de forma breve y basándote únicamente en estos datos:\n%s",
		assistantName, businessContext,
	)
}
