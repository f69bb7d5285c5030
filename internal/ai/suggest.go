package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"TRIPPLANNER_BACK-END/internal/models"
)

// ChecklistCategories is the order categories are requested in.
var ChecklistCategories = []string{"Roupas", "Higiene", "Documentos", "Eletrônicos", "Outros"}

// destination of a trip is its title.
func destination(trip models.Trip) string {
	if t := strings.TrimSpace(trip.Title); t != "" {
		return t
	}
	return "um destino turístico"
}

// SuggestChecklist returns packing items grouped by category.
func (c *Client) SuggestChecklist(ctx context.Context, trip models.Trip) (map[string][]string, error) {
	prompt := fmt.Sprintf(`Crie um checklist de bagagem para uma viagem para %s com duração de %d dias.
Considere o clima provável e cultura local.

Retorne APENAS um JSON válido (sem markdown, sem `+"```json"+`) com a seguinte estrutura:
{
    "Roupas": ["item 1", "item 2"],
    "Higiene": ["item 1", "item 2"],
    "Documentos": ["item 1"],
    "Eletrônicos": ["item 1"],
    "Outros": ["item 1"]
}`, destination(trip), trip.DurationDays(5))

	var raw map[string][]string
	if err := c.complete(ctx, "checklist", prompt, &raw); err != nil {
		return nil, err
	}

	out := make(map[string][]string, len(raw))
	for category, items := range raw {
		category = strings.TrimSpace(category)
		if category == "" {
			category = models.DefaultChecklistCategory
		}
		for _, it := range items {
			if it = strings.TrimSpace(it); it != "" {
				out[category] = append(out[category], it)
			}
		}
	}
	return out, nil
}

// SortedCategories returns the keys of a suggested checklist, known categories first.
func SortedCategories(groups map[string][]string) []string {
	rank := make(map[string]int, len(ChecklistCategories))
	for i, c := range ChecklistCategories {
		rank[c] = i
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, iok := rank[keys[i]]
		rj, jok := rank[keys[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

// SuggestedEvent is one itinerary entry proposed by the model.
type SuggestedEvent struct {
	Day         int    `json:"day"`
	Time        string `json:"time"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// ItineraryDays is the number of days requested, end-start+1 clamped to [1,7].
func ItineraryDays(trip models.Trip) int {
	days := trip.DurationDays(0) + 1
	if days < 1 {
		days = 1
	}
	if days > 7 {
		days = 7
	}
	return days
}

// SuggestItinerary returns sanitized events: day within range, HH:MM time,
// category one of ACTIVITY, RESTAURANT or HOTEL.
func (c *Client) SuggestItinerary(ctx context.Context, trip models.Trip, interests string) ([]SuggestedEvent, error) {
	days := ItineraryDays(trip)
	if strings.TrimSpace(interests) == "" {
		interests = "pontos turísticos e gastronomia local"
	}
	prompt := fmt.Sprintf(`Crie um roteiro turístico detalhado para %s de %d dias.
O foco do viajante é: %s.

Retorne APENAS um JSON válido com uma lista de eventos chamada "events".
Cada evento deve ter:
- "day": número do dia (1, 2, 3...)
- "time": horário sugerido (formato HH:MM, ex: "09:00", "14:30")
- "name": nome do local ou atividade
- "location": O endereço aproximado ou nome da cidade (para geolocalização)
- "category": use APENAS um destes valores: "ACTIVITY" (para passeios/museus), "RESTAURANT" (para comida), "HOTEL" (se for check-in)
- "description": curta descrição (máx 100 caracteres)

Exemplo de estrutura:
{
    "events": [
        { "day": 1, "time": "09:00", "name": "Museu do Louvre", "location": "Rue de Rivoli, 75001 Paris", "category": "ACTIVITY", "description": "Arte clássica." }
    ]
}`, destination(trip), days, interests)

	var payload struct {
		Events []SuggestedEvent `json:"events"`
	}
	if err := c.complete(ctx, "itinerary", prompt, &payload); err != nil {
		return nil, err
	}

	events := make([]SuggestedEvent, 0, len(payload.Events))
	for _, ev := range payload.Events {
		ev.Name = strings.TrimSpace(ev.Name)
		if ev.Name == "" {
			continue
		}
		if ev.Day < 1 {
			ev.Day = 1
		}
		if ev.Day > days {
			ev.Day = days
		}
		if _, err := time.Parse("15:04", ev.Time); err != nil {
			ev.Time = "09:00"
		}
		switch strings.ToUpper(strings.TrimSpace(ev.Category)) {
		case models.ItemRestaurant:
			ev.Category = models.ItemRestaurant
		case models.ItemHotel:
			ev.Category = models.ItemHotel
		default:
			ev.Category = models.ItemActivity
		}
		events = append(events, ev)
	}
	return events, nil
}

// Insights are short practical tips about a destination.
type Insights struct {
	CurrencyTip Text `json:"currency_tip"`
	Plug        Text `json:"plug"`
	Phrases     Text `json:"phrases"`
	Safety      Text `json:"safety"`
	Curiosity   Text `json:"curiosity"`
}

// Text accepts a JSON string or an array of strings.
type Text string

func (f *Text) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = Text(strings.TrimSpace(s))
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*f = Text(strings.Join(list, "; "))
	return nil
}

func (c *Client) DestinationInsights(ctx context.Context, destination string) (Insights, error) {
	prompt := fmt.Sprintf(`Estou viajando para: %s.
Gere um JSON com dicas práticas e curtas (máximo 1 frase longa cada).
Campos obrigatórios:
- "currency_tip": Sobre a moeda local e se deve dar gorjeta.
- "plug": Tipo de tomada (ex: Tipo G) e voltagem.
- "phrases": 3 frases essenciais na língua local (Olá, Obrigado, Quanto custa).
- "safety": Uma dica de segurança importante ou região a evitar.
- "curiosity": Uma curiosidade cultural rápida.

Responda em Português do Brasil.
Retorne APENAS o JSON.`, destination)

	var out Insights
	if err := c.complete(ctx, "insights", prompt, &out); err != nil {
		return Insights{}, err
	}
	return out, nil
}
