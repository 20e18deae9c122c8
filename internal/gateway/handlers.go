package gateway

import (
	"net/http"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"

	"github.com/HendryAvila/mission-control/internal/apperr"
	"github.com/HendryAvila/mission-control/internal/calendar"
	"github.com/HendryAvila/mission-control/internal/meals"
	"github.com/HendryAvila/mission-control/internal/notes"
	"github.com/HendryAvila/mission-control/internal/server"
	"github.com/HendryAvila/mission-control/internal/stages"
)

type handlers struct {
	svcs *server.Services
}

// action handles one POST action. A nil result means {"success": true}.
type action func(c *gin.Context, p payload) (gin.H, error)

func (h *handlers) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    APIName,
		"version": APIVersion,
		"endpoints": gin.H{
			"tasks":    "/api/tasks",
			"content":  "/api/content",
			"calendar": "/api/calendar",
			"memories": "/api/memories",
			"meals":    "/api/meals",
			"summary":  "/api/summary",
		},
	})
}

// dispatch decodes the JSON body and routes it by its "action" field.
// Every field other than those named in typed must be a string or null.
func (h *handlers) dispatch(actions map[string]action, typed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p payload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
			return
		}
		name, _ := p["action"].(string)
		run, ok := actions[name]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown action"})
			return
		}
		if err := p.checkStrings(typed); err != nil {
			fail(c, err)
			return
		}
		res, err := run(c, p)
		if err != nil {
			fail(c, err)
			return
		}
		if res == nil {
			res = gin.H{"success": true}
		}
		c.JSON(http.StatusOK, res)
	}
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
}

// --- Tasks and content ---

func (h *handlers) listTasks(c *gin.Context) {
	items, err := h.svcs.Tasks.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": nonNil(items)})
}

func (h *handlers) listContent(c *gin.Context) {
	items, err := h.svcs.Content.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": nonNil(items)})
}

func (h *handlers) taskActions() map[string]action {
	return boardActions(h.svcs.Tasks, boardFields{stage: "status", created: "task", move: "updateStatus"})
}

func (h *handlers) contentActions() map[string]action {
	return boardActions(h.svcs.Content, boardFields{stage: "stage", created: "item", move: "moveStage"})
}

// boardFields names the JSON fields that differ between boards: tasks
// carry a "status", content items a "stage".
type boardFields struct {
	stage   string
	created string
	move    string
}

func boardActions(board *stages.Board, f boardFields) map[string]action {
	return map[string]action{
		"create": func(c *gin.Context, p payload) (gin.H, error) {
			id, err := board.Create(c.Request.Context(), stages.CreateParams{
				Title: p.str("title", ""),
				Stage: p.str(f.stage, ""),
				Attrs: boardAttrs(board, p),
			})
			if err != nil {
				return nil, err
			}
			return gin.H{f.created: id}, nil
		},
		f.move: func(c *gin.Context, p payload) (gin.H, error) {
			id, err := p.id()
			if err != nil {
				return nil, err
			}
			return nil, board.TransitionStage(c.Request.Context(), id, p.str(f.stage, ""))
		},
		"update": func(c *gin.Context, p payload) (gin.H, error) {
			id, err := p.id()
			if err != nil {
				return nil, err
			}
			u := stages.UpdateParams{
				Title: p.optString("title"),
				Stage: p.optString(f.stage),
				Attrs: boardAttrs(board, p),
			}
			if u.IsEmpty() {
				return nil, apperr.Validation("nothing to update")
			}
			return nil, board.Update(c.Request.Context(), id, u)
		},
		"delete": func(c *gin.Context, p payload) (gin.H, error) {
			id, err := p.id()
			if err != nil {
				return nil, err
			}
			return nil, board.Remove(c.Request.Context(), id)
		},
	}
}

// boardAttrs collects the board's attributes from p, accepting both the
// snake_case name and its camelCase spelling (thumbnail_url, thumbnailUrl).
func boardAttrs(board *stages.Board, p payload) map[string]string {
	attrs := make(map[string]string)
	for _, name := range board.AttributeNames() {
		v := p.optString(name)
		if v == nil {
			v = p.optString(camel(name))
		}
		if v != nil {
			attrs[name] = *v
		}
	}
	return attrs
}

// --- Calendar ---

func (h *handlers) listCalendar(c *gin.Context) {
	tasks, err := h.svcs.Calendar.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": nonNil(tasks)})
}

func (h *handlers) calendarActions() map[string]action {
	svc := h.svcs.Calendar
	return map[string]action{
		"create": func(c *gin.Context, p payload) (gin.H, error) {
			at, err := p.optTime("scheduledAt")
			if err != nil {
				return nil, err
			}
			completed, err := p.optBool("completed")
			if err != nil {
				return nil, err
			}
			params := calendar.CreateParams{
				Title:      p.str("title", ""),
				Recurrence: p.str("recurrence", ""),
			}
			if at != nil {
				params.ScheduledAt = *at
			}
			if completed != nil {
				params.Completed = *completed
			}
			id, err := svc.Create(c.Request.Context(), params)
			if err != nil {
				return nil, err
			}
			return gin.H{"task": id}, nil
		},
		"update": func(c *gin.Context, p payload) (gin.H, error) {
			id, err := p.id()
			if err != nil {
				return nil, err
			}
			at, err := p.optTime("scheduledAt")
			if err != nil {
				return nil, err
			}
			completed, err := p.optBool("completed")
			if err != nil {
				return nil, err
			}
			return nil, svc.Update(c.Request.Context(), id, calendar.UpdateParams{
				Title:       p.optString("title"),
				ScheduledAt: at,
				Recurrence:  p.optString("recurrence"),
				Completed:   completed,
			})
		},
		"delete": func(c *gin.Context, p payload) (gin.H, error) {
			id, err := p.id()
			if err != nil {
				return nil, err
			}
			return nil, svc.Remove(c.Request.Context(), id)
		},
	}
}

// --- Memories ---

func (h *handlers) listMemories(c *gin.Context) {
	var (
		list []notes.Note
		err  error
	)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		list, err = h.svcs.Notes.Search(c.Request.Context(), q, 0)
	} else {
		list, err = h.svcs.Notes.List(c.Request.Context())
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"memories": nonNil(list)})
}

func (h *handlers) memoryActions() map[string]action {
	svc := h.svcs.Notes
	return map[string]action{
		"create": func(c *gin.Context, p payload) (gin.H, error) {
			id, err := svc.Create(c.Request.Context(), notes.CreateParams{
				Title:   p.str("title", ""),
				Content: p.str("content", ""),
				Date:    p.str("date", ""),
			})
			if err != nil {
				return nil, err
			}
			return gin.H{"memory": id}, nil
		},
		"update": func(c *gin.Context, p payload) (gin.H, error) {
			id, err := p.id()
			if err != nil {
				return nil, err
			}
			return nil, svc.Update(c.Request.Context(), id, notes.UpdateParams{
				Title:   p.optString("title"),
				Content: p.optString("content"),
				Date:    p.optString("date"),
			})
		},
		"delete": func(c *gin.Context, p payload) (gin.H, error) {
			id, err := p.id()
			if err != nil {
				return nil, err
			}
			return nil, svc.Remove(c.Request.Context(), id)
		},
	}
}

// --- Meals ---

func (h *handlers) listMeals(c *gin.Context) {
	ctx := c.Request.Context()
	list, err := h.svcs.Meals.ListMeals(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	top, err := h.svcs.Meals.TopRated(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	recent, err := h.svcs.Meals.RecentRatings(ctx, 0)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"meals":         nonNil(list),
		"topRated":      nonNil(top),
		"recentRatings": nonNil(recent),
	})
}

func (h *handlers) mealActions() map[string]action {
	svc := h.svcs.Meals
	return map[string]action{
		// rate attaches to mealId when given, otherwise resolves the meal
		// by name and creates it on first use.
		"rate": func(c *gin.Context, p payload) (gin.H, error) {
			verdicts, err := p.verdicts("ratings")
			if err != nil {
				return nil, err
			}
			if mealID := p.str("mealId", ""); mealID != "" {
				ratingID, err := svc.AddRating(c.Request.Context(), meals.AddRatingParams{
					MealID:   mealID,
					Date:     p.str("date", ""),
					Chef:     p.str("chef", ""),
					Verdicts: verdicts,
					Comments: p.str("comments", ""),
				})
				if err != nil {
					return nil, err
				}
				return gin.H{"mealId": mealID, "ratingId": ratingID}, nil
			}
			mealID, ratingID, err := svc.Record(c.Request.Context(), meals.RecordParams{
				Name:     p.str("name", ""),
				Chef:     p.str("chef", ""),
				Date:     p.str("date", ""),
				Verdicts: verdicts,
				Comments: p.str("comments", ""),
			})
			if err != nil {
				return nil, err
			}
			return gin.H{"mealId": mealID, "ratingId": ratingID}, nil
		},
		"deleteMeal": func(c *gin.Context, p payload) (gin.H, error) {
			id, err := p.id()
			if err != nil {
				return nil, err
			}
			return nil, svc.RemoveMeal(c.Request.Context(), id)
		},
		"deleteRating": func(c *gin.Context, p payload) (gin.H, error) {
			id, err := p.id()
			if err != nil {
				return nil, err
			}
			return nil, svc.RemoveRating(c.Request.Context(), id)
		},
	}
}

// --- Summary ---

func (h *handlers) summary(c *gin.Context) {
	s, err := h.svcs.Summary.Build(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// --- Request body helpers ---

// payload is a decoded {action, ...fields} request body.
type payload map[string]any

// checkStrings rejects non-string values in every field except action and
// the typed ones.
func (p payload) checkStrings(typed []string) error {
	for key, v := range p {
		if v == nil || key == "action" || slices.Contains(typed, key) {
			continue
		}
		if _, ok := v.(string); !ok {
			return apperr.Validation("%s must be a string", key)
		}
	}
	return nil
}

// optString returns the field when it is a non-null string.
func (p payload) optString(key string) *string {
	s, ok := p[key].(string)
	if !ok {
		return nil
	}
	return &s
}

func (p payload) str(key, def string) string {
	if s := p.optString(key); s != nil {
		return *s
	}
	return def
}

func (p payload) id() (string, error) {
	id := strings.TrimSpace(p.str("id", ""))
	if id == "" {
		return "", apperr.Validation("id is required")
	}
	return id, nil
}

func (p payload) optBool(key string) (*bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, apperr.Validation("%s must be a boolean", key)
	}
	return &b, nil
}

// optTime accepts Unix milliseconds or an RFC 3339 string.
func (p payload) optTime(key string) (*time.Time, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case float64:
		t := time.UnixMilli(int64(x)).UTC()
		return &t, nil
	case string:
		t, err := time.Parse(time.RFC3339, x)
		if err != nil {
			return nil, apperr.Validation("%s must be RFC 3339 or Unix milliseconds", key)
		}
		return &t, nil
	default:
		return nil, apperr.Validation("%s must be RFC 3339 or Unix milliseconds", key)
	}
}

// verdicts reads a {rater: "up"|"down"} object. Verdict values are
// checked by the meals service.
func (p payload) verdicts(key string) (map[string]meals.Verdict, error) {
	out := make(map[string]meals.Verdict)
	v, ok := p[key]
	if !ok || v == nil {
		return out, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, apperr.Validation("%s must be an object of rater verdicts", key)
	}
	for rater, raw := range m {
		if raw == nil {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			return nil, apperr.Validation("verdict for %s must be a string", rater)
		}
		out[rater] = meals.Verdict(s)
	}
	return out, nil
}

// camel converts snake_case to camelCase.
func camel(s string) string {
	var b strings.Builder
	upper := false
	for _, r := range s {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
