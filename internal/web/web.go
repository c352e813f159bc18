package web

import (
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Joseda-hg/taskmaster/internal/app"
	"github.com/Joseda-hg/taskmaster/internal/model"
	"github.com/Joseda-hg/taskmaster/internal/query"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type Server struct {
	state  *app.State
	router *gin.Engine
	now    func() time.Time
}

type Option func(*Server)

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

func NewServer(state *app.State, opts ...Option) *Server {
	s := &Server{state: state, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.SetHTMLTemplate(template.Must(template.New("").Funcs(s.templateFuncs()).ParseFS(templateFS, "templates/*.tmpl")))
	s.router = router

	router.GET("/", s.handleIndex)
	router.GET("/tasks/:id", s.handleTask)

	api := router.Group("/api")
	{
		api.GET("/tasks", s.handleAPIList)
		api.GET("/tasks/grouped", s.handleAPIGrouped)
		api.GET("/stats", s.handleAPIStats)
		api.POST("/tasks", s.handleAPICreate)
		api.GET("/tasks/:id", s.handleAPITask)
		api.PUT("/tasks/:id", s.handleAPIUpdate)
		api.DELETE("/tasks/:id", s.handleAPIDelete)
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// requestLogger sends access logs through logrus so they end up in the log
// file instead of on the terminal the TUI is drawing.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("web request")
	}
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"due": func(due time.Time) string {
			if due.IsZero() {
				return "no due date"
			}
			return humanize.RelTime(due, s.now(), "ago", "from now")
		},
		"overdue": func(task model.Task) bool {
			return task.Overdue(s.now())
		},
		"when": func(t time.Time) string {
			if t.IsZero() {
				return "n/a"
			}
			return t.Local().Format("2006-01-02 15:04")
		},
		"statusTitle": statusTitle,
		"assignee": func(assignee string) string {
			if assignee == "" {
				return "unassigned"
			}
			return assignee
		},
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	filter := filterFromRequest(c)
	groups := s.state.GroupsFor(filter)

	data := struct {
		Filter   model.FilterSpec
		Stats    model.Stats
		Total    int
		Sections []query.Section
	}{
		Filter:   filter,
		Stats:    s.state.Stats(),
		Total:    groups.Len(),
		Sections: groups.Sections(),
	}

	c.HTML(http.StatusOK, "index.tmpl", data)
}

func (s *Server) handleTask(c *gin.Context) {
	task, err := s.state.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	history, err := s.state.History(c.Request.Context(), task.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	data := struct {
		Task    model.Task
		History []model.HistoryEntry
	}{Task: task, History: history}

	c.HTML(http.StatusOK, "task.tmpl", data)
}

func (s *Server) handleAPIList(c *gin.Context) {
	c.JSON(http.StatusOK, s.state.Apply(filterFromRequest(c)))
}

func (s *Server) handleAPIGrouped(c *gin.Context) {
	c.JSON(http.StatusOK, s.state.GroupsFor(filterFromRequest(c)))
}

func (s *Server) handleAPIStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.state.Stats())
}

func (s *Server) handleAPITask(c *gin.Context) {
	task, err := s.state.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	history, err := s.state.History(c.Request.Context(), task.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	if history == nil {
		history = []model.HistoryEntry{}
	}

	c.JSON(http.StatusOK, gin.H{"task": task, "history": history})
}

// createRequest accepts either explicit fields or a one-line description in
// Text. Explicit fields win over what the description says.
type createRequest struct {
	app.TaskInput
	Text string `json:"text"`
}

func (r createRequest) input(now time.Time) (app.TaskInput, error) {
	if strings.TrimSpace(r.Text) == "" {
		return r.TaskInput, nil
	}
	parsed, err := app.ParseTaskText(r.Text, now)
	if err != nil && strings.TrimSpace(r.Title) == "" {
		return app.TaskInput{}, err
	}
	if err != nil {
		parsed = app.TaskInput{DueDate: r.DueDate}
	}
	if r.Title != "" {
		parsed.Title = r.Title
	}
	if r.Assignee != "" {
		parsed.Assignee = r.Assignee
	}
	if r.Priority != "" {
		parsed.Priority = r.Priority
	}
	if r.Status != "" {
		parsed.Status = r.Status
	}
	if !r.DueDate.IsZero() {
		parsed.DueDate = r.DueDate
	}
	return parsed, nil
}

func (s *Server) handleAPICreate(c *gin.Context) {
	var request createRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		writeError(c, invalidInput(err))
		return
	}
	input, err := request.input(s.now())
	if err != nil {
		writeError(c, err)
		return
	}

	task, err := s.state.Add(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleAPIUpdate(c *gin.Context) {
	var input app.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		writeError(c, invalidInput(err))
		return
	}

	task, err := s.state.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (s *Server) handleAPIDelete(c *gin.Context) {
	if err := s.state.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// filterFromRequest reads q, priority, assignee, status and sort. The sort
// defaults to due date like the terminal view.
func filterFromRequest(c *gin.Context) model.FilterSpec {
	filter := model.FilterSpec{
		Search:   c.Query("q"),
		Priority: model.Priority(c.Query("priority")),
		Assignee: c.Query("assignee"),
		Status:   model.Status(c.Query("status")),
		SortBy:   model.SortKey(c.Query("sort")),
	}.Trimmed()
	if filter.SortBy == "" {
		filter.SortBy = model.SortByDueDate
	}
	return filter
}

func statusTitle(status model.Status) string {
	switch status {
	case model.StatusPending:
		return "Pending"
	case model.StatusInProgress:
		return "In Progress"
	case model.StatusCompleted:
		return "Completed"
	default:
		return "Other"
	}
}
