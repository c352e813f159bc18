package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
	log "github.com/sirupsen/logrus"

	"github.com/Joseda-hg/taskmaster/internal/app"
	"github.com/Joseda-hg/taskmaster/internal/model"
)

const (
	viewHeader     = "header"
	viewFooter     = "footer"
	viewPending    = "pending"
	viewInProgress = "inProgress"
	viewCompleted  = "completed"
	viewDetails    = "details"
	viewHistory    = "history"
	viewSearch     = "search"
	viewQuickAdd   = "quickAdd"
	viewForm       = "form"
	viewHelp       = "help"
)

type UI struct {
	state *app.State
	gui   *gocui.Gui
	now   func() time.Time

	pending    []model.Task
	inProgress []model.Task
	completed  []model.Task
	stats      model.Stats
	assignees  []string
	history    []model.HistoryEntry

	selectedPending    int
	selectedInProgress int
	selectedCompleted  int
	selectedHistory    int
	focus              string

	form         *formState
	formEditor   *formEditor
	searchActive bool
	quickActive  bool
	helpActive   bool
	status       string
}

type formState struct {
	taskID string
	fields []formField
	index  int
}

type formEditor struct {
	ui *UI
}

func Run(state *app.State) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := newUI(state)
	ui.gui = gui
	gui.Mouse = true
	ui.formEditor = &formEditor{ui: ui}

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}
	if err := ui.loadTasks(); err != nil {
		return err
	}

	if err := gui.MainLoop(); err != nil && !goerrors.Is(err, gocui.ErrQuit) {
		return err
	}

	return nil
}

func newUI(state *app.State) *UI {
	return &UI{
		state: state,
		now:   time.Now,
		focus: viewPending,
	}
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	global := []struct {
		key     any
		handler func(*gocui.Gui, *gocui.View) error
	}{
		{gocui.KeyCtrlC, u.quit},
		{'q', u.quit},
		{'r', u.reload},
		{'g', u.clearFilters},
		{'a', u.addTask},
		{'n', u.startQuickAdd},
		{'e', u.editTask},
		{'d', u.deleteTask},
		{'c', u.toggleInProgress},
		{'x', u.toggleCompleted},
		{'p', u.cyclePriorityFilter},
		{'u', u.cycleAssigneeFilter},
		{'t', u.cycleStatusFilter},
		{'o', u.cycleSort},
		{'/', u.startSearch},
		{'?', u.toggleHelp},
		{gocui.KeyTab, u.switchFocus},
		{'1', u.focusPending},
		{'2', u.focusInProgress},
		{'3', u.focusCompleted},
		{'4', u.focusDetails},
		{'5', u.focusHistory},
	}
	for _, binding := range global {
		if err := gui.SetKeybinding("", binding.key, gocui.ModNone, binding.handler); err != nil {
			return err
		}
	}

	for _, name := range []string{viewPending, viewInProgress, viewCompleted, viewHistory} {
		if err := gui.SetKeybinding(name, gocui.KeyArrowDown, gocui.ModNone, u.moveDown); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, 'j', gocui.ModNone, u.moveDown); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.KeyArrowUp, gocui.ModNone, u.moveUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, 'k', gocui.ModNone, u.moveUp); err != nil {
			return err
		}
		viewName := name
		if err := gui.SetViewClickBinding(&gocui.ViewMouseBinding{ViewName: viewName, Key: gocui.MouseLeft, Handler: func(opts gocui.ViewMouseBindingOpts) error {
			return u.onListClick(gui, viewName, opts)
		}}); err != nil {
			return err
		}
	}

	if err := gui.SetKeybinding(viewSearch, gocui.KeyEnter, gocui.ModNone, u.submitSearch); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewSearch, gocui.KeyEsc, gocui.ModNone, u.cancelSearch); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewQuickAdd, gocui.KeyEnter, gocui.ModNone, u.submitQuickAdd); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewQuickAdd, gocui.KeyEsc, gocui.ModNone, u.cancelQuickAdd); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEnter, gocui.ModNone, u.submitFormNow); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyTab, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyBacktab, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowDown, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowUp, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEsc, gocui.ModNone, u.cancelForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, gocui.KeyEsc, gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, 'q', gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, '?', gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	return u.bindMouseScroll(gui)
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.Wrap = true
	headerView.FgColor = gocui.ColorDefault
	u.renderHeader(headerView)

	footerY1 := maxY - 2
	if footerY1 < 2 {
		footerY1 = 2
	}
	footerY0 := footerY1 - 2
	if footerY0 < 2 {
		footerY0 = 2
	}
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	footerView.BgColor = gocui.ColorDefault
	u.renderFooter(footerView)

	bodyTop := 2
	bodyBottom := footerY0 - 1
	if bodyBottom < bodyTop {
		return nil
	}

	layout := computeLayout(maxX, bodyBottom-bodyTop+1)
	leftX0 := 0
	leftX1 := leftX0 + layout.leftWidth - 1
	rightX0 := leftX1 + 1
	if rightX0 >= maxX {
		rightX0 = leftX1
	}
	rightX1 := maxX - 1

	pendingY0 := bodyTop
	pendingY1 := pendingY0 + layout.pendingHeight - 1
	inProgressY0 := pendingY1 + 1
	inProgressY1 := inProgressY0 + layout.inProgressHeight - 1
	completedY0 := inProgressY1 + 1
	completedY1 := bodyBottom

	detailsY0 := bodyTop
	detailsY1 := detailsY0 + layout.detailsHeight - 1
	historyY0 := detailsY1 + 1
	historyY1 := bodyBottom

	panes := []struct {
		name     string
		title    string
		color    gocui.Attribute
		tasks    []model.Task
		selected int
		y0, y1   int
	}{
		{viewPending, "1 " + formatGroupTitle(model.StatusPending), gocui.ColorYellow, u.pending, u.selectedPending, pendingY0, pendingY1},
		{viewInProgress, "2 " + formatGroupTitle(model.StatusInProgress), gocui.ColorBlue, u.inProgress, u.selectedInProgress, inProgressY0, inProgressY1},
		{viewCompleted, "3 " + formatGroupTitle(model.StatusCompleted), gocui.ColorGreen, u.completed, u.selectedCompleted, completedY0, completedY1},
	}
	for _, pane := range panes {
		view, err := gui.SetView(pane.name, leftX0, pane.y0, leftX1, pane.y1, 0)
		if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		view.Title = fmt.Sprintf("%s (%d)", pane.title, len(pane.tasks))
		view.TitleColor = pane.color
		applyViewStyle(view, u.focus == pane.name, true)
		u.renderTaskList(view, pane.tasks, pane.selected, u.focus == pane.name)
	}

	detailsView, err := gui.SetView(viewDetails, rightX0, detailsY0, rightX1, detailsY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		detailsView.Title = "4 Details"
		detailsView.Wrap = true
	}
	applyViewStyle(detailsView, u.focus == viewDetails, false)
	u.renderDetails(detailsView)

	historyView, err := gui.SetView(viewHistory, rightX0, historyY0, rightX1, historyY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		historyView.Title = "5 History"
	}
	applyViewStyle(historyView, u.focus == viewHistory, true)
	u.renderHistory(historyView, u.focus == viewHistory)

	_, _ = gui.SetViewOnTop(viewHeader)
	_, _ = gui.SetViewOnTop(viewFooter)

	if u.searchActive {
		if err := u.showSearch(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewSearch)
	}

	if u.quickActive {
		if err := u.showQuickAdd(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewQuickAdd)
	}

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewForm)
	}

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if gui.CurrentView() == nil {
		_, _ = gui.SetCurrentView(u.focus)
	}

	gui.Cursor = u.searchActive || u.quickActive || u.form != nil

	return nil
}

type layout struct {
	leftWidth        int
	pendingHeight    int
	inProgressHeight int
	completedHeight  int
	detailsHeight    int
	historyHeight    int
}

func computeLayout(width, height int) layout {
	safeWidth := max(width-2, 20)
	safeHeight := max(height, 9)

	leftWidth := safeWidth / 2
	if leftWidth < 30 {
		leftWidth = 30
	}
	if leftWidth > safeWidth-18 {
		leftWidth = safeWidth / 2
	}

	pendingHeight := max(int(float64(safeHeight)*0.4), 3)
	inProgressHeight := max(int(float64(safeHeight)*0.3), 3)
	completedHeight := safeHeight - pendingHeight - inProgressHeight
	if completedHeight < 3 {
		completedHeight = 3
		inProgressHeight = max(safeHeight-pendingHeight-completedHeight, 3)
	}

	detailsHeight := max(int(float64(safeHeight)*0.55), 4)
	historyHeight := max(safeHeight-detailsHeight, 3)

	return layout{
		leftWidth:        leftWidth,
		pendingHeight:    pendingHeight,
		inProgressHeight: inProgressHeight,
		completedHeight:  completedHeight,
		detailsHeight:    detailsHeight,
		historyHeight:    historyHeight,
	}
}

// loadTasks refreshes the panes from the application state. Tasks with an
// unrecognised status are listed after the pending ones.
func (u *UI) loadTasks() error {
	groups := u.state.Groups()

	pending := make([]model.Task, 0, len(groups.Pending)+len(groups.Other))
	pending = append(pending, groups.Pending...)
	pending = append(pending, groups.Other...)

	u.pending = pending
	u.inProgress = groups.InProgress
	u.completed = groups.Completed
	u.stats = u.state.Stats()
	u.assignees = u.state.Assignees()

	u.selectedPending = clampSelection(u.selectedPending, len(u.pending))
	u.selectedInProgress = clampSelection(u.selectedInProgress, len(u.inProgress))
	u.selectedCompleted = clampSelection(u.selectedCompleted, len(u.completed))

	return u.loadHistory()
}

func (u *UI) loadHistory() error {
	selected := u.selectedTask()
	if selected == nil {
		u.history = nil
		return nil
	}

	history, err := u.state.History(context.Background(), selected.ID)
	if err != nil {
		return err
	}
	u.history = history
	u.selectedHistory = clampSelection(u.selectedHistory, len(u.history))
	return nil
}

func clampSelection(selected, length int) int {
	if selected >= length {
		return max(length-1, 0)
	}
	return selected
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	filter := u.state.Filter()

	search := filter.Search
	if search == "" {
		search = "type / to search"
	}

	fmt.Fprintf(view, "TaskMaster | %s\n", formatStats(u.stats))
	fmt.Fprintf(view, "Search: %s | Priority: %s | Assignee: %s | Status: %s | Sort: %s",
		search, filterLabel(string(filter.Priority)), filterLabel(filter.Assignee), filterLabel(string(filter.Status)), filter.SortBy)
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)
	view.SetCursor(0, 0)

	fmt.Fprintln(view, "a add | n quick add | e edit | d delete | c in progress | x completed | / search | p priority | u assignee | t status | o sort")
	fmt.Fprintln(view, "g clear | r reload | tab cycle | 1-5 panes | ? help | q quit")
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderTaskList(view *gocui.View, tasks []model.Task, selected int, focused bool) {
	view.Clear()
	now := u.now()
	for i, task := range tasks {
		prefix := " "
		if i == selected {
			if focused {
				prefix = ">"
			} else {
				prefix = "*"
			}
		}
		fmt.Fprintf(view, "%s %s\n", prefix, formatTaskSummary(task, now))
	}
	if focused {
		view.SetCursor(0, min(selected, len(tasks)-1))
	}
}

func (u *UI) renderDetails(view *gocui.View) {
	view.Clear()
	selected := u.selectedTask()
	if selected == nil {
		fmt.Fprint(view, "No task selected")
		return
	}

	now := u.now()
	due := "n/a"
	if !selected.DueDate.IsZero() {
		due = fmt.Sprintf("%s (%s)", selected.DueDate.Local().Format("2006-01-02 15:04"), formatDue(selected.DueDate, now))
	}

	lines := []string{}
	if u.focus == viewHistory {
		if entry := u.selectedHistoryEntry(); entry != nil {
			lines = append(lines,
				"History Detail",
				fmt.Sprintf("When: %s", entry.CreatedAt.Local().Format("2006-01-02 15:04:05")),
				fmt.Sprintf("Type: %s", entry.EventType),
				fmt.Sprintf("Details: %s", entry.Details),
				"",
				"Task",
			)
		} else {
			lines = append(lines, "No history selected", "", "Task")
		}
	}

	lines = append(lines,
		selected.Title,
		fmt.Sprintf("Status: %s", selected.Status),
		fmt.Sprintf("Priority: %s", selected.Priority),
		fmt.Sprintf("Assignee: %s", formatAssignee(selected.Assignee)),
		fmt.Sprintf("Due: %s", due),
		fmt.Sprintf("Created: %s", selected.CreatedAt.Local().Format("2006-01-02 15:04")),
	)
	if selected.Overdue(now) {
		lines = append(lines, "", "This task is overdue.")
	}

	fmt.Fprint(view, strings.Join(lines, "\n"))
}

func (u *UI) renderHistory(view *gocui.View, focused bool) {
	view.Clear()
	for index, entry := range u.history {
		prefix := " "
		if index == u.selectedHistory {
			if focused {
				prefix = ">"
			} else {
				prefix = "*"
			}
		}
		fmt.Fprintf(view, "%s %s | %s | %s\n", prefix, entry.CreatedAt.Local().Format("2006-01-02 15:04"), entry.EventType, entry.Details)
	}
	if focused {
		view.SetCursor(0, min(u.selectedHistory, len(u.history)-1))
	}
}

func (u *UI) onListClick(gui *gocui.Gui, viewName string, opts gocui.ViewMouseBindingOpts) error {
	if u.inputActive() {
		return nil
	}
	view, err := gui.View(viewName)
	if err != nil {
		return nil
	}

	_, y0, _, _ := view.Dimensions()
	_, oy := view.Origin()
	row := max(opts.Y-y0-1+oy, 0)

	switch viewName {
	case viewPending:
		u.selectedPending = min(row, len(u.pending)-1)
	case viewInProgress:
		u.selectedInProgress = min(row, len(u.inProgress)-1)
	case viewCompleted:
		u.selectedCompleted = min(row, len(u.completed)-1)
	case viewHistory:
		u.selectedHistory = min(row, len(u.history)-1)
	default:
		return nil
	}
	return u.setFocus(gui, viewName)
}

func (u *UI) bindMouseScroll(gui *gocui.Gui) error {
	views := []string{viewPending, viewInProgress, viewCompleted, viewDetails, viewHistory}
	for _, name := range views {
		if err := gui.SetKeybinding(name, gocui.MouseWheelUp, gocui.ModNone, u.scrollUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.MouseWheelDown, gocui.ModNone, u.scrollDown); err != nil {
			return err
		}
	}
	return nil
}

func (u *UI) scrollUp(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if view == nil {
		view = gui.CurrentView()
	}
	if view == nil {
		return nil
	}
	view.ScrollUp(1)
	return nil
}

func (u *UI) scrollDown(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if view == nil {
		view = gui.CurrentView()
	}
	if view == nil {
		return nil
	}
	view.ScrollDown(1)
	return nil
}

func (u *UI) selectedHistoryEntry() *model.HistoryEntry {
	if u.selectedHistory >= 0 && u.selectedHistory < len(u.history) {
		return &u.history[u.selectedHistory]
	}
	return nil
}

// selectedTask returns the selection of the focused task pane, or of the
// pending pane when details or history has focus.
func (u *UI) selectedTask() *model.Task {
	switch u.focus {
	case viewInProgress:
		if u.selectedInProgress >= 0 && u.selectedInProgress < len(u.inProgress) {
			return &u.inProgress[u.selectedInProgress]
		}
	case viewCompleted:
		if u.selectedCompleted >= 0 && u.selectedCompleted < len(u.completed) {
			return &u.completed[u.selectedCompleted]
		}
	default:
		if u.selectedPending >= 0 && u.selectedPending < len(u.pending) {
			return &u.pending[u.selectedPending]
		}
	}
	return nil
}

func (u *UI) switchFocus(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}

	switch u.focus {
	case viewPending:
		u.focus = viewInProgress
	case viewInProgress:
		u.focus = viewCompleted
	default:
		u.focus = viewPending
	}
	return u.setFocus(gui, u.focus)
}

func (u *UI) focusPending(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewPending)
}

func (u *UI) focusInProgress(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewInProgress)
}

func (u *UI) focusCompleted(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewCompleted)
}

func (u *UI) focusDetails(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewDetails)
}

func (u *UI) focusHistory(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewHistory)
}

func (u *UI) setFocus(gui *gocui.Gui, name string) error {
	if u.inputActive() {
		return nil
	}
	u.focus = name
	if gui != nil {
		_, _ = gui.SetCurrentView(name)
	}
	return u.loadTasks()
}

func (u *UI) moveDown(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewPending:
		if u.selectedPending < len(u.pending)-1 {
			u.selectedPending++
			return u.loadHistory()
		}
	case viewInProgress:
		if u.selectedInProgress < len(u.inProgress)-1 {
			u.selectedInProgress++
			return u.loadHistory()
		}
	case viewCompleted:
		if u.selectedCompleted < len(u.completed)-1 {
			u.selectedCompleted++
			return u.loadHistory()
		}
	case viewHistory:
		if u.selectedHistory < len(u.history)-1 {
			u.selectedHistory++
		}
	}
	return nil
}

func (u *UI) moveUp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewPending:
		if u.selectedPending > 0 {
			u.selectedPending--
			return u.loadHistory()
		}
	case viewInProgress:
		if u.selectedInProgress > 0 {
			u.selectedInProgress--
			return u.loadHistory()
		}
	case viewCompleted:
		if u.selectedCompleted > 0 {
			u.selectedCompleted--
			return u.loadHistory()
		}
	case viewHistory:
		if u.selectedHistory > 0 {
			u.selectedHistory--
		}
	}
	return nil
}

// reload rereads the collection from storage, picking up changes made
// through the web view or another process.
func (u *UI) reload(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if err := u.state.Reload(context.Background()); err != nil {
		u.setStatus(err)
		return nil
	}
	u.status = ""
	return u.loadTasks()
}

func (u *UI) updateFilter(change func(*model.FilterSpec)) error {
	filter := u.state.Filter()
	change(&filter)
	u.state.SetFilter(filter)
	u.status = ""
	return u.loadTasks()
}

func (u *UI) clearFilters(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.updateFilter(func(filter *model.FilterSpec) {
		*filter = model.FilterSpec{SortBy: filter.SortBy}
	})
}

func (u *UI) cyclePriorityFilter(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.updateFilter(func(filter *model.FilterSpec) {
		filter.Priority = model.Priority(cycleValue(priorityOptions(), string(filter.Priority), 1))
	})
}

func (u *UI) cycleStatusFilter(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.updateFilter(func(filter *model.FilterSpec) {
		filter.Status = model.Status(cycleValue(statusOptions(), string(filter.Status), 1))
	})
}

func (u *UI) cycleAssigneeFilter(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	assignees := u.state.Assignees()
	return u.updateFilter(func(filter *model.FilterSpec) {
		filter.Assignee = cycleValue(assignees, filter.Assignee, 1)
	})
}

func (u *UI) cycleSort(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.updateFilter(func(filter *model.FilterSpec) {
		filter.SortBy = model.SortKey(cycleOption(sortOptions(), string(filter.SortBy), 1))
	})
}

func (u *UI) startSearch(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.searchActive = true
	return nil
}

func (u *UI) showSearch(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(30, maxX/2)
	height := 2
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewSearch, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Search title or assignee"
		view.Wrap = true
		view.Clear()
		fmt.Fprint(view, u.state.Filter().Search)
	}
	view.Editable = true
	view.Editor = gocui.DefaultEditor
	_, _ = gui.SetCurrentView(viewSearch)
	return nil
}

func (u *UI) applySearch(value string) error {
	u.searchActive = false
	return u.updateFilter(func(filter *model.FilterSpec) {
		filter.Search = value
		*filter = filter.Trimmed()
	})
}

func (u *UI) submitSearch(gui *gocui.Gui, view *gocui.View) error {
	_ = gui.DeleteView(viewSearch)
	_, _ = gui.SetCurrentView(u.focus)
	return u.applySearch(view.Buffer())
}

func (u *UI) cancelSearch(gui *gocui.Gui, _ *gocui.View) error {
	u.searchActive = false
	_ = gui.DeleteView(viewSearch)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

func (u *UI) startQuickAdd(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.quickActive = true
	return nil
}

func (u *UI) showQuickAdd(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(40, maxX/2)
	height := 2
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewQuickAdd, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Quick add (e.g. Review proposal for John by tomorrow 3pm)"
		view.Wrap = true
		view.Clear()
	}
	view.Editable = true
	view.Editor = gocui.DefaultEditor
	_, _ = gui.SetCurrentView(viewQuickAdd)
	return nil
}

// applyQuickAdd creates a task from a one-line description. The prompt stays
// open when the text cannot be turned into a task.
func (u *UI) applyQuickAdd(value string) error {
	input, err := app.ParseTaskText(value, u.now())
	if err != nil {
		return err
	}
	switch u.focus {
	case viewInProgress:
		input.Status = model.StatusInProgress
	case viewCompleted:
		input.Status = model.StatusCompleted
	}

	task, err := u.state.Add(context.Background(), input)
	if err != nil {
		return err
	}
	u.quickActive = false
	u.status = fmt.Sprintf("Task Added: %q has been added to your tasks.", task.Title)
	return u.loadTasks()
}

func (u *UI) submitQuickAdd(gui *gocui.Gui, view *gocui.View) error {
	if err := u.applyQuickAdd(view.Buffer()); err != nil {
		u.setStatus(err)
		return nil
	}
	_ = gui.DeleteView(viewQuickAdd)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

func (u *UI) cancelQuickAdd(gui *gocui.Gui, _ *gocui.View) error {
	u.quickActive = false
	_ = gui.DeleteView(viewQuickAdd)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

func (u *UI) toggleHelp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() && !u.helpActive {
		return nil
	}
	u.helpActive = !u.helpActive
	return nil
}

func (u *UI) closeHelp(gui *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	_ = gui.DeleteView(viewHelp)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := 22
	x0 := (maxX - width) / 2
	y0 := max((maxY-height)/2, 0)

	view, err := gui.SetView(viewHelp, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Help"
		view.Wrap = true
	}
	view.Clear()
	fmt.Fprint(view, helpText())
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

func (u *UI) addTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	fields := buildFormFields(nil, u.now())
	switch u.focus {
	case viewInProgress:
		fields[fieldStatus].Value = string(model.StatusInProgress)
	case viewCompleted:
		fields[fieldStatus].Value = string(model.StatusCompleted)
	}
	u.form = &formState{fields: fields}
	return nil
}

func (u *UI) editTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	u.form = &formState{taskID: selected.ID, fields: buildFormFields(selected, u.now())}
	return nil
}

func (u *UI) showForm(gui *gocui.Gui) error {
	if u.form == nil {
		return nil
	}

	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := min(10, max(7, maxY/2))
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewForm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
	}
	if u.form.taskID != "" {
		view.Title = "Edit Task"
	} else {
		view.Title = "New Task"
	}
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

// saveForm creates or updates the task described by the open form. The form
// stays open when saving fails.
func (u *UI) saveForm() error {
	if u.form == nil {
		return nil
	}

	input, err := parseFormFields(u.form.fields)
	if err != nil {
		return err
	}

	if u.form.taskID == "" {
		task, err := u.state.Add(context.Background(), input)
		if err != nil {
			return err
		}
		u.status = fmt.Sprintf("Task Added: %q has been added to your tasks.", task.Title)
	} else {
		task, err := u.state.Update(context.Background(), u.form.taskID, input)
		if err != nil {
			return err
		}
		u.status = fmt.Sprintf("Task Updated: %q", task.Title)
	}

	u.form = nil
	return u.loadTasks()
}

func (u *UI) submitFormNow(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if err := u.saveForm(); err != nil {
		u.setStatus(err)
		return nil
	}
	_ = gui.DeleteView(viewForm)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

func (u *UI) cancelForm(gui *gocui.Gui, _ *gocui.View) error {
	u.form = nil
	_ = gui.DeleteView(viewForm)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

func (u *UI) nextFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index < len(u.form.fields)-1 {
		u.form.index++
	}
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index > 0 {
		u.form.index--
	}
	u.renderForm(view)
	return nil
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, field.Value)
	}
	label := u.form.fields[u.form.index].Label + ": "
	cursorX := len([]rune(label)) + len([]rune(u.form.fields[u.form.index].Value)) + 2
	view.SetCursor(cursorX, u.form.index)
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil || view == nil {
		return false
	}
	field := &ui.form.fields[ui.form.index]

	if isPriorityField(field.Label) || isStatusField(field.Label) {
		options := priorityOptions()
		if isStatusField(field.Label) {
			options = statusOptions()
		}
		switch key {
		case gocui.KeyArrowRight, gocui.KeySpace:
			field.Value = cycleOption(options, field.Value, 1)
		case gocui.KeyArrowLeft:
			field.Value = cycleOption(options, field.Value, -1)
		}
		ui.renderForm(view)
		return true
	}

	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(field.Value)
		if len(runes) > 0 {
			field.Value = string(runes[:len(runes)-1])
		}
	case gocui.KeySpace:
		field.Value += " "
	case gocui.KeyCtrlU:
		field.Value = ""
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		field.Value += string(ch)
	}

	ui.renderForm(view)
	return true
}

func (u *UI) deleteTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	title := selected.Title
	if err := u.state.Delete(context.Background(), selected.ID); err != nil {
		u.setStatus(err)
		return nil
	}
	u.status = fmt.Sprintf("Task Deleted: %q", title)
	return u.loadTasks()
}

// toggleStatus moves the selected task to status, or back to pending when it
// already has it.
func (u *UI) toggleStatus(status model.Status) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	next := status
	if selected.Status == status {
		next = model.StatusPending
	}
	if _, err := u.state.SetStatus(context.Background(), selected.ID, next); err != nil {
		u.setStatus(err)
		return nil
	}
	u.status = ""
	return u.loadTasks()
}

func (u *UI) toggleInProgress(_ *gocui.Gui, _ *gocui.View) error {
	return u.toggleStatus(model.StatusInProgress)
}

func (u *UI) toggleCompleted(_ *gocui.Gui, _ *gocui.View) error {
	return u.toggleStatus(model.StatusCompleted)
}

func (u *UI) setStatus(err error) {
	u.status = err.Error()
	if !errors.Is(err, app.ErrInvalidTask) {
		log.WithError(err).Warn("task action failed")
	}
}

func (u *UI) inputActive() bool {
	return u.searchActive || u.quickActive || u.form != nil || u.helpActive
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}

func helpText() string {
	return strings.Join([]string{
		"Navigation:",
		"  Tab cycle panes (pending/in progress/completed)",
		"  1 Pending | 2 In Progress | 3 Completed | 4 Details | 5 History",
		"  j/k or arrows move selection",
		"  mouse click to focus/select, wheel to scroll",
		"",
		"Actions:",
		"  a add task | e edit task | d delete task",
		"  n quick add: \"Review proposal for John by tomorrow 3pm p1\"",
		"  c toggle in progress | x toggle completed",
		"  enter save (form) | tab/arrows next field | esc cancel",
		"",
		"Search/Filter:",
		"  / search title or assignee",
		"  p priority | u assignee | t status | o sort | g clear filters",
		"",
		"Form:",
		"  space/left/right cycle priority and status",
		"",
		"Other:",
		"  r reload | ? help | esc/q close help | q quit",
	}, "\n")
}

func applyViewStyle(view *gocui.View, focused bool, highlight bool) {
	view.Frame = true
	view.Highlight = focused && highlight
	view.HighlightInactive = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	view.InactiveViewSelBgColor = gocui.ColorDefault
	if focused {
		view.FrameColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
	}
}
