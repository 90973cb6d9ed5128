package screens

import (
	"context"
	"slices"

	"github.com/vnma/vaxtui/internal/chat"
	"github.com/vnma/vaxtui/internal/domain"
	"github.com/vnma/vaxtui/internal/listing"
	"github.com/vnma/vaxtui/internal/realtime"
)

// AnyChoice is the filter choice that removes a filter
const AnyChoice = "All"

// Column is one rendered column of a list screen
type Column struct {
	Title string
	Width int // fixed width in cells, 0 to share what is left
}

// Row is one displayed item, already formatted
type Row struct {
	ID    int64
	Cells []string
}

// Option is a selectable value for a form field
type Option struct {
	Label string
	Value string
}

// Field is one input of a form
type Field struct {
	Key     string
	Label   string
	Value   string // initial value
	Secret  bool
	Options []Option // when set the value must be picked from these
}

// Form collects input before an action runs
type Form struct {
	Title  string
	Fields []Field
}

// Result tells the UI what to show after an action succeeded
type Result struct {
	Notice string
	Chat   *chat.Participant // open this conversation
}

// Action is a key-triggered operation on a list screen. NeedsRow actions
// act on the selected item; the rest act on the list as a whole.
type Action struct {
	Key      string
	Label    string
	NeedsRow bool

	// Form, when set, collects input first. It may call the network.
	Form func(ctx context.Context, id int64) (Form, error)

	// Confirm, when set, returns the prompt shown before Run
	Confirm func(id int64) string

	Run func(ctx context.Context, id int64, values map[string]string) (Result, error)
}

// FilterGroup is a structured filter offered in the filter menu. A group
// with Fields asks for input; otherwise one of Choices is picked.
type FilterGroup struct {
	Name    string
	Label   string
	Choices []string
	Fields  []Field
}

// View is what the UI needs from a list screen
type View interface {
	Title() string
	Columns() []Column
	Rows() []Row
	Fetch(ctx context.Context) error
	Refresh(ctx context.Context) error

	Searchable() bool
	Search() string
	SetSearch(text string)

	Filters() []FilterGroup
	ApplyFilter(name, choice string, values map[string]string) error
	ActiveFilters() []string
	ClearFilters()

	LoadMore() bool
	MaybeLoadMore(cursor, viewport int) bool
	HasMore() bool
	Counts() (displayed, filtered, full int)
	State() listing.State
	Err() error

	Actions() []Action
}

// Watcher is implemented by views backed by a realtime source. notify is
// called from another goroutine whenever the source changes.
type Watcher interface {
	Live() bool
	Watch(ctx context.Context, notify func()) (realtime.Unsubscribe, error)
}

type filterDef[T any] struct {
	group   FilterGroup
	choices func() []string
	build   func(choice string, values map[string]string) (listing.Predicate[T], error)
}

// List adapts a listing.Controller to View
type List[T domain.Item] struct {
	*listing.Controller[T]

	title      string
	columns    []Column
	cells      func(T) []string
	searchable bool
	filters    []filterDef[T]
	actions    []Action
	watch      func(ctx context.Context, notify func()) (realtime.Unsubscribe, error)
}

var _ View = (*List[domain.User])(nil)

func newList[T domain.Item](title string, ctrl *listing.Controller[T], columns []Column, cells func(T) []string) *List[T] {
	return &List[T]{title: title, Controller: ctrl, columns: columns, cells: cells}
}

func (l *List[T]) Title() string     { return l.title }
func (l *List[T]) Columns() []Column { return l.columns }
func (l *List[T]) Searchable() bool  { return l.searchable }
func (l *List[T]) Actions() []Action { return l.actions }

func (l *List[T]) Rows() []Row {
	items := l.Displayed()
	rows := make([]Row, len(items))
	for i, it := range items {
		rows[i] = Row{ID: it.GetID(), Cells: l.cells(it)}
	}
	return rows
}

func (l *List[T]) Filters() []FilterGroup {
	groups := make([]FilterGroup, len(l.filters))
	for i, f := range l.filters {
		g := f.group
		if f.choices != nil {
			g.Choices = append([]string{AnyChoice}, f.choices()...)
		}
		groups[i] = g
	}
	return groups
}

// ApplyFilter activates the named filter. AnyChoice on a choice group
// removes it.
func (l *List[T]) ApplyFilter(name, choice string, values map[string]string) error {
	idx := slices.IndexFunc(l.filters, func(f filterDef[T]) bool { return f.group.Name == name })
	if idx < 0 {
		return nil
	}
	f := l.filters[idx]
	if len(f.group.Fields) == 0 && (choice == "" || choice == AnyChoice) {
		l.ClearPredicate(name)
		return nil
	}
	p, err := f.build(choice, values)
	if err != nil {
		return err
	}
	l.SetPredicate(p)
	return nil
}

func (l *List[T]) ActiveFilters() []string {
	var labels []string
	for _, p := range l.Predicates() {
		labels = append(labels, p.Label)
	}
	return labels
}

// Live reports whether the list is backed by a realtime source
func (l *List[T]) Live() bool { return l.watch != nil }

// Watch starts the realtime mirror, if the list has one
func (l *List[T]) Watch(ctx context.Context, notify func()) (realtime.Unsubscribe, error) {
	if l.watch == nil {
		return func() {}, nil
	}
	return l.watch(ctx, notify)
}

// choiceFilter offers the fixed or derived values of one attribute
func (l *List[T]) choiceFilter(name, label string, choices func() []string, get func(T) string) {
	l.filters = append(l.filters, filterDef[T]{
		group:   FilterGroup{Name: name, Label: label},
		choices: choices,
		build: func(choice string, _ map[string]string) (listing.Predicate[T], error) {
			p := listing.Equals(name, get, choice)
			p.Label = label + ": " + choice
			return p, nil
		},
	})
}

// distinct lists the non-empty values of an attribute across the full list
func (l *List[T]) distinct(get func(T) string) func() []string {
	return func() []string {
		seen := map[string]bool{}
		var out []string
		for _, it := range l.Full() {
			v := get(it)
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
		slices.Sort(out)
		return out
	}
}

func fixed(values ...string) func() []string {
	return func() []string { return values }
}
